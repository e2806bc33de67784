package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/surrealdb/surreal-sync/checkpoint"
	"github.com/surrealdb/surreal-sync/drivers/kafka"
	"github.com/surrealdb/surreal-sync/drivers/mysql"
)

func TestParseKafkaIDStrategy_DefaultsToFieldExtraction(t *testing.T) {
	strategy, err := parseKafkaIDStrategy("")
	require.NoError(t, err)
	assert.Equal(t, kafka.IDFromFieldExtraction, strategy)
}

func TestParseKafkaIDStrategy_SelectsMessageKey(t *testing.T) {
	strategy, err := parseKafkaIDStrategy("message_key")
	require.NoError(t, err)
	assert.Equal(t, kafka.IDFromMessageKey, strategy)
}

func TestParseKafkaIDStrategy_ErrorsOnUnknownValue(t *testing.T) {
	_, err := parseKafkaIDStrategy("bogus")
	assert.Error(t, err)
}

func TestSplitCSV_TrimsAndDropsEmptyEntries(t *testing.T) {
	assert.Equal(t, []string{"a", "b", "c"}, splitCSV("a, b ,c"))
}

func TestSplitCSV_EmptyStringYieldsNil(t *testing.T) {
	assert.Nil(t, splitCSV(""))
}

func TestParseCheckpointJSON_DecodesIntoConcreteBackendType(t *testing.T) {
	cp, err := parseCheckpointJSON[mysql.SequenceCheckpoint](`{"sequence_id":42}`)
	require.NoError(t, err)
	seq, ok := cp.(mysql.SequenceCheckpoint)
	require.True(t, ok)
	assert.Equal(t, uint64(42), seq.Sequence)
}

func TestParseCheckpointJSON_ErrorsOnMalformedJSON(t *testing.T) {
	_, err := parseCheckpointJSON[mysql.SequenceCheckpoint](`not json`)
	assert.Error(t, err)
}

func TestResolveFrom_UsesExplicitFlagValueWhenGiven(t *testing.T) {
	store, err := checkpoint.NewStore(t.TempDir())
	require.NoError(t, err)

	cp, err := resolveFrom(store, "mysql", `{"sequence_id":5}`, parseCheckpointJSON[mysql.SequenceCheckpoint])
	require.NoError(t, err)
	assert.Equal(t, mysql.SequenceCheckpoint{Sequence: 5}, cp)
}

func TestResolveFrom_FallsBackToPersistedFullSyncStart(t *testing.T) {
	store, err := checkpoint.NewStore(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, store.Save("mysql", "mysql", checkpoint.FullSyncStart, []byte(`{"sequence_id":3}`)))

	cp, err := resolveFrom(store, "mysql", "", parseCheckpointJSON[mysql.SequenceCheckpoint])
	require.NoError(t, err)
	assert.Equal(t, mysql.SequenceCheckpoint{Sequence: 3}, cp)
}

func TestResolveFrom_IgnoresFullSyncEndWhenNoFlagGiven(t *testing.T) {
	store, err := checkpoint.NewStore(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, store.Save("mysql", "mysql", checkpoint.FullSyncStart, []byte(`{"sequence_id":1}`)))
	require.NoError(t, store.Save("mysql", "mysql", checkpoint.FullSyncEnd, []byte(`{"sequence_id":99}`)))

	cp, err := resolveFrom(store, "mysql", "", parseCheckpointJSON[mysql.SequenceCheckpoint])
	require.NoError(t, err)
	assert.Equal(t, mysql.SequenceCheckpoint{Sequence: 1}, cp)
}

func TestResolveFrom_ErrorsWhenNothingPersistedAndNoFlag(t *testing.T) {
	store, err := checkpoint.NewStore(t.TempDir())
	require.NoError(t, err)

	_, err = resolveFrom(store, "mysql", "", parseCheckpointJSON[mysql.SequenceCheckpoint])
	assert.Error(t, err)
}
