package checkpoint

import (
	"testing"
	"time"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveAndLoad_RoundTrip(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)

	payload := json.RawMessage(`{"sequence_id":42}`)
	require.NoError(t, store.Save("mysql", "mysql", IncrementalProgress, payload))

	env, err := store.Load("mysql")
	require.NoError(t, err)
	require.NotNil(t, env)
	assert.Equal(t, "mysql", env.DatabaseType)
	assert.Equal(t, IncrementalProgress, env.Phase)
	assert.JSONEq(t, string(payload), string(env.Checkpoint))
}

func TestLoad_ReturnsMostRecentByTag(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Save("mysql", "mysql", FullSyncStart, json.RawMessage(`{"sequence_id":1}`)))
	time.Sleep(2 * time.Millisecond) // filenames are timestamp-ordered to the microsecond
	require.NoError(t, store.Save("mysql", "mysql", FullSyncEnd, json.RawMessage(`{"sequence_id":2}`)))

	env, err := store.Load("mysql")
	require.NoError(t, err)
	require.NotNil(t, env)
	assert.Equal(t, FullSyncEnd, env.Phase)
}

func TestLoad_FiltersByTag(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Save("mysql", "mysql", FullSyncStart, json.RawMessage(`{"sequence_id":1}`)))
	require.NoError(t, store.Save("postgres", "postgresql_wal2json", FullSyncStart, json.RawMessage(`{"lsn":"0/1"}`)))

	env, err := store.Load("postgres")
	require.NoError(t, err)
	require.NotNil(t, env)
	assert.Equal(t, "postgresql_wal2json", env.DatabaseType)
}

func TestLoad_NoCheckpointsReturnsNil(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)

	env, err := store.Load("mysql")
	require.NoError(t, err)
	assert.Nil(t, env)
}

func TestLoadPhase_SkipsNonMatchingPhases(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Save("mysql", "mysql", FullSyncStart, json.RawMessage(`{"sequence_id":1}`)))
	time.Sleep(2 * time.Millisecond)
	require.NoError(t, store.Save("mysql", "mysql", FullSyncEnd, json.RawMessage(`{"sequence_id":9}`)))

	env, err := store.LoadPhase("mysql", FullSyncStart)
	require.NoError(t, err)
	require.NotNil(t, env)
	assert.JSONEq(t, `{"sequence_id":1}`, string(env.Checkpoint))
}

func TestLoadPhase_NoMatchReturnsNil(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Save("mysql", "mysql", FullSyncEnd, json.RawMessage(`{"sequence_id":1}`)))

	env, err := store.LoadPhase("mysql", FullSyncStart)
	require.NoError(t, err)
	assert.Nil(t, env)
}
