package kafka

import (
	"encoding/base64"
	"testing"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToChange_MessageKeyStrategy_TombstoneBecomesDelete(t *testing.T) {
	a := &Adapter{opts: Options{Topic: "events", Strategy: IDFromMessageKey}}
	change, err := a.toChange(kafkago.Message{Key: []byte("k1"), Value: nil})
	require.NoError(t, err)
	assert.True(t, change.Delete)
	assert.Equal(t, base64.StdEncoding.EncodeToString([]byte("k1")), change.ID.Raw())
}

func TestToChange_FieldExtractionStrategy_TombstoneFallsBackToMessageKey(t *testing.T) {
	a := &Adapter{opts: Options{Topic: "events", Strategy: IDFromFieldExtraction, IDField: "id"}}
	// msgDesc is left nil: a non-empty Value here would panic decodeProto,
	// proving the tombstone check really does run before decoding.
	change, err := a.toChange(kafkago.Message{Key: []byte("k2"), Value: nil})
	require.NoError(t, err)
	assert.True(t, change.Delete)
	assert.Equal(t, base64.StdEncoding.EncodeToString([]byte("k2")), change.ID.Raw())
}
