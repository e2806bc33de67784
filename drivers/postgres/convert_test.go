package postgres

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/surrealdb/surreal-sync/types"
)

func TestConvertColumn_NullValueBecomesNil(t *testing.T) {
	v, err := convertColumn(walColumn{Name: "x", Type: "int4", Value: nil})
	require.NoError(t, err)
	assert.Nil(t, v)
}

func TestConvertColumn_IntegerWidensToInt64(t *testing.T) {
	v, err := convertColumn(walColumn{Name: "x", Type: "int4", Value: float64(42)})
	require.NoError(t, err)
	assert.Equal(t, int64(42), v)
}

func TestConvertColumn_NumericParsesToDecimal(t *testing.T) {
	v, err := convertColumn(walColumn{Name: "x", Type: "numeric", Value: "19.995"})
	require.NoError(t, err)
	dec, ok := v.(decimal.Decimal)
	require.True(t, ok)
	assert.True(t, dec.Equal(decimal.RequireFromString("19.995")))
}

func TestConvertColumn_NumericFallsBackToStringOnParseFailure(t *testing.T) {
	v, err := convertColumn(walColumn{Name: "x", Type: "numeric", Value: "not-a-number"})
	require.NoError(t, err)
	assert.Equal(t, "not-a-number", v)
}

func TestConvertColumn_BoolAcceptsStringAndFloat(t *testing.T) {
	v1, err := convertColumn(walColumn{Name: "x", Type: "boolean", Value: "true"})
	require.NoError(t, err)
	assert.Equal(t, true, v1)

	v2, err := convertColumn(walColumn{Name: "x", Type: "boolean", Value: float64(0)})
	require.NoError(t, err)
	assert.Equal(t, false, v2)
}

func TestConvertColumn_TimestampNormalisesToUTC(t *testing.T) {
	v, err := convertColumn(walColumn{Name: "x", Type: "timestamp", Value: "2026-01-02T03:04:05Z"})
	require.NoError(t, err)
	ts, ok := v.(time.Time)
	require.True(t, ok)
	assert.Equal(t, time.UTC, ts.Location())
}

func TestConvertColumn_PlainTimeOfDayBecomesStructuredRecord(t *testing.T) {
	v, err := convertColumn(walColumn{Name: "x", Type: "time", Value: "15:04:05"})
	require.NoError(t, err)
	rec, ok := v.(types.Record)
	require.True(t, ok)
	assert.Equal(t, 15, rec["hour"])
}

func TestConvertColumn_ByteaDecodesBase64(t *testing.T) {
	v, err := convertColumn(walColumn{Name: "x", Type: "bytea", Value: "aGVsbG8="})
	require.NoError(t, err)
	assert.Equal(t, []byte("hello"), v)
}

func TestConvertColumn_SimpleArraySplitsElements(t *testing.T) {
	v, err := convertColumn(walColumn{Name: "x", Type: "_int4", Value: "{1,2,3}"})
	require.NoError(t, err)
	arr, ok := v.([]types.Value)
	require.True(t, ok)
	assert.Equal(t, []types.Value{int64(1), int64(2), int64(3)}, arr)
}

func TestConvertRow_ConvertsEveryColumn(t *testing.T) {
	rec, err := convertRow([]walColumn{
		{Name: "id", Type: "int4", Value: float64(1)},
		{Name: "name", Type: "text", Value: "alice"},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), rec["id"])
	assert.Equal(t, "alice", rec["name"])
}
