package neo4j

import (
	"testing"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j/dbtype"
	"github.com/stretchr/testify/assert"

	"github.com/surrealdb/surreal-sync/types"
)

func TestConvertValue_IntegerWidensToInt64(t *testing.T) {
	assert.Equal(t, int64(5), convertValue(int32(5)))
}

func TestConvertValue_DateNormalisesToUTC(t *testing.T) {
	d := dbtype.Date(time.Date(2026, 3, 4, 0, 0, 0, 0, time.UTC))
	got := convertValue(d)
	ts, ok := got.(time.Time)
	assert.True(t, ok)
	assert.Equal(t, time.UTC, ts.Location())
	assert.Equal(t, 2026, ts.Year())
}

func TestConvertValue_LocalTimeBecomesStructuredRecord(t *testing.T) {
	lt := dbtype.LocalTime(time.Date(0, 1, 1, 14, 30, 15, 0, time.UTC))
	got := convertValue(lt)
	rec, ok := got.(types.Record)
	assert.True(t, ok)
	assert.Equal(t, 14, rec["hour"])
	assert.Equal(t, 30, rec["minute"])
	assert.Equal(t, 15, rec["second"])
}

func TestConvertValue_DurationRendersISO8601Like(t *testing.T) {
	d := dbtype.Duration{Months: 1, Days: 2, Seconds: 3, Nanos: 4}
	got := convertValue(d)
	s, ok := got.(string)
	assert.True(t, ok)
	assert.Contains(t, s, "1M")
	assert.Contains(t, s, "2D")
}

func TestConvertValue_Point2DBecomesGeoJSONLikeRecord(t *testing.T) {
	p := dbtype.Point2D{SpatialRefId: 4326, X: 1.5, Y: 2.5}
	got := convertValue(p)
	rec, ok := got.(types.Record)
	assert.True(t, ok)
	assert.Equal(t, "Point", rec["type"])
	assert.Equal(t, []types.Value{1.5, 2.5}, rec["coordinates"])
}

func TestConvertValue_Point3DIncludesZCoordinate(t *testing.T) {
	p := dbtype.Point3D{SpatialRefId: 4326, X: 1, Y: 2, Z: 3}
	got := convertValue(p)
	rec, ok := got.(types.Record)
	assert.True(t, ok)
	assert.Equal(t, []types.Value{1.0, 2.0, 3.0}, rec["coordinates"])
}

func TestConvertProps_ConvertsEveryField(t *testing.T) {
	props := map[string]any{"name": "alice", "age": int32(30)}
	rec := convertProps(props)
	assert.Equal(t, "alice", rec["name"])
	assert.Equal(t, int64(30), rec["age"])
}

func TestConvertValue_NestedArrayRecurses(t *testing.T) {
	got := convertValue([]any{int32(1), "two"})
	arr, ok := got.([]types.Value)
	assert.True(t, ok)
	assert.Equal(t, []types.Value{int64(1), "two"}, arr)
}
