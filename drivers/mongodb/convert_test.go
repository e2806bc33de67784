package mongodb

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/surrealdb/surreal-sync/types"
)

func TestConvertValue_ObjectIDBecomesHexString(t *testing.T) {
	oid := primitive.NewObjectID()
	got := convertValue(oid)
	assert.Equal(t, oid.Hex(), got)
}

func TestIdFromRaw_ObjectIDResolvesToHexString(t *testing.T) {
	oid := primitive.NewObjectID()
	id := idFromRaw(oid)
	assert.False(t, id.IsComposite())
	assert.Equal(t, oid.Hex(), id.Raw())
}

func TestConvertValue_DateTimeNormalisesToUTC(t *testing.T) {
	loc := time.FixedZone("UTC+9", 9*60*60)
	local := time.Date(2026, 1, 2, 3, 4, 5, 0, loc)
	got := convertValue(primitive.NewDateTimeFromTime(local))

	asTime, ok := got.(time.Time)
	assert.True(t, ok)
	assert.Equal(t, time.UTC, asTime.Location())
	assert.True(t, local.Equal(asTime))
}

func TestConvertValue_Decimal128ParsesToDecimal(t *testing.T) {
	d128, err := primitive.ParseDecimal128("42.5")
	assert.NoError(t, err)

	got := convertValue(d128)
	dec, ok := got.(decimal.Decimal)
	assert.True(t, ok)
	assert.True(t, dec.Equal(decimal.RequireFromString("42.5")))
}

func TestConvertValue_BinaryBecomesBytes(t *testing.T) {
	got := convertValue(primitive.Binary{Data: []byte("hello")})
	assert.Equal(t, []byte("hello"), got)
}

func TestConvertValue_RegexBecomesStructuredRegex(t *testing.T) {
	got := convertValue(primitive.Regex{Pattern: "^a", Options: "i"})
	assert.Equal(t, types.Regex{Pattern: "^a", Options: "i"}, got)
}

func TestConvertValue_Int32WidensToInt64(t *testing.T) {
	got := convertValue(int32(7))
	assert.IsType(t, int64(0), got)
	assert.Equal(t, int64(7), got)
}

func TestConvertValue_DBRefBecomesRecordLink(t *testing.T) {
	ref := bson.M{"$ref": "users", "$id": primitive.NewObjectID()}
	got := convertValue(ref)

	link, ok := got.(types.RecordLink)
	assert.True(t, ok)
	assert.Equal(t, "users", link.Table)
}

func TestConvertValue_PlainDocumentWithoutDBRefFieldsBecomesRecord(t *testing.T) {
	doc := bson.M{"name": "alice", "age": int32(30)}
	got := convertValue(doc)

	rec, ok := got.(types.Record)
	assert.True(t, ok)
	assert.Equal(t, "alice", rec["name"])
	assert.Equal(t, int64(30), rec["age"])
}

func TestConvertValue_ArrayRecursesElementwise(t *testing.T) {
	got := convertValue(primitive.A{int32(1), "two", nil})
	arr, ok := got.([]types.Value)
	assert.True(t, ok)
	assert.Equal(t, []types.Value{int64(1), "two", nil}, arr)
}

func TestConvertRecord_OmitsNothingAndConvertsEachField(t *testing.T) {
	doc := bson.M{"a": int32(1), "b": "x"}
	rec := convertRecord(doc)
	assert.Equal(t, types.Record{"a": int64(1), "b": "x"}, rec)
}
