package mongodb

import (
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/surrealdb/surreal-sync/convert"
	"github.com/surrealdb/surreal-sync/types"
)

// idFromRaw derives a types.ID from a document's _id field, resolving
// ObjectId to its hex string per §9 Open Question 1.
func idFromRaw(raw any) types.ID {
	if oid, ok := raw.(primitive.ObjectID); ok {
		return types.NewID(oid.Hex())
	}
	return types.NewID(convertValue(raw))
}

// convertRecord converts a decoded BSON document (minus _id, already
// extracted by the caller) into the unified record shape.
func convertRecord(doc bson.M) types.Record {
	out := make(types.Record, len(doc))
	for k, v := range doc {
		out[k] = convertValue(v)
	}
	return out
}

// convertValue maps a single BSON-decoded value to the unified value
// model, recursing into documents and arrays.
func convertValue(v any) types.Value {
	switch t := v.(type) {
	case nil:
		return nil
	case primitive.ObjectID:
		return t.Hex()
	case primitive.DateTime:
		return convert.UTC(t.Time())
	case time.Time:
		return convert.UTC(t)
	case primitive.Decimal128:
		d, _, ok := convert.Decimal("mongodb.convert", t.String())
		if !ok {
			return t.String()
		}
		return d
	case decimal.Decimal:
		return t
	case primitive.Binary:
		return t.Data
	case primitive.Regex:
		return types.Regex{Pattern: t.Pattern, Options: t.Options}
	case primitive.MinKey:
		return types.Record{"_marker": "MinKey"}
	case primitive.MaxKey:
		return types.Record{"_marker": "MaxKey"}
	case primitive.Undefined:
		return nil
	case primitive.DBPointer:
		return "DBPointer(" + t.DB + "," + t.Pointer.Hex() + ")"
	case primitive.D:
		return convertValue(t.Map())
	case bson.M:
		if link, ok := dbRef(t); ok {
			return link
		}
		return convertRecord(t)
	case map[string]any:
		return convertRecord(bson.M(t))
	case primitive.A:
		out := make([]types.Value, len(t))
		for i, e := range t {
			out[i] = convertValue(e)
		}
		return out
	case []any:
		out := make([]types.Value, len(t))
		for i, e := range t {
			out[i] = convertValue(e)
		}
		return out
	case int32:
		return convert.WidenInt(t)
	case int64:
		return t
	case float64:
		return t
	case float32:
		return convert.WidenFloat(t)
	default:
		return v
	}
}

// dbRef recognises MongoDB's application-level DBRef convention
// ($ref/$id[/$db]) and converts it to a RecordLink, per §4.3
// "Cross-record references."
func dbRef(doc bson.M) (types.RecordLink, bool) {
	refAny, hasRef := doc["$ref"]
	idAny, hasID := doc["$id"]
	if !hasRef || !hasID {
		return types.RecordLink{}, false
	}
	ref, ok := refAny.(string)
	if !ok {
		return types.RecordLink{}, false
	}
	return types.RecordLink{Table: ref, ID: idFromRaw(idAny)}, true
}
