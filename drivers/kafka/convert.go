package kafka

import (
	json "github.com/goccy/go-json"

	"github.com/surrealdb/surreal-sync/types"
)

func decodeJSONObject(raw []byte) (map[string]any, error) {
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, err
	}
	return m, nil
}

// convertPayload widens the JSON-decoded protobuf payload into the
// unified record shape; protobuf's own numeric types already collapse
// to float64/string/bool/nil/array/object once run through
// MarshalJSON, so this is mostly a pass-through plus recursive typing.
func convertPayload(payload map[string]any) types.Record {
	out := make(types.Record, len(payload))
	for k, v := range payload {
		out[k] = convertValue(v)
	}
	return out
}

func convertValue(v any) types.Value {
	switch t := v.(type) {
	case map[string]any:
		return convertPayload(t)
	case []any:
		out := make([]types.Value, len(t))
		for i, e := range t {
			out[i] = convertValue(e)
		}
		return out
	default:
		return v
	}
}
