package jsonl

import "github.com/surrealdb/surreal-sync/types"

// Rule is a user-supplied conversion rule (§4.3 "Cross-record
// references", §10 supplement): when a nested object has field Key ==
// Value, replace the object with a RecordLink into Table, using
// IDField (default "id") as the linked record's id.
type Rule struct {
	Key     string
	Value   any
	Table   string
	IDField string
}

func (r Rule) idField() string {
	if r.IDField == "" {
		return "id"
	}
	return r.IDField
}

// matches reports whether obj is a candidate for this rule: it carries
// Key == Value and an id field.
func (r Rule) matches(obj map[string]any) (any, bool) {
	v, ok := obj[r.Key]
	if !ok || v != r.Value {
		return nil, false
	}
	id, ok := obj[r.idField()]
	return id, ok
}

// applyRules recursively rewrites nested objects that match any rule
// into RecordLink values. Rules compose: more than one rule can match
// across a document, and within one object the first matching rule
// wins - declared order is the match order.
func applyRules(rules []Rule, v any) any {
	switch t := v.(type) {
	case map[string]any:
		for _, r := range rules {
			if id, ok := r.matches(t); ok {
				return types.RecordLink{Table: r.Table, ID: types.NewID(id)}
			}
		}
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[k] = applyRules(rules, val)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = applyRules(rules, e)
		}
		return out
	default:
		return v
	}
}
