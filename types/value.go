/*
 * Copyright 2025 Olake By Datazip
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package types holds the backend-independent data model shared by every
// source adapter, the value converter, the checkpoint store and the
// target writer: the Value sum type, record identifiers, and change
// events.
package types

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Value is the sum type described by the unified value model:
//
//	Value ::= null | bool | int64 | float64 | decimal | string | bytes |
//	          datetime | duration | uuid | regex | array(Value) |
//	          object(string->Value) | record_link(table, id)
//
// Concrete Go types carry each variant: nil, bool, int64, float64,
// decimal.Decimal, string, []byte, time.Time, time.Duration, uuid.UUID,
// Regex, []any, map[string]any or Record, RecordLink. Converters mostly
// emit these; a few emit other Go values, e.g. int fields in structured
// time-of-day records, uint64 from the MySQL driver, and a string for
// Neo4j durations.
type Value = any

// Record is a target record's field map. Field names are opaque; values
// inhabit Value. It never carries the record's own id - that lives
// alongside it in an Upsert.
type Record map[string]Value

// Regex is the structured representation of a backend regular expression
// value (e.g. a MongoDB BSON Regex). Pattern and Options are kept apart
// rather than flattened into one string because targets may want to
// re-derive engine-specific flags.
type Regex struct {
	Pattern string
	Options string
}

// RecordLink is a typed cross-record reference: a (table, id) pair
// stored as a target-native value, independent of which backend
// produced it (MongoDB DBRef, a JSONL conversion rule, ...).
type RecordLink struct {
	Table string
	ID    ID
}

func (l RecordLink) String() string {
	return fmt.Sprintf("%s:%s", l.Table, l.ID.String())
}

// ID is a record identifier: either a primitive (string, int64, float64,
// bool; a uuid.UUID is stored as its string form) or an ordered slice of
// primitives for a composite
// key. Identifier equality is value equality; ordering across composite
// ids is undefined, per the data model.
type ID struct {
	value any
}

// NewID wraps a single primitive value as an Id.
func NewID(v any) ID {
	return ID{value: normalizeIDComponent(v)}
}

// NewCompositeID wraps an ordered list of primitive values as a
// composite Id, used for multi-column primary keys.
func NewCompositeID(parts ...any) ID {
	normalized := make([]any, len(parts))
	for i, p := range parts {
		normalized[i] = normalizeIDComponent(p)
	}
	return ID{value: normalized}
}

func normalizeIDComponent(v any) any {
	switch t := v.(type) {
	case int:
		return int64(t)
	case int32:
		return int64(t)
	case uint32:
		return int64(t)
	case uint64:
		return int64(t)
	case uuid.UUID:
		return t.String()
	default:
		return v
	}
}

// IsComposite reports whether the id is an ordered array of primitives.
func (id ID) IsComposite() bool {
	_, ok := id.value.([]any)
	return ok
}

// Raw returns the underlying primitive, or []any for a composite id.
func (id ID) Raw() any {
	return id.value
}

// Equal implements identifier equality: value equality, not reference
// equality, and order-sensitive for composite ids (as produced, since
// composite primary keys have a fixed column order at the source).
func (id ID) Equal(other ID) bool {
	av, aok := id.value.([]any)
	bv, bok := other.value.([]any)
	if aok != bok {
		return false
	}
	if aok {
		if len(av) != len(bv) {
			return false
		}
		for i := range av {
			if av[i] != bv[i] {
				return false
			}
		}
		return true
	}
	return id.value == other.value
}

// String renders the id the way it is embedded into a SurrealDB record
// id: a bare value for a primitive, and a bracketed array literal for a
// composite key (e.g. order_items:[7, 2]).
func (id ID) String() string {
	if arr, ok := id.value.([]any); ok {
		s := "["
		for i, v := range arr {
			if i > 0 {
				s += ", "
			}
			s += fmt.Sprintf("%v", v)
		}
		return s + "]"
	}
	return fmt.Sprintf("%v", id.value)
}

// toUTC returns t in UTC. The adapters do not call it; they normalise
// temporal values with convert.UTC.
func toUTC(t time.Time) time.Time {
	return t.UTC()
}
