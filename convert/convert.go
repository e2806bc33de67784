// Package convert holds the value-conversion helpers shared by every
// backend's converter (C2): numeric widening, UTC normalisation, and
// the decimal/binary fallback-with-warning rules from spec §4.3. Each
// driver package still owns its own top-level Record->types.Record
// mapping, since the source type systems don't share a common shape;
// this package is the reusable tail of that pipeline.
package convert

import (
	"encoding/base64"
	"time"

	"github.com/shopspring/decimal"

	"github.com/surrealdb/surreal-sync/utils/logger"
)

// WidenInt widens any signed integer width to int64, per the converter
// rule "all signed integer widths widen to 64-bit."
func WidenInt[T ~int | ~int8 | ~int16 | ~int32 | ~int64](v T) int64 {
	return int64(v)
}

// WidenFloat widens float32 to float64.
func WidenFloat(v float32) float64 {
	return float64(v)
}

// UTC normalises a datetime to UTC, per "dates, datetimes and
// timestamps all normalise to UTC datetime."
func UTC(t time.Time) time.Time {
	return t.UTC()
}

// Decimal parses s as an arbitrary-precision decimal. On failure it
// returns s itself with ok=false, so the caller can fall back to the
// canonical string representation and log a warning, per "on parse
// failure they fall back to their canonical string representation with
// a warning."
func Decimal(op string, s string) (decimal.Decimal, string, bool) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		logger.Warnf("%s: could not parse %q as decimal, keeping as string: %v", op, s, err)
		return decimal.Decimal{}, s, false
	}
	return d, "", true
}

// Binary decodes base64-encoded bytes (the shape of binary data nested
// inside extended JSON / JSON columns). On failure it returns the raw
// string with ok=false, so the caller falls back to the literal string
// with a warning, per the converter's binary rule.
func Binary(op string, s string) ([]byte, string, bool) {
	b, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		logger.Warnf("%s: could not decode %q as base64, keeping as string: %v", op, s, err)
		return nil, s, false
	}
	return b, "", true
}

// ValueFromMySQL widens a go-mysql-org/go-mysql/mysql.Resultset.GetValue
// result (int64/uint64/float32/float64/string/[]byte/nil) into the
// unified value model: signed widths to int64, float32 to float64,
// []byte passed through as bytes.
func ValueFromMySQL(v any) any {
	switch t := v.(type) {
	case int8:
		return WidenInt(t)
	case int16:
		return WidenInt(t)
	case int32:
		return WidenInt(t)
	case int64:
		return t
	case uint8:
		return int64(t)
	case uint16:
		return int64(t)
	case uint32:
		return int64(t)
	case uint64:
		return t
	case float32:
		return WidenFloat(t)
	case float64:
		return t
	default:
		return v
	}
}

// SplitSimpleArray parses a PostgreSQL-style `{a,b,c}` array literal by
// plain comma splitting. Nested arrays and quoted-with-comma elements
// are documented as unsupported (spec §4.3 "Structured"); this
// function does not attempt to detect or reject them, it just produces
// whatever a naive split yields.
func SplitSimpleArray(literal string) []string {
	if len(literal) < 2 || literal[0] != '{' || literal[len(literal)-1] != '}' {
		return nil
	}
	inner := literal[1 : len(literal)-1]
	if inner == "" {
		return []string{}
	}
	out := []string{}
	start := 0
	for i := 0; i < len(inner); i++ {
		if inner[i] == ',' {
			out = append(out, inner[start:i])
			start = i + 1
		}
	}
	out = append(out, inner[start:])
	return out
}
