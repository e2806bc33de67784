package postgres

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	json "github.com/goccy/go-json"

	"github.com/surrealdb/surreal-sync/convert"
	"github.com/surrealdb/surreal-sync/types"
)

// convertColumn maps one wal2json {name,type,value} triple to the
// unified value model. Adapted from the wal2json column-type switch:
// the base type name drives the conversion, the same way, but every
// branch now produces a §3 Value variant instead of a loosely-typed
// Go primitive - decimal/numeric becomes decimal.Decimal, bytea
// becomes real []byte, and non-nested arrays are split per §4.3
// "Structured" rather than passed through untouched.
func convertColumn(col walColumn) (types.Value, error) {
	if col.Value == nil {
		return nil, nil
	}

	if strings.HasPrefix(col.Type, "_") || strings.Contains(strings.ToUpper(col.Type), "ARRAY") {
		return convertArrayColumn(col)
	}

	baseType := strings.ToLower(strings.TrimSpace(strings.Split(col.Type, "(")[0]))

	switch baseType {
	case "bigint", "tinyint", "integer", "smallint", "smallserial", "int", "int2", "int4", "int8", "serial", "serial2", "serial4", "serial8", "bigserial":
		return convertIntColumn(col.Value)

	case "decimal", "numeric":
		s := fmt.Sprintf("%v", col.Value)
		d, fallback, ok := convert.Decimal("postgres.convert", s)
		if !ok {
			return fallback, nil
		}
		return d, nil

	case "double precision", "float", "float4", "float8", "real":
		return convertFloatColumn(col.Value)

	case "bool", "boolean":
		return convertBoolColumn(col.Value)

	case "time", "timez", "date", "timestamp", "timestampz", "timestamp with time zone", "timestamp without time zone":
		return convertTimeColumn(col.Value)

	case "bytea":
		s, ok := col.Value.(string)
		if !ok {
			return col.Value, nil
		}
		b, fallback, ok := convert.Binary("postgres.convert", s)
		if !ok {
			return fallback, nil
		}
		return b, nil

	default:
		return convertDefaultColumn(col.Value)
	}
}

func convertIntColumn(v any) (types.Value, error) {
	switch t := v.(type) {
	case float64:
		return int64(t), nil
	case string:
		return strconv.ParseInt(t, 10, 64)
	case json.Number:
		return t.Int64()
	default:
		return v, nil
	}
}

func convertFloatColumn(v any) (types.Value, error) {
	switch t := v.(type) {
	case float64:
		return t, nil
	case string:
		return strconv.ParseFloat(t, 64)
	case json.Number:
		return t.Float64()
	default:
		return v, nil
	}
}

func convertBoolColumn(v any) (types.Value, error) {
	switch t := v.(type) {
	case bool:
		return t, nil
	case string:
		return strconv.ParseBool(t)
	case float64:
		return t != 0, nil
	default:
		return v, nil
	}
}

func convertTimeColumn(v any) (types.Value, error) {
	s, ok := v.(string)
	if !ok {
		return v, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return convert.UTC(t), nil
	}
	formats := []string{
		"2006-01-02 15:04:05",
		"2006-01-02T15:04:05",
		"2006-01-02",
	}
	for _, f := range formats {
		if t, err := time.Parse(f, s); err == nil {
			return convert.UTC(t), nil
		}
	}
	// Pure time-of-day (no date component) has no UTC instant to
	// normalise to; preserve it as a structured object per §4.3
	// "Temporal" rather than discard the value.
	if t, err := time.Parse("15:04:05", s); err == nil {
		return types.Record{"hour": t.Hour(), "minute": t.Minute(), "second": t.Second()}, nil
	}
	return s, nil
}

func convertArrayColumn(col walColumn) (types.Value, error) {
	s, ok := col.Value.(string)
	if !ok {
		return col.Value, nil
	}
	elemType := strings.TrimPrefix(col.Type, "_")
	parts := convert.SplitSimpleArray(s)
	out := make([]types.Value, len(parts))
	for i, p := range parts {
		v, err := convertColumn(walColumn{Name: col.Name, Type: elemType, Value: p})
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func convertDefaultColumn(v any) (types.Value, error) {
	switch t := v.(type) {
	case map[string]any, []any:
		return t, nil
	default:
		return v, nil
	}
}

func convertRow(cols []walColumn) (types.Record, error) {
	rec := make(types.Record, len(cols))
	for _, c := range cols {
		v, err := convertColumn(c)
		if err != nil {
			return nil, err
		}
		rec[c.Name] = v
	}
	return rec, nil
}
