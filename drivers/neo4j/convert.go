package neo4j

import (
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j/dbtype"

	"github.com/surrealdb/surreal-sync/convert"
	"github.com/surrealdb/surreal-sync/types"
)

// convertProps maps a node/relationship's property map into the
// unified record shape.
func convertProps(props map[string]any) types.Record {
	out := make(types.Record, len(props))
	for k, v := range props {
		out[k] = convertValue(v)
	}
	return out
}

func convertValue(v any) types.Value {
	switch t := v.(type) {
	case nil:
		return nil
	case int32:
		return convert.WidenInt(t)
	case int64:
		return t
	case float32:
		return convert.WidenFloat(t)
	case float64:
		return t
	case dbtype.Date:
		return convert.UTC(t.Time())
	case dbtype.LocalDate:
		return convert.UTC(t.Time())
	case dbtype.LocalDateTime:
		// No offset information: the driver's time.Time is converted
		// to UTC from the location it carries. Options.Timezone is not
		// consulted here; it only sets the zone of checkpoint instants.
		return convert.UTC(t.Time())
	case dbtype.LocalTime:
		// Pure time-of-day has no UTC instant to normalise to;
		// preserve as a structured object per §4.3 "Temporal".
		h, m, s := t.Time().Clock()
		return types.Record{"hour": h, "minute": m, "second": s}
	case dbtype.Time:
		h, m, s := t.Time().Clock()
		_, offset := t.Time().Zone()
		return types.Record{"hour": h, "minute": m, "second": s, "offset_seconds": offset}
	case dbtype.Duration:
		return fmt.Sprintf("P%dM%dDT%dS%dN", t.Months, t.Days, t.Seconds, t.Nanos)
	case dbtype.Point2D:
		return types.Record{
			"type":        "Point",
			"srid":        t.SpatialRefId,
			"coordinates": []types.Value{t.X, t.Y},
		}
	case dbtype.Point3D:
		return types.Record{
			"type":        "Point",
			"srid":        t.SpatialRefId,
			"coordinates": []types.Value{t.X, t.Y, t.Z},
		}
	case []any:
		out := make([]types.Value, len(t))
		for i, e := range t {
			out[i] = convertValue(e)
		}
		return out
	case map[string]any:
		return convertProps(t)
	default:
		return v
	}
}
