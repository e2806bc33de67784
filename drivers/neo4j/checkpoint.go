package neo4j

import (
	"time"

	"github.com/surrealdb/surreal-sync/types"
)

// TimestampCheckpoint is an RFC-3339 instant captured from the
// configured timezone (default UTC), used as both cp_t1/cp_t2 and the
// incremental watermark, per §4.2.4's timestamp-watermarking model.
type TimestampCheckpoint struct {
	Timestamp time.Time `json:"timestamp"`
}

func (c TimestampCheckpoint) Backend() string { return "neo4j" }

func (c TimestampCheckpoint) IsZero() bool { return c.Timestamp.IsZero() }

func (c TimestampCheckpoint) Compare(other types.Checkpoint) int {
	o := other.(TimestampCheckpoint)
	switch {
	case c.Timestamp.Before(o.Timestamp):
		return -1
	case c.Timestamp.After(o.Timestamp):
		return 1
	default:
		return 0
	}
}

var (
	_ types.Checkpoint = TimestampCheckpoint{}
	_ types.Ordered    = TimestampCheckpoint{}
)
