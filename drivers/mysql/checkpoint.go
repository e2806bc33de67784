package mysql

import "github.com/surrealdb/surreal-sync/types"

// SequenceCheckpoint is the per-change position in the audit table
// (`surreal_sync_changes.seq`), a monotonically increasing identity
// column - totally ordered, so it implements types.Ordered.
type SequenceCheckpoint struct {
	Sequence uint64 `json:"sequence_id"`
}

func (c SequenceCheckpoint) Backend() string { return "mysql" }

func (c SequenceCheckpoint) IsZero() bool { return c.Sequence == 0 }

func (c SequenceCheckpoint) Compare(other types.Checkpoint) int {
	o := other.(SequenceCheckpoint)
	switch {
	case c.Sequence < o.Sequence:
		return -1
	case c.Sequence > o.Sequence:
		return 1
	default:
		return 0
	}
}

var (
	_ types.Checkpoint = SequenceCheckpoint{}
	_ types.Ordered    = SequenceCheckpoint{}
)
