package kafka

import "github.com/surrealdb/surreal-sync/types"

// OffsetsCheckpoint tracks the next-to-read offset per partition. It
// implements Ordered via the sum of its offsets, which is monotonic
// for a topic whose partition count doesn't change mid-sync - good
// enough to support --incremental-to against a single combined
// position without claiming a true per-partition total order.
type OffsetsCheckpoint struct {
	Offsets map[int]int64 `json:"offsets"`
}

func (c OffsetsCheckpoint) Backend() string { return "kafka" }

func (c OffsetsCheckpoint) IsZero() bool { return len(c.Offsets) == 0 }

func (c OffsetsCheckpoint) sum() int64 {
	var total int64
	for _, v := range c.Offsets {
		total += v
	}
	return total
}

func (c OffsetsCheckpoint) Compare(other types.Checkpoint) int {
	o := other.(OffsetsCheckpoint)
	switch {
	case c.sum() < o.sum():
		return -1
	case c.sum() > o.sum():
		return 1
	default:
		return 0
	}
}

func (c OffsetsCheckpoint) withAdvanced(partition int, offset int64) OffsetsCheckpoint {
	next := make(map[int]int64, len(c.Offsets)+1)
	for k, v := range c.Offsets {
		next[k] = v
	}
	next[partition] = offset
	return OffsetsCheckpoint{Offsets: next}
}

var (
	_ types.Checkpoint = OffsetsCheckpoint{}
	_ types.Ordered    = OffsetsCheckpoint{}
)
