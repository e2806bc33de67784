package types

// Checkpoint is an opaque, backend-tagged token describing "resume
// after here." Each source adapter defines its own concrete type
// (resume token, sequence, LSN, timestamp, Kafka offsets, ...); the
// coordinator and checkpoint store only need to serialise it and, for
// sources that support it, order it against another checkpoint from
// the same backend.
type Checkpoint interface {
	// Backend names the source this checkpoint came from, e.g.
	// "mongodb", "mysql", "postgresql_wal2json", "neo4j", "kafka".
	// It is stored verbatim as the envelope's database_type field.
	Backend() string
	// IsZero reports whether this is the zero-value / "no progress
	// yet" checkpoint.
	IsZero() bool
}

// Ordered is implemented by checkpoints whose backend imposes a total
// order (sequence, LSN, timestamp, Kafka offset-sum). MongoDB's opaque
// resume token does not implement it: resume tokens are only ever
// compared for equality by the server.
type Ordered interface {
	Checkpoint
	// Compare returns -1, 0, or 1 as this checkpoint is before, equal
	// to, or after other. other must be the same concrete type.
	Compare(other Checkpoint) int
}

// NoCheckpoint is the "None" variant from the data model: used by file
// sources (JSONL, CSV) and bulk Kafka loads, where files are immutable
// sets and no resume position is meaningful.
type NoCheckpoint struct {
	Source string
}

func (NoCheckpoint) Backend() string {
	return "none"
}

func (n NoCheckpoint) IsZero() bool {
	return true
}
