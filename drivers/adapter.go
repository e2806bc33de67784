// Package drivers defines the source adapter contract (C1) implemented
// by every backend (mongodb, mysql, postgres, neo4j, jsonl, csv,
// kafka), and the small set of shared helpers (capability flags, batch
// types) every adapter is built from.
package drivers

import (
	"context"

	"github.com/surrealdb/surreal-sync/types"
)

// Record pairs a raw change target with its id and the table it came
// from, as produced by a full dump iterator.
type Record struct {
	Table  string
	ID     types.ID
	Fields types.Record
}

// PeekResult is what Peek returns: the batch of changes observed since
// the given checkpoint, and the checkpoint to advance to if the whole
// batch is applied successfully.
type PeekResult struct {
	Changes   []types.Change
	NextAfter types.Checkpoint
}

// Capabilities enumerates what an adapter can do, so the coordinator
// can reject an invalid invocation (e.g. `incremental` against a
// full-dump-only source) before touching the network.
type Capabilities struct {
	SupportsFull        bool
	SupportsIncremental bool
	CapturesDeletes     bool
}

// Adapter is the capability set every backend implements, mirroring
// spec §4.2's prepare_full/full_iterator/current_checkpoint/peek/advance.
type Adapter interface {
	// Name identifies the backend for logging and the checkpoint
	// envelope's database_type field.
	Name() string
	Capabilities() Capabilities

	// PrepareFull sets up whatever capture infrastructure (change
	// stream, triggers, replication slot) is needed for later
	// incremental catch-up, and returns cp_t1. Must be called, and
	// must complete, before FullIterator starts reading.
	PrepareFull(ctx context.Context) (types.Checkpoint, error)

	// FullIterator streams every row of every table/collection in the
	// source. next returns (nil, false, nil) at end of stream.
	FullIterator(ctx context.Context) (next func() (*Record, bool, error), close func() error, err error)

	// CurrentCheckpoint returns cp_t2: the adapter's capture position
	// at the moment of the call.
	CurrentCheckpoint(ctx context.Context) (types.Checkpoint, error)

	// Peek returns up to max changes observed strictly after from,
	// without advancing the adapter's durable position.
	Peek(ctx context.Context, from types.Checkpoint, max int) (PeekResult, error)

	// Advance commits the adapter's durable position to to. Only
	// called after every change up to and including to has been
	// written to the target successfully.
	Advance(ctx context.Context, to types.Checkpoint) error

	// Close releases adapter-held resources (connections, cursors).
	// It does not tear down process-outliving infrastructure; see
	// Teardown.
	Close(ctx context.Context) error
}

// Teardowner is implemented by adapters that provision process-
// outliving capture infrastructure (MySQL triggers + audit table,
// Postgres replication slot). Invoked only by the explicit `teardown`
// CLI subcommand, never automatically.
type Teardowner interface {
	Teardown(ctx context.Context) error
}
