// Package sync implements the coordinator (C3): the two top-level
// operations, Full and Incremental, from spec §4.1.
package sync

import (
	"context"
	"time"

	json "github.com/goccy/go-json"
	"golang.org/x/sync/errgroup"

	"github.com/surrealdb/surreal-sync/checkpoint"
	"github.com/surrealdb/surreal-sync/drivers"
	"github.com/surrealdb/surreal-sync/errs"
	"github.com/surrealdb/surreal-sync/target"
	"github.com/surrealdb/surreal-sync/types"
	"github.com/surrealdb/surreal-sync/utils"
	"github.com/surrealdb/surreal-sync/utils/logger"
	"github.com/surrealdb/surreal-sync/utils/safego"
)

// fullChannelCapacity bounds how many pending batches the producer may
// build ahead of the writer, per §5's backpressure-via-channel-capacity
// guidance.
const fullChannelCapacity = 4

// Options configures the bounds a sync run may stop at, beyond the
// usual context cancellation - the §10 supplements for a bounded
// --incremental-to checkpoint and a Kafka-only max-messages/deadline
// rule generalised to every backend.
type Options struct {
	// BatchSize caps how many changes are requested per Peek call.
	BatchSize int
	// EmitCheckpoints persists cp_t1/cp_t2/incremental progress to
	// the checkpoint store as the run proceeds.
	EmitCheckpoints bool
	// ToCheckpoint stops incremental sync once reached (inclusive),
	// per the §10 --incremental-to supplement. nil means unbounded.
	ToCheckpoint types.Ordered
	// Deadline stops incremental sync at a wall-clock instant. Zero
	// means unbounded.
	Deadline time.Time
	// MaxMessages stops incremental sync after this many changes have
	// been applied, regardless of backend (§10 supplement: not
	// Kafka-only). Zero means unbounded.
	MaxMessages int
	// EmptyPollBackoff is how long to sleep after an empty Peek
	// before re-polling.
	EmptyPollBackoff time.Duration
	// RetryAttempts bounds how many times a Connectivity/TargetWrite
	// error is retried before it's treated as fatal for the run, per
	// §7's retry policy table.
	RetryAttempts int
	// RetryDelay is the backoff between retry attempts.
	RetryDelay time.Duration
}

func (o Options) withDefaults() Options {
	if o.BatchSize <= 0 {
		o.BatchSize = 500
	}
	if o.EmptyPollBackoff <= 0 {
		o.EmptyPollBackoff = 500 * time.Millisecond
	}
	if o.RetryAttempts <= 0 {
		o.RetryAttempts = 3
	}
	if o.RetryDelay <= 0 {
		o.RetryDelay = 2 * time.Second
	}
	return o
}

// Coordinator drives one adapter against one writer. It carries no
// package-level mutable state (spec §9 "Global state"): every run is
// scoped to its own Coordinator value.
type Coordinator struct {
	Adapter drivers.Adapter
	Writer  target.Writer
	Store   *checkpoint.Store
	Tag     string // checkpoint tag, typically the source's logical name
}

// Full runs the full-dump phase: prepare capture, stream every row
// through the converter (performed by the adapter's FullIterator,
// which already yields unified types.Record values) and into the
// writer, then snapshot the post-dump checkpoint.
func (c *Coordinator) Full(ctx context.Context, opts Options) (cpT1, cpT2 types.Checkpoint, err error) {
	opts = opts.withDefaults()

	logger.Infof("full:start source=%s", c.Adapter.Name())
	cpT1, err = c.Adapter.PrepareFull(ctx)
	if err != nil {
		return nil, nil, errs.New(errs.CaptureSetup, "full.prepare", err)
	}
	if opts.EmitCheckpoints {
		if err := c.persist(checkpoint.FullSyncStart, cpT1); err != nil {
			return nil, nil, err
		}
	}

	next, closeIter, err := c.Adapter.FullIterator(ctx)
	if err != nil {
		return nil, nil, errs.New(errs.Connectivity, "full.iterator", err)
	}
	defer closeIter()

	// The dump is streamed through a bounded channel: one goroutine
	// reads and batches records off the adapter's iterator, the other
	// applies finished batches to the writer. Neither can outrun the
	// other by more than fullChannelCapacity batches.
	batches := make(chan []types.Change, fullChannelCapacity)
	group, groupCtx := errgroup.WithContext(ctx)

	group.Go(func() error {
		defer safego.Close(batches)
		batch := make([]types.Change, 0, opts.BatchSize)
		for {
			if groupCtx.Err() != nil {
				return errs.New(errs.Cancellation, "full.dump", groupCtx.Err())
			}
			rec, ok, err := next()
			if err != nil {
				return errs.New(errs.Connectivity, "full.dump", err)
			}
			if !ok {
				if len(batch) > 0 {
					safego.Insert(batches, batch)
				}
				return nil
			}
			batch = append(batch, types.NewUpsert(rec.Table, rec.ID, rec.Fields))
			if len(batch) >= opts.BatchSize {
				safego.Insert(batches, batch)
				batch = make([]types.Change, 0, opts.BatchSize)
			}
		}
	})

	group.Go(func() error {
		for batch := range batches {
			logger.Debugf("full:dump flushing batch of %d", len(batch))
			applyErr := utils.Retry(groupCtx, opts.RetryAttempts, opts.RetryDelay, "full.apply", func() error {
				return c.Writer.Apply(groupCtx, batch)
			})
			if applyErr != nil {
				return errs.New(errs.TargetWrite, "full.apply", applyErr)
			}
		}
		return nil
	})

	if err := group.Wait(); err != nil {
		return nil, nil, err
	}

	cpT2, err = c.Adapter.CurrentCheckpoint(ctx)
	if err != nil {
		return nil, nil, errs.New(errs.Connectivity, "full.current_checkpoint", err)
	}
	if opts.EmitCheckpoints {
		if err := c.persist(checkpoint.FullSyncEnd, cpT2); err != nil {
			return nil, nil, err
		}
	}
	logger.Infof("full:end source=%s", c.Adapter.Name())
	return cpT1, cpT2, nil
}

// Incremental runs the peek-process-advance loop. It always starts
// from the caller-supplied checkpoint - callers must pass cp_t1, never
// cp_t2, so the (t1, t2] window is replayed and rewrites any stale
// versions the inconsistent full dump captured.
func (c *Coordinator) Incremental(ctx context.Context, from types.Checkpoint, opts Options) error {
	opts = opts.withDefaults()
	applied := 0
	cur := from

	for {
		if !opts.Deadline.IsZero() && time.Now().After(opts.Deadline) {
			logger.Infof("incremental: deadline reached, stopping")
			return nil
		}
		if opts.MaxMessages > 0 && applied >= opts.MaxMessages {
			logger.Infof("incremental: max_messages reached, stopping")
			return nil
		}
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		remaining := opts.BatchSize
		if opts.MaxMessages > 0 && opts.MaxMessages-applied < remaining {
			remaining = opts.MaxMessages - applied
		}

		logger.Debugf("incremental:peek from=%v max=%d", cur, remaining)
		var result drivers.PeekResult
		var staleErr error
		peekErr := utils.Retry(ctx, opts.RetryAttempts, opts.RetryDelay, "incremental.peek", func() error {
			r, err := c.Adapter.Peek(ctx, cur, remaining)
			if err != nil {
				if errs.Is(err, errs.StaleCheckpoint) {
					// A resumed checkpoint that's no longer valid at
					// the source never becomes valid by retrying.
					staleErr = err
					return nil
				}
				return err
			}
			result = r
			return nil
		})
		if staleErr != nil {
			return staleErr
		}
		if peekErr != nil {
			return errs.New(errs.Connectivity, "incremental.peek", peekErr)
		}

		if len(result.Changes) == 0 {
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(opts.EmptyPollBackoff):
			}
			continue
		}

		applyErr := utils.Retry(ctx, opts.RetryAttempts, opts.RetryDelay, "incremental.apply", func() error {
			return c.Writer.Apply(ctx, result.Changes)
		})
		if applyErr != nil {
			// Abort without advancing: the same changes are
			// redelivered on the next Peek.
			return errs.New(errs.TargetWrite, "incremental.apply", applyErr)
		}

		if err := c.Adapter.Advance(ctx, result.NextAfter); err != nil {
			return errs.New(errs.Connectivity, "incremental.advance", err)
		}
		if opts.EmitCheckpoints {
			if err := c.persist(checkpoint.IncrementalProgress, result.NextAfter); err != nil {
				return err
			}
		}
		logger.Infof("incremental:advance source=%s applied=%d", c.Adapter.Name(), len(result.Changes))

		cur = result.NextAfter
		applied += len(result.Changes)

		if opts.ToCheckpoint != nil {
			if ordered, ok := cur.(types.Ordered); ok && ordered.Compare(opts.ToCheckpoint) >= 0 {
				logger.Infof("incremental: reached to_checkpoint, stopping")
				return nil
			}
		}
	}
}

func (c *Coordinator) persist(phase checkpoint.Phase, cp types.Checkpoint) error {
	payload, err := json.Marshal(cp)
	if err != nil {
		return errs.New(errs.Configuration, "checkpoint.marshal", err)
	}
	if err := c.Store.Save(c.Tag, cp.Backend(), phase, payload); err != nil {
		return errs.New(errs.Configuration, "checkpoint.save", err)
	}
	return nil
}
