package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/surrealdb/surreal-sync/errs"
	"github.com/surrealdb/surreal-sync/sync"
	"github.com/surrealdb/surreal-sync/types"
	"github.com/surrealdb/surreal-sync/utils/logger"
)

// fromCmd implements the primary `from <source> <full|incremental>`
// grammar from §6.
var fromCmd = &cobra.Command{
	Use:   "from <source> <full|incremental>",
	Short: "Sync from a source database into SurrealDB",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		source, mode := args[0], args[1]
		switch mode {
		case "full":
			return runFull(cmd.Context(), source)
		case "incremental":
			return runIncremental(cmd.Context(), source)
		default:
			return errs.New(errs.Configuration, "from", fmt.Errorf("unknown mode %q, expected full or incremental", mode))
		}
	},
}

func runFull(ctx context.Context, source string) error {
	adapter, _, err := connectAdapter(ctx, source)
	if err != nil {
		return err
	}
	defer adapter.Close(ctx)

	if !adapter.Capabilities().SupportsFull {
		return errs.New(errs.Configuration, "from.full", fmt.Errorf("%s has no full-dump capability", source))
	}

	writer, err := buildWriter(ctx)
	if err != nil {
		return err
	}
	defer writer.Close(ctx)

	store, err := buildStore()
	if err != nil {
		return err
	}

	coord := &sync.Coordinator{Adapter: adapter, Writer: writer, Store: store, Tag: source}
	cpT1, cpT2, err := coord.Full(ctx, sync.Options{BatchSize: batchSize, EmitCheckpoints: emitCheckpoints})
	if err != nil {
		return err
	}
	logger.Infof("full sync complete: cp_t1=%v cp_t2=%v", cpT1, cpT2)
	return nil
}

func runIncremental(ctx context.Context, source string) error {
	adapter, parse, err := connectAdapter(ctx, source)
	if err != nil {
		return err
	}
	defer adapter.Close(ctx)

	if !adapter.Capabilities().SupportsIncremental {
		return errs.New(errs.Configuration, "from.incremental", fmt.Errorf("%s has no incremental capability", source))
	}

	writer, err := buildWriter(ctx)
	if err != nil {
		return err
	}
	defer writer.Close(ctx)

	store, err := buildStore()
	if err != nil {
		return err
	}

	from, err := resolveFrom(store, source, incrementalFrom, parse)
	if err != nil {
		return err
	}

	opts := sync.Options{BatchSize: batchSize, EmitCheckpoints: emitCheckpoints}
	if incrementalTo != "" {
		to, err := parse(incrementalTo)
		if err != nil {
			return err
		}
		orderedTo, ok := to.(types.Ordered)
		if !ok {
			return errs.New(errs.Configuration, "from.incremental", fmt.Errorf("%s checkpoints do not support --incremental-to", source))
		}
		opts.ToCheckpoint = orderedTo
	}
	if timeoutFlag != "" {
		d, err := time.ParseDuration(timeoutFlag)
		if err != nil {
			return errs.New(errs.Configuration, "from.incremental", fmt.Errorf("invalid --timeout %q: %w", timeoutFlag, err))
		}
		opts.Deadline = time.Now().Add(d)
	}

	coord := &sync.Coordinator{Adapter: adapter, Writer: writer, Store: store, Tag: source}
	if err := coord.Incremental(ctx, from, opts); err != nil {
		if errs.Is(err, errs.Cancellation) {
			logger.Infof("incremental sync stopped: %v", err)
			return nil
		}
		return err
	}
	return nil
}
