package cmd

import (
	"github.com/spf13/cobra"

	"github.com/surrealdb/surreal-sync/drivers/jsonl"
	"github.com/surrealdb/surreal-sync/sync"
)

// jsonlCmd is the legacy alias for a full-dump-only newline-delimited
// JSON directory sync; JSONL has no incremental capability (§4.2.5).
var jsonlCmd = &cobra.Command{
	Use:   "jsonl",
	Short: "Full-dump sync from a directory of JSONL files",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		adapter := jsonl.New(jsonl.Options{Dir: sourceURI})

		writer, err := buildWriter(ctx)
		if err != nil {
			return err
		}
		defer writer.Close(ctx)

		store, err := buildStore()
		if err != nil {
			return err
		}

		coord := &sync.Coordinator{Adapter: adapter, Writer: writer, Store: store, Tag: "jsonl"}
		_, _, err = coord.Full(ctx, sync.Options{BatchSize: batchSize, EmitCheckpoints: emitCheckpoints})
		return err
	},
}
