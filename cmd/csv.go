package cmd

import (
	"github.com/spf13/cobra"

	csvdriver "github.com/surrealdb/surreal-sync/drivers/csv"
	"github.com/surrealdb/surreal-sync/sync"
)

// csvCmd is the legacy alias for a full-dump-only RFC-4180 CSV
// directory sync; CSV has no incremental capability (§4.2.5).
var csvCmd = &cobra.Command{
	Use:   "csv",
	Short: "Full-dump sync from a directory of CSV files",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		adapter := csvdriver.New(csvdriver.Options{Dir: sourceURI})

		writer, err := buildWriter(ctx)
		if err != nil {
			return err
		}
		defer writer.Close(ctx)

		store, err := buildStore()
		if err != nil {
			return err
		}

		coord := &sync.Coordinator{Adapter: adapter, Writer: writer, Store: store, Tag: "csv"}
		_, _, err = coord.Full(ctx, sync.Options{BatchSize: batchSize, EmitCheckpoints: emitCheckpoints})
		return err
	},
}
