package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/surrealdb/surreal-sync/drivers"
	"github.com/surrealdb/surreal-sync/drivers/mysql"
	"github.com/surrealdb/surreal-sync/errs"
	"github.com/surrealdb/surreal-sync/utils/logger"
)

var pruneBefore uint64

// teardownCmd removes process-outliving capture infrastructure (MySQL
// triggers + audit table, PostgreSQL replication slot). It is never
// invoked automatically by `from`/`sync`.
var teardownCmd = &cobra.Command{
	Use:   "teardown <source>",
	Short: "Remove capture infrastructure left behind by a source (triggers, replication slot)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		source := args[0]

		adapter, _, err := connectAdapter(ctx, source)
		if err != nil {
			return err
		}
		defer adapter.Close(ctx)

		if pruneBefore > 0 {
			mysqlAdapter, ok := adapter.(*mysql.Adapter)
			if !ok {
				return errs.New(errs.Configuration, "teardown", fmt.Errorf("--prune-before is only supported for mysql"))
			}
			if err := mysqlAdapter.PruneBefore(ctx, pruneBefore); err != nil {
				return err
			}
			logger.Infof("teardown: pruned mysql audit rows before seq=%d", pruneBefore)
			return nil
		}

		teardowner, ok := adapter.(drivers.Teardowner)
		if !ok {
			return errs.New(errs.Configuration, "teardown", fmt.Errorf("%s has no capture infrastructure to tear down", source))
		}
		if err := teardowner.Teardown(ctx); err != nil {
			return err
		}
		logger.Infof("teardown: removed capture infrastructure for %s", source)
		return nil
	},
}

func init() {
	teardownCmd.Flags().Uint64Var(&pruneBefore, "prune-before", 0, "MySQL only: delete audit rows with seq < this value instead of tearing down triggers")
}
