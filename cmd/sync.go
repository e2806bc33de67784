package cmd

import (
	"github.com/spf13/cobra"
)

// syncCmd is the legacy alias for `from <source> full` followed
// immediately by `from <source> incremental`, kept for operators
// migrating from the pre-checkpoint-split tool.
var syncCmd = &cobra.Command{
	Use:   "sync <source>",
	Short: "Legacy alias: run full sync then incremental sync against <source>",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		source := args[0]
		emitCheckpoints = true // the incremental leg below needs cp_t1 on disk
		if err := runFull(cmd.Context(), source); err != nil {
			return err
		}
		return runIncremental(cmd.Context(), source)
	},
}
