package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"mindbot/pkg/counter"
)

var countCmd = &cobra.Command{
	Use:   "count",
	Short: "Print the persisted answer count",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Fprintln(cmd.OutOrStdout(), counter.Load(cfg.CounterFile))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(countCmd)
}
