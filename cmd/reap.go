package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/timvw/byobu-select/internal/resolver"
)

var reapCmd = &cobra.Command{
	Use:   "reap <session>",
	Short: "Kill orphaned group sessions of a session",
	Long: `Kill the unattached "_<session>-<n>" sessions that belong to the same
session group as <session>. These are left behind when a client of a reused
session disconnects. Killed session names are printed one per line.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		cfg, tel, err := setup(ctx)
		if err != nil {
			return err
		}
		defer teardown(ctx, tel)

		m, err := getMultiplexer(cfg)
		if err != nil {
			return err
		}
		r := &resolver.Resolver{Mux: m, Metrics: metricsOf(tel)}
		for _, name := range r.ReapZombies(ctx, args[0]) {
			fmt.Fprintln(cmd.OutOrStdout(), name)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(reapCmd)
}
