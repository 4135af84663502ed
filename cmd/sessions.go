package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/timvw/byobu-select/internal/resolver"
)

var flagLong bool

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "List the sessions offered at startup",
	Long: `List the multiplexer sessions byobu-select would offer, in backend order.

Hidden sessions (leading '_') and session-group members (any '-' in the
name) are left out. Use --long to print the full backend description.`,
	Args: cobra.NoArgs,
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
		entries := r.Enumerate(ctx)
		r.Metrics.RecordEnumerated(ctx, len(entries))

		out := cmd.OutOrStdout()
		for _, e := range entries {
			if flagLong {
				fmt.Fprintln(out, e.Label)
			} else {
				fmt.Fprintln(out, e.Handle.Name)
			}
		}
		return nil
	},
}

func init() {
	sessionsCmd.Flags().BoolVarP(&flagLong, "long", "l", false, "print the full session description")
	rootCmd.AddCommand(sessionsCmd)
}
