package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/timvw/byobu-select/internal/prefs"
)

var escapeCmd = &cobra.Command{
	Use:   "escape [KEY]",
	Short: "Show or change the escape key",
	Long: `Without arguments, print the current escape key (used as ctrl-KEY).

With KEY, install it through byobu-ctrl-a. Only letters are accepted; digits,
'/' and '\' fall back to the default, A.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		cfg, tel, err := setup(ctx)
		if err != nil {
			return err
		}
		defer teardown(ctx, tel)

		store := prefs.New(cfg, metricsOf(tel))
		if len(args) == 0 {
			fmt.Fprintf(cmd.OutOrStdout(), "ctrl-%s\n", store.EscapeKey())
			return nil
		}

		key := prefs.NormalizeEscapeKey(args[0])
		if err := store.SetEscapeKey(ctx, key); err != nil {
			return fmt.Errorf("setting escape key: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "escape key set to ctrl-%s\n", key)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(escapeCmd)
}
