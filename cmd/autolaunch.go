package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/timvw/byobu-select/internal/prefs"
)

var autolaunchCmd = &cobra.Command{
	Use:       "autolaunch [on|off]",
	Short:     "Show or change whether byobu launches at login",
	Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
	ValidArgs: []string{"on", "off"},
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		cfg, tel, err := setup(ctx)
		if err != nil {
			return err
		}
		defer teardown(ctx, tel)

		store := prefs.New(cfg, metricsOf(tel))
		if len(args) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), onOff(store.Autolaunch()))
			return nil
		}

		on := args[0] == "on"
		if err := store.SetAutolaunch(ctx, on); err != nil {
			return fmt.Errorf("autolaunch %s: %w", args[0], err)
		}
		if on {
			fmt.Fprintln(cmd.OutOrStdout(), "Byobu will be launched automatically next time you login.")
		} else {
			fmt.Fprintln(cmd.OutOrStdout(), "Byobu will not be launched next time you login.")
		}
		return nil
	},
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}

func init() {
	rootCmd.AddCommand(autolaunchCmd)
}
