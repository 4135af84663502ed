package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/timvw/byobu-select/internal/prefs"
)

var statusCmd = &cobra.Command{
	Use:   "status [enable|disable ITEM...]",
	Short: "List or toggle status notifications",
	Long: `Without arguments, list every status notification with its state:
"[*]" enabled, "[ ]" disabled.

With enable or disable, change the named items in ~/.byobu/status and mark
byobu for reload.`,
	Args: validateStatusArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		cfg, tel, err := setup(ctx)
		if err != nil {
			return err
		}
		defer teardown(ctx, tel)

		store := prefs.New(cfg, metricsOf(tel))
		if len(args) == 0 {
			items, err := store.ReadStatus()
			if err != nil {
				return err
			}
			for _, it := range items {
				box := "[ ]"
				if it.Enabled {
					box = "[*]"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", box, it.Name)
			}
			return nil
		}

		if err := store.SetStatusItems(ctx, args[0] == "enable", args[1:]...); err != nil {
			return err
		}
		return store.MarkReloadRequired()
	},
}

func validateStatusArgs(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return nil
	}
	if args[0] != "enable" && args[0] != "disable" {
		return fmt.Errorf("unknown action %q (expected enable or disable)", args[0])
	}
	if len(args) < 2 {
		return fmt.Errorf("%s needs at least one status item", args[0])
	}
	return nil
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
