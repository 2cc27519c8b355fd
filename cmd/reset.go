package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Forget saved answers and submission history",
	RunE: func(cmd *cobra.Command, args []string) error {
		yes, _ := cmd.Flags().GetBool("yes")
		if !yes {
			return fmt.Errorf("this deletes every saved answer; rerun with --yes to confirm")
		}

		d, err := setup(cmd.Context(), cmd, false)
		if err != nil {
			return fmt.Errorf("setup: %w", err)
		}
		defer d.Close()

		if err := d.store.Reset(cmd.Context()); err != nil {
			return err
		}
		if d.redis != nil {
			n, err := d.redis.Clear(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %d answers from redis.\n", n)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Saved answers and history cleared.")
		return nil
	},
}

func init() {
	resetCmd.Flags().Bool("yes", false, "Confirm the reset")
}
