package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/kmatcher/internal/results"
)

var showCmd = &cobra.Command{
	Use:   "show <result-id>",
	Short: "Print the matches of a result",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := setup(cmd.Context(), cmd, false)
		if err != nil {
			return fmt.Errorf("setup: %w", err)
		}
		defer d.Close()

		width, _ := cmd.Flags().GetInt("width")
		renderer := results.NewRenderer(d.client, d.logger.Named("results"))
		view := renderer.Load(cmd.Context(), args[0])

		out := cmd.OutOrStdout()
		switch view.Kind {
		case results.KindNotFound:
			return fmt.Errorf("result %q not found", args[0])
		case results.KindError:
			return fmt.Errorf("%s: %w", view.Message, view.Err)
		case results.KindPending:
			fmt.Fprintln(out, "Waiting for your partner to submit. Share this code:", view.ResultID)
			return nil
		}

		fmt.Fprintln(out, results.RenderTable(view.Table, width))
		fmt.Fprintf(out, "\n%d matches\n", view.Table.Rows())
		return nil
	},
}

func init() {
	showCmd.Flags().Int("width", 0, "Table width (0 = fit content)")
}
