package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/kmatcher/internal/store"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List codes submitted from this machine",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		d, err := setup(cmd.Context(), cmd, false)
		if err != nil {
			return fmt.Errorf("setup: %w", err)
		}
		defer d.Close()

		recs, err := d.store.HistoryRepo().Submissions(cmd.Context(), store.QueryOpts{Limit: limit})
		if err != nil {
			return fmt.Errorf("query history: %w", err)
		}

		out := cmd.OutOrStdout()
		if len(recs) == 0 {
			fmt.Fprintln(out, "No submissions yet.")
			return nil
		}

		fmt.Fprintf(out, "%-19s  %-36s  %-8s  %7s  %s\n", "Submitted", "Code", "Role", "Answers", "Matched")
		fmt.Fprintln(out, strings.Repeat("─", 90))
		for _, r := range recs {
			role := "started"
			if r.PartnerID != "" {
				role = "joined"
			}
			matched := ""
			if r.Combined {
				matched = "✓"
			}
			fmt.Fprintf(out, "%-19s  %-36s  %-8s  %7d  %s\n",
				r.CreatedAt.Local().Format("2006-01-02 15:04:05"),
				r.ResultID, role, r.AnswerCount, matched)
		}
		return nil
	},
}

func init() {
	historyCmd.Flags().Int("limit", 20, "Maximum number of entries")
}
