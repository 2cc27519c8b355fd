package cmd

import (
	"github.com/spf13/cobra"

	"github.com/abhisek/kmatcher/internal/router"
)

var rootCmd = &cobra.Command{
	Use:   "kmatcher [result-id]",
	Short: "Compatibility questionnaire for two",
	Long: `kmatcher lets two people grade the same questions privately and shows
only the answers where both agree.

Run it without arguments to answer the questionnaire and get a code. Your
partner runs "kmatcher <code>" to answer against it; once both have
submitted, the same command shows the matches.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := "/"
		if len(args) == 1 {
			path = "/" + args[0]
		}
		return runApp(cmd, router.Resolve(path))
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Path to a YAML config file")
	rootCmd.PersistentFlags().String("db", "", "Path to SQLite database file (overrides KMATCHER_DB env var)")
	rootCmd.PersistentFlags().String("backend", "", "Backend base URL (overrides backend.url)")

	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(versionCmd)
}
