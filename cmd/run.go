package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/kmatcher/internal/app"
	"github.com/abhisek/kmatcher/internal/questionnaire"
	"github.com/abhisek/kmatcher/internal/results"
	"github.com/abhisek/kmatcher/internal/router"
)

// runApp builds dependencies and launches the TUI at route.
func runApp(cmd *cobra.Command, route router.Route) error {
	d, err := setup(cmd.Context(), cmd, false)
	if err != nil {
		return fmt.Errorf("setup: %w", err)
	}
	defer d.Close()

	return app.Run(app.Options{
		Questionnaire: questionnaire.New(d.client, d.kv, d.logger.Named("questionnaire")),
		Submitter:     d.client,
		Renderer:      results.NewRenderer(d.client, d.logger.Named("results")),
		History:       d.store.HistoryRepo(),
		Logger:        d.logger,
		Route:         route,
	})
}
