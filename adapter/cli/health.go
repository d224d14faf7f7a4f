package cli

import (
	"fmt"

	"github.com/felixgeelhaar/cadence/pkg/observability"
	"github.com/spf13/cobra"
)

// HealthCmd reports the state of the database and cache connections.
var HealthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check database and cache connectivity",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := RequireApp()
		if err != nil {
			return err
		}
		if app.Health == nil {
			fmt.Fprintln(cmd.OutOrStdout(), "ok")
			return nil
		}

		report := app.Health.Check(cmd.Context())
		for _, name := range app.Health.Names() {
			result := report.Checks[name]
			line := fmt.Sprintf("%-10s %s", name, result.Status)
			if result.Message != "" {
				line += " (" + result.Message + ")"
			}
			fmt.Fprintln(cmd.OutOrStdout(), line)
		}
		if report.Status == observability.HealthStatusUnhealthy {
			return fmt.Errorf("unhealthy")
		}
		return nil
	},
}
