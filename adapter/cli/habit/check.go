package habit

import (
	"fmt"

	"github.com/felixgeelhaar/cadence/adapter/cli"
	"github.com/felixgeelhaar/cadence/internal/habits/application/queries"
	"github.com/spf13/cobra"
)

var checkCmd = &cobra.Command{
	Use:   "check-habits",
	Short: "Report habits that are overdue",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := cli.RequireApp()
		if err != nil {
			return err
		}

		broken, err := app.BrokenHabitsHandler.Handle(cmd.Context(), queries.BrokenHabitsQuery{})
		if err != nil {
			return fmt.Errorf("failed to check habits: %w", err)
		}

		if len(broken) == 0 {
			fmt.Fprintln(out(cmd), "All habits are up to date and not broken.")
			return nil
		}
		for _, b := range broken {
			fmt.Fprintln(out(cmd), b.Message)
		}
		return nil
	},
}
