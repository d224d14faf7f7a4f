package habit

import (
	"fmt"

	"github.com/felixgeelhaar/cadence/adapter/cli"
	"github.com/felixgeelhaar/cadence/internal/habits/application/queries"
	"github.com/felixgeelhaar/cadence/internal/habits/domain"
	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list-habits",
	Short: "List all habits",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := cli.RequireApp()
		if err != nil {
			return err
		}

		habits, err := app.ListHabitsHandler.Handle(cmd.Context(), queries.ListHabitsQuery{})
		if err != nil {
			return fmt.Errorf("failed to list habits: %w", err)
		}

		if len(habits) == 0 {
			fmt.Fprintln(out(cmd), "No habits found.")
			return nil
		}
		fmt.Fprintln(out(cmd), "Current Habits:")
		printHabits(cmd, habits)
		return nil
	},
}

var listByPeriodCmd = &cobra.Command{
	Use:   "list-by-period PERIODICITY",
	Short: "List habits with the given periodicity",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := cli.RequireApp()
		if err != nil {
			return err
		}

		periodicity, err := domain.ParsePeriodicity(args[0])
		if err != nil {
			return err
		}

		habits, err := app.ListHabitsHandler.Handle(cmd.Context(), queries.ListHabitsQuery{
			Periodicity: string(periodicity),
		})
		if err != nil {
			return fmt.Errorf("failed to list habits: %w", err)
		}

		if len(habits) == 0 {
			fmt.Fprintf(out(cmd), "No habits found with %s periodicity.\n", periodicity)
			return nil
		}
		fmt.Fprintf(out(cmd), "Habits with %s periodicity:\n", periodicity.Label())
		printHabits(cmd, habits)
		return nil
	},
}

func printHabits(cmd *cobra.Command, habits []queries.HabitDTO) {
	for _, h := range habits {
		fmt.Fprintf(out(cmd), "- %s\n", h.Summary)
	}
}
