package habit

import (
	"errors"
	"fmt"

	"github.com/felixgeelhaar/cadence/adapter/cli"
	"github.com/felixgeelhaar/cadence/internal/habits/application/commands"
	"github.com/felixgeelhaar/cadence/internal/habits/domain"
	"github.com/spf13/cobra"
)

var description string

var addCmd = &cobra.Command{
	Use:   "add-habit NAME PERIODICITY",
	Short: "Add a new habit",
	Long: `Add a habit to track. PERIODICITY is daily or weekly.

Examples:
  cadence add-habit "Read Book" daily --description "Read at least 10 pages"
  cadence add-habit "Weekly Review" weekly`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := cli.RequireApp()
		if err != nil {
			return err
		}

		result, err := app.AddHabitHandler.Handle(cmd.Context(), commands.AddHabitCommand{
			Name:        args[0],
			Description: description,
			Periodicity: args[1],
		})
		if errors.Is(err, domain.ErrHabitExists) {
			fmt.Fprintf(out(cmd), "Habit '%s' already exists.\n", args[0])
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to add habit: %w", err)
		}

		fmt.Fprintf(out(cmd), "Habit '%s' added.\n", result.Name)
		return nil
	},
}

func init() {
	addCmd.Flags().StringVarP(&description, "description", "d", "", "what the habit involves")
}
