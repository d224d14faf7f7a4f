package habit

import (
	"errors"
	"fmt"
	"time"

	"github.com/felixgeelhaar/cadence/adapter/cli"
	"github.com/felixgeelhaar/cadence/internal/habits/application/commands"
	"github.com/felixgeelhaar/cadence/internal/habits/domain"
	"github.com/spf13/cobra"
)

var completeCmd = &cobra.Command{
	Use:   "complete-habit NAME",
	Short: "Mark a habit as complete now",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := cli.RequireApp()
		if err != nil {
			return err
		}

		result, err := app.CompleteHabitHandler.Handle(cmd.Context(), commands.CompleteHabitCommand{Name: args[0]})
		if errors.Is(err, domain.ErrHabitNotFound) {
			fmt.Fprintf(out(cmd), "Habit '%s' does not exist.\n", args[0])
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to complete habit: %w", err)
		}

		fmt.Fprintf(out(cmd), "Habit '%s' marked as complete at %s.\n", args[0], result.CompletedAt.Format(time.RFC3339))
		return nil
	},
}
