package habit

import (
	"errors"
	"fmt"

	"github.com/felixgeelhaar/cadence/adapter/cli"
	"github.com/felixgeelhaar/cadence/internal/habits/application/commands"
	"github.com/felixgeelhaar/cadence/internal/habits/domain"
	"github.com/spf13/cobra"
)

var deleteCmd = &cobra.Command{
	Use:   "delete-habit NAME",
	Short: "Delete a habit and its completions",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := cli.RequireApp()
		if err != nil {
			return err
		}

		err = app.DeleteHabitHandler.Handle(cmd.Context(), commands.DeleteHabitCommand{Name: args[0]})
		if errors.Is(err, domain.ErrHabitNotFound) {
			fmt.Fprintf(out(cmd), "Habit '%s' does not exist.\n", args[0])
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to delete habit: %w", err)
		}

		fmt.Fprintf(out(cmd), "Habit '%s' and its completions have been deleted.\n", args[0])
		return nil
	},
}
