package habit

import (
	"fmt"

	"github.com/felixgeelhaar/cadence/adapter/cli"
	"github.com/felixgeelhaar/cadence/internal/habits/application/queries"
	"github.com/spf13/cobra"
)

var habitName string

var streakCmd = &cobra.Command{
	Use:   "longest-streak",
	Short: "Show the longest streak across habits",
	Long: `Show the habit (or habits, when tied) with the longest run of
completions that were each exactly one period apart.

Examples:
  cadence longest-streak
  cadence longest-streak --habit-name "Read Book"`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := cli.RequireApp()
		if err != nil {
			return err
		}

		entries, err := app.LongestStreaksHandler.Handle(cmd.Context(), queries.LongestStreaksQuery{HabitName: habitName})
		if err != nil {
			return fmt.Errorf("failed to compute streaks: %w", err)
		}

		if len(entries) == 0 {
			if habitName != "" {
				fmt.Fprintf(out(cmd), "No streak found for habit '%s'.\n", habitName)
			} else {
				fmt.Fprintln(out(cmd), "No streaks found for any habits.")
			}
			return nil
		}

		for _, e := range entries {
			fmt.Fprintf(out(cmd), "The longest streak for habit '%s' is %d %s, without interruption.\n", e.HabitName, e.Streak, e.Unit)
		}
		return nil
	},
}

func init() {
	streakCmd.Flags().StringVar(&habitName, "habit-name", "", "limit to one habit")
}
