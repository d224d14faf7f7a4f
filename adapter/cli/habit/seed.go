package habit

import (
	"fmt"

	"github.com/felixgeelhaar/cadence/adapter/cli"
	"github.com/felixgeelhaar/cadence/internal/habits/application/commands"
	"github.com/spf13/cobra"
)

var seedPattern string

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Add the example habits with four weeks of completions",
	Long: `Add five example habits and backfill four weeks of completions.
Habits that already exist are left alone.

Patterns:
  random  - skip days and weeks at random (default)
  fixed   - skip every seventh day and every other week`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := cli.RequireApp()
		if err != nil {
			return err
		}

		pattern, err := commands.ParseSeedPattern(seedPattern)
		if err != nil {
			return err
		}

		result, err := app.SeedExamplesHandler.Handle(cmd.Context(), commands.SeedExamplesCommand{Pattern: pattern})
		if err != nil {
			return fmt.Errorf("failed to seed examples: %w", err)
		}

		fmt.Fprintf(out(cmd), "Seeded %d habits and %d completions.\n", result.Habits, result.Completions)
		return nil
	},
}

func init() {
	seedCmd.Flags().StringVar(&seedPattern, "pattern", string(commands.SeedPatternRandom), "random or fixed")
}
