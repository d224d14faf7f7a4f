package habit

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"regexp"
	"testing"
	"time"

	"github.com/felixgeelhaar/cadence/adapter/cli"
	internalApp "github.com/felixgeelhaar/cadence/internal/app"
	"github.com/felixgeelhaar/cadence/internal/habits/application/commands"
	"github.com/felixgeelhaar/cadence/internal/habits/application/queries"
	"github.com/felixgeelhaar/cadence/pkg/config"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupCLI(t *testing.T) *internalApp.Container {
	t.Helper()

	cfg := config.Default()
	cfg.Database.Driver = config.DriverSQLite
	cfg.Database.SQLitePath = filepath.Join(t.TempDir(), "cadence.db")
	cfg.SeedExamples = false

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	container, err := internalApp.NewContainer(context.Background(), &cfg, logger)
	require.NoError(t, err)

	cli.SetApp(cli.NewApp(container))
	t.Cleanup(func() {
		cli.SetApp(nil)
		_ = container.Close()
		description, habitName, seedPattern = "", "", string(commands.SeedPatternRandom)
	})
	return container
}

func run(t *testing.T, cmd *cobra.Command, args ...string) string {
	t.Helper()
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetContext(context.Background())
	t.Cleanup(func() { cmd.SetOut(nil) })

	require.NoError(t, cmd.RunE(cmd, args))
	return buf.String()
}

func TestCLIHabitEndToEnd(t *testing.T) {
	setupCLI(t)

	assert.Equal(t, "No habits found.\n", run(t, listCmd))
	assert.Equal(t, "No streaks found for any habits.\n", run(t, streakCmd))
	assert.Equal(t, "All habits are up to date and not broken.\n", run(t, checkCmd))

	description = "Read at least 10 pages every night."
	assert.Equal(t, "Habit 'Read Book' added.\n", run(t, addCmd, "Read Book", "daily"))
	description = ""
	assert.Equal(t, "Habit 'Weekly Review' added.\n", run(t, addCmd, "Weekly Review", "Weekly"))
	assert.Equal(t, "Habit 'Read Book' already exists.\n", run(t, addCmd, "Read Book", "weekly"))

	assert.Equal(t,
		"Current Habits:\n- Read Book: Read at least 10 pages every night.\n- Weekly Review: \n",
		run(t, listCmd))
	assert.Equal(t, "Habits with Weekly periodicity:\n- Weekly Review: \n", run(t, listByPeriodCmd, "weekly"))

	assert.Equal(t,
		"Habit 'Read Book' (Daily) has never been completed and is broken.\n"+
			"Habit 'Weekly Review' (Weekly) has never been completed and is broken.\n",
		run(t, checkCmd))

	output := run(t, completeCmd, "Read Book")
	assert.Regexp(t, regexp.MustCompile(`^Habit 'Read Book' marked as complete at \d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}(Z|[+-]\d{2}:\d{2})\.\n$`), output)

	assert.Equal(t, "The longest streak for habit 'Read Book' is 1 days, without interruption.\n", run(t, streakCmd))
	habitName = "Weekly Review"
	assert.Equal(t, "No streak found for habit 'Weekly Review'.\n", run(t, streakCmd))
	habitName = ""

	assert.Equal(t, "Habit 'Weekly Review' (Weekly) has never been completed and is broken.\n", run(t, checkCmd))

	assert.Equal(t, "Habit 'Read Book' and its completions have been deleted.\n", run(t, deleteCmd, "Read Book"))
	assert.Equal(t, "Habit 'Read Book' does not exist.\n", run(t, deleteCmd, "Read Book"))
	assert.Equal(t, "Habit 'Read Book' does not exist.\n", run(t, completeCmd, "Read Book"))
	assert.Equal(t, "No habits found with daily periodicity.\n", run(t, listByPeriodCmd, "DAILY"))
}

func TestCLISeedFixed(t *testing.T) {
	container := setupCLI(t)

	seedPattern = "fixed"
	assert.Equal(t, "Seeded 5 habits and 76 completions.\n", run(t, seedCmd))
	assert.Equal(t, "Seeded 0 habits and 0 completions.\n", run(t, seedCmd))

	output := run(t, streakCmd)
	assert.Contains(t, output, "The longest streak for habit 'Read Book' is 6 days, without interruption.\n")
	assert.Contains(t, output, "The longest streak for habit 'Exercise' is 6 days, without interruption.\n")
	assert.Contains(t, output, "The longest streak for habit 'Meditate' is 6 days, without interruption.\n")

	detail, err := container.GetHabitHandler.Handle(context.Background(), queriesGet("Weekly Review"))
	require.NoError(t, err)
	assert.Equal(t, 2, detail.Completions)

	// Daily habits were last completed yesterday; weekly ones today.
	assert.Equal(t, "All habits are up to date and not broken.\n", run(t, checkCmd))
}

func TestCLIRejectsBadInput(t *testing.T) {
	setupCLI(t)
	ctx := context.Background()

	addCmd.SetContext(ctx)
	err := addCmd.RunE(addCmd, []string{"Swim", "monthly"})
	assert.ErrorContains(t, err, "periodicity must be daily or weekly")

	listByPeriodCmd.SetContext(ctx)
	err = listByPeriodCmd.RunE(listByPeriodCmd, []string{"hourly"})
	assert.ErrorContains(t, err, "periodicity must be daily or weekly")

	seedPattern = "sometimes"
	seedCmd.SetContext(ctx)
	err = seedCmd.RunE(seedCmd, nil)
	assert.ErrorIs(t, err, commands.ErrInvalidSeedPattern)
}

func TestCLIRequiresApp(t *testing.T) {
	cli.SetApp(nil)
	listCmd.SetContext(context.Background())
	err := listCmd.RunE(listCmd, nil)
	assert.ErrorContains(t, err, "requires a database connection")
}

func TestCommandsDeclarationOrder(t *testing.T) {
	var names []string
	for _, cmd := range Commands() {
		names = append(names, cmd.Name())
	}
	assert.Equal(t, []string{
		"add-habit", "delete-habit", "complete-habit", "list-habits",
		"list-by-period", "longest-streak", "check-habits", "seed",
	}, names)
}

func TestCompleteHabitTimestampIsRecent(t *testing.T) {
	setupCLI(t)
	run(t, addCmd, "Stretch", "daily")

	before := time.Now().Add(-time.Second)
	output := run(t, completeCmd, "Stretch")
	stamp := regexp.MustCompile(`at (\S+)\.\n$`).FindStringSubmatch(output)
	require.Len(t, stamp, 2)

	at, err := time.Parse(time.RFC3339, stamp[1])
	require.NoError(t, err)
	assert.False(t, at.Before(before.Truncate(time.Second)))
}

func queriesGet(name string) queries.GetHabitQuery {
	return queries.GetHabitQuery{Name: name}
}
