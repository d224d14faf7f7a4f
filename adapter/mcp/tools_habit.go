package mcp

import (
	"context"
	"errors"

	"github.com/felixgeelhaar/cadence/adapter/cli"
	"github.com/felixgeelhaar/cadence/internal/habits/application/commands"
	"github.com/felixgeelhaar/cadence/internal/habits/application/queries"
	"github.com/felixgeelhaar/cadence/internal/habits/domain"
	"github.com/felixgeelhaar/mcp-go"
)

var errNoDatabase = errors.New("habit tracking requires database connection")

type habitListInput struct {
	Periodicity string `json:"periodicity,omitempty"`
}

type habitNameInput struct {
	Name string `json:"name" jsonschema:"required"`
}

type habitAddInput struct {
	Name        string `json:"name" jsonschema:"required"`
	Description string `json:"description,omitempty"`
	Periodicity string `json:"periodicity" jsonschema:"required"`
}

type habitCompleteInput struct {
	Name        string `json:"name" jsonschema:"required"`
	CompletedAt string `json:"completed_at,omitempty"`
}

type habitStreaksInput struct {
	HabitName string `json:"habit_name,omitempty"`
}

type habitBrokenInput struct {
	At string `json:"at,omitempty"`
}

type habitDeleteResult struct {
	Name    string `json:"name"`
	Deleted bool   `json:"deleted"`
}

// habitTools adapts the habit handlers to MCP tool signatures.
type habitTools struct {
	app *cli.App
}

func registerHabitTools(srv *mcp.Server, deps ToolDependencies) error {
	tools := habitTools{app: deps.App}

	srv.Tool("habit.list").
		Description("List habits, optionally only those with the given periodicity (daily or weekly)").
		Handler(tools.list)

	srv.Tool("habit.get").
		Description("Show a habit with its completion count, last completion and longest streak").
		Handler(tools.get)

	srv.Tool("habit.streaks").
		Description("Report the habit or habits holding the longest streak").
		Handler(tools.streaks)

	srv.Tool("habit.broken").
		Description("List habits that are overdue for their periodicity").
		Handler(tools.broken)

	srv.Tool("habit.add").
		Description("Add a daily or weekly habit").
		Handler(tools.add)

	srv.Tool("habit.complete").
		Description("Record a completion for a habit, now or at completed_at").
		Handler(tools.complete)

	srv.Tool("habit.delete").
		Description("Delete a habit and its completions").
		Handler(tools.delete)

	return nil
}

func (t habitTools) list(ctx context.Context, input habitListInput) ([]queries.HabitDTO, error) {
	if t.app == nil || t.app.ListHabitsHandler == nil {
		return nil, errNoDatabase
	}
	return t.app.ListHabitsHandler.Handle(ctx, queries.ListHabitsQuery{Periodicity: input.Periodicity})
}

func (t habitTools) get(ctx context.Context, input habitNameInput) (*queries.HabitDetailDTO, error) {
	if t.app == nil || t.app.GetHabitHandler == nil {
		return nil, errNoDatabase
	}
	name, err := requireName(input.Name)
	if err != nil {
		return nil, err
	}
	return t.app.GetHabitHandler.Handle(ctx, queries.GetHabitQuery{Name: name})
}

func (t habitTools) streaks(ctx context.Context, input habitStreaksInput) ([]domain.StreakEntry, error) {
	if t.app == nil || t.app.LongestStreaksHandler == nil {
		return nil, errNoDatabase
	}
	entries, err := t.app.LongestStreaksHandler.Handle(ctx, queries.LongestStreaksQuery{HabitName: input.HabitName})
	if err != nil {
		return nil, err
	}
	if entries == nil {
		entries = []domain.StreakEntry{}
	}
	return entries, nil
}

func (t habitTools) broken(ctx context.Context, input habitBrokenInput) ([]queries.BrokenHabitDTO, error) {
	if t.app == nil || t.app.BrokenHabitsHandler == nil {
		return nil, errNoDatabase
	}
	at, err := parseTimestamp(input.At)
	if err != nil {
		return nil, err
	}
	broken, err := t.app.BrokenHabitsHandler.Handle(ctx, queries.BrokenHabitsQuery{At: at})
	if err != nil {
		return nil, err
	}
	if broken == nil {
		broken = []queries.BrokenHabitDTO{}
	}
	return broken, nil
}

func (t habitTools) add(ctx context.Context, input habitAddInput) (*commands.AddHabitResult, error) {
	if t.app == nil || t.app.AddHabitHandler == nil {
		return nil, errNoDatabase
	}
	name, err := requireName(input.Name)
	if err != nil {
		return nil, err
	}
	return t.app.AddHabitHandler.Handle(ctx, commands.AddHabitCommand{
		Name:        name,
		Description: input.Description,
		Periodicity: input.Periodicity,
	})
}

func (t habitTools) complete(ctx context.Context, input habitCompleteInput) (*commands.CompleteHabitResult, error) {
	if t.app == nil || t.app.CompleteHabitHandler == nil {
		return nil, errNoDatabase
	}
	name, err := requireName(input.Name)
	if err != nil {
		return nil, err
	}
	at, err := parseTimestamp(input.CompletedAt)
	if err != nil {
		return nil, err
	}
	return t.app.CompleteHabitHandler.Handle(ctx, commands.CompleteHabitCommand{Name: name, CompletedAt: at})
}

func (t habitTools) delete(ctx context.Context, input habitNameInput) (*habitDeleteResult, error) {
	if t.app == nil || t.app.DeleteHabitHandler == nil {
		return nil, errNoDatabase
	}
	name, err := requireName(input.Name)
	if err != nil {
		return nil, err
	}
	if err := t.app.DeleteHabitHandler.Handle(ctx, commands.DeleteHabitCommand{Name: name}); err != nil {
		return nil, err
	}
	return &habitDeleteResult{Name: name, Deleted: true}, nil
}
