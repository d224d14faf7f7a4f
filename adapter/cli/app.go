package cli

import (
	internalApp "github.com/felixgeelhaar/cadence/internal/app"
	habitCommands "github.com/felixgeelhaar/cadence/internal/habits/application/commands"
	habitQueries "github.com/felixgeelhaar/cadence/internal/habits/application/queries"
	"github.com/felixgeelhaar/cadence/pkg/config"
	"github.com/felixgeelhaar/cadence/pkg/observability"
)

// App holds the CLI application dependencies.
type App struct {
	Config  *config.Config
	Metrics observability.Metrics
	Health  *observability.HealthRegistry

	// Habit Command Handlers
	AddHabitHandler      *habitCommands.AddHabitHandler
	DeleteHabitHandler   *habitCommands.DeleteHabitHandler
	CompleteHabitHandler *habitCommands.CompleteHabitHandler
	SeedExamplesHandler  *habitCommands.SeedExamplesHandler

	// Habit Query Handlers
	ListHabitsHandler     *habitQueries.ListHabitsHandler
	GetHabitHandler       *habitQueries.GetHabitHandler
	LongestStreaksHandler *habitQueries.LongestStreaksHandler
	BrokenHabitsHandler   *habitQueries.BrokenHabitsHandler
}

// NewApp creates a CLI application backed by the container's handlers.
func NewApp(container *internalApp.Container) *App {
	return &App{
		Config:                container.Config,
		Metrics:               container.Metrics,
		Health:                container.Health,
		AddHabitHandler:       container.AddHabitHandler,
		DeleteHabitHandler:    container.DeleteHabitHandler,
		CompleteHabitHandler:  container.CompleteHabitHandler,
		SeedExamplesHandler:   container.SeedExamplesHandler,
		ListHabitsHandler:     container.ListHabitsHandler,
		GetHabitHandler:       container.GetHabitHandler,
		LongestStreaksHandler: container.LongestStreaksHandler,
		BrokenHabitsHandler:   container.BrokenHabitsHandler,
	}
}

var currentApp *App

// SetApp sets the application instance used by commands.
func SetApp(app *App) {
	currentApp = app
}

// GetApp returns the application instance used by commands.
func GetApp() *App {
	return currentApp
}
