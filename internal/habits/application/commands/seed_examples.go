package commands

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/felixgeelhaar/cadence/internal/habits/domain"
	sharedApplication "github.com/felixgeelhaar/cadence/internal/shared/application"
	"github.com/felixgeelhaar/cadence/internal/shared/infrastructure/outbox"
)

// SeedPattern selects how example completions are generated.
type SeedPattern string

const (
	// SeedPatternRandom skips days and weeks at random.
	SeedPatternRandom SeedPattern = "random"
	// SeedPatternFixed produces the same history on every run.
	SeedPatternFixed SeedPattern = "fixed"
)

const (
	seedDays  = 28
	seedWeeks = 4
)

var ErrInvalidSeedPattern = errors.New("seed pattern must be random or fixed")

// ParseSeedPattern accepts "random" or "fixed"; empty means random.
func ParseSeedPattern(s string) (SeedPattern, error) {
	switch p := SeedPattern(strings.ToLower(strings.TrimSpace(s))); p {
	case "":
		return SeedPatternRandom, nil
	case SeedPatternRandom, SeedPatternFixed:
		return p, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidSeedPattern, s)
	}
}

// ExampleHabit describes one of the habits created by seeding.
type ExampleHabit struct {
	Name        string
	Description string
	Periodicity domain.Periodicity
}

// ExampleHabits are created in this order.
var ExampleHabits = []ExampleHabit{
	{Name: "Read Book", Description: "Read at least 10 pages every night.", Periodicity: domain.PeriodicityDaily},
	{Name: "Exercise", Description: "30 minutes of physical exercise.", Periodicity: domain.PeriodicityDaily},
	{Name: "Weekly Review", Description: "Reflect on goals and achievements for the week.", Periodicity: domain.PeriodicityWeekly},
	{Name: "Clean House", Description: "Do a thorough cleaning of the house every week.", Periodicity: domain.PeriodicityWeekly},
	{Name: "Meditate", Description: "Meditate for 10 minutes every morning.", Periodicity: domain.PeriodicityDaily},
}

// SeedExamplesCommand seeds the example habits. A zero Now means the current time.
type SeedExamplesCommand struct {
	Pattern SeedPattern
	Now     time.Time
}

// SeedExamplesResult counts what was created.
type SeedExamplesResult struct {
	Habits      int
	Completions int
	Skipped     []string
}

// SeedExamplesHandler populates the store with example habits and four weeks
// of completions.
type SeedExamplesHandler struct {
	habitRepo  domain.Repository
	outboxRepo outbox.Repository
	uow        sharedApplication.UnitOfWork
	rng        *rand.Rand
}

// NewSeedExamplesHandler creates a new SeedExamplesHandler.
func NewSeedExamplesHandler(habitRepo domain.Repository, outboxRepo outbox.Repository, uow sharedApplication.UnitOfWork) *SeedExamplesHandler {
	seed := uint64(time.Now().UnixNano())
	return &SeedExamplesHandler{
		habitRepo:  habitRepo,
		outboxRepo: outboxRepo,
		uow:        uow,
		rng:        rand.New(rand.NewPCG(seed, seed>>32)),
	}
}

// Handle executes the SeedExamplesCommand. Habits whose name is already taken
// are skipped along with their completions.
func (h *SeedExamplesHandler) Handle(ctx context.Context, cmd SeedExamplesCommand) (*SeedExamplesResult, error) {
	pattern := cmd.Pattern
	if pattern == "" {
		pattern = SeedPatternRandom
	}
	if pattern != SeedPatternRandom && pattern != SeedPatternFixed {
		return nil, fmt.Errorf("%w: %q", ErrInvalidSeedPattern, string(pattern))
	}
	now := cmd.Now
	if now.IsZero() {
		now = time.Now()
	}

	result := &SeedExamplesResult{}
	err := sharedApplication.WithUnitOfWork(ctx, h.uow, func(txCtx context.Context) error {
		for _, example := range ExampleHabits {
			existing, err := h.habitRepo.FindByName(txCtx, example.Name)
			if err != nil {
				return fmt.Errorf("find habit: %w", err)
			}
			if existing != nil {
				result.Skipped = append(result.Skipped, example.Name)
				continue
			}

			habit, err := domain.NewHabit(example.Name, example.Description, example.Periodicity, now)
			if err != nil {
				return err
			}
			if err := h.habitRepo.Create(txCtx, habit); err != nil {
				return err
			}

			for _, at := range h.completionTimes(pattern, example.Periodicity, now) {
				if err := h.habitRepo.RecordCompletion(txCtx, habit.Complete(at)); err != nil {
					return err
				}
				result.Completions++
			}

			if err := stageEvents(txCtx, h.outboxRepo, habit); err != nil {
				return err
			}
			result.Habits++
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

// completionTimes returns the backfilled completion instants, most recent
// first. Random completions keep the time of day of now; fixed ones fall at
// local midnight.
func (h *SeedExamplesHandler) completionTimes(pattern SeedPattern, periodicity domain.Periodicity, now time.Time) []time.Time {
	base := now
	if pattern == SeedPatternFixed {
		base = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	}

	var times []time.Time
	switch periodicity {
	case domain.PeriodicityDaily:
		for day := 0; day < seedDays; day++ {
			if h.keepDay(pattern, day) {
				times = append(times, base.AddDate(0, 0, -day))
			}
		}
	case domain.PeriodicityWeekly:
		for week := 0; week < seedWeeks; week++ {
			if h.keepWeek(pattern, week) {
				times = append(times, base.AddDate(0, 0, -7*week))
			}
		}
	}
	return times
}

func (h *SeedExamplesHandler) keepDay(pattern SeedPattern, day int) bool {
	if pattern == SeedPatternFixed {
		return day%7 != 0
	}
	return h.rng.IntN(3) != 0
}

func (h *SeedExamplesHandler) keepWeek(pattern SeedPattern, week int) bool {
	if pattern == SeedPatternFixed {
		return week%2 == 0
	}
	return h.rng.IntN(2) == 0
}
