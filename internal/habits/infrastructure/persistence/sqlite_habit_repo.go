package persistence

import (
	"context"
	"fmt"
	"time"

	"github.com/felixgeelhaar/cadence/internal/habits/domain"
	"github.com/felixgeelhaar/cadence/internal/shared/infrastructure/database"
	"github.com/google/uuid"
)

// sqliteTimeLayout is fixed width so TEXT timestamps sort chronologically.
const sqliteTimeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// SQLiteHabitRepository implements domain.Repository using SQLite.
type SQLiteHabitRepository struct {
	conn database.Connection
}

// NewSQLiteHabitRepository creates a new SQLite habit repository.
func NewSQLiteHabitRepository(conn database.Connection) *SQLiteHabitRepository {
	return &SQLiteHabitRepository{conn: conn}
}

func (r *SQLiteHabitRepository) exec(ctx context.Context) database.Executor {
	return database.ExecutorFromContext(ctx, r.conn)
}

// Create inserts a new habit.
func (r *SQLiteHabitRepository) Create(ctx context.Context, habit *domain.Habit) error {
	_, err := r.exec(ctx).Exec(ctx, `
		INSERT INTO habits (id, name, description, periodicity, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		habit.ID().String(),
		habit.Name(),
		habit.Description(),
		string(habit.Periodicity()),
		habit.CreatedAt().UTC().Format(sqliteTimeLayout),
	)
	if database.IsUniqueViolation(err) {
		return fmt.Errorf("%w: %q", domain.ErrHabitExists, habit.Name())
	}
	return err
}

// FindByName returns the habit called name, or nil when there is none.
func (r *SQLiteHabitRepository) FindByName(ctx context.Context, name string) (*domain.Habit, error) {
	row := r.exec(ctx).QueryRow(ctx, `
		SELECT id, name, description, periodicity, created_at
		FROM habits WHERE name = ?`, name)

	habit, err := scanSQLiteHabit(row)
	if database.IsNoRows(err) {
		return nil, nil
	}
	return habit, err
}

// List returns habits in the order they were added.
func (r *SQLiteHabitRepository) List(ctx context.Context, filter domain.ListFilter) ([]*domain.Habit, error) {
	query := `SELECT id, name, description, periodicity, created_at FROM habits`
	var args []any
	if filter.Periodicity != "" {
		query += ` WHERE periodicity = ?`
		args = append(args, string(filter.Periodicity))
	}
	query += ` ORDER BY created_at, rowid`

	rows, err := r.exec(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var habits []*domain.Habit
	for rows.Next() {
		habit, err := scanSQLiteHabit(rows)
		if err != nil {
			return nil, err
		}
		habits = append(habits, habit)
	}
	return habits, rows.Err()
}

// Delete removes the habit and its completions atomically.
func (r *SQLiteHabitRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return database.InTx(ctx, r.conn, func(exec database.Executor) error {
		if _, err := exec.Exec(ctx, `DELETE FROM habit_completions WHERE habit_id = ?`, id.String()); err != nil {
			return err
		}
		res, err := exec.Exec(ctx, `DELETE FROM habits WHERE id = ?`, id.String())
		if err != nil {
			return err
		}
		if n, err := res.RowsAffected(); err == nil && n == 0 {
			return domain.ErrHabitNotFound
		}
		return nil
	})
}

// RecordCompletion stores a completion.
func (r *SQLiteHabitRepository) RecordCompletion(ctx context.Context, completion *domain.Completion) error {
	_, err := r.exec(ctx).Exec(ctx, `
		INSERT INTO habit_completions (id, habit_id, completed_at, completed_on)
		VALUES (?, ?, ?, ?)`,
		completion.ID().String(),
		completion.HabitID().String(),
		completion.CompletedAt().UTC().Format(sqliteTimeLayout),
		completion.Date().Format(time.DateOnly),
	)
	return err
}

// CompletionDates returns completion calendar dates, newest first.
func (r *SQLiteHabitRepository) CompletionDates(ctx context.Context, habitID uuid.UUID) ([]time.Time, error) {
	rows, err := r.exec(ctx).Query(ctx, `
		SELECT completed_on FROM habit_completions
		WHERE habit_id = ?
		ORDER BY completed_on DESC, completed_at DESC`, habitID.String())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var dates []time.Time
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, err
		}
		date, err := time.Parse(time.DateOnly, raw)
		if err != nil {
			return nil, fmt.Errorf("parse completion date %q: %w", raw, err)
		}
		dates = append(dates, date)
	}
	return dates, rows.Err()
}

func scanSQLiteHabit(row database.Row) (*domain.Habit, error) {
	var id, name, description, periodicity, createdAt string
	if err := row.Scan(&id, &name, &description, &periodicity, &createdAt); err != nil {
		return nil, err
	}

	habitID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("parse habit id: %w", err)
	}
	created, err := time.Parse(sqliteTimeLayout, createdAt)
	if err != nil {
		return nil, fmt.Errorf("parse habit created_at: %w", err)
	}

	return domain.RehydrateHabit(habitID, name, description, domain.Periodicity(periodicity), created), nil
}
