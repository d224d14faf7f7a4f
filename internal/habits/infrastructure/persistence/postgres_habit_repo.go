package persistence

import (
	"context"
	"fmt"
	"time"

	"github.com/felixgeelhaar/cadence/internal/habits/domain"
	"github.com/felixgeelhaar/cadence/internal/shared/infrastructure/database"
	"github.com/google/uuid"
)

// PostgresHabitRepository implements domain.Repository using PostgreSQL.
type PostgresHabitRepository struct {
	conn database.Connection
}

// NewPostgresHabitRepository creates a new PostgreSQL habit repository.
func NewPostgresHabitRepository(conn database.Connection) *PostgresHabitRepository {
	return &PostgresHabitRepository{conn: conn}
}

func (r *PostgresHabitRepository) exec(ctx context.Context) database.Executor {
	return database.ExecutorFromContext(ctx, r.conn)
}

func (r *PostgresHabitRepository) Create(ctx context.Context, habit *domain.Habit) error {
	_, err := r.exec(ctx).Exec(ctx, `
		INSERT INTO habits (id, name, description, periodicity, created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		habit.ID(),
		habit.Name(),
		habit.Description(),
		string(habit.Periodicity()),
		habit.CreatedAt(),
	)
	if database.IsUniqueViolation(err) {
		return fmt.Errorf("%w: %q", domain.ErrHabitExists, habit.Name())
	}
	return err
}

func (r *PostgresHabitRepository) FindByName(ctx context.Context, name string) (*domain.Habit, error) {
	row := r.exec(ctx).QueryRow(ctx, `
		SELECT id, name, description, periodicity, created_at
		FROM habits WHERE name = $1`, name)

	habit, err := scanPostgresHabit(row)
	if database.IsNoRows(err) {
		return nil, nil
	}
	return habit, err
}

func (r *PostgresHabitRepository) List(ctx context.Context, filter domain.ListFilter) ([]*domain.Habit, error) {
	query := `SELECT id, name, description, periodicity, created_at FROM habits`
	var args []any
	if filter.Periodicity != "" {
		query += ` WHERE periodicity = $1`
		args = append(args, string(filter.Periodicity))
	}
	query += ` ORDER BY created_at, seq`

	rows, err := r.exec(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var habits []*domain.Habit
	for rows.Next() {
		habit, err := scanPostgresHabit(rows)
		if err != nil {
			return nil, err
		}
		habits = append(habits, habit)
	}
	return habits, rows.Err()
}

func (r *PostgresHabitRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return database.InTx(ctx, r.conn, func(exec database.Executor) error {
		if _, err := exec.Exec(ctx, `DELETE FROM habit_completions WHERE habit_id = $1`, id); err != nil {
			return err
		}
		res, err := exec.Exec(ctx, `DELETE FROM habits WHERE id = $1`, id)
		if err != nil {
			return err
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return domain.ErrHabitNotFound
		}
		return nil
	})
}

func (r *PostgresHabitRepository) RecordCompletion(ctx context.Context, completion *domain.Completion) error {
	_, err := r.exec(ctx).Exec(ctx, `
		INSERT INTO habit_completions (id, habit_id, completed_at, completed_on)
		VALUES ($1, $2, $3, $4)`,
		completion.ID(),
		completion.HabitID(),
		completion.CompletedAt(),
		completion.Date(),
	)
	return err
}

func (r *PostgresHabitRepository) CompletionDates(ctx context.Context, habitID uuid.UUID) ([]time.Time, error) {
	rows, err := r.exec(ctx).Query(ctx, `
		SELECT completed_on FROM habit_completions
		WHERE habit_id = $1
		ORDER BY completed_on DESC, completed_at DESC`, habitID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var dates []time.Time
	for rows.Next() {
		var date time.Time
		if err := rows.Scan(&date); err != nil {
			return nil, err
		}
		dates = append(dates, domain.CalendarDate(date))
	}
	return dates, rows.Err()
}

func scanPostgresHabit(row database.Row) (*domain.Habit, error) {
	var (
		id                             uuid.UUID
		name, description, periodicity string
		createdAt                      time.Time
	)
	if err := row.Scan(&id, &name, &description, &periodicity, &createdAt); err != nil {
		return nil, err
	}
	return domain.RehydrateHabit(id, name, description, domain.Periodicity(periodicity), createdAt), nil
}
