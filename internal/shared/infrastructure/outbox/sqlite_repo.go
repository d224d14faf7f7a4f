package outbox

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/felixgeelhaar/cadence/internal/shared/infrastructure/database"
	"github.com/google/uuid"
)

const sqliteTimeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// SQLiteRepository implements Repository using SQLite.
type SQLiteRepository struct {
	conn database.Connection
}

// NewSQLiteRepository creates a new SQLite outbox repository.
func NewSQLiteRepository(conn database.Connection) *SQLiteRepository {
	return &SQLiteRepository{conn: conn}
}

func (r *SQLiteRepository) Save(ctx context.Context, msgs ...*Message) error {
	if len(msgs) == 0 {
		return nil
	}
	return database.InTx(ctx, r.conn, func(exec database.Executor) error {
		for _, msg := range msgs {
			err := exec.QueryRow(ctx, `
				INSERT INTO outbox (event_id, aggregate_type, aggregate_id, routing_key, payload, metadata, created_at)
				VALUES (?, ?, ?, ?, ?, ?, ?)
				RETURNING id`,
				msg.EventID.String(),
				msg.AggregateType,
				msg.AggregateID.String(),
				msg.RoutingKey,
				string(msg.Payload),
				string(msg.Metadata),
				formatSQLiteTime(msg.CreatedAt),
			).Scan(&msg.ID)
			if err != nil {
				return fmt.Errorf("insert outbox message %s: %w", msg.EventID, err)
			}
		}
		return nil
	})
}

func (r *SQLiteRepository) Pending(ctx context.Context, now time.Time, limit int) ([]*Message, error) {
	rows, err := database.ExecutorFromContext(ctx, r.conn).Query(ctx, `
		SELECT id, event_id, aggregate_type, aggregate_id, routing_key, payload, metadata,
		       created_at, published_at, next_retry_at, retry_count, last_error,
		       dead_lettered_at, dead_letter_reason
		FROM outbox
		WHERE published_at IS NULL
		  AND dead_lettered_at IS NULL
		  AND (next_retry_at IS NULL OR next_retry_at <= ?)
		ORDER BY id
		LIMIT ?`, formatSQLiteTime(now), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var msgs []*Message
	for rows.Next() {
		msg, err := scanSQLiteMessage(rows)
		if err != nil {
			return nil, err
		}
		msgs = append(msgs, msg)
	}
	return msgs, rows.Err()
}

func (r *SQLiteRepository) MarkPublished(ctx context.Context, id int64, at time.Time) error {
	_, err := database.ExecutorFromContext(ctx, r.conn).Exec(ctx,
		`UPDATE outbox SET published_at = ?, next_retry_at = NULL WHERE id = ?`,
		formatSQLiteTime(at), id)
	return err
}

func (r *SQLiteRepository) MarkFailed(ctx context.Context, id int64, reason string, nextRetryAt time.Time) error {
	_, err := database.ExecutorFromContext(ctx, r.conn).Exec(ctx,
		`UPDATE outbox SET retry_count = retry_count + 1, last_error = ?, next_retry_at = ? WHERE id = ?`,
		reason, formatSQLiteTime(nextRetryAt), id)
	return err
}

func (r *SQLiteRepository) MarkDead(ctx context.Context, id int64, reason string, at time.Time) error {
	_, err := database.ExecutorFromContext(ctx, r.conn).Exec(ctx, `
		UPDATE outbox
		SET retry_count = retry_count + 1, last_error = ?, dead_lettered_at = ?, dead_letter_reason = ?
		WHERE id = ?`,
		reason, formatSQLiteTime(at), reason, id)
	return err
}

func (r *SQLiteRepository) DeletePublishedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := database.ExecutorFromContext(ctx, r.conn).Exec(ctx,
		`DELETE FROM outbox WHERE published_at IS NOT NULL AND published_at < ?`,
		formatSQLiteTime(cutoff))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func formatSQLiteTime(t time.Time) string {
	return t.UTC().Format(sqliteTimeLayout)
}

func parseNullTime(s sql.NullString) (*time.Time, error) {
	if !s.Valid {
		return nil, nil
	}
	t, err := time.Parse(sqliteTimeLayout, s.String)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func nullString(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	return &s.String
}

func scanSQLiteMessage(row database.Row) (*Message, error) {
	var (
		msg                              Message
		eventID, aggregateID             string
		payload, metadata, createdAt     string
		publishedAt, nextRetryAt, deadAt sql.NullString
		lastError, deadReason            sql.NullString
	)
	err := row.Scan(&msg.ID, &eventID, &msg.AggregateType, &aggregateID, &msg.RoutingKey,
		&payload, &metadata, &createdAt, &publishedAt, &nextRetryAt, &msg.RetryCount,
		&lastError, &deadAt, &deadReason)
	if err != nil {
		return nil, err
	}

	if msg.EventID, err = uuid.Parse(eventID); err != nil {
		return nil, fmt.Errorf("outbox %d event_id: %w", msg.ID, err)
	}
	if msg.AggregateID, err = uuid.Parse(aggregateID); err != nil {
		return nil, fmt.Errorf("outbox %d aggregate_id: %w", msg.ID, err)
	}
	if msg.CreatedAt, err = time.Parse(sqliteTimeLayout, createdAt); err != nil {
		return nil, fmt.Errorf("outbox %d created_at: %w", msg.ID, err)
	}
	if msg.PublishedAt, err = parseNullTime(publishedAt); err != nil {
		return nil, fmt.Errorf("outbox %d published_at: %w", msg.ID, err)
	}
	if msg.NextRetryAt, err = parseNullTime(nextRetryAt); err != nil {
		return nil, fmt.Errorf("outbox %d next_retry_at: %w", msg.ID, err)
	}
	if msg.DeadLetteredAt, err = parseNullTime(deadAt); err != nil {
		return nil, fmt.Errorf("outbox %d dead_lettered_at: %w", msg.ID, err)
	}

	msg.Payload = json.RawMessage(payload)
	msg.Metadata = json.RawMessage(metadata)
	msg.LastError = nullString(lastError)
	msg.DeadLetterReason = nullString(deadReason)
	return &msg, nil
}
