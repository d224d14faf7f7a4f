package app

import (
	"fmt"

	habitsDomain "github.com/felixgeelhaar/cadence/internal/habits/domain"
	habitsPersistence "github.com/felixgeelhaar/cadence/internal/habits/infrastructure/persistence"
	"github.com/felixgeelhaar/cadence/internal/shared/infrastructure/database"
	"github.com/felixgeelhaar/cadence/internal/shared/infrastructure/outbox"
)

// RepositoryFactory creates repositories based on the database driver.
type RepositoryFactory struct {
	conn database.Connection
}

// NewRepositoryFactory creates a new repository factory.
func NewRepositoryFactory(conn database.Connection) *RepositoryFactory {
	return &RepositoryFactory{conn: conn}
}

// HabitRepository creates a habit repository for the configured driver.
func (f *RepositoryFactory) HabitRepository() (habitsDomain.Repository, error) {
	switch f.conn.Driver() {
	case database.DriverPostgres:
		return habitsPersistence.NewPostgresHabitRepository(f.conn), nil
	case database.DriverSQLite:
		return habitsPersistence.NewSQLiteHabitRepository(f.conn), nil
	default:
		return nil, fmt.Errorf("unsupported driver: %s", f.conn.Driver())
	}
}

// OutboxRepository creates an outbox repository for the configured driver.
func (f *RepositoryFactory) OutboxRepository() (outbox.Repository, error) {
	switch f.conn.Driver() {
	case database.DriverPostgres:
		return outbox.NewPostgresRepository(f.conn), nil
	case database.DriverSQLite:
		return outbox.NewSQLiteRepository(f.conn), nil
	default:
		return nil, fmt.Errorf("unsupported driver: %s", f.conn.Driver())
	}
}

// Driver returns the database driver type.
func (f *RepositoryFactory) Driver() database.Driver {
	return f.conn.Driver()
}
