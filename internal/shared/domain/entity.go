package domain

import (
	"time"

	"github.com/google/uuid"
)

// Entity is a domain object with a stable identity.
type Entity interface {
	ID() uuid.UUID
	CreatedAt() time.Time
	Equals(other Entity) bool
}

// BaseEntity carries identity and creation time. Entities in this module are
// immutable once created, so there is no update timestamp.
type BaseEntity struct {
	id        uuid.UUID
	createdAt time.Time
}

// NewBaseEntity creates an entity with a generated ID created at now.
func NewBaseEntity(now time.Time) BaseEntity {
	return BaseEntity{
		id:        uuid.New(),
		createdAt: now,
	}
}

// RehydrateBaseEntity recreates an entity from persisted state.
func RehydrateBaseEntity(id uuid.UUID, createdAt time.Time) BaseEntity {
	return BaseEntity{
		id:        id,
		createdAt: createdAt,
	}
}

func (e BaseEntity) ID() uuid.UUID        { return e.id }
func (e BaseEntity) CreatedAt() time.Time { return e.createdAt }

// Equals reports whether two entities share an identity.
func (e BaseEntity) Equals(other Entity) bool {
	if other == nil {
		return false
	}
	return e.id == other.ID()
}
