// Package store defines the persistence model and interfaces for todoapi.
// Concrete backends live in subpackages (sqlite for embedded use, postgres
// for production).
package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Common store errors
var (
	ErrNotFound      = errors.New("record not found")
	ErrAlreadyExists = errors.New("record already exists")
)

// User represents a stored credential record. Records are immutable after
// creation; there is no update path.
type User struct {
	ID           uuid.UUID `json:"id"`
	Login        string    `json:"login"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"` // "USER" or "ADMIN"
	CreatedAt    time.Time `json:"created_at"`
}

// Task represents a to-do item owned by a single user.
type Task struct {
	ID          uuid.UUID  `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	DueDate     *time.Time `json:"due_date"`
	Completed   bool       `json:"completed"`
	OwnerID     uuid.UUID  `json:"-"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// UserStore defines the interface for credential record persistence
type UserStore interface {
	// GetByLogin retrieves a user by login name
	GetByLogin(ctx context.Context, login string) (*User, error)

	// GetByID retrieves a user by internal id
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)

	// CreateUser persists a new user. Returns ErrAlreadyExists if the login
	// is taken; the unique constraint is the final arbiter for concurrent
	// registrations that both passed the existence check.
	CreateUser(ctx context.Context, user *User) error
}

// TaskStore defines the interface for task persistence. All lookups are
// owner-scoped: a task that exists but belongs to someone else is reported
// as ErrNotFound, never as a distinct condition.
type TaskStore interface {
	// CreateTask persists a new task
	CreateTask(ctx context.Context, task *Task) error

	// GetForOwner retrieves a task by id, constrained to the given owner
	GetForOwner(ctx context.Context, id, ownerID uuid.UUID) (*Task, error)

	// Update rewrites the mutable fields of an owner's task
	Update(ctx context.Context, task *Task) error

	// SetCompletedForOwner marks an owner's task as completed
	SetCompletedForOwner(ctx context.Context, id, ownerID uuid.UUID) error

	// DeleteForOwner removes an owner's task
	DeleteForOwner(ctx context.Context, id, ownerID uuid.UUID) error

	// ListForOwner returns the owner's tasks filtered by completion state
	ListForOwner(ctx context.Context, ownerID uuid.UUID, completed bool) ([]*Task, error)
}

// Store combines both stores for backends that implement them together
type Store interface {
	UserStore
	TaskStore

	// Close releases the underlying database handle
	Close() error
}
