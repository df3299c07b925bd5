// Package postgres implements the todoapi store over PostgreSQL. Schema
// management is handled by the migrations in store/schema, applied at
// startup.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/ebogdum/todoapi/metrics"
	"github.com/ebogdum/todoapi/store"
)

// uniqueViolation is the PostgreSQL error code for unique constraint breaks
const uniqueViolation = "23505"

// PostgresStore implements the store interfaces using PostgreSQL
type PostgresStore struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewPostgresStore creates a new PostgreSQL store
func NewPostgresStore(dsn string, logger *zap.Logger) (*PostgresStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Configure connection pool
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)

	// Test connection
	if err := db.PingContext(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &PostgresStore{
		db:     db,
		logger: logger,
	}, nil
}

// Close closes the database connection
func (s *PostgresStore) Close() error {
	return s.db.Close()
}

// GetByLogin retrieves a user by login name
func (s *PostgresStore) GetByLogin(ctx context.Context, login string) (*store.User, error) {
	defer trackQuery("user_get_by_login")()

	query := `
		SELECT id, login, password_hash, role, created_at
		FROM users
		WHERE login = $1`

	return s.scanUser(s.db.QueryRowContext(ctx, query, login))
}

// GetByID retrieves a user by internal id
func (s *PostgresStore) GetByID(ctx context.Context, id uuid.UUID) (*store.User, error) {
	defer trackQuery("user_get_by_id")()

	query := `
		SELECT id, login, password_hash, role, created_at
		FROM users
		WHERE id = $1`

	return s.scanUser(s.db.QueryRowContext(ctx, query, id))
}

func (s *PostgresStore) scanUser(row *sql.Row) (*store.User, error) {
	var u store.User

	err := row.Scan(&u.ID, &u.Login, &u.PasswordHash, &u.Role, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return &u, nil
}

// CreateUser persists a new user. A unique violation on the login column is
// reported as store.ErrAlreadyExists so concurrent registrations surface as
// a conflict instead of a server fault.
func (s *PostgresStore) CreateUser(ctx context.Context, user *store.User) error {
	defer trackQuery("user_create")()

	query := `
		INSERT INTO users (id, login, password_hash, role, created_at)
		VALUES ($1, $2, $3, $4, $5)`

	_, err := s.db.ExecContext(ctx, query,
		user.ID, user.Login, user.PasswordHash, user.Role, user.CreatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return store.ErrAlreadyExists
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

// CreateTask persists a new task
func (s *PostgresStore) CreateTask(ctx context.Context, task *store.Task) error {
	defer trackQuery("task_create")()

	query := `
		INSERT INTO tasks (id, title, description, due_date, completed, owner_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := s.db.ExecContext(ctx, query,
		task.ID, task.Title, task.Description, task.DueDate,
		task.Completed, task.OwnerID, task.CreatedAt, task.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create task: %w", err)
	}

	return nil
}

// GetForOwner retrieves a task by id, constrained to the given owner
func (s *PostgresStore) GetForOwner(ctx context.Context, id, ownerID uuid.UUID) (*store.Task, error) {
	defer trackQuery("task_get")()

	query := `
		SELECT id, title, description, due_date, completed, owner_id, created_at, updated_at
		FROM tasks
		WHERE id = $1 AND owner_id = $2`

	var t store.Task
	err := s.db.QueryRowContext(ctx, query, id, ownerID).Scan(
		&t.ID, &t.Title, &t.Description, &t.DueDate,
		&t.Completed, &t.OwnerID, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get task: %w", err)
	}

	return &t, nil
}

// Update rewrites the mutable fields of an owner's task
func (s *PostgresStore) Update(ctx context.Context, task *store.Task) error {
	defer trackQuery("task_update")()

	query := `
		UPDATE tasks
		SET title = $1, description = $2, due_date = $3, completed = $4, updated_at = $5
		WHERE id = $6 AND owner_id = $7`

	result, err := s.db.ExecContext(ctx, query,
		task.Title, task.Description, task.DueDate, task.Completed,
		task.UpdatedAt, task.ID, task.OwnerID)
	if err != nil {
		return fmt.Errorf("failed to update task: %w", err)
	}

	return affectedOrNotFound(result)
}

// SetCompletedForOwner marks an owner's task as completed
func (s *PostgresStore) SetCompletedForOwner(ctx context.Context, id, ownerID uuid.UUID) error {
	defer trackQuery("task_complete")()

	query := `
		UPDATE tasks
		SET completed = TRUE, updated_at = NOW()
		WHERE id = $1 AND owner_id = $2`

	result, err := s.db.ExecContext(ctx, query, id, ownerID)
	if err != nil {
		return fmt.Errorf("failed to complete task: %w", err)
	}

	return affectedOrNotFound(result)
}

// DeleteForOwner removes an owner's task
func (s *PostgresStore) DeleteForOwner(ctx context.Context, id, ownerID uuid.UUID) error {
	defer trackQuery("task_delete")()

	result, err := s.db.ExecContext(ctx,
		`DELETE FROM tasks WHERE id = $1 AND owner_id = $2`, id, ownerID)
	if err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}

	return affectedOrNotFound(result)
}

// ListForOwner returns the owner's tasks filtered by completion state
func (s *PostgresStore) ListForOwner(ctx context.Context, ownerID uuid.UUID, completed bool) ([]*store.Task, error) {
	defer trackQuery("task_list")()

	query := `
		SELECT id, title, description, due_date, completed, owner_id, created_at, updated_at
		FROM tasks
		WHERE owner_id = $1 AND completed = $2
		ORDER BY due_date, created_at`

	rows, err := s.db.QueryContext(ctx, query, ownerID, completed)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	defer rows.Close()

	var tasks []*store.Task
	for rows.Next() {
		var t store.Task
		if err := rows.Scan(
			&t.ID, &t.Title, &t.Description, &t.DueDate,
			&t.Completed, &t.OwnerID, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}
		tasks = append(tasks, &t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}

	return tasks, nil
}

func affectedOrNotFound(result sql.Result) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

func trackQuery(operation string) func() {
	start := time.Now()
	metrics.StoreQueriesTotal.WithLabelValues(operation).Inc()
	return func() {
		metrics.StoreQueryDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
	}
}
