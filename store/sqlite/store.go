// Package sqlite implements the todoapi store over an embedded SQLite
// database. It is the default backend for single-instance deployments and
// for tests (using an in-memory database).
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"go.uber.org/zap"

	"github.com/ebogdum/todoapi/metrics"
	"github.com/ebogdum/todoapi/store"
)

type SQLiteStore struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewSQLiteStore opens (and if necessary creates) the database at dbPath.
// Pass ":memory:" for an ephemeral store.
func NewSQLiteStore(dbPath string, logger *zap.Logger) (*SQLiteStore, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)", dbPath)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping sqlite database: %w", err)
	}

	s := &SQLiteStore{db: db, logger: logger}
	if err := s.initSchema(); err != nil {
		_ = db.Close()
		return nil, err
	}

	return s, nil
}

func (s *SQLiteStore) initSchema() error {
	schema := `
CREATE TABLE IF NOT EXISTS users (
    id TEXT PRIMARY KEY,
    login TEXT NOT NULL UNIQUE,
    password_hash TEXT NOT NULL,
    role TEXT NOT NULL CHECK (role IN ('USER', 'ADMIN')),
    created_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_users_login ON users(login);

CREATE TABLE IF NOT EXISTS tasks (
    id TEXT PRIMARY KEY,
    title TEXT NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    due_date TEXT,
    completed INTEGER NOT NULL DEFAULT 0,
    owner_id TEXT NOT NULL REFERENCES users(id),
    created_at TEXT NOT NULL,
    updated_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_tasks_owner_id ON tasks(owner_id);
CREATE INDEX IF NOT EXISTS idx_tasks_owner_completed ON tasks(owner_id, completed);
`

	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to initialize sqlite schema: %w", err)
	}
	return nil
}

// GetByLogin retrieves a user by login name
func (s *SQLiteStore) GetByLogin(ctx context.Context, login string) (*store.User, error) {
	defer trackQuery("user_get_by_login")()

	query := `
		SELECT id, login, password_hash, role, created_at
		FROM users
		WHERE login = ?`

	return s.scanUser(s.db.QueryRowContext(ctx, query, login))
}

// GetByID retrieves a user by internal id
func (s *SQLiteStore) GetByID(ctx context.Context, id uuid.UUID) (*store.User, error) {
	defer trackQuery("user_get_by_id")()

	query := `
		SELECT id, login, password_hash, role, created_at
		FROM users
		WHERE id = ?`

	return s.scanUser(s.db.QueryRowContext(ctx, query, id.String()))
}

func (s *SQLiteStore) scanUser(row *sql.Row) (*store.User, error) {
	var u store.User
	var id, createdAt string

	err := row.Scan(&id, &u.Login, &u.PasswordHash, &u.Role, &createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	u.ID, err = uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid user id in store: %w", err)
	}
	u.CreatedAt = parseTimestamp(createdAt)

	return &u, nil
}

// CreateUser persists a new user
func (s *SQLiteStore) CreateUser(ctx context.Context, user *store.User) error {
	defer trackQuery("user_create")()

	query := `
		INSERT INTO users (id, login, password_hash, role, created_at)
		VALUES (?, ?, ?, ?, ?)`

	_, err := s.db.ExecContext(
		ctx,
		query,
		user.ID.String(),
		user.Login,
		user.PasswordHash,
		user.Role,
		user.CreatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed: users.login") {
			return store.ErrAlreadyExists
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

// CreateTask persists a new task
func (s *SQLiteStore) CreateTask(ctx context.Context, task *store.Task) error {
	defer trackQuery("task_create")()

	query := `
		INSERT INTO tasks (id, title, description, due_date, completed, owner_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := s.db.ExecContext(
		ctx,
		query,
		task.ID.String(),
		task.Title,
		task.Description,
		nullTime(task.DueDate),
		boolToInt(task.Completed),
		task.OwnerID.String(),
		task.CreatedAt.UTC().Format(time.RFC3339Nano),
		task.UpdatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("failed to create task: %w", err)
	}

	return nil
}

// GetForOwner retrieves a task by id, constrained to the given owner
func (s *SQLiteStore) GetForOwner(ctx context.Context, id, ownerID uuid.UUID) (*store.Task, error) {
	defer trackQuery("task_get")()

	query := `
		SELECT id, title, description, due_date, completed, owner_id, created_at, updated_at
		FROM tasks
		WHERE id = ? AND owner_id = ?`

	row := s.db.QueryRowContext(ctx, query, id.String(), ownerID.String())
	task, err := scanTask(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get task: %w", err)
	}

	return task, nil
}

// Update rewrites the mutable fields of an owner's task
func (s *SQLiteStore) Update(ctx context.Context, task *store.Task) error {
	defer trackQuery("task_update")()

	query := `
		UPDATE tasks
		SET title = ?, description = ?, due_date = ?, completed = ?, updated_at = ?
		WHERE id = ? AND owner_id = ?`

	result, err := s.db.ExecContext(
		ctx,
		query,
		task.Title,
		task.Description,
		nullTime(task.DueDate),
		boolToInt(task.Completed),
		task.UpdatedAt.UTC().Format(time.RFC3339Nano),
		task.ID.String(),
		task.OwnerID.String(),
	)
	if err != nil {
		return fmt.Errorf("failed to update task: %w", err)
	}

	return affectedOrNotFound(result)
}

// SetCompletedForOwner marks an owner's task as completed
func (s *SQLiteStore) SetCompletedForOwner(ctx context.Context, id, ownerID uuid.UUID) error {
	defer trackQuery("task_complete")()

	query := `
		UPDATE tasks
		SET completed = 1, updated_at = ?
		WHERE id = ? AND owner_id = ?`

	result, err := s.db.ExecContext(ctx, query,
		time.Now().UTC().Format(time.RFC3339Nano), id.String(), ownerID.String())
	if err != nil {
		return fmt.Errorf("failed to complete task: %w", err)
	}

	return affectedOrNotFound(result)
}

// DeleteForOwner removes an owner's task
func (s *SQLiteStore) DeleteForOwner(ctx context.Context, id, ownerID uuid.UUID) error {
	defer trackQuery("task_delete")()

	result, err := s.db.ExecContext(ctx,
		`DELETE FROM tasks WHERE id = ? AND owner_id = ?`,
		id.String(), ownerID.String())
	if err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}

	return affectedOrNotFound(result)
}

// ListForOwner returns the owner's tasks filtered by completion state
func (s *SQLiteStore) ListForOwner(ctx context.Context, ownerID uuid.UUID, completed bool) ([]*store.Task, error) {
	defer trackQuery("task_list")()

	query := `
		SELECT id, title, description, due_date, completed, owner_id, created_at, updated_at
		FROM tasks
		WHERE owner_id = ? AND completed = ?
		ORDER BY due_date, created_at`

	rows, err := s.db.QueryContext(ctx, query, ownerID.String(), boolToInt(completed))
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	defer rows.Close()

	var tasks []*store.Task
	for rows.Next() {
		task, err := scanTask(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}
		tasks = append(tasks, task)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}

	return tasks, nil
}

// Close releases the underlying database handle
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func scanTask(scan func(dest ...any) error) (*store.Task, error) {
	var t store.Task
	var id, ownerID, createdAt, updatedAt string
	var dueDate sql.NullString
	var completed int

	err := scan(&id, &t.Title, &t.Description, &dueDate, &completed, &ownerID, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	t.ID, err = uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid task id in store: %w", err)
	}
	t.OwnerID, err = uuid.Parse(ownerID)
	if err != nil {
		return nil, fmt.Errorf("invalid owner id in store: %w", err)
	}

	t.Completed = completed != 0
	if dueDate.Valid {
		due := parseTimestamp(dueDate.String)
		t.DueDate = &due
	}
	t.CreatedAt = parseTimestamp(createdAt)
	t.UpdatedAt = parseTimestamp(updatedAt)

	return &t, nil
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

func nullTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC().Format(time.RFC3339Nano)
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func parseTimestamp(s string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

func trackQuery(operation string) func() {
	start := time.Now()
	metrics.StoreQueriesTotal.WithLabelValues(operation).Inc()
	return func() {
		metrics.StoreQueryDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
	}
}
