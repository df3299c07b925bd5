// Package core implements the task engine: ownership-scoped CRUD over the
// task store. Every operation runs on behalf of an authenticated principal
// and never sees another user's tasks; a task addressed by id that exists
// but belongs to someone else is indistinguishable from one that does not
// exist.
package core

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ebogdum/todoapi/auth"
	"github.com/ebogdum/todoapi/core/log"
	"github.com/ebogdum/todoapi/metrics"
	"github.com/ebogdum/todoapi/store"
)

const (
	maxTitleLen       = 100
	maxDescriptionLen = 500
)

// TaskInput carries the client-editable fields of a task
type TaskInput struct {
	Title       string
	Description string
	DueDate     *time.Time
}

// Validate checks the input constraints and returns an InvalidInputError
// with a field→message map on failure.
func (in TaskInput) Validate() error {
	fields := make(map[string]string)
	if strings.TrimSpace(in.Title) == "" {
		fields["title"] = "Task title can't be empty."
	} else if len(in.Title) > maxTitleLen {
		fields["title"] = "Task title max size is 100 characters."
	}
	if len(in.Description) > maxDescriptionLen {
		fields["description"] = "Task description max size is 500 characters."
	}
	if in.DueDate == nil {
		fields["due_date"] = "Task due date can't be empty."
	}
	if len(fields) > 0 {
		return &auth.InvalidInputError{Fields: fields}
	}
	return nil
}

// Engine provides task operations scoped to a principal
type Engine struct {
	tasks  store.TaskStore
	logger *zap.Logger
}

// NewEngine creates a task engine
func NewEngine(tasks store.TaskStore, logger *zap.Logger) *Engine {
	return &Engine{tasks: tasks, logger: logger}
}

// CreateTask persists a new uncompleted task owned by the principal
func (e *Engine) CreateTask(ctx context.Context, principal *auth.Principal, in TaskInput) (*store.Task, error) {
	if err := in.Validate(); err != nil {
		metrics.TaskOperationsTotal.WithLabelValues("create", "invalid").Inc()
		return nil, err
	}

	now := time.Now().UTC()
	task := &store.Task{
		ID:          uuid.New(),
		Title:       in.Title,
		Description: in.Description,
		DueDate:     in.DueDate,
		Completed:   false,
		OwnerID:     principal.ID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := e.tasks.CreateTask(ctx, task); err != nil {
		metrics.TaskOperationsTotal.WithLabelValues("create", "error").Inc()
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	metrics.TaskOperationsTotal.WithLabelValues("create", "success").Inc()
	e.logger.Debug("Task created",
		zap.String("task_id", task.ID.String()),
		zap.String("owner", log.SanitizeUserID(task.OwnerID.String())))
	return task, nil
}

// GetTask retrieves one of the principal's tasks by id
func (e *Engine) GetTask(ctx context.Context, principal *auth.Principal, id uuid.UUID) (*store.Task, error) {
	task, err := e.tasks.GetForOwner(ctx, id, principal.ID)
	if err != nil {
		metrics.TaskOperationsTotal.WithLabelValues("get", "miss").Inc()
		return nil, err
	}
	metrics.TaskOperationsTotal.WithLabelValues("get", "success").Inc()
	return task, nil
}

// ListTasks returns the principal's tasks filtered by completion state.
// Matching the original API contract, an empty result is store.ErrNotFound
// rather than an empty list.
func (e *Engine) ListTasks(ctx context.Context, principal *auth.Principal, completed bool) ([]*store.Task, error) {
	tasks, err := e.tasks.ListForOwner(ctx, principal.ID, completed)
	if err != nil {
		metrics.TaskOperationsTotal.WithLabelValues("list", "error").Inc()
		return nil, err
	}
	if len(tasks) == 0 {
		metrics.TaskOperationsTotal.WithLabelValues("list", "miss").Inc()
		return nil, store.ErrNotFound
	}
	metrics.TaskOperationsTotal.WithLabelValues("list", "success").Inc()
	return tasks, nil
}

// UpdateTask rewrites the editable fields of one of the principal's tasks
func (e *Engine) UpdateTask(ctx context.Context, principal *auth.Principal, id uuid.UUID, in TaskInput) (*store.Task, error) {
	if err := in.Validate(); err != nil {
		metrics.TaskOperationsTotal.WithLabelValues("update", "invalid").Inc()
		return nil, err
	}

	task, err := e.tasks.GetForOwner(ctx, id, principal.ID)
	if err != nil {
		metrics.TaskOperationsTotal.WithLabelValues("update", "miss").Inc()
		return nil, err
	}

	task.Title = in.Title
	task.Description = in.Description
	task.DueDate = in.DueDate
	task.UpdatedAt = time.Now().UTC()

	if err := e.tasks.Update(ctx, task); err != nil {
		metrics.TaskOperationsTotal.WithLabelValues("update", "error").Inc()
		return nil, fmt.Errorf("failed to update task: %w", err)
	}

	metrics.TaskOperationsTotal.WithLabelValues("update", "success").Inc()
	return task, nil
}

// CompleteTask marks one of the principal's tasks as completed
func (e *Engine) CompleteTask(ctx context.Context, principal *auth.Principal, id uuid.UUID) error {
	if err := e.tasks.SetCompletedForOwner(ctx, id, principal.ID); err != nil {
		metrics.TaskOperationsTotal.WithLabelValues("complete", "miss").Inc()
		return err
	}
	metrics.TaskOperationsTotal.WithLabelValues("complete", "success").Inc()
	return nil
}

// DeleteTask removes one of the principal's tasks
func (e *Engine) DeleteTask(ctx context.Context, principal *auth.Principal, id uuid.UUID) error {
	if err := e.tasks.DeleteForOwner(ctx, id, principal.ID); err != nil {
		metrics.TaskOperationsTotal.WithLabelValues("delete", "miss").Inc()
		return err
	}
	metrics.TaskOperationsTotal.WithLabelValues("delete", "success").Inc()
	e.logger.Debug("Task deleted", zap.String("task_id", id.String()))
	return nil
}
