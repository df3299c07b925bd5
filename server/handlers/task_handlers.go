package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ebogdum/todoapi/auth"
	"github.com/ebogdum/todoapi/core"
	"github.com/ebogdum/todoapi/server/middleware"
	"github.com/ebogdum/todoapi/store"
)

// TaskRequest is the payload for creating or updating a task
type TaskRequest struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	DueDate     *time.Time `json:"due_date"`
}

// TaskResponse is the client-facing projection of a task
type TaskResponse struct {
	ID          uuid.UUID  `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	DueDate     *time.Time `json:"due_date"`
	Completed   bool       `json:"completed"`
}

func taskResponse(t *store.Task) TaskResponse {
	return TaskResponse{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		DueDate:     t.DueDate,
		Completed:   t.Completed,
	}
}

// V1CreateTask handles POST /tasks requests
// @Summary Create a task
// @Description Creates a new task owned by the principal in the token
// @Tags tasks
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param task body TaskRequest true "Task fields"
// @Success 201 {object} TaskResponse "Created task"
// @Failure 400 {object} ValidationResponse "Invalid task fields"
// @Failure 401 {object} ErrorResponse "Invalid or expired token"
// @Failure 403 {object} ErrorResponse "Missing credentials"
// @Router /tasks [post]
func V1CreateTask(engine *core.Engine, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		principal, ok := requirePrincipal(w, r, logger)
		if !ok {
			return
		}

		var req TaskRequest
		if !decodeTask(w, r, logger, &req) {
			return
		}

		task, err := engine.CreateTask(r.Context(), principal, core.TaskInput{
			Title:       req.Title,
			Description: req.Description,
			DueDate:     req.DueDate,
		})
		if err != nil {
			SendErrorResponse(w, logger, err, http.StatusInternalServerError)
			return
		}

		SendJSONResponse(w, http.StatusCreated, taskResponse(task))
	}
}

// V1GetTask handles GET /tasks/{taskId} requests
// @Summary Get a task
// @Description Shows one of the principal's tasks. Tasks owned by other users are reported as not found.
// @Tags tasks
// @Security BearerAuth
// @Produce json
// @Param taskId path string true "Task identifier" format(uuid)
// @Success 200 {object} TaskResponse "Task"
// @Failure 400 {object} ErrorResponse "Malformed task id"
// @Failure 401 {object} ErrorResponse "Invalid or expired token"
// @Failure 403 {object} ErrorResponse "Missing credentials"
// @Failure 404 {object} ErrorResponse "Task missing or owned by someone else"
// @Router /tasks/{taskId} [get]
func V1GetTask(engine *core.Engine, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		principal, ok := requirePrincipal(w, r, logger)
		if !ok {
			return
		}

		taskID, ok := parseTaskID(w, r, logger)
		if !ok {
			return
		}

		task, err := engine.GetTask(r.Context(), principal, taskID)
		if err != nil {
			SendErrorResponse(w, logger, err, http.StatusInternalServerError)
			return
		}

		SendJSONResponse(w, http.StatusOK, taskResponse(task))
	}
}

// V1ListTasks handles GET /tasks and GET /tasks/completed requests
// @Summary List tasks
// @Description Shows the principal's tasks filtered by completion state
// @Tags tasks
// @Security BearerAuth
// @Produce json
// @Success 200 {array} TaskResponse "Tasks"
// @Failure 401 {object} ErrorResponse "Invalid or expired token"
// @Failure 403 {object} ErrorResponse "Missing credentials"
// @Failure 404 {object} ErrorResponse "No tasks in the requested state"
// @Router /tasks [get]
func V1ListTasks(engine *core.Engine, completed bool, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		principal, ok := requirePrincipal(w, r, logger)
		if !ok {
			return
		}

		tasks, err := engine.ListTasks(r.Context(), principal, completed)
		if err != nil {
			SendErrorResponse(w, logger, err, http.StatusInternalServerError)
			return
		}

		responses := make([]TaskResponse, 0, len(tasks))
		for _, t := range tasks {
			responses = append(responses, taskResponse(t))
		}

		SendJSONResponse(w, http.StatusOK, responses)
	}
}

// V1UpdateTask handles PUT /tasks/{taskId} requests
// @Summary Update a task
// @Description Rewrites the editable fields of one of the principal's tasks
// @Tags tasks
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param taskId path string true "Task identifier" format(uuid)
// @Param task body TaskRequest true "Task fields"
// @Success 200 {object} TaskResponse "Updated task"
// @Failure 400 {object} ValidationResponse "Invalid task fields"
// @Failure 401 {object} ErrorResponse "Invalid or expired token"
// @Failure 403 {object} ErrorResponse "Missing credentials"
// @Failure 404 {object} ErrorResponse "Task missing or owned by someone else"
// @Router /tasks/{taskId} [put]
func V1UpdateTask(engine *core.Engine, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		principal, ok := requirePrincipal(w, r, logger)
		if !ok {
			return
		}

		taskID, ok := parseTaskID(w, r, logger)
		if !ok {
			return
		}

		var req TaskRequest
		if !decodeTask(w, r, logger, &req) {
			return
		}

		task, err := engine.UpdateTask(r.Context(), principal, taskID, core.TaskInput{
			Title:       req.Title,
			Description: req.Description,
			DueDate:     req.DueDate,
		})
		if err != nil {
			SendErrorResponse(w, logger, err, http.StatusInternalServerError)
			return
		}

		SendJSONResponse(w, http.StatusOK, taskResponse(task))
	}
}

// V1CompleteTask handles PATCH /tasks/completed/{taskId} requests
// @Summary Complete a task
// @Description Marks one of the principal's tasks as completed
// @Tags tasks
// @Security BearerAuth
// @Param taskId path string true "Task identifier" format(uuid)
// @Success 204 "Completed"
// @Failure 400 {object} ErrorResponse "Malformed task id"
// @Failure 401 {object} ErrorResponse "Invalid or expired token"
// @Failure 403 {object} ErrorResponse "Missing credentials"
// @Failure 404 {object} ErrorResponse "Task missing or owned by someone else"
// @Router /tasks/completed/{taskId} [patch]
func V1CompleteTask(engine *core.Engine, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		principal, ok := requirePrincipal(w, r, logger)
		if !ok {
			return
		}

		taskID, ok := parseTaskID(w, r, logger)
		if !ok {
			return
		}

		if err := engine.CompleteTask(r.Context(), principal, taskID); err != nil {
			SendErrorResponse(w, logger, err, http.StatusInternalServerError)
			return
		}

		SendJSONResponse(w, http.StatusNoContent, nil)
	}
}

// V1DeleteTask handles DELETE /tasks/{taskId} requests
// @Summary Delete a task
// @Description Removes one of the principal's tasks
// @Tags tasks
// @Security BearerAuth
// @Param taskId path string true "Task identifier" format(uuid)
// @Success 204 "Deleted"
// @Failure 400 {object} ErrorResponse "Malformed task id"
// @Failure 401 {object} ErrorResponse "Invalid or expired token"
// @Failure 403 {object} ErrorResponse "Missing credentials"
// @Failure 404 {object} ErrorResponse "Task missing or owned by someone else"
// @Router /tasks/{taskId} [delete]
func V1DeleteTask(engine *core.Engine, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		principal, ok := requirePrincipal(w, r, logger)
		if !ok {
			return
		}

		taskID, ok := parseTaskID(w, r, logger)
		if !ok {
			return
		}

		if err := engine.DeleteTask(r.Context(), principal, taskID); err != nil {
			SendErrorResponse(w, logger, err, http.StatusInternalServerError)
			return
		}

		SendJSONResponse(w, http.StatusNoContent, nil)
	}
}

// requirePrincipal fetches the principal the auth middleware attached. The
// route table already gates these handlers, so a miss here is a wiring bug,
// but it still fails closed.
func requirePrincipal(w http.ResponseWriter, r *http.Request, logger *zap.Logger) (*auth.Principal, bool) {
	principal, ok := middleware.GetPrincipal(r.Context())
	if !ok {
		SendErrorResponse(w, logger, auth.ErrForbidden, http.StatusForbidden)
		return nil, false
	}
	return principal, true
}

func parseTaskID(w http.ResponseWriter, r *http.Request, logger *zap.Logger) (uuid.UUID, bool) {
	taskID, err := uuid.Parse(chi.URLParam(r, "taskId"))
	if err != nil {
		SendErrorResponse(w, logger, &auth.InvalidInputError{
			Fields: map[string]string{"taskId": "Task identifier must be a valid UUID."},
		}, http.StatusBadRequest)
		return uuid.Nil, false
	}
	return taskID, true
}

func decodeTask(w http.ResponseWriter, r *http.Request, logger *zap.Logger, req *TaskRequest) bool {
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		SendErrorResponse(w, logger, &auth.InvalidInputError{
			Fields: map[string]string{"body": "Malformed request body."},
		}, http.StatusBadRequest)
		return false
	}
	return true
}
