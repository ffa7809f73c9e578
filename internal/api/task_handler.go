package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/phrazzld/prime-api/internal/api/shared"
	"github.com/phrazzld/prime-api/internal/domain"
	"github.com/phrazzld/prime-api/internal/service"
)

// CreateTaskRequest represents the request body for submitting a prime
// computation task.
type CreateTaskRequest struct {
	N int `json:"n" validate:"required,gt=0"`
}

// CreateTaskResponse represents the response for an accepted submission.
type CreateTaskResponse struct {
	RequestID string `json:"request_id"`
}

// TaskStatusResponse represents the response data for a task status query.
type TaskStatusResponse struct {
	N      int     `json:"n"`
	Status string  `json:"status"`
	Result []int64 `json:"result"`
	Error  *string `json:"error"`
}

// TaskListResponse represents the response for the task listing endpoint.
type TaskListResponse struct {
	RequestIDs []string `json:"request_ids"`
}

// TaskHandler handles task-related HTTP requests.
type TaskHandler struct {
	taskService *service.TaskService
	logger      *slog.Logger
}

// NewTaskHandler creates a new TaskHandler.
func NewTaskHandler(taskService *service.TaskService, logger *slog.Logger) *TaskHandler {
	return &TaskHandler{
		taskService: taskService,
		logger:      logger,
	}
}

// CreateTask handles POST /api/tasks requests. Submission is asynchronous:
// the response carries the request id to poll, not the result.
func (h *TaskHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
	var req CreateTaskRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "n must be a positive integer")
		return
	}

	requestID, err := h.taskService.Submit(r.Context(), req.N)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r,
			MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusAccepted, CreateTaskResponse{RequestID: requestID})
}

// GetTask handles GET /api/tasks/{id} requests.
func (h *TaskHandler) GetTask(w http.ResponseWriter, r *http.Request) {
	requestID := chi.URLParam(r, "id")
	if requestID == "" {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Missing request ID")
		return
	}

	record, err := h.taskService.GetTask(r.Context(), requestID)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r,
			MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, recordToDTOResponse(record))
}

// ListTasks handles GET /api/tasks requests. Read-side observability over
// the live task records.
func (h *TaskHandler) ListTasks(w http.ResponseWriter, r *http.Request) {
	ids, err := h.taskService.ListTaskIDs(r.Context())
	if err != nil {
		shared.RespondWithErrorAndLog(w, r,
			MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}
	if ids == nil {
		ids = []string{}
	}

	shared.RespondWithJSON(w, r, http.StatusOK, TaskListResponse{RequestIDs: ids})
}

// recordToDTOResponse converts a domain.TaskRecord to a TaskStatusResponse.
func recordToDTOResponse(record *domain.TaskRecord) TaskStatusResponse {
	response := TaskStatusResponse{
		N:      record.N,
		Status: string(record.Status),
		Result: record.Result,
	}
	if record.Error != "" {
		response.Error = &record.Error
	}
	return response
}
