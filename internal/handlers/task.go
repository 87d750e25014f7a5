package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/task-tracker-api/internal/dto"
	apierrors "github.com/yukikurage/task-tracker-api/internal/errors"
	"github.com/yukikurage/task-tracker-api/internal/middleware"
	"github.com/yukikurage/task-tracker-api/internal/models"
	"github.com/yukikurage/task-tracker-api/internal/repository"
	"github.com/yukikurage/task-tracker-api/internal/services"
	"github.com/yukikurage/task-tracker-api/internal/validation"
	"go.uber.org/zap"
)

type TaskHandler struct {
	taskService *services.TaskService
	log         *zap.Logger
}

func NewTaskHandler(taskService *services.TaskService, log *zap.Logger) *TaskHandler {
	return &TaskHandler{
		taskService: taskService,
		log:         log,
	}
}

// CreateTask creates a task owned by the caller
func (h *TaskHandler) CreateTask(c *gin.Context) {
	ownerID, ok := middleware.GetUserID(c)
	if !ok {
		apierrors.Unauthorized(c, "")
		return
	}

	var req dto.CreateTaskRequest
	if fieldErrs := validation.BindJSON(c, &req); fieldErrs != nil {
		apierrors.BadRequestWithDetails(c, "", fieldErrs)
		return
	}

	dueDate, err := parseDueDate(req.DueDate)
	if err != nil {
		apierrors.BadRequestWithDetails(c, "", dueDateError)
		return
	}

	task, err := h.taskService.CreateTask(c.Request.Context(), ownerID, services.CreateTaskInput{
		Title:       req.Title,
		Description: req.Description,
		DueDate:     dueDate,
		Status:      models.TaskStatus(req.Status),
	})
	if err != nil {
		h.respondTaskError(c, "create task failed", err)
		return
	}

	c.JSON(http.StatusCreated, dto.OK(dto.ToTaskDTO(*task), "Task created"))
}

// ListTasks returns one page of the caller's tasks
func (h *TaskHandler) ListTasks(c *gin.Context) {
	ownerID, ok := middleware.GetUserID(c)
	if !ok {
		apierrors.Unauthorized(c, "")
		return
	}

	query, fieldErrs := validation.BindListTasksQuery(c)
	if fieldErrs != nil {
		apierrors.BadRequestWithDetails(c, "", fieldErrs)
		return
	}

	input := services.ListTasksInput{
		SortBy:    repository.TaskSortField(query.SortBy),
		SortOrder: query.SortOrder,
		Page:      query.Page,
		Limit:     query.Limit,
	}
	if query.Status != "" {
		status := models.TaskStatus(query.Status)
		input.Status = &status
	}

	page, err := h.taskService.ListTasks(c.Request.Context(), ownerID, input)
	if err != nil {
		h.respondTaskError(c, "list tasks failed", err)
		return
	}

	c.JSON(http.StatusOK, dto.OK(dto.ToTaskListResponse(page.Tasks, page.Pagination), ""))
}

// GetTask returns one of the caller's tasks
func (h *TaskHandler) GetTask(c *gin.Context) {
	ownerID, ok := middleware.GetUserID(c)
	if !ok {
		apierrors.Unauthorized(c, "")
		return
	}

	task, err := h.taskService.GetTask(c.Request.Context(), ownerID, c.Param("id"))
	if err != nil {
		h.respondTaskError(c, "get task failed", err)
		return
	}

	c.JSON(http.StatusOK, dto.OK(dto.ToTaskDTO(*task), ""))
}

// UpdateTask applies a partial update to one of the caller's tasks
func (h *TaskHandler) UpdateTask(c *gin.Context) {
	ownerID, ok := middleware.GetUserID(c)
	if !ok {
		apierrors.Unauthorized(c, "")
		return
	}

	var req dto.UpdateTaskRequest
	if fieldErrs := validation.BindJSON(c, &req); fieldErrs != nil {
		apierrors.BadRequestWithDetails(c, "", fieldErrs)
		return
	}

	dueDate, err := parseDueDate(req.DueDate)
	if err != nil {
		apierrors.BadRequestWithDetails(c, "", dueDateError)
		return
	}

	input := services.UpdateTaskInput{
		Title:       req.Title,
		Description: req.Description,
		DueDate:     dueDate,
	}
	if req.Status != nil {
		status := models.TaskStatus(*req.Status)
		input.Status = &status
	}

	task, err := h.taskService.UpdateTask(c.Request.Context(), ownerID, c.Param("id"), input)
	if err != nil {
		h.respondTaskError(c, "update task failed", err)
		return
	}

	c.JSON(http.StatusOK, dto.OK(dto.ToTaskDTO(*task), "Task updated"))
}

// DeleteTask removes one of the caller's tasks
func (h *TaskHandler) DeleteTask(c *gin.Context) {
	ownerID, ok := middleware.GetUserID(c)
	if !ok {
		apierrors.Unauthorized(c, "")
		return
	}

	if err := h.taskService.DeleteTask(c.Request.Context(), ownerID, c.Param("id")); err != nil {
		h.respondTaskError(c, "delete task failed", err)
		return
	}

	c.JSON(http.StatusOK, dto.OK(nil, "Task deleted"))
}

var dueDateError = []dto.FieldError{
	{Field: "dueDate", Message: "must be an RFC 3339 timestamp or a YYYY-MM-DD date"},
}

func parseDueDate(raw *string) (*time.Time, error) {
	if raw == nil {
		return nil, nil
	}
	t, err := validation.ParseTimestamp(*raw)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// respondTaskError maps service errors onto the envelope. Anything unexpected
// is logged and reported without detail.
func (h *TaskHandler) respondTaskError(c *gin.Context, msg string, err error) {
	switch {
	case errors.Is(err, services.ErrTaskNotFound):
		apierrors.NotFound(c, "Task not found")
	case errors.Is(err, services.ErrTitleEmpty):
		apierrors.BadRequestWithDetails(c, "", []dto.FieldError{{Field: "title", Message: "must not be blank"}})
	case errors.Is(err, services.ErrInvalidStatus):
		apierrors.BadRequestWithDetails(c, "", []dto.FieldError{{Field: "status", Message: "must be one of: pending, in-progress, completed"}})
	case errors.Is(err, services.ErrInvalidSort):
		apierrors.BadRequestWithDetails(c, "", []dto.FieldError{{Field: "sortBy", Message: "must be one of: dueDate, createdAt, title"}})
	default:
		h.log.Error(msg,
			zap.String("request_id", middleware.GetRequestID(c)),
			zap.String("path", c.Request.URL.Path),
			zap.Error(err),
		)
		apierrors.InternalError(c)
	}
}
