package dto

import (
	"time"

	"github.com/yukikurage/task-tracker-api/internal/models"
	"github.com/yukikurage/task-tracker-api/internal/utils"
)

// CreateTaskRequest is the body of POST /tasks.
type CreateTaskRequest struct {
	Title       string  `json:"title" binding:"required,max=255"`
	Description *string `json:"description"`
	DueDate     *string `json:"dueDate" binding:"omitempty,timestamp"`
	Status      string  `json:"status" binding:"omitempty,taskstatus"`
}

// UpdateTaskRequest is the body of PUT /tasks/:id. Absent or null fields are
// left unchanged.
type UpdateTaskRequest struct {
	Title       *string `json:"title" binding:"omitempty,min=1,max=255"`
	Description *string `json:"description"`
	DueDate     *string `json:"dueDate" binding:"omitempty,timestamp"`
	Status      *string `json:"status" binding:"omitempty,taskstatus"`
}

// ListTasksQuery holds the query parameters of GET /tasks.
type ListTasksQuery struct {
	Page      int    `form:"page" binding:"min=1,max=1000000"`
	Limit     int    `form:"limit" binding:"min=1,max=100"`
	Status    string `form:"status" binding:"omitempty,taskstatus"`
	SortBy    string `form:"sortBy" binding:"oneof=dueDate createdAt title"`
	SortOrder string `form:"sortOrder" binding:"oneof=asc desc"`
}

// TaskDTO represents a task in API responses
type TaskDTO struct {
	ID          string            `json:"id"`
	OwnerID     string            `json:"ownerId"`
	Title       string            `json:"title"`
	Description *string           `json:"description"`
	DueDate     *time.Time        `json:"dueDate"`
	Status      models.TaskStatus `json:"status"`
	CreatedAt   time.Time         `json:"createdAt"`
	UpdatedAt   time.Time         `json:"updatedAt"`
}

// TaskListResponse represents a paginated list of tasks
type TaskListResponse struct {
	Tasks      []TaskDTO                `json:"tasks"`
	Pagination utils.PaginationResponse `json:"pagination"`
}

// ToTaskDTO converts a Task model to TaskDTO
func ToTaskDTO(task models.Task) TaskDTO {
	return TaskDTO{
		ID:          task.ID,
		OwnerID:     task.OwnerID,
		Title:       task.Title,
		Description: task.Description,
		DueDate:     task.DueDate,
		Status:      task.Status,
		CreatedAt:   task.CreatedAt,
		UpdatedAt:   task.UpdatedAt,
	}
}

// ToTaskListResponse converts a page of tasks to TaskListResponse
func ToTaskListResponse(tasks []models.Task, pagination utils.PaginationResponse) TaskListResponse {
	items := make([]TaskDTO, len(tasks))
	for i, task := range tasks {
		items[i] = ToTaskDTO(task)
	}

	return TaskListResponse{
		Tasks:      items,
		Pagination: pagination,
	}
}
