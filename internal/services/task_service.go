package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/yukikurage/task-tracker-api/internal/models"
	"github.com/yukikurage/task-tracker-api/internal/repository"
	"github.com/yukikurage/task-tracker-api/internal/utils"
	"gorm.io/gorm"
)

var (
	ErrTaskNotFound  = errors.New("task not found")
	ErrTitleEmpty    = errors.New("title cannot be empty")
	ErrInvalidStatus = errors.New("invalid task status")
	ErrInvalidSort   = errors.New("invalid sort field")
)

// TaskService handles owner-scoped task use cases. Every method takes the
// authenticated account ID explicitly.
type TaskService struct {
	taskRepo repository.TaskRepository
}

// NewTaskService creates a new TaskService
func NewTaskService(taskRepo repository.TaskRepository) *TaskService {
	return &TaskService{
		taskRepo: taskRepo,
	}
}

// CreateTaskInput represents input for creating a task
type CreateTaskInput struct {
	Title       string
	Description *string
	DueDate     *time.Time
	Status      models.TaskStatus
}

// ListTasksInput represents filters for listing tasks
type ListTasksInput struct {
	Status    *models.TaskStatus
	SortBy    repository.TaskSortField
	SortOrder string
	Page      int
	Limit     int
}

// UpdateTaskInput represents a partial update; nil fields are left unchanged
type UpdateTaskInput struct {
	Title       *string
	Description *string
	DueDate     *time.Time
	Status      *models.TaskStatus
}

// TaskPage is one page of a listing plus its metadata
type TaskPage struct {
	Tasks      []models.Task
	Pagination utils.PaginationResponse
}

// CreateTask creates a task owned by ownerID. Status defaults to pending.
func (s *TaskService) CreateTask(ctx context.Context, ownerID string, input CreateTaskInput) (*models.Task, error) {
	if strings.TrimSpace(input.Title) == "" {
		return nil, ErrTitleEmpty
	}
	if input.Status == "" {
		input.Status = models.TaskStatusPending
	}
	if !input.Status.Valid() {
		return nil, ErrInvalidStatus
	}

	task := &models.Task{
		Title:       input.Title,
		Description: input.Description,
		DueDate:     input.DueDate,
		Status:      input.Status,
	}
	if err := s.taskRepo.Create(ctx, ownerID, task); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	return task, nil
}

// ListTasks returns one page of ownerID's tasks
func (s *TaskService) ListTasks(ctx context.Context, ownerID string, input ListTasksInput) (*TaskPage, error) {
	if input.Status != nil && !input.Status.Valid() {
		return nil, ErrInvalidStatus
	}

	sortBy := input.SortBy
	switch sortBy {
	case "":
		sortBy = repository.SortByCreatedAt
	case repository.SortByCreatedAt, repository.SortByDueDate, repository.SortByTitle:
	default:
		return nil, ErrInvalidSort
	}

	params := utils.NewPaginationParams(input.Page, input.Limit)
	tasks, total, err := s.taskRepo.List(ctx, ownerID, repository.TaskFilter{
		Status:     input.Status,
		SortBy:     sortBy,
		SortDesc:   !strings.EqualFold(input.SortOrder, "asc"),
		Pagination: params,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}

	return &TaskPage{
		Tasks:      tasks,
		Pagination: utils.NewPaginationResponse(params, total),
	}, nil
}

// GetTask returns one of ownerID's tasks. A task owned by another account is
// reported as ErrTaskNotFound.
func (s *TaskService) GetTask(ctx context.Context, ownerID, taskID string) (*models.Task, error) {
	task, err := s.taskRepo.FindByID(ctx, ownerID, taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}

	return task, nil
}

// UpdateTask applies a partial update to one of ownerID's tasks
func (s *TaskService) UpdateTask(ctx context.Context, ownerID, taskID string, input UpdateTaskInput) (*models.Task, error) {
	if input.Title != nil && strings.TrimSpace(*input.Title) == "" {
		return nil, ErrTitleEmpty
	}
	if input.Status != nil && !input.Status.Valid() {
		return nil, ErrInvalidStatus
	}

	task, err := s.taskRepo.Update(ctx, ownerID, taskID, repository.TaskChanges{
		Title:       input.Title,
		Description: input.Description,
		DueDate:     input.DueDate,
		Status:      input.Status,
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to update task: %w", err)
	}

	return task, nil
}

// DeleteTask deletes one of ownerID's tasks
func (s *TaskService) DeleteTask(ctx context.Context, ownerID, taskID string) error {
	if err := s.taskRepo.Delete(ctx, ownerID, taskID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTaskNotFound
		}
		return fmt.Errorf("failed to delete task: %w", err)
	}

	return nil
}
