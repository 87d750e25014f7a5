package repository

import (
	"context"
	"time"

	"github.com/yukikurage/task-tracker-api/internal/models"
	"github.com/yukikurage/task-tracker-api/internal/utils"
)

// TaskRepository defines owner-scoped task data access. Every method takes
// the caller's account ID and includes it in the query predicate; a row owned
// by someone else is reported as gorm.ErrRecordNotFound.
type TaskRepository interface {
	// Create persists a new task for ownerID
	Create(ctx context.Context, ownerID string, task *models.Task) error

	// FindByID finds one of ownerID's tasks
	FindByID(ctx context.Context, ownerID, id string) (*models.Task, error)

	// List retrieves a page of ownerID's tasks and the total matching count
	List(ctx context.Context, ownerID string, filter TaskFilter) ([]models.Task, int64, error)

	// Update applies changes to one of ownerID's tasks and returns the result
	Update(ctx context.Context, ownerID, id string, changes TaskChanges) (*models.Task, error)

	// Delete removes one of ownerID's tasks
	Delete(ctx context.Context, ownerID, id string) error
}

// TaskSortField is a sortable task column.
type TaskSortField string

const (
	SortByCreatedAt TaskSortField = "createdAt"
	SortByDueDate   TaskSortField = "dueDate"
	SortByTitle     TaskSortField = "title"
)

// column maps a sort field to its column name. Unknown fields fall back to created_at.
func (f TaskSortField) column() string {
	switch f {
	case SortByDueDate:
		return "due_date"
	case SortByTitle:
		return "title"
	default:
		return "created_at"
	}
}

// TaskFilter holds filtering, ordering and paging options for listing tasks
type TaskFilter struct {
	Status     *models.TaskStatus
	SortBy     TaskSortField
	SortDesc   bool
	Pagination utils.PaginationParams
}

// TaskChanges is a partial update; nil fields are left untouched.
type TaskChanges struct {
	Title       *string
	Description *string
	DueDate     *time.Time
	Status      *models.TaskStatus
}

func (c TaskChanges) IsEmpty() bool {
	return c.Title == nil && c.Description == nil && c.DueDate == nil && c.Status == nil
}

func (c TaskChanges) columns() map[string]interface{} {
	cols := make(map[string]interface{}, 4)
	if c.Title != nil {
		cols["title"] = *c.Title
	}
	if c.Description != nil {
		cols["description"] = *c.Description
	}
	if c.DueDate != nil {
		cols["due_date"] = *c.DueDate
	}
	if c.Status != nil {
		cols["status"] = *c.Status
	}
	return cols
}

// AccountRepository defines the interface for account data access
type AccountRepository interface {
	// Create inserts a new account. Returns ErrDuplicateEmail when the email is taken.
	Create(ctx context.Context, account *models.Account) error

	// FindByID finds an account by ID
	FindByID(ctx context.Context, id string) (*models.Account, error)

	// FindByEmail finds an account by its exact email
	FindByEmail(ctx context.Context, email string) (*models.Account, error)
}
