package repository

import (
	"context"

	"github.com/yukikurage/task-tracker-api/internal/database"
	"github.com/yukikurage/task-tracker-api/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormTaskRepository is a GORM implementation of TaskRepository
type GormTaskRepository struct {
	db *gorm.DB
}

// NewTaskRepository creates a new TaskRepository
func NewTaskRepository(db *gorm.DB) TaskRepository {
	return &GormTaskRepository{db: db}
}

// Create stamps ownerID onto the task before inserting it.
func (r *GormTaskRepository) Create(ctx context.Context, ownerID string, task *models.Task) error {
	task.OwnerID = ownerID
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(task).Error
}

func (r *GormTaskRepository) FindByID(ctx context.Context, ownerID, id string) (*models.Task, error) {
	return findOwned(r.db.WithContext(ctx), ownerID, id)
}

// List runs the count and the page query against the same predicate.
func (r *GormTaskRepository) List(ctx context.Context, ownerID string, filter TaskFilter) ([]models.Task, int64, error) {
	matching := func() *gorm.DB {
		query := r.db.WithContext(ctx).Model(&models.Task{}).Scopes(database.OwnedBy(ownerID))
		if filter.Status != nil {
			query = query.Where("status = ?", *filter.Status)
		}
		return query
	}

	var total int64
	if err := matching().Count(&total).Error; err != nil {
		return nil, 0, err
	}

	tasks := []models.Task{}
	if total == 0 {
		return tasks, 0, nil
	}

	page := matching()
	if filter.SortBy == SortByDueDate {
		// Undated tasks go last in either direction, on every driver.
		page = page.Order("CASE WHEN tasks.due_date IS NULL THEN 1 ELSE 0 END")
	}
	err := page.
		Order(clause.OrderByColumn{Column: clause.Column{Name: filter.SortBy.column()}, Desc: filter.SortDesc}).
		Order(clause.OrderByColumn{Column: clause.Column{Name: "id"}}).
		Scopes(database.Paginate(filter.Pagination)).
		Find(&tasks).Error
	if err != nil {
		return nil, 0, err
	}

	return tasks, total, nil
}

// Update applies changes in one transaction. The UPDATE itself carries the
// owner predicate, so the ownership check and the write cannot drift apart.
func (r *GormTaskRepository) Update(ctx context.Context, ownerID, id string, changes TaskChanges) (*models.Task, error) {
	var updated *models.Task

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := findOwned(tx, ownerID, id); err != nil {
			return err
		}

		if !changes.IsEmpty() {
			res := tx.Model(&models.Task{}).
				Scopes(database.OwnedBy(ownerID)).
				Where("id = ?", id).
				Updates(changes.columns())
			if res.Error != nil {
				return res.Error
			}
		}

		task, err := findOwned(tx, ownerID, id)
		if err != nil {
			return err
		}
		updated = task
		return nil
	})
	if err != nil {
		return nil, err
	}

	return updated, nil
}

// Delete removes the row only when both id and owner match.
func (r *GormTaskRepository) Delete(ctx context.Context, ownerID, id string) error {
	res := r.db.WithContext(ctx).
		Scopes(database.OwnedBy(ownerID)).
		Where("id = ?", id).
		Delete(&models.Task{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func findOwned(db *gorm.DB, ownerID, id string) (*models.Task, error) {
	var task models.Task
	if err := db.Scopes(database.OwnedBy(ownerID)).Where("id = ?", id).First(&task).Error; err != nil {
		return nil, err
	}
	return &task, nil
}
