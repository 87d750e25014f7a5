package database

import (
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// taskIndexes back the owner-scoped list queries: every predicate starts with
// owner_id, followed by the optional status filter or the sort column.
var taskIndexes = []struct {
	table   string
	name    string
	columns string
}{
	{"tasks", "idx_tasks_owner_status", "owner_id, status"},
	{"tasks", "idx_tasks_owner_created_at", "owner_id, created_at"},
	{"tasks", "idx_tasks_owner_due_date", "owner_id, due_date"},
}

// AddIndexes creates any missing index from taskIndexes.
func AddIndexes(db *gorm.DB, log *zap.Logger) error {
	migrator := db.Migrator()

	for _, idx := range taskIndexes {
		if migrator.HasIndex(idx.table, idx.name) {
			log.Debug("Index already exists, skipping", zap.String("index", idx.name))
			continue
		}

		sql := fmt.Sprintf("CREATE INDEX %s ON %s (%s)", idx.name, idx.table, idx.columns)
		if err := db.Exec(sql).Error; err != nil {
			return fmt.Errorf("failed to create index %s: %w", idx.name, err)
		}

		log.Info("Created index",
			zap.String("index", idx.name),
			zap.String("table", idx.table),
			zap.String("columns", idx.columns))
	}

	return nil
}
