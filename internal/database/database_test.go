package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/task-tracker-api/internal/config"
	"github.com/yukikurage/task-tracker-api/internal/models"
	"github.com/yukikurage/task-tracker-api/internal/utils"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), GormConfig(logger.Discard))
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() {
		sqlDB.Close()
	})

	return db
}

func TestMigrate_CreatesSchemaAndIndexes(t *testing.T) {
	db := openTestDB(t)

	require.NoError(t, Migrate(db, zap.NewNop()))

	m := db.Migrator()
	assert.True(t, m.HasTable(&models.Account{}))
	assert.True(t, m.HasTable(&models.Task{}))
	for _, idx := range taskIndexes {
		assert.True(t, m.HasIndex(idx.table, idx.name), idx.name)
	}

	// A second run finds everything in place.
	require.NoError(t, Migrate(db, zap.NewNop()))
}

func TestDialector(t *testing.T) {
	d, err := Dialector(config.DBConfig{Driver: config.DriverMySQL, Host: "h", Port: "3306", User: "u", Password: "p", Name: "n"})
	require.NoError(t, err)
	assert.Equal(t, "mysql", d.Name())

	d, err = Dialector(config.DBConfig{Driver: config.DriverPostgres, Host: "h", Port: "5432", User: "u", Password: "p", Name: "n"})
	require.NoError(t, err)
	assert.Equal(t, "postgres", d.Name())

	_, err = Dialector(config.DBConfig{Driver: "oracle"})
	assert.Error(t, err)
}

func TestScopes(t *testing.T) {
	db := openTestDB(t)
	require.NoError(t, Migrate(db, zap.NewNop()))

	for i := 0; i < 5; i++ {
		owner := "owner-a"
		if i%2 == 1 {
			owner = "owner-b"
		}
		require.NoError(t, db.Create(&models.Task{OwnerID: owner, Title: "t"}).Error)
	}

	var owned []models.Task
	require.NoError(t, db.Scopes(OwnedBy("owner-a")).Find(&owned).Error)
	assert.Len(t, owned, 3)

	var page []models.Task
	params := utils.NewPaginationParams(2, 2)
	require.NoError(t, db.Scopes(Paginate(params)).Order("id").Find(&page).Error)
	assert.Len(t, page, 2)
}
