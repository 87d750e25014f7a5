package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/task-tracker-api/internal/auth"
	"github.com/yukikurage/task-tracker-api/internal/database"
	"github.com/yukikurage/task-tracker-api/internal/models"
	"github.com/yukikurage/task-tracker-api/internal/repository"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type serviceTestEnv struct {
	db          *gorm.DB
	codec       *auth.TokenCodec
	authService *AuthService
	taskService *TaskService
}

func setupServiceTestEnv(t *testing.T) serviceTestEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), database.GormConfig(logger.Discard))
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() {
		sqlDB.Close()
	})

	require.NoError(t, database.Migrate(db, zap.NewNop()))

	codec := auth.NewTokenCodec([]byte("0123456789abcdef0123456789abcdef"), auth.DefaultTokenTTL)

	return serviceTestEnv{
		db:          db,
		codec:       codec,
		authService: NewAuthService(repository.NewAccountRepository(db), auth.NewPasswordHasher(bcrypt.MinCost), codec),
		taskService: NewTaskService(repository.NewTaskRepository(db)),
	}
}

func (env serviceTestEnv) register(t *testing.T, email string) *models.Account {
	t.Helper()
	account, err := env.authService.Register(context.Background(), RegisterInput{Email: email, Password: "secret1"})
	require.NoError(t, err)
	return account
}

func TestAuthService_Register(t *testing.T) {
	env := setupServiceTestEnv(t)
	ctx := context.Background()

	account, err := env.authService.Register(ctx, RegisterInput{Email: "a@x.com", Password: "secret1"})
	require.NoError(t, err)
	assert.NotEmpty(t, account.ID)
	assert.NotEqual(t, "secret1", account.PasswordHash)

	_, err = env.authService.Register(ctx, RegisterInput{Email: "a@x.com", Password: "another1"})
	assert.ErrorIs(t, err, ErrEmailTaken)

	_, err = env.authService.Register(ctx, RegisterInput{Email: "b@x.com", Password: "short"})
	assert.ErrorIs(t, err, ErrPasswordTooShort)
}

func TestAuthService_Login(t *testing.T) {
	env := setupServiceTestEnv(t)
	ctx := context.Background()
	account := env.register(t, "a@x.com")

	_, err := env.authService.Login(ctx, LoginInput{Email: "a@x.com", Password: "wrong"})
	assert.ErrorIs(t, err, ErrIncorrectPassword)

	_, err = env.authService.Login(ctx, LoginInput{Email: "nobody@x.com", Password: "secret1"})
	assert.ErrorIs(t, err, ErrAccountNotFound)

	result, err := env.authService.Login(ctx, LoginInput{Email: "a@x.com", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, account.ID, result.Account.ID)

	claims, err := env.codec.Verify(result.Token)
	require.NoError(t, err)
	assert.Equal(t, account.ID, claims.AccountID)
}

func TestAuthService_GetAccount(t *testing.T) {
	env := setupServiceTestEnv(t)
	account := env.register(t, "a@x.com")

	got, err := env.authService.GetAccount(context.Background(), account.ID)
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", got.Email)

	_, err = env.authService.GetAccount(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrAccountNotFound)
}

type failingIssuer struct{}

func (failingIssuer) Issue(string) (string, error) { return "", errors.New("no key") }

func TestAuthService_LoginIssueFailure(t *testing.T) {
	env := setupServiceTestEnv(t)
	env.register(t, "a@x.com")

	svc := NewAuthService(repository.NewAccountRepository(env.db), auth.NewPasswordHasher(bcrypt.MinCost), failingIssuer{})
	_, err := svc.Login(context.Background(), LoginInput{Email: "a@x.com", Password: "secret1"})
	assert.ErrorIs(t, err, ErrFailedToIssueToken)
}

func TestTaskService_CreateDefaultsToPending(t *testing.T) {
	env := setupServiceTestEnv(t)
	owner := env.register(t, "a@x.com")

	task, err := env.taskService.CreateTask(context.Background(), owner.ID, CreateTaskInput{Title: "buy milk"})
	require.NoError(t, err)
	assert.Equal(t, models.TaskStatusPending, task.Status)
	assert.Equal(t, owner.ID, task.OwnerID)

	_, err = env.taskService.CreateTask(context.Background(), owner.ID, CreateTaskInput{Title: "   "})
	assert.ErrorIs(t, err, ErrTitleEmpty)

	_, err = env.taskService.CreateTask(context.Background(), owner.ID, CreateTaskInput{Title: "x", Status: "archived"})
	assert.ErrorIs(t, err, ErrInvalidStatus)
}

func TestTaskService_OwnershipIsolation(t *testing.T) {
	env := setupServiceTestEnv(t)
	ctx := context.Background()
	a := env.register(t, "a@x.com")
	b := env.register(t, "b@x.com")

	task, err := env.taskService.CreateTask(ctx, a.ID, CreateTaskInput{Title: "a's task"})
	require.NoError(t, err)

	_, err = env.taskService.GetTask(ctx, b.ID, task.ID)
	assert.ErrorIs(t, err, ErrTaskNotFound)

	title := "stolen"
	_, err = env.taskService.UpdateTask(ctx, b.ID, task.ID, UpdateTaskInput{Title: &title})
	assert.ErrorIs(t, err, ErrTaskNotFound)

	assert.ErrorIs(t, env.taskService.DeleteTask(ctx, b.ID, task.ID), ErrTaskNotFound)

	// Foreign and nonexistent are indistinguishable.
	_, errForeign := env.taskService.GetTask(ctx, b.ID, task.ID)
	_, errMissing := env.taskService.GetTask(ctx, b.ID, "no-such-task")
	assert.Equal(t, errMissing, errForeign)

	page, err := env.taskService.ListTasks(ctx, b.ID, ListTasksInput{})
	require.NoError(t, err)
	assert.Empty(t, page.Tasks)

	got, err := env.taskService.GetTask(ctx, a.ID, task.ID)
	require.NoError(t, err)
	assert.Equal(t, "a's task", got.Title)
}

func TestTaskService_PartialUpdate(t *testing.T) {
	env := setupServiceTestEnv(t)
	ctx := context.Background()
	owner := env.register(t, "a@x.com")

	desc := "semi-skimmed"
	due := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	task, err := env.taskService.CreateTask(ctx, owner.ID, CreateTaskInput{Title: "buy milk", Description: &desc, DueDate: &due})
	require.NoError(t, err)

	status := models.TaskStatusInProgress
	updated, err := env.taskService.UpdateTask(ctx, owner.ID, task.ID, UpdateTaskInput{Status: &status})
	require.NoError(t, err)

	assert.Equal(t, models.TaskStatusInProgress, updated.Status)
	assert.Equal(t, "buy milk", updated.Title)
	require.NotNil(t, updated.Description)
	assert.Equal(t, desc, *updated.Description)
	require.NotNil(t, updated.DueDate)
	assert.True(t, due.Equal(*updated.DueDate))

	empty := ""
	_, err = env.taskService.UpdateTask(ctx, owner.ID, task.ID, UpdateTaskInput{Title: &empty})
	assert.ErrorIs(t, err, ErrTitleEmpty)

	bad := models.TaskStatus("done")
	_, err = env.taskService.UpdateTask(ctx, owner.ID, task.ID, UpdateTaskInput{Status: &bad})
	assert.ErrorIs(t, err, ErrInvalidStatus)
}

func TestTaskService_ListPagination(t *testing.T) {
	env := setupServiceTestEnv(t)
	ctx := context.Background()
	owner := env.register(t, "a@x.com")

	for i := 0; i < 7; i++ {
		_, err := env.taskService.CreateTask(ctx, owner.ID, CreateTaskInput{Title: "task"})
		require.NoError(t, err)
	}

	page, err := env.taskService.ListTasks(ctx, owner.ID, ListTasksInput{Page: 1, Limit: 3})
	require.NoError(t, err)
	assert.Len(t, page.Tasks, 3)
	assert.Equal(t, int64(7), page.Pagination.Total)
	assert.Equal(t, 3, page.Pagination.TotalPages)
	assert.True(t, page.Pagination.HasNext)
	assert.False(t, page.Pagination.HasPrev)

	last, err := env.taskService.ListTasks(ctx, owner.ID, ListTasksInput{Page: 3, Limit: 3, SortOrder: "asc"})
	require.NoError(t, err)
	assert.Len(t, last.Tasks, 1)
	assert.False(t, last.Pagination.HasNext)
	assert.True(t, last.Pagination.HasPrev)

	_, err = env.taskService.ListTasks(ctx, owner.ID, ListTasksInput{SortBy: "owner_id"})
	assert.ErrorIs(t, err, ErrInvalidSort)

	bad := models.TaskStatus("archived")
	_, err = env.taskService.ListTasks(ctx, owner.ID, ListTasksInput{Status: &bad})
	assert.ErrorIs(t, err, ErrInvalidStatus)
}

func TestTaskService_DeleteTask(t *testing.T) {
	env := setupServiceTestEnv(t)
	ctx := context.Background()
	owner := env.register(t, "a@x.com")

	task, err := env.taskService.CreateTask(ctx, owner.ID, CreateTaskInput{Title: "temp"})
	require.NoError(t, err)

	require.NoError(t, env.taskService.DeleteTask(ctx, owner.ID, task.ID))
	assert.ErrorIs(t, env.taskService.DeleteTask(ctx, owner.ID, task.ID), ErrTaskNotFound)
}
