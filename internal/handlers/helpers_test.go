package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/task-tracker-api/internal/auth"
	"github.com/yukikurage/task-tracker-api/internal/constants"
	"github.com/yukikurage/task-tracker-api/internal/database"
	"github.com/yukikurage/task-tracker-api/internal/dto"
	"github.com/yukikurage/task-tracker-api/internal/middleware"
	"github.com/yukikurage/task-tracker-api/internal/repository"
	"github.com/yukikurage/task-tracker-api/internal/services"
	"github.com/yukikurage/task-tracker-api/internal/validation"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type handlerTestEnv struct {
	db          *gorm.DB
	router      *gin.Engine
	codec       *auth.TokenCodec
	authService *services.AuthService
	taskService *services.TaskService
}

func setupHandlerTestEnv(t *testing.T) handlerTestEnv {
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

	codec := auth.NewTokenCodec([]byte("handler-test-secret-0123456789ab"), auth.DefaultTokenTTL)
	authService := services.NewAuthService(repository.NewAccountRepository(db), auth.NewPasswordHasher(bcrypt.MinCost), codec)
	taskService := services.NewTaskService(repository.NewTaskRepository(db))

	authHandler := NewAuthHandler(authService, zap.NewNop())
	taskHandler := NewTaskHandler(taskService, zap.NewNop())

	validation.Register()
	r := gin.New()
	requireAuth := middleware.RequireAuth(codec, zap.NewNop())
	r.POST("/auth/register", authHandler.Register)
	r.POST("/auth/login", authHandler.Login)
	r.GET("/auth/me", requireAuth, authHandler.Me)

	tasks := r.Group("/tasks", requireAuth)
	tasks.POST("", taskHandler.CreateTask)
	tasks.GET("", taskHandler.ListTasks)
	tasks.GET("/:id", taskHandler.GetTask)
	tasks.PUT("/:id", taskHandler.UpdateTask)
	tasks.DELETE("/:id", taskHandler.DeleteTask)

	return handlerTestEnv{
		db:          db,
		router:      r,
		codec:       codec,
		authService: authService,
		taskService: taskService,
	}
}

// signIn registers an account and returns a bearer token for it.
func (env handlerTestEnv) signIn(t *testing.T, email string) (string, string) {
	t.Helper()

	account, err := env.authService.Register(context.Background(), services.RegisterInput{Email: email, Password: "secret1"})
	require.NoError(t, err)
	token, err := env.codec.Issue(account.ID)
	require.NoError(t, err)
	return account.ID, token
}

func (env handlerTestEnv) do(t *testing.T, method, path, token string, payload interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var body *bytes.Reader
	switch p := payload.(type) {
	case nil:
		body = bytes.NewReader(nil)
	case string:
		body = bytes.NewReader([]byte(p))
	default:
		raw, err := json.Marshal(p)
		require.NoError(t, err)
		body = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set(constants.HeaderAuthorization, constants.BearerPrefix+token)
	}
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	return w
}

type taskEnvelope struct {
	Success bool             `json:"success"`
	Message string           `json:"message"`
	Data    dto.TaskDTO      `json:"data"`
	Errors  []dto.FieldError `json:"errors"`
}

type listEnvelope struct {
	Success bool                 `json:"success"`
	Data    dto.TaskListResponse `json:"data"`
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v), w.Body.String())
}

func errorFields(errs []dto.FieldError) []string {
	out := make([]string, len(errs))
	for i, fe := range errs {
		out[i] = fe.Field
	}
	return out
}
