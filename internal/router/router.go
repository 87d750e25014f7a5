package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/yukikurage/task-tracker-api/internal/constants"
	apierrors "github.com/yukikurage/task-tracker-api/internal/errors"
	"github.com/yukikurage/task-tracker-api/internal/handlers"
	"github.com/yukikurage/task-tracker-api/internal/middleware"
	"github.com/yukikurage/task-tracker-api/internal/validation"
	"go.uber.org/zap"
)

// Dependencies are the collaborators the HTTP surface is assembled from.
type Dependencies struct {
	Logger         *zap.Logger
	AllowedOrigins []string
	Tokens         middleware.TokenVerifier
	AuthHandler    *handlers.AuthHandler
	TaskHandler    *handlers.TaskHandler
}

// New builds the engine with every route registered.
func New(deps Dependencies) *gin.Engine {
	validation.Register()

	r := gin.New()
	r.Use(
		gin.Recovery(),
		middleware.RequestID(),
		middleware.RequestLogger(deps.Logger),
		cors.New(corsConfig(deps.AllowedOrigins)),
	)

	r.NoRoute(func(c *gin.Context) {
		apierrors.NotFound(c, "")
	})

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"message": "Task Tracker API is running",
		})
	})

	requireAuth := middleware.RequireAuth(deps.Tokens, deps.Logger)

	authRoutes := r.Group("/auth")
	{
		authRoutes.POST("/register", deps.AuthHandler.Register)
		authRoutes.POST("/login", deps.AuthHandler.Login)
		authRoutes.GET("/me", requireAuth, deps.AuthHandler.Me)
	}

	tasks := r.Group("/tasks")
	tasks.Use(requireAuth)
	{
		tasks.POST("", deps.TaskHandler.CreateTask)
		tasks.GET("", deps.TaskHandler.ListTasks)
		tasks.GET("/:id", deps.TaskHandler.GetTask)
		tasks.PUT("/:id", deps.TaskHandler.UpdateTask)
		tasks.DELETE("/:id", deps.TaskHandler.DeleteTask)
	}

	return r
}

func corsConfig(origins []string) cors.Config {
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	return cors.Config{
		AllowOrigins:  origins,
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "HEAD"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", constants.HeaderAuthorization, constants.HeaderRequestID},
		ExposeHeaders: []string{"Content-Length", "Content-Type", constants.HeaderRequestID},
		MaxAge:        12 * time.Hour,
	}
}
