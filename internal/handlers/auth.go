package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/task-tracker-api/internal/dto"
	apierrors "github.com/yukikurage/task-tracker-api/internal/errors"
	"github.com/yukikurage/task-tracker-api/internal/middleware"
	"github.com/yukikurage/task-tracker-api/internal/services"
	"github.com/yukikurage/task-tracker-api/internal/validation"
	"go.uber.org/zap"
)

type AuthHandler struct {
	authService *services.AuthService
	log         *zap.Logger
}

func NewAuthHandler(authService *services.AuthService, log *zap.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		log:         log,
	}
}

// Register creates a new account
func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if fieldErrs := validation.BindJSON(c, &req); fieldErrs != nil {
		apierrors.BadRequestWithDetails(c, "", fieldErrs)
		return
	}

	account, err := h.authService.Register(c.Request.Context(), services.RegisterInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		switch {
		case errors.Is(err, services.ErrEmailTaken):
			apierrors.Conflict(c, "Email already registered")
		case errors.Is(err, services.ErrPasswordTooShort):
			apierrors.BadRequestWithDetails(c, "", []dto.FieldError{
				{Field: "password", Message: "must be at least 6 characters"},
			})
		default:
			h.log.Error("register failed", zap.String("request_id", middleware.GetRequestID(c)), zap.Error(err))
			apierrors.InternalError(c)
		}
		return
	}

	c.JSON(http.StatusOK, dto.OK(dto.ToAccountDTO(*account), "Account registered"))
}

// Login exchanges credentials for a bearer token
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if fieldErrs := validation.BindJSON(c, &req); fieldErrs != nil {
		apierrors.BadRequestWithDetails(c, "", fieldErrs)
		return
	}

	result, err := h.authService.Login(c.Request.Context(), services.LoginInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		switch {
		case errors.Is(err, services.ErrAccountNotFound):
			apierrors.NotFound(c, "Account not found")
		case errors.Is(err, services.ErrIncorrectPassword):
			apierrors.Unauthorized(c, "Incorrect password")
		default:
			h.log.Error("login failed", zap.String("request_id", middleware.GetRequestID(c)), zap.Error(err))
			apierrors.InternalError(c)
		}
		return
	}

	c.JSON(http.StatusOK, dto.LoginResponse{
		Success: true,
		Message: "Login successful",
		Token:   result.Token,
	})
}

// Me returns the authenticated account
func (h *AuthHandler) Me(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		apierrors.Unauthorized(c, "")
		return
	}

	account, err := h.authService.GetAccount(c.Request.Context(), userID)
	if err != nil {
		// The token can outlive its account.
		if errors.Is(err, services.ErrAccountNotFound) {
			apierrors.NotFound(c, "Account not found")
			return
		}
		h.log.Error("load account failed", zap.String("request_id", middleware.GetRequestID(c)), zap.Error(err))
		apierrors.InternalError(c)
		return
	}

	c.JSON(http.StatusOK, dto.OK(dto.ToAccountDTO(*account), ""))
}
