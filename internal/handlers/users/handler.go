package users

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/Nazarious-ucu/weather-push-api/internal/handlers/middleware"
	"github.com/Nazarious-ucu/weather-push-api/internal/models"
)

const timeoutDuration = 10 * time.Second

type userService interface {
	Register(ctx context.Context, data models.RegisterData) (models.User, error)
	Verify(ctx context.Context, token string) (bool, error)
	Login(ctx context.Context, data models.LoginData) (string, error)
	Logout(ctx context.Context, token string) error
	List(ctx context.Context) ([]models.User, error)
	Delete(ctx context.Context, id int64) error
}

type Handler struct {
	Service userService
	logger  zerolog.Logger
}

func NewHandler(svc userService, logger zerolog.Logger) *Handler {
	return &Handler{Service: svc, logger: logger.With().Str("component", "UsersHandler").Logger()}
}

// Register
// @Summary Register a user
// @Description Creates an account and sends an email confirmation link.
// @Tags users
// @Accept json
// @Produce json
// @Param body body models.RegisterData true "Account"
// @Success 201 {object} models.User
// @Failure 400
// @Router /register/ [post]
func (h *Handler) Register(c *gin.Context) {
	var data models.RegisterData
	if err := c.ShouldBind(&data); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), timeoutDuration)
	defer cancel()

	user, err := h.Service.Register(ctx, data)
	if errors.Is(err, models.ErrUserExists) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "User with this username or email already exists"})
		return
	}
	if err != nil {
		h.logger.Error().Ctx(ctx).Err(err).Msg("register failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	c.JSON(http.StatusCreated, user)
}

// Verify
// @Summary Confirm email
// @Tags users
// @Param token path string true "Verification token"
// @Success 200
// @Failure 400
// @Router /verify/{token} [get]
func (h *Handler) Verify(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), timeoutDuration)
	defer cancel()

	ok, err := h.Service.Verify(ctx, c.Param("token"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid verification token"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Email verified"})
}

// Login
// @Summary Obtain a bearer token
// @Tags users
// @Accept json
// @Produce json
// @Param body body models.LoginData true "Credentials"
// @Success 200
// @Failure 400
// @Failure 401
// @Router /token/ [post]
func (h *Handler) Login(c *gin.Context) {
	var data models.LoginData
	if err := c.ShouldBind(&data); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), timeoutDuration)
	defer cancel()

	token, err := h.Service.Login(ctx, data)
	if errors.Is(err, models.ErrInvalidCredentials) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid username or password"})
		return
	}
	if err != nil {
		h.logger.Error().Ctx(ctx).Err(err).Msg("login failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token, "token_type": "Bearer"})
}

// Logout
// @Summary Revoke the current bearer token
// @Tags users
// @Security Bearer
// @Success 204
// @Router /token/ [delete]
func (h *Handler) Logout(c *gin.Context) {
	if err := h.Service.Logout(c.Request.Context(), middleware.CurrentToken(c)); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	c.Status(http.StatusNoContent)
}

// List
// @Summary List users
// @Tags users
// @Security Bearer
// @Produce json
// @Success 200 {array} models.User
// @Failure 403
// @Router /users/ [get]
func (h *Handler) List(c *gin.Context) {
	list, err := h.Service.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	c.JSON(http.StatusOK, list)
}

// Delete
// @Summary Delete a user with all subscriptions
// @Tags users
// @Security Bearer
// @Param id path int true "User id"
// @Success 204
// @Failure 403
// @Failure 404
// @Router /users/{id} [delete]
func (h *Handler) Delete(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user id"})
		return
	}

	err = h.Service.Delete(c.Request.Context(), id)
	if errors.Is(err, models.ErrUserNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	c.Status(http.StatusNoContent)
}
