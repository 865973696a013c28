package subscription

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/Nazarious-ucu/weather-push-api/internal/handlers/middleware"
	"github.com/Nazarious-ucu/weather-push-api/internal/models"
)

const timeoutDuration = 10 * time.Second

type subscriber interface {
	Create(ctx context.Context, user models.User, city, country string,
		settings models.SubscriptionSettings) (models.Subscription, error)
	Update(ctx context.Context, user models.User, city, country string,
		settings models.SubscriptionSettings) (models.Subscription, error)
	Delete(ctx context.Context, user models.User, city, country string) (models.Subscription, error)
	List(ctx context.Context, user models.User) ([]models.Subscription, error)
	Get(ctx context.Context, user models.User, id int64) (models.Subscription, error)
}

type Handler struct {
	Service subscriber
	logger  zerolog.Logger
}

func NewHandler(svc subscriber, logger zerolog.Logger) *Handler {
	return &Handler{Service: svc, logger: logger.With().Str("component", "SubscriptionHandler").Logger()}
}

// Create
// @Summary Subscribe to weather updates for a city
// @Tags subscription
// @Security Bearer
// @Accept json
// @Produce json
// @Param city path string true "City name"
// @Param country path string true "Country code"
// @Param body body models.SubscriptionSettings false "Delivery settings"
// @Success 201
// @Failure 400
// @Failure 404
// @Router /cities/{city}/{country}/weather/subscription/ [post]
func (h *Handler) Create(c *gin.Context) {
	settings, ok := h.bindSettings(c)
	if !ok {
		return
	}
	user, _ := middleware.CurrentUser(c)

	ctx, cancel := context.WithTimeout(c.Request.Context(), timeoutDuration)
	defer cancel()

	sub, err := h.Service.Create(ctx, user, c.Param("city"), c.Param("country"), settings)
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusCreated, settingsResponse(user, sub, true))
}

// Update
// @Summary Replace delivery settings of a subscription
// @Tags subscription
// @Security Bearer
// @Accept json
// @Produce json
// @Param city path string true "City name"
// @Param country path string true "Country code"
// @Param body body models.SubscriptionSettings false "Delivery settings"
// @Success 200
// @Failure 400
// @Failure 404
// @Router /cities/{city}/{country}/weather/subscription/ [put]
func (h *Handler) Update(c *gin.Context) {
	settings, ok := h.bindSettings(c)
	if !ok {
		return
	}
	user, _ := middleware.CurrentUser(c)

	ctx, cancel := context.WithTimeout(c.Request.Context(), timeoutDuration)
	defer cancel()

	sub, err := h.Service.Update(ctx, user, c.Param("city"), c.Param("country"), settings)
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, settingsResponse(user, sub, "Subscription updated"))
}

// Delete
// @Summary Unsubscribe from a city
// @Tags subscription
// @Security Bearer
// @Produce json
// @Param city path string true "City name"
// @Param country path string true "Country code"
// @Success 200
// @Failure 404
// @Router /cities/{city}/{country}/weather/subscription/ [delete]
func (h *Handler) Delete(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)

	ctx, cancel := context.WithTimeout(c.Request.Context(), timeoutDuration)
	defer cancel()

	sub, err := h.Service.Delete(ctx, user, c.Param("city"), c.Param("country"))
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user":         user.Username,
		"email":        user.Email,
		"subscription": "Subscription removed",
		"city":         sub.City.Name,
		"country":      sub.City.Country,
	})
}

// List
// @Summary List own subscriptions
// @Tags subscription
// @Security Bearer
// @Produce json
// @Success 200 {array} models.Subscription
// @Router /subscription/ [get]
func (h *Handler) List(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)

	subs, err := h.Service.List(c.Request.Context(), user)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, subs)
}

// Get
// @Summary View one own subscription
// @Tags subscription
// @Security Bearer
// @Produce json
// @Param id path int true "Subscription id"
// @Success 200 {object} models.Subscription
// @Failure 404
// @Router /subscription/{id} [get]
func (h *Handler) Get(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid subscription id"})
		return
	}
	user, _ := middleware.CurrentUser(c)

	sub, err := h.Service.Get(c.Request.Context(), user, id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, sub)
}

// an empty body means all defaults
func (h *Handler) bindSettings(c *gin.Context) (models.SubscriptionSettings, bool) {
	var settings models.SubscriptionSettings
	if err := c.ShouldBind(&settings); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return settings, false
	}
	return settings, true
}

func (h *Handler) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, models.ErrCityNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "City not found"})
	case errors.Is(err, models.ErrProvider):
		c.JSON(http.StatusNotFound, gin.H{"error": "Weather service error"})
	case errors.Is(err, models.ErrSubscriptionNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Subscription not found"})
	case errors.Is(err, models.ErrSubscriptionExists):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Subscription already exists"})
	default:
		h.logger.Error().Ctx(c.Request.Context()).Err(err).Msg("subscription request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}

func settingsResponse(user models.User, sub models.Subscription, status any) gin.H {
	var webhook *string
	if sub.WebhookURL != "" {
		webhook = &sub.WebhookURL
	}
	return gin.H{
		"user":         user.Username,
		"email":        user.Email,
		"subscription": status,
		"city":         sub.City.Name,
		"country":      sub.City.Country,
		"email_push":   sub.EmailPush,
		"webhook_url":  webhook,
		"period_push":  sub.PeriodPush,
	}
}
