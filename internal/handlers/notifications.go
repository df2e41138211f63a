package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/campushub/university_backend/internal/authmw"
	"github.com/campushub/university_backend/internal/events"
	"github.com/campushub/university_backend/internal/models"
	"github.com/campushub/university_backend/internal/repo"
)

type NotificationHandler struct {
	DB       *gorm.DB
	Users    *repo.UserRepo
	Producer *events.Producer
}

// List returns the calling user's notifications only; admins may inspect
// another user via the user_id query parameter.
func (h *NotificationHandler) List(c echo.Context) error {
	ac, ok := authmw.FromContext(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}

	ctx := c.Request().Context()
	caller, err := h.Users.FindByEmail(ctx, ac.Subject)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "unknown user")
	}

	targetID := caller.ID
	if override := c.QueryParam("user_id"); override != "" && ac.HasRole(models.RoleAdmin) {
		id, err := strconv.Atoi(override)
		if err != nil || id < 1 {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid user_id")
		}
		targetID = uint(id)
	}

	scope := func(q *gorm.DB) *gorm.DB { return q.Where("user_id = ?", targetID) }
	return listEntities[models.Notification](c, h.DB, scope)
}

func (h *NotificationHandler) Create(c echo.Context) error {
	var req struct {
		UserID uint   `json:"user_id"`
		Title  string `json:"title"`
		Body   string `json:"body"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if req.UserID == 0 || req.Title == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "user_id and title are required")
	}

	notification := models.Notification{
		UserID: req.UserID,
		Title:  req.Title,
		Body:   req.Body,
	}
	if err := h.DB.WithContext(c.Request().Context()).Create(&notification).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "create failed")
	}

	publishEvent(c, h.Producer, fmt.Sprint(notification.UserID), map[string]any{
		"type":            "notification_created",
		"notification_id": notification.ID,
		"user_id":         notification.UserID,
		"title":           notification.Title,
	})

	return c.JSON(http.StatusCreated, notification)
}

func (h *NotificationHandler) MarkRead(c echo.Context) error {
	ac, ok := authmw.FromContext(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}

	id, err := pathID(c)
	if err != nil {
		return err
	}

	ctx := c.Request().Context()
	caller, err := h.Users.FindByEmail(ctx, ac.Subject)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "unknown user")
	}

	var notification models.Notification
	if err := h.DB.WithContext(ctx).First(&notification, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "lookup failed")
	}
	if notification.UserID != caller.ID && !ac.HasRole(models.RoleAdmin) {
		return echo.NewHTTPError(http.StatusForbidden, "not your notification")
	}

	notification.Read = true
	if err := h.DB.WithContext(ctx).Save(&notification).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "update failed")
	}
	return c.JSON(http.StatusOK, notification)
}
