package handlers

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/campushub/university_backend/internal/authmw"
	"github.com/campushub/university_backend/internal/events"
	"github.com/campushub/university_backend/internal/models"
	"github.com/campushub/university_backend/internal/repo"
)

type AnnouncementHandler struct {
	DB       *gorm.DB
	Users    *repo.UserRepo
	Producer *events.Producer
}

func (h *AnnouncementHandler) List(c echo.Context) error {
	courseID := c.QueryParam("course_id")
	var scope func(*gorm.DB) *gorm.DB
	if courseID != "" {
		scope = func(q *gorm.DB) *gorm.DB { return q.Where("course_id = ?", courseID) }
	}
	return listEntities[models.Announcement](c, h.DB, scope)
}

func (h *AnnouncementHandler) Get(c echo.Context) error {
	return getEntity[models.Announcement](c, h.DB)
}

func (h *AnnouncementHandler) Create(c echo.Context) error {
	ac, ok := authmw.FromContext(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}

	var req struct {
		CourseID *uint  `json:"course_id"`
		Title    string `json:"title"`
		Body     string `json:"body"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if req.Title == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "title is required")
	}

	ctx := c.Request().Context()
	author, err := h.Users.FindByEmail(ctx, ac.Subject)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "unknown author")
	}

	announcement := models.Announcement{
		CourseID: req.CourseID,
		AuthorID: author.ID,
		Title:    req.Title,
		Body:     req.Body,
	}
	if err := h.DB.WithContext(ctx).Create(&announcement).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "create failed")
	}

	publishEvent(c, h.Producer, fmt.Sprint(announcement.ID), map[string]any{
		"type":            "announcement_published",
		"announcement_id": announcement.ID,
		"author":          ac.Subject,
		"title":           announcement.Title,
	})

	return c.JSON(http.StatusCreated, announcement)
}

func (h *AnnouncementHandler) Delete(c echo.Context) error {
	return deleteEntity[models.Announcement](c, h.DB)
}
