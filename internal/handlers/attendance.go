package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/campushub/university_backend/internal/models"
)

type AttendanceHandler struct {
	DB *gorm.DB
}

func (h *AttendanceHandler) List(c echo.Context) error {
	enrollmentID := c.QueryParam("enrollment_id")
	var scope func(*gorm.DB) *gorm.DB
	if enrollmentID != "" {
		scope = func(q *gorm.DB) *gorm.DB { return q.Where("enrollment_id = ?", enrollmentID) }
	}
	return listEntities[models.Attendance](c, h.DB, scope)
}

func (h *AttendanceHandler) Create(c echo.Context) error {
	var req struct {
		EnrollmentID uint   `json:"enrollment_id"`
		Date         string `json:"date"`
		Present      bool   `json:"present"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if req.EnrollmentID == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "enrollment_id is required")
	}

	date := time.Now().UTC().Truncate(24 * time.Hour)
	if req.Date != "" {
		parsed, err := time.Parse("2006-01-02", req.Date)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "date must be YYYY-MM-DD")
		}
		date = parsed
	}

	ctx := c.Request().Context()
	if err := h.DB.WithContext(ctx).First(&models.Enrollment{}, req.EnrollmentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "enrollment not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "lookup failed")
	}

	record := models.Attendance{
		EnrollmentID: req.EnrollmentID,
		Date:         date,
		Present:      req.Present,
	}
	if err := h.DB.WithContext(ctx).Create(&record).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "create failed")
	}
	return c.JSON(http.StatusCreated, record)
}

func (h *AttendanceHandler) Delete(c echo.Context) error {
	return deleteEntity[models.Attendance](c, h.DB)
}
