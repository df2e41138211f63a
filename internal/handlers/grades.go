package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/campushub/university_backend/internal/models"
)

type GradeHandler struct {
	DB *gorm.DB
}

func (h *GradeHandler) List(c echo.Context) error {
	enrollmentID := c.QueryParam("enrollment_id")
	var scope func(*gorm.DB) *gorm.DB
	if enrollmentID != "" {
		scope = func(q *gorm.DB) *gorm.DB { return q.Where("enrollment_id = ?", enrollmentID) }
	}
	return listEntities[models.Grade](c, h.DB, scope)
}

func (h *GradeHandler) Get(c echo.Context) error {
	return getEntity[models.Grade](c, h.DB)
}

func (h *GradeHandler) Create(c echo.Context) error {
	var req struct {
		EnrollmentID uint    `json:"enrollment_id"`
		Value        float64 `json:"value"`
		Comment      string  `json:"comment"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if req.EnrollmentID == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "enrollment_id is required")
	}

	ctx := c.Request().Context()
	if err := h.DB.WithContext(ctx).First(&models.Enrollment{}, req.EnrollmentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "enrollment not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "lookup failed")
	}

	grade := models.Grade{
		EnrollmentID: req.EnrollmentID,
		Value:        req.Value,
		Comment:      req.Comment,
	}
	if err := h.DB.WithContext(ctx).Create(&grade).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "create failed")
	}
	return c.JSON(http.StatusCreated, grade)
}

func (h *GradeHandler) Patch(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}

	var req struct {
		Value   *float64 `json:"value"`
		Comment *string  `json:"comment"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	ctx := c.Request().Context()
	var grade models.Grade
	if err := h.DB.WithContext(ctx).First(&grade, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "lookup failed")
	}

	if req.Value != nil {
		grade.Value = *req.Value
	}
	if req.Comment != nil {
		grade.Comment = *req.Comment
	}

	if err := h.DB.WithContext(ctx).Save(&grade).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "update failed")
	}
	return c.JSON(http.StatusOK, grade)
}

func (h *GradeHandler) Delete(c echo.Context) error {
	return deleteEntity[models.Grade](c, h.DB)
}
