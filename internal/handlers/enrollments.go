package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/campushub/university_backend/internal/models"
)

type EnrollmentHandler struct {
	DB *gorm.DB
}

func (h *EnrollmentHandler) List(c echo.Context) error {
	studentID := c.QueryParam("student_id")
	courseID := c.QueryParam("course_id")
	scope := func(q *gorm.DB) *gorm.DB {
		if studentID != "" {
			q = q.Where("student_id = ?", studentID)
		}
		if courseID != "" {
			q = q.Where("course_id = ?", courseID)
		}
		return q
	}
	return listEntities[models.Enrollment](c, h.DB, scope)
}

func (h *EnrollmentHandler) Get(c echo.Context) error {
	return getEntity[models.Enrollment](c, h.DB)
}

func (h *EnrollmentHandler) Create(c echo.Context) error {
	var req struct {
		StudentID uint `json:"student_id"`
		CourseID  uint `json:"course_id"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if req.StudentID == 0 || req.CourseID == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "student_id and course_id are required")
	}

	ctx := c.Request().Context()
	if err := h.DB.WithContext(ctx).First(&models.Student{}, req.StudentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "student not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "lookup failed")
	}
	if err := h.DB.WithContext(ctx).First(&models.Course{}, req.CourseID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "course not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "lookup failed")
	}

	enrollment := models.Enrollment{StudentID: req.StudentID, CourseID: req.CourseID}
	if err := h.DB.WithContext(ctx).Create(&enrollment).Error; err != nil {
		return echo.NewHTTPError(http.StatusConflict, "student already enrolled in course")
	}
	return c.JSON(http.StatusCreated, enrollment)
}

func (h *EnrollmentHandler) Delete(c echo.Context) error {
	return deleteEntity[models.Enrollment](c, h.DB)
}
