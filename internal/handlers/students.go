package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/campushub/university_backend/internal/models"
)

type StudentHandler struct {
	DB *gorm.DB
}

func (h *StudentHandler) List(c echo.Context) error {
	return listEntities[models.Student](c, h.DB, nil)
}

func (h *StudentHandler) Get(c echo.Context) error {
	return getEntity[models.Student](c, h.DB)
}

func (h *StudentHandler) Create(c echo.Context) error {
	var req struct {
		UserID         uint   `json:"user_id"`
		FirstName      string `json:"first_name"`
		LastName       string `json:"last_name"`
		Email          string `json:"email"`
		EnrollmentYear int    `json:"enrollment_year"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if req.FirstName == "" || req.LastName == "" || req.Email == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "first_name, last_name and email are required")
	}

	student := models.Student{
		UserID:         req.UserID,
		FirstName:      req.FirstName,
		LastName:       req.LastName,
		Email:          req.Email,
		EnrollmentYear: req.EnrollmentYear,
	}
	if err := h.DB.WithContext(c.Request().Context()).Create(&student).Error; err != nil {
		return echo.NewHTTPError(http.StatusConflict, "student already exists")
	}
	return c.JSON(http.StatusCreated, student)
}

func (h *StudentHandler) Patch(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}

	var req struct {
		FirstName      *string `json:"first_name"`
		LastName       *string `json:"last_name"`
		Email          *string `json:"email"`
		EnrollmentYear *int    `json:"enrollment_year"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	ctx := c.Request().Context()
	var student models.Student
	if err := h.DB.WithContext(ctx).First(&student, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "lookup failed")
	}

	if req.FirstName != nil {
		student.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		student.LastName = *req.LastName
	}
	if req.Email != nil {
		student.Email = *req.Email
	}
	if req.EnrollmentYear != nil {
		student.EnrollmentYear = *req.EnrollmentYear
	}

	if err := h.DB.WithContext(ctx).Save(&student).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "update failed")
	}
	return c.JSON(http.StatusOK, student)
}

func (h *StudentHandler) Delete(c echo.Context) error {
	return deleteEntity[models.Student](c, h.DB)
}
