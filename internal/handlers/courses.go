package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/campushub/university_backend/internal/models"
)

type CourseHandler struct {
	DB *gorm.DB
}

func (h *CourseHandler) List(c echo.Context) error {
	professorID := c.QueryParam("professor_id")
	var scope func(*gorm.DB) *gorm.DB
	if professorID != "" {
		scope = func(q *gorm.DB) *gorm.DB { return q.Where("professor_id = ?", professorID) }
	}
	return listEntities[models.Course](c, h.DB, scope)
}

func (h *CourseHandler) Get(c echo.Context) error {
	return getEntity[models.Course](c, h.DB)
}

func (h *CourseHandler) Create(c echo.Context) error {
	var req struct {
		Code        string `json:"code"`
		Title       string `json:"title"`
		Description string `json:"description"`
		Credits     uint   `json:"credits"`
		ProfessorID uint   `json:"professor_id"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if req.Code == "" || req.Title == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "code and title are required")
	}

	course := models.Course{
		Code:        req.Code,
		Title:       req.Title,
		Description: req.Description,
		Credits:     req.Credits,
		ProfessorID: req.ProfessorID,
	}
	if err := h.DB.WithContext(c.Request().Context()).Create(&course).Error; err != nil {
		return echo.NewHTTPError(http.StatusConflict, "course code already exists")
	}
	return c.JSON(http.StatusCreated, course)
}

func (h *CourseHandler) Patch(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}

	var req struct {
		Title       *string `json:"title"`
		Description *string `json:"description"`
		Credits     *uint   `json:"credits"`
		ProfessorID *uint   `json:"professor_id"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	ctx := c.Request().Context()
	var course models.Course
	if err := h.DB.WithContext(ctx).First(&course, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "lookup failed")
	}

	if req.Title != nil {
		course.Title = *req.Title
	}
	if req.Description != nil {
		course.Description = *req.Description
	}
	if req.Credits != nil {
		course.Credits = *req.Credits
	}
	if req.ProfessorID != nil {
		course.ProfessorID = *req.ProfessorID
	}

	if err := h.DB.WithContext(ctx).Save(&course).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "update failed")
	}
	return c.JSON(http.StatusOK, course)
}

func (h *CourseHandler) Delete(c echo.Context) error {
	return deleteEntity[models.Course](c, h.DB)
}
