package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/campushub/university_backend/internal/models"
)

type ProfessorHandler struct {
	DB *gorm.DB
}

func (h *ProfessorHandler) List(c echo.Context) error {
	return listEntities[models.Professor](c, h.DB, nil)
}

func (h *ProfessorHandler) Get(c echo.Context) error {
	return getEntity[models.Professor](c, h.DB)
}

func (h *ProfessorHandler) Create(c echo.Context) error {
	var req struct {
		UserID     uint   `json:"user_id"`
		FirstName  string `json:"first_name"`
		LastName   string `json:"last_name"`
		Email      string `json:"email"`
		Department string `json:"department"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if req.FirstName == "" || req.LastName == "" || req.Email == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "first_name, last_name and email are required")
	}

	professor := models.Professor{
		UserID:     req.UserID,
		FirstName:  req.FirstName,
		LastName:   req.LastName,
		Email:      req.Email,
		Department: req.Department,
	}
	if err := h.DB.WithContext(c.Request().Context()).Create(&professor).Error; err != nil {
		return echo.NewHTTPError(http.StatusConflict, "professor already exists")
	}
	return c.JSON(http.StatusCreated, professor)
}

func (h *ProfessorHandler) Patch(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}

	var req struct {
		FirstName  *string `json:"first_name"`
		LastName   *string `json:"last_name"`
		Email      *string `json:"email"`
		Department *string `json:"department"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	ctx := c.Request().Context()
	var professor models.Professor
	if err := h.DB.WithContext(ctx).First(&professor, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "lookup failed")
	}

	if req.FirstName != nil {
		professor.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		professor.LastName = *req.LastName
	}
	if req.Email != nil {
		professor.Email = *req.Email
	}
	if req.Department != nil {
		professor.Department = *req.Department
	}

	if err := h.DB.WithContext(ctx).Save(&professor).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "update failed")
	}
	return c.JSON(http.StatusOK, professor)
}

func (h *ProfessorHandler) Delete(c echo.Context) error {
	return deleteEntity[models.Professor](c, h.DB)
}
