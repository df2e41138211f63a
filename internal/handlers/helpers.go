package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/campushub/university_backend/internal/events"
	"github.com/campushub/university_backend/internal/logging"
	"github.com/campushub/university_backend/internal/util"
)

func pathID(c echo.Context) (uint, error) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id < 1 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	return uint(id), nil
}

func pageParams(c echo.Context) (page, offset, limit int) {
	page = util.ParseIntDefault(c.QueryParam("page"), 1)
	size := util.ParseIntDefault(c.QueryParam("size"), util.DefaultPageSize)
	offset, limit = util.Calculate(page, size)
	return page, offset, limit
}

// listEntities is the shared pagination query: count, then one ordered page.
func listEntities[T any](c echo.Context, db *gorm.DB, scope func(*gorm.DB) *gorm.DB) error {
	ctx := c.Request().Context()
	page, offset, limit := pageParams(c)

	base := func() *gorm.DB {
		q := db.WithContext(ctx).Model(new(T))
		if scope != nil {
			q = scope(q)
		}
		return q
	}

	var total int64
	if err := base().Count(&total).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "list failed")
	}

	var items []T
	if err := base().Order("id ASC").Offset(offset).Limit(limit).Find(&items).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "list failed")
	}

	return c.JSON(http.StatusOK, map[string]any{
		"data": items,
		"meta": util.PageMeta(page, limit, offset, total),
	})
}

func getEntity[T any](c echo.Context, db *gorm.DB) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}

	var item T
	if err := db.WithContext(c.Request().Context()).First(&item, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "lookup failed")
	}
	return c.JSON(http.StatusOK, item)
}

func deleteEntity[T any](c echo.Context, db *gorm.DB) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}

	res := db.WithContext(c.Request().Context()).Delete(new(T), id)
	if res.Error != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "delete failed")
	}
	if res.RowsAffected == 0 {
		return echo.NewHTTPError(http.StatusNotFound, "not found")
	}
	return c.NoContent(http.StatusNoContent)
}

func publishEvent(c echo.Context, p *events.Producer, key string, event map[string]any) {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := p.Publish(ctx, key, event); err != nil {
		logging.FromContext(c.Request().Context()).Error("kafka publish error", "error", err)
	}
}
