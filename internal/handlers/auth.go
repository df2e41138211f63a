package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/campushub/university_backend/internal/events"
	"github.com/campushub/university_backend/internal/hash"
	"github.com/campushub/university_backend/internal/logging"
	"github.com/campushub/university_backend/internal/models"
	"github.com/campushub/university_backend/internal/repo"
	"github.com/campushub/university_backend/internal/session"
)

type AuthHandler struct {
	Sessions *session.Manager
	Users    *repo.UserRepo
	Producer *events.Producer
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
	Role        string `json:"role,omitempty"`
}

func (h *AuthHandler) Register(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.register")

	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
		Role     string `json:"role"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if req.Email == "" || req.Password == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "email and password are required")
	}

	role := models.RoleStudent
	if req.Role != "" {
		role = models.Role(req.Role)
		if !role.Valid() {
			return echo.NewHTTPError(http.StatusBadRequest, "unknown role")
		}
	}

	pwHash, err := hash.HashPassword(req.Password)
	if err != nil {
		l.Error("register failed", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "register failed")
	}

	user := models.User{
		Email:        req.Email,
		PasswordHash: pwHash,
		Role:         role,
		Active:       true,
	}
	if err := h.Users.CreateIfNotExists(ctx, &user); err != nil {
		if errors.Is(err, repo.ErrUserAlreadyExist) {
			l.Warn("register failed", "status", 409, "reason", "user already exists")
			return echo.NewHTTPError(http.StatusConflict, "user already exists")
		}
		l.Error("register failed", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "register failed")
	}

	h.publish(c, user.Email, map[string]any{
		"type":  "user_registered",
		"email": user.Email,
		"role":  string(user.Role),
	})

	return c.JSON(http.StatusCreated, echo.Map{
		"email": user.Email,
		"role":  string(user.Role),
	})
}

func (h *AuthHandler) Login(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.login")

	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	res, err := h.Sessions.Login(ctx, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, session.ErrInvalidCredentials) {
			l.Warn("login failed", "status", 401)
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid email or password")
		}
		l.Error("login failed", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "login failed")
	}

	c.SetCookie(h.Sessions.RefreshCookie(res.RefreshToken, res.RefreshExp))

	return c.JSON(http.StatusOK, tokenResponse{
		AccessToken: res.AccessToken,
		TokenType:   "Bearer",
		ExpiresIn:   int64(time.Until(res.AccessExp).Seconds()),
		Role:        string(res.Role),
	})
}

func (h *AuthHandler) Refresh(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.refresh")

	cookie, err := c.Cookie(session.CookieName)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "refresh token missing")
	}

	accessToken, exp, err := h.Sessions.Refresh(ctx, cookie.Value)
	if err != nil {
		if errors.Is(err, session.ErrRefresh) {
			l.Warn("refresh rejected", "status", 401, "reason", err.Error())
			return echo.NewHTTPError(http.StatusUnauthorized, "refresh token rejected")
		}
		l.Error("refresh failed", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "refresh failed")
	}

	return c.JSON(http.StatusOK, tokenResponse{
		AccessToken: accessToken,
		TokenType:   "Bearer",
		ExpiresIn:   int64(time.Until(exp).Seconds()),
	})
}

func (h *AuthHandler) Logout(c echo.Context) error {
	c.SetCookie(h.Sessions.ClearRefreshCookie())
	return c.JSON(http.StatusOK, echo.Map{"message": "logged out"})
}

func (h *AuthHandler) publish(c echo.Context, key string, event map[string]any) {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := h.Producer.Publish(ctx, key, event); err != nil {
		logging.FromContext(c.Request().Context()).Error("kafka publish error", "error", err)
	}
}
