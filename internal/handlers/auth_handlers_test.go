package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/campushub/university_backend/internal/db"
	"github.com/campushub/university_backend/internal/handlers"
	"github.com/campushub/university_backend/internal/hash"
	"github.com/campushub/university_backend/internal/keys"
	"github.com/campushub/university_backend/internal/models"
	"github.com/campushub/university_backend/internal/repo"
	"github.com/campushub/university_backend/internal/search"
	"github.com/campushub/university_backend/internal/session"
	"github.com/campushub/university_backend/internal/token"
	httpserver "github.com/campushub/university_backend/internal/transport/http"
)

type testEnv struct {
	e     *echo.Echo
	db    *gorm.DB
	codec *token.Codec
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	gdb, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.Migrate(gdb))

	codec := &token.Codec{
		Keys:   keys.NewManager(strings.Repeat("handler-access-secret-!!", 4), strings.Repeat("handler-refresh-secret-!", 4), nil),
		Issuer: "test",
	}
	users := &repo.UserRepo{DB: gdb}
	sessions := &session.Manager{
		Users:      users,
		Codec:      codec,
		AccessTTL:  15 * time.Minute,
		RefreshTTL: 7 * 24 * time.Hour,
	}

	e := echo.New()
	httpserver.Register(e, &httpserver.Deps{
		Codec:               codec,
		AuthHandler:         &handlers.AuthHandler{Sessions: sessions, Users: users},
		StudentHandler:      &handlers.StudentHandler{DB: gdb},
		ProfessorHandler:    &handlers.ProfessorHandler{DB: gdb},
		CourseHandler:       &handlers.CourseHandler{DB: gdb},
		EnrollmentHandler:   &handlers.EnrollmentHandler{DB: gdb},
		GradeHandler:        &handlers.GradeHandler{DB: gdb},
		AttendanceHandler:   &handlers.AttendanceHandler{DB: gdb},
		AnnouncementHandler: &handlers.AnnouncementHandler{DB: gdb, Users: users},
		NotificationHandler: &handlers.NotificationHandler{DB: gdb, Users: users},
		StudentSearch:       &search.Handler{Index: "students"},
		CourseSearch:        &search.Handler{Index: "courses"},
	})
	return &testEnv{e: e, db: gdb, codec: codec}
}

func (env *testEnv) createUser(t *testing.T, email, password string, role models.Role) {
	t.Helper()
	pwHash, err := hash.HashPassword(password)
	require.NoError(t, err)
	require.NoError(t, env.db.Create(&models.User{
		Email:        email,
		PasswordHash: pwHash,
		Role:         role,
		Active:       true,
	}).Error)
}

func (env *testEnv) postJSON(path string, body any, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	data, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(data))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	env.e.ServeHTTP(rec, req)
	return rec
}

func refreshCookieFrom(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	res := rec.Result()
	for _, c := range res.Cookies() {
		if c.Name == session.CookieName {
			return c
		}
	}
	t.Fatalf("no %s cookie in response", session.CookieName)
	return nil
}

func TestRegister(t *testing.T) {
	env := newTestEnv(t)

	rec := env.postJSON("/api/v1/auth/register", map[string]string{
		"email":    "sam@example.com",
		"password": "password",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	require.Contains(t, rec.Body.String(), `"role":"STUDENT"`)

	// Registering the same email again conflicts.
	rec = env.postJSON("/api/v1/auth/register", map[string]string{
		"email":    "sam@example.com",
		"password": "password",
	})
	require.Equal(t, http.StatusConflict, rec.Code)
}

func TestLoginSetsRefreshCookieAndReturnsAccessToken(t *testing.T) {
	env := newTestEnv(t)
	env.createUser(t, "jane@example.com", "password", models.RoleProfessor)

	rec := env.postJSON("/api/v1/auth/login", map[string]string{
		"email":    "jane@example.com",
		"password": "password",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		AccessToken string `json:"access_token"`
		TokenType   string `json:"token_type"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.NotEmpty(t, body.AccessToken)
	require.Equal(t, "Bearer", body.TokenType)
	// The refresh token lives in the cookie only, never in the body.
	require.NotContains(t, rec.Body.String(), "refresh")

	cookie := refreshCookieFrom(t, rec)
	require.True(t, cookie.HttpOnly)
	require.Equal(t, http.SameSiteStrictMode, cookie.SameSite)

	claims, err := env.codec.Decode(body.AccessToken, keys.PurposeAccess)
	require.NoError(t, err)
	require.Equal(t, "jane@example.com", claims.Subject)
	require.Equal(t, []string{"PROFESSOR"}, claims.Roles)
}

func TestLoginInvalidCredentials(t *testing.T) {
	env := newTestEnv(t)
	env.createUser(t, "jane@example.com", "password", models.RoleProfessor)

	rec := env.postJSON("/api/v1/auth/login", map[string]string{
		"email":    "jane@example.com",
		"password": "wrong",
	})
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRefreshEndpoint(t *testing.T) {
	env := newTestEnv(t)
	env.createUser(t, "jane@example.com", "password", models.RoleProfessor)

	login := env.postJSON("/api/v1/auth/login", map[string]string{
		"email":    "jane@example.com",
		"password": "password",
	})
	require.Equal(t, http.StatusOK, login.Code)
	cookie := refreshCookieFrom(t, login)

	rec := env.postJSON("/api/v1/auth/refresh", nil, cookie)
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		AccessToken string `json:"access_token"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	claims, err := env.codec.Decode(body.AccessToken, keys.PurposeAccess)
	require.NoError(t, err)
	require.Equal(t, "jane@example.com", claims.Subject)
}

func TestRefreshRejectsAccessTokenInCookie(t *testing.T) {
	env := newTestEnv(t)
	env.createUser(t, "jane@example.com", "password", models.RoleProfessor)

	login := env.postJSON("/api/v1/auth/login", map[string]string{
		"email":    "jane@example.com",
		"password": "password",
	})
	require.Equal(t, http.StatusOK, login.Code)

	var body struct {
		AccessToken string `json:"access_token"`
	}
	require.NoError(t, json.Unmarshal(login.Body.Bytes(), &body))

	// Smuggle the access token into the refresh cookie slot.
	rec := env.postJSON("/api/v1/auth/refresh", nil, &http.Cookie{
		Name:  session.CookieName,
		Value: body.AccessToken,
	})
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRefreshWithoutCookie(t *testing.T) {
	env := newTestEnv(t)

	rec := env.postJSON("/api/v1/auth/refresh", nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLogoutClearsCookie(t *testing.T) {
	env := newTestEnv(t)

	rec := env.postJSON("/api/v1/auth/logout", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	cookie := refreshCookieFrom(t, rec)
	require.Empty(t, cookie.Value)
	require.Less(t, cookie.MaxAge, 0)
}
