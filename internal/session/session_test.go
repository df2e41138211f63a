package session

import (
	"context"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/campushub/university_backend/internal/hash"
	"github.com/campushub/university_backend/internal/keys"
	"github.com/campushub/university_backend/internal/models"
	"github.com/campushub/university_backend/internal/repo"
	"github.com/campushub/university_backend/internal/token"
)

func newTestManager(t *testing.T) (*Manager, *gorm.DB) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}))

	codec := &token.Codec{
		Keys:   keys.NewManager(strings.Repeat("session-access-secret-!!", 4), strings.Repeat("session-refresh-secret-!", 4), nil),
		Issuer: "test",
	}

	m := &Manager{
		Users:        &repo.UserRepo{DB: db},
		Codec:        codec,
		AccessTTL:    15 * time.Minute,
		RefreshTTL:   7 * 24 * time.Hour,
		CookieSecure: true,
	}
	return m, db
}

func createUser(t *testing.T, db *gorm.DB, email, password string, role models.Role) {
	t.Helper()
	pwHash, err := hash.HashPassword(password)
	require.NoError(t, err)
	require.NoError(t, db.Create(&models.User{
		Email:        email,
		PasswordHash: pwHash,
		Role:         role,
		Active:       true,
	}).Error)
}

func TestLoginIssuesBothTokens(t *testing.T) {
	m, db := newTestManager(t)
	createUser(t, db, "jane@example.com", "password", models.RoleProfessor)

	res, err := m.Login(context.Background(), "jane@example.com", "password")
	require.NoError(t, err)
	require.NotEmpty(t, res.AccessToken)
	require.NotEmpty(t, res.RefreshToken)
	require.Equal(t, models.RoleProfessor, res.Role)

	claims, err := m.Codec.Decode(res.AccessToken, keys.PurposeAccess)
	require.NoError(t, err)
	require.Equal(t, "jane@example.com", claims.Subject)
	require.Equal(t, []string{"PROFESSOR"}, claims.Roles)
	require.Equal(t, []string{"ROLE_PROFESSOR"}, claims.Authorities)

	refreshClaims, err := m.Codec.Decode(res.RefreshToken, keys.PurposeRefresh)
	require.NoError(t, err)
	require.Equal(t, "refresh", refreshClaims.TokenType)
}

func TestLoginFailuresAreGeneric(t *testing.T) {
	m, db := newTestManager(t)
	createUser(t, db, "jane@example.com", "password", models.RoleProfessor)

	_, err := m.Login(context.Background(), "jane@example.com", "wrong")
	require.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = m.Login(context.Background(), "nobody@example.com", "password")
	require.ErrorIs(t, err, ErrInvalidCredentials)

	require.NoError(t, db.Model(&models.User{}).
		Where("email = ?", "jane@example.com").
		Update("active", false).Error)
	_, err = m.Login(context.Background(), "jane@example.com", "password")
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestRefreshIssuesNewAccessToken(t *testing.T) {
	m, db := newTestManager(t)
	createUser(t, db, "jane@example.com", "password", models.RoleProfessor)

	res, err := m.Login(context.Background(), "jane@example.com", "password")
	require.NoError(t, err)

	accessToken, exp, err := m.Refresh(context.Background(), res.RefreshToken)
	require.NoError(t, err)
	require.True(t, exp.After(time.Now()))

	claims, err := m.Codec.Decode(accessToken, keys.PurposeAccess)
	require.NoError(t, err)
	require.Equal(t, "jane@example.com", claims.Subject)
}

func TestRefreshRejectsAccessToken(t *testing.T) {
	m, db := newTestManager(t)
	createUser(t, db, "jane@example.com", "password", models.RoleProfessor)

	res, err := m.Login(context.Background(), "jane@example.com", "password")
	require.NoError(t, err)

	// An access token in the refresh slot is a type (and key) mismatch.
	_, _, err = m.Refresh(context.Background(), res.AccessToken)
	require.ErrorIs(t, err, ErrRefresh)
}

func TestRefreshPicksUpRoleChange(t *testing.T) {
	m, db := newTestManager(t)
	createUser(t, db, "jane@example.com", "password", models.RoleStudent)

	res, err := m.Login(context.Background(), "jane@example.com", "password")
	require.NoError(t, err)

	require.NoError(t, db.Model(&models.User{}).
		Where("email = ?", "jane@example.com").
		Update("role", models.RoleProfessor).Error)

	accessToken, _, err := m.Refresh(context.Background(), res.RefreshToken)
	require.NoError(t, err)

	claims, err := m.Codec.Decode(accessToken, keys.PurposeAccess)
	require.NoError(t, err)
	require.Equal(t, []string{"PROFESSOR"}, claims.Roles)
}

func TestRefreshRejectsDeactivatedUser(t *testing.T) {
	m, db := newTestManager(t)
	createUser(t, db, "jane@example.com", "password", models.RoleProfessor)

	res, err := m.Login(context.Background(), "jane@example.com", "password")
	require.NoError(t, err)

	require.NoError(t, db.Model(&models.User{}).
		Where("email = ?", "jane@example.com").
		Update("active", false).Error)

	_, _, err = m.Refresh(context.Background(), res.RefreshToken)
	require.ErrorIs(t, err, ErrRefresh)
}

func TestRefreshCookieAttributes(t *testing.T) {
	m, _ := newTestManager(t)
	m.CookieDomain = "example.com"

	exp := time.Now().Add(7 * 24 * time.Hour)
	cookie := m.RefreshCookie("tokenvalue", exp)
	require.Equal(t, CookieName, cookie.Name)
	require.Equal(t, "tokenvalue", cookie.Value)
	require.Equal(t, "example.com", cookie.Domain)
	require.Equal(t, "/", cookie.Path)
	require.True(t, cookie.HttpOnly)
	require.True(t, cookie.Secure)
	require.Equal(t, http.SameSiteStrictMode, cookie.SameSite)
	require.Greater(t, cookie.MaxAge, 0)

	cleared := m.ClearRefreshCookie()
	require.Equal(t, CookieName, cleared.Name)
	require.Empty(t, cleared.Value)
	require.Less(t, cleared.MaxAge, 0)
}
