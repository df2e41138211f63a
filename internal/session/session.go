package session

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/campushub/university_backend/internal/hash"
	"github.com/campushub/university_backend/internal/keys"
	"github.com/campushub/university_backend/internal/logging"
	"github.com/campushub/university_backend/internal/models"
	"github.com/campushub/university_backend/internal/repo"
	"github.com/campushub/university_backend/internal/token"
)

// CookieName is the refresh-token cookie. The refresh token never appears in
// a response body; this cookie is its only transport.
const CookieName = "refreshToken"

var (
	// ErrInvalidCredentials is deliberately generic: the same error for an
	// unknown email, a wrong password and a deactivated account, so login
	// responses cannot be used to enumerate users.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrRefresh means the presented refresh token was rejected and the
	// client must re-authenticate via login.
	ErrRefresh = errors.New("refresh rejected")
)

type LoginResult struct {
	AccessToken  string
	RefreshToken string
	AccessExp    time.Time
	RefreshExp   time.Time
	Role         models.Role
}

// Manager pairs short-lived access tokens with long-lived refresh tokens.
type Manager struct {
	Users *repo.UserRepo
	Codec *token.Codec

	AccessTTL  time.Duration
	RefreshTTL time.Duration

	CookieDomain string
	CookieSecure bool
}

func (m *Manager) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	l := logging.FromContext(ctx).With("svc", "session.login")

	user, err := m.Users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repo.ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !user.Active || !hash.CheckPassword(user.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}

	authorities := []string{user.Role.Authority()}

	now := time.Now()
	accessToken, err := m.Codec.Issue(user.Email, authorities, keys.PurposeAccess, m.AccessTTL)
	if err != nil {
		return nil, err
	}
	refreshToken, err := m.Codec.Issue(user.Email, authorities, keys.PurposeRefresh, m.RefreshTTL)
	if err != nil {
		return nil, err
	}

	l.Info("login successful", "subject", user.Email, "role", string(user.Role))
	return &LoginResult{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		AccessExp:    now.Add(m.AccessTTL),
		RefreshExp:   now.Add(m.RefreshTTL),
		Role:         user.Role,
	}, nil
}

// Refresh exchanges a valid refresh token for a new access token. The
// identity is re-read from the user store so role and status changes made
// since login take effect. The refresh token itself is not rotated; it stays
// valid until its own expiry.
func (m *Manager) Refresh(ctx context.Context, refreshToken string) (string, time.Time, error) {
	claims, err := m.Codec.Decode(refreshToken, keys.PurposeRefresh)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("%w: %v", ErrRefresh, err)
	}

	user, err := m.Users.FindByEmail(ctx, claims.Subject)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("%w: subject no longer resolvable", ErrRefresh)
	}
	if !user.Active {
		return "", time.Time{}, fmt.Errorf("%w: account deactivated", ErrRefresh)
	}

	authorities := []string{user.Role.Authority()}
	accessToken, err := m.Codec.Issue(user.Email, authorities, keys.PurposeAccess, m.AccessTTL)
	if err != nil {
		return "", time.Time{}, err
	}
	return accessToken, time.Now().Add(m.AccessTTL), nil
}

// RefreshCookie builds the Set-Cookie attributes for a freshly issued
// refresh token: HttpOnly, SameSite=Strict, scoped to /.
func (m *Manager) RefreshCookie(value string, exp time.Time) *http.Cookie {
	return &http.Cookie{
		Name:     CookieName,
		Value:    value,
		Domain:   m.CookieDomain,
		Path:     "/",
		Expires:  exp,
		MaxAge:   int(time.Until(exp).Seconds()),
		HttpOnly: true,
		Secure:   m.CookieSecure,
		SameSite: http.SameSiteStrictMode,
	}
}

// ClearRefreshCookie overwrites the cookie with an empty value and an
// immediate expiry.
func (m *Manager) ClearRefreshCookie() *http.Cookie {
	return &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Domain:   m.CookieDomain,
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   m.CookieSecure,
		SameSite: http.SameSiteStrictMode,
	}
}
