package keys

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"sync"
)

// Purpose separates the access-token key from the refresh-token key so that a
// leak of one does not compromise the other.
type Purpose string

const (
	PurposeAccess  Purpose = "access"
	PurposeRefresh Purpose = "refresh"
)

// MinSecretLen is the minimum key material length for HMAC-SHA512. Anything
// shorter weakens the signature and is replaced by a generated key.
const MinSecretLen = 64

// ErrKeyInit marks cryptographic initialization failures. Callers treat it as
// fatal at startup: the service cannot issue or verify tokens without a key.
var ErrKeyInit = errors.New("signing key initialization failed")

// Well-known throwaway values that show up in sample configs. They are never
// used as key material even when long enough.
var placeholderSecrets = map[string]struct{}{
	"secret":           {},
	"changeme":         {},
	"change-me":        {},
	"default":          {},
	"jwt-secret":       {},
	"your-secret-here": {},
}

type SigningKey struct {
	Material []byte
	Purpose  Purpose
}

// Manager resolves the configured secrets into signing keys once per process.
// The resolved keys are immutable; concurrent first calls observe the same
// instance.
type Manager struct {
	accessSecret  string
	refreshSecret string
	log           *slog.Logger

	accessOnce  sync.Once
	access      *SigningKey
	accessErr   error
	refreshOnce sync.Once
	refresh     *SigningKey
	refreshErr  error
}

func NewManager(accessSecret, refreshSecret string, log *slog.Logger) *Manager {
	if log == nil {
		log = slog.Default()
	}
	return &Manager{
		accessSecret:  accessSecret,
		refreshSecret: refreshSecret,
		log:           log,
	}
}

// Key returns the cached signing key for the purpose, resolving it on first
// use.
func (m *Manager) Key(purpose Purpose) (*SigningKey, error) {
	switch purpose {
	case PurposeAccess:
		m.accessOnce.Do(func() {
			m.access, m.accessErr = m.resolve(m.accessSecret, purpose)
		})
		return m.access, m.accessErr
	case PurposeRefresh:
		m.refreshOnce.Do(func() {
			m.refresh, m.refreshErr = m.resolve(m.refreshSecret, purpose)
		})
		return m.refresh, m.refreshErr
	default:
		return nil, fmt.Errorf("%w: unknown purpose %q", ErrKeyInit, purpose)
	}
}

func (m *Manager) resolve(secret string, purpose Purpose) (*SigningKey, error) {
	if decoded, err := base64.StdEncoding.DecodeString(secret); err == nil && len(decoded) >= MinSecretLen {
		return &SigningKey{Material: decoded, Purpose: purpose}, nil
	}

	if _, known := placeholderSecrets[secret]; known || len(secret) < MinSecretLen {
		// A generated key invalidates every token signed by a previous
		// process instance; operators must configure a base64 secret of
		// at least 64 bytes to keep sessions across restarts.
		material := make([]byte, MinSecretLen)
		if _, err := rand.Read(material); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrKeyInit, err)
		}
		m.log.Warn("configured secret is too weak, generated a random signing key",
			"purpose", string(purpose),
			"secret_len", len(secret),
			"generated_len", len(material),
		)
		return &SigningKey{Material: material, Purpose: purpose}, nil
	}

	return &SigningKey{Material: []byte(secret), Purpose: purpose}, nil
}
