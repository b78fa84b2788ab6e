package auth

import (
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strings"

	"facturi/internal/core"
)

// Verifier checks a username and password pair. Implementations decide
// where credentials live.
type Verifier interface {
	Verify(username, password string) error
}

// StaticVerifier holds a fixed in-memory credential table.
type StaticVerifier struct {
	credentials map[string]string
}

var _ Verifier = (*StaticVerifier)(nil)

func NewStaticVerifier(credentials map[string]string) *StaticVerifier {
	table := make(map[string]string, len(credentials))
	for user, pass := range credentials {
		table[user] = pass
	}
	return &StaticVerifier{credentials: table}
}

// NewDemoVerifier returns the built-in demo accounts.
func NewDemoVerifier() *StaticVerifier {
	return NewStaticVerifier(map[string]string{
		"admin": "admin123",
		"user":  "password",
		"demo":  "demo123",
	})
}

func (v *StaticVerifier) Verify(username, password string) error {
	expected, ok := v.credentials[username]
	if !ok {
		// Compare against itself to keep timing uniform for unknown users.
		subtle.ConstantTimeCompare([]byte(password), []byte(password))
		return fmt.Errorf("%w: invalid credentials", core.ErrUnauthenticated)
	}
	if subtle.ConstantTimeCompare([]byte(password), []byte(expected)) != 1 {
		return fmt.Errorf("%w: invalid credentials", core.ErrUnauthenticated)
	}
	return nil
}

// ParseBasicHeader extracts the username and password from an HTTP Basic
// Authorization header value.
func ParseBasicHeader(header string) (username, password string, err error) {
	const prefix = "Basic "
	if !strings.HasPrefix(header, prefix) {
		return "", "", fmt.Errorf("%w: missing basic authorization", core.ErrUnauthenticated)
	}
	decoded, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(header, prefix))
	if err != nil {
		return "", "", fmt.Errorf("%w: malformed authorization header", core.ErrUnauthenticated)
	}
	username, password, ok := strings.Cut(string(decoded), ":")
	if !ok {
		return "", "", fmt.Errorf("%w: malformed credentials", core.ErrUnauthenticated)
	}
	return username, password, nil
}
