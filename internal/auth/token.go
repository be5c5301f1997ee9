package auth

import (
	"crypto/subtle"
	"fmt"
	"net/http"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// HeaderName is the request header carrying the shared token.
const HeaderName = "X-Stockhook-Token"

const minTokenLength = 8

// ValidateToken checks minimal token requirements.
func ValidateToken(token string) error {
	if len(token) < minTokenLength {
		return fmt.Errorf("token must be at least %d characters", minTokenLength)
	}
	return nil
}

// HashToken hashes one plaintext token for storage in configuration.
func HashToken(token string) (string, error) {
	if err := ValidateToken(token); err != nil {
		return "", err
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(token), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// Verifier checks presented tokens against a plaintext token, a bcrypt
// hash, or both. The zero value accepts nothing.
type Verifier struct {
	plain string
	hash  string
}

// NewVerifier returns a Verifier for the configured token material.
func NewVerifier(plain, hash string) Verifier {
	return Verifier{plain: strings.TrimSpace(plain), hash: strings.TrimSpace(hash)}
}

// Configured reports whether any token is set.
func (v Verifier) Configured() bool {
	return v.plain != "" || v.hash != ""
}

// Verify reports whether candidate matches the configured token.
func (v Verifier) Verify(candidate string) bool {
	if candidate == "" {
		return false
	}
	if v.hash != "" && bcrypt.CompareHashAndPassword([]byte(v.hash), []byte(candidate)) == nil {
		return true
	}
	if v.plain != "" && subtle.ConstantTimeCompare([]byte(v.plain), []byte(candidate)) == 1 {
		return true
	}
	return false
}

// TokenFromRequest returns the token presented by r, looking at the
// X-Stockhook-Token header, a Bearer authorization and the token query
// parameter in that order.
func TokenFromRequest(r *http.Request) string {
	if token := strings.TrimSpace(r.Header.Get(HeaderName)); token != "" {
		return token
	}
	if token := bearerToken(r.Header.Get("Authorization")); token != "" {
		return token
	}
	return strings.TrimSpace(r.URL.Query().Get("token"))
}

func bearerToken(header string) string {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}
