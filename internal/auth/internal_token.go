package auth

import (
	"crypto/subtle"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// InternalToken checks the operator token sent in X-Internal-Token.
// A bcrypt hash takes precedence over a plain token when both are configured.
type InternalToken struct {
	plain string
	hash  []byte
}

func NewInternalToken(plain, hash string) *InternalToken {
	t := &InternalToken{plain: strings.TrimSpace(plain)}
	if h := strings.TrimSpace(hash); h != "" {
		t.hash = []byte(h)
	}
	return t
}

func (t *InternalToken) Verify(presented string) bool {
	if presented == "" {
		return false
	}
	if len(t.hash) > 0 {
		return bcrypt.CompareHashAndPassword(t.hash, []byte(presented)) == nil
	}
	if t.plain == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(t.plain), []byte(presented)) == 1
}

func HashInternalToken(token string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(token), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(h), nil
}
