// Package auth holds the explicit credential context for upstream calls.
// The credential is an opaque bearer token issued by the remote service; it is
// inspected locally only to distinguish "not authenticated" from server-side
// failures before a call is issued.
package auth

import (
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	dErrors "veridoc/pkg/domain-errors"
)

// Context carries one session's upstream credential with an explicit
// lifecycle: established by Establish, ended by Clear. Services receive a
// Context at construction instead of reading ambient global state.
type Context struct {
	mu          sync.RWMutex
	credential  string
	requester   string
	expiresAt   time.Time
	established bool

	now func() time.Time
}

// NewContext returns an empty, not-yet-established context.
func NewContext() *Context {
	return &Context{now: time.Now}
}

// Establish installs a credential. Blank credentials and credentials that are
// already expired are rejected; the caller is told to re-authenticate rather
// than letting a doomed upstream call surface a confusing transport error.
func (c *Context) Establish(credential string) error {
	credential = strings.TrimSpace(credential)
	if credential == "" {
		return dErrors.New(dErrors.CodeUnauthenticated, "no credential provided")
	}

	requester, expiresAt := inspect(credential)
	if !expiresAt.IsZero() && expiresAt.Before(c.now()) {
		return dErrors.New(dErrors.CodeUnauthenticated, "credential has expired")
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.credential = credential
	c.requester = requester
	c.expiresAt = expiresAt
	c.established = true
	return nil
}

// Clear ends the credential lifecycle. Subsequent Credential calls fail as
// unauthenticated until Establish is called again.
func (c *Context) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.credential = ""
	c.requester = ""
	c.expiresAt = time.Time{}
	c.established = false
}

// Credential returns the bearer token, or an unauthenticated error when no
// live credential is established. Expiry is re-checked on every read so a
// long-lived session cannot keep issuing calls on a dead token.
func (c *Context) Credential() (string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if !c.established {
		return "", dErrors.New(dErrors.CodeUnauthenticated, "no credential established")
	}
	if !c.expiresAt.IsZero() && c.expiresAt.Before(c.now()) {
		return "", dErrors.New(dErrors.CodeUnauthenticated, "credential has expired")
	}
	return c.credential, nil
}

// Requester is the submitting identity extracted from the credential, for the
// upstream multipart requester field. Empty when the token is fully opaque.
func (c *Context) Requester() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.requester
}

// Established reports whether a credential lifecycle is currently open. It
// does not re-check expiry; use Credential for that.
func (c *Context) Established() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.established
}

// inspect reads identity and expiry claims without verifying the signature.
// Verification is the issuer's job; locally the claims only improve error
// reporting. Tokens that are not JWTs are treated as opaque.
func inspect(credential string) (requester string, expiresAt time.Time) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(credential, claims); err != nil {
		return "", time.Time{}
	}
	if email, ok := claims["email"].(string); ok {
		requester = email
	} else if sub, ok := claims["sub"].(string); ok {
		requester = sub
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		expiresAt = exp.Time
	}
	return requester, expiresAt
}
