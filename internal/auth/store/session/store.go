// Package session persists the short-lived credential record behind a user
// session. This is the only locally-held state that outlives a request; it is
// deliberately small and expiring.
package session

import (
	"context"
	"time"
)

// Record binds a session identifier to its upstream credential.
type Record struct {
	SessionID     string    `json:"sessionId"`
	Credential    string    `json:"credential"`
	Requester     string    `json:"requester,omitempty"`
	EstablishedAt time.Time `json:"establishedAt"`
}

// Error Contract:
// All store methods follow this pattern:
// - Return sentinel.ErrNotFound when the session does not exist or has expired
// - Return nil for successful operations
// - Return wrapped errors with context for infrastructure failures
type Store interface {
	Save(ctx context.Context, rec Record, ttl time.Duration) error
	Find(ctx context.Context, sessionID string) (Record, error)
	Delete(ctx context.Context, sessionID string) error
}
