// Package session binds an established credential to one verification
// orchestrator for the lifetime of a user session.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"veridoc/internal/auth"
	sessionstore "veridoc/internal/auth/store/session"
	"veridoc/internal/verify"
	dErrors "veridoc/pkg/domain-errors"
	"veridoc/pkg/platform/sentinel"
)

// OrchestratorFactory builds a fresh orchestrator around an established
// credential context. Injected so the manager stays free of wiring detail.
type OrchestratorFactory func(authCtx *auth.Context) *verify.Service

// Manager owns the session lifecycle: establish a credential, hand out the
// session's orchestrator, clear on logout. Credentials live in the session
// store (with TTL); orchestrator state is process-local and is rebuilt empty
// if the process restarts mid-session.
type Manager struct {
	store   sessionstore.Store
	ttl     time.Duration
	factory OrchestratorFactory
	logger  *slog.Logger

	mu     sync.Mutex
	active map[string]*activeSession
}

type activeSession struct {
	authCtx      *auth.Context
	orchestrator *verify.Service
}

// NewManager constructs a session manager.
func NewManager(store sessionstore.Store, ttl time.Duration, factory OrchestratorFactory, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		store:   store,
		ttl:     ttl,
		factory: factory,
		logger:  logger,
		active:  make(map[string]*activeSession),
	}
}

// Establish opens a session for the given upstream credential and returns the
// session ID. The credential is validated locally (blank/expired rejected)
// before anything is stored.
func (m *Manager) Establish(ctx context.Context, credential string) (string, error) {
	authCtx := auth.NewContext()
	if err := authCtx.Establish(credential); err != nil {
		return "", err
	}

	sessionID := uuid.NewString()
	rec := sessionstore.Record{
		SessionID:     sessionID,
		Credential:    credential,
		Requester:     authCtx.Requester(),
		EstablishedAt: time.Now(),
	}
	if err := m.store.Save(ctx, rec, m.ttl); err != nil {
		return "", fmt.Errorf("persist session: %w", err)
	}

	m.mu.Lock()
	m.active[sessionID] = &activeSession{
		authCtx:      authCtx,
		orchestrator: m.factory(authCtx),
	}
	m.mu.Unlock()

	m.logger.Info("session established", "session_id", sessionID)
	return sessionID, nil
}

// Orchestrator returns the orchestrator for a live session. After a process
// restart the session record may still exist in the store without an active
// orchestrator; in that case the session is rebuilt with an empty fresh list.
func (m *Manager) Orchestrator(ctx context.Context, sessionID string) (*verify.Service, error) {
	m.mu.Lock()
	if live, ok := m.active[sessionID]; ok {
		m.mu.Unlock()
		return live.orchestrator, nil
	}
	m.mu.Unlock()

	rec, err := m.store.Find(ctx, sessionID)
	if errors.Is(err, sentinel.ErrNotFound) {
		return nil, dErrors.New(dErrors.CodeUnauthenticated, "unknown or expired session")
	}
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}

	authCtx := auth.NewContext()
	if err := authCtx.Establish(rec.Credential); err != nil {
		// Credential aged out while the record lived on.
		_ = m.store.Delete(ctx, sessionID)
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if live, ok := m.active[sessionID]; ok {
		return live.orchestrator, nil
	}
	live := &activeSession{authCtx: authCtx, orchestrator: m.factory(authCtx)}
	m.active[sessionID] = live
	m.logger.Info("session rebuilt from store", "session_id", sessionID)
	return live.orchestrator, nil
}

// Clear ends a session: the credential lifecycle closes, in-memory
// orchestrator state is dropped, and the store record is deleted.
func (m *Manager) Clear(ctx context.Context, sessionID string) error {
	m.mu.Lock()
	live, ok := m.active[sessionID]
	delete(m.active, sessionID)
	m.mu.Unlock()

	if ok {
		live.orchestrator.Close()
		live.authCtx.Clear()
	}
	if err := m.store.Delete(ctx, sessionID); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	m.logger.Info("session cleared", "session_id", sessionID)
	return nil
}
