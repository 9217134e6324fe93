// Package console is the operator-facing reconciler for live fraud alerts and
// the audit trail. Alerts are created by the remote fraud engine; this service
// only reads them and terminates them by acknowledgement.
package console

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	"veridoc/internal/domain"
	"veridoc/internal/platform/metrics"
	dErrors "veridoc/pkg/domain-errors"
	"veridoc/pkg/platform/sentinel"
)

// UpstreamAPI is the slice of the remote service the console consumes.
type UpstreamAPI interface {
	Alerts(ctx context.Context) ([]domain.Alert, error)
	AuditLog(ctx context.Context) ([]domain.AuditEntry, error)
	DismissAlert(ctx context.Context, alertID string) error
	AppendAuditEntry(ctx context.Context, entry domain.AuditEntry) error
}

// Snapshot is the console's downstream surface.
type Snapshot struct {
	Alerts        []domain.Alert      `json:"alerts"`
	AuditTrail    []domain.AuditEntry `json:"auditTrail"`
	StatusMessage string              `json:"statusMessage,omitempty"`
}

// Service reconciles the live alert set and the audit trail with server
// state. Stale-but-present beats empty: fetched data is only replaced by
// fresher data, never cleared on failure.
type Service struct {
	api     UpstreamAPI
	logger  *slog.Logger
	metrics *metrics.Metrics

	mu            sync.RWMutex
	alerts        []domain.Alert
	auditTrail    []domain.AuditEntry
	statusMessage string
}

// New constructs the console reconciler.
func New(api UpstreamAPI, logger *slog.Logger, m *metrics.Metrics) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{api: api, logger: logger, metrics: m}
}

// Refresh fetches alerts and audit entries concurrently. Partial failure
// surfaces an error but retains previously displayed data for the side that
// failed.
func (s *Service) Refresh(ctx context.Context) error {
	var (
		alerts    []domain.Alert
		entries   []domain.AuditEntry
		alertsErr error
		auditErr  error
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		alerts, alertsErr = s.api.Alerts(gctx)
		return nil
	})
	g.Go(func() error {
		entries, auditErr = s.api.AuditLog(gctx)
		return nil
	})
	_ = g.Wait()

	s.mu.Lock()
	if alertsErr == nil {
		s.alerts = alerts
	}
	if auditErr == nil {
		s.auditTrail = entries
	}
	switch {
	case alertsErr != nil && auditErr != nil:
		s.statusMessage = "Failed to load compliance data"
	case alertsErr != nil || auditErr != nil:
		s.statusMessage = "Compliance data is partially stale"
	default:
		s.statusMessage = ""
	}
	s.mu.Unlock()

	if alertsErr != nil || auditErr != nil {
		s.metrics.ObserveConsoleRefresh(refreshResult(alertsErr, auditErr))
		err := errors.Join(alertsErr, auditErr)
		s.logger.Warn("console refresh incomplete", "error", err)
		return dErrors.Wrap(dErrors.CodeTransport, "compliance data fetch failed", err)
	}
	s.metrics.ObserveConsoleRefresh("ok")
	return nil
}

func refreshResult(alertsErr, auditErr error) string {
	if alertsErr != nil && auditErr != nil {
		return "failed"
	}
	return "partial"
}

// Acknowledge terminates one live alert: dismiss on the server, append an
// audit entry describing the dismissal, drop the alert from the live set,
// then re-fetch the audit trail so the display reflects server state rather
// than the local append. A failure before the drop leaves the alert in the
// live set; a dismiss failure appends no audit entry at all.
func (s *Service) Acknowledge(ctx context.Context, alertID string) error {
	alert, ok := s.findAlert(alertID)
	if !ok {
		return dErrors.New(dErrors.CodeNotFound, "alert is not in the live set")
	}

	if err := s.api.DismissAlert(ctx, alert.ID); err != nil {
		s.setStatus("Failed to dismiss alert")
		return s.classify("dismiss alert", err)
	}

	entry := domain.AuditEntry{
		UserID:    "admin",
		UserEmail: "admin@system",
		DocID:     alert.ID,
		Decision:  "Review",
		Details:   fmt.Sprintf("Alert Dismissed: %s", alert.Message),
	}
	if err := s.api.AppendAuditEntry(ctx, entry); err != nil {
		s.setStatus("Failed to record alert dismissal")
		return s.classify("append audit entry", err)
	}

	s.removeAlert(alert.ID)
	s.metrics.IncrementAlertsAcknowledged()

	// Read-after-write: the server copy of the trail is authoritative.
	if entries, err := s.api.AuditLog(ctx); err == nil {
		s.mu.Lock()
		s.auditTrail = entries
		s.statusMessage = ""
		s.mu.Unlock()
	} else {
		s.setStatus("Audit trail is stale")
		s.logger.Warn("audit trail refetch after acknowledge failed", "error", err)
	}
	return nil
}

// Snapshot returns copies of the live alert set and audit trail.
func (s *Service) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	alerts := make([]domain.Alert, len(s.alerts))
	copy(alerts, s.alerts)
	entries := make([]domain.AuditEntry, len(s.auditTrail))
	copy(entries, s.auditTrail)
	return Snapshot{Alerts: alerts, AuditTrail: entries, StatusMessage: s.statusMessage}
}

func (s *Service) findAlert(alertID string) (domain.Alert, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, a := range s.alerts {
		if a.ID == alertID {
			return a, true
		}
	}
	return domain.Alert{}, false
}

func (s *Service) removeAlert(alertID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.alerts[:0]
	for _, a := range s.alerts {
		if a.ID != alertID {
			kept = append(kept, a)
		}
	}
	s.alerts = kept
}

func (s *Service) setStatus(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.statusMessage = message
}

func (s *Service) classify(op string, err error) error {
	if errors.Is(err, sentinel.ErrUnauthorized) {
		return dErrors.Wrap(dErrors.CodeUnauthenticated, op+" was rejected", err)
	}
	return dErrors.Wrap(dErrors.CodeTransport, op+" failed", err)
}
