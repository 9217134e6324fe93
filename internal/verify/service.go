// Package verify owns the document verification lifecycle: upload, remote
// analysis, result derivation, and the per-session submission list. One
// Service instance belongs to one user session; the remote service remains
// the sole owner of persisted state.
package verify

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"veridoc/internal/auth"
	"veridoc/internal/domain"
	"veridoc/internal/mask"
	"veridoc/internal/normalize"
	"veridoc/internal/platform/metrics"
	"veridoc/internal/risk"
	"veridoc/internal/upstream"
	dErrors "veridoc/pkg/domain-errors"
	"veridoc/pkg/platform/sentinel"
)

// UpstreamAPI is the slice of the remote service this orchestrator consumes.
type UpstreamAPI interface {
	Verify(ctx context.Context, credential, requester, filename string, file io.Reader) (*upstream.VerifyResult, error)
	ListDocuments(ctx context.Context, credential string) ([]map[string]any, error)
}

// Snapshot is the downstream surface exposed to the presentation layer.
type Snapshot struct {
	State         domain.LifecycleState   `json:"state"`
	StatusMessage string                  `json:"statusMessage,omitempty"`
	Latest        *domain.Submission      `json:"latest,omitempty"`
	Documents     []domain.DocumentRecord `json:"documents"`
}

// Service drives one session's verification lifecycle. All state is guarded
// by mu; suspension happens only at the upstream request boundary, outside
// the lock.
type Service struct {
	api     UpstreamAPI
	authCtx *auth.Context
	logger  *slog.Logger
	metrics *metrics.Metrics

	mu            sync.RWMutex
	state         domain.LifecycleState
	statusMessage string
	latest        *domain.Submission
	fresh         []domain.Submission
	serverDocs    []domain.DocumentRecord
	inFlight      bool
	closed        bool

	now func() time.Time
}

// New constructs an orchestrator bound to one session's credential context.
func New(api UpstreamAPI, authCtx *auth.Context, logger *slog.Logger, m *metrics.Metrics) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		api:     api,
		authCtx: authCtx,
		logger:  logger,
		metrics: m,
		state:   domain.StateIdle,
		now:     time.Now,
	}
}

// Submit runs one full upload-to-verdict cycle and returns the derived
// Submission. Exactly one upload request is issued; on any failure the
// in-memory list is left unchanged and no partial Submission is published.
func (s *Service) Submit(ctx context.Context, filename string, file io.Reader, hint domain.DocumentType) (domain.Submission, error) {
	if file == nil {
		s.metrics.ObserveSubmission("rejected", 0)
		return domain.Submission{}, dErrors.New(dErrors.CodeBadRequest, "no file selected")
	}

	credential, err := s.authCtx.Credential()
	if err != nil {
		s.metrics.ObserveSubmission("rejected", 0)
		return domain.Submission{}, err
	}

	if err := s.begin(); err != nil {
		s.metrics.ObserveSubmission("rejected", 0)
		return domain.Submission{}, err
	}

	started := s.now()
	result, err := s.api.Verify(ctx, credential, s.authCtx.Requester(), filename, file)
	if err != nil {
		s.fail(err)
		s.metrics.ObserveSubmission("error", s.now().Sub(started))
		return domain.Submission{}, s.classify(err)
	}

	submission := s.derive(result, hint)
	s.complete(submission)
	s.metrics.ObserveSubmission("complete", s.now().Sub(started))

	// Reconcile with the server-of-record list. Fire-and-forget: the caller
	// gets its Submission without waiting on the listing round trip.
	go func() {
		if err := s.RefreshDocuments(context.WithoutCancel(ctx)); err != nil {
			s.logger.Warn("document list refresh after submit failed", "error", err)
		}
	}()

	return submission, nil
}

// begin acquires the single in-flight slot and enters Pending.
func (s *Service) begin() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.inFlight {
		return dErrors.Wrap(dErrors.CodeConflict, "a submission is already in flight", sentinel.ErrInFlight)
	}
	s.inFlight = true
	s.state = domain.StatePending
	s.statusMessage = "Analyzing document"
	return nil
}

// derive transforms the upstream payload into the canonical Submission.
// Pure derivation; no locks, no I/O.
func (s *Service) derive(result *upstream.VerifyResult, hint domain.DocumentType) domain.Submission {
	parsed := result.Verification.Parsed

	// Detected identifier fields outrank the caller-supplied hint.
	docType := domain.DocTypeUnknown
	switch {
	case parsed.AadhaarNumber != "":
		docType = domain.DocTypeAadhaar
	case parsed.PanNumber != "":
		docType = domain.DocTypePAN
	case hintIsUsable(hint):
		docType = hint
	}

	masked := "N/A"
	if parsed.AadhaarNumber != "" {
		masked = mask.Mask(parsed.AadhaarNumber)
	}

	return domain.Submission{
		SubmissionID:     result.DocID,
		DocumentType:     docType,
		Verified:         domain.FreshTruth(result.Decision).Verified(),
		Tampered:         result.Fraud.Details.ManipulationSuspected,
		MaskedIdentifier: masked,
		Fraud:            risk.Assess(result.Fraud.Score),
		Timestamp:        s.now(),
	}
}

// complete publishes the Submission: prepend to the fresh list, expose as
// latest, release the in-flight slot.
func (s *Service) complete(submission domain.Submission) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inFlight = false
	if s.closed {
		return
	}
	s.fresh = append([]domain.Submission{submission}, s.fresh...)
	s.latest = &submission
	s.state = domain.StateComplete
	s.statusMessage = "Verification complete"
}

// fail enters the Error state with a human-readable message, leaving the
// submission list untouched.
func (s *Service) fail(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inFlight = false
	if s.closed {
		return
	}
	s.state = domain.StateError
	if errors.Is(err, sentinel.ErrUnauthorized) {
		s.statusMessage = "Verification failed: not authenticated"
	} else {
		s.statusMessage = "Verification failed: remote service unavailable"
	}
	s.logger.Warn("verification failed", "error", err)
}

// classify maps an upstream failure onto the domain error taxonomy.
func (s *Service) classify(err error) error {
	if errors.Is(err, sentinel.ErrUnauthorized) {
		return dErrors.Wrap(dErrors.CodeUnauthenticated, "upstream rejected the credential", err)
	}
	return dErrors.Wrap(dErrors.CodeTransport, "verification request failed", err)
}

// RefreshDocuments refetches and normalizes the server-of-record listing.
// Previously displayed records are retained on failure.
func (s *Service) RefreshDocuments(ctx context.Context) error {
	credential, err := s.authCtx.Credential()
	if err != nil {
		return err
	}
	raws, err := s.api.ListDocuments(ctx, credential)
	if err != nil {
		return dErrors.Wrap(dErrors.CodeTransport, "document listing failed", err)
	}
	records := normalize.Records(raws)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.serverDocs = records
	return nil
}

// Reset re-arms the lifecycle from Complete or Error back to Idle, as when
// the user picks a new file. The submission list survives; only the
// transient verdict state clears.
func (s *Service) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.inFlight {
		return
	}
	s.state = domain.StateIdle
	s.statusMessage = ""
	s.latest = nil
}

// Snapshot returns the current downstream surface. The display list is the
// fresh submissions (newest first) concatenated before the server records;
// the two are never merged destructively and never deduplicated.
func (s *Service) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	documents := make([]domain.DocumentRecord, 0, len(s.fresh)+len(s.serverDocs))
	for _, sub := range s.fresh {
		documents = append(documents, sub.Record())
	}
	documents = append(documents, s.serverDocs...)

	var latest *domain.Submission
	if s.latest != nil {
		copied := *s.latest
		latest = &copied
	}

	return Snapshot{
		State:         s.state,
		StatusMessage: s.statusMessage,
		Latest:        latest,
		Documents:     documents,
	}
}

// Close tears the session down. Late responses from in-flight work are
// dropped instead of mutating a dead session.
func (s *Service) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.fresh = nil
	s.serverDocs = nil
	s.latest = nil
	s.state = domain.StateIdle
	s.statusMessage = ""
}

// HintFromFilename derives a caller-side document type hint from the file
// name, matching the common "aadhaar"/"pan" naming habit. Hints never
// override a detected identifier field.
func HintFromFilename(filename string) domain.DocumentType {
	name := strings.ToLower(filename)
	switch {
	case strings.Contains(name, "pan"):
		return domain.DocTypePAN
	case strings.Contains(name, "aadhaar"), strings.Contains(name, "adhar"):
		return domain.DocTypeAadhaar
	default:
		return domain.DocTypeUnknown
	}
}

func hintIsUsable(hint domain.DocumentType) bool {
	return hint == domain.DocTypeAadhaar || hint == domain.DocTypePAN
}
