package verify

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"veridoc/internal/auth"
	"veridoc/internal/domain"
	"veridoc/internal/upstream"
	dErrors "veridoc/pkg/domain-errors"
	"veridoc/pkg/platform/sentinel"
)

// fakeUpstream is a hand-rolled stand-in for the remote service, in the
// in-memory store tradition: call counting plus scripted responses.
type fakeUpstream struct {
	mu          sync.Mutex
	verifyCalls int
	listCalls   int

	verifyResult *upstream.VerifyResult
	verifyErr    error
	documents    []map[string]any
	listErr      error
	verifyBlock  chan struct{}
}

func (f *fakeUpstream) Verify(_ context.Context, _, _, _ string, _ io.Reader) (*upstream.VerifyResult, error) {
	f.mu.Lock()
	f.verifyCalls++
	block := f.verifyBlock
	f.mu.Unlock()
	if block != nil {
		<-block
	}
	if f.verifyErr != nil {
		return nil, f.verifyErr
	}
	return f.verifyResult, nil
}

func (f *fakeUpstream) ListDocuments(_ context.Context, _ string) ([]map[string]any, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls++
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.documents, nil
}

func (f *fakeUpstream) calls() (int, int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.verifyCalls, f.listCalls
}

type OrchestratorSuite struct {
	suite.Suite
	api     *fakeUpstream
	authCtx *auth.Context
	svc     *Service
}

func TestOrchestratorSuite(t *testing.T) {
	suite.Run(t, new(OrchestratorSuite))
}

func (s *OrchestratorSuite) SetupTest() {
	s.api = &fakeUpstream{
		verifyResult: &upstream.VerifyResult{
			Verification: upstream.Verification{
				Parsed: upstream.ParsedFields{AadhaarNumber: "123456789012", Name: "Asha"},
			},
			Fraud:    upstream.FraudReport{Score: 85, Details: upstream.FraudDetails{ManipulationSuspected: true}},
			Decision: "Pass",
			DocID:    "doc-1",
		},
	}
	s.authCtx = auth.NewContext()
	s.Require().NoError(s.authCtx.Establish("tok"))
	s.svc = New(s.api, s.authCtx, nil, nil)
}

func (s *OrchestratorSuite) submit() (domain.Submission, error) {
	return s.svc.Submit(context.Background(), "aadhaar.png", strings.NewReader("img"), domain.DocTypeUnknown)
}

func (s *OrchestratorSuite) TestSubmitDerivesCanonicalSubmission() {
	sub, err := s.submit()
	s.Require().NoError(err)

	s.Equal("doc-1", sub.SubmissionID)
	s.Equal(domain.DocTypeAadhaar, sub.DocumentType)
	s.True(sub.Verified)
	s.True(sub.Tampered)
	s.Equal(domain.FraudAssessment{Score: 85, Band: domain.BandHigh}, sub.Fraud)
	s.Equal("XXXX-XXXX-9012", sub.MaskedIdentifier)
	s.False(sub.Timestamp.IsZero())

	snap := s.svc.Snapshot()
	s.Equal(domain.StateComplete, snap.State)
	s.Require().NotNil(snap.Latest)
	s.Equal(sub.SubmissionID, snap.Latest.SubmissionID)
}

func (s *OrchestratorSuite) TestSubmitWithoutFileSendsNothing() {
	_, err := s.svc.Submit(context.Background(), "x.png", nil, domain.DocTypeUnknown)
	s.Equal(dErrors.CodeBadRequest, dErrors.CodeOf(err))

	verifyCalls, _ := s.api.calls()
	s.Zero(verifyCalls)
	s.Empty(s.svc.Snapshot().Documents)
	s.Equal(domain.StateIdle, s.svc.Snapshot().State)
}

func (s *OrchestratorSuite) TestSubmitWithoutCredentialIsRefusedLocally() {
	s.authCtx.Clear()
	_, err := s.submit()
	s.Equal(dErrors.CodeUnauthenticated, dErrors.CodeOf(err))

	verifyCalls, _ := s.api.calls()
	s.Zero(verifyCalls)
}

func (s *OrchestratorSuite) TestUpstreamFailureLeavesListUnchanged() {
	s.api.verifyErr = fmt.Errorf("boom: %w", sentinel.ErrUnavailable)

	_, err := s.submit()
	s.Equal(dErrors.CodeTransport, dErrors.CodeOf(err))

	snap := s.svc.Snapshot()
	s.Equal(domain.StateError, snap.State)
	s.Empty(snap.Documents)
	s.Nil(snap.Latest)
	s.Contains(snap.StatusMessage, "failed")
}

func (s *OrchestratorSuite) TestUpstreamUnauthorizedMapsToUnauthenticated() {
	s.api.verifyErr = fmt.Errorf("denied: %w", sentinel.ErrUnauthorized)

	_, err := s.submit()
	s.Equal(dErrors.CodeUnauthenticated, dErrors.CodeOf(err))
	s.Equal(domain.StateError, s.svc.Snapshot().State)
}

func (s *OrchestratorSuite) TestDocumentTypeHintFallback() {
	s.api.verifyResult = &upstream.VerifyResult{
		Decision: "Fail",
		DocID:    "doc-2",
	}

	sub, err := s.svc.Submit(context.Background(), "scan.png", strings.NewReader("img"), domain.DocTypePAN)
	s.Require().NoError(err)
	s.Equal(domain.DocTypePAN, sub.DocumentType)
	s.False(sub.Verified)
	s.Equal("N/A", sub.MaskedIdentifier)
}

func (s *OrchestratorSuite) TestDetectedIdentifierOutranksHint() {
	sub, err := s.svc.Submit(context.Background(), "scan.png", strings.NewReader("img"), domain.DocTypePAN)
	s.Require().NoError(err)
	s.Equal(domain.DocTypeAadhaar, sub.DocumentType)
}

func (s *OrchestratorSuite) TestSubmitTriggersDocumentRefresh() {
	s.api.documents = []map[string]any{
		{"_id": "srv-1", "decision": "Pass"},
	}

	_, err := s.submit()
	s.Require().NoError(err)

	// The refresh is fire-and-forget; wait for it to land.
	s.Eventually(func() bool {
		_, listCalls := s.api.calls()
		return listCalls == 1
	}, time.Second, 5*time.Millisecond)

	s.Eventually(func() bool {
		docs := s.svc.Snapshot().Documents
		return len(docs) == 2 && docs[0].ID == "doc-1" && docs[1].ID == "srv-1"
	}, time.Second, 5*time.Millisecond)
}

func (s *OrchestratorSuite) TestFreshListPrecedesServerRecords() {
	s.Require().NoError(s.svc.RefreshDocuments(context.Background()))

	s.api.documents = []map[string]any{{"_id": "srv-1"}}
	s.Require().NoError(s.svc.RefreshDocuments(context.Background()))

	_, err := s.submit()
	s.Require().NoError(err)

	docs := s.svc.Snapshot().Documents
	s.Require().GreaterOrEqual(len(docs), 2)
	s.Equal("doc-1", docs[0].ID)
}

func (s *OrchestratorSuite) TestOverlappingSubmitIsRejected() {
	block := make(chan struct{})
	s.api.verifyBlock = block

	done := make(chan error, 1)
	go func() {
		_, err := s.submit()
		done <- err
	}()

	s.Eventually(func() bool {
		return s.svc.Snapshot().State == domain.StatePending
	}, time.Second, 5*time.Millisecond)

	s.api.mu.Lock()
	s.api.verifyBlock = nil
	s.api.mu.Unlock()

	_, err := s.submit()
	s.Equal(dErrors.CodeConflict, dErrors.CodeOf(err))
	s.ErrorIs(err, sentinel.ErrInFlight)

	close(block)
	s.Require().NoError(<-done)
}

func (s *OrchestratorSuite) TestResetReturnsToIdle() {
	_, err := s.submit()
	s.Require().NoError(err)
	s.Equal(domain.StateComplete, s.svc.Snapshot().State)

	s.svc.Reset()
	snap := s.svc.Snapshot()
	s.Equal(domain.StateIdle, snap.State)
	s.Nil(snap.Latest)
	// The submission list survives a reset.
	s.NotEmpty(snap.Documents)
}

func (s *OrchestratorSuite) TestCloseDropsLateResults() {
	block := make(chan struct{})
	s.api.verifyBlock = block

	done := make(chan struct{})
	go func() {
		_, _ = s.submit()
		close(done)
	}()

	s.Eventually(func() bool {
		return s.svc.Snapshot().State == domain.StatePending
	}, time.Second, 5*time.Millisecond)

	s.svc.Close()
	close(block)
	<-done

	snap := s.svc.Snapshot()
	s.Empty(snap.Documents)
	s.Nil(snap.Latest)
}

func TestHintFromFilename(t *testing.T) {
	tests := []struct {
		filename string
		want     domain.DocumentType
	}{
		{"my-pan-card.jpg", domain.DocTypePAN},
		{"AADHAAR_front.png", domain.DocTypeAadhaar},
		{"adhar.jpeg", domain.DocTypeAadhaar},
		{"passport.png", domain.DocTypeUnknown},
	}
	for _, tt := range tests {
		if got := HintFromFilename(tt.filename); got != tt.want {
			t.Errorf("HintFromFilename(%q) = %v, want %v", tt.filename, got, tt.want)
		}
	}
}
