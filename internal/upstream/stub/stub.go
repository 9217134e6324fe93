// Package stub is a local fake of the remote verification service, for
// development and tests when the real service is unreachable. It honors the
// same wire contract: multipart verify, loose document listing, alerts, and
// the audit trail.
package stub

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// Server holds the fake service state. Verified documents accumulate in the
// listing; seeded alerts and audit entries make the console render something
// on first load.
type Server struct {
	mu     sync.Mutex
	docs   []map[string]any
	alerts []map[string]any
	logs   []map[string]any
	faker  *gofakeit.Faker
}

// New seeds a stub service. The seed fixes the generated data so repeated dev
// runs look the same.
func New(seed int64) *Server {
	s := &Server{faker: gofakeit.New(seed)}
	s.seed()
	return s
}

func (s *Server) seed() {
	for i := 0; i < 3; i++ {
		score := s.faker.Number(72, 98)
		s.alerts = append(s.alerts, map[string]any{
			"_id":       uuid.NewString(),
			"alert":     fmt.Sprintf("High fraud score %d", score),
			"user":      s.faker.Email(),
			"risk":      "High",
			"timestamp": time.Now().Add(-time.Duration(i) * time.Hour).UTC().Format(time.RFC3339),
		})
	}
	for i := 0; i < 5; i++ {
		s.logs = append(s.logs, map[string]any{
			"_id":         uuid.NewString(),
			"userId":      uuid.NewString(),
			"userEmail":   s.faker.Email(),
			"docId":       uuid.NewString(),
			"decision":    s.faker.RandomString([]string{"Pass", "Review", "Flagged"}),
			"fraud_score": s.faker.Number(0, 100),
			"createdAt":   time.Now().Add(-time.Duration(i) * time.Hour).UTC().Format(time.RFC3339),
		})
	}
}

// Handler returns the stub's HTTP surface.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Post("/verify", s.handleVerify)
	r.Get("/my-documents", s.handleMyDocuments)
	r.Get("/alerts", s.handleAlerts)
	r.Get("/logs", s.handleLogs)
	r.Post("/logs", s.handleAppendLog)
	r.Post("/alerts/dismiss/{id}", s.handleDismiss)
	return r
}

func bearer(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	token, ok := strings.CutPrefix(header, "Bearer ")
	return token, ok && token != ""
}

// handleVerify scores deterministically from the filename so demo flows are
// reproducible: "tamper" flags manipulation, "suspicious" drives a high
// score, "pan" yields a PAN document, everything else parses as Aadhaar.
func (s *Server) handleVerify(w http.ResponseWriter, r *http.Request) {
	if _, ok := bearer(r); !ok {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	defer file.Close()
	_, _ = io.Copy(io.Discard, file)

	name := strings.ToLower(header.Filename)
	score := float64(s.faker.Number(2, 24))
	if strings.Contains(name, "suspicious") {
		score = float64(s.faker.Number(75, 97))
	}
	tampered := strings.Contains(name, "tamper")
	if tampered {
		score += 20
	}

	parsed := map[string]any{
		"name": s.faker.Name(),
		"dob":  s.faker.Date().Format("02/01/2006"),
	}
	docType := "Aadhaar"
	if strings.Contains(name, "pan") {
		docType = "PAN"
		parsed["panNumber"] = strings.ToUpper(s.faker.LetterN(5)) + s.faker.DigitN(4) + strings.ToUpper(s.faker.LetterN(1))
	} else {
		parsed["aadhaarNumber"] = s.faker.DigitN(12)
	}

	decision := "Pass"
	switch {
	case score >= 71:
		decision = "Flagged"
	case score >= 31:
		decision = "Review"
	}

	docID := uuid.NewString()
	doc := map[string]any{
		"_id":       docID,
		"docType":   docType,
		"parsed":    parsed,
		"fraud":     map[string]any{"score": score},
		"decision":  decision,
		"createdAt": time.Now().UTC().Format(time.RFC3339),
	}
	s.mu.Lock()
	s.docs = append([]map[string]any{doc}, s.docs...)
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]any{
		"verification": map[string]any{
			"parsed":  parsed,
			"rawText": s.faker.Sentence(8),
		},
		"fraud": map[string]any{
			"score":   score,
			"details": map[string]any{"manipulation_suspected": tampered},
		},
		"decision": decision,
		"docId":    docID,
	})
}

func (s *Server) handleMyDocuments(w http.ResponseWriter, r *http.Request) {
	if _, ok := bearer(r); !ok {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	// The real service has shipped both envelopes; exercise the wrapped one.
	writeJSON(w, http.StatusOK, map[string]any{"documents": s.docs})
}

func (s *Server) handleAlerts(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	writeJSON(w, http.StatusOK, s.alerts)
}

func (s *Server) handleLogs(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	writeJSON(w, http.StatusOK, s.logs)
}

func (s *Server) handleAppendLog(w http.ResponseWriter, r *http.Request) {
	var entry map[string]any
	if err := json.NewDecoder(r.Body).Decode(&entry); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	entry["_id"] = uuid.NewString()
	entry["createdAt"] = time.Now().UTC().Format(time.RFC3339)
	s.mu.Lock()
	s.logs = append([]map[string]any{entry}, s.logs...)
	s.mu.Unlock()
	writeJSON(w, http.StatusCreated, entry)
}

func (s *Server) handleDismiss(w http.ResponseWriter, r *http.Request) {
	alertID := chi.URLParam(r, "id")
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.alerts[:0]
	found := false
	for _, a := range s.alerts {
		if a["_id"] == alertID {
			found = true
			continue
		}
		kept = append(kept, a)
	}
	s.alerts = kept
	if !found {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "dismissed"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
