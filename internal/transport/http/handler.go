// Package httpapi is the thin HTTP layer. It delegates to the session
// manager and the console service without embedding business logic, so
// transport concerns remain isolated.
package httpapi

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"veridoc/internal/console"
	"veridoc/internal/domain"
	"veridoc/internal/session"
	"veridoc/internal/verify"
	dErrors "veridoc/pkg/domain-errors"
	"veridoc/pkg/platform/httputil"
)

const sessionHeader = "X-Session-ID"

// maxUploadBytes bounds multipart parsing; document scans are small images.
const maxUploadBytes = 16 << 20

// Handler exposes the verification lifecycle and the operator console.
type Handler struct {
	sessions *session.Manager
	console  *console.Service
	logger   *slog.Logger
	health   func(ctx context.Context) error
}

// NewHandler wires the transport layer. health may be nil when no backing
// services need checking.
func NewHandler(sessions *session.Manager, consoleSvc *console.Service, logger *slog.Logger, health func(ctx context.Context) error) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{sessions: sessions, console: consoleSvc, logger: logger, health: health}
}

func (h *Handler) orchestrator(w http.ResponseWriter, r *http.Request) (*verify.Service, bool) {
	sessionID := r.Header.Get(sessionHeader)
	if sessionID == "" {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthenticated, "missing session header"))
		return nil, false
	}
	orch, err := h.sessions.Orchestrator(r.Context(), sessionID)
	if err != nil {
		httputil.WriteError(w, err)
		return nil, false
	}
	return orch, true
}

func (h *Handler) handleEstablishSession(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Credential string `json:"credential"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid JSON body"))
		return
	}
	sessionID, err := h.sessions.Establish(r.Context(), body.Credential)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, map[string]string{"sessionId": sessionID})
}

func (h *Handler) handleClearSession(w http.ResponseWriter, r *http.Request) {
	sessionID := r.Header.Get(sessionHeader)
	if sessionID == "" {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthenticated, "missing session header"))
		return
	}
	if err := h.sessions.Clear(r.Context(), sessionID); err != nil {
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	orch, ok := h.orchestrator(w, r)
	if !ok {
		return
	}

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "expected multipart form with a file field"))
		return
	}
	var (
		body     io.Reader
		filename string
	)
	hint := domain.DocumentType(r.FormValue("docTypeHint"))

	// The orchestrator owns the "no file selected" rule; a missing file
	// reaches it as nil and is rejected without a request being sent.
	if file, header, err := r.FormFile("file"); err == nil {
		defer file.Close()
		body = file
		filename = header.Filename
		if hint == "" {
			hint = verify.HintFromFilename(header.Filename)
		}
	}

	sub, err := orch.Submit(r.Context(), filename, body, hint)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, sub)
}

func (h *Handler) handleVerifyState(w http.ResponseWriter, r *http.Request) {
	orch, ok := h.orchestrator(w, r)
	if !ok {
		return
	}
	httputil.WriteJSON(w, http.StatusOK, orch.Snapshot())
}

func (h *Handler) handleVerifyReset(w http.ResponseWriter, r *http.Request) {
	orch, ok := h.orchestrator(w, r)
	if !ok {
		return
	}
	orch.Reset()
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleDocuments(w http.ResponseWriter, r *http.Request) {
	orch, ok := h.orchestrator(w, r)
	if !ok {
		return
	}
	// Best effort reconciliation with the server-of-record list; stale data
	// is still served when the upstream listing is down.
	if err := orch.RefreshDocuments(r.Context()); err != nil {
		h.logger.Warn("document refresh on read failed", "error", err)
	}
	snap := orch.Snapshot()
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"documents": snap.Documents})
}

func (h *Handler) handleConsoleAlerts(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, h.console.Snapshot().Alerts)
}

func (h *Handler) handleConsoleLogs(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, h.console.Snapshot().AuditTrail)
}

func (h *Handler) handleConsoleRefresh(w http.ResponseWriter, r *http.Request) {
	if err := h.console.Refresh(r.Context()); err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, h.console.Snapshot())
}

func (h *Handler) handleConsoleAcknowledge(w http.ResponseWriter, r *http.Request) {
	alertID := chi.URLParam(r, "id")
	if err := h.console.Acknowledge(r.Context(), alertID); err != nil {
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleHealthz(w http.ResponseWriter, r *http.Request) {
	if h.health != nil {
		if err := h.health(r.Context()); err != nil {
			httputil.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded"})
			return
		}
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
