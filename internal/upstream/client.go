// Package upstream is the HTTP client for the remote extraction and
// fraud-scoring service. The service is a black box reached through a
// request/response contract; this client owns transport concerns (timeouts,
// auth headers, status translation) and nothing else.
package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"veridoc/internal/domain"
	"veridoc/pkg/platform/sentinel"
)

// Client talks to the remote verification service. Timeout policy lives on
// the injected http.Client; the orchestration layer defines none of its own.
type Client struct {
	baseURL string
	httpc   *http.Client
}

// New builds a client for the service at baseURL. A nil httpc gets a default
// with a conservative request timeout.
func New(baseURL string, httpc *http.Client) *Client {
	if httpc == nil {
		httpc = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), httpc: httpc}
}

// Verify uploads one document for extraction and fraud scoring. Exactly one
// request is issued per call. requester identifies the submitting user to the
// remote service; credential is the bearer token.
func (c *Client) Verify(ctx context.Context, credential, requester, filename string, file io.Reader) (*VerifyResult, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return nil, fmt.Errorf("build multipart body: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return nil, fmt.Errorf("copy file into request: %w", err)
	}
	if err := mw.WriteField("user_email", requester); err != nil {
		return nil, fmt.Errorf("write requester field: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("finalize multipart body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/verify", &body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+credential)

	var result VerifyResult
	if err := c.do(req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// ListDocuments fetches the server-of-record historical submissions for the
// credential's user. Records come back raw; normalization happens at the
// ingestion boundary, not here.
func (c *Client) ListDocuments(ctx context.Context, credential string) ([]map[string]any, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/my-documents", nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+credential)

	raw, err := c.doRaw(req)
	if err != nil {
		return nil, err
	}

	// The listing endpoint has shipped both envelopes.
	var docs []map[string]any
	if err := json.Unmarshal(raw, &docs); err == nil {
		return docs, nil
	}
	var wrapped documentList
	if err := json.Unmarshal(raw, &wrapped); err == nil && wrapped.Documents != nil {
		return wrapped.Documents, nil
	}
	return nil, fmt.Errorf("document listing: unrecognized envelope")
}

// Alerts fetches the live (unacknowledged) fraud alerts.
func (c *Client) Alerts(ctx context.Context) ([]domain.Alert, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/alerts", nil)
	if err != nil {
		return nil, err
	}
	var wires []alertWire
	if err := c.do(req, &wires); err != nil {
		return nil, err
	}
	alerts := make([]domain.Alert, 0, len(wires))
	for _, w := range wires {
		id := w.ID
		if id == "" {
			id = w.AltID
		}
		alerts = append(alerts, domain.Alert{
			ID:        id,
			Message:   w.Message,
			User:      w.User,
			RiskLabel: w.Risk,
			Timestamp: parseTime(w.Timestamp),
		})
	}
	return alerts, nil
}

// AuditLog fetches the full audit trail.
func (c *Client) AuditLog(ctx context.Context) ([]domain.AuditEntry, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/logs", nil)
	if err != nil {
		return nil, err
	}
	var wires []auditWire
	if err := c.do(req, &wires); err != nil {
		return nil, err
	}
	entries := make([]domain.AuditEntry, 0, len(wires))
	for _, w := range wires {
		id := w.ID
		if id == "" {
			id = w.AltID
		}
		ts := w.Timestamp
		if ts == "" {
			ts = w.CreatedAt
		}
		entries = append(entries, domain.AuditEntry{
			ID:         id,
			UserID:     w.UserID,
			UserEmail:  w.UserEmail,
			DocID:      w.DocID,
			Decision:   w.Decision,
			FraudScore: int(w.FraudScore),
			Details:    w.Details,
			Timestamp:  parseTime(ts),
		})
	}
	return entries, nil
}

// DismissAlert marks one alert as seen on the server.
func (c *Client) DismissAlert(ctx context.Context, alertID string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/alerts/dismiss/"+alertID, nil)
	if err != nil {
		return err
	}
	return c.do(req, nil)
}

// AppendAuditEntry records a new audit entry on the server.
func (c *Client) AppendAuditEntry(ctx context.Context, entry domain.AuditEntry) error {
	payload, err := json.Marshal(map[string]any{
		"userId":      entry.UserID,
		"userEmail":   entry.UserEmail,
		"docId":       entry.DocID,
		"decision":    entry.Decision,
		"fraud_score": entry.FraudScore,
		"details":     entry.Details,
	})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/logs", bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, nil)
}

// do executes a request and decodes a JSON response into out when non-nil.
func (c *Client) do(req *http.Request, out any) error {
	raw, err := c.doRaw(req)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode %s response: %w", req.URL.Path, err)
	}
	return nil
}

// doRaw executes a request and returns the response body, translating
// transport and status failures into sentinel-wrapped errors.
func (c *Client) doRaw(req *http.Request) ([]byte, error) {
	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w: %w", req.Method, req.URL.Path, sentinel.ErrUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read %s response: %w", req.URL.Path, err)
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, sentinel.ErrUnauthorized)
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, sentinel.ErrNotFound)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return nil, fmt.Errorf("%s %s: status %d: %w", req.Method, req.URL.Path, resp.StatusCode, sentinel.ErrUnavailable)
	}
	return body, nil
}

// parseTime tolerates the timestamp formats the upstream has shipped:
// RFC3339 and naive ISO 8601 without a zone.
func parseTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05.999999", "2006-01-02T15:04:05"} {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts
		}
	}
	return time.Time{}
}
