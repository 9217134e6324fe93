package upstream

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"veridoc/pkg/platform/sentinel"
)

func TestVerifySendsMultipartAndDecodesResult(t *testing.T) {
	var gotAuth, gotRequester, gotFilename string
	var gotFile []byte

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/verify", r.URL.Path)
		gotAuth = r.Header.Get("Authorization")

		require.NoError(t, r.ParseMultipartForm(1<<20))
		gotRequester = r.FormValue("user_email")
		file, header, err := r.FormFile("file")
		require.NoError(t, err)
		defer file.Close()
		gotFilename = header.Filename
		gotFile, err = io.ReadAll(file)
		require.NoError(t, err)

		_ = json.NewEncoder(w).Encode(VerifyResult{
			Verification: Verification{Parsed: ParsedFields{AadhaarNumber: "123456789012", Name: "Asha"}},
			Fraud:        FraudReport{Score: 85, Details: FraudDetails{ManipulationSuspected: true}},
			Decision:     "Pass",
			DocID:        "doc-42",
		})
	}))
	defer srv.Close()

	client := New(srv.URL, srv.Client())
	result, err := client.Verify(context.Background(), "tok", "user@demo.com", "aadhaar.png", strings.NewReader("fake-image"))
	require.NoError(t, err)

	assert.Equal(t, "Bearer tok", gotAuth)
	assert.Equal(t, "user@demo.com", gotRequester)
	assert.Equal(t, "aadhaar.png", gotFilename)
	assert.Equal(t, "fake-image", string(gotFile))
	assert.Equal(t, "doc-42", result.DocID)
	assert.Equal(t, "Pass", result.Decision)
	assert.True(t, result.Fraud.Details.ManipulationSuspected)
}

func TestVerifyUnauthorized(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	client := New(srv.URL, srv.Client())
	_, err := client.Verify(context.Background(), "expired", "u@d.com", "f.png", strings.NewReader("x"))
	assert.ErrorIs(t, err, sentinel.ErrUnauthorized)
}

func TestListDocumentsEnvelopes(t *testing.T) {
	t.Run("bare array", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`[{"_id":"a"},{"_id":"b"}]`))
		}))
		defer srv.Close()

		docs, err := New(srv.URL, srv.Client()).ListDocuments(context.Background(), "tok")
		require.NoError(t, err)
		require.Len(t, docs, 2)
		assert.Equal(t, "a", docs[0]["_id"])
	})

	t.Run("documents envelope", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"documents":[{"id":"c"}]}`))
		}))
		defer srv.Close()

		docs, err := New(srv.URL, srv.Client()).ListDocuments(context.Background(), "tok")
		require.NoError(t, err)
		require.Len(t, docs, 1)
	})

	t.Run("unrecognized envelope is an error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`"nope"`))
		}))
		defer srv.Close()

		_, err := New(srv.URL, srv.Client()).ListDocuments(context.Background(), "tok")
		assert.Error(t, err)
	})
}

func TestAlertsMapsWireShape(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/alerts", r.URL.Path)
		_, _ = w.Write([]byte(`[{"_id":"al-1","alert":"High fraud score 92","user":"u@d.com","risk":"High","timestamp":"2026-08-28T10:00:00.123456"}]`))
	}))
	defer srv.Close()

	alerts, err := New(srv.URL, srv.Client()).Alerts(context.Background())
	require.NoError(t, err)
	require.Len(t, alerts, 1)
	assert.Equal(t, "al-1", alerts[0].ID)
	assert.Equal(t, "High fraud score 92", alerts[0].Message)
	assert.Equal(t, "High", alerts[0].RiskLabel)
	assert.False(t, alerts[0].Timestamp.IsZero())
}

func TestAuditLogFallsBackToCreatedAt(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"_id":"lg-1","userId":"u1","docId":"d1","decision":"Review","createdAt":"2026-08-28T09:00:00"}]`))
	}))
	defer srv.Close()

	entries, err := New(srv.URL, srv.Client()).AuditLog(context.Background())
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "Review", entries[0].Decision)
	assert.False(t, entries[0].Timestamp.IsZero())
}

func TestDismissAlertStatusTranslation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/alerts/dismiss/al-9", r.URL.Path)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	err := New(srv.URL, srv.Client()).DismissAlert(context.Background(), "al-9")
	assert.ErrorIs(t, err, sentinel.ErrUnavailable)
}

