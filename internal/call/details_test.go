package call

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestHTTPDirectoryDetails(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/calls/call-1" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer secret" {
			t.Errorf("unexpected auth header: %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"callId":"call-1","realtimeTranslation":true,"peerName":"ana"}`))
	}))
	defer server.Close()

	d := NewHTTPDirectory(server.URL+"/", "secret")
	details, err := d.Details(context.Background(), "call-1")
	if err != nil {
		t.Fatalf("details failed: %v", err)
	}
	if !details.RealtimeTranslation || details.PeerName != "ana" {
		t.Fatalf("unexpected details: %+v", details)
	}
}

func TestHTTPDirectoryDetailsNonSuccess(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "nope", http.StatusForbidden)
	}))
	defer server.Close()

	d := NewHTTPDirectory(server.URL, "")
	if _, err := d.Details(context.Background(), "call-1"); err == nil {
		t.Fatalf("expected status error")
	}
}

func TestHTTPDirectoryDetailsRequiresCallID(t *testing.T) {
	t.Parallel()

	d := NewHTTPDirectory("http://localhost:1", "")
	if _, err := d.Details(context.Background(), "  "); err == nil {
		t.Fatalf("expected missing call id error")
	}
}

func TestHTTPDirectoryDetailsEscapesCallID(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.EscapedPath() != "/calls/a%2Fb" {
			t.Errorf("unexpected path: %s", r.URL.EscapedPath())
		}
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	d := NewHTTPDirectory(server.URL, "")
	if _, err := d.Details(context.Background(), "a/b"); err != nil {
		t.Fatalf("details failed: %v", err)
	}
}
