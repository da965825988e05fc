package httpx

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestFetchPage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/page" {
			w.Write([]byte("<html>£17.50</html>"))
			return
		}
		http.NotFound(w, r)
	}))
	defer srv.Close()

	f := NewCollyFetcher("test-agent")
	body, status, err := f.FetchPage(context.Background(), srv.URL+"/page")
	if err != nil {
		t.Fatalf("FetchPage: %v", err)
	}
	if status != http.StatusOK {
		t.Errorf("status = %d, want 200", status)
	}
	if string(body) != "<html>£17.50</html>" {
		t.Errorf("body = %q", body)
	}
}

func TestFetchPageNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(http.NotFound))
	defer srv.Close()

	f := NewCollyFetcher("test-agent")
	_, status, err := f.FetchPage(context.Background(), srv.URL+"/missing")
	if err == nil {
		t.Fatal("expected an error for 404")
	}
	if status != http.StatusNotFound {
		t.Errorf("status = %d, want 404", status)
	}
}

func TestFetchPageCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	f := NewCollyFetcher("test-agent")
	_, _, err := f.FetchPage(ctx, "https://example.com")
	if err == nil {
		t.Fatal("expected an error for cancelled context")
	}
}

func TestNormalizeURL(t *testing.T) {
	got, err := normalizeURL("example.com/search")
	if err != nil {
		t.Fatalf("normalizeURL: %v", err)
	}
	if got != "https://example.com/search" {
		t.Errorf("got %q, want the https scheme defaulted", got)
	}

	if _, err := normalizeURL(""); err == nil {
		t.Error("empty url must error")
	}
}

func TestHostKey(t *testing.T) {
	if got := hostKey("https://www.Wickes.co.uk/search"); got != "wickes.co.uk" {
		t.Errorf("hostKey = %q, want %q", got, "wickes.co.uk")
	}
}

func TestShouldBackoff(t *testing.T) {
	tests := []struct {
		status int
		want   bool
	}{
		{http.StatusTooManyRequests, true},
		{http.StatusBadGateway, true},
		{http.StatusNotFound, false},
		{http.StatusOK, false},
	}
	for _, tt := range tests {
		if got := shouldBackoff(tt.status); got != tt.want {
			t.Errorf("shouldBackoff(%d) = %v, want %v", tt.status, got, tt.want)
		}
	}
}

func TestFetchErrorUnwrap(t *testing.T) {
	inner := context.DeadlineExceeded
	fe := &FetchError{Status: 504, Err: inner}
	if fe.Unwrap() != inner {
		t.Error("Unwrap must expose the inner error")
	}
	if fe.Error() == "" {
		t.Error("Error must describe the failure")
	}
}

func TestHostPolicyBackoffWaits(t *testing.T) {
	f := NewCollyFetcher("test-agent")
	f.applyBackoff("example.com", 0)

	start := time.Now()
	if err := f.hostPolicy("example.com").waitBackoff(context.Background()); err != nil {
		t.Fatalf("waitBackoff: %v", err)
	}
	if elapsed := time.Since(start); elapsed < 400*time.Millisecond {
		t.Errorf("waitBackoff returned after %v, want roughly the 500ms backoff", elapsed)
	}
}
