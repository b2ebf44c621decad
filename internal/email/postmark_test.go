package email

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
)

// rewriteTransport redirects every request to the test server so the
// client's hardcoded API URL never leaves the process.
type rewriteTransport struct {
	target *url.URL
}

func (t *rewriteTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req.URL.Scheme = t.target.Scheme
	req.URL.Host = t.target.Host
	return http.DefaultTransport.RoundTrip(req)
}

func testClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	target, err := url.Parse(srv.URL)
	if err != nil {
		t.Fatalf("parse test server url: %v", err)
	}
	httpClient := &http.Client{Transport: &rewriteTransport{target: target}}
	return NewClient("test-token", "noreply@cashtrackr.example", "https://app.cashtrackr.example", WithHTTPClient(httpClient))
}

func TestSendConfirmationEmail(t *testing.T) {
	var got postmarkEmail
	var gotToken string
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotToken = r.Header.Get("X-Postmark-Server-Token")
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode payload: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	})

	err := c.SendConfirmationEmail(context.Background(), "Alice", "alice@example.com", "123456")
	if err != nil {
		t.Fatalf("send confirmation: %v", err)
	}

	if gotToken != "test-token" {
		t.Errorf("server token = %q, want %q", gotToken, "test-token")
	}
	if got.To != "alice@example.com" {
		t.Errorf("to = %q, want %q", got.To, "alice@example.com")
	}
	if got.From != "noreply@cashtrackr.example" {
		t.Errorf("from = %q, want %q", got.From, "noreply@cashtrackr.example")
	}
	if got.Subject != "CashTrackr - Confirm your account" {
		t.Errorf("subject = %q", got.Subject)
	}
	if !strings.Contains(got.TextBody, "123456") {
		t.Error("text body should contain the code")
	}
	if !strings.Contains(got.HtmlBody, "https://app.cashtrackr.example/auth/confirm-account") {
		t.Error("html body should contain the confirm link")
	}
}

func TestSendPasswordResetToken(t *testing.T) {
	var got postmarkEmail
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode payload: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	})

	err := c.SendPasswordResetToken(context.Background(), "Alice", "alice@example.com", "654321")
	if err != nil {
		t.Fatalf("send reset: %v", err)
	}

	if got.Subject != "CashTrackr - Reset your password" {
		t.Errorf("subject = %q", got.Subject)
	}
	if !strings.Contains(got.TextBody, "654321") {
		t.Error("text body should contain the code")
	}
}

func TestSendNotConfigured(t *testing.T) {
	c := NewClient("", "noreply@cashtrackr.example", "https://app.cashtrackr.example")

	if c.Configured() {
		t.Error("client without token should not report configured")
	}
	err := c.SendConfirmationEmail(context.Background(), "Alice", "alice@example.com", "123456")
	if err == nil {
		t.Fatal("expected error from unconfigured client")
	}
}

func TestSendRetriesServerErrors(t *testing.T) {
	var attempts int
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
	})

	err := c.SendPasswordResetToken(context.Background(), "Alice", "alice@example.com", "654321")
	if err != nil {
		t.Fatalf("send should succeed after retries: %v", err)
	}
	if attempts != 3 {
		t.Errorf("attempts = %d, want 3", attempts)
	}
}

func TestSendDoesNotRetryClientErrors(t *testing.T) {
	var attempts int
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusUnprocessableEntity)
	})

	err := c.SendPasswordResetToken(context.Background(), "Alice", "alice@example.com", "654321")
	if err == nil {
		t.Fatal("expected error for 4xx response")
	}
	if attempts != 1 {
		t.Errorf("attempts = %d, want 1", attempts)
	}
}
