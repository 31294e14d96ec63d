package notify

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"internradar/internal/model"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testPosting() model.Posting {
	return model.Posting{
		Title:               "Software Engineer Intern",
		Link:                "https://careers.example.com/1",
		Category:            model.CategorySoftware,
		Location:            "Remote",
		PostingDate:         time.Date(2026, 2, 20, 0, 0, 0, 0, time.UTC),
		DiscoveryDate:       time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		SourceLabel:         "board",
		RequirementsSummary: "Key Requirements:\n\nTechnical Skills:\n• Python and SQL.",
	}
}

func TestSlackNotify_SendsBlockKitPayload(t *testing.T) {
	var captured []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	n := NewSlackNotifier(srv.URL, srv.Client(), testLogger())
	if err := n.NotifyNewPosting(testPosting()); err != nil {
		t.Fatalf("NotifyNewPosting: %v", err)
	}

	var payload slackPayload
	if err := json.Unmarshal(captured, &payload); err != nil {
		t.Fatalf("payload is not valid JSON: %v", err)
	}
	if len(payload.Blocks) == 0 {
		t.Fatal("payload has no blocks")
	}
	if !strings.Contains(string(captured), "Software Engineer Intern") {
		t.Error("payload missing posting title")
	}
	if !strings.Contains(string(captured), "Key Requirements:") {
		t.Error("payload missing requirements summary block")
	}
	if !strings.Contains(string(captured), "https://careers.example.com/1") {
		t.Error("payload missing apply link")
	}
}

func TestSlackNotify_RetriesOn429(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.Header().Set("Retry-After", "1")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	n := NewSlackNotifier(srv.URL, srv.Client(), testLogger())
	if err := n.NotifyNewPosting(testPosting()); err != nil {
		t.Fatalf("NotifyNewPosting after retry: %v", err)
	}
	if calls != 2 {
		t.Errorf("server hit %d times, want 2", calls)
	}
}

func TestRetryAfterWaitClamped(t *testing.T) {
	tests := []struct {
		header string
		want   time.Duration
	}{
		{"", 1 * time.Second},
		{"0", 1 * time.Second},
		{"garbage", 1 * time.Second},
		{"5", 5 * time.Second},
		{"30", 30 * time.Second},
		{"3600", 30 * time.Second},
	}
	for _, tt := range tests {
		if got := retryAfterWait(tt.header); got != tt.want {
			t.Errorf("retryAfterWait(%q) = %v, want %v", tt.header, got, tt.want)
		}
	}
}

func TestSlackNotify_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	n := NewSlackNotifier(srv.URL, srv.Client(), testLogger())
	if err := n.NotifyNewPosting(testPosting()); err == nil {
		t.Fatal("expected error for HTTP 500, got nil")
	}
}

func TestLogNotifierNeverFails(t *testing.T) {
	n := NewLogNotifier(testLogger())
	if err := n.NotifyNewPosting(testPosting()); err != nil {
		t.Errorf("NotifyNewPosting: %v", err)
	}
}

func TestEventIDsUnique(t *testing.T) {
	a := NewEvent(testPosting())
	b := NewEvent(testPosting())
	if a.ID == "" || a.ID == b.ID {
		t.Errorf("event IDs not unique: %q vs %q", a.ID, b.ID)
	}
}
