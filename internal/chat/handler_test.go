package chat

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/ashureev/campusguide/internal/api"
	"github.com/go-chi/chi/v5"
)

func newTestRouter(t *testing.T, f *fixture, limiter *RateLimiter) http.Handler {
	t.Helper()
	r := chi.NewRouter()
	NewHandler(f.svc, limiter, 0).RegisterRoutes(r)
	return r
}

func postChat(t *testing.T, h http.Handler, body string) (*httptest.ResponseRecorder, api.ReplyBody) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/chat", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	var got api.ReplyBody
	if err := json.NewDecoder(rr.Body).Decode(&got); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	return rr, got
}

func TestHandleChatEmptyMessage(t *testing.T) {
	t.Parallel()

	h := newTestRouter(t, newFixture(t, saturday), nil)
	for _, body := range []string{`{"message": ""}`, `{"sessionId": "s1"}`, `{"message": "  "}`} {
		rr, got := postChat(t, h, body)
		if rr.Code != http.StatusBadRequest {
			t.Errorf("%s: expected 400, got %d", body, rr.Code)
		}
		if got.Reply != "Please ask a question." {
			t.Errorf("%s: unexpected reply %q", body, got.Reply)
		}
	}
}

func TestHandleChatInvalidBody(t *testing.T) {
	t.Parallel()

	h := newTestRouter(t, newFixture(t, saturday), nil)
	rr, got := postChat(t, h, `{"message":`)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
	if got.Reply != replyBadRequest {
		t.Fatalf("unexpected reply %q", got.Reply)
	}
}

func TestHandleChatQuickReply(t *testing.T) {
	t.Parallel()

	f := newFixture(t, saturday)
	h := newTestRouter(t, f, nil)
	rr, got := postChat(t, h, `{"message": "What's the date?", "sessionId": "abc"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if got.Reply != "Today is Saturday, October 17, 2026." {
		t.Fatalf("unexpected reply %q", got.Reply)
	}
	if n := len(f.svc.History("abc")); n != 2 {
		t.Fatalf("expected 2 turns in session abc, got %d", n)
	}
}

func TestHandleChatGeneratorError(t *testing.T) {
	t.Parallel()

	f := newFixture(t, saturday)
	f.gen.err = errors.New("upstream unavailable")
	h := newTestRouter(t, f, nil)

	rr, got := postChat(t, h, `{"message": "hostel fees?", "sessionId": "abc"}`)
	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rr.Code)
	}
	if !strings.HasPrefix(got.Reply, "Error: ") || !strings.Contains(got.Reply, "upstream unavailable") {
		t.Fatalf("unexpected error reply %q", got.Reply)
	}
}

func TestHandleChatRateLimited(t *testing.T) {
	t.Parallel()

	h := newTestRouter(t, newFixture(t, saturday), NewRateLimiter(2, time.Hour))
	for i := 0; i < 2; i++ {
		if rr, _ := postChat(t, h, `{"message": "what time is it"}`); rr.Code != http.StatusOK {
			t.Fatalf("request %d: expected 200, got %d", i, rr.Code)
		}
	}
	rr, got := postChat(t, h, `{"message": "what time is it"}`)
	if rr.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", rr.Code)
	}
	if got.Reply != replyRateLimited {
		t.Fatalf("unexpected reply %q", got.Reply)
	}
}

func TestHandleHistoryAndReset(t *testing.T) {
	t.Parallel()

	f := newFixture(t, saturday)
	h := newTestRouter(t, f, nil)
	postChat(t, h, `{"message": "what time is it", "sessionId": "tab-1"}`)

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/chat/tab-1/history", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	var hist HistoryResponse
	if err := json.NewDecoder(rr.Body).Decode(&hist); err != nil {
		t.Fatalf("failed to decode history: %v", err)
	}
	if hist.SessionID != "tab-1" || len(hist.Turns) != 2 {
		t.Fatalf("unexpected history %+v", hist)
	}

	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodDelete, "/chat/tab-1", nil))
	if rr.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rr.Code)
	}

	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodDelete, "/chat/tab-1", nil))
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown session, got %d", rr.Code)
	}
}

func getTranscript(t *testing.T, h http.Handler, target string) (*httptest.ResponseRecorder, TranscriptResponse) {
	t.Helper()
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, target, nil))

	var got TranscriptResponse
	if rr.Code == http.StatusOK {
		if err := json.NewDecoder(rr.Body).Decode(&got); err != nil {
			t.Fatalf("failed to decode transcript: %v", err)
		}
	}
	return rr, got
}

func TestHandleTranscript(t *testing.T) {
	t.Parallel()

	f := newFixture(t, saturday)
	h := newTestRouter(t, f, nil)
	postChat(t, h, `{"message": "what time is it", "sessionId": "tab-1"}`)
	postChat(t, h, `{"message": "what is the date", "sessionId": "tab-1"}`)
	postChat(t, h, `{"message": "what time is it", "sessionId": "tab-2"}`)

	rr, got := getTranscript(t, h, "/chat/tab-1/transcript")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if got.SessionID != "tab-1" || len(got.Entries) != 4 {
		t.Fatalf("expected 4 entries for tab-1, got %+v", got)
	}
	if got.Entries[0].Content != "what time is it" || got.Entries[2].Content != "what is the date" {
		t.Errorf("entries out of order: %+v", got.Entries)
	}

	rr, got = getTranscript(t, h, "/chat/tab-1/transcript?limit=1")
	if rr.Code != http.StatusOK || len(got.Entries) != 1 {
		t.Fatalf("expected 1 entry with limit, got %d %+v", rr.Code, got)
	}
	if got.Entries[0].Role != "assistant" || !strings.HasPrefix(got.Entries[0].Content, "Today is") {
		t.Errorf("expected the latest reply, got %+v", got.Entries[0])
	}

	rr, got = getTranscript(t, h, "/chat/unknown/transcript")
	if rr.Code != http.StatusOK || got.Entries == nil || len(got.Entries) != 0 {
		t.Fatalf("expected empty entries for unknown session, got %d %+v", rr.Code, got)
	}
}

func TestHandleTranscriptErrors(t *testing.T) {
	t.Parallel()

	f := newFixture(t, saturday)
	h := newTestRouter(t, f, nil)

	for _, target := range []string{"/chat/s1/transcript?limit=abc", "/chat/s1/transcript?limit=-2"} {
		if rr, _ := getTranscript(t, h, target); rr.Code != http.StatusBadRequest {
			t.Errorf("%s: expected 400, got %d", target, rr.Code)
		}
	}

	f.svc.transcripts = nil
	if rr, _ := getTranscript(t, h, "/chat/s1/transcript"); rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404 with transcripts disabled, got %d", rr.Code)
	}
}
