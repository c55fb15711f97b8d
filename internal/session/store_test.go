package session

import (
	"fmt"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/ashureev/campusguide/internal/domain"
)

func userTurn(s string) domain.Turn {
	return domain.Turn{Role: domain.RoleUser, Content: s}
}

func TestStoreAppendTrimsToMaxTurns(t *testing.T) {
	t.Parallel()

	s := NewStore()
	for i := 0; i < 20; i++ {
		s.Append("sess", userTurn(strconv.Itoa(i)))
		if n := len(s.History("sess")); n > MaxTurns {
			t.Fatalf("history grew to %d turns after %d appends", n, i+1)
		}
	}

	got := s.History("sess")
	if len(got) != MaxTurns {
		t.Fatalf("expected %d turns, got %d", MaxTurns, len(got))
	}
	if got[0].Content != "14" || got[MaxTurns-1].Content != "19" {
		t.Fatalf("expected most recent turns 14..19, got %q..%q", got[0].Content, got[MaxTurns-1].Content)
	}
}

func TestStoreRecent(t *testing.T) {
	t.Parallel()

	s := NewStore()
	if got := s.Recent("unknown", 2); got != nil {
		t.Fatalf("expected nil for unknown session, got %v", got)
	}

	s.Append("sess", userTurn("a"))
	s.Append("sess", domain.Turn{Role: domain.RoleAssistant, Content: "b"})
	s.Append("sess", userTurn("c"))

	got := s.Recent("sess", 2)
	if len(got) != 2 || got[0].Content != "b" || got[1].Content != "c" {
		t.Fatalf("unexpected recent turns: %+v", got)
	}

	got[0].Content = "mutated"
	if s.Recent("sess", 2)[0].Content != "b" {
		t.Fatal("Recent must return a copy")
	}
}

func TestStoreSessionsAreIsolated(t *testing.T) {
	t.Parallel()

	s := NewStore()
	s.Append("a", userTurn("one"))
	s.Append("b", userTurn("two"))

	if got := s.History("a"); len(got) != 1 || got[0].Content != "one" {
		t.Fatalf("unexpected history for a: %+v", got)
	}
	if s.Len() != 2 {
		t.Fatalf("expected 2 sessions, got %d", s.Len())
	}
	if !s.Reset("a") || s.Reset("a") {
		t.Fatal("Reset should report existence exactly once")
	}
	if s.Len() != 1 {
		t.Fatalf("expected 1 session after reset, got %d", s.Len())
	}
}

func TestStoreSweepIdle(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, time.October, 17, 12, 0, 0, 0, time.UTC)
	s := NewStore()
	s.now = func() time.Time { return now }

	s.Append("old", userTurn("hi"))
	now = now.Add(2 * time.Hour)
	s.Append("fresh", userTurn("hi"))

	if removed := s.SweepIdle(0); removed != 0 {
		t.Fatalf("zero TTL must not evict, removed %d", removed)
	}
	if removed := s.SweepIdle(time.Hour); removed != 1 {
		t.Fatalf("expected 1 idle session removed, got %d", removed)
	}
	if s.History("old") != nil {
		t.Fatal("expected old session to be evicted")
	}
	if len(s.History("fresh")) != 1 {
		t.Fatal("expected fresh session to survive")
	}
}

func TestStoreConcurrentAppend(t *testing.T) {
	t.Parallel()

	s := NewStore()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := fmt.Sprintf("sess-%d", i%5)
			for j := 0; j < 20; j++ {
				s.Append(id, userTurn(strconv.Itoa(j)))
				_ = s.Recent(id, 2)
			}
		}(i)
	}
	wg.Wait()

	for i := 0; i < 5; i++ {
		if n := len(s.History(fmt.Sprintf("sess-%d", i))); n != MaxTurns {
			t.Fatalf("expected %d turns, got %d", MaxTurns, n)
		}
	}
}
