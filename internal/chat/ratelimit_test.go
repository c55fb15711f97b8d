package chat

import (
	"testing"
	"time"
)

func TestRateLimiterPerKey(t *testing.T) {
	t.Parallel()

	rl := NewRateLimiter(3, time.Hour)
	for i := 0; i < 3; i++ {
		if !rl.Allow("10.0.0.1") {
			t.Fatalf("request %d should be allowed", i)
		}
	}
	if rl.Allow("10.0.0.1") {
		t.Fatal("fourth request should be throttled")
	}
	if !rl.Allow("10.0.0.2") {
		t.Fatal("other clients must have their own allowance")
	}
}

func TestRateLimiterRefills(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, time.October, 17, 9, 0, 0, 0, time.UTC)
	rl := NewRateLimiter(2, time.Minute)
	rl.now = func() time.Time { return now }

	rl.Allow("k")
	rl.Allow("k")
	if rl.Allow("k") {
		t.Fatal("expected allowance to be exhausted")
	}
	now = now.Add(30 * time.Second)
	if !rl.Allow("k") {
		t.Fatal("expected one token after half the window")
	}
}

func TestRateLimiterSweep(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, time.October, 17, 9, 0, 0, 0, time.UTC)
	rl := NewRateLimiter(5, time.Minute)
	rl.now = func() time.Time { return now }

	rl.Allow("stale")
	now = now.Add(time.Hour)
	rl.Allow("active")

	if removed := rl.Sweep(10 * time.Minute); removed != 1 {
		t.Fatalf("expected 1 stale key removed, got %d", removed)
	}
}
