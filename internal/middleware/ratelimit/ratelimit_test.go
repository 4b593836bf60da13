package ratelimit

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"charity/internal/log"
)

func quietLogger() *log.Logger {
	return log.New(log.Config{Level: slog.LevelError, Output: &bytes.Buffer{}})
}

func TestLimiter_AllowWithinWindow(t *testing.T) {
	rl := NewLimiter(Config{RequestsPerMinute: 3, Logger: quietLogger()})
	defer rl.Stop()

	now := time.Now()
	for i := 0; i < 3; i++ {
		if !rl.allowAt("10.0.0.1", now) {
			t.Fatalf("request %d should be allowed", i+1)
		}
	}
	if rl.allowAt("10.0.0.1", now) {
		t.Fatal("fourth request should be rejected")
	}
	if !rl.allowAt("10.0.0.2", now) {
		t.Fatal("other clients have their own window")
	}
	if !rl.allowAt("10.0.0.1", now.Add(time.Minute)) {
		t.Fatal("window should reset after a minute")
	}

	m := rl.GetMetrics()
	if m.TotalHits != 1 || m.Allowed != 5 || m.ClientCount != 2 {
		t.Fatalf("metrics = %+v", m)
	}
}

func TestLimiter_CleanupStaleEntries(t *testing.T) {
	rl := NewLimiter(Config{RequestsPerMinute: 10, Logger: quietLogger()})
	defer rl.Stop()

	now := time.Now()
	rl.allowAt("old", now.Add(-20*time.Minute))
	rl.allowAt("fresh", now)

	if removed := rl.cleanupStaleEntries(now); removed != 1 {
		t.Fatalf("removed = %d, want 1", removed)
	}
	if rl.ActiveClients() != 1 {
		t.Fatalf("ActiveClients = %d, want 1", rl.ActiveClients())
	}
}

func TestLimiter_Middleware(t *testing.T) {
	rl := NewLimiter(Config{RequestsPerMinute: 1, Logger: quietLogger()})
	defer rl.Stop()

	h := rl.Middleware(func(*http.Request) string { return "198.51.100.7" }, nil)(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNoContent) }))

	first := httptest.NewRecorder()
	h.ServeHTTP(first, httptest.NewRequest(http.MethodGet, "/donors", nil))
	if first.Code != http.StatusNoContent {
		t.Fatalf("first status = %d", first.Code)
	}

	second := httptest.NewRecorder()
	h.ServeHTTP(second, httptest.NewRequest(http.MethodGet, "/donors", nil))
	if second.Code != http.StatusTooManyRequests {
		t.Fatalf("second status = %d, want 429", second.Code)
	}
	if second.Header().Get("Retry-After") == "" {
		t.Error("Retry-After header missing")
	}
}

func TestLimiter_StopIsIdempotent(t *testing.T) {
	rl := NewLimiter(DefaultConfig())
	rl.Stop()
	rl.Stop()
}
