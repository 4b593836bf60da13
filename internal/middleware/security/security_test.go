package security

import (
	"bytes"
	"crypto/tls"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"charity/internal/log"
)

func newTestDetector(buf *bytes.Buffer) *Detector {
	return NewDetector(log.New(log.Config{Level: slog.LevelInfo, Output: buf}))
}

func TestDetector_Inspect(t *testing.T) {
	d := newTestDetector(&bytes.Buffer{})

	tests := []struct {
		name       string
		method     string
		target     string
		userAgent  string
		suspicious bool
	}{
		{"landing page", http.MethodGet, "/", "Mozilla/5.0", false},
		{"grid search", http.MethodGet, "/ui/grid?sort=amount&q=rahman", "Mozilla/5.0", false},
		{"path traversal", http.MethodGet, "/static/../../etc/passwd", "Mozilla/5.0", true},
		{"dotenv probe", http.MethodGet, "/.env", "Mozilla/5.0", true},
		{"script in query", http.MethodGet, "/ui/grid?q=%3Cscript%3E", "Mozilla/5.0", true},
		{"scanner agent", http.MethodGet, "/", "sqlmap/1.7", true},
		{"trace method", "TRACE", "/", "Mozilla/5.0", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(tt.method, tt.target, nil)
			r.Header.Set("User-Agent", tt.userAgent)
			if got := d.DetectSuspiciousRequest(r); got != tt.suspicious {
				t.Errorf("DetectSuspiciousRequest() = %v, want %v (reason %q)", got, tt.suspicious, d.Inspect(r))
			}
		})
	}
}

func TestDetector_MiddlewareBlocksTrace(t *testing.T) {
	var buf bytes.Buffer
	d := newTestDetector(&buf)
	called := false
	h := d.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { called = true }))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest("TRACE", "/", nil))

	if called {
		t.Error("TRACE must not reach the handler")
	}
	if rr.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405", rr.Code)
	}
	if !strings.Contains(buf.String(), "Suspicious request") {
		t.Errorf("expected warning log, got %q", buf.String())
	}
	if m := d.GetMetrics(); m.BlockedRequests != 1 || m.SuspiciousRequests != 1 {
		t.Errorf("metrics = %+v", m)
	}
}

func TestDetector_MiddlewarePassesProbesThrough(t *testing.T) {
	d := newTestDetector(&bytes.Buffer{})
	h := d.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { http.NotFound(w, r) }))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/wp-admin", nil))
	if rr.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404 from the router", rr.Code)
	}
}

func TestDetector_ExtractClientIP(t *testing.T) {
	d := newTestDetector(&bytes.Buffer{})

	tests := []struct {
		name       string
		remoteAddr string
		xff        string
		want       string
	}{
		{"direct public peer ignores XFF", "203.0.113.5:4000", "198.51.100.1", "203.0.113.5"},
		{"trusted proxy uses first XFF", "10.0.0.2:4000", "198.51.100.1, 10.0.0.3", "198.51.100.1"},
		{"trusted proxy with garbage XFF", "10.0.0.2:4000", "not-an-ip", "10.0.0.2"},
		{"no port", "192.0.2.1", "", "192.0.2.1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			r.RemoteAddr = tt.remoteAddr
			if tt.xff != "" {
				r.Header.Set("X-Forwarded-For", tt.xff)
			}
			if got := d.ExtractClientIP(r); got != tt.want {
				t.Errorf("ExtractClientIP() = %q, want %q", got, tt.want)
			}
		})
	}

	if err := d.AddTrustedProxy("not-a-cidr"); err == nil {
		t.Error("AddTrustedProxy should reject invalid CIDR")
	}
}

func TestHeadersMiddleware(t *testing.T) {
	h := NewHeadersMiddleware(DefaultHeadersConfig()).Middleware(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

	csp := rr.Header().Get("Content-Security-Policy")
	if !strings.Contains(csp, "script-src 'self' https://unpkg.com") {
		t.Errorf("CSP missing htmx origin: %q", csp)
	}
	if rr.Header().Get("X-Frame-Options") != "DENY" {
		t.Errorf("X-Frame-Options = %q", rr.Header().Get("X-Frame-Options"))
	}
	if rr.Header().Get("Strict-Transport-Security") != "" {
		t.Error("HSTS must not be sent over plain HTTP")
	}

	tlsReq := httptest.NewRequest(http.MethodGet, "/", nil)
	tlsReq.TLS = &tls.ConnectionState{}
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, tlsReq)
	if got := rr.Header().Get("Strict-Transport-Security"); got != "max-age=31536000; includeSubDomains" {
		t.Errorf("HSTS = %q", got)
	}
}
