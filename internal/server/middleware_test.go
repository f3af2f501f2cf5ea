package server

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func reqFromIP(ip string) *http.Request {
	r := httptest.NewRequest("POST", "/api/events", nil)
	r.RemoteAddr = ip + ":12345"
	return r
}

// rateLimitWrap creates a rate-limited handler whose sweep goroutine stops
// when the test finishes.
func rateLimitWrap(t *testing.T, rps float64, burst, maxIPs int, next http.Handler) http.Handler {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	mw, _ := RateLimitMiddleware(ctx, rps, burst, maxIPs)
	return mw(next)
}

func TestRateLimitBurstExhausted(t *testing.T) {
	wrapped := rateLimitWrap(t, 0.001, 2, 10, okHandler())

	for i := 0; i < 2; i++ {
		w := httptest.NewRecorder()
		wrapped.ServeHTTP(w, reqFromIP("1.1.1.1"))
		if w.Code != http.StatusOK {
			t.Fatalf("request %d: expected 200, got %d", i, w.Code)
		}
	}

	w := httptest.NewRecorder()
	wrapped.ServeHTTP(w, reqFromIP("1.1.1.1"))
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", w.Code)
	}
	if got := w.Header().Get("Retry-After"); got != "1" {
		t.Errorf("Retry-After = %q, want 1", got)
	}
	if !strings.Contains(w.Body.String(), "rate limit exceeded") {
		t.Errorf("unexpected body: %s", w.Body.String())
	}

	// Other clients have their own bucket.
	w = httptest.NewRecorder()
	wrapped.ServeHTTP(w, reqFromIP("2.2.2.2"))
	if w.Code != http.StatusOK {
		t.Errorf("second client: expected 200, got %d", w.Code)
	}
}

// An evicted client that returns gets a fresh token bucket.
func TestRateLimitEvictedIPGetsFreshLimiter(t *testing.T) {
	wrapped := rateLimitWrap(t, 100, 1, 2, okHandler())

	w := httptest.NewRecorder()
	wrapped.ServeHTTP(w, reqFromIP("1.1.1.1"))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	w = httptest.NewRecorder()
	wrapped.ServeHTTP(w, reqFromIP("1.1.1.1"))
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", w.Code)
	}

	for _, ip := range []string{"2.2.2.2", "3.3.3.3"} {
		w = httptest.NewRecorder()
		wrapped.ServeHTTP(w, reqFromIP(ip))
		if w.Code != http.StatusOK {
			t.Fatalf("IP %s: expected 200, got %d", ip, w.Code)
		}
	}

	w = httptest.NewRecorder()
	wrapped.ServeHTTP(w, reqFromIP("1.1.1.1"))
	if w.Code != http.StatusOK {
		t.Errorf("evicted IP returning: expected 200, got %d", w.Code)
	}
}

func TestIPLimitersEvictsLeastRecent(t *testing.T) {
	l := newIPLimiters(100, 100, 3)
	now := time.Now()

	for _, ip := range []string{"10.0.0.1", "10.0.0.2", "10.0.0.3"} {
		l.allow(ip, now)
	}
	// Touch the oldest so 10.0.0.2 becomes the eviction candidate.
	l.allow("10.0.0.1", now)
	l.allow("10.0.0.4", now)

	if l.size() != 3 {
		t.Fatalf("expected 3 tracked IPs, got %d", l.size())
	}
	for ip, want := range map[string]bool{"10.0.0.1": true, "10.0.0.2": false, "10.0.0.3": true, "10.0.0.4": true} {
		if _, ok := l.items[ip]; ok != want {
			t.Errorf("%s tracked = %v, want %v", ip, ok, want)
		}
	}
}

func TestIPLimitersSweep(t *testing.T) {
	l := newIPLimiters(100, 100, 10)
	start := time.Now()

	l.allow("10.0.0.1", start)
	l.allow("10.0.0.2", start.Add(staleAfter))

	l.sweep(start.Add(staleAfter + time.Minute))

	if _, ok := l.items["10.0.0.1"]; ok {
		t.Error("stale IP was not swept")
	}
	if _, ok := l.items["10.0.0.2"]; !ok {
		t.Error("recent IP was swept")
	}
}

func TestRateLimitConcurrentAccess(t *testing.T) {
	wrapped := rateLimitWrap(t, 1000, 1000, 50, okHandler())

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			ip := fmt.Sprintf("10.0.%d.%d", id/256, id%256)
			for j := 0; j < 10; j++ {
				w := httptest.NewRecorder()
				wrapped.ServeHTTP(w, reqFromIP(ip))
				if w.Code != http.StatusOK {
					t.Errorf("IP %s: got %d under concurrent load", ip, w.Code)
				}
			}
		}(i)
	}
	wg.Wait()
}

func TestRateLimitSweepStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	_, done := RateLimitMiddleware(ctx, 100, 100, 100)

	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("sweep goroutine did not exit within 2s")
	}
}

func TestGetClientIP(t *testing.T) {
	tests := []struct {
		name   string
		remote string
		header map[string]string
		want   string
	}{
		{"direct", "203.0.113.7:5000", nil, "203.0.113.7"},
		{"untrusted forwarded", "203.0.113.7:5000", map[string]string{"X-Forwarded-For": "1.2.3.4"}, "203.0.113.7"},
		{"proxy forwarded", "127.0.0.1:5000", map[string]string{"X-Forwarded-For": "1.2.3.4, 10.0.0.1"}, "1.2.3.4"},
		{"proxy real ip", "10.0.0.2:5000", map[string]string{"X-Real-IP": " 5.6.7.8 "}, "5.6.7.8"},
		{"no port", "198.51.100.1", nil, "198.51.100.1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", "/", nil)
			r.RemoteAddr = tt.remote
			for k, v := range tt.header {
				r.Header.Set(k, v)
			}
			if got := getClientIP(r); got != tt.want {
				t.Errorf("getClientIP() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSecurityHeaders(t *testing.T) {
	h := SecurityHeadersMiddleware()(okHandler())
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest("GET", "/", nil))

	if got := w.Header().Get("X-Frame-Options"); got != "DENY" {
		t.Errorf("X-Frame-Options = %q", got)
	}
	if got := w.Header().Get("X-Content-Type-Options"); got != "nosniff" {
		t.Errorf("X-Content-Type-Options = %q", got)
	}
	csp := w.Header().Get("Content-Security-Policy")
	for _, want := range []string{"img-src 'self' data: https:", "frame-src https:", "connect-src 'self'"} {
		if !strings.Contains(csp, want) {
			t.Errorf("CSP %q missing %q", csp, want)
		}
	}
}
