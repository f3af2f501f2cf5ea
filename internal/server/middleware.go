package server

import (
	"container/list"
	"context"
	"encoding/json"
	"log"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// SecurityHeadersMiddleware adds security headers to all responses.
func SecurityHeadersMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Frame-Options", "DENY")
			w.Header().Set("X-Content-Type-Options", "nosniff")
			w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
			// Image and video cards load remote media; connect-src 'self'
			// covers the same-origin websocket.
			w.Header().Set("Content-Security-Policy",
				"default-src 'self'; "+
					"script-src 'self'; "+
					"style-src 'self'; "+
					"img-src 'self' data: https:; "+
					"frame-src https:; "+
					"connect-src 'self'; "+
					"frame-ancestors 'none'")

			next.ServeHTTP(w, r)
		})
	}
}

const (
	// evictionLogInterval is the minimum time between eviction log messages.
	evictionLogInterval = 30 * time.Second
	sweepInterval       = 5 * time.Minute
	staleAfter          = 10 * time.Minute
)

// ipEntry is a per-IP token bucket and its position in the LRU list.
type ipEntry struct {
	ip       string
	limiter  *rate.Limiter
	lastSeen time.Time
}

// ipLimiters holds token buckets for at most maxIPs clients, evicting the
// least recently seen client when full.
type ipLimiters struct {
	mu     sync.Mutex
	rps    rate.Limit
	burst  int
	maxIPs int
	items  map[string]*list.Element
	order  *list.List // front = most recent, back = oldest

	lastEvictLog time.Time
	evictCount   int
}

func newIPLimiters(rps float64, burst, maxIPs int) *ipLimiters {
	if maxIPs <= 0 {
		maxIPs = 10000
	}
	return &ipLimiters{
		rps:    rate.Limit(rps),
		burst:  burst,
		maxIPs: maxIPs,
		items:  make(map[string]*list.Element),
		order:  list.New(),
	}
}

func (l *ipLimiters) allow(ip string, now time.Time) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if elem, ok := l.items[ip]; ok {
		l.order.MoveToFront(elem)
		entry := elem.Value.(*ipEntry)
		entry.lastSeen = now
		return entry.limiter.AllowN(now, 1)
	}

	if l.order.Len() >= l.maxIPs {
		l.evictOldest(now)
	}
	entry := &ipEntry{ip: ip, limiter: rate.NewLimiter(l.rps, l.burst), lastSeen: now}
	l.items[ip] = l.order.PushFront(entry)
	return entry.limiter.AllowN(now, 1)
}

func (l *ipLimiters) evictOldest(now time.Time) {
	back := l.order.Back()
	if back == nil {
		return
	}
	l.order.Remove(back)
	delete(l.items, back.Value.(*ipEntry).ip)
	l.evictCount++
	if now.Sub(l.lastEvictLog) >= evictionLogInterval {
		log.Printf("[RateLimit] Evicted %d least-recent IP(s) (at capacity: %d IPs)", l.evictCount, l.maxIPs)
		l.lastEvictLog = now
		l.evictCount = 0
	}
}

// sweep drops clients idle for longer than staleAfter. LRU order tracks
// access recency, so every entry is checked.
func (l *ipLimiters) sweep(now time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for e := l.order.Back(); e != nil; {
		prev := e.Prev()
		if entry := e.Value.(*ipEntry); now.Sub(entry.lastSeen) > staleAfter {
			l.order.Remove(e)
			delete(l.items, entry.ip)
		}
		e = prev
	}
}

func (l *ipLimiters) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.order.Len()
}

// RateLimitMiddleware limits requests with a per-IP token bucket. rps is the
// rate in requests per second, burst the bucket size, and maxIPs the number of
// clients tracked before the least recently seen one is evicted.
//
// The sweep goroutine runs until ctx is cancelled; the returned channel is
// closed when it exits.
func RateLimitMiddleware(ctx context.Context, rps float64, burst int, maxIPs int) (func(http.Handler) http.Handler, <-chan struct{}) {
	limiters := newIPLimiters(rps, burst, maxIPs)

	done := make(chan struct{})
	go func() {
		defer close(done)
		ticker := time.NewTicker(sweepInterval)
		defer ticker.Stop()
		for {
			select {
			case now := <-ticker.C:
				limiters.sweep(now)
			case <-ctx.Done():
				return
			}
		}
	}()

	middleware := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiters.allow(getClientIP(r), time.Now()) {
				w.Header().Set("Retry-After", "1")
				writeJSONError(w, http.StatusTooManyRequests, "rate limit exceeded")
				return
			}
			next.ServeHTTP(w, r)
		})
	}

	return middleware, done
}

// getClientIP extracts the client IP from the request.
// It only trusts X-Forwarded-For / X-Real-IP when the immediate peer is a
// loopback or private address (i.e., behind a reverse proxy).
func getClientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}

	peerIP := net.ParseIP(host)
	trustedProxy := peerIP != nil && (peerIP.IsLoopback() || peerIP.IsPrivate())

	if trustedProxy {
		if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
			first, _, _ := strings.Cut(xff, ",")
			return strings.TrimSpace(first)
		}
		if xri := r.Header.Get("X-Real-IP"); xri != "" {
			return strings.TrimSpace(xri)
		}
	}

	if peerIP != nil {
		return peerIP.String()
	}
	return host
}

func writeJSONError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}
