package api

import (
	"math"
	"net"
	"net/http"
	"net/netip"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/FocuswithJustin/JuniperSearch/internal/logging"
)

// defaultBurst is used when a limiter is configured without a burst size.
const defaultBurst = 10

// bucket is a token bucket. Callers pass the current time so tests can
// drive it without sleeping.
type bucket struct {
	mu       sync.Mutex
	tokens   float64
	capacity float64
	perSec   float64
	last     time.Time
}

func newBucket(capacity, perSec float64, now time.Time) *bucket {
	return &bucket{tokens: capacity, capacity: capacity, perSec: perSec, last: now}
}

func (b *bucket) refill(now time.Time) {
	elapsed := now.Sub(b.last).Seconds()
	if elapsed <= 0 {
		return
	}
	b.tokens = min(b.capacity, b.tokens+elapsed*b.perSec)
	b.last = now
}

// take spends one token. It returns whether a token was available, how many
// whole tokens are left, and how long until the next token when none was.
func (b *bucket) take(now time.Time) (ok bool, left int, wait time.Duration) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.refill(now)
	if b.tokens >= 1 {
		b.tokens--
		return true, int(b.tokens), 0
	}
	if b.perSec <= 0 {
		return false, 0, time.Duration(math.MaxInt64)
	}
	wait = time.Duration((1 - b.tokens) / b.perSec * float64(time.Second))
	return false, 0, wait
}

func (b *bucket) lastUsed() time.Time {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.last
}

// ClientLimiter rate-limits requests per client address. Buckets idle for
// longer than idleTTL are swept in the background until Stop.
type ClientLimiter struct {
	perMinute int
	burst     int
	idleTTL   time.Duration
	now       func() time.Time

	mu      sync.Mutex
	clients map[string]*bucket

	done chan struct{}
	once sync.Once
}

// NewClientLimiter allows perMinute requests per client with bursts of up
// to burst requests.
func NewClientLimiter(perMinute, burst int) *ClientLimiter {
	if burst <= 0 {
		burst = defaultBurst
	}
	l := &ClientLimiter{
		perMinute: perMinute,
		burst:     burst,
		idleTTL:   5 * time.Minute,
		now:       time.Now,
		clients:   make(map[string]*bucket),
		done:      make(chan struct{}),
	}
	go l.sweepLoop(time.Minute)
	return l
}

// Stop ends the background sweep. It is safe to call more than once.
func (l *ClientLimiter) Stop() {
	l.once.Do(func() { close(l.done) })
}

// Take spends one request for client.
func (l *ClientLimiter) Take(client string) (ok bool, left int, wait time.Duration) {
	now := l.now()

	l.mu.Lock()
	b, found := l.clients[client]
	if !found {
		b = newBucket(float64(l.burst), float64(l.perMinute)/60, now)
		l.clients[client] = b
	}
	l.mu.Unlock()

	return b.take(now)
}

// Clients returns the number of tracked clients.
func (l *ClientLimiter) Clients() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.clients)
}

func (l *ClientLimiter) sweepLoop(every time.Duration) {
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-l.done:
			return
		case <-t.C:
			if n := l.sweep(); n > 0 {
				logging.Debug("rate limiter swept idle clients", "removed", n)
			}
		}
	}
}

// sweep drops idle buckets and returns how many were removed.
func (l *ClientLimiter) sweep() int {
	cutoff := l.now().Add(-l.idleTTL)

	l.mu.Lock()
	defer l.mu.Unlock()
	removed := 0
	for client, b := range l.clients {
		if b.lastUsed().Before(cutoff) {
			delete(l.clients, client)
			removed++
		}
	}
	return removed
}

// Middleware rejects requests over the limit with 429 and a Retry-After
// header. Every response carries X-RateLimit-Limit and X-RateLimit-Remaining.
func (l *ClientLimiter) Middleware(next http.Handler) http.Handler {
	limit := strconv.Itoa(l.perMinute)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		client := clientIP(r)
		ok, left, wait := l.Take(client)

		w.Header().Set("X-RateLimit-Limit", limit)
		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(left))
		if !ok {
			retry := int(math.Ceil(wait.Seconds()))
			w.Header().Set("Retry-After", strconv.Itoa(retry))
			logging.SecurityEvent("rate_limit_exceeded", "api",
				"client_ip", client,
				"path", r.URL.Path)
			respondError(w, http.StatusTooManyRequests, "RATE_LIMIT_EXCEEDED",
				"Rate limit exceeded. Try again in "+strconv.Itoa(retry)+" seconds.")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// clientIP identifies the caller: the first X-Forwarded-For hop, then
// X-Real-IP, then the connection address. Values that are not IP addresses
// are ignored.
func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		if ip, ok := parseIP(first); ok {
			return ip
		}
	}
	if ip, ok := parseIP(r.Header.Get("X-Real-IP")); ok {
		return ip
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	if ip, ok := parseIP(host); ok {
		return ip
	}
	return "unknown"
}

func parseIP(s string) (string, bool) {
	addr, err := netip.ParseAddr(strings.TrimSpace(s))
	if err != nil {
		return "", false
	}
	return addr.Unmap().String(), true
}
