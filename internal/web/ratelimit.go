package web

import (
	"net"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/hpungsan/algenova/internal/errors"
)

// clientIdleTTL is how long an idle client's bucket is kept.
const clientIdleTTL = 10 * time.Minute

type clientBucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// clientLimiter is a token bucket per client address.
type clientLimiter struct {
	mu        sync.Mutex
	perMinute int
	clients   map[string]*clientBucket
	lastSweep time.Time
	now       func() time.Time
}

func newClientLimiter(perMinute int) *clientLimiter {
	if perMinute <= 0 {
		perMinute = 100
	}
	return &clientLimiter{
		perMinute: perMinute,
		clients:   make(map[string]*clientBucket),
		now:       time.Now,
	}
}

func (l *clientLimiter) allow(client string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if now.Sub(l.lastSweep) > clientIdleTTL {
		for k, b := range l.clients {
			if now.Sub(b.lastSeen) > clientIdleTTL {
				delete(l.clients, k)
			}
		}
		l.lastSweep = now
	}

	b, ok := l.clients[client]
	if !ok {
		b = &clientBucket{
			limiter: rate.NewLimiter(rate.Every(time.Minute/time.Duration(l.perMinute)), l.perMinute),
		}
		l.clients[client] = b
	}
	b.lastSeen = now
	return b.limiter.AllowN(now, 1)
}

func (l *clientLimiter) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !l.allow(clientAddr(r)) {
			renderError(w, errors.NewRateLimited(l.perMinute))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// clientAddr is the request's remote host without the port.
func clientAddr(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
