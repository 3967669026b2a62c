package middleware

import (
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/m04kA/SMC-ReservationService/internal/api/handlers"
	"github.com/m04kA/SMC-ReservationService/pkg/clock"
)

// defaultIdleTTL сколько хранится лимитер ключа без запросов
const defaultIdleTTL = 10 * time.Minute

type limiterEntry struct {
	lim      *rate.Limiter
	lastSeen time.Time
}

// RateLimiter ограничивает частоту запросов на пользователя (или IP для анонимных запросов).
// Лимитеры ключей без запросов дольше idleTTL удаляются при очередной проверке
type RateLimiter struct {
	mu        sync.Mutex
	limiters  map[string]*limiterEntry
	rps       rate.Limit
	burst     int
	idleTTL   time.Duration
	lastSweep time.Time
	clock     clock.Clock
}

// NewRateLimiter создает ограничитель с лимитом rps и запасом burst на ключ
func NewRateLimiter(rps float64, burst int) *RateLimiter {
	return &RateLimiter{
		limiters: make(map[string]*limiterEntry),
		rps:      rate.Limit(rps),
		burst:    burst,
		idleTTL:  idleTTL(rps, burst),
		clock:    clock.NewReal(),
	}
}

// idleTTL не меньше времени полного восстановления запаса:
// удалённый лимитер к этому моменту уже неотличим от нового
func idleTTL(rps float64, burst int) time.Duration {
	if rps <= 0 {
		return defaultIdleTTL
	}
	refill := time.Duration(float64(burst) / rps * float64(time.Second))
	if refill > defaultIdleTTL {
		return refill
	}
	return defaultIdleTTL
}

func (l *RateLimiter) allow(key string) bool {
	now := l.clock.Now()

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.lastSweep.IsZero() {
		l.lastSweep = now
	}
	if now.Sub(l.lastSweep) >= l.idleTTL {
		l.sweep(now)
	}

	e, ok := l.limiters[key]
	if !ok {
		e = &limiterEntry{lim: rate.NewLimiter(l.rps, l.burst)}
		l.limiters[key] = e
	}
	e.lastSeen = now
	return e.lim.AllowN(now, 1)
}

// sweep удаляет лимитеры, простаивающие дольше idleTTL. Вызывается под l.mu
func (l *RateLimiter) sweep(now time.Time) {
	for key, e := range l.limiters {
		if now.Sub(e.lastSeen) >= l.idleTTL {
			delete(l.limiters, key)
		}
	}
	l.lastSweep = now
}

// size количество отслеживаемых ключей
func (l *RateLimiter) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.limiters)
}

// Middleware отклоняет запросы сверх лимита с кодом 429
func (l *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !l.allow(clientKey(r)) {
			handlers.RespondTooManyRequests(w)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func clientKey(r *http.Request) string {
	if userID, ok := GetUserID(r.Context()); ok {
		return "user:" + strconv.FormatInt(userID, 10)
	}
	if raw := r.Header.Get(HeaderUserID); raw != "" {
		return "user:" + raw
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	return "ip:" + host
}
