package api

import (
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// UserIDHeader идентификатор пользователя, уже проверенный шлюзом
const UserIDHeader = "X-User-ID"

// userHandler обработчик с идентификатором пользователя
type userHandler func(w http.ResponseWriter, r *http.Request, userID int64)

func (a *API) withUser(next userHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		raw := strings.TrimSpace(r.Header.Get(UserIDHeader))
		userID, err := strconv.ParseInt(raw, 10, 64)
		if raw == "" || err != nil || userID <= 0 {
			a.Response(w, http.StatusUnauthorized, errorBody{Error: "missing or invalid " + UserIDHeader})
			return
		}
		next(w, r, userID)
	}
}

// customerLimiter ограничение частоты бронирований на клиента
type customerLimiter struct {
	mu       sync.Mutex
	limiters map[int64]*rate.Limiter
	limit    rate.Limit
	burst    int
}

func newCustomerLimiter(perWindow int, window time.Duration) *customerLimiter {
	if perWindow <= 0 {
		return nil
	}
	return &customerLimiter{
		limiters: make(map[int64]*rate.Limiter),
		limit:    rate.Every(window / time.Duration(perWindow)),
		burst:    perWindow,
	}
}

func (l *customerLimiter) allow(customerID int64) bool {
	if l == nil {
		return true
	}

	l.mu.Lock()
	limiter, ok := l.limiters[customerID]
	if !ok {
		limiter = rate.NewLimiter(l.limit, l.burst)
		l.limiters[customerID] = limiter
	}
	l.mu.Unlock()

	return limiter.Allow()
}

func (a *API) limitBookings(next userHandler) userHandler {
	return func(w http.ResponseWriter, r *http.Request, userID int64) {
		if !a.limiter.allow(userID) {
			a.logger.Warn("Booking rate limit exceeded", zap.Int64("customer_id", userID))
			w.Header().Set("Retry-After", "60")
			a.Response(w, http.StatusTooManyRequests, errorBody{Error: "too many booking attempts, try again later"})
			return
		}
		next(w, r, userID)
	}
}
