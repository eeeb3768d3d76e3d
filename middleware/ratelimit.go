// Package middleware — RateLimitMiddleware: yazma endpoint'leri için
// IP bazlı istek sınırlama.
//
// Okuma endpoint'leri sınırlanmaz — flood riski yazma tarafındadır
// (sunucu/rol/kanal mutasyonları, ban işlemleri).
package middleware

import (
	"net/http"
	"strconv"

	"github.com/akinalp/agora/pkg"
	"github.com/akinalp/agora/pkg/ratelimit"
)

// RateLimitMiddleware, pkg/ratelimit.Limiter'ı HTTP middleware olarak sarar.
type RateLimitMiddleware struct {
	limiter *ratelimit.Limiter
}

// NewRateLimitMiddleware, constructor.
// limiter nil ise middleware pass-through çalışır (test kolaylığı).
func NewRateLimitMiddleware(limiter *ratelimit.Limiter) *RateLimitMiddleware {
	return &RateLimitMiddleware{limiter: limiter}
}

// Limit, isteğe izin verilmiyorsa 429 + Retry-After döner.
func (m *RateLimitMiddleware) Limit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m.limiter == nil {
			next.ServeHTTP(w, r)
			return
		}

		ip := ratelimit.ExtractIP(r)
		if !m.limiter.Allow(ip) {
			retryAfter := m.limiter.RetryAfterSeconds(ip)
			w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
			pkg.ErrorWithMessage(w, http.StatusTooManyRequests,
				"too many requests, try again in "+ratelimit.FormatRetryMessage(retryAfter))
			return
		}

		next.ServeHTTP(w, r)
	})
}
