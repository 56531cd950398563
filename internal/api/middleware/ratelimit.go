package middleware

import (
	"net/http"

	"golang.org/x/time/rate"

	"github.com/talentlink/matchengine/internal/api/response"
)

// RateLimit returns a middleware enforcing a global requests-per-second cap
// with a burst of the same size. Use 0 or negative to disable.
func RateLimit(perSecond int) func(http.Handler) http.Handler {
	if perSecond <= 0 {
		return func(next http.Handler) http.Handler {
			return next
		}
	}

	limiter := rate.NewLimiter(rate.Limit(perSecond), perSecond)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.Allow() {
				response.RespondTooManyRequests(w, "rate limit exceeded, retry later")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
