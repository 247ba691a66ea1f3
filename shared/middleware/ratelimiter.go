package middleware

import (
	"net/http"

	"github.com/textchan-dev/textchan/shared/logger"
	"github.com/textchan-dev/textchan/shared/middleware/ratelimiter"
	"github.com/textchan-dev/textchan/shared/utils"
)

// RateLimit rejects requests with 429 once the bucket for the identity
// returned by getIdentity is empty. A nil limiter disables the check.
func RateLimit(rl *ratelimiter.KeyedRateLimiter, getIdentity func(r *http.Request) (string, error)) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if rl == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, err := getIdentity(r)
			if err != nil {
				logger.Log.Warn("cannot identify client for rate limiting", "error", err)
				utils.WriteError(w, http.StatusBadRequest, "Cannot identify client")
				return
			}
			if !rl.Allow(identity) {
				utils.WriteError(w, http.StatusTooManyRequests, "Rate limit exceeded, try again later")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// PostingRateLimit limits by client IP.
func PostingRateLimit(rl *ratelimiter.KeyedRateLimiter) func(http.Handler) http.Handler {
	return RateLimit(rl, utils.GetIP)
}
