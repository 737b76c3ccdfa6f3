package middleware

import (
	"net/http"
	"strconv"

	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"

	"lexivo/pkg/logger"
	"lexivo/pkg/response"
)

// UserRateLimiter limits requests per authenticated user. rateFormatted uses
// limiter's format ("20-M", "100-H"); empty disables limiting. Must run after Auth.
func UserRateLimiter(rateFormatted string) (func(http.Handler) http.Handler, error) {
	if rateFormatted == "" {
		return func(next http.Handler) http.Handler { return next }, nil
	}
	rate, err := limiter.NewRateFromFormatted(rateFormatted)
	if err != nil {
		return nil, err
	}
	instance := limiter.New(memory.NewStore(), rate)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, ok := UserIDFromContext(r.Context())
			if !ok {
				next.ServeHTTP(w, r)
				return
			}
			lctx, err := instance.Increment(r.Context(), "user:"+userID, 1)
			if err != nil {
				logger.Sugar.Warnf("Rate limiter unavailable: %v", err)
				next.ServeHTTP(w, r)
				return
			}
			w.Header().Set("X-RateLimit-Limit", strconv.FormatInt(lctx.Limit, 10))
			w.Header().Set("X-RateLimit-Remaining", strconv.FormatInt(lctx.Remaining, 10))
			w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(lctx.Reset, 10))
			if lctx.Reached {
				response.Error(w, http.StatusTooManyRequests, response.CodeRateLimited, "Rate limit exceeded, try again later")
				return
			}
			next.ServeHTTP(w, r)
		})
	}, nil
}
