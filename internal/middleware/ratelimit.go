package middleware

import (
	"net"
	"net/http"
	"time"

	"github.com/go-chi/httprate"
	"go.uber.org/zap"

	"github.com/portfolio-chat/backend/pkg/utils"
)

const rateLimited = "Too many requests from this IP, please try again later."

// rateLimitHeaders 使用 IETF 草案的 RateLimit-* 头部，不带 X- 前缀
var rateLimitHeaders = httprate.ResponseHeaders{
	Limit:      "RateLimit-Limit",
	Remaining:  "RateLimit-Remaining",
	Reset:      "RateLimit-Reset",
	RetryAfter: "Retry-After",
}

// RateLimiter 按客户端 IP 计数的窗口限流。
type RateLimiter struct {
	limiter *httprate.RateLimiter
}

// NewRateLimiter builds a limiter allowing limit requests per window and client.
// A nil counter keeps the counts in process memory.
func NewRateLimiter(limit int, window time.Duration, counter httprate.LimitCounter, logger *zap.Logger) *RateLimiter {
	logger = logger.With(zap.String("component", "ratelimit"))

	opts := []httprate.Option{
		httprate.WithKeyFuncs(KeyByClientIP),
		httprate.WithResponseHeaders(rateLimitHeaders),
		httprate.WithLimitHandler(func(w http.ResponseWriter, _ *http.Request) {
			utils.RespondError(w, http.StatusTooManyRequests, rateLimited)
		}),
		httprate.WithErrorHandler(func(w http.ResponseWriter, r *http.Request, err error) {
			logger.Error("rate limit key failed", zap.String("path", r.URL.Path), zap.Error(err))
			utils.RespondError(w, http.StatusInternalServerError, "Internal server error")
		}),
	}
	if counter != nil {
		opts = append(opts, httprate.WithLimitCounter(&failOpenCounter{LimitCounter: counter, logger: logger}))
	}

	return &RateLimiter{limiter: httprate.NewRateLimiter(limit, window, opts...)}
}

func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return rl.limiter.Handler(next)
}

// KeyByClientIP keys on the connection address. RemoteAddr only carries a
// forwarded address when the proxy-aware middleware runs ahead of it.
func KeyByClientIP(r *http.Request) (string, error) {
	return ClientIP(r), nil
}

// ClientIP returns the request's remote address without its port.
func ClientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
