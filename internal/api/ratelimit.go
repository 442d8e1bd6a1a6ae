package api

import (
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	domainerrors "github.com/cuepointapp/cuepoint-server/internal/errors"
)

// rateLimitAsk throttles questions per client IP.
func (s *Server) rateLimitAsk(ctx huma.Context, next func(huma.Context)) {
	if s.askLimiter == nil {
		next(ctx)
		return
	}

	key := clientIP(ctx.RemoteAddr())
	if s.askLimiter.Allow(key) {
		next(ctx)
		return
	}

	s.logger.Warn("ask rate limit exceeded", "ip", key)
	ctx.SetHeader("Retry-After", RetryAfterSeconds)
	_ = huma.WriteErr(s.api, ctx, http.StatusTooManyRequests,
		"too many questions, try again later",
		domainerrors.RateLimited("too many questions, try again later"))
}
