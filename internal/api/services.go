package api

import (
	"github.com/cuepointapp/cuepoint-server/internal/ratelimit"
	"github.com/cuepointapp/cuepoint-server/internal/service"
)

// Services groups the business logic services used by the API server.
type Services struct {
	Ingest   *service.IngestService
	Videos   *service.VideoService
	Ask      *service.AskService
	Sessions *service.SessionService
}

// Options configures server behavior outside the services.
type Options struct {
	Version     string
	CORSOrigins []string
	// AskLimiter throttles POST /api/v1/ask per client IP. Nil disables it.
	AskLimiter *ratelimit.KeyedRateLimiter
}
