package providers

import (
	"context"
	"errors"
	"net/http"

	"github.com/samber/do/v2"

	"github.com/cuepointapp/cuepoint-server/internal/api"
	"github.com/cuepointapp/cuepoint-server/internal/config"
	"github.com/cuepointapp/cuepoint-server/internal/logger"
	"github.com/cuepointapp/cuepoint-server/internal/ratelimit"
	"github.com/cuepointapp/cuepoint-server/internal/service"
)

// Version is stamped at build time with -ldflags.
var Version = "dev"

// HTTPServerHandle wraps http.Server with Shutdownable.
type HTTPServerHandle struct {
	*http.Server
	limiter *ratelimit.KeyedRateLimiter
}

// Shutdown implements do.Shutdownable.
func (h *HTTPServerHandle) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	err := h.Server.Shutdown(ctx)
	h.limiter.Stop()
	return err
}

// ProvideHTTPServer provides the HTTP server.
func ProvideHTTPServer(i do.Injector) (*HTTPServerHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	sseHandle := do.MustInvoke[*SSEManagerHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	services := &api.Services{
		Ingest:   do.MustInvoke[*service.IngestService](i),
		Videos:   do.MustInvoke[*service.VideoService](i),
		Ask:      do.MustInvoke[*service.AskService](i),
		Sessions: do.MustInvoke[*service.SessionService](i),
	}

	limiter := ratelimit.PerMinute(cfg.RateLimit.AskPerMinute, cfg.RateLimit.AskBurst)

	handler := api.NewServer(services, sseHandle.Manager, api.Options{
		Version:     Version,
		CORSOrigins: cfg.Server.CORSOrigins,
		AskLimiter:  limiter,
	}, log.Component("api"))

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start in background
	go func() {
		log.Info("HTTP server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("HTTP server error", "error", err)
		}
	}()

	log.Info("Server running", "addr", srv.Addr)

	return &HTTPServerHandle{Server: srv, limiter: limiter}, nil
}
