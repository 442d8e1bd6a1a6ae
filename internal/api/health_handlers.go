package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
)

func (s *Server) registerHealthRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "healthCheck",
		Method:      http.MethodGet,
		Path:        "/health",
		Summary:     "Health check",
		Description: "Returns server health status with component checks",
		Tags:        []string{"Health"},
	}, s.handleHealthCheck)
}

// ComponentHealth describes the health of a single component.
type ComponentHealth struct {
	Status  string `json:"status" doc:"Component status: healthy, degraded, or unhealthy"`
	Latency string `json:"latency,omitempty" doc:"Response time for this component"`
	Message string `json:"message,omitempty" doc:"Additional status information"`
}

// HealthResponse contains health check data in API responses.
type HealthResponse struct {
	Status     string                     `json:"status" doc:"Overall status: healthy, degraded, or unhealthy"`
	Version    string                     `json:"version" doc:"Server version"`
	Components map[string]ComponentHealth `json:"components" doc:"Individual component statuses"`
}

// HealthOutput wraps the health response for Huma.
type HealthOutput struct {
	Body HealthResponse
}

func (s *Server) handleHealthCheck(ctx context.Context, _ *struct{}) (*HealthOutput, error) {
	components := map[string]ComponentHealth{
		"catalog": s.checkCatalog(ctx),
		"index":   s.checkIndex(),
		"sse":     s.checkSSEManager(),
	}

	overall := "healthy"
	for _, c := range components {
		switch c.Status {
		case "unhealthy":
			overall = "unhealthy"
		case "degraded":
			if overall == "healthy" {
				overall = "degraded"
			}
		}
	}

	return &HealthOutput{
		Body: HealthResponse{
			Status:     overall,
			Version:    s.opts.Version,
			Components: components,
		},
	}, nil
}

// checkCatalog reads the video catalog.
func (s *Server) checkCatalog(ctx context.Context) ComponentHealth {
	if s.services == nil || s.services.Videos == nil {
		return ComponentHealth{
			Status:  "degraded",
			Message: "catalog not configured",
		}
	}

	start := time.Now()
	count, err := s.services.Videos.VideoCount(ctx)
	latency := time.Since(start)

	if err != nil {
		s.logger.Warn("health check: catalog unreachable", "error", err)
		return ComponentHealth{
			Status:  "unhealthy",
			Latency: latency.String(),
			Message: "catalog unreachable",
		}
	}

	// Reachable but empty means nothing can be answered yet.
	if count == 0 {
		return ComponentHealth{
			Status:  "degraded",
			Latency: latency.String(),
			Message: "no videos ingested",
		}
	}

	return ComponentHealth{
		Status:  "healthy",
		Latency: latency.String(),
		Message: fmt.Sprintf("%d videos", count),
	}
}

// checkIndex reads the passage index.
func (s *Server) checkIndex() ComponentHealth {
	if s.services == nil || s.services.Videos == nil {
		return ComponentHealth{
			Status:  "degraded",
			Message: "index not configured",
		}
	}

	start := time.Now()
	count, err := s.services.Videos.PassageCount()
	latency := time.Since(start)

	if err != nil {
		s.logger.Warn("health check: index unreachable", "error", err)
		return ComponentHealth{
			Status:  "unhealthy",
			Latency: latency.String(),
			Message: "index unreachable",
		}
	}
	if count == 0 {
		return ComponentHealth{
			Status:  "degraded",
			Latency: latency.String(),
			Message: "no passages indexed",
		}
	}

	return ComponentHealth{
		Status:  "healthy",
		Latency: latency.String(),
		Message: fmt.Sprintf("%d passages", count),
	}
}

// checkSSEManager reports the event stream's connected clients.
func (s *Server) checkSSEManager() ComponentHealth {
	if s.sseManager == nil {
		return ComponentHealth{
			Status:  "degraded",
			Message: "SSE manager not configured",
		}
	}

	return ComponentHealth{
		Status:  "healthy",
		Message: formatSSEStatus(s.sseManager.ClientCount()),
	}
}

func formatSSEStatus(count int) string {
	switch count {
	case 0:
		return "no connected clients"
	case 1:
		return "1 connected client"
	default:
		return fmt.Sprintf("%d connected clients", count)
	}
}
