package endpoint

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/skillsenselab/asrd/provider"
)

// componentHealth is the per-backend entry in the health response.
type componentHealth struct {
	Name    string         `json:"name"`
	Status  string         `json:"status"`
	Message string         `json:"message,omitempty"`
	Details map[string]any `json:"details,omitempty"`
}

// Health returns a handler that aggregates the readiness of all model
// backends. The overall status is "error" if any backend reports an
// error, "loading" if any backend is still loading, otherwise "ready".
// An error status is reported with HTTP 503.
func Health(device string, backends map[string]provider.Provider) gin.HandlerFunc {
	return func(c *gin.Context) {
		overall := provider.StatusReady
		components := make([]componentHealth, 0, len(backends))

		for name, p := range backends {
			if p == nil {
				continue
			}
			h := checkBackend(c.Request.Context(), p)
			components = append(components, componentHealth{
				Name:    name,
				Status:  h.Status.String(),
				Message: h.Message,
				Details: h.Details,
			})
			if h.Status == provider.StatusError {
				overall = provider.StatusError
			} else if h.Status == provider.StatusLoading && overall != provider.StatusError {
				overall = provider.StatusLoading
			}
		}

		httpStatus := http.StatusOK
		if overall == provider.StatusError {
			httpStatus = http.StatusServiceUnavailable
		}

		c.JSON(httpStatus, gin.H{
			"status":     overall.String(),
			"device":     device,
			"timestamp":  time.Now().UTC().Format(time.RFC3339),
			"components": components,
		})
	}
}

// checkBackend prefers the detailed HealthChecker interface and falls
// back to the boolean availability probe.
func checkBackend(ctx context.Context, p provider.Provider) provider.HealthStatus {
	probeCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	if hc, ok := p.(provider.HealthChecker); ok {
		return hc.Health(probeCtx)
	}
	if p.IsAvailable(probeCtx) {
		return provider.HealthStatus{Status: provider.StatusReady}
	}
	return provider.HealthStatus{Status: provider.StatusError, Message: "backend unreachable"}
}
