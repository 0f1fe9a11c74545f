package v1

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/hrygo/nlcal/server/internal/observability"
)

// StatsResponse is the request counter overview.
type StatsResponse struct {
	*observability.MetricsSnapshot
	SuccessRate float64 `json:"success_rate"`
}

// GetStats returns request counters since startup.
// GET /api/v1/stats
func (s *APIV1Service) GetStats(c echo.Context) error {
	snap := s.Calendar.Metrics().Snapshot()
	return c.JSON(http.StatusOK, StatsResponse{
		MetricsSnapshot: snap,
		SuccessRate:     snap.SuccessRate(),
	})
}

type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version,omitempty"`
}

// Healthz reports liveness.
// GET /healthz
func (s *APIV1Service) Healthz(c echo.Context) error {
	resp := HealthResponse{Status: "ok"}
	if s.Profile != nil {
		resp.Version = s.Profile.Version
	}
	return c.JSON(http.StatusOK, resp)
}
