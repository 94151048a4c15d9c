package api

import (
	"context"
	"net/http"

	"github.com/okian/hangout/internal/domain/stats"
)

// StatsProvider defines the interface for getting service statistics.
type StatsProvider interface {
	GetStats(ctx context.Context) map[string]interface{}
	Statistics(ctx context.Context) (stats.Stats, error)
}

// StatsHandler handles stats requests.
type StatsHandler struct {
	statsProvider StatsProvider
}

// NewStatsHandler creates a new stats handler.
func NewStatsHandler(statsProvider StatsProvider) *StatsHandler {
	return &StatsHandler{statsProvider: statsProvider}
}

// HandleStats handles GET /stats (operational counters).
func (h *StatsHandler) HandleStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.statsProvider.GetStats(r.Context()))
}

// HandleStatistics handles GET /statistics (category and city distribution).
func (h *StatsHandler) HandleStatistics(w http.ResponseWriter, r *http.Request) {
	const op = "api.statistics"
	s, err := h.statsProvider.Statistics(r.Context())
	if err != nil {
		writeFailure(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, s)
}
