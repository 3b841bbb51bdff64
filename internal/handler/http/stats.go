package http

import (
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"LinkGuard-Backend/internal/domain"
	"LinkGuard-Backend/internal/repository"
	"LinkGuard-Backend/pkg/random"
)

// StatsHandler serves aggregated click analytics per hash.
type StatsHandler struct {
	storage repository.Storage
	log     *zap.Logger
}

// NewStatsHandler creates a new analytics handler.
func NewStatsHandler(storage repository.Storage, log *zap.Logger) *StatsHandler {
	return &StatsHandler{
		storage: storage,
		log:     log,
	}
}

// GetStatsResponse is the analytics response body.
type GetStatsResponse struct {
	Hash       string           `json:"hash"`
	Total      int64            `json:"total_clicks"`
	ByBrowser  map[string]int64 `json:"clicks_by_browser"`
	ByPlatform map[string]int64 `json:"clicks_by_platform"`
	ByCountry  map[string]int64 `json:"clicks_by_country"`
	Validation domain.ValidationState `json:"validation"`
}

// GetStats handles GET /api/stats/{hash}.
func (h *StatsHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, h.log, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	hash := strings.TrimPrefix(r.URL.Path, "/api/stats/")
	if !random.HashPattern.MatchString(hash) {
		writeError(w, h.log, http.StatusBadRequest, "Invalid hash format")
		return
	}

	shortURL, err := h.storage.FindShortURLByHash(r.Context(), hash)
	if err != nil {
		if errors.Is(err, repository.ErrHashNotFound) {
			writeError(w, h.log, http.StatusNotFound, "Hash not found")
			return
		}
		h.log.Error("failed to get short url for stats", zap.String("hash", hash), zap.Error(err))
		writeError(w, h.log, http.StatusInternalServerError, "Internal server error")
		return
	}

	stats, err := h.storage.GetClickStats(r.Context(), hash)
	if err != nil {
		h.log.Error("failed to get click stats", zap.String("hash", hash), zap.Error(err))
		writeError(w, h.log, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, h.log, http.StatusOK, GetStatsResponse{
		Hash:       hash,
		Total:      stats.Total,
		ByBrowser:  stats.ByBrowser,
		ByPlatform: stats.ByPlatform,
		ByCountry:  stats.ByCountry,
		Validation: shortURL.ValidationState,
	})
}
