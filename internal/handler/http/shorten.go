package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"LinkGuard-Backend/internal/repository"
	"LinkGuard-Backend/internal/service"
)

// ShortenHandler handles short URL creation.
type ShortenHandler struct {
	shortener *service.ShortenerService
	log       *zap.Logger
	baseURL   string
}

// NewShortenHandler creates a new creation handler.
func NewShortenHandler(shortener *service.ShortenerService, log *zap.Logger, baseURL string) *ShortenHandler {
	return &ShortenHandler{
		shortener: shortener,
		log:       log,
		baseURL:   baseURL,
	}
}

// CreateShortURLRequest is the creation request body.
type CreateShortURLRequest struct {
	URL string `json:"url"`
}

// CreateShortURLResponse is the creation response body. Validation starts
// out pending; clients polling the hash before it completes see a
// still-validating signal on redirect.
type CreateShortURLResponse struct {
	Hash     string `json:"hash"`
	ShortURL string `json:"short_url"`
	Target   string `json:"target"`
}

// Create handles POST /api/shorten.
func (h *ShortenHandler) Create(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, h.log, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var req CreateShortURLRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log.Debug("invalid create request", zap.Error(err))
		writeError(w, h.log, http.StatusBadRequest, "Invalid request format")
		return
	}

	if req.URL == "" {
		writeError(w, h.log, http.StatusBadRequest, "URL is required")
		return
	}

	shortURL, err := h.shortener.Create(r.Context(), req.URL, extractIPAddress(r))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidTargetURL):
			writeError(w, h.log, http.StatusBadRequest, "Invalid target URL")
		case errors.Is(err, repository.ErrHashExists):
			writeError(w, h.log, http.StatusConflict, "Hash collision, please retry")
		default:
			h.log.Error("failed to create short url", zap.Error(err))
			writeError(w, h.log, http.StatusInternalServerError, "Internal server error")
		}
		return
	}

	writeJSON(w, h.log, http.StatusCreated, CreateShortURLResponse{
		Hash:     shortURL.Hash,
		ShortURL: fmt.Sprintf("%s/%s", h.baseURL, shortURL.Hash),
		Target:   shortURL.Target,
	})
}
