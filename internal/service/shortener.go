package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"LinkGuard-Backend/internal/config"
	"LinkGuard-Backend/internal/domain"
	"LinkGuard-Backend/internal/events"
	"LinkGuard-Backend/internal/queue"
	"LinkGuard-Backend/internal/repository"
	"LinkGuard-Backend/internal/validator"
	"LinkGuard-Backend/pkg/random"
)

// ShortenerService creates short URLs and kicks off their background
// enrichment. The creation write is synchronous; validation and creator
// geolocation are fire-and-forget events that must never block or fail
// the request.
type ShortenerService struct {
	storage         repository.Storage
	validationQueue *queue.Queue[events.URLValidationEvent]
	geoQueue        *queue.Queue[events.GeoLocationEvent]
	config          *config.URLShortener
	log             *zap.Logger
}

// NewShortener creates the creation orchestrator.
func NewShortener(
	storage repository.Storage,
	validationQueue *queue.Queue[events.URLValidationEvent],
	geoQueue *queue.Queue[events.GeoLocationEvent],
	cfg *config.URLShortener,
	log *zap.Logger,
) *ShortenerService {
	return &ShortenerService{
		storage:         storage,
		validationQueue: validationQueue,
		geoQueue:        geoQueue,
		config:          cfg,
		log:             log,
	}
}

// Create persists a short URL for the target and returns it immediately
// with Validated=false. Syntactically invalid URLs are rejected here; the
// deeper reachability/safety verdict arrives later through the validation
// consumer. The hash is random with no collision regeneration - the
// storage unique constraint surfaces a collision as ErrHashExists.
func (s *ShortenerService) Create(ctx context.Context, targetURL string, creatorIP string) (*domain.ShortURL, error) {
	if _, err := validator.ParseTarget(targetURL); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidTargetURL, err)
	}

	hash, err := random.NewHash()
	if err != nil {
		return nil, fmt.Errorf("failed to generate hash: %w", err)
	}

	shortURL := &domain.ShortURL{
		Hash:            hash,
		Target:          targetURL,
		RedirectionMode: s.config.RedirectionMode,
		ValidationState: domain.ValidationState{
			Reachable: false,
			Safe:      false,
			Validated: false,
		},
	}

	if err := s.storage.SaveShortURL(ctx, shortURL); err != nil {
		return nil, fmt.Errorf("failed to save short url: %w", err)
	}

	// Best-effort enqueues: a full queue leaves the short URL usable
	// but possibly validated=false indefinitely.
	if !s.validationQueue.TryEnqueue(events.URLValidationEvent{URL: targetURL, Hash: hash}) {
		s.log.Warn("validation event dropped", zap.String("hash", hash))
	}

	if creatorIP != "" {
		if !s.geoQueue.TryEnqueue(events.ForHash(creatorIP, hash)) {
			s.log.Warn("creator geolocation event dropped", zap.String("hash", hash))
		}
	}

	s.log.Info("created short url",
		zap.String("hash", hash),
		zap.String("target", targetURL),
	)

	return shortURL, nil
}
