package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"LinkGuard-Backend/internal/domain"
	"LinkGuard-Backend/internal/events"
	"LinkGuard-Backend/internal/queue"
	"LinkGuard-Backend/internal/repository"
	"LinkGuard-Backend/pkg/random"
)

// BrowserPlatformParser identifies browser and platform from a raw
// User-Agent string. It never fails: unknown input maps to sentinel
// values.
type BrowserPlatformParser interface {
	Identify(userAgent string) domain.BrowserPlatform
}

// RedirectionService decides whether a redirect request is admitted and
// logs the click when it is. Checks run cheapest first: hash format, then
// the rate limit, then the storage lookup with its validation verdict.
type RedirectionService struct {
	storage  repository.Storage
	limiter  *RedirectionLimiter
	geoQueue *queue.Queue[events.GeoLocationEvent]
	uaParser BrowserPlatformParser
	log      *zap.Logger
}

// NewRedirection creates the redirection orchestrator.
func NewRedirection(
	storage repository.Storage,
	limiter *RedirectionLimiter,
	geoQueue *queue.Queue[events.GeoLocationEvent],
	uaParser BrowserPlatformParser,
	log *zap.Logger,
) *RedirectionService {
	return &RedirectionService{
		storage:  storage,
		limiter:  limiter,
		geoQueue: geoQueue,
		uaParser: uaParser,
		log:      log,
	}
}

// Redirect resolves a hash to its redirection target. On admission it
// persists a click, fills browser/platform from the User-Agent, and
// enqueues a best-effort geolocation event for the click.
func (s *RedirectionService) Redirect(ctx context.Context, hash, clientIP, userAgent string) (*domain.Redirection, error) {
	if !random.HashPattern.MatchString(hash) {
		return nil, ErrInvalidHashFormat
	}

	// Rate limit before any read of the short URL row, so abusive
	// traffic is shed without touching validation state.
	overLimit, err := s.limiter.IsOverLimit(ctx, hash)
	if err != nil {
		return nil, fmt.Errorf("failed to check rate limit: %w", err)
	}
	if overLimit {
		return nil, ErrTooManyRequests
	}

	shortURL, err := s.storage.FindShortURLByHash(ctx, hash)
	if err != nil {
		if errors.Is(err, repository.ErrHashNotFound) {
			return nil, ErrHashNotFound
		}
		return nil, fmt.Errorf("failed to find short url: %w", err)
	}

	switch {
	case !shortURL.Validated:
		return nil, ErrNotValidated
	case !shortURL.Safe:
		return nil, ErrUnsafe
	case !shortURL.Reachable:
		return nil, ErrUnreachable
	}

	click := &domain.Click{Hash: hash}
	click, err = s.storage.SaveClick(ctx, click)
	if err != nil {
		return nil, fmt.Errorf("failed to save click: %w", err)
	}

	// Enrichment below is best-effort: the redirect already succeeded.
	if userAgent != "" {
		bp := s.uaParser.Identify(userAgent)
		if err := s.storage.UpdateClickBrowserPlatform(ctx, click.ID, bp); err != nil {
			s.log.Warn("failed to record browser/platform",
				zap.Int64("click_id", click.ID),
				zap.Error(err),
			)
		}
	}

	if clientIP != "" {
		if !s.geoQueue.TryEnqueue(events.ForClick(clientIP, click.ID)) {
			s.log.Warn("click geolocation event dropped", zap.Int64("click_id", click.ID))
		}
	}

	s.log.Info("redirect admitted",
		zap.String("hash", hash),
		zap.Int64("click_id", click.ID),
	)

	return &domain.Redirection{
		Target: shortURL.Target,
		Mode:   shortURL.RedirectionMode,
	}, nil
}
