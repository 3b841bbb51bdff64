// Package cached decorates a Storage with an expiring LRU in front of the
// hot short URL read on the redirect path. Writes touching a hash remove
// its cache entry, so a reader never sees a stale validation or
// geolocation verdict longer than one read-after-write race.
package cached

import (
	"context"
	"time"

	lru "github.com/hashicorp/golang-lru/v2/expirable"

	"LinkGuard-Backend/internal/domain"
	"LinkGuard-Backend/internal/repository"
)

// Storage wraps an inner repository.Storage with a read cache keyed by
// hash.
type Storage struct {
	inner repository.Storage
	cache *lru.LRU[string, domain.ShortURL]
}

// New creates the caching decorator.
func New(inner repository.Storage, size int, ttl time.Duration) *Storage {
	return &Storage{
		inner: inner,
		cache: lru.NewLRU[string, domain.ShortURL](size, nil, ttl),
	}
}

// --- Short URL Methods ---

func (s *Storage) SaveShortURL(ctx context.Context, shortURL *domain.ShortURL) error {
	if err := s.inner.SaveShortURL(ctx, shortURL); err != nil {
		return err
	}
	// A colliding hash may have a stale entry from a previous lifetime.
	s.cache.Remove(shortURL.Hash)
	return nil
}

func (s *Storage) FindShortURLByHash(ctx context.Context, hash string) (*domain.ShortURL, error) {
	if cached, ok := s.cache.Get(hash); ok {
		found := cached
		return &found, nil
	}

	shortURL, err := s.inner.FindShortURLByHash(ctx, hash)
	if err != nil {
		return nil, err
	}

	s.cache.Add(hash, *shortURL)
	return shortURL, nil
}

func (s *Storage) UpdateShortURLValidation(ctx context.Context, hash string, state domain.ValidationState) error {
	if err := s.inner.UpdateShortURLValidation(ctx, hash, state); err != nil {
		return err
	}
	s.cache.Remove(hash)
	return nil
}

func (s *Storage) UpdateShortURLGeoLocation(ctx context.Context, hash string, geo domain.GeoLocation) error {
	if err := s.inner.UpdateShortURLGeoLocation(ctx, hash, geo); err != nil {
		return err
	}
	s.cache.Remove(hash)
	return nil
}

// --- Click Methods (pass-through, clicks are not cached) ---

func (s *Storage) SaveClick(ctx context.Context, click *domain.Click) (*domain.Click, error) {
	return s.inner.SaveClick(ctx, click)
}

func (s *Storage) UpdateClickGeoLocation(ctx context.Context, clickID int64, geo domain.GeoLocation) error {
	return s.inner.UpdateClickGeoLocation(ctx, clickID, geo)
}

func (s *Storage) UpdateClickBrowserPlatform(ctx context.Context, clickID int64, bp domain.BrowserPlatform) error {
	return s.inner.UpdateClickBrowserPlatform(ctx, clickID, bp)
}

func (s *Storage) CountClicks(ctx context.Context, hash string, createdAfter time.Time) (int64, error) {
	return s.inner.CountClicks(ctx, hash, createdAfter)
}

// --- Analytics Methods ---

func (s *Storage) GetClickStats(ctx context.Context, hash string) (*domain.ClickStats, error) {
	return s.inner.GetClickStats(ctx, hash)
}
