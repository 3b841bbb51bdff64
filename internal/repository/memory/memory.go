package memory

import (
	"LinkGuard-Backend/internal/domain"
	"LinkGuard-Backend/internal/repository"
	"context"
	"sync"
	"time"
)

// MemStorage is an in-memory Storage implementation used by tests and
// local runs without a database.
type MemStorage struct {
	mu           sync.RWMutex
	shortURLs    map[string]*domain.ShortURL
	clicks       map[int64]*domain.Click
	clickCounter int64
}

func New() *MemStorage {
	return &MemStorage{
		shortURLs: make(map[string]*domain.ShortURL),
		clicks:    make(map[int64]*domain.Click),
	}
}

// --- Short URL Methods ---

func (s *MemStorage) SaveShortURL(_ context.Context, shortURL *domain.ShortURL) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.shortURLs[shortURL.Hash]; exists {
		return repository.ErrHashExists
	}

	if shortURL.CreatedAt.IsZero() {
		shortURL.CreatedAt = time.Now()
	}

	stored := *shortURL
	s.shortURLs[shortURL.Hash] = &stored
	return nil
}

func (s *MemStorage) FindShortURLByHash(_ context.Context, hash string) (*domain.ShortURL, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	shortURL, ok := s.shortURLs[hash]
	if !ok {
		return nil, repository.ErrHashNotFound
	}

	found := *shortURL
	return &found, nil
}

func (s *MemStorage) UpdateShortURLValidation(_ context.Context, hash string, state domain.ValidationState) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	shortURL, ok := s.shortURLs[hash]
	if !ok {
		return repository.ErrHashNotFound
	}

	shortURL.ValidationState = state
	return nil
}

func (s *MemStorage) UpdateShortURLGeoLocation(_ context.Context, hash string, geo domain.GeoLocation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	shortURL, ok := s.shortURLs[hash]
	if !ok {
		return repository.ErrHashNotFound
	}

	ip, country := geo.IP, geo.Country
	shortURL.CreatorIP = &ip
	shortURL.CreatorCountry = &country
	return nil
}

// --- Click Methods ---

func (s *MemStorage) SaveClick(_ context.Context, click *domain.Click) (*domain.Click, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.clickCounter++
	stored := *click
	stored.ID = s.clickCounter
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = time.Now()
	}
	s.clicks[stored.ID] = &stored

	saved := stored
	return &saved, nil
}

func (s *MemStorage) UpdateClickGeoLocation(_ context.Context, clickID int64, geo domain.GeoLocation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	click, ok := s.clicks[clickID]
	if !ok {
		return repository.ErrClickNotFound
	}

	ip, country := geo.IP, geo.Country
	click.IP = &ip
	click.Country = &country
	return nil
}

func (s *MemStorage) UpdateClickBrowserPlatform(_ context.Context, clickID int64, bp domain.BrowserPlatform) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	click, ok := s.clicks[clickID]
	if !ok {
		return repository.ErrClickNotFound
	}

	browser, platform := bp.Browser, bp.Platform
	click.Browser = &browser
	click.Platform = &platform
	return nil
}

func (s *MemStorage) CountClicks(_ context.Context, hash string, createdAfter time.Time) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var count int64
	for _, click := range s.clicks {
		if click.Hash == hash && click.CreatedAt.After(createdAfter) {
			count++
		}
	}
	return count, nil
}

// --- Analytics Methods ---

func (s *MemStorage) GetClickStats(_ context.Context, hash string) (*domain.ClickStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.shortURLs[hash]; !ok {
		return nil, repository.ErrHashNotFound
	}

	stats := &domain.ClickStats{
		ByBrowser:  make(map[string]int64),
		ByPlatform: make(map[string]int64),
		ByCountry:  make(map[string]int64),
	}

	for _, click := range s.clicks {
		if click.Hash != hash {
			continue
		}
		stats.Total++
		stats.ByBrowser[orUnknown(click.Browser)]++
		stats.ByPlatform[orUnknown(click.Platform)]++
		stats.ByCountry[orUnknown(click.Country)]++
	}

	return stats, nil
}

func orUnknown(v *string) string {
	if v == nil || *v == "" {
		return "unknown"
	}
	return *v
}
