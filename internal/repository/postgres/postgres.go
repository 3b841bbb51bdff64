package postgres

import (
	"LinkGuard-Backend/internal/domain"
	"LinkGuard-Backend/internal/repository"
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// PostgresStorage implements the Storage interface for PostgreSQL.
type PostgresStorage struct {
	db  *gorm.DB
	log *zap.Logger
}

// New creates a new PostgreSQL storage instance.
func New(db *gorm.DB, log *zap.Logger) *PostgresStorage {
	return &PostgresStorage{
		db:  db,
		log: log,
	}
}

// --- Short URL Methods ---

// SaveShortURL persists a new short URL. A hash collision surfaces as the
// unique-constraint violation from the database, mapped to ErrHashExists.
func (s *PostgresStorage) SaveShortURL(ctx context.Context, shortURL *domain.ShortURL) error {
	if err := s.db.WithContext(ctx).Create(shortURL).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return repository.ErrHashExists
		}
		s.log.Error("failed to save short url", zap.String("hash", shortURL.Hash), zap.Error(err))
		return fmt.Errorf("failed to save short url: %w", err)
	}

	s.log.Info("saved new short url", zap.String("hash", shortURL.Hash))
	return nil
}

// FindShortURLByHash fetches a short URL by its hash.
func (s *PostgresStorage) FindShortURLByHash(ctx context.Context, hash string) (*domain.ShortURL, error) {
	var shortURL domain.ShortURL

	err := s.db.WithContext(ctx).Where("hash = ?", hash).First(&shortURL).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, repository.ErrHashNotFound
	}
	if err != nil {
		s.log.Error("failed to get short url", zap.String("hash", hash), zap.Error(err))
		return nil, fmt.Errorf("failed to get short url: %w", err)
	}

	return &shortURL, nil
}

// UpdateShortURLValidation writes the validation verdict for a hash. The
// update-by-key statement is the unit of consistency; no surrounding lock.
func (s *PostgresStorage) UpdateShortURLValidation(ctx context.Context, hash string, state domain.ValidationState) error {
	result := s.db.WithContext(ctx).Model(&domain.ShortURL{}).
		Where("hash = ?", hash).
		Updates(map[string]interface{}{
			"reachable": state.Reachable,
			"safe":      state.Safe,
			"validated": state.Validated,
		})
	if result.Error != nil {
		s.log.Error("failed to update validation state", zap.String("hash", hash), zap.Error(result.Error))
		return fmt.Errorf("failed to update validation state: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		return repository.ErrHashNotFound
	}

	return nil
}

// UpdateShortURLGeoLocation writes the creator's geolocation for a hash.
func (s *PostgresStorage) UpdateShortURLGeoLocation(ctx context.Context, hash string, geo domain.GeoLocation) error {
	result := s.db.WithContext(ctx).Model(&domain.ShortURL{}).
		Where("hash = ?", hash).
		Updates(map[string]interface{}{
			"creator_ip":      geo.IP,
			"creator_country": geo.Country,
		})
	if result.Error != nil {
		s.log.Error("failed to update short url geolocation", zap.String("hash", hash), zap.Error(result.Error))
		return fmt.Errorf("failed to update short url geolocation: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		return repository.ErrHashNotFound
	}

	return nil
}

// --- Click Methods ---

// SaveClick persists a new click and returns it with the assigned id.
func (s *PostgresStorage) SaveClick(ctx context.Context, click *domain.Click) (*domain.Click, error) {
	if err := s.db.WithContext(ctx).Create(click).Error; err != nil {
		s.log.Error("failed to save click", zap.String("hash", click.Hash), zap.Error(err))
		return nil, fmt.Errorf("failed to save click: %w", err)
	}

	return click, nil
}

// UpdateClickGeoLocation writes ip/country for a click.
func (s *PostgresStorage) UpdateClickGeoLocation(ctx context.Context, clickID int64, geo domain.GeoLocation) error {
	result := s.db.WithContext(ctx).Model(&domain.Click{}).
		Where("id = ?", clickID).
		Updates(map[string]interface{}{
			"ip":      geo.IP,
			"country": geo.Country,
		})
	if result.Error != nil {
		s.log.Error("failed to update click geolocation", zap.Int64("click_id", clickID), zap.Error(result.Error))
		return fmt.Errorf("failed to update click geolocation: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		return repository.ErrClickNotFound
	}

	return nil
}

// UpdateClickBrowserPlatform writes browser/platform for a click.
func (s *PostgresStorage) UpdateClickBrowserPlatform(ctx context.Context, clickID int64, bp domain.BrowserPlatform) error {
	result := s.db.WithContext(ctx).Model(&domain.Click{}).
		Where("id = ?", clickID).
		Updates(map[string]interface{}{
			"browser":  bp.Browser,
			"platform": bp.Platform,
		})
	if result.Error != nil {
		s.log.Error("failed to update click browser/platform", zap.Int64("click_id", clickID), zap.Error(result.Error))
		return fmt.Errorf("failed to update click browser/platform: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		return repository.ErrClickNotFound
	}

	return nil
}

// CountClicks counts clicks for a hash created after the given instant.
// This backs the sliding-window redirection limiter.
func (s *PostgresStorage) CountClicks(ctx context.Context, hash string, createdAfter time.Time) (int64, error) {
	var count int64

	err := s.db.WithContext(ctx).Model(&domain.Click{}).
		Where("hash = ? AND created_at > ?", hash, createdAfter).
		Count(&count).Error
	if err != nil {
		s.log.Error("failed to count clicks", zap.String("hash", hash), zap.Error(err))
		return 0, fmt.Errorf("failed to count clicks: %w", err)
	}

	return count, nil
}

// --- Analytics Methods ---

// GetClickStats aggregates clicks for a hash by browser, platform and
// country.
func (s *PostgresStorage) GetClickStats(ctx context.Context, hash string) (*domain.ClickStats, error) {
	if _, err := s.FindShortURLByHash(ctx, hash); err != nil {
		return nil, err
	}

	stats := &domain.ClickStats{
		ByBrowser:  make(map[string]int64),
		ByPlatform: make(map[string]int64),
		ByCountry:  make(map[string]int64),
	}

	err := s.db.WithContext(ctx).Model(&domain.Click{}).
		Where("hash = ?", hash).
		Count(&stats.Total).Error
	if err != nil {
		s.log.Error("failed to count total clicks", zap.String("hash", hash), zap.Error(err))
		return nil, fmt.Errorf("failed to count total clicks: %w", err)
	}

	for column, dest := range map[string]map[string]int64{
		"browser":  stats.ByBrowser,
		"platform": stats.ByPlatform,
		"country":  stats.ByCountry,
	} {
		if err := s.groupClicks(ctx, hash, column, dest); err != nil {
			return nil, err
		}
	}

	return stats, nil
}

func (s *PostgresStorage) groupClicks(ctx context.Context, hash, column string, dest map[string]int64) error {
	var results []struct {
		Value string `gorm:"column:value"`
		Count int64  `gorm:"column:count"`
	}

	err := s.db.WithContext(ctx).Model(&domain.Click{}).
		Select(fmt.Sprintf("COALESCE(%s, 'unknown') as value, count(*) as count", column)).
		Where("hash = ?", hash).
		Group("value").
		Find(&results).Error
	if err != nil {
		s.log.Error("failed to group clicks",
			zap.String("hash", hash),
			zap.String("column", column),
			zap.Error(err))
		return fmt.Errorf("failed to group clicks by %s: %w", column, err)
	}

	for _, result := range results {
		dest[result.Value] = result.Count
	}

	return nil
}
