package repository

import (
	"LinkGuard-Backend/internal/domain"
	"context"
	"errors"
	"time"
)

var (
	ErrHashNotFound  = errors.New("hash not found")
	ErrHashExists    = errors.New("hash already exists")
	ErrClickNotFound = errors.New("click not found")
)

type Storage interface {
	// Short URL methods
	SaveShortURL(ctx context.Context, shortURL *domain.ShortURL) error
	FindShortURLByHash(ctx context.Context, hash string) (*domain.ShortURL, error)
	UpdateShortURLValidation(ctx context.Context, hash string, state domain.ValidationState) error
	UpdateShortURLGeoLocation(ctx context.Context, hash string, geo domain.GeoLocation) error

	// Click methods
	SaveClick(ctx context.Context, click *domain.Click) (*domain.Click, error)
	UpdateClickGeoLocation(ctx context.Context, clickID int64, geo domain.GeoLocation) error
	UpdateClickBrowserPlatform(ctx context.Context, clickID int64, bp domain.BrowserPlatform) error
	CountClicks(ctx context.Context, hash string, createdAfter time.Time) (int64, error)

	// Analytics methods
	GetClickStats(ctx context.Context, hash string) (*domain.ClickStats, error)
}
