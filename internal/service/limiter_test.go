package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"LinkGuard-Backend/internal/config"
	"LinkGuard-Backend/internal/domain"
	"LinkGuard-Backend/internal/repository/memory"
)

func TestRedirectionLimiter_IsOverLimit(t *testing.T) {
	ctx := context.Background()

	newLimitedStorage := func(t *testing.T, clicksInWindow, clicksOutside int) *memory.MemStorage {
		t.Helper()
		storage := memory.New()
		require.NoError(t, storage.SaveShortURL(ctx, &domain.ShortURL{Hash: "aaaa1111", Target: "http://example.com/"}))

		for i := 0; i < clicksInWindow; i++ {
			_, err := storage.SaveClick(ctx, &domain.Click{Hash: "aaaa1111"})
			require.NoError(t, err)
		}
		for i := 0; i < clicksOutside; i++ {
			_, err := storage.SaveClick(ctx, &domain.Click{
				Hash:      "aaaa1111",
				CreatedAt: time.Now().Add(-5 * time.Minute),
			})
			require.NoError(t, err)
		}
		return storage
	}

	cfg := &config.RateLimiter{Limit: 10, TimeFrame: 60 * time.Second}

	t.Run("under_limit", func(t *testing.T) {
		limiter := NewRedirectionLimiter(newLimitedStorage(t, 9, 0), cfg)

		over, err := limiter.IsOverLimit(ctx, "aaaa1111")
		require.NoError(t, err)
		assert.False(t, over)
	})

	t.Run("at_limit_rejects_next", func(t *testing.T) {
		limiter := NewRedirectionLimiter(newLimitedStorage(t, 10, 0), cfg)

		over, err := limiter.IsOverLimit(ctx, "aaaa1111")
		require.NoError(t, err)
		assert.True(t, over)
	})

	t.Run("old_clicks_do_not_count", func(t *testing.T) {
		limiter := NewRedirectionLimiter(newLimitedStorage(t, 3, 20), cfg)

		over, err := limiter.IsOverLimit(ctx, "aaaa1111")
		require.NoError(t, err)
		assert.False(t, over)
	})

	t.Run("other_hashes_do_not_count", func(t *testing.T) {
		limiter := NewRedirectionLimiter(newLimitedStorage(t, 20, 0), cfg)

		over, err := limiter.IsOverLimit(ctx, "bbbb2222")
		require.NoError(t, err)
		assert.False(t, over)
	})

	t.Run("storage_error_propagates", func(t *testing.T) {
		mockStorage := &MockStorage{}
		mockStorage.On("CountClicks", mock.Anything, "aaaa1111", mock.AnythingOfType("time.Time")).
			Return(int64(0), errors.New("db down"))

		limiter := NewRedirectionLimiter(mockStorage, cfg)

		_, err := limiter.IsOverLimit(ctx, "aaaa1111")
		assert.Error(t, err)
	})
}
