package domain

import "time"

// Click represents a single redirection through a short URL. Enrichment
// columns start out null and are each written at most once: ip/country by
// the geolocation consumer, browser/platform by the User-Agent
// identification step on the redirect path.
type Click struct {
	ID        int64     `gorm:"primaryKey;column:id" json:"id"`
	Hash      string    `gorm:"column:hash;size:8;not null;index" json:"hash"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime;index" json:"created_at"`
	IP        *string   `gorm:"column:ip;size:45" json:"ip,omitempty"`
	Country   *string   `gorm:"column:country;size:100" json:"country,omitempty"`
	Browser   *string   `gorm:"column:browser;size:50" json:"browser,omitempty"`
	Platform  *string   `gorm:"column:platform;size:50" json:"platform,omitempty"`

	// Relationships
	ShortURL *ShortURL `gorm:"foreignKey:Hash;references:Hash" json:"short_url,omitempty"`
}

// TableName returns the table name for GORM
func (Click) TableName() string {
	return "clicks"
}

// ClickStats aggregates clicks for a single hash.
type ClickStats struct {
	Total      int64            `json:"total"`
	ByBrowser  map[string]int64 `json:"by_browser"`
	ByPlatform map[string]int64 `json:"by_platform"`
	ByCountry  map[string]int64 `json:"by_country"`
}
