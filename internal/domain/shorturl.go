package domain

import "time"

// ValidationState tracks the outcome of the background URL check.
// Validated stays false until exactly one validation event has been
// processed for the hash; after that it is true permanently. "Not yet
// validated" must never be conflated with "validated and rejected".
type ValidationState struct {
	Reachable bool `gorm:"column:reachable;not null;default:false" json:"reachable"`
	Safe      bool `gorm:"column:safe;not null;default:false" json:"safe"`
	Validated bool `gorm:"column:validated;not null;default:false" json:"validated"`
}

// ShortURL represents a shortened URL. The hash is a random opaque
// identifier, unrelated to the target URL's content.
type ShortURL struct {
	Hash            string    `gorm:"primaryKey;column:hash;size:8" json:"hash"`
	Target          string    `gorm:"column:target;type:text;not null" json:"target"`
	CreatedAt       time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	RedirectionMode int       `gorm:"column:redirection_mode;not null;default:307" json:"redirection_mode"`
	CreatorIP       *string   `gorm:"column:creator_ip;size:45" json:"creator_ip,omitempty"`
	CreatorCountry  *string   `gorm:"column:creator_country;size:100" json:"creator_country,omitempty"`

	ValidationState `gorm:"embedded" json:"validation"`
}

// TableName returns the table name for GORM
func (ShortURL) TableName() string {
	return "short_urls"
}

// Redirection is the terminal result of an admitted redirect request.
type Redirection struct {
	Target string `json:"target"`
	Mode   int    `json:"mode"`
}

// GeoLocation is the result of an IP lookup. Country is never empty:
// bogon addresses resolve to "Bogon", lookup failures to "Unknown".
type GeoLocation struct {
	IP      string `json:"ip"`
	Country string `json:"country"`
}

// BrowserPlatform is the result of User-Agent identification.
type BrowserPlatform struct {
	Browser  string `json:"browser"`
	Platform string `json:"platform"`
}
