// Package events defines the transient messages exchanged between the
// request path and the background consumers. Events live only inside a
// queue, are never persisted, and are delivered at most once: if the
// process dies before a consumer picks one up, it is lost.
package events

// URLValidationEvent asks the validation consumer to check the target URL
// of a freshly created short URL. Keyed on Hash because the URL string is
// not the storage key.
type URLValidationEvent struct {
	URL  string
	Hash string
}

// GeoTarget selects which record a GeoLocationEvent enriches.
type GeoTarget int

const (
	// TargetClick enriches a click record (ClickID must be set).
	TargetClick GeoTarget = iota
	// TargetHash enriches a short URL record (Hash must be set).
	TargetHash
)

// GeoLocationEvent asks the geolocation consumer to resolve IP and write
// the result back to either a click or a short URL, depending on Target.
type GeoLocationEvent struct {
	Target  GeoTarget
	IP      string
	ClickID int64
	Hash    string
}

// ForClick builds the click-targeted variant.
func ForClick(ip string, clickID int64) GeoLocationEvent {
	return GeoLocationEvent{Target: TargetClick, IP: ip, ClickID: clickID}
}

// ForHash builds the short-URL-targeted variant.
func ForHash(ip, hash string) GeoLocationEvent {
	return GeoLocationEvent{Target: TargetHash, IP: ip, Hash: hash}
}
