// Package geoip implements the IP geolocation collaborator. Lookups never
// fail observably: bogon addresses resolve to the "Bogon" sentinel without
// a network call, and every lookup error is absorbed into "Unknown".
package geoip

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"time"

	lru "github.com/hashicorp/golang-lru/v2/expirable"
	"go.uber.org/zap"

	"LinkGuard-Backend/internal/domain"
)

const (
	// CountryBogon is returned for private/special-use addresses.
	CountryBogon = "Bogon"
	// CountryUnknown is returned when the lookup service cannot answer.
	CountryUnknown = "Unknown"
)

// Locator is the collaborator contract consumed by the geolocation
// consumer.
type Locator interface {
	GetGeoLocation(ctx context.Context, ip string) domain.GeoLocation
}

// Client resolves IPs against an ip-api style JSON endpoint, with an
// expiring LRU cache in front of the network call. The cache entry is the
// whole GeoLocation value; entries age out by TTL, there is no
// invalidation path because a resolved IP does not change meaningfully
// within the TTL.
type Client struct {
	endpoint string
	client   *http.Client
	cache    *lru.LRU[string, domain.GeoLocation]
	log      *zap.Logger
}

// New creates a geolocation client.
func New(endpoint string, timeout time.Duration, cacheSize int, cacheTTL time.Duration, log *zap.Logger) *Client {
	return &Client{
		endpoint: endpoint,
		client: &http.Client{
			Timeout: timeout,
		},
		cache: lru.NewLRU[string, domain.GeoLocation](cacheSize, nil, cacheTTL),
		log:   log,
	}
}

// apiResponse mirrors the ip-api JSON contract.
type apiResponse struct {
	Status  string `json:"status"`
	Country string `json:"country"`
	Query   string `json:"query"`
}

// GetGeoLocation resolves an IP to a country. The returned GeoLocation
// always carries a non-empty country.
func (c *Client) GetGeoLocation(ctx context.Context, ip string) domain.GeoLocation {
	if isBogon(ip) {
		return domain.GeoLocation{IP: ip, Country: CountryBogon}
	}

	if cached, ok := c.cache.Get(ip); ok {
		return cached
	}

	geo := c.lookup(ctx, ip)
	if geo.Country != CountryUnknown {
		c.cache.Add(ip, geo)
	}

	return geo
}

func (c *Client) lookup(ctx context.Context, ip string) domain.GeoLocation {
	unknown := domain.GeoLocation{IP: ip, Country: CountryUnknown}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s/%s", c.endpoint, ip), nil)
	if err != nil {
		c.log.Warn("failed to build geolocation request", zap.String("ip", ip), zap.Error(err))
		return unknown
	}

	resp, err := c.client.Do(req)
	if err != nil {
		c.log.Warn("geolocation lookup failed", zap.String("ip", ip), zap.Error(err))
		return unknown
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.log.Warn("geolocation lookup returned unexpected status",
			zap.String("ip", ip),
			zap.Int("status", resp.StatusCode),
		)
		return unknown
	}

	var body apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		c.log.Warn("failed to decode geolocation response", zap.String("ip", ip), zap.Error(err))
		return unknown
	}

	if body.Status != "success" || body.Country == "" {
		return unknown
	}

	return domain.GeoLocation{IP: ip, Country: body.Country}
}

// isBogon reports whether the address is reserved for private/special use
// and therefore never meaningfully geolocatable.
func isBogon(ip string) bool {
	parsed := net.ParseIP(ip)
	if parsed == nil {
		// Unparsable input gets the same treatment as a bogon: no
		// point sending it to the lookup service.
		return true
	}

	return parsed.IsLoopback() ||
		parsed.IsPrivate() ||
		parsed.IsLinkLocalUnicast() ||
		parsed.IsLinkLocalMulticast() ||
		parsed.IsUnspecified()
}
