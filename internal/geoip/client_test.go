package geoip

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func newTestClient(endpoint string) *Client {
	return New(endpoint, 2*time.Second, 128, time.Minute, zap.NewNop())
}

func TestClient_GetGeoLocation(t *testing.T) {
	ctx := context.Background()

	t.Run("resolves_country", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprintf(w, `{"status":"success","country":"Spain","query":"1.2.3.4"}`)
		}))
		defer srv.Close()

		geo := newTestClient(srv.URL).GetGeoLocation(ctx, "1.2.3.4")

		assert.Equal(t, "1.2.3.4", geo.IP)
		assert.Equal(t, "Spain", geo.Country)
	})

	t.Run("bogon_never_calls_network", func(t *testing.T) {
		var calls atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
		}))
		defer srv.Close()

		c := newTestClient(srv.URL)
		for _, ip := range []string{"127.0.0.1", "10.0.0.1", "192.168.1.5", "169.254.0.1", "0.0.0.0", "::1"} {
			geo := c.GetGeoLocation(ctx, ip)
			assert.Equal(t, CountryBogon, geo.Country, ip)
		}

		assert.Equal(t, int32(0), calls.Load())
	})

	t.Run("lookup_failure_is_unknown", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer srv.Close()

		geo := newTestClient(srv.URL).GetGeoLocation(ctx, "8.8.8.8")
		assert.Equal(t, CountryUnknown, geo.Country)
	})

	t.Run("api_fail_status_is_unknown", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprintf(w, `{"status":"fail","country":"","query":"8.8.8.8"}`)
		}))
		defer srv.Close()

		geo := newTestClient(srv.URL).GetGeoLocation(ctx, "8.8.8.8")
		assert.Equal(t, CountryUnknown, geo.Country)
	})

	t.Run("unparsable_ip_is_bogon", func(t *testing.T) {
		geo := newTestClient("http://unused").GetGeoLocation(ctx, "not-an-ip")
		assert.Equal(t, CountryBogon, geo.Country)
	})

	t.Run("second_lookup_hits_cache", func(t *testing.T) {
		var calls atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			fmt.Fprintf(w, `{"status":"success","country":"Portugal","query":"9.9.9.9"}`)
		}))
		defer srv.Close()

		c := newTestClient(srv.URL)
		first := c.GetGeoLocation(ctx, "9.9.9.9")
		second := c.GetGeoLocation(ctx, "9.9.9.9")

		assert.Equal(t, first, second)
		assert.Equal(t, int32(1), calls.Load())
	})

	t.Run("unknown_result_is_not_cached", func(t *testing.T) {
		var calls atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if calls.Add(1) == 1 {
				w.WriteHeader(http.StatusInternalServerError)
				return
			}
			fmt.Fprintf(w, `{"status":"success","country":"France","query":"4.4.4.4"}`)
		}))
		defer srv.Close()

		c := newTestClient(srv.URL)
		assert.Equal(t, CountryUnknown, c.GetGeoLocation(ctx, "4.4.4.4").Country)
		assert.Equal(t, "France", c.GetGeoLocation(ctx, "4.4.4.4").Country)
	})
}
