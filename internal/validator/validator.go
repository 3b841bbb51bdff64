// Package validator implements the URL reachability and safety check
// performed in the background after a short URL is created.
package validator

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
)

var (
	// ErrInvalidFormat means the URL is not syntactically usable.
	ErrInvalidFormat = errors.New("url has invalid format")
	// ErrUnreachable means the target did not answer with a usable response.
	ErrUnreachable = errors.New("url is unreachable")
	// ErrUnsafe means the target is on the blocked-host list.
	ErrUnsafe = errors.New("url is unsafe")
)

// URLValidator is the collaborator contract consumed by the validation
// consumer: nil means reachable and safe, otherwise one of the three
// sentinel errors above.
type URLValidator interface {
	ValidateURL(ctx context.Context, rawURL string) error
}

// HTTPValidator validates URLs by probing them over HTTP and checking the
// host against a configured block list.
type HTTPValidator struct {
	client       *http.Client
	blockedHosts map[string]struct{}
	log          *zap.Logger
}

// New creates an HTTPValidator with a bounded request timeout.
func New(timeout time.Duration, blockedHosts []string, log *zap.Logger) *HTTPValidator {
	blocked := make(map[string]struct{}, len(blockedHosts))
	for _, h := range blockedHosts {
		blocked[strings.ToLower(h)] = struct{}{}
	}

	return &HTTPValidator{
		client: &http.Client{
			Timeout: timeout,
		},
		blockedHosts: blocked,
		log:          log,
	}
}

// ValidateURL checks format, then safety, then reachability. Safety is
// checked before the network probe so a blocked host is never contacted.
func (v *HTTPValidator) ValidateURL(ctx context.Context, rawURL string) error {
	parsed, err := ParseTarget(rawURL)
	if err != nil {
		return err
	}

	if _, blocked := v.blockedHosts[strings.ToLower(parsed.Hostname())]; blocked {
		v.log.Info("url rejected by block list", zap.String("host", parsed.Hostname()))
		return ErrUnsafe
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidFormat, err)
	}

	resp, err := v.client.Do(req)
	if err != nil {
		v.log.Debug("url probe failed", zap.String("url", rawURL), zap.Error(err))
		return fmt.Errorf("%w: %s", ErrUnreachable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("%w: status %d", ErrUnreachable, resp.StatusCode)
	}

	return nil
}

// ParseTarget performs the cheap syntactic check shared by the creation
// path and the validator: absolute http(s) URL with a host.
func ParseTarget(rawURL string) (*url.URL, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidFormat, err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, fmt.Errorf("%w: unsupported scheme %q", ErrInvalidFormat, parsed.Scheme)
	}
	if parsed.Host == "" {
		return nil, fmt.Errorf("%w: missing host", ErrInvalidFormat)
	}
	return parsed, nil
}
