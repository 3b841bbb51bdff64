// Package useragent identifies browser and platform from User-Agent
// strings. It is a pure collaborator: identification never fails, unknown
// input maps to sentinel values.
package useragent

import (
	"fmt"
	"os"
	"strings"

	"github.com/ua-parser/uap-go/uaparser"
	"go.uber.org/zap"

	"LinkGuard-Backend/internal/domain"
)

// Unknown is the sentinel for an unidentifiable browser or platform.
const Unknown = "unknown"

// Parser wraps the uap-go User-Agent parser.
type Parser struct {
	parser *uaparser.Parser
	log    *zap.Logger
}

// New creates a parser. When regexFilePath is empty or missing, the
// compiled-in uap-core definitions are used instead.
func New(regexFilePath string, log *zap.Logger) (*Parser, error) {
	if regexFilePath != "" {
		if _, err := os.Stat(regexFilePath); err == nil {
			parser, err := uaparser.New(regexFilePath)
			if err != nil {
				return nil, fmt.Errorf("failed to create User-Agent parser from %s: %w", regexFilePath, err)
			}
			log.Info("User-Agent parser initialized from file", zap.String("regexes_file", regexFilePath))
			return &Parser{parser: parser, log: log}, nil
		}
		log.Warn("regexes file not found, falling back to built-in definitions",
			zap.String("regexes_file", regexFilePath))
	}

	return &Parser{parser: uaparser.NewFromSaved(), log: log}, nil
}

// Identify parses a User-Agent string into browser and platform.
func (p *Parser) Identify(userAgent string) domain.BrowserPlatform {
	if userAgent == "" {
		return domain.BrowserPlatform{Browser: Unknown, Platform: Unknown}
	}

	client := p.parser.Parse(userAgent)

	bp := domain.BrowserPlatform{
		Browser:  normalize(client.UserAgent.Family),
		Platform: normalize(client.Os.Family),
	}

	if isBot(client, userAgent) {
		bp.Browser = "bot"
	}

	p.log.Debug("identified User-Agent",
		zap.String("browser", bp.Browser),
		zap.String("platform", bp.Platform),
	)

	return bp
}

// isBot checks if the User-Agent represents a crawler.
func isBot(client *uaparser.Client, userAgent string) bool {
	indicators := []string{
		"googlebot", "bingbot", "slurp", "duckduckbot", "baiduspider",
		"yandexbot", "facebookexternalhit", "twitterbot", "linkedinbot",
		"whatsapp", "telegram", "bot", "crawler", "spider", "scraper",
	}

	family := strings.ToLower(client.UserAgent.Family)
	ua := strings.ToLower(userAgent)
	for _, indicator := range indicators {
		if strings.Contains(family, indicator) || strings.Contains(ua, indicator) {
			return true
		}
	}

	return false
}

// normalize replaces uap-go's empty/"Other" results with the sentinel.
func normalize(family string) string {
	if family == "" || family == "Other" {
		return Unknown
	}
	return family
}
