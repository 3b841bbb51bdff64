package http

import (
	"net/http"

	limiter "github.com/ulule/limiter/v3"
	mhttp "github.com/ulule/limiter/v3/drivers/middleware/stdlib"
	memorystore "github.com/ulule/limiter/v3/drivers/store/memory"
	"go.uber.org/zap"

	"LinkGuard-Backend/internal/repository"
	"LinkGuard-Backend/internal/service"
)

// Server bundles the HTTP handlers and routing.
type Server struct {
	shortenHandler  *ShortenHandler
	redirectHandler *RedirectHandler
	statsHandler    *StatsHandler
	healthHandler   *HealthHandler
	createLimiter   *mhttp.Middleware
	log             *zap.Logger
}

// NewServer creates the HTTP server wiring. createRate is the per-IP
// throttle on the creation endpoint in ulule/limiter format ("20-M").
func NewServer(
	storage repository.Storage,
	shortener *service.ShortenerService,
	redirection *service.RedirectionService,
	queues map[string]QueueInfo,
	log *zap.Logger,
	baseURL string,
	createRate string,
) (*Server, error) {
	rate, err := limiter.NewRateFromFormatted(createRate)
	if err != nil {
		return nil, err
	}

	return &Server{
		shortenHandler:  NewShortenHandler(shortener, log, baseURL),
		redirectHandler: NewRedirectHandler(redirection, log),
		statsHandler:    NewStatsHandler(storage, log),
		healthHandler:   NewHealthHandler(storage, queues, log),
		createLimiter:   mhttp.NewMiddleware(limiter.New(memorystore.NewStore(), rate)),
		log:             log,
	}, nil
}

// SetupRoutes configures the route table.
func (s *Server) SetupRoutes() http.Handler {
	mux := http.NewServeMux()

	// Health checks
	mux.HandleFunc("/health", s.healthHandler.Health)
	mux.HandleFunc("/ready", s.healthHandler.Ready)
	mux.HandleFunc("/metrics", s.healthHandler.Metrics)

	// API endpoints
	mux.Handle("/api/shorten", s.createLimiter.Handler(http.HandlerFunc(s.shortenHandler.Create)))
	mux.HandleFunc("/api/stats/", s.statsHandler.GetStats)

	// Redirect endpoint - must be last
	mux.HandleFunc("/", s.redirectHandler.HandleRedirect)

	return mux
}
