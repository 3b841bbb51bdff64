package worker

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"LinkGuard-Backend/internal/events"
	"LinkGuard-Backend/internal/geoip"
	"LinkGuard-Backend/internal/queue"
	"LinkGuard-Backend/internal/repository"
)

// GeoLocationConsumer drains geolocation events and writes IP/country back
// to either a click or a short URL, depending on the event variant. It
// runs independently of the validation consumer: a slow geolocation
// lookup never blocks validation processing.
type GeoLocationConsumer struct {
	queue   *queue.Queue[events.GeoLocationEvent]
	locator geoip.Locator
	storage repository.Storage
	log     *zap.Logger

	wg      sync.WaitGroup
	cancel  context.CancelFunc
	started bool
	mu      sync.Mutex
}

// NewGeoLocationConsumer creates a consumer for the geolocation queue.
func NewGeoLocationConsumer(
	q *queue.Queue[events.GeoLocationEvent],
	locator geoip.Locator,
	storage repository.Storage,
	log *zap.Logger,
) *GeoLocationConsumer {
	return &GeoLocationConsumer{
		queue:   q,
		locator: locator,
		storage: storage,
		log:     log.With(zap.String("consumer", "geolocation")),
	}
}

// Start launches the single consumer loop.
func (c *GeoLocationConsumer) Start() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.started {
		return fmt.Errorf("geolocation consumer already started")
	}

	ctx, cancel := context.WithCancel(context.Background())
	c.cancel = cancel

	c.wg.Add(1)
	go c.run(ctx)

	c.started = true
	c.log.Info("geolocation consumer started", zap.Int("queue_capacity", c.queue.Cap()))
	return nil
}

// Stop cancels the loop and waits for the in-flight item to finish.
func (c *GeoLocationConsumer) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.started {
		return
	}

	c.cancel()
	c.wg.Wait()
	c.started = false
	c.log.Info("geolocation consumer stopped", zap.Int("backlog_dropped", c.queue.Len()))
}

func (c *GeoLocationConsumer) run(ctx context.Context) {
	defer c.wg.Done()

	for {
		select {
		case ev, ok := <-c.queue.Receive():
			if !ok {
				c.log.Info("geolocation queue closed")
				return
			}
			c.process(ctx, ev)

		case <-ctx.Done():
			return
		}
	}
}

func (c *GeoLocationConsumer) process(ctx context.Context, ev events.GeoLocationEvent) {
	ctx, cancel := context.WithTimeout(ctx, itemTimeout)
	defer cancel()

	geo := c.locator.GetGeoLocation(ctx, ev.IP)

	var err error
	switch ev.Target {
	case events.TargetClick:
		err = c.storage.UpdateClickGeoLocation(ctx, ev.ClickID, geo)
	case events.TargetHash:
		err = c.storage.UpdateShortURLGeoLocation(ctx, ev.Hash, geo)
	default:
		c.log.Error("unknown geolocation event target", zap.Int("target", int(ev.Target)))
		return
	}

	if err != nil {
		c.log.Error("failed to persist geolocation",
			zap.String("ip", ev.IP),
			zap.Int64("click_id", ev.ClickID),
			zap.String("hash", ev.Hash),
			zap.Error(err),
		)
		return
	}

	c.log.Debug("geolocation processed",
		zap.String("ip", ev.IP),
		zap.String("country", geo.Country),
	)
}
