// Package worker hosts the long-lived consumer loops that drain the
// background event queues. Each consumer owns exactly one queue and runs
// for the lifetime of the process; a failed event is logged and dropped so
// a single bad item never starves the loop.
package worker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"LinkGuard-Backend/internal/domain"
	"LinkGuard-Backend/internal/events"
	"LinkGuard-Backend/internal/queue"
	"LinkGuard-Backend/internal/repository"
	"LinkGuard-Backend/internal/validator"
)

const itemTimeout = 30 * time.Second

// ValidationConsumer drains URL validation events and writes the tri-state
// result back to short URL storage. It is the only mutator of
// ValidationState.
type ValidationConsumer struct {
	queue     *queue.Queue[events.URLValidationEvent]
	validator validator.URLValidator
	storage   repository.Storage
	log       *zap.Logger

	wg      sync.WaitGroup
	cancel  context.CancelFunc
	started bool
	mu      sync.Mutex
}

// NewValidationConsumer creates a consumer for the validation queue.
func NewValidationConsumer(
	q *queue.Queue[events.URLValidationEvent],
	v validator.URLValidator,
	storage repository.Storage,
	log *zap.Logger,
) *ValidationConsumer {
	return &ValidationConsumer{
		queue:     q,
		validator: v,
		storage:   storage,
		log:       log.With(zap.String("consumer", "validation")),
	}
}

// Start launches the single consumer loop.
func (c *ValidationConsumer) Start() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.started {
		return fmt.Errorf("validation consumer already started")
	}

	ctx, cancel := context.WithCancel(context.Background())
	c.cancel = cancel

	c.wg.Add(1)
	go c.run(ctx)

	c.started = true
	c.log.Info("validation consumer started", zap.Int("queue_capacity", c.queue.Cap()))
	return nil
}

// Stop cancels the loop and waits for the in-flight item to finish.
// Backlog still in the queue is not flushed.
func (c *ValidationConsumer) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.started {
		return
	}

	c.cancel()
	c.wg.Wait()
	c.started = false
	c.log.Info("validation consumer stopped", zap.Int("backlog_dropped", c.queue.Len()))
}

func (c *ValidationConsumer) run(ctx context.Context) {
	defer c.wg.Done()

	for {
		select {
		case ev, ok := <-c.queue.Receive():
			if !ok {
				c.log.Info("validation queue closed")
				return
			}
			c.process(ctx, ev)

		case <-ctx.Done():
			return
		}
	}
}

// process handles a single event: one collaborator call, one storage
// write. Failures are terminal for the event - no retries.
func (c *ValidationConsumer) process(ctx context.Context, ev events.URLValidationEvent) {
	ctx, cancel := context.WithTimeout(ctx, itemTimeout)
	defer cancel()

	state := StateForValidation(c.validator.ValidateURL(ctx, ev.URL))

	if err := c.storage.UpdateShortURLValidation(ctx, ev.Hash, state); err != nil {
		c.log.Error("failed to persist validation state",
			zap.String("hash", ev.Hash),
			zap.Error(err),
		)
		return
	}

	c.log.Debug("validation processed",
		zap.String("hash", ev.Hash),
		zap.Bool("reachable", state.Reachable),
		zap.Bool("safe", state.Safe),
	)
}

// StateForValidation maps a validation collaborator result to the
// persisted tri-state. The mapping is total: any unclassified error is
// bucketed as unreachable, and every branch sets Validated.
func StateForValidation(err error) domain.ValidationState {
	switch {
	case err == nil:
		return domain.ValidationState{Reachable: true, Safe: true, Validated: true}
	case errors.Is(err, validator.ErrUnsafe):
		return domain.ValidationState{Reachable: true, Safe: false, Validated: true}
	case errors.Is(err, validator.ErrInvalidFormat), errors.Is(err, validator.ErrUnreachable):
		return domain.ValidationState{Reachable: false, Safe: true, Validated: true}
	default:
		return domain.ValidationState{Reachable: false, Safe: true, Validated: true}
	}
}
