package availability

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/roamly/roamly/internal/event_bus"
	"github.com/roamly/roamly/internal/kvstore"
	"github.com/roamly/roamly/internal/utils"
	log "github.com/sirupsen/logrus"
)

type Status struct {
	Available bool
	Reason    string
	CheckedAt time.Time
}

// Guard wraps the storage every store writes through and tracks whether it is usable.
// Any call failing with kvstore.ErrUnavailable flips the guard to unavailable; only a
// successful Probe flips it back, after which the registered recovery hooks run.
type Guard struct {
	storage  kvstore.Storage
	eventBus *event_bus.EventBus
	clock    utils.Clock

	mu     sync.RWMutex
	status Status
	hooks  []func(ctx context.Context) error
}

func NewGuard(storage kvstore.Storage, eventBus *event_bus.EventBus, clock utils.Clock) *Guard {
	return &Guard{
		storage:  storage,
		eventBus: eventBus,
		clock:    clock,
		status:   Status{Available: true, CheckedAt: clock.Now()},
	}
}

// OnRecover registers a hook run every time the storage becomes available again.
func (g *Guard) OnRecover(hook func(ctx context.Context) error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.hooks = append(g.hooks, hook)
}

func (g *Guard) Status() Status {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.status
}

func (g *Guard) Available() bool {
	return g.Status().Available
}

// Probe runs the storage capability check and updates the status accordingly.
func (g *Guard) Probe(ctx context.Context) Status {
	if err := kvstore.Probe(ctx, g.storage); err != nil {
		g.markUnavailable(ctx, err)
		return g.Status()
	}

	g.mu.Lock()
	recovered := !g.status.Available
	g.status = Status{Available: true, CheckedAt: g.clock.Now()}
	hooks := append([]func(context.Context) error(nil), g.hooks...)
	g.mu.Unlock()

	if recovered {
		log.Info("storage is available again")
		for _, hook := range hooks {
			if err := hook(ctx); err != nil {
				log.Errorf("storage recovery hook failed: %v", err)
				g.observe(ctx, err)
			}
		}
		g.publish(ctx, event_bus.StorageAvailableType, g.Status())
	}
	return g.Status()
}

func (g *Guard) markUnavailable(ctx context.Context, cause error) {
	g.mu.Lock()
	wasAvailable := g.status.Available
	g.status = Status{Available: false, Reason: cause.Error(), CheckedAt: g.clock.Now()}
	g.mu.Unlock()

	if wasAvailable {
		log.Errorf("storage became unavailable: %v", cause)
		g.publish(ctx, event_bus.StorageUnavailableType, g.Status())
	}
}

func (g *Guard) publish(ctx context.Context, eventType event_bus.EventType, status Status) {
	if g.eventBus == nil {
		return
	}
	err := g.eventBus.Publish(event_bus.NewEvent(context.WithoutCancel(ctx), eventType, event_bus.StorageAvailabilityChanged{
		Available: status.Available,
		Reason:    status.Reason,
	}))
	if err != nil {
		log.Warnf("failed to publish %s: %v", eventType, err)
	}
}

func (g *Guard) observe(ctx context.Context, err error) error {
	if err != nil && errors.Is(err, kvstore.ErrUnavailable) {
		g.markUnavailable(ctx, err)
	}
	return err
}

func (g *Guard) GetItem(ctx context.Context, key string) (string, bool, error) {
	value, found, err := g.storage.GetItem(ctx, key)
	return value, found, g.observe(ctx, err)
}

func (g *Guard) SetItem(ctx context.Context, key string, value string) error {
	return g.observe(ctx, g.storage.SetItem(ctx, key, value))
}

func (g *Guard) RemoveItem(ctx context.Context, key string) error {
	return g.observe(ctx, g.storage.RemoveItem(ctx, key))
}

func (g *Guard) Keys(ctx context.Context) ([]string, error) {
	keys, err := g.storage.Keys(ctx)
	return keys, g.observe(ctx, err)
}
