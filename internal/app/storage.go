package app

import (
	"context"
	"fmt"

	"github.com/roamly/roamly/internal/config"
	"github.com/roamly/roamly/internal/database"
	"github.com/roamly/roamly/internal/event_bus"
	"github.com/roamly/roamly/internal/kvstore"
	log "github.com/sirupsen/logrus"
)

// OpenStorage opens the configured storage backend. The returned function releases it.
func OpenStorage(cfg config.Application) (kvstore.Storage, func(), error) {
	switch cfg.Storage.Driver {
	case config.MemoryDriver:
		log.Warn("Using in-memory storage, nothing will survive a restart")
		return kvstore.NewMemoryStorage(), func() {}, nil

	case config.FileDriver:
		storage, err := kvstore.NewFileStorage(cfg.Storage.Dir)
		if err != nil {
			return nil, nil, err
		}
		log.Infof("Using file storage in %s", storage.Dir())
		return storage, func() {}, nil

	case config.SQLiteDriver:
		db, err := database.OpenSQLite(cfg.Storage.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		return kvstore.NewSQLiteStorage(db), func() { db.Close() }, nil

	case config.PostgresDriver:
		if err := database.Migrate(cfg.Database); err != nil {
			return nil, nil, err
		}
		pool, err := database.Open(cfg.Database)
		if err != nil {
			return nil, nil, err
		}
		log.Infof("Using postgres storage at %s:%d/%s", cfg.Database.Host, cfg.Database.Port, cfg.Database.Name)
		return kvstore.NewPostgresStorage(pool), pool.Close, nil

	default:
		return nil, nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
}

// WatchStorage forwards changes made by other processes sharing the storage to the
// event bus. Backends without change reporting are left alone.
func WatchStorage(ctx context.Context, storage kvstore.Storage, eventBus *event_bus.EventBus) error {
	watcher, ok := storage.(kvstore.Watcher)
	if !ok {
		log.Info("Storage backend does not report external changes, saved plans refresh on request only")
		return nil
	}
	return watcher.Watch(ctx, func(change kvstore.Change) {
		log.Debugf("storage changed externally: key=%q", change.Key)
		err := eventBus.Publish(event_bus.NewEvent(ctx, event_bus.StorageChangedType, event_bus.StorageChanged{Key: change.Key}))
		if err != nil {
			log.Warnf("failed to handle storage change %q: %v", change.Key, err)
		}
	})
}
