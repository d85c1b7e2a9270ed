package app

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/roamly/roamly/internal/config"
	"github.com/roamly/roamly/internal/event_bus"
	"github.com/roamly/roamly/internal/kvstore"
	"github.com/roamly/roamly/internal/rest"
	"github.com/roamly/roamly/internal/utils"
	"github.com/roamly/roamly/pkg/place"
	log "github.com/sirupsen/logrus"
)

// Application wires configuration, storage, router, and server lifecycle.
type Application struct {
	cfg     config.Application
	router  *mux.Router
	srv     *http.Server
	storage kvstore.Storage
	deps    *Dependencies
	close   func()
}

// NewApplication constructs the full HTTP application, ready to Run().
func NewApplication(ctx context.Context, cfg config.Application) (*Application, error) {
	storage, deps, closeStorage, err := Bootstrap(ctx, cfg)
	if err != nil {
		return nil, err
	}

	r := mux.NewRouter()
	SetupMiddleware(r)
	RegisterRoutes(r, deps)

	// Frontend
	if cfg.Frontend.Enabled {
		frontend := rest.NewFrontendHandler(cfg.Frontend.Dir, "index.html")
		r.PathPrefix("/").Handler(frontend)
	}

	srv := &http.Server{
		Handler:      r,
		Addr:         cfg.Listen,
		WriteTimeout: 15 * time.Second,
		ReadTimeout:  15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &Application{cfg: cfg, router: r, srv: srv, storage: storage, deps: deps, close: closeStorage}, nil
}

// Bootstrap loads the catalog, opens the storage and wires every service on top of it.
func Bootstrap(ctx context.Context, cfg config.Application) (kvstore.Storage, *Dependencies, func(), error) {
	catalog, err := place.LoadCatalog(cfg.Catalog.Path)
	if err != nil {
		return nil, nil, nil, err
	}
	log.Infof("Loaded %d places", len(catalog.All()))

	storage, closeStorage, err := OpenStorage(cfg)
	if err != nil {
		return nil, nil, nil, err
	}

	deps := BuildDependencies(ctx, storage, catalog, &utils.SystemClock{}, event_bus.NewEventBus())
	return storage, deps, closeStorage, nil
}

// Run starts watching the storage and serves HTTP until ctx is cancelled.
func (a *Application) Run(ctx context.Context) error {
	defer a.close()

	if err := WatchStorage(ctx, a.storage, a.deps.EventBus); err != nil {
		log.Warnf("could not watch storage for external changes: %v", err)
	}

	errs := make(chan error, 1)
	go func() {
		log.Infof("Starting server on %s", a.srv.Addr)
		errs <- a.srv.ListenAndServe()
	}()

	select {
	case err := <-errs:
		return err
	case <-ctx.Done():
	}

	log.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := a.srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errs; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
