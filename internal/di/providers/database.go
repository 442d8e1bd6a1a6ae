package providers

import (
	"context"

	"github.com/samber/do/v2"

	"github.com/cuepointapp/cuepoint-server/internal/config"
	"github.com/cuepointapp/cuepoint-server/internal/logger"
	"github.com/cuepointapp/cuepoint-server/internal/source"
	"github.com/cuepointapp/cuepoint-server/internal/sse"
	"github.com/cuepointapp/cuepoint-server/internal/store"
	"github.com/cuepointapp/cuepoint-server/internal/store/sqlite"
)

// SSEManagerHandle wraps the SSE manager with its context for lifecycle management.
type SSEManagerHandle struct {
	*sse.Manager
	cancel context.CancelFunc
}

// Shutdown implements do.Shutdownable.
func (h *SSEManagerHandle) Shutdown() error {
	h.cancel()
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return h.Manager.Shutdown(ctx)
}

// ProvideSSEManager provides the server-sent events manager.
func ProvideSSEManager(i do.Injector) (*SSEManagerHandle, error) {
	log := do.MustInvoke[*logger.Logger](i)

	manager := sse.NewManager(log.Component("sse"))

	// Start in background
	ctx, cancel := context.WithCancel(context.Background())
	go manager.Start(ctx)

	log.Info("SSE manager started")

	return &SSEManagerHandle{
		Manager: manager,
		cancel:  cancel,
	}, nil
}

// CatalogHandle wraps the SQLite catalog with shutdown capability.
type CatalogHandle struct {
	*sqlite.Catalog
}

// Shutdown implements do.Shutdownable.
func (h *CatalogHandle) Shutdown() error {
	return h.Close()
}

// ProvideCatalog provides the video and chapter catalog.
func ProvideCatalog(i do.Injector) (*CatalogHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	catalog, err := sqlite.Open(cfg.CatalogPath(), log.Component("catalog"))
	if err != nil {
		return nil, err
	}

	log.Info("Catalog initialized", "path", cfg.CatalogPath())

	return &CatalogHandle{Catalog: catalog}, nil
}

// SessionStoreHandle wraps the badger session store with shutdown capability.
type SessionStoreHandle struct {
	*store.Store
}

// Shutdown implements do.Shutdownable.
func (h *SessionStoreHandle) Shutdown() error {
	return h.Close()
}

// ProvideSessionStore provides the chat session store.
func ProvideSessionStore(i do.Injector) (*SessionStoreHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	st, err := store.New(cfg.SessionsPath(), log.Component("sessions"))
	if err != nil {
		return nil, err
	}

	log.Info("Session store initialized", "path", cfg.SessionsPath())

	return &SessionStoreHandle{Store: st}, nil
}

// ProvideSourceProvider provides the caption and description file reader.
func ProvideSourceProvider(i do.Injector) (*source.FS, error) {
	cfg := do.MustInvoke[*config.Config](i)
	return source.NewFS(cfg.Data.CaptionsPath)
}
