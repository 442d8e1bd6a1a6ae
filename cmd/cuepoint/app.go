package main

import (
	"errors"
	"flag"
	"io"
	"os"

	"github.com/cuepointapp/cuepoint-server/internal/config"
	"github.com/cuepointapp/cuepoint-server/internal/logger"
	"github.com/cuepointapp/cuepoint-server/internal/search"
	"github.com/cuepointapp/cuepoint-server/internal/service"
	"github.com/cuepointapp/cuepoint-server/internal/source"
	"github.com/cuepointapp/cuepoint-server/internal/store"
	"github.com/cuepointapp/cuepoint-server/internal/store/sqlite"
)

// errUsage reports bad flags; the flag package has already printed why.
var errUsage = errors.New("usage")

// configFlags are accepted by every command that touches server state.
type configFlags struct {
	configFile   string
	dataPath     string
	captionsPath string
	logLevel     string
}

func (c *configFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&c.configFile, "config", "", "Path to YAML config file")
	fs.StringVar(&c.dataPath, "data-path", "", "Base path for server state")
	fs.StringVar(&c.captionsPath, "captions-path", "", "Directory holding caption and description files")
	fs.StringVar(&c.logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")
}

// load resolves configuration the same way the server does.
func (c *configFlags) load() (*config.Config, error) {
	args := []string{"-log-level", c.logLevel}
	if c.configFile != "" {
		args = append(args, "-config", c.configFile)
	}
	if c.dataPath != "" {
		args = append(args, "-data-path", c.dataPath)
	}
	if c.captionsPath != "" {
		args = append(args, "-captions-path", c.captionsPath)
	}
	return config.LoadConfig(args)
}

func parseFlags(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	return nil
}

// app holds the backends a command opened. Close releases all of them.
type app struct {
	cfg      *config.Config
	log      *logger.Logger
	provider *source.FS
	index    *search.Index
	catalog  *sqlite.Catalog
	store    *store.Store
	closers  []io.Closer
}

// openApp opens the catalog and index, and the session store when
// withSessions is set.
func openApp(cfg *config.Config, withSessions bool) (*app, error) {
	a := &app{
		cfg: cfg,
		log: logger.New(logger.Config{
			Writer:      os.Stderr,
			Level:       logger.ParseLevel(cfg.Logger.Level),
			Environment: cfg.App.Environment,
		}),
	}

	var err error
	if a.provider, err = source.NewFS(cfg.Data.CaptionsPath); err != nil {
		return nil, err
	}
	if a.index, err = search.Open(search.Options{DataPath: cfg.IndexPath(), Logger: a.log.Logger}); err != nil {
		return nil, err
	}
	a.closers = append(a.closers, a.index)

	if a.catalog, err = sqlite.Open(cfg.CatalogPath(), a.log.Logger); err != nil {
		a.Close()
		return nil, err
	}
	a.closers = append(a.closers, a.catalog)

	if withSessions {
		if a.store, err = store.New(cfg.SessionsPath(), a.log.Logger); err != nil {
			a.Close()
			return nil, err
		}
		a.closers = append(a.closers, a.store)
	}
	return a, nil
}

func (a *app) ingestService() *service.IngestService {
	return service.NewIngestService(a.provider, a.index, a.catalog, nil, a.log.Logger)
}

func (a *app) sessionService() *service.SessionService {
	if a.store == nil {
		return nil
	}
	return service.NewSessionService(a.store, a.catalog, nil, a.cfg.Session.TTL, a.log.Logger)
}

// Close releases backends in reverse open order.
func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil {
			a.log.Warn("close failed", "error", err)
		}
	}
	a.closers = nil
}
