package providers

import (
	"context"
	"time"

	"github.com/samber/do/v2"

	"github.com/cuepointapp/cuepoint-server/internal/config"
	"github.com/cuepointapp/cuepoint-server/internal/logger"
	"github.com/cuepointapp/cuepoint-server/internal/service"
	"github.com/cuepointapp/cuepoint-server/internal/source"
	"github.com/cuepointapp/cuepoint-server/internal/watcher"
)

// FileWatcherHandle wraps the file watcher with shutdown capability.
// Watcher is nil when watching is disabled.
type FileWatcherHandle struct {
	*watcher.Watcher
	cancel context.CancelFunc
}

// Shutdown implements do.Shutdownable.
func (h *FileWatcherHandle) Shutdown() error {
	h.cancel()
	if h.Watcher == nil {
		return nil
	}
	return h.Watcher.Stop()
}

// ProvideFileWatcher watches the captions directory and ingests files as
// they settle.
func ProvideFileWatcher(i do.Injector) (*FileWatcherHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	provider := do.MustInvoke[*source.FS](i)
	ingest := do.MustInvoke[*service.IngestService](i)
	sessions := do.MustInvoke[*service.SessionService](i)

	ctx, cancel := context.WithCancel(context.Background())

	if !cfg.Data.Watch {
		log.Info("File watcher disabled by configuration")
		return &FileWatcherHandle{cancel: cancel}, nil
	}

	w, err := watcher.New(log.Component("watcher"), watcher.Options{
		Suffixes:     []string{source.CaptionsSuffix, source.DescriptionSuffix},
		IgnoreHidden: true,
	})
	if err != nil {
		cancel()
		return nil, err
	}
	if err := w.Watch(provider.Dir()); err != nil {
		cancel()
		_ = w.Stop()
		return nil, err
	}

	// Start in background
	go func() {
		if err := w.Start(ctx); err != nil {
			log.Error("File watcher error", "error", err)
		}
	}()

	auto := service.NewAutoIngester(ingest, sessions, log.Component("autoingest"))
	go auto.Run(ctx, w.Events(), w.Errors())

	log.Info("File watcher started", "path", provider.Dir())

	return &FileWatcherHandle{
		Watcher: w,
		cancel:  cancel,
	}, nil
}

// StoreGCJob periodically reclaims session store space.
type StoreGCJob struct {
	cancel context.CancelFunc
}

// Shutdown implements do.Shutdownable.
func (j *StoreGCJob) Shutdown() error {
	j.cancel()
	return nil
}

// ProvideStoreGCJob provides the periodic badger value log GC job.
// Expired sessions vanish on their own through TTLs; GC returns the disk space.
func ProvideStoreGCJob(i do.Injector) (*StoreGCJob, error) {
	storeHandle := do.MustInvoke[*SessionStoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	ctx, cancel := context.WithCancel(context.Background())

	go func() {
		ticker := time.NewTicker(gcInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				if err := storeHandle.RunGC(); err != nil {
					log.Warn("Session store GC failed", "error", err)
				}
			case <-ctx.Done():
				return
			}
		}
	}()

	log.Info("Session store GC job started", "interval", gcInterval)

	return &StoreGCJob{cancel: cancel}, nil
}

// RunStartupIngest ingests every caption file already on disk.
func RunStartupIngest(i do.Injector) {
	ingest := do.MustInvoke[*service.IngestService](i)
	log := do.MustInvoke[*logger.Logger](i)

	start := time.Now()
	n, err := ingest.IngestAll(context.Background(), service.TriggerStartup)
	if err != nil {
		log.Warn("Startup ingest finished with errors", "ingested", n, "error", err)
		return
	}
	log.Info("Startup ingest completed", "ingested", n, "duration", time.Since(start))
}
