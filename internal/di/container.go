// Package di provides dependency injection configuration for the Cuepoint server.
package di

import (
	"github.com/samber/do/v2"

	"github.com/cuepointapp/cuepoint-server/internal/config"
	"github.com/cuepointapp/cuepoint-server/internal/di/providers"
	"github.com/cuepointapp/cuepoint-server/internal/logger"
	"github.com/cuepointapp/cuepoint-server/internal/service"
)

// NewContainer creates and configures the DI container with all providers.
func NewContainer() *do.RootScope {
	injector := do.New()

	// Core infrastructure
	do.Provide(injector, providers.ProvideConfig)
	do.Provide(injector, providers.ProvideLogger)

	// Storage layer
	do.Provide(injector, providers.ProvideSSEManager)
	do.Provide(injector, providers.ProvideCatalog)
	do.Provide(injector, providers.ProvideSessionStore)
	do.Provide(injector, providers.ProvideSearchIndex)
	do.Provide(injector, providers.ProvideSourceProvider)

	// Business services
	do.Provide(injector, providers.ProvideIngestService)
	do.Provide(injector, providers.ProvideVideoService)
	do.Provide(injector, providers.ProvideSessionService)
	do.Provide(injector, providers.ProvideAnswerLog)
	do.Provide(injector, providers.ProvideAskService)

	// Workers
	do.Provide(injector, providers.ProvideFileWatcher)
	do.Provide(injector, providers.ProvideStoreGCJob)

	// Server
	do.Provide(injector, providers.ProvideHTTPServer)

	return injector
}

// Bootstrap initializes all services and returns handles for lifecycle management.
// This triggers lazy initialization of all core services.
func Bootstrap(injector *do.RootScope) error {
	if _, err := do.Invoke[*config.Config](injector); err != nil {
		return err
	}
	_ = do.MustInvoke[*logger.Logger](injector)

	for _, invoke := range []func(do.Injector) error{
		invokeAs[*providers.SSEManagerHandle],
		invokeAs[*providers.CatalogHandle],
		invokeAs[*providers.SessionStoreHandle],
		invokeAs[*providers.SearchIndexHandle],
		invokeAs[*service.IngestService],
		invokeAs[*service.VideoService],
		invokeAs[*service.SessionService],
		invokeAs[*service.AskService],
		invokeAs[*providers.FileWatcherHandle],
		invokeAs[*providers.StoreGCJob],
		invokeAs[*providers.HTTPServerHandle],
	} {
		if err := invoke(injector); err != nil {
			return err
		}
	}

	// Pick up caption files that arrived while the server was down.
	go providers.RunStartupIngest(injector)

	return nil
}

func invokeAs[T any](i do.Injector) error {
	_, err := do.Invoke[T](i)
	return err
}
