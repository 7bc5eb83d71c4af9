// Package di provides dependency injection configuration for the NutriTrack server.
package di

import (
	"github.com/samber/do/v2"

	"github.com/nutritrackapp/nutritrack-server/internal/auth"
	"github.com/nutritrackapp/nutritrack-server/internal/config"
	"github.com/nutritrackapp/nutritrack-server/internal/di/providers"
	"github.com/nutritrackapp/nutritrack-server/internal/logger"
	"github.com/nutritrackapp/nutritrack-server/internal/service"
	"github.com/nutritrackapp/nutritrack-server/internal/validation"
)

// NewContainer creates and configures the DI container with all providers.
func NewContainer() *do.RootScope {
	injector := do.New()

	// Core infrastructure
	do.Provide(injector, providers.ProvideConfig)
	do.Provide(injector, providers.ProvideLogger)
	do.Provide(injector, providers.ProvideAuthKey)

	// Database layer
	do.Provide(injector, providers.ProvideStore)

	// Upstream API client
	do.Provide(injector, providers.ProvideOFFClient)

	// Auth layer
	do.Provide(injector, providers.ProvideTokenService)

	// Business services
	do.Provide(injector, providers.ProvideValidator)
	do.Provide(injector, providers.ProvideAuthService)
	do.Provide(injector, providers.ProvideFoodService)
	do.Provide(injector, providers.ProvideDayService)

	// Workers
	do.Provide(injector, providers.ProvideSessionCleanupJob)
	do.Provide(injector, providers.ProvideCacheRetentionJob)

	// Server
	do.Provide(injector, providers.ProvideHTTPServer)

	return injector
}

// Bootstrap initializes all services. This triggers lazy initialization of
// every provider in dependency order.
func Bootstrap(injector *do.RootScope) error {
	_ = do.MustInvoke[*config.Config](injector)
	_ = do.MustInvoke[*logger.Logger](injector)
	_ = do.MustInvoke[providers.AuthKey](injector)
	_ = do.MustInvoke[*providers.StoreHandle](injector)
	_ = do.MustInvoke[*providers.OFFClientHandle](injector)
	_ = do.MustInvoke[*auth.TokenService](injector)

	_ = do.MustInvoke[*validation.Validator](injector)
	_ = do.MustInvoke[*service.AuthService](injector)
	_ = do.MustInvoke[*service.FoodService](injector)
	_ = do.MustInvoke[*service.DayService](injector)

	_ = do.MustInvoke[*providers.SessionCleanupJob](injector)
	_ = do.MustInvoke[*providers.CacheRetentionJob](injector)

	_ = do.MustInvoke[*providers.HTTPServerHandle](injector)

	return nil
}
