package providers

import (
	"github.com/samber/do/v2"

	"github.com/nutritrackapp/nutritrack-server/internal/auth"
	"github.com/nutritrackapp/nutritrack-server/internal/config"
	"github.com/nutritrackapp/nutritrack-server/internal/logger"
	"github.com/nutritrackapp/nutritrack-server/internal/service"
	"github.com/nutritrackapp/nutritrack-server/internal/validation"
)

// ProvideValidator provides the struct validator.
func ProvideValidator(i do.Injector) (*validation.Validator, error) {
	return validation.New(), nil
}

// ProvideAuthService provides the authentication service.
func ProvideAuthService(i do.Injector) (*service.AuthService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	tokenService := do.MustInvoke[*auth.TokenService](i)
	validator := do.MustInvoke[*validation.Validator](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewAuthService(storeHandle.Store, tokenService, validator, log.Logger), nil
}

// ProvideFoodService provides the product search and cache service.
func ProvideFoodService(i do.Injector) (*service.FoodService, error) {
	cfg := do.MustInvoke[*config.Config](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	offHandle := do.MustInvoke[*OFFClientHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewFoodService(offHandle.Client, storeHandle.Store, cfg.Cache.FreshnessWindow, log.Logger), nil
}

// ProvideDayService provides the daily log service.
func ProvideDayService(i do.Injector) (*service.DayService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewDayService(storeHandle.Store, log.Logger), nil
}
