package providers

import (
	"github.com/samber/do/v2"

	"github.com/nutritrackapp/nutritrack-server/internal/config"
	"github.com/nutritrackapp/nutritrack-server/internal/logger"
	"github.com/nutritrackapp/nutritrack-server/internal/openfoodfacts"
)

// OFFClientHandle wraps the Open Food Facts client with shutdown capability.
type OFFClientHandle struct {
	*openfoodfacts.Client
}

// Shutdown implements do.Shutdownable.
func (h *OFFClientHandle) Shutdown() error {
	h.Client.Close()
	return nil
}

// ProvideOFFClient provides the rate-limited Open Food Facts client.
func ProvideOFFClient(i do.Injector) (*OFFClientHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	client := openfoodfacts.New(openfoodfacts.Config{
		BaseURL:           cfg.OpenFoodFacts.BaseURL,
		UserAgent:         cfg.OpenFoodFacts.UserAgent,
		Timeout:           cfg.OpenFoodFacts.Timeout,
		RequestsPerMinute: cfg.OpenFoodFacts.RequestsPerMinute,
	}, log.Logger)

	log.Info("Open Food Facts client ready",
		"base_url", cfg.OpenFoodFacts.BaseURL,
		"requests_per_minute", cfg.OpenFoodFacts.RequestsPerMinute,
	)

	return &OFFClientHandle{Client: client}, nil
}
