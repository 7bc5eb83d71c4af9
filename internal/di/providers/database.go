package providers

import (
	"github.com/samber/do/v2"

	"github.com/nutritrackapp/nutritrack-server/internal/config"
	"github.com/nutritrackapp/nutritrack-server/internal/logger"
	"github.com/nutritrackapp/nutritrack-server/internal/store/sqlite"
)

// StoreHandle wraps the store with shutdown capability.
type StoreHandle struct {
	*sqlite.Store
}

// Shutdown implements do.Shutdownable.
func (h *StoreHandle) Shutdown() error {
	return h.Close()
}

// ProvideStore provides the SQLite store.
func ProvideStore(i do.Injector) (*StoreHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	st, err := sqlite.Open(cfg.Store.DBPath, log.Logger)
	if err != nil {
		return nil, err
	}

	log.Info("Database opened", "path", cfg.Store.DBPath)

	return &StoreHandle{Store: st}, nil
}
