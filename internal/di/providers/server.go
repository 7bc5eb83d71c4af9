package providers

import (
	"context"
	"net/http"

	"github.com/samber/do/v2"

	"github.com/nutritrackapp/nutritrack-server/internal/api"
	"github.com/nutritrackapp/nutritrack-server/internal/config"
	"github.com/nutritrackapp/nutritrack-server/internal/logger"
	"github.com/nutritrackapp/nutritrack-server/internal/service"
)

// HTTPServerHandle wraps http.Server with Shutdownable.
type HTTPServerHandle struct {
	*http.Server
}

// Shutdown implements do.Shutdownable.
func (h *HTTPServerHandle) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return h.Server.Shutdown(ctx)
}

// ProvideHTTPServer provides the HTTP server.
func ProvideHTTPServer(i do.Injector) (*HTTPServerHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	offHandle := do.MustInvoke[*OFFClientHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	services := &api.Services{
		Auth: do.MustInvoke[*service.AuthService](i),
		Food: do.MustInvoke[*service.FoodService](i),
		Day:  do.MustInvoke[*service.DayService](i),
	}

	handler := api.NewServer(storeHandle.Store, services, offHandle.Client, log.Logger)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start in background
	go func() {
		log.Info("HTTP server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("HTTP server error", "error", err)
		}
	}()

	return &HTTPServerHandle{Server: srv}, nil
}
