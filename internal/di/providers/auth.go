package providers

import (
	"path/filepath"

	"github.com/samber/do/v2"

	"github.com/nutritrackapp/nutritrack-server/internal/auth"
	"github.com/nutritrackapp/nutritrack-server/internal/config"
	"github.com/nutritrackapp/nutritrack-server/internal/logger"
)

// AuthKey is the PASETO v4 symmetric key as hex.
type AuthKey string

// ProvideAuthKey loads the authentication key from config, or loads/generates
// one next to the database.
func ProvideAuthKey(i do.Injector) (AuthKey, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	keyHex := cfg.Auth.AccessTokenKeyHex
	if keyHex == "" {
		var err error
		keyHex, err = auth.LoadOrGenerateKey(filepath.Dir(cfg.Store.DBPath))
		if err != nil {
			return "", err
		}
		cfg.Auth.AccessTokenKeyHex = keyHex
	}

	log.Info("Authentication key loaded",
		"access_token_duration", cfg.Auth.AccessTokenDuration,
		"refresh_token_duration", cfg.Auth.RefreshTokenDuration,
	)

	return AuthKey(keyHex), nil
}

// ProvideTokenService provides the PASETO token service.
func ProvideTokenService(i do.Injector) (*auth.TokenService, error) {
	cfg := do.MustInvoke[*config.Config](i)
	authKey := do.MustInvoke[AuthKey](i)

	return auth.NewTokenService(string(authKey), cfg.Auth.AccessTokenDuration, cfg.Auth.RefreshTokenDuration)
}
