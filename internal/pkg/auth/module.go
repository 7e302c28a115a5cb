package auth

import (
	"github.com/polkiloo/digimarket/internal/config"
	"go.uber.org/fx"
)

// Module provides authentication primitives via fx.
var Module = fx.Options(
	fx.Provide(newPasswordHasher),
	fx.Provide(newTokenStrategy),
)

type strategyParams struct {
	fx.In

	Config *config.Config
}

func newPasswordHasher(p strategyParams) PasswordHasher {
	return NewBcryptHasher(p.Config.PasswordCost)
}

func newTokenStrategy(p strategyParams) Strategy {
	return NewHMACStrategy(p.Config.JWTSecret, Options{TTL: p.Config.TokenTTL})
}
