package postgres

import (
	"context"
	"fmt"
	"log/slog"

	"go.uber.org/fx"

	"github.com/polkiloo/digimarket/internal/config"
	"github.com/polkiloo/digimarket/internal/domain/repository"
)

// Module wires PostgreSQL storage and repository adapters.
var Module = fx.Options(
	fx.Provide(newStorage),
	fx.Provide(
		func(s *Storage) repository.Transactor { return s },
		func(s *Storage) repository.UserRepository { return s.Users() },
		func(s *Storage) repository.AuditRepository { return s.AuditLog() },
	),
	fx.Invoke(registerLifecycle),
)

type storageParams struct {
	fx.In

	Ctx    context.Context
	Config *config.Config
	Logger *slog.Logger
}

func newStorage(p storageParams) (*Storage, error) {
	return New(p.Ctx, p.Config.DatabaseURI, p.Logger)
}

// registerLifecycle refuses to start against an unreachable database and
// closes the pool on shutdown.
func registerLifecycle(lc fx.Lifecycle, storage *Storage) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := storage.HealthCheck(ctx); err != nil {
				return fmt.Errorf("postgres not reachable: %w", err)
			}
			storage.logger.Info("database ready")
			return nil
		},
		OnStop: func(ctx context.Context) error {
			storage.logger.Info("closing database pool")
			storage.Close()
			return nil
		},
	})
}
