package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/fx"

	"github.com/polkiloo/digimarket/internal/config"
	"github.com/polkiloo/digimarket/internal/worker"
)

// Module wires application services, runtime components, and lifecycle hooks.
var Module = fx.Options(
	fx.Provide(
		NewMarketplaceFacade,
		newHTTPServer,
		newPaymentProcessor,
	),
	fx.Invoke(registerLifecycle),
)

type serverParams struct {
	fx.In

	Config *config.Config
	Router *gin.Engine
	Logger *slog.Logger
}

const (
	readHeaderTimeout = 5 * time.Second
	readTimeout       = 15 * time.Second
	writeTimeout      = 30 * time.Second
	idleTimeout       = 2 * time.Minute
)

func newHTTPServer(p serverParams) *http.Server {
	return &http.Server{
		Addr:              p.Config.RunAddress,
		Handler:           p.Router,
		ReadHeaderTimeout: readHeaderTimeout,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ErrorLog:          slog.NewLogLogger(p.Logger.Handler(), slog.LevelWarn),
	}
}

type workerParams struct {
	fx.In

	Source worker.PaymentSource `optional:"true"`
	Dedup  worker.Deduplicator
	Facade *MarketplaceFacade
	Config *config.Config
	Logger *slog.Logger
}

func newPaymentProcessor(p workerParams) *worker.PaymentProcessor {
	return worker.NewPaymentProcessor(
		p.Source,
		p.Dedup,
		p.Facade,
		p.Config.WorkerPoolSize,
		p.Logger,
	)
}

type lifecycleParams struct {
	fx.In

	Lifecycle  fx.Lifecycle
	Shutdowner fx.Shutdowner
	Logger     *slog.Logger
	Server     *http.Server
	Worker     *worker.PaymentProcessor
	Config     *config.Config
}

func registerLifecycle(p lifecycleParams) {
	p.Lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			ln, err := net.Listen("tcp", p.Server.Addr)
			if err != nil {
				return fmt.Errorf("listen on %s: %w", p.Server.Addr, err)
			}
			p.Logger.Info("starting digimarket", slog.String("addr", ln.Addr().String()))
			p.Worker.Start(ctx)
			go func() {
				if err := p.Server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
					p.Logger.Error("http server terminated", slog.String("error", err.Error()))
					_ = p.Shutdowner.Shutdown(fx.ExitCode(1))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			p.Worker.Stop()

			shutdownCtx := ctx
			cancel := func() {}
			if _, ok := ctx.Deadline(); !ok {
				shutdownCtx, cancel = context.WithTimeout(ctx, p.Config.ShutdownTimeout)
			}
			defer cancel()

			if err := p.Server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			p.Logger.Info("digimarket stopped")
			return nil
		},
	})
}
