package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"go.uber.org/fx"
)

// stopGrace bounds fx shutdown on top of the HTTP drain timeout, so a stuck
// consumer cannot hold the process forever.
const stopGrace = 30 * time.Second

type application interface {
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
	Wait() <-chan fx.ShutdownSignal
}

// run starts app, waits for a signal or an fx shutdown request and returns the
// process exit code.
func run(ctx context.Context, app application, stderr io.Writer) int {
	if err := app.Start(ctx); err != nil {
		fmt.Fprintf(stderr, "failed to start digimarket: %v\n", err)
		return 1
	}

	code := 0
	select {
	case <-ctx.Done():
	case sig := <-app.Wait():
		code = sig.ExitCode
	}

	stopCtx, cancel := context.WithTimeout(context.Background(), stopGrace)
	defer cancel()
	if err := app.Stop(stopCtx); err != nil {
		fmt.Fprintf(stderr, "failed to stop digimarket: %v\n", err)
		return 1
	}
	return code
}
