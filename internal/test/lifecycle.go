package test

import (
	"context"

	"go.uber.org/fx"
)

// LifecycleRecorder captures lifecycle hooks appended during tests.
type LifecycleRecorder struct {
	Hooks []fx.Hook
}

// Append stores hook for later invocation.
func (l *LifecycleRecorder) Append(h fx.Hook) {
	l.Hooks = append(l.Hooks, h)
}

// Start runs OnStart hooks in registration order and stops at the first error.
func (l *LifecycleRecorder) Start(ctx context.Context) error {
	for _, h := range l.Hooks {
		if h.OnStart == nil {
			continue
		}
		if err := h.OnStart(ctx); err != nil {
			return err
		}
	}
	return nil
}

// Stop runs OnStop hooks in reverse order, as fx does, and returns the first error.
func (l *LifecycleRecorder) Stop(ctx context.Context) error {
	var first error
	for i := len(l.Hooks) - 1; i >= 0; i-- {
		if l.Hooks[i].OnStop == nil {
			continue
		}
		if err := l.Hooks[i].OnStop(ctx); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// ShutdownerStub records shutdown invocations.
type ShutdownerStub struct {
	Called chan struct{}
}

// Shutdown notifies tests about graceful termination.
func (s *ShutdownerStub) Shutdown(...fx.ShutdownOption) error {
	if s.Called != nil {
		select {
		case s.Called <- struct{}{}:
		default:
		}
	}
	return nil
}
