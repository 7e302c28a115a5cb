package logger

import "go.uber.org/fx"

// Module wires the service logger built from *config.Config.
var Module = fx.Provide(New)
