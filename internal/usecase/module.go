package usecase

import "go.uber.org/fx"

// Module provides core business use cases to the fx container.
var Module = fx.Options(
	fx.Provide(
		NewAuthorizationGuard,
		NewInventoryLedger,
		newAuditTrailFromParams,
		NewOfferLifecycle,
		NewOrderLifecycle,
		NewAuthUseCase,
		NewAuditLogReader,
	),
	fx.Provide(
		fx.Annotate(
			NewRepositoryAuditSink,
			fx.As(new(AuditSink)),
			fx.ResultTags(`group:"audit_sinks"`),
		),
	),
)
