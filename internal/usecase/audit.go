package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.uber.org/fx"

	domainErrors "github.com/polkiloo/digimarket/internal/domain/errors"
	"github.com/polkiloo/digimarket/internal/domain/model"
	"github.com/polkiloo/digimarket/internal/domain/repository"
	"github.com/polkiloo/digimarket/internal/telemetry"
)

// AuditSink delivers audit entries to one destination.
type AuditSink interface {
	Name() string
	Write(ctx context.Context, entry model.LogEntry) error
}

// AuditTrail fans out log entries to every configured sink. Sink failures are
// logged and never change the outcome of the audited operation.
type AuditTrail struct {
	sinks []AuditSink
	log   *slog.Logger
	now   func() time.Time
}

// AuditTrailParams collects sinks registered in the "audit_sinks" group.
type AuditTrailParams struct {
	fx.In

	Logger *slog.Logger
	Sinks  []AuditSink `group:"audit_sinks"`
}

// NewAuditTrail constructs AuditTrail.
func NewAuditTrail(log *slog.Logger, sinks ...AuditSink) *AuditTrail {
	return &AuditTrail{sinks: sinks, log: log, now: time.Now}
}

func newAuditTrailFromParams(p AuditTrailParams) *AuditTrail {
	return NewAuditTrail(p.Logger, p.Sinks...)
}

// Record appends one entry to every sink.
func (a *AuditTrail) Record(ctx context.Context, eventType string, actorID *int64, message string) {
	entry := model.LogEntry{
		EventType: eventType,
		UserID:    actorID,
		Message:   message,
		CreatedAt: a.now().UTC(),
	}
	for _, sink := range a.sinks {
		if err := sink.Write(ctx, entry); err != nil {
			telemetry.AuditSinkErrorsTotal.WithLabelValues(sink.Name()).Inc()
			a.log.Error("audit sink write failed",
				slog.String("sink", sink.Name()),
				slog.String("event_type", eventType),
				slog.String("error", err.Error()),
			)
		}
	}
}

// RecordOutcome records the result of action on subject and returns the outcome label.
func (a *AuditTrail) RecordOutcome(ctx context.Context, action model.Action, actorID *int64, subject string, err error) string {
	outcome := outcomeOf(err)
	message := subject
	switch outcome {
	case model.OutcomeRejected:
		message = fmt.Sprintf("%s: %s", subject, domainErrors.Code(err))
		if reason, ok := domainErrors.ReasonOf(err); ok {
			message = fmt.Sprintf("%s (%s)", message, reason)
		}
	case model.OutcomeFailed:
		message = fmt.Sprintf("%s: %v", subject, err)
	}
	a.Record(ctx, model.EventType(action, outcome), actorID, message)
	return outcome
}

func outcomeOf(err error) string {
	switch {
	case err == nil:
		return model.OutcomeSucceeded
	case domainErrors.IsRejection(err):
		return model.OutcomeRejected
	default:
		return model.OutcomeFailed
	}
}

// RepositoryAuditSink persists entries through AuditRepository.
type RepositoryAuditSink struct {
	repo repository.AuditRepository
}

// NewRepositoryAuditSink constructs RepositoryAuditSink.
func NewRepositoryAuditSink(repo repository.AuditRepository) *RepositoryAuditSink {
	return &RepositoryAuditSink{repo: repo}
}

// Name identifies the sink in metrics and logs.
func (s *RepositoryAuditSink) Name() string { return "postgres" }

// Write appends entry to the log_entries table.
func (s *RepositoryAuditSink) Write(ctx context.Context, entry model.LogEntry) error {
	return s.repo.Append(ctx, entry)
}

// AuditLogReader exposes recent audit entries to administrators.
type AuditLogReader struct {
	repo  repository.AuditRepository
	guard *AuthorizationGuard
}

// NewAuditLogReader constructs AuditLogReader.
func NewAuditLogReader(repo repository.AuditRepository, guard *AuthorizationGuard) *AuditLogReader {
	return &AuditLogReader{repo: repo, guard: guard}
}

// Recent returns up to limit newest entries.
func (r *AuditLogReader) Recent(ctx context.Context, actor model.Actor, limit int) ([]model.LogEntry, error) {
	if err := r.guard.Authorize(actor, model.ActionAuditView, model.Resource{}); err != nil {
		return nil, err
	}
	if limit <= 0 || limit > maxAuditPage {
		limit = maxAuditPage
	}
	return r.repo.ListRecent(ctx, limit)
}

const maxAuditPage = 100

func actorRef(actor model.Actor) *int64 {
	id := actor.ID
	return &id
}
