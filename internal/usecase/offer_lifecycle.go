package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"go.opentelemetry.io/otel/attribute"

	domainErrors "github.com/polkiloo/digimarket/internal/domain/errors"
	"github.com/polkiloo/digimarket/internal/domain/model"
	"github.com/polkiloo/digimarket/internal/domain/repository"
	"github.com/polkiloo/digimarket/internal/telemetry"
)

// OfferLifecycle owns the offer state machine.
type OfferLifecycle struct {
	tx     repository.Transactor
	guard  *AuthorizationGuard
	ledger *InventoryLedger
	audit  *AuditTrail
	log    *slog.Logger
}

// NewOfferLifecycle constructs OfferLifecycle.
func NewOfferLifecycle(tx repository.Transactor, guard *AuthorizationGuard, ledger *InventoryLedger, audit *AuditTrail, log *slog.Logger) *OfferLifecycle {
	return &OfferLifecycle{tx: tx, guard: guard, ledger: ledger, audit: audit, log: log}
}

// Create lists a new offer for the seller. Offers without stock start inactive.
func (u *OfferLifecycle) Create(ctx context.Context, actor model.Actor, draft model.OfferDraft) (*model.Offer, error) {
	ctx, span := telemetry.StartSpan(ctx, "OfferLifecycle.Create", attribute.Int64("actor.id", actor.ID))

	var created *model.Offer
	err := u.guard.Authorize(actor, model.ActionOfferCreate, model.Resource{OwnerID: actor.ID})
	if err == nil {
		err = validateDraft(&draft)
	}
	if err == nil {
		status := model.OfferStatusInactive
		if draft.Quantity > 0 {
			status = model.OfferStatusActive
		}
		err = u.tx.InTx(ctx, func(repos repository.Factory) error {
			var err error
			created, err = repos.Offers().Create(ctx, actor.ID, draft, status)
			return err
		})
	}

	subject := fmt.Sprintf("offer %q", draft.Title)
	if created != nil {
		subject = fmt.Sprintf("offer %d created", created.ID)
	}
	u.finish(ctx, model.ActionOfferCreate, actor, subject, err)
	telemetry.EndSpan(span, err)
	if err != nil {
		return nil, err
	}
	return created, nil
}

// Get returns offer visible to any active actor.
func (u *OfferLifecycle) Get(ctx context.Context, actor model.Actor, id int64) (*model.Offer, error) {
	var offer *model.Offer
	err := u.tx.InTx(ctx, func(repos repository.Factory) error {
		var err error
		offer, err = repos.Offers().GetByID(ctx, id)
		if err != nil {
			return err
		}
		return u.guard.Authorize(actor, model.ActionOfferView, model.OfferResource(*offer))
	})
	if err != nil {
		return nil, err
	}
	return offer, nil
}

// Edit changes title, price or category. Quantity and existing order items are untouched.
func (u *OfferLifecycle) Edit(ctx context.Context, actor model.Actor, id int64, patch model.OfferPatch) (*model.Offer, error) {
	ctx, span := telemetry.StartSpan(ctx, "OfferLifecycle.Edit", attribute.Int64("offer.id", id))

	var updated *model.Offer
	err := validatePatch(&patch)
	if err == nil {
		err = u.tx.InTx(ctx, func(repos repository.Factory) error {
			offer, err := repos.Offers().GetByID(ctx, id)
			if err != nil {
				return err
			}
			if err := u.guard.Authorize(actor, model.ActionOfferEdit, model.OfferResource(*offer)); err != nil {
				return err
			}
			if offer.Status == model.OfferStatusArchived || offer.Status == model.OfferStatusDeleted {
				return fmt.Errorf("%w: offer is %s", domainErrors.ErrInvalidTransition, offer.Status)
			}
			updated, err = repos.Offers().UpdateContent(ctx, id, patch)
			return err
		})
	}

	u.finish(ctx, model.ActionOfferEdit, actor, fmt.Sprintf("offer %d edited", id), err)
	telemetry.EndSpan(span, err)
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Restock adds units to an active, inactive or sold offer.
func (u *OfferLifecycle) Restock(ctx context.Context, actor model.Actor, id, quantity int64) (*model.Offer, error) {
	ctx, span := telemetry.StartSpan(ctx, "OfferLifecycle.Restock",
		attribute.Int64("offer.id", id), attribute.Int64("quantity", quantity))

	var result *model.Offer
	var err error
	if quantity < 1 {
		err = fmt.Errorf("%w: restock quantity must be positive", domainErrors.ErrInvalidInput)
	} else {
		err = inTxWithRetry(ctx, u.tx, func(repos repository.Factory) error {
			offer, err := repos.Offers().GetByID(ctx, id)
			if err != nil {
				return err
			}
			if err := u.guard.Authorize(actor, model.ActionOfferRestock, model.OfferResource(*offer)); err != nil {
				return err
			}
			switch offer.Status {
			case model.OfferStatusActive, model.OfferStatusInactive, model.OfferStatusSold:
			default:
				return fmt.Errorf("%w: cannot restock %s offer", domainErrors.ErrInvalidTransition, offer.Status)
			}
			level, err := u.ledger.Restock(ctx, repos, id, quantity)
			if err != nil {
				return err
			}
			offer.Quantity = level.Quantity
			offer.Status = level.Status
			result = offer
			return nil
		})
	}

	u.finish(ctx, model.ActionOfferRestock, actor, fmt.Sprintf("offer %d restocked by %d", id, quantity), err)
	telemetry.EndSpan(span, err)
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Activate makes an inactive offer purchasable again.
func (u *OfferLifecycle) Activate(ctx context.Context, actor model.Actor, id int64) (*model.Offer, error) {
	return u.transition(ctx, actor, model.ActionOfferActivate, id)
}

// Deactivate hides an active offer.
func (u *OfferLifecycle) Deactivate(ctx context.Context, actor model.Actor, id int64) (*model.Offer, error) {
	return u.transition(ctx, actor, model.ActionOfferDeactivate, id)
}

// Archive retires an active or inactive offer.
func (u *OfferLifecycle) Archive(ctx context.Context, actor model.Actor, id int64) (*model.Offer, error) {
	return u.transition(ctx, actor, model.ActionOfferArchive, id)
}

// Delete soft deletes the offer. Order items keep their snapshot.
func (u *OfferLifecycle) Delete(ctx context.Context, actor model.Actor, id int64) (*model.Offer, error) {
	return u.transition(ctx, actor, model.ActionOfferDelete, id)
}

// Moderate hides an offer on behalf of an admin and remembers its status.
func (u *OfferLifecycle) Moderate(ctx context.Context, actor model.Actor, id int64) (*model.Offer, error) {
	return u.transition(ctx, actor, model.ActionOfferModerate, id)
}

// Unmoderate lifts moderation. The status is recomputed from current quantity.
func (u *OfferLifecycle) Unmoderate(ctx context.Context, actor model.Actor, id int64) (*model.Offer, error) {
	return u.transition(ctx, actor, model.ActionOfferUnmoderate, id)
}

func (u *OfferLifecycle) transition(ctx context.Context, actor model.Actor, action model.Action, id int64) (*model.Offer, error) {
	ctx, span := telemetry.StartSpan(ctx, "OfferLifecycle."+actionName(action), attribute.Int64("offer.id", id))

	var result *model.Offer
	err := inTxWithRetry(ctx, u.tx, func(repos repository.Factory) error {
		offer, err := repos.Offers().GetByID(ctx, id)
		if err != nil {
			return err
		}
		if err := u.guard.Authorize(actor, action, model.OfferResource(*offer)); err != nil {
			return err
		}
		to, previous, err := nextOfferStatus(action, *offer)
		if err != nil {
			return err
		}
		if err := repos.Offers().CompareAndSetStatus(ctx, id, offer.Status, to, previous); err != nil {
			return err
		}
		offer.Status = to
		offer.PreviousStatus = previous
		result = offer
		return nil
	})
	err = conflictAsInvalidTransition(err)

	subject := fmt.Sprintf("offer %d", id)
	if result != nil {
		subject = fmt.Sprintf("offer %d -> %s", id, result.Status)
	}
	u.finish(ctx, action, actor, subject, err)
	telemetry.EndSpan(span, err)
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (u *OfferLifecycle) finish(ctx context.Context, action model.Action, actor model.Actor, subject string, err error) {
	outcome := u.audit.RecordOutcome(ctx, action, actorRef(actor), subject, err)
	telemetry.OfferTransitionsTotal.WithLabelValues(string(action), outcome).Inc()
	if outcome == model.OutcomeFailed {
		u.log.Error("offer operation failed",
			slog.String("action", string(action)),
			slog.Int64("actor_id", actor.ID),
			slog.String("error", err.Error()),
		)
	}
}

// nextOfferStatus resolves the target of a user initiated offer transition.
// previous is the value to store in previous_status alongside the new status.
func nextOfferStatus(action model.Action, offer model.Offer) (model.OfferStatus, *model.OfferStatus, error) {
	from := offer.Status
	invalid := func() (model.OfferStatus, *model.OfferStatus, error) {
		return "", nil, fmt.Errorf("%w: %s on %s offer", domainErrors.ErrInvalidTransition, action, from)
	}
	already := func() (model.OfferStatus, *model.OfferStatus, error) {
		return "", nil, fmt.Errorf("%w: offer is %s", domainErrors.ErrAlreadyInState, from)
	}

	switch action {
	case model.ActionOfferDeactivate:
		switch from {
		case model.OfferStatusInactive:
			return already()
		case model.OfferStatusActive:
			return model.OfferStatusInactive, nil, nil
		}
	case model.ActionOfferActivate:
		switch from {
		case model.OfferStatusActive:
			return already()
		case model.OfferStatusInactive:
			if offer.Quantity == 0 {
				return "", nil, fmt.Errorf("offer %d: %w", offer.ID, domainErrors.ErrOutOfStock)
			}
			return model.OfferStatusActive, nil, nil
		}
	case model.ActionOfferModerate:
		switch from {
		case model.OfferStatusModerated:
			return already()
		case model.OfferStatusActive, model.OfferStatusInactive, model.OfferStatusSold, model.OfferStatusArchived:
			previous := from
			return model.OfferStatusModerated, &previous, nil
		}
	case model.ActionOfferUnmoderate:
		if from != model.OfferStatusModerated {
			return invalid()
		}
		if offer.PreviousStatus != nil && *offer.PreviousStatus == model.OfferStatusArchived {
			return model.OfferStatusArchived, nil, nil
		}
		if offer.Quantity > 0 {
			return model.OfferStatusActive, nil, nil
		}
		return model.OfferStatusInactive, nil, nil
	case model.ActionOfferArchive:
		switch from {
		case model.OfferStatusArchived:
			return already()
		case model.OfferStatusActive, model.OfferStatusInactive:
			return model.OfferStatusArchived, nil, nil
		}
	case model.ActionOfferDelete:
		if from == model.OfferStatusDeleted {
			return already()
		}
		return model.OfferStatusDeleted, nil, nil
	}
	return invalid()
}

func validateDraft(draft *model.OfferDraft) error {
	draft.Title = strings.TrimSpace(draft.Title)
	switch {
	case draft.Title == "":
		return fmt.Errorf("%w: title is required", domainErrors.ErrInvalidInput)
	case draft.Price < 0:
		return fmt.Errorf("%w: price must not be negative", domainErrors.ErrInvalidInput)
	case draft.Quantity < 0:
		return fmt.Errorf("%w: quantity must not be negative", domainErrors.ErrInvalidInput)
	}
	return nil
}

func validatePatch(patch *model.OfferPatch) error {
	if patch.Empty() {
		return fmt.Errorf("%w: nothing to update", domainErrors.ErrInvalidInput)
	}
	if patch.Title != nil {
		title := strings.TrimSpace(*patch.Title)
		if title == "" {
			return fmt.Errorf("%w: title is required", domainErrors.ErrInvalidInput)
		}
		patch.Title = &title
	}
	if patch.Price != nil && *patch.Price < 0 {
		return fmt.Errorf("%w: price must not be negative", domainErrors.ErrInvalidInput)
	}
	return nil
}

// actionName turns "offer.moderate" into "Moderate" for span names.
func actionName(action model.Action) string {
	name := string(action)
	if i := strings.LastIndexByte(name, '.'); i >= 0 {
		name = name[i+1:]
	}
	if name == "" {
		return name
	}
	return strings.ToUpper(name[:1]) + name[1:]
}
