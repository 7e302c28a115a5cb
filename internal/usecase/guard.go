package usecase

import (
	domainErrors "github.com/polkiloo/digimarket/internal/domain/errors"
	"github.com/polkiloo/digimarket/internal/domain/model"
	"github.com/polkiloo/digimarket/internal/telemetry"
)

// relation is the link between actor and resource an action requires.
type relation int

const (
	anyResource relation = iota
	ownsResource
	sellsEveryItem
	sellsAnyItem
)

// permissions lists which roles may perform each action and on what terms.
// A role missing from an action's row is denied with INSUFFICIENT_ROLE.
var permissions = map[model.Action]map[model.Role]relation{
	model.ActionOrderPlace:   {model.RoleBuyer: ownsResource},
	model.ActionOrderCancel:  {model.RoleBuyer: ownsResource, model.RoleAdmin: anyResource},
	model.ActionOrderShip:    {model.RoleSeller: sellsEveryItem, model.RoleAdmin: anyResource},
	model.ActionOrderDeliver: {model.RoleSeller: sellsEveryItem, model.RoleAdmin: anyResource},
	model.ActionOrderView: {
		model.RoleBuyer:  ownsResource,
		model.RoleSeller: sellsAnyItem,
		model.RoleAdmin:  anyResource,
	},

	model.ActionOfferCreate:     {model.RoleSeller: ownsResource},
	model.ActionOfferEdit:       {model.RoleSeller: ownsResource},
	model.ActionOfferActivate:   {model.RoleSeller: ownsResource},
	model.ActionOfferDeactivate: {model.RoleSeller: ownsResource},
	model.ActionOfferRestock:    {model.RoleSeller: ownsResource},
	model.ActionOfferArchive:    {model.RoleSeller: ownsResource},
	model.ActionOfferDelete:     {model.RoleSeller: ownsResource, model.RoleAdmin: anyResource},
	model.ActionOfferModerate:   {model.RoleAdmin: anyResource},
	model.ActionOfferUnmoderate: {model.RoleAdmin: anyResource},
	model.ActionOfferView: {
		model.RoleBuyer:  anyResource,
		model.RoleSeller: anyResource,
		model.RoleAdmin:  anyResource,
	},

	model.ActionUserBlock:   {model.RoleAdmin: anyResource},
	model.ActionUserUnblock: {model.RoleAdmin: anyResource},
	model.ActionUserDelete: {
		model.RoleBuyer:  ownsResource,
		model.RoleSeller: ownsResource,
		model.RoleAdmin:  ownsResource,
	},

	model.ActionAuditView: {model.RoleAdmin: anyResource},
}

// AuthorizationGuard decides whether an actor may perform an action on a resource.
// It performs no I/O and never mutates state.
type AuthorizationGuard struct{}

// NewAuthorizationGuard constructs AuthorizationGuard.
func NewAuthorizationGuard() *AuthorizationGuard {
	return &AuthorizationGuard{}
}

// Authorize returns nil when allowed and *errors.DeniedError otherwise.
// Account status is checked first, then role, then relationship.
func (g *AuthorizationGuard) Authorize(actor model.Actor, action model.Action, resource model.Resource) error {
	if !actor.Active() {
		return g.deny(domainErrors.ReasonAccountInactive)
	}

	rel, ok := permissions[action][actor.Role]
	if !ok {
		return g.deny(domainErrors.ReasonInsufficientRole)
	}

	if !rel.holds(actor.ID, resource) {
		return g.deny(domainErrors.ReasonNotOwner)
	}
	return nil
}

// RequireActive only checks account status. Used for listings scoped to the actor.
func (g *AuthorizationGuard) RequireActive(actor model.Actor) error {
	if !actor.Active() {
		return g.deny(domainErrors.ReasonAccountInactive)
	}
	return nil
}

func (g *AuthorizationGuard) deny(reason domainErrors.DenialReason) error {
	telemetry.AuthorizationDeniedTotal.WithLabelValues(string(reason)).Inc()
	return domainErrors.Denied(reason)
}

func (r relation) holds(actorID int64, resource model.Resource) bool {
	switch r {
	case anyResource:
		return true
	case ownsResource:
		return resource.OwnerID == actorID
	case sellsEveryItem:
		if len(resource.SellerIDs) == 0 {
			return false
		}
		for _, id := range resource.SellerIDs {
			if id != actorID {
				return false
			}
		}
		return true
	case sellsAnyItem:
		for _, id := range resource.SellerIDs {
			if id == actorID {
				return true
			}
		}
	}
	return false
}
