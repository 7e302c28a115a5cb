package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	domainErrors "github.com/polkiloo/digimarket/internal/domain/errors"
	"github.com/polkiloo/digimarket/internal/domain/model"
	"github.com/polkiloo/digimarket/internal/domain/repository"
	pkgAuth "github.com/polkiloo/digimarket/internal/pkg/auth"
)

// AuthUseCase handles user lifecycle and token management.
type AuthUseCase struct {
	users  repository.UserRepository
	hasher pkgAuth.PasswordHasher
	tokens pkgAuth.Strategy
	guard  *AuthorizationGuard
	audit  *AuditTrail
}

// NewAuthUseCase constructs AuthUseCase.
func NewAuthUseCase(users repository.UserRepository, hasher pkgAuth.PasswordHasher, strategy pkgAuth.Strategy, guard *AuthorizationGuard, audit *AuditTrail) *AuthUseCase {
	return &AuthUseCase{users: users, hasher: hasher, tokens: strategy, guard: guard, audit: audit}
}

// Register creates a new user with login/password/role and returns auth token.
// An empty role registers a buyer.
func (u *AuthUseCase) Register(ctx context.Context, login, password string, role model.Role) (*model.User, string, error) {
	login = strings.TrimSpace(login)
	if login == "" || password == "" {
		return nil, "", domainErrors.ErrInvalidCredentials
	}
	if role == "" {
		role = model.RoleBuyer
	}
	if !role.Valid() {
		return nil, "", fmt.Errorf("%w: unknown role %q", domainErrors.ErrInvalidInput, role)
	}

	hash, err := u.hasher.Hash(password)
	if err != nil {
		if errors.Is(err, pkgAuth.ErrPasswordTooLong) {
			return nil, "", fmt.Errorf("%w: %v", domainErrors.ErrInvalidInput, err)
		}
		return nil, "", err
	}

	usr, err := u.users.Create(ctx, login, hash, role)
	if err != nil {
		if errors.Is(err, domainErrors.ErrAlreadyExists) {
			return nil, "", domainErrors.ErrAlreadyExists
		}
		return nil, "", err
	}

	token, err := u.tokens.IssueToken(usr.ID)
	if err != nil {
		return nil, "", err
	}

	return usr, token, nil
}

// Authenticate validates credentials and returns auth token. Deleted accounts
// cannot log in, blocked ones can and are refused by the guard afterwards.
func (u *AuthUseCase) Authenticate(ctx context.Context, login, password string) (*model.User, string, error) {
	login = strings.TrimSpace(login)
	if login == "" || password == "" {
		return nil, "", domainErrors.ErrInvalidCredentials
	}

	usr, err := u.users.GetByLogin(ctx, login)
	if err != nil {
		if errors.Is(err, domainErrors.ErrNotFound) {
			return nil, "", domainErrors.ErrInvalidCredentials
		}
		return nil, "", err
	}

	if usr.Status == model.UserStatusDeleted {
		return nil, "", domainErrors.ErrInvalidCredentials
	}

	if err := u.hasher.Compare(usr.PasswordHash, password); err != nil {
		return nil, "", domainErrors.ErrInvalidCredentials
	}

	token, err := u.tokens.IssueToken(usr.ID)
	if err != nil {
		return nil, "", err
	}

	return usr, token, nil
}

// ParseToken extracts user ID from provided token.
func (u *AuthUseCase) ParseToken(token string) (int64, error) {
	if token == "" {
		return 0, pkgAuth.ErrInvalidToken
	}
	return u.tokens.ParseToken(token)
}

// GetByID fetches user by identifier.
func (u *AuthUseCase) GetByID(ctx context.Context, id int64) (*model.User, error) {
	return u.users.GetByID(ctx, id)
}

// ActorOf loads the authorization view of user id.
func (u *AuthUseCase) ActorOf(ctx context.Context, id int64) (model.Actor, error) {
	usr, err := u.users.GetByID(ctx, id)
	if err != nil {
		return model.Actor{}, err
	}
	return usr.Actor(), nil
}

// Block deactivates the target account.
func (u *AuthUseCase) Block(ctx context.Context, actor model.Actor, userID int64) error {
	return u.changeStatus(ctx, actor, model.ActionUserBlock, userID, model.UserStatusInactive)
}

// Unblock reactivates the target account.
func (u *AuthUseCase) Unblock(ctx context.Context, actor model.Actor, userID int64) error {
	return u.changeStatus(ctx, actor, model.ActionUserUnblock, userID, model.UserStatusActive)
}

// DeleteSelf marks the actor's own account deleted.
func (u *AuthUseCase) DeleteSelf(ctx context.Context, actor model.Actor) error {
	return u.changeStatus(ctx, actor, model.ActionUserDelete, actor.ID, model.UserStatusDeleted)
}

func (u *AuthUseCase) changeStatus(ctx context.Context, actor model.Actor, action model.Action, userID int64, to model.UserStatus) error {
	err := u.guard.Authorize(actor, action, model.Resource{OwnerID: userID})
	if err == nil {
		err = u.applyStatus(ctx, userID, to)
	}
	u.audit.RecordOutcome(ctx, action, actorRef(actor), fmt.Sprintf("user %d -> %s", userID, to), err)
	return err
}

func (u *AuthUseCase) applyStatus(ctx context.Context, userID int64, to model.UserStatus) error {
	usr, err := u.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	switch {
	case usr.Status == to:
		return fmt.Errorf("%w: user is %s", domainErrors.ErrAlreadyInState, to)
	case usr.Status == model.UserStatusDeleted:
		return fmt.Errorf("%w: user is deleted", domainErrors.ErrInvalidTransition)
	}
	return u.users.SetStatus(ctx, userID, to)
}
