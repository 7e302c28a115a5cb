package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	domainErrors "github.com/polkiloo/digimarket/internal/domain/errors"
	"github.com/polkiloo/digimarket/internal/domain/model"
	pkgAuth "github.com/polkiloo/digimarket/internal/pkg/auth"
	testhelpers "github.com/polkiloo/digimarket/internal/test"
)

func newStrategyStub() testhelpers.StrategyStub {
	return testhelpers.StrategyStub{}
}

func newAuthUseCase(repo *testhelpers.UserRepositoryStub, hasher testhelpers.HasherStub, strategy testhelpers.StrategyStub) (*AuthUseCase, *testhelpers.AuditRepositoryStub) {
	audit := &testhelpers.AuditRepositoryStub{}
	trail := NewAuditTrail(discardLogger(), NewRepositoryAuditSink(audit))
	return NewAuthUseCase(repo, hasher, strategy, NewAuthorizationGuard(), trail), audit
}

func TestAuthUseCaseRegisterSuccess(t *testing.T) {
	repo := testhelpers.NewUserRepositoryStub()
	uc, _ := newAuthUseCase(repo, testhelpers.HasherStub{}, newStrategyStub())

	ctx := context.Background()
	user, token, err := uc.Register(ctx, "alice", "password", model.RoleSeller)
	if err != nil {
		t.Fatalf("register returned error: %v", err)
	}
	if user.ID == 0 {
		t.Fatalf("expected user to have ID assigned")
	}
	if token != "token-1" {
		t.Fatalf("unexpected token %q", token)
	}
	stored, err := repo.GetByLogin(ctx, "alice")
	if err != nil {
		t.Fatalf("expected user in repository: %v", err)
	}
	if stored.PasswordHash != testhelpers.PlainHash("password") {
		t.Fatalf("password hash not stored: %v", stored.PasswordHash)
	}
	if stored.Role != model.RoleSeller || stored.Status != model.UserStatusActive {
		t.Fatalf("unexpected role/status %s/%s", stored.Role, stored.Status)
	}
}

func TestAuthUseCaseRegisterDefaultsToBuyer(t *testing.T) {
	repo := testhelpers.NewUserRepositoryStub()
	uc, _ := newAuthUseCase(repo, testhelpers.HasherStub{}, newStrategyStub())

	user, _, err := uc.Register(context.Background(), "dave", "pw", "")
	if err != nil {
		t.Fatalf("register returned error: %v", err)
	}
	if user.Role != model.RoleBuyer {
		t.Fatalf("expected buyer role, got %s", user.Role)
	}

	if _, _, err := uc.Register(context.Background(), "eve", "pw", model.Role("root")); !errors.Is(err, domainErrors.ErrInvalidInput) {
		t.Fatalf("expected invalid input for unknown role, got %v", err)
	}
}

func TestAuthUseCaseRegisterDuplicate(t *testing.T) {
	repo := testhelpers.NewUserRepositoryStub()
	uc, _ := newAuthUseCase(repo, testhelpers.HasherStub{}, newStrategyStub())

	ctx := context.Background()
	if _, _, err := uc.Register(ctx, "bob", "secret", model.RoleBuyer); err != nil {
		t.Fatalf("unexpected error on first register: %v", err)
	}
	if _, _, err := uc.Register(ctx, "bob", "secret", model.RoleBuyer); err != domainErrors.ErrAlreadyExists {
		t.Fatalf("expected ErrAlreadyExists, got %v", err)
	}
}

func TestAuthUseCaseAuthenticate(t *testing.T) {
	repo := testhelpers.NewUserRepositoryStub()
	uc, _ := newAuthUseCase(repo, testhelpers.HasherStub{}, newStrategyStub())

	ctx := context.Background()
	if _, _, err := uc.Register(ctx, "carol", "123456", model.RoleBuyer); err != nil {
		t.Fatalf("register failed: %v", err)
	}

	if _, _, err := uc.Authenticate(ctx, "carol", "bad"); err != domainErrors.ErrInvalidCredentials {
		t.Fatalf("expected invalid credentials error, got %v", err)
	}

	_, token, err := uc.Authenticate(ctx, "carol", "123456")
	if err != nil {
		t.Fatalf("authenticate returned error: %v", err)
	}
	if token != "token-1" {
		t.Fatalf("unexpected token %q", token)
	}
}

func TestAuthUseCaseAuthenticateDeletedAccount(t *testing.T) {
	repo := testhelpers.NewUserRepositoryStub()
	uc, _ := newAuthUseCase(repo, testhelpers.HasherStub{}, newStrategyStub())
	ctx := context.Background()

	user, _, err := uc.Register(ctx, "gone", "pw", model.RoleBuyer)
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if err := uc.DeleteSelf(ctx, user.Actor()); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if _, _, err := uc.Authenticate(ctx, "gone", "pw"); err != domainErrors.ErrInvalidCredentials {
		t.Fatalf("expected invalid credentials for deleted account, got %v", err)
	}
}

func TestAuthUseCaseParseToken(t *testing.T) {
	uc, _ := newAuthUseCase(testhelpers.NewUserRepositoryStub(), testhelpers.HasherStub{}, newStrategyStub())

	id, err := uc.ParseToken("token-42")
	if err != nil {
		t.Fatalf("parse token failed: %v", err)
	}
	if id != 42 {
		t.Fatalf("expected id 42, got %d", id)
	}

	if _, err := uc.ParseToken("bad-token"); err != pkgAuth.ErrInvalidToken {
		t.Fatalf("expected invalid token error, got %v", err)
	}

	if _, err := uc.ParseToken(""); err != pkgAuth.ErrInvalidToken {
		t.Fatalf("expected invalid token error, got %v", err)
	}
}

func TestAuthUseCaseRegisterValidation(t *testing.T) {
	uc, _ := newAuthUseCase(testhelpers.NewUserRepositoryStub(), testhelpers.HasherStub{}, newStrategyStub())
	if _, _, err := uc.Register(context.Background(), "", "password", model.RoleBuyer); err != domainErrors.ErrInvalidCredentials {
		t.Fatalf("expected invalid credentials error, got %v", err)
	}
	if _, _, err := uc.Register(context.Background(), "user", "", model.RoleBuyer); err != domainErrors.ErrInvalidCredentials {
		t.Fatalf("expected invalid credentials error, got %v", err)
	}
}

func TestAuthUseCaseRegisterHasherError(t *testing.T) {
	repo := testhelpers.NewUserRepositoryStub()
	uc, _ := newAuthUseCase(repo, testhelpers.HasherStub{Err: fmt.Errorf("hash error")}, newStrategyStub())
	if _, _, err := uc.Register(context.Background(), "user", "pass", model.RoleBuyer); err == nil {
		t.Fatal("expected hashing error")
	}
}

func TestAuthUseCaseRegisterPasswordTooLong(t *testing.T) {
	repo := testhelpers.NewUserRepositoryStub()
	uc, _ := newAuthUseCase(repo, testhelpers.HasherStub{}, newStrategyStub())
	_, _, err := uc.Register(context.Background(), "user", strings.Repeat("p", 73), model.RoleBuyer)
	if !errors.Is(err, domainErrors.ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
}

func TestAuthUseCaseRegisterRepositoryError(t *testing.T) {
	repo := testhelpers.NewUserRepositoryStub()
	repo.Err = fmt.Errorf("db down")
	uc, _ := newAuthUseCase(repo, testhelpers.HasherStub{}, newStrategyStub())
	if _, _, err := uc.Register(context.Background(), "user", "pass", model.RoleBuyer); err == nil {
		t.Fatal("expected repository error")
	}
}

func TestAuthUseCaseRegisterIssueTokenError(t *testing.T) {
	repo := testhelpers.NewUserRepositoryStub()
	strategy := testhelpers.StrategyStub{IssueErr: fmt.Errorf("cannot issue token")}
	uc, _ := newAuthUseCase(repo, testhelpers.HasherStub{}, strategy)
	if _, _, err := uc.Register(context.Background(), "user", "pass", model.RoleBuyer); err == nil {
		t.Fatal("expected token issuing error")
	}
}

func TestAuthUseCaseAuthenticateNotFound(t *testing.T) {
	uc, _ := newAuthUseCase(testhelpers.NewUserRepositoryStub(), testhelpers.HasherStub{}, newStrategyStub())
	if _, _, err := uc.Authenticate(context.Background(), "absent", "pass"); err != domainErrors.ErrInvalidCredentials {
		t.Fatalf("expected invalid credentials error, got %v", err)
	}
}

func TestAuthUseCaseAuthenticateHasherMismatch(t *testing.T) {
	repo := testhelpers.NewUserRepositoryStub()
	uc, _ := newAuthUseCase(repo, testhelpers.HasherStub{Reject: true}, newStrategyStub())
	if _, _, err := uc.Register(context.Background(), "user", "pass", model.RoleBuyer); err != nil {
		t.Fatalf("register returned error: %v", err)
	}
	if _, _, err := uc.Authenticate(context.Background(), "user", "pass"); err != domainErrors.ErrInvalidCredentials {
		t.Fatalf("expected invalid credentials, got %v", err)
	}
}

func TestAuthUseCaseAuthenticateRepositoryError(t *testing.T) {
	repo := testhelpers.NewUserRepositoryStub()
	uc, _ := newAuthUseCase(repo, testhelpers.HasherStub{}, newStrategyStub())
	if _, _, err := uc.Register(context.Background(), "user", "pass", model.RoleBuyer); err != nil {
		t.Fatalf("register returned error: %v", err)
	}
	repo.Err = fmt.Errorf("storage unavailable")
	if _, _, err := uc.Authenticate(context.Background(), "user", "pass"); err == nil || err.Error() != "storage unavailable" {
		t.Fatalf("expected repository error, got %v", err)
	}
}

func TestAuthUseCaseActorOf(t *testing.T) {
	repo := testhelpers.NewUserRepositoryStub()
	uc, _ := newAuthUseCase(repo, testhelpers.HasherStub{}, newStrategyStub())
	user, _, err := uc.Register(context.Background(), "frank", "pw", model.RoleAdmin)
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}

	actor, err := uc.ActorOf(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("actor lookup failed: %v", err)
	}
	if actor.ID != user.ID || actor.Role != model.RoleAdmin || !actor.Active() {
		t.Fatalf("unexpected actor %+v", actor)
	}
	if _, err := uc.ActorOf(context.Background(), 999); !errors.Is(err, domainErrors.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestAuthUseCaseBlockAndUnblock(t *testing.T) {
	repo := testhelpers.NewUserRepositoryStub()
	uc, audit := newAuthUseCase(repo, testhelpers.HasherStub{}, newStrategyStub())
	ctx := context.Background()

	admin, _, _ := uc.Register(ctx, "admin", "pw", model.RoleAdmin)
	buyer, _, _ := uc.Register(ctx, "buyer", "pw", model.RoleBuyer)

	if err := uc.Block(ctx, buyer.Actor(), admin.ID); !errors.Is(err, domainErrors.ErrForbidden) {
		t.Fatalf("expected forbidden for buyer, got %v", err)
	}
	if err := uc.Block(ctx, admin.Actor(), buyer.ID); err != nil {
		t.Fatalf("block failed: %v", err)
	}
	if err := uc.Block(ctx, admin.Actor(), buyer.ID); !errors.Is(err, domainErrors.ErrAlreadyInState) {
		t.Fatalf("expected already in state, got %v", err)
	}

	blocked, _ := uc.ActorOf(ctx, buyer.ID)
	if blocked.Active() {
		t.Fatal("blocked user must be inactive")
	}
	if err := uc.DeleteSelf(ctx, blocked); !errors.Is(err, domainErrors.ErrAccountInactive) {
		t.Fatalf("expected account inactive, got %v", err)
	}

	if err := uc.Unblock(ctx, admin.Actor(), buyer.ID); err != nil {
		t.Fatalf("unblock failed: %v", err)
	}
	if err := uc.Block(ctx, admin.Actor(), 12345); !errors.Is(err, domainErrors.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}

	want := []string{
		"user.block.rejected",
		"user.block.succeeded",
		"user.block.rejected",
		"user.delete.rejected",
		"user.unblock.succeeded",
		"user.block.rejected",
	}
	got := audit.EventTypes()
	if len(got) != len(want) {
		t.Fatalf("unexpected audit trail %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("entry %d: expected %s, got %s", i, want[i], got[i])
		}
	}
}
