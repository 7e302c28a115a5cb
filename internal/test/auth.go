package test

import (
	"fmt"
	"strings"

	pkgAuth "github.com/polkiloo/digimarket/internal/pkg/auth"
)

const plainHashPrefix = "plain$"

// HasherStub keeps passwords readable in storage and enforces the bcrypt
// input limit so oversize passwords fail like they do in production.
type HasherStub struct {
	// Err fails every Hash call.
	Err error
	// Reject fails every Compare call with ErrPasswordMismatch.
	Reject bool
}

// PlainHash is the value HasherStub stores for password.
func PlainHash(password string) string {
	return plainHashPrefix + password
}

func (h HasherStub) Hash(password string) (string, error) {
	if h.Err != nil {
		return "", h.Err
	}
	if len(password) > 72 {
		return "", pkgAuth.ErrPasswordTooLong
	}
	return PlainHash(password), nil
}

func (h HasherStub) Compare(hash string, password string) error {
	if h.Reject || !strings.HasPrefix(hash, plainHashPrefix) || hash != PlainHash(password) {
		return pkgAuth.ErrPasswordMismatch
	}
	return nil
}

// StrategyStub issues readable "token-<id>" sessions.
type StrategyStub struct {
	IssueErr error
}

func (s StrategyStub) IssueToken(userID int64) (string, error) {
	if s.IssueErr != nil {
		return "", s.IssueErr
	}
	return fmt.Sprintf("token-%d", userID), nil
}

func (s StrategyStub) ParseToken(token string) (int64, error) {
	var id int64
	if _, err := fmt.Sscanf(token, "token-%d", &id); err != nil || id <= 0 {
		return 0, pkgAuth.ErrInvalidToken
	}
	return id, nil
}

func (s StrategyStub) Name() string { return "stub" }

// TokenParserStub resolves every bearer token to ID, or fails with Err.
type TokenParserStub struct {
	ID  int64
	Err error
}

func (s TokenParserStub) ParseToken(string) (int64, error) {
	return s.ID, s.Err
}

var (
	_ pkgAuth.PasswordHasher = HasherStub{}
	_ pkgAuth.Strategy       = StrategyStub{}
)
