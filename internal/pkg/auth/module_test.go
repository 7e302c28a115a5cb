package auth

import (
	"testing"
	"time"

	"github.com/polkiloo/digimarket/internal/config"
	"golang.org/x/crypto/bcrypt"
)

func TestNewPasswordHasher(t *testing.T) {
	hasher := newPasswordHasher(strategyParams{Config: &config.Config{}})
	bcryptHasher, ok := hasher.(*BcryptHasher)
	if !ok {
		t.Fatalf("expected *BcryptHasher, got %T", hasher)
	}
	if bcryptHasher.cost != bcrypt.DefaultCost {
		t.Fatalf("unexpected cost: %d", bcryptHasher.cost)
	}

	custom := newPasswordHasher(strategyParams{Config: &config.Config{PasswordCost: 12}}).(*BcryptHasher)
	if custom.cost != 12 {
		t.Fatalf("expected configured cost, got %d", custom.cost)
	}
}

func TestNewTokenStrategy(t *testing.T) {
	strategy := newTokenStrategy(strategyParams{Config: &config.Config{JWTSecret: "top-secret", TokenTTL: 30 * time.Minute}})
	hmacStrategy, ok := strategy.(*HMACStrategy)
	if !ok {
		t.Fatalf("expected *HMACStrategy, got %T", strategy)
	}
	if string(hmacStrategy.secret) != "top-secret" {
		t.Fatalf("unexpected secret: %q", string(hmacStrategy.secret))
	}
	if hmacStrategy.ttl != 30*time.Minute {
		t.Fatalf("unexpected ttl: %s", hmacStrategy.ttl)
	}
}
