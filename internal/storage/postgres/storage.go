package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	domainErrors "github.com/polkiloo/digimarket/internal/domain/errors"
	"github.com/polkiloo/digimarket/internal/domain/repository"
)

// querier is satisfied by both the pool and an open transaction.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type pgxPool interface {
	querier
	BeginTx(ctx context.Context, opts pgx.TxOptions) (pgx.Tx, error)
	Ping(ctx context.Context) error
	Close()
}

var newPgxPool = func(ctx context.Context, cfg *pgxpool.Config) (pgxPool, error) {
	return pgxpool.NewWithConfig(ctx, cfg)
}

// Storage acts as repository facade backed by PostgreSQL.
type Storage struct {
	pool   pgxPool
	logger *slog.Logger
}

// New creates storage with schema initialization.
func New(ctx context.Context, dsn string, logger *slog.Logger) (*Storage, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}

	pool, err := newPgxPool(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect db: %w", err)
	}

	storage := &Storage{pool: pool, logger: logger}
	if err := storage.initSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return storage, nil
}

// Close releases database resources.
func (s *Storage) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// repositories binds every repository to one querier.
type repositories struct {
	db querier
}

func (r repositories) Users() repository.UserRepository   { return &userRepository{db: r.db} }
func (r repositories) Offers() repository.OfferRepository { return &offerRepository{db: r.db} }
func (r repositories) Orders() repository.OrderRepository { return &orderRepository{db: r.db} }
func (r repositories) Inventory() repository.InventoryRepository {
	return &inventoryRepository{db: r.db}
}
func (r repositories) AuditLog() repository.AuditRepository { return &auditRepository{db: r.db} }

// Factory methods for domain repositories outside of a transaction.
func (s *Storage) Users() repository.UserRepository { return repositories{db: s.pool}.Users() }

func (s *Storage) Offers() repository.OfferRepository { return repositories{db: s.pool}.Offers() }

func (s *Storage) Orders() repository.OrderRepository { return repositories{db: s.pool}.Orders() }

func (s *Storage) Inventory() repository.InventoryRepository {
	return repositories{db: s.pool}.Inventory()
}

func (s *Storage) AuditLog() repository.AuditRepository { return repositories{db: s.pool}.AuditLog() }

// InTx runs fn with repositories bound to a single transaction. Serialization
// failures and deadlocks are reported as ErrConflict so callers may retry.
func (s *Storage) InTx(ctx context.Context, fn func(repository.Factory) error) error {
	err := s.WithinTransaction(ctx, func(tx pgx.Tx) error {
		return fn(repositories{db: tx})
	})
	return classify(err)
}

func (s *Storage) initSchema(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS users (
            id BIGSERIAL PRIMARY KEY,
            login TEXT UNIQUE NOT NULL,
            password_hash TEXT NOT NULL,
            role TEXT NOT NULL CHECK (role IN ('buyer', 'seller', 'admin')),
            status TEXT NOT NULL DEFAULT 'active',
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        )`,
		`CREATE TABLE IF NOT EXISTS offers (
            id BIGSERIAL PRIMARY KEY,
            seller_id BIGINT NOT NULL REFERENCES users(id),
            category_id BIGINT NOT NULL DEFAULT 0,
            title TEXT NOT NULL,
            price BIGINT NOT NULL CHECK (price >= 0),
            quantity BIGINT NOT NULL CHECK (quantity >= 0),
            status TEXT NOT NULL,
            previous_status TEXT,
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
            updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        )`,
		`CREATE TABLE IF NOT EXISTS orders (
            id BIGSERIAL PRIMARY KEY,
            buyer_id BIGINT NOT NULL REFERENCES users(id),
            status TEXT NOT NULL,
            total_amount BIGINT NOT NULL,
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
            updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        )`,
		`CREATE TABLE IF NOT EXISTS order_items (
            order_id BIGINT NOT NULL REFERENCES orders(id),
            offer_id BIGINT NOT NULL REFERENCES offers(id),
            seller_id BIGINT NOT NULL,
            title TEXT NOT NULL,
            quantity BIGINT NOT NULL CHECK (quantity >= 1),
            price_at_purchase BIGINT NOT NULL,
            PRIMARY KEY (order_id, offer_id)
        )`,
		`CREATE TABLE IF NOT EXISTS log_entries (
            id BIGSERIAL PRIMARY KEY,
            event_type TEXT NOT NULL,
            user_id BIGINT,
            message TEXT NOT NULL,
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        )`,
		`CREATE INDEX IF NOT EXISTS idx_offers_seller ON offers(seller_id)`,
		`CREATE INDEX IF NOT EXISTS idx_orders_buyer ON orders(buyer_id, created_at DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_order_items_seller ON order_items(seller_id)`,
		`CREATE INDEX IF NOT EXISTS idx_log_entries_created ON log_entries(created_at DESC)`,
	}

	for _, stmt := range statements {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("init schema: %w", err)
		}
	}

	return nil
}

// WithinTransaction executes function inside transaction boundary.
func (s *Storage) WithinTransaction(ctx context.Context, fn func(pgx.Tx) error) (err error) {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		} else {
			err = tx.Commit(ctx)
		}
	}()

	err = fn(tx)
	return err
}

// HealthCheck verifies database connectivity.
func (s *Storage) HealthCheck(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return s.pool.Ping(ctx)
}

const (
	codeUniqueViolation      = "23505"
	codeSerializationFailure = "40001"
	codeDeadlockDetected     = "40P01"
)

func classify(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}
	switch pgErr.Code {
	case codeSerializationFailure, codeDeadlockDetected:
		return fmt.Errorf("%w: %s", domainErrors.ErrConflict, pgErr.Message)
	case codeUniqueViolation:
		return domainErrors.ErrAlreadyExists
	}
	return err
}

func notFound(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return domainErrors.ErrNotFound
	}
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}
