package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application level configuration loaded from environment and flags.
type Config struct {
	RunAddress      string
	DatabaseURI     string
	JWTSecret       string
	TokenTTL        time.Duration
	PasswordCost    int
	LogLevel        string
	ShutdownTimeout time.Duration
	WorkerPoolSize  int

	KafkaBrokers   []string
	PaymentTopic   string
	PaymentGroupID string
	AuditTopic     string

	RedisAddress  string
	RedisPassword string
	RedisDB       int
	EventDedupTTL time.Duration

	ServiceName    string
	JaegerEndpoint string
}

const (
	defaultRunAddress      = ":8080"
	defaultJWTSecret       = "change-me-in-production"
	defaultTokenTTL        = 24 * time.Hour
	defaultLogLevel        = "info"
	defaultShutdownTimeout = 10 * time.Second
	defaultWorkerPoolSize  = 4
	defaultPaymentTopic    = "payments"
	defaultPaymentGroupID  = "digimarket-payments"
	defaultAuditTopic      = "marketplace-audit"
	defaultEventDedupTTL   = 24 * time.Hour
	defaultServiceName     = "digimarket"
	defaultEnvFile         = ".env"
)

// Load parses configuration from flags and environment variables. Values from
// an optional .env file fill in variables missing from the real environment.
func Load() (*Config, error) {
	if err := loadEnvFile(getString(os.LookupEnv, "ENV_FILE", defaultEnvFile)); err != nil {
		return nil, err
	}
	return load(os.Args[1:], os.LookupEnv)
}

func loadEnvFile(path string) error {
	if err := godotenv.Load(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("load env file: %w", err)
	}
	return nil
}

type envLookup func(string) (string, bool)

func load(args []string, lookup envLookup) (*Config, error) {
	cfg := &Config{
		RunAddress:      getString(lookup, "RUN_ADDRESS", defaultRunAddress),
		DatabaseURI:     getString(lookup, "DATABASE_URI", ""),
		JWTSecret:       getString(lookup, "JWT_SECRET", defaultJWTSecret),
		TokenTTL:        getDuration(lookup, "TOKEN_TTL", defaultTokenTTL),
		PasswordCost:    getInt(lookup, "BCRYPT_COST", 0),
		LogLevel:        strings.ToLower(getString(lookup, "LOG_LEVEL", defaultLogLevel)),
		ShutdownTimeout: getDuration(lookup, "SHUTDOWN_TIMEOUT", defaultShutdownTimeout),
		WorkerPoolSize:  getInt(lookup, "WORKER_POOL_SIZE", defaultWorkerPoolSize),
		PaymentTopic:    getString(lookup, "PAYMENT_TOPIC", defaultPaymentTopic),
		PaymentGroupID:  getString(lookup, "PAYMENT_GROUP_ID", defaultPaymentGroupID),
		AuditTopic:      getString(lookup, "AUDIT_TOPIC", defaultAuditTopic),
		RedisAddress:    getString(lookup, "REDIS_ADDRESS", ""),
		RedisPassword:   getString(lookup, "REDIS_PASSWORD", ""),
		RedisDB:         getInt(lookup, "REDIS_DB", 0),
		EventDedupTTL:   getDuration(lookup, "EVENT_DEDUP_TTL", defaultEventDedupTTL),
		ServiceName:     getString(lookup, "SERVICE_NAME", defaultServiceName),
		JaegerEndpoint:  getString(lookup, "JAEGER_ENDPOINT", ""),
	}

	fs := flag.NewFlagSet("digimarket", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	var (
		shutdownTimeoutStr = cfg.ShutdownTimeout.String()
		brokersStr         = getString(lookup, "KAFKA_BROKERS", "")
	)

	fs.StringVar(&cfg.RunAddress, "a", cfg.RunAddress, "HTTP server listen address")
	fs.StringVar(&cfg.DatabaseURI, "d", cfg.DatabaseURI, "PostgreSQL DSN")
	fs.StringVar(&cfg.JWTSecret, "jwt-secret", cfg.JWTSecret, "Secret for signing auth tokens")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level: debug, info, warn or error")
	fs.IntVar(&cfg.WorkerPoolSize, "worker-pool", cfg.WorkerPoolSize, "Number of concurrent payment event workers")
	fs.StringVar(&shutdownTimeoutStr, "shutdown-timeout", shutdownTimeoutStr, "Graceful shutdown timeout")
	fs.StringVar(&brokersStr, "kafka-brokers", brokersStr, "Comma separated Kafka broker addresses")
	fs.StringVar(&cfg.RedisAddress, "redis", cfg.RedisAddress, "Redis address for payment event deduplication")
	fs.StringVar(&cfg.JaegerEndpoint, "jaeger", cfg.JaegerEndpoint, "Jaeger collector endpoint")

	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("parse flags: %w", err)
	}

	var err error

	if cfg.ShutdownTimeout, err = time.ParseDuration(shutdownTimeoutStr); err != nil {
		return nil, fmt.Errorf("invalid shutdown timeout: %w", err)
	}

	cfg.KafkaBrokers = splitList(brokersStr)

	if secretFile, ok := lookup("JWT_SECRET_FILE"); ok && secretFile != "" {
		content, err := os.ReadFile(secretFile)
		if err != nil {
			return nil, fmt.Errorf("read jwt secret file: %w", err)
		}
		cfg.JWTSecret = strings.TrimSpace(string(content))
	}

	if cfg.WorkerPoolSize <= 0 {
		cfg.WorkerPoolSize = defaultWorkerPoolSize
	}

	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = defaultShutdownTimeout
	}

	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = defaultTokenTTL
	}

	if cfg.PasswordCost < 0 {
		cfg.PasswordCost = 0
	}

	if cfg.EventDedupTTL <= 0 {
		cfg.EventDedupTTL = defaultEventDedupTTL
	}

	if cfg.DatabaseURI == "" {
		return nil, fmt.Errorf("database URI must be provided")
	}

	return cfg, nil
}

// KafkaEnabled reports whether broker addresses were configured.
func (c *Config) KafkaEnabled() bool {
	return len(c.KafkaBrokers) > 0
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func getString(lookup envLookup, key, def string) string {
	if v, ok := lookup(key); ok && v != "" {
		return v
	}
	return def
}

func getInt(lookup envLookup, key string, def int) int {
	if v, ok := lookup(key); ok && v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getDuration(lookup envLookup, key string, def time.Duration) time.Duration {
	if v, ok := lookup(key); ok && v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}
