package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

const (
	StoreMongo  = "mongo"
	StoreMemory = "memory"
)

type Config struct {
	Port     string `env:"PORT,      default=8080"`
	Env      string `env:"ENV,       default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`
	// StoreDriver selects the persistence backend: mongo or memory.
	StoreDriver string `env:"STORE_DRIVER, default=mongo"`

	Mongo    MongoConfig
	Redis    RedisConfig
	Purchase PurchaseConfig
	Mail     MailConfig
	Receipt  ReceiptConfig
}

type MongoConfig struct {
	URI                string `env:"MONGO_URI,          default=mongodb://localhost:27017/?replicaSet=rs0"`
	Database           string `env:"MONGO_DB,           default=ticketing"`
	EventsTable        string `env:"EVENTS_TABLE,       default=events"`
	UsersTable         string `env:"USERS_TABLE,        default=users"`
	RegistrationsTable string `env:"REGISTRATION_TABLE, default=registrations"`
}

type RedisConfig struct {
	Addr string `env:"REDIS_ADDR, default=localhost:6379"`
	DB   int    `env:"REDIS_DB,   default=0"`
}

type PurchaseConfig struct {
	// NotifyStream is the Redis stream receipts are queued on. Empty disables notifications.
	NotifyStream      string `env:"NOTIFY_STREAM"`
	DispatchWorkers   int    `env:"DISPATCH_WORKERS,            default=8"`
	DetailedConflicts bool   `env:"PURCHASE_DETAILED_CONFLICTS, default=false"`
}

type MailConfig struct {
	Sender   string `env:"MAIL_SENDER"`
	Host     string `env:"SMTP_HOST"`
	Port     int    `env:"SMTP_PORT,     default=587"`
	Username string `env:"SMTP_USERNAME"`
	Password string `env:"SMTP_PASSWORD"`
}

type ReceiptConfig struct {
	Group         string        `env:"RECEIPT_GROUP,          default=receipt-workers"`
	Consumer      string        `env:"RECEIPT_CONSUMER,       default=receipt-worker-1"`
	BatchSize     int64         `env:"RECEIPT_BATCH_SIZE,     default=10"`
	Block         time.Duration `env:"RECEIPT_BLOCK,          default=5s"`
	MinIdle       time.Duration `env:"RECEIPT_MIN_IDLE,       default=30s"`
	MaxDeliveries int64         `env:"RECEIPT_MAX_DELIVERIES, default=5"`
}

// IsDevelopment reports whether the service runs in the development environment.
func (c *Config) IsDevelopment() bool { return c.Env == "development" }

// Load reads configuration from environment variables using go-envconfig.
func Load(ctx context.Context) (*Config, error) {
	return LoadWith(ctx, envconfig.OsLookuper())
}

// LoadWith reads configuration through the given lookuper.
func LoadWith(ctx context.Context, l envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: l}); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if cfg.StoreDriver != StoreMongo && cfg.StoreDriver != StoreMemory {
		return nil, fmt.Errorf("config: STORE_DRIVER must be %q or %q, got %q", StoreMongo, StoreMemory, cfg.StoreDriver)
	}
	return &cfg, nil
}
