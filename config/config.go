package config

import (
	"fmt"
	"time"

	"github.com/rideapp/ride-booking-system/pkg/configparser"
)

// Config contains all configuration variables of the application
type (
	Config struct {
		ServiceName string `env:"SERVICE_NAME" default:"ride-booking"`
		LogLevel    string `env:"LOG_LEVEL" default:"INFO"`

		Server   ServerConfig
		Storage  StorageConfig
		Database DatabaseConfig
		RabbitMQ RabbitMQConfig
		Auth     AuthConfig
		Sweeper  SweeperConfig
	}

	ServerConfig struct {
		Host string `env:"SERVER_HOST" default:"0.0.0.0"`
		Port string `env:"SERVER_PORT" default:"3000"`
	}

	// StorageConfig selects the backing stores: "memory" or "postgres".
	StorageConfig struct {
		Backend string `env:"STORAGE_BACKEND" default:"memory"`
		// SeedDemoUsers loads a small demo directory on startup so the
		// in-memory backend is usable without a registration flow.
		SeedDemoUsers bool `env:"STORAGE_SEED_DEMO_USERS" default:"true"`
	}

	DatabaseConfig struct {
		Host     string `env:"DATABASE_HOST" default:"localhost"`
		Port     string `env:"DATABASE_PORT" default:"5432"`
		User     string `env:"DATABASE_USER" default:"ridebooking_user"`
		Password string `env:"DATABASE_PASSWORD" default:"ridebooking_pass"`
		Database string `env:"DATABASE_DATABASE" default:"ridebooking_db"`

		MaxConns        int32         `env:"DATABASE_MAXCONNS" default:"20"`
		MinConns        int32         `env:"DATABASE_MINCONNS" default:"2"`
		MaxConnLifetime time.Duration `env:"DATABASE_MAXCONNLIFETIME" default:"30m"`
		MaxConnIdleTime time.Duration `env:"DATABASE_MAXCONNIDLETIME" default:"5m"`
	}

	RabbitMQConfig struct {
		Enabled  bool   `env:"RABBITMQ_ENABLED" default:"false"`
		Host     string `env:"RABBITMQ_HOST" default:"localhost"`
		Port     string `env:"RABBITMQ_PORT" default:"5672"`
		User     string `env:"RABBITMQ_USER" default:"guest"`
		Password string `env:"RABBITMQ_PASSWORD" default:"guest"`
	}

	AuthConfig struct {
		JWTSecret      string        `env:"AUTH_JWT_SECRET" default:"supersecretkey"`
		Issuer         string        `env:"AUTH_ISSUER" default:"ride-booking"`
		AccessTokenTTL time.Duration `env:"AUTH_ACCESS_TOKEN_TTL" default:"15m"`
	}

	SweeperConfig struct {
		Interval          time.Duration `env:"SWEEPER_INTERVAL" default:"10m"`
		Grace             time.Duration `env:"SWEEPER_GRACE" default:"20m"`
		AcceptedRetention time.Duration `env:"SWEEPER_ACCEPTED_RETENTION" default:"48h"`
	}
)

func (c DatabaseConfig) GetDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=disable",
		c.User,
		c.Password,
		c.Host,
		c.Port,
		c.Database,
	)
}

func (c RabbitMQConfig) GetDSN() string {
	return fmt.Sprintf("amqp://%s:%s@%s:%s/",
		c.User,
		c.Password,
		c.Host,
		c.Port,
	)
}

func NewConfig(filepath string) (*Config, error) {
	cfg := &Config{}

	// Loading enviromental variables and parsing to config struct.
	if err := configparser.LoadAndParseYaml(filepath, cfg); err != nil {
		return nil, fmt.Errorf("failed to load and parse config: %w", err)
	}

	return cfg, nil
}
