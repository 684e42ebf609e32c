// Package config builds a configured cinevault.Service for server
// deployments. Options layer on top of library defaults; WithEnv applies
// environment overrides.
package config

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Kaustubh-1-7/CineVault/pkg/cinevault"
	memoryrepo "github.com/Kaustubh-1-7/CineVault/pkg/cinevault/repo/memory"
	postgresrepo "github.com/Kaustubh-1-7/CineVault/pkg/cinevault/repo/postgres"
	"github.com/Kaustubh-1-7/CineVault/pkg/cinevault/registry/httpbridge"
	memorybridge "github.com/Kaustubh-1-7/CineVault/pkg/cinevault/registry/memory"
)

// Option applies configuration to a ServerConfig instance.
type Option func(*ServerConfig) error

// ServerConfig represents server configuration for the cinevault service.
type ServerConfig struct {
	Port        string
	Environment string // development, production, testing

	// Database configuration
	DatabaseURL  string
	DatabaseType string // "memory", "postgres"

	// Domain parameters
	RootAdmin       string
	TreasuryAccount string
	UploadFee       int64
	RentalDuration  time.Duration
	CreatorShareBps int64

	// Registry bridge
	RegistryMode   string // "local", "forwarding"
	RegistryURL    string // e.g. "memory://" or "https://registry.example.com"
	RegistryAPIKey string

	// HTTP auth: JWT secret for actor tokens; empty disables verification
	// and the X-Actor header is trusted (development only).
	JWTSecret string

	// Server options
	EnableEventLogging bool
}

// Load constructs a ServerConfig by applying the supplied options on top of
// library defaults.
func Load(opts ...Option) (*ServerConfig, error) {
	cfg := defaults()

	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func defaults() ServerConfig {
	return ServerConfig{
		Port:               "8080",
		Environment:        "development",
		DatabaseType:       "memory",
		RootAdmin:          "admin",
		TreasuryAccount:    cinevault.TreasuryAccount,
		UploadFee:          0,
		RentalDuration:     cinevault.DefaultRentalDuration,
		CreatorShareBps:    cinevault.DefaultCreatorShareBps,
		RegistryMode:       string(cinevault.RegistryModeLocal),
		RegistryURL:        "memory://",
		EnableEventLogging: true,
	}
}

// Validate checks the configuration for consistency.
func (c *ServerConfig) Validate() error {
	switch c.DatabaseType {
	case "memory":
	case "postgres":
		if c.DatabaseURL == "" {
			return fmt.Errorf("database URL is required for postgres")
		}
	default:
		return fmt.Errorf("unknown database type %q", c.DatabaseType)
	}

	switch cinevault.RegistryMode(c.RegistryMode) {
	case cinevault.RegistryModeLocal, cinevault.RegistryModeForwarding:
	default:
		return fmt.Errorf("unknown registry mode %q", c.RegistryMode)
	}

	if c.RootAdmin == "" {
		return fmt.Errorf("root admin account is required")
	}
	if c.UploadFee < 0 {
		return fmt.Errorf("upload fee must not be negative")
	}
	if c.RentalDuration <= 0 {
		return fmt.Errorf("rental duration must be positive")
	}
	if c.CreatorShareBps < 0 || c.CreatorShareBps > 10000 {
		return fmt.Errorf("creator share must be between 0 and 10000 basis points")
	}
	if c.Environment == "production" && c.JWTSecret == "" {
		return fmt.Errorf("JWT secret is required in production")
	}
	return nil
}

// BuildService wires a cinevault.Service from the configuration.
func (c *ServerConfig) BuildService(ctx context.Context, logger *slog.Logger) (cinevault.Service, error) {
	repo, err := c.buildRepository(ctx)
	if err != nil {
		return nil, err
	}

	bridge, err := c.buildBridge()
	if err != nil {
		return nil, err
	}

	sink := cinevault.NewNoopEventSink()
	if c.EnableEventLogging {
		sink = cinevault.NewSlogEventSink(logger)
	}

	return cinevault.New(
		cinevault.WithRepository(repo),
		cinevault.WithRegistryBridge(bridge),
		cinevault.WithEventSink(sink),
		cinevault.WithLogger(logger),
		cinevault.WithRootAdmin(c.RootAdmin),
		cinevault.WithUploadFee(c.UploadFee),
		cinevault.WithRentalDuration(c.RentalDuration),
		cinevault.WithCreatorShareBps(c.CreatorShareBps),
		cinevault.WithRegistryMode(cinevault.RegistryMode(c.RegistryMode)),
	)
}

func (c *ServerConfig) buildRepository(ctx context.Context) (cinevault.Repository, error) {
	switch c.DatabaseType {
	case "postgres":
		pool, err := pgxpool.New(ctx, c.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		if err := pool.Ping(ctx); err != nil {
			return nil, fmt.Errorf("ping postgres: %w", err)
		}
		return postgresrepo.NewWithPool(pool), nil
	default:
		return memoryrepo.New(), nil
	}
}

func (c *ServerConfig) buildBridge() (cinevault.RegistryBridge, error) {
	switch {
	case c.RegistryURL == "" || c.RegistryURL == "memory://":
		return memorybridge.New(), nil
	default:
		var opts []httpbridge.Option
		if c.RegistryAPIKey != "" {
			opts = append(opts, httpbridge.WithAPIKey(c.RegistryAPIKey))
		}
		return httpbridge.New(c.RegistryURL, opts...), nil
	}
}
