package config

import (
	"fmt"
	"strconv"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// envConfig is the cleanenv mapping for environment overrides.
type envConfig struct {
	Port        string `env:"PORT" env-default:""`
	Environment string `env:"ENVIRONMENT" env-default:""`

	DatabaseURL  string `env:"DATABASE_URL" env-default:""`
	DatabaseType string `env:"DATABASE_TYPE" env-default:""`

	RootAdmin       string `env:"ROOT_ADMIN" env-default:""`
	UploadFee       int64  `env:"UPLOAD_FEE" env-default:"-1"`
	RentalDuration  string `env:"RENTAL_DURATION" env-default:""`
	CreatorShareBps int64  `env:"CREATOR_SHARE_BPS" env-default:"-1"`

	RegistryMode   string `env:"REGISTRY_MODE" env-default:""`
	RegistryURL    string `env:"REGISTRY_URL" env-default:""`
	RegistryAPIKey string `env:"REGISTRY_API_KEY" env-default:""`

	JWTSecret string `env:"JWT_SECRET" env-default:""`

	EnableEventLogging string `env:"ENABLE_EVENT_LOGGING" env-default:""`
}

// WithEnv applies environment variable overrides. Variables:
//
//	PORT, ENVIRONMENT
//	DATABASE_URL            - postgres connection string; a "postgres://" or
//	                          "postgresql://" prefix selects the postgres
//	                          repository, anything else stays in memory
//	DATABASE_TYPE           - explicit "memory" or "postgres" override
//	ROOT_ADMIN              - account granted the admin role at startup
//	UPLOAD_FEE              - flat native-currency submission fee
//	RENTAL_DURATION         - Go duration string, e.g. "72h"
//	CREATOR_SHARE_BPS       - creator's rental share in basis points
//	REGISTRY_MODE           - "local" or "forwarding"
//	REGISTRY_URL            - "memory://" or the registry's base URL
//	REGISTRY_API_KEY        - bearer token for the HTTP bridge
//	JWT_SECRET              - HMAC secret for actor tokens
//	ENABLE_EVENT_LOGGING    - "true"/"false"
func WithEnv() Option {
	return func(c *ServerConfig) error {
		var env envConfig
		if err := cleanenv.ReadEnv(&env); err != nil {
			return err
		}

		if env.Port != "" {
			c.Port = env.Port
		}
		if env.Environment != "" {
			c.Environment = env.Environment
		}
		if env.DatabaseURL != "" {
			c.DatabaseURL = env.DatabaseURL
			if hasPostgresScheme(env.DatabaseURL) {
				c.DatabaseType = "postgres"
			}
		}
		if env.DatabaseType != "" {
			c.DatabaseType = env.DatabaseType
		}
		if env.RootAdmin != "" {
			c.RootAdmin = env.RootAdmin
		}
		if env.UploadFee >= 0 {
			c.UploadFee = env.UploadFee
		}
		if env.RentalDuration != "" {
			d, err := time.ParseDuration(env.RentalDuration)
			if err != nil {
				return err
			}
			c.RentalDuration = d
		}
		if env.CreatorShareBps >= 0 {
			c.CreatorShareBps = env.CreatorShareBps
		}
		if env.RegistryMode != "" {
			c.RegistryMode = env.RegistryMode
		}
		if env.RegistryURL != "" {
			c.RegistryURL = env.RegistryURL
		}
		if env.RegistryAPIKey != "" {
			c.RegistryAPIKey = env.RegistryAPIKey
		}
		if env.JWTSecret != "" {
			c.JWTSecret = env.JWTSecret
		}
		if env.EnableEventLogging != "" {
			enabled, err := strconv.ParseBool(env.EnableEventLogging)
			if err != nil {
				return fmt.Errorf("ENABLE_EVENT_LOGGING: %w", err)
			}
			c.EnableEventLogging = enabled
		}
		return nil
	}
}

func hasPostgresScheme(url string) bool {
	const a, b = "postgres://", "postgresql://"
	return len(url) >= len(a) && url[:len(a)] == a ||
		len(url) >= len(b) && url[:len(b)] == b
}
