package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "ACHIEVEHUB_"

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New(ctx))
//  2. file (YAML) if ACHIEVEHUB_CONFIG is set
//  3. env (prefix ACHIEVEHUB_)
func Load(ctx context.Context) (*Config, error) {
	base := New(ctx)

	k := koanf.New(".")

	if path := os.Getenv(EnvPrefix + "CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrLoadConfig, path, err)
		}
	}

	// ACHIEVEHUB_JWT_SECRET -> jwt_secret; underscores are kept to match the tags.
	envProvider := env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.TrimPrefix(strings.ToLower(s), strings.ToLower(EnvPrefix))
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: env: %w", ErrLoadConfig, err)
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks cross-field constraints.
func (c *Config) Validate() error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.Store != StoreMemory && c.Store != StoreDynamoDB:
		return fmt.Errorf("%w: store must be %q or %q", ErrInvalidConfig, StoreMemory, StoreDynamoDB)
	case c.TimezoneOffsetMinutes < -12*60 || c.TimezoneOffsetMinutes > 14*60:
		return fmt.Errorf("%w: timezone_offset_minutes out of range", ErrInvalidConfig)
	case c.ConfirmWindowMinutes <= 0:
		return fmt.Errorf("%w: confirm_window_minutes must be positive", ErrInvalidConfig)
	case c.QuizPassScore < 0 || c.QuizPassScore > 100:
		return fmt.Errorf("%w: quiz_pass_score must be within 0..100", ErrInvalidConfig)
	case c.QuizRequiredActivities < 0:
		return fmt.Errorf("%w: quiz_required_activities must not be negative", ErrInvalidConfig)
	case c.QuizQuestionCount <= 0:
		return fmt.Errorf("%w: quiz_question_count must be positive", ErrInvalidConfig)
	case c.TokenTTLMinutes <= 0:
		return fmt.Errorf("%w: token_ttl_minutes must be positive", ErrInvalidConfig)
	case c.RequireAuth && c.JWTSecret == "":
		return fmt.Errorf("%w: jwt_secret is required when require_auth is set", ErrInvalidConfig)
	}
	return nil
}
