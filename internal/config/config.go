// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New(ctx) to build a Config with defaults.
// - Loading layers defaults, an optional YAML file and ACHIEVEHUB_* env vars.
// - External errors are wrapped with this package's sentinels.
package config

import (
	"context"
	"time"
)

// Store backends.
const (
	StoreMemory   = "memory"
	StoreDynamoDB = "dynamodb"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`
	// LogFormat is text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// Store selects the record store backend: memory or dynamodb.
	Store string `koanf:"store"`
	// AWSRegion is used for DynamoDB and S3 clients.
	AWSRegion string `koanf:"aws_region"`
	// DynamoDBEndpoint overrides the DynamoDB endpoint (DynamoDB Local).
	DynamoDBEndpoint string `koanf:"dynamodb_endpoint"`
	// TablePrefix is prepended to every physical table name, e.g. "prod-".
	TablePrefix string `koanf:"table_prefix"`

	// TimezoneOffsetMinutes is the fixed local zone used to stamp
	// confirmation and survey times and to read naive activity times.
	TimezoneOffsetMinutes int `koanf:"timezone_offset_minutes"`
	// ConfirmWindowMinutes is the half-width of the attendance window around start.
	ConfirmWindowMinutes int `koanf:"confirm_window_minutes"`
	// GeoDefaultRadiusMeters applies when a location has no radius.
	GeoDefaultRadiusMeters float64 `koanf:"geo_default_radius_m"`

	// QuizPassScore is the pass threshold used when a skill sets none.
	QuizPassScore int `koanf:"quiz_pass_score"`
	// QuizRequiredActivities is the confirmed-activity count needed to take a quiz.
	QuizRequiredActivities int `koanf:"quiz_required_activities"`
	// QuizQuestionCount caps the questions sampled per quiz.
	QuizQuestionCount int `koanf:"quiz_question_count"`
	// QuizTimeLimitMinutes is advertised to clients with the questions.
	QuizTimeLimitMinutes int `koanf:"quiz_time_limit_minutes"`

	// JWTSecret signs session tokens (HS256).
	JWTSecret string `koanf:"jwt_secret"`
	// TokenTTLMinutes bounds session token lifetime.
	TokenTTLMinutes int `koanf:"token_ttl_minutes"`
	// RequireAuth rejects API calls without a valid bearer token.
	RequireAuth bool `koanf:"require_auth"`

	// UploadBucket is the S3 bucket for activity images.
	UploadBucket string `koanf:"upload_bucket"`
	// UploadPrefix is the key prefix for uploaded objects.
	UploadPrefix string `koanf:"upload_prefix"`
	// UploadExpirySeconds bounds presigned URL lifetime.
	UploadExpirySeconds int `koanf:"upload_expiry_seconds"`

	// CORSAllowedOrigin is echoed in Access-Control-Allow-Origin.
	CORSAllowedOrigin string `koanf:"cors_allowed_origin"`
}

// New creates a Config populated with defaults. Context is accepted first to
// follow the project-wide convention.
func New(_ context.Context) *Config {
	return &Config{
		LogLevel:               "info",
		LogFormat:              "text",
		Addr:                   ":9080",
		Store:                  StoreMemory,
		AWSRegion:              "ap-southeast-1",
		TimezoneOffsetMinutes:  7 * 60,
		ConfirmWindowMinutes:   30,
		GeoDefaultRadiusMeters: 100,
		QuizPassScore:          70,
		QuizRequiredActivities: 3,
		QuizQuestionCount:      10,
		QuizTimeLimitMinutes:   15,
		TokenTTLMinutes:        12 * 60,
		UploadBucket:           "achievehub-activity-images",
		UploadPrefix:           "activities",
		UploadExpirySeconds:    300,
		CORSAllowedOrigin:      "*",
	}
}

// Location returns the configured fixed local zone.
func (c *Config) Location() *time.Location {
	return time.FixedZone("local", c.TimezoneOffsetMinutes*60)
}

// ConfirmWindow returns the attendance window half-width.
func (c *Config) ConfirmWindow() time.Duration {
	return time.Duration(c.ConfirmWindowMinutes) * time.Minute
}

// TokenTTL returns the session token lifetime.
func (c *Config) TokenTTL() time.Duration {
	return time.Duration(c.TokenTTLMinutes) * time.Minute
}

// UploadExpiry returns the presigned URL lifetime.
func (c *Config) UploadExpiry() time.Duration {
	return time.Duration(c.UploadExpirySeconds) * time.Second
}
