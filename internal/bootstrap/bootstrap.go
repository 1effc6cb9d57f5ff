// Package bootstrap wires configuration into a ready-to-serve application.
// The HTTP server, the Lambda entrypoint and the seeding command share it.
package bootstrap

import (
	"context"
	"fmt"
	"net/http"

	"github.com/achievehub/achievehub/internal/adapters/auth"
	"github.com/achievehub/achievehub/internal/adapters/http/api"
	"github.com/achievehub/achievehub/internal/adapters/repository"
	"github.com/achievehub/achievehub/internal/adapters/upload"
	service "github.com/achievehub/achievehub/internal/app"
	"github.com/achievehub/achievehub/internal/config"
	"github.com/achievehub/achievehub/pkg/logger"
	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// App holds the wired components.
type App struct {
	Config  *config.Config
	Store   repository.Store
	Tokens  *auth.TokenIssuer
	Service *service.Service
	Handler http.Handler
}

// Build constructs the store, token issuer, upload presigner, service and
// HTTP handler described by cfg.
func Build(ctx context.Context, cfg *config.Config, log logger.Logger) (*App, error) {
	if log == nil {
		log = logger.Nop()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var awsCfg *aws.Config
	loadAWS := func() (aws.Config, error) {
		if awsCfg != nil {
			return *awsCfg, nil
		}
		c, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.AWSRegion))
		if err != nil {
			return aws.Config{}, fmt.Errorf("%w: %w", ErrAWSConfig, err)
		}
		awsCfg = &c
		return c, nil
	}

	store, err := newStore(cfg, loadAWS)
	if err != nil {
		return nil, err
	}

	opts := []service.Option{
		service.WithStore(store),
		service.WithLogger(log.Named("service")),
		service.WithLocation(cfg.Location()),
		service.WithConfirmWindow(cfg.ConfirmWindow()),
		service.WithGeoRadius(cfg.GeoDefaultRadiusMeters),
		service.WithQuizPassScore(cfg.QuizPassScore),
		service.WithQuizRequiredActivities(cfg.QuizRequiredActivities),
		service.WithQuizQuestionCount(cfg.QuizQuestionCount),
		service.WithQuizTimeLimit(cfg.QuizTimeLimitMinutes),
	}

	app := &App{Config: cfg, Store: store}
	if cfg.JWTSecret != "" {
		app.Tokens, err = auth.NewTokenIssuer(cfg.JWTSecret, auth.WithTTL(cfg.TokenTTL()))
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrTokens, err)
		}
		opts = append(opts, service.WithTokenIssuer(app.Tokens))
	} else {
		log.Warn(ctx, "jwt_secret not set; login is disabled")
	}

	if cfg.UploadBucket != "" {
		c, err := loadAWS()
		if err != nil {
			return nil, err
		}
		presign := s3.NewPresignClient(s3.NewFromConfig(c))
		opts = append(opts, service.WithPresigner(upload.NewPresigner(presign, cfg.UploadBucket,
			upload.WithPrefix(cfg.UploadPrefix),
			upload.WithExpiry(cfg.UploadExpiry()))))
	}

	app.Service = service.New(opts...)

	srvOpts := []api.Option{
		api.WithLogger(log.Named("http")),
		api.WithCORSOrigin(cfg.CORSAllowedOrigin),
	}
	if app.Tokens != nil {
		srvOpts = append(srvOpts, api.WithTokenVerifier(app.Tokens, cfg.RequireAuth))
	}
	app.Handler = api.NewServer(app.Service, srvOpts...).Handler(ctx)

	log.Info(ctx, "application wired",
		logger.String("store", cfg.Store),
		logger.Bool("requireAuth", cfg.RequireAuth),
		logger.Bool("uploads", cfg.UploadBucket != ""))
	return app, nil
}

func newStore(cfg *config.Config, loadAWS func() (aws.Config, error)) (repository.Store, error) {
	opts := []repository.Option{repository.WithTablePrefix(cfg.TablePrefix)}
	switch cfg.Store {
	case config.StoreMemory:
		return repository.NewMemoryStore(opts...), nil
	case config.StoreDynamoDB:
		c, err := loadAWS()
		if err != nil {
			return nil, err
		}
		client := dynamodb.NewFromConfig(c, func(o *dynamodb.Options) {
			if cfg.DynamoDBEndpoint != "" {
				o.BaseEndpoint = aws.String(cfg.DynamoDBEndpoint)
			}
		})
		return repository.NewDynamoStore(client, opts...), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownStore, cfg.Store)
	}
}
