// Command lambda serves the HTTP API behind API Gateway proxy integration.
package main

import (
	"context"
	"os"

	"github.com/achievehub/achievehub/internal/adapters/lambda"
	"github.com/achievehub/achievehub/internal/bootstrap"
	"github.com/achievehub/achievehub/internal/config"
	"github.com/achievehub/achievehub/pkg/logger"
	awslambda "github.com/aws/aws-lambda-go/lambda"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load(ctx)
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		os.Exit(1)
	}
	if err := logger.InitWithOptions(logger.Options{Format: "json"}); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	log := logger.Get()
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel))
		_ = logger.SetLevelString("info")
	}

	app, err := bootstrap.Build(ctx, cfg, log)
	if err != nil {
		log.Error(ctx, "failed to build application", logger.Error(err))
		os.Exit(1)
	}

	awslambda.Start(lambda.New(app.Handler).Handle)
}
