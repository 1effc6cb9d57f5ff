// Command seed loads a YAML fixture into the configured record store.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/achievehub/achievehub/internal/bootstrap"
	"github.com/achievehub/achievehub/internal/config"
	"github.com/achievehub/achievehub/internal/seed"
	"github.com/achievehub/achievehub/pkg/logger"
)

func main() {
	var path string
	flag.StringVar(&path, "file", "seed.yaml", "path to the YAML fixture")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, path); err != nil {
		os.Stderr.WriteString("seed failed: " + err.Error() + "\n")
		os.Exit(1)
	}
}

func run(ctx context.Context, path string) error {
	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}
	if err := logger.InitWithOptions(logger.Options{Format: cfg.LogFormat}); err != nil {
		return err
	}
	log := logger.Get().Named("seed")

	if cfg.Store == config.StoreMemory {
		log.Warn(ctx, "store is memory; seeded records are discarded on exit")
	}

	app, err := bootstrap.Build(ctx, cfg, log)
	if err != nil {
		return err
	}

	fh, err := os.Open(path)
	if err != nil {
		return err
	}
	defer fh.Close()

	fixture, err := seed.Decode(fh)
	if err != nil {
		return err
	}
	_, err = seed.Apply(ctx, app.Store, fixture, log)
	return err
}
