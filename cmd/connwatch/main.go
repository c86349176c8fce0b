// Command connwatch keeps one connection to MongoDB, Redis, PostgreSQL or an
// in-memory fake open, logs every lifecycle signal and serves its status
// over HTTP.
//
// Configuration comes from CONNWATCH_* environment variables (a .env file
// is honoured) and an optional YAML file passed with -config, which
// overrides the environment.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrymomot/connkit/pkg/config"
	"github.com/dmitrymomot/connkit/pkg/httpserver"
	"github.com/dmitrymomot/connkit/pkg/logger"
)

func main() {
	path := flag.String("config", "", "path to a YAML config file")
	flag.Parse()

	opts := []config.Option{config.WithPrefix(envPrefix)}
	if *path != "" {
		opts = append(opts, config.WithFile(*path))
	}

	var cfg Config
	if err := config.Load(&cfg, opts...); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	logOpts := []logger.Option{
		logger.WithEnvironment(cfg.Env, "connwatch"),
		logger.WithContextExtractors(httpserver.RequestIDExtractor()),
	}
	level, ok, err := cfg.level()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if ok {
		logOpts = append(logOpts, logger.WithLevel(level))
	}
	log := logger.New(logOpts...)
	logger.SetAsDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("connwatch stopped", logger.Error(err))
		stop()
		os.Exit(1)
	}
}
