package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"pagegen-workers/internal/common/config"
	"pagegen-workers/internal/common/database"
	"pagegen-workers/internal/common/logger"
	"pagegen-workers/internal/pipeline"
)

func loadConfig() (*config.Config, error) {
	if configFile != "" {
		return config.LoadFromFile(configFile)
	}
	return config.Load()
}

// newLogger writes console lines to stderr so stdout stays parseable.
func newLogger() (logger.Logger, error) {
	l, err := logger.New(logger.Options{Level: logLevel, Format: "console", Output: "stderr"})
	if err != nil {
		return nil, err
	}
	return logger.NewZapAdapter(l), nil
}

// loadService builds the pipeline the same way the worker manager does.
// The returned func releases the redis connection, if one was opened.
func loadService(ctx context.Context) (*pipeline.Service, *config.Config, func(), error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, nil, err
	}

	cleanup := func() {}
	var opts pipeline.BuildOptions
	if cfg.RateLimit.Backend == "redis" {
		rc, err := database.Connect(ctx, cfg.Redis)
		if err != nil {
			return nil, nil, nil, err
		}
		opts.Redis = rc.Scripter()
		cleanup = func() { _ = rc.Close() }
	}

	log, err := newLogger()
	if err != nil {
		cleanup()
		return nil, nil, nil, err
	}
	svc, err := pipeline.Build(cfg, log, opts)
	if err != nil {
		cleanup()
		return nil, nil, nil, err
	}
	return svc, cfg, cleanup, nil
}

func promptFrom(args []string) string {
	return strings.Join(args, " ")
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	return nil
}
