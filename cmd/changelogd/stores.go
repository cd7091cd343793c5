package main

import (
	"context"
	"fmt"
	"os"

	"github.com/randalmurphal/changelogify/pkg/changelogify/config"
	"github.com/randalmurphal/changelogify/pkg/changelogify/release"
	"github.com/randalmurphal/changelogify/pkg/changelogify/source"
	"github.com/redis/go-redis/v9"
)

// openDatabase opens the site database the sources read from.
//
//	database:
//	  driver: sqlite | pgx
//	  dsn: site.db
//	  prefix: wp_
func openDatabase(cfg config.Config) (*source.Handle, error) {
	return source.Open(
		cfg.String("driver", "sqlite"),
		os.ExpandEnv(cfg.String("dsn", "site.db")),
		cfg.String("prefix", source.DefaultPrefix),
	)
}

// openStore opens the release store.
//
//	releases:
//	  backend: sqlite | redis | memory
//	  path: releases.db          # sqlite
//	  url: redis://localhost:6379/0  # redis
//	  prefix: "changelogify:"    # redis
func openStore(ctx context.Context, cfg config.Config) (release.Store, error) {
	switch backend := cfg.String("backend", "sqlite"); backend {
	case "sqlite":
		return release.NewSQLiteStore(os.ExpandEnv(cfg.String("path", "releases.db")))

	case "redis":
		opts, err := redis.ParseURL(os.ExpandEnv(cfg.String("url", "redis://localhost:6379/0")))
		if err != nil {
			return nil, fmt.Errorf("parse redis url: %w", err)
		}
		client := redis.NewClient(opts)
		if err := client.Ping(ctx).Err(); err != nil {
			client.Close()
			return nil, fmt.Errorf("connect to redis: %w", err)
		}
		return release.NewRedisStore(client, cfg.String("prefix", "")), nil

	case "memory":
		return release.NewMemoryStore(), nil

	default:
		return nil, fmt.Errorf("unknown release store backend: %s", backend)
	}
}
