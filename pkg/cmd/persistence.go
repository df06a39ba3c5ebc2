// Package cmd provides common initialization functions for command-line
// applications.
package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/redis/go-redis/v9"

	"github.com/flowboard/flowboard/pkg/cache"
	"github.com/flowboard/flowboard/pkg/persistence"
	"github.com/flowboard/flowboard/pkg/persistence/memory"
	"github.com/flowboard/flowboard/pkg/persistence/postgresql"
)

func NewPersistence(ctx context.Context, logger *slog.Logger, databaseURL string) persistence.Persistence {
	switch parsePersistenceProvider(databaseURL) {
	case "postgres", "postgresql":
		p, err := postgresql.NewPersistence(ctx, logger, databaseURL)
		if err != nil {
			panic(fmt.Errorf("failed to create PostgreSQL persistence: %w", err))
		}

		return p
	default:
		return memory.NewPersistence()
	}
}

// NewRuleRepository wraps the rule repository in a Redis read-through cache
// when a Redis URL is configured.
func NewRuleRepository(p persistence.Persistence, redisURL string, logger *slog.Logger) persistence.RuleRepository {
	if redisURL == "" {
		return p.Rules()
	}

	options, err := redis.ParseURL(redisURL)
	if err != nil {
		panic(fmt.Errorf("failed to parse Redis URL: %w", err))
	}

	return cache.NewRuleCache(p.Rules(), redis.NewClient(options), logger)
}

func parsePersistenceProvider(databaseURL string) string {
	parts := strings.Split(databaseURL, "://")

	return parts[0]
}
