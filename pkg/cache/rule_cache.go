// Package cache layers a Redis read-through cache over the rule repository.
// Dispatch latency is dominated by the active-rule lookup, and rule sets
// change far less often than events arrive.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/flowboard/flowboard/pkg/models"
	"github.com/flowboard/flowboard/pkg/persistence"
)

const defaultTTL = 5 * time.Minute

// RuleCache implements persistence.RuleRepository. Cache failures are never
// surfaced: every Redis error falls through to the inner repository.
type RuleCache struct {
	inner  persistence.RuleRepository
	client redis.UniversalClient
	ttl    time.Duration
	logger *slog.Logger
}

type RuleCacheOption func(*RuleCache)

func WithTTL(ttl time.Duration) RuleCacheOption {
	return func(c *RuleCache) {
		c.ttl = ttl
	}
}

func NewRuleCache(inner persistence.RuleRepository, client redis.UniversalClient, logger *slog.Logger, opts ...RuleCacheOption) *RuleCache {
	cache := &RuleCache{
		inner:  inner,
		client: client,
		ttl:    defaultTTL,
		logger: logger.With("module", "rule_cache"),
	}

	for _, opt := range opts {
		opt(cache)
	}

	return cache
}

func cacheKey(organizationID string, trigger models.TriggerType) string {
	return "flowboard:rules:" + organizationID + ":" + string(trigger)
}

func (c *RuleCache) ActiveRulesForTrigger(ctx context.Context, organizationID string, trigger models.TriggerType) ([]*models.Rule, error) {
	key := cacheKey(organizationID, trigger)

	cached, err := c.client.Get(ctx, key).Bytes()
	if err == nil {
		var rules []*models.Rule
		if err := json.Unmarshal(cached, &rules); err == nil {
			return rules, nil
		}

		c.logger.WarnContext(ctx, "Discarding undecodable cache entry", "key", key)
	} else if !errors.Is(err, redis.Nil) {
		c.logger.WarnContext(ctx, "Rule cache read failed, falling through", "key", key, "error", err)
	}

	rules, err := c.inner.ActiveRulesForTrigger(ctx, organizationID, trigger)
	if err != nil {
		return nil, err
	}

	if encoded, err := json.Marshal(rules); err == nil {
		if err := c.client.Set(ctx, key, encoded, c.ttl).Err(); err != nil {
			c.logger.WarnContext(ctx, "Rule cache write failed", "key", key, "error", err)
		}
	}

	return rules, nil
}

func (c *RuleCache) RuleByID(ctx context.Context, id string) (*models.Rule, error) {
	return c.inner.RuleByID(ctx, id)
}

func (c *RuleCache) AllRules(ctx context.Context) ([]*models.Rule, error) {
	return c.inner.AllRules(ctx)
}

// SaveRule writes through and invalidates the organization's cache entry for
// the rule's trigger type.
func (c *RuleCache) SaveRule(ctx context.Context, rule *models.Rule) error {
	if err := c.inner.SaveRule(ctx, rule); err != nil {
		return err
	}

	key := cacheKey(rule.OrganizationID, rule.TriggerType)
	if err := c.client.Del(ctx, key).Err(); err != nil {
		c.logger.WarnContext(ctx, "Rule cache invalidation failed", "key", key, "error", err)
	}

	return nil
}

// IncrementExecution is not invalidating: execution statistics on cached
// rules may lag up to the TTL, which is acceptable for bookkeeping fields.
func (c *RuleCache) IncrementExecution(ctx context.Context, ruleID string, at time.Time) error {
	return c.inner.IncrementExecution(ctx, ruleID, at)
}
