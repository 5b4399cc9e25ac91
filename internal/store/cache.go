package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"loandesk/internal/models"

	"github.com/redis/go-redis/v9"
)

const leadKeyPrefix = "lead:"

// LeadCache is a read-through cache of single leads keyed by id.
type LeadCache struct {
	client redis.Cmdable
	ttl    time.Duration
}

func NewLeadCache(client redis.Cmdable, ttl time.Duration) *LeadCache {
	return &LeadCache{client: client, ttl: ttl}
}

func leadKey(id string) string { return leadKeyPrefix + id }

// Get returns (nil, false, nil) on a miss.
func (c *LeadCache) Get(ctx context.Context, id string) (*models.Lead, bool, error) {
	raw, err := c.client.Get(ctx, leadKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("cache get lead %s: %w", id, err)
	}

	var lead models.Lead
	if err := json.Unmarshal(raw, &lead); err != nil {
		// unreadable entries are treated as a miss and dropped
		_ = c.client.Del(ctx, leadKey(id)).Err()
		return nil, false, nil
	}
	return &lead, true, nil
}

func (c *LeadCache) Set(ctx context.Context, lead *models.Lead) error {
	raw, err := json.Marshal(lead)
	if err != nil {
		return fmt.Errorf("cache encode lead %s: %w", lead.ID, err)
	}
	if err := c.client.Set(ctx, leadKey(lead.ID), raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("cache set lead %s: %w", lead.ID, err)
	}
	return nil
}

func (c *LeadCache) Invalidate(ctx context.Context, id string) error {
	if err := c.client.Del(ctx, leadKey(id)).Err(); err != nil {
		return fmt.Errorf("cache invalidate lead %s: %w", id, err)
	}
	return nil
}
