package rolecache

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"autoquote/internal/identity/models"
	platformredis "autoquote/internal/platform/redis"
)

const roleCacheKeyPrefix = "role_resolution:"

// entryJSON is the JSON-serializable representation of a cache entry.
type entryJSON struct {
	Role               string `json:"role"`
	UserID             string `json:"user_id,omitempty"`
	Email              string `json:"email,omitempty"`
	FirstName          string `json:"first_name,omitempty"`
	LastName           string `json:"last_name,omitempty"`
	SubscriptionPlan   string `json:"subscription_plan,omitempty"`
	SubscriptionStatus string `json:"subscription_status,omitempty"`
	BillingCustomerID  string `json:"billing_customer_id,omitempty"`
}

// RedisCache caches resolutions in Redis with a per-key TTL.
type RedisCache struct {
	client *platformredis.Client
	ttl    time.Duration
	logger *slog.Logger
}

// NewRedis constructs a Redis-backed role cache.
func NewRedis(client *platformredis.Client, ttl time.Duration, logger *slog.Logger) *RedisCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &RedisCache{client: client, ttl: ttl, logger: logger}
}

func (c *RedisCache) Get(ctx context.Context, userID uuid.UUID) (*Entry, bool) {
	raw, err := c.client.Get(ctx, roleCacheKeyPrefix+userID.String()).Bytes()
	if err != nil {
		// Redis miss or failure both read as a miss; the resolver falls
		// back to the stores.
		return nil, false
	}
	var j entryJSON
	if err := json.Unmarshal(raw, &j); err != nil {
		c.logger.WarnContext(ctx, "corrupt role cache entry", "user_id", userID, "error", err)
		return nil, false
	}

	entry := &Entry{Role: models.ParseRole(j.Role)}
	if j.UserID != "" {
		id, err := uuid.Parse(j.UserID)
		if err != nil {
			return nil, false
		}
		entry.User = &models.User{
			ID:                 id,
			Email:              j.Email,
			FirstName:          j.FirstName,
			LastName:           j.LastName,
			SubscriptionPlan:   j.SubscriptionPlan,
			SubscriptionStatus: j.SubscriptionStatus,
			BillingCustomerID:  j.BillingCustomerID,
		}
	}
	return entry, true
}

func (c *RedisCache) Set(ctx context.Context, userID uuid.UUID, entry *Entry) {
	j := entryJSON{Role: string(entry.Role)}
	if entry.User != nil {
		j.UserID = entry.User.ID.String()
		j.Email = entry.User.Email
		j.FirstName = entry.User.FirstName
		j.LastName = entry.User.LastName
		j.SubscriptionPlan = entry.User.SubscriptionPlan
		j.SubscriptionStatus = entry.User.SubscriptionStatus
		j.BillingCustomerID = entry.User.BillingCustomerID
	}
	raw, err := json.Marshal(j)
	if err != nil {
		c.logger.WarnContext(ctx, "marshal role cache entry", "user_id", userID, "error", err)
		return
	}
	if err := c.client.Set(ctx, roleCacheKeyPrefix+userID.String(), raw, c.ttl).Err(); err != nil {
		c.logger.WarnContext(ctx, "write role cache entry", "user_id", userID, "error", err)
	}
}

func (c *RedisCache) Invalidate(ctx context.Context, userID uuid.UUID) {
	if err := c.client.Del(ctx, roleCacheKeyPrefix+userID.String()).Err(); err != nil {
		c.logger.WarnContext(ctx, "invalidate role cache entry", "user_id", userID, "error", err)
	}
}

// Verify interface is satisfied.
var _ Cache = (*RedisCache)(nil)
