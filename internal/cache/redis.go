package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Cache key formats
const (
	UserNameKeyFmt    = "users:name:%s"
	UnreadCountKeyFmt = "notifications:unread:%s"

	UserNameTTL    = 10 * time.Minute
	UnreadCountTTL = 60 * time.Second
)

var client *redis.Client

// Init initializes the Redis connection. On failure the client stays nil and
// every helper in this package degrades to a no-op.
func Init(addr, password string, db int) error {
	client = redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		// Close the failed client and set to nil for graceful degradation
		client.Close()
		client = nil
		return err
	}
	return nil
}

// GetClient returns the Redis client
func GetClient() *redis.Client {
	return client
}

// Close releases the connection pool
func Close() {
	if client != nil {
		client.Close()
		client = nil
	}
}

// IsHealthy returns true if Redis connection is working
func IsHealthy() bool {
	if client == nil {
		return false
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	return client.Ping(ctx).Err() == nil
}

// ============================================
// Generic Cache Functions
// ============================================

// GetCached returns cached data for a key
func GetCached(ctx context.Context, key string) ([]byte, bool) {
	if client == nil {
		return nil, false
	}
	data, err := client.Get(ctx, key).Bytes()
	if err != nil {
		return nil, false
	}
	return data, true
}

// SetCached stores data with a TTL
func SetCached(ctx context.Context, key string, data []byte, ttl time.Duration) {
	if client == nil {
		return
	}
	client.Set(ctx, key, data, ttl)
}

// InvalidateKeys removes specific cache keys
func InvalidateKeys(ctx context.Context, keys ...string) {
	if client == nil || len(keys) == 0 {
		return
	}
	client.Del(ctx, keys...)
}

// ============================================
// User Names (review queue submitter lookup)
// ============================================

func userNameKey(id uuid.UUID) string {
	return fmt.Sprintf(UserNameKeyFmt, id)
}

// GetUserNames returns the cached names among ids and the ids still missing
func GetUserNames(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]string, []uuid.UUID) {
	found := make(map[uuid.UUID]string, len(ids))
	if client == nil || len(ids) == 0 {
		return found, ids
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = userNameKey(id)
	}

	values, err := client.MGet(ctx, keys...).Result()
	if err != nil {
		return found, ids
	}

	var missing []uuid.UUID
	for i, v := range values {
		if s, ok := v.(string); ok && s != "" {
			found[ids[i]] = s
			continue
		}
		missing = append(missing, ids[i])
	}
	return found, missing
}

// CacheUserNames stores resolved names in one pipeline
func CacheUserNames(ctx context.Context, names map[uuid.UUID]string) {
	if client == nil || len(names) == 0 {
		return
	}
	pipe := client.Pipeline()
	for id, name := range names {
		pipe.Set(ctx, userNameKey(id), name, UserNameTTL)
	}
	pipe.Exec(ctx)
}

// InvalidateUserName drops a cached name. Called when a user is changed.
func InvalidateUserName(ctx context.Context, id uuid.UUID) {
	InvalidateKeys(ctx, userNameKey(id))
}

// ============================================
// Unread Notification Counts
// ============================================

func unreadKey(userID uuid.UUID) string {
	return fmt.Sprintf(UnreadCountKeyFmt, userID)
}

func GetUnreadCount(ctx context.Context, userID uuid.UUID) (int, bool) {
	if client == nil {
		return 0, false
	}
	n, err := client.Get(ctx, unreadKey(userID)).Int()
	if err != nil {
		return 0, false
	}
	return n, true
}

func CacheUnreadCount(ctx context.Context, userID uuid.UUID, n int) {
	if client == nil {
		return
	}
	client.Set(ctx, unreadKey(userID), n, UnreadCountTTL)
}

// InvalidateUnreadCounts is called whenever notifications are created or read
func InvalidateUnreadCounts(ctx context.Context, userIDs ...uuid.UUID) {
	if client == nil || len(userIDs) == 0 {
		return
	}
	keys := make([]string, len(userIDs))
	for i, id := range userIDs {
		keys[i] = unreadKey(id)
	}
	client.Del(ctx, keys...)
}
