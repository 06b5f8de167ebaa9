package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"traderaven/internal/domain"
)

// DirectoryCache implements domain.DirectoryCache using a single JSON-encoded
// Redis value with a TTL. The player directory payload is several megabytes
// and changes rarely, so one blob with expiry beats per-player keys.
//
// Key schema:
//
//	players:directory - JSON object of player id to display name
type DirectoryCache struct {
	rdb *redis.Client
	ttl time.Duration
}

const directoryKey = "players:directory"

// NewDirectoryCache creates a DirectoryCache backed by the given Client.
func NewDirectoryCache(c *Client, ttl time.Duration) *DirectoryCache {
	return &DirectoryCache{rdb: c.Underlying(), ttl: ttl}
}

// Get retrieves the cached directory. It returns domain.ErrNotFound when the
// key does not exist or has expired.
func (dc *DirectoryCache) Get(ctx context.Context) (map[string]string, error) {
	data, err := dc.rdb.Get(ctx, directoryKey).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("redis: get player directory: %w", err)
	}

	var directory map[string]string
	if err := json.Unmarshal(data, &directory); err != nil {
		return nil, fmt.Errorf("redis: unmarshal player directory: %w", err)
	}
	return directory, nil
}

// Set stores the directory with the configured TTL.
func (dc *DirectoryCache) Set(ctx context.Context, directory map[string]string) error {
	data, err := json.Marshal(directory)
	if err != nil {
		return fmt.Errorf("redis: marshal player directory: %w", err)
	}

	if err := dc.rdb.Set(ctx, directoryKey, data, dc.ttl).Err(); err != nil {
		return fmt.Errorf("redis: set player directory: %w", err)
	}
	return nil
}

// Compile-time interface check.
var _ domain.DirectoryCache = (*DirectoryCache)(nil)
