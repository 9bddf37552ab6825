package query

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"

	"github.com/go-redis/redis"
)

// Cache is the cache-aside layer in front of the store. Implementations
// are best-effort: a miss and an unavailable backend look the same.
type Cache interface {
	Get(key string) (string, bool)
	Set(key, val string, ttl time.Duration)
	Ping() error
}

type redisCache struct {
	cl *redis.Client
}

func NewRedisCache(addr string) Cache {
	return &redisCache{cl: redis.NewClient(&redis.Options{Addr: addr})}
}

func (c *redisCache) Get(key string) (string, bool) {
	val, err := c.cl.Get(key).Result()
	if err != nil {
		return "", false
	}
	return val, true
}

func (c *redisCache) Set(key, val string, ttl time.Duration) {
	_ = c.cl.Set(key, val, ttl).Err()
}

func (c *redisCache) Ping() error {
	return c.cl.Ping().Err()
}

// cacheKey hashes the query shape plus its parameters so distinct requests
// never collide and identical ones always hit.
func cacheKey(parts ...string) string {
	sum := sha256.Sum256([]byte(strings.Join(parts, "|")))
	return "weatherflow:query:" + hex.EncodeToString(sum[:])
}
