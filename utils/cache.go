// File: utils/cache.go
package utils

import (
	"context"
	"log"
	"time"

	"visapoint/config"

	"github.com/go-redis/redis/v8"
)

var (
	// SessionCacheClient holds wizard sessions and pending payment records.
	SessionCacheClient *redis.Client
	// AuthCacheClient is the dedicated client for the token denylist.
	AuthCacheClient *redis.Client
)

func newRedisClient(db int, label string) *redis.Client {
	client := redis.NewClient(&redis.Options{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       db,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if _, err := client.Ping(ctx).Result(); err != nil {
		log.Fatalf("Failed to connect to Redis (%s): %v", label, err)
	}
	return client
}

// InitSessionCache initializes the Redis client for wizard sessions.
func InitSessionCache() {
	SessionCacheClient = newRedisClient(config.AppConfig.RedisSessionDB, "Session Cache")
}

// GetSessionCacheClient returns the wizard session client.
func GetSessionCacheClient() *redis.Client {
	if SessionCacheClient == nil {
		InitSessionCache()
	}
	return SessionCacheClient
}

// InitAuthCache initializes the Redis client for authorization caching.
func InitAuthCache() {
	AuthCacheClient = newRedisClient(config.AppConfig.RedisAuthDB, "Auth Cache")
}

// GetAuthCacheClient returns the Redis client for authorization caching.
func GetAuthCacheClient() *redis.Client {
	if AuthCacheClient == nil {
		InitAuthCache()
	}
	return AuthCacheClient
}

// InitRedis connects every Redis client the server needs.
func InitRedis() {
	InitSessionCache()
	InitAuthCache()
}

// RedisClients names the connected clients for health checks.
func RedisClients() map[string]*redis.Client {
	clients := make(map[string]*redis.Client, 2)
	if SessionCacheClient != nil {
		clients["redis_sessions"] = SessionCacheClient
	}
	if AuthCacheClient != nil {
		clients["redis_auth"] = AuthCacheClient
	}
	return clients
}
