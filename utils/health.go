package utils

import (
	"context"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"go.mongodb.org/mongo-driver/mongo"
)

const (
	healthInterval = time.Minute
	pingTimeout    = 2 * time.Second
)

// HealthStatus is the last dependency snapshot served on /health. Redis is
// keyed by client purpose. A zero CheckedAt means no check has run yet.
type HealthStatus struct {
	Mongo     bool            `json:"mongo"`
	Redis     map[string]bool `json:"redis,omitempty"`
	CheckedAt time.Time       `json:"checkedAt"`
}

var (
	healthMu      sync.RWMutex
	currentHealth HealthStatus
)

func GetHealthStatus() HealthStatus {
	healthMu.RLock()
	defer healthMu.RUnlock()
	return currentHealth
}

func reachable(ctx context.Context, ping func(context.Context) error) bool {
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	return ping(ctx) == nil
}

func gaugeValue(up bool) float64 {
	if up {
		return 1
	}
	return 0
}

func checkHealth(ctx context.Context, redisClients map[string]*redis.Client, mongoClient *mongo.Client) {
	m := GetMetrics()
	next := HealthStatus{Mongo: true, Redis: make(map[string]bool, len(redisClients))}

	for name, client := range redisClients {
		client := client
		up := reachable(ctx, func(ctx context.Context) error { return client.Ping(ctx).Err() })
		next.Redis[name] = up
		m.DependencyUp.WithLabelValues(name).Set(gaugeValue(up))
	}

	// No client means the in-memory store; there is nothing to be down.
	if mongoClient != nil {
		next.Mongo = reachable(ctx, func(ctx context.Context) error { return mongoClient.Ping(ctx, nil) })
		m.DependencyUp.WithLabelValues("mongo").Set(gaugeValue(next.Mongo))
	}
	next.CheckedAt = time.Now()

	healthMu.Lock()
	currentHealth = next
	healthMu.Unlock()
}

// StartHealthMonitor checks once immediately, then every minute until ctx
// is cancelled.
func StartHealthMonitor(ctx context.Context, redisClients map[string]*redis.Client, mongoClient *mongo.Client) {
	checkHealth(ctx, redisClients, mongoClient)
	go func() {
		ticker := time.NewTicker(healthInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				checkHealth(ctx, redisClients, mongoClient)
			}
		}
	}()
}
