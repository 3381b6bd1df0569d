package database

import (
	"context"
	"fmt"
	"time"

	"visapoint/config"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

// MongoClient is shared by every Mongo repository.
var MongoClient *mongo.Client

const connectAttempts = 3

// InitDB connects to uri and pings the primary, retrying briefly so the API
// can start alongside a database container.
func InitDB(ctx context.Context, uri string) error {
	opts := options.Client().
		ApplyURI(uri).
		SetAppName("visapoint").
		SetServerSelectionTimeout(5 * time.Second)

	var lastErr error
	for attempt := 1; attempt <= connectAttempts; attempt++ {
		client, err := connect(ctx, opts)
		if err == nil {
			MongoClient = client
			zap.L().Info("Connected to MongoDB", zap.String("database", config.AppConfig.DatabaseName))
			return nil
		}
		lastErr = err
		zap.L().Warn("MongoDB not reachable", zap.Int("attempt", attempt), zap.Error(err))

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Duration(attempt) * 2 * time.Second):
		}
	}
	return fmt.Errorf("mongo connect: %w", lastErr)
}

func connect(ctx context.Context, opts *options.ClientOptions) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, err
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	return client, nil
}

// Database returns the configured application database.
func Database() *mongo.Database {
	return MongoClient.Database(config.AppConfig.DatabaseName)
}

// Disconnect closes the shared client if one was opened.
func Disconnect(ctx context.Context) error {
	if MongoClient == nil {
		return nil
	}
	if err := MongoClient.Disconnect(ctx); err != nil {
		return fmt.Errorf("mongo disconnect: %w", err)
	}
	return nil
}
