package mongodb

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/micro-ha/device-inventory/internal/config"
)

const (
	uniqueNameIndex        = "uniq_name"
	serverSelectionTimeout = 5 * time.Second
)

// DB is the root MongoDB handle shared by repositories. The underlying client
// pools connections and is safe for concurrent use.
type DB struct {
	client  *mongo.Client
	devices *mongo.Collection
	logger  *slog.Logger
}

// Open connects to MongoDB and ensures the unique index on device name.
func Open(ctx context.Context, settings config.MongoSettings, logger *slog.Logger) (*DB, error) {
	opts := options.Client().
		ApplyURI(settings.URI).
		SetAppName("device-inventory").
		SetServerSelectionTimeout(serverSelectionTimeout)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("connect mongodb: %w", err)
	}

	db := &DB{
		client:  client,
		devices: client.Database(settings.Database).Collection(settings.Collection),
		logger:  logger,
	}
	if err := db.ensureIndexes(ctx); err != nil {
		_ = client.Disconnect(context.WithoutCancel(ctx))
		return nil, err
	}
	if logger != nil {
		logger.Info("mongodb ready", "uri", settings.RedactedURI(), "database", settings.Database, "collection", settings.Collection)
	}
	return db, nil
}

func (d *DB) ensureIndexes(ctx context.Context) error {
	model := mongo.IndexModel{
		Keys:    bson.D{{Key: "name", Value: 1}},
		Options: options.Index().SetUnique(true).SetName(uniqueNameIndex),
	}
	if _, err := d.devices.Indexes().CreateOne(ctx, model); err != nil {
		return fmt.Errorf("ensure index %s: %w", uniqueNameIndex, err)
	}
	return nil
}

// Ping checks that the primary is reachable.
func (d *DB) Ping(ctx context.Context) error {
	return d.client.Ping(ctx, readpref.Primary())
}

// Close disconnects the client pool.
func (d *DB) Close(ctx context.Context) error {
	if d == nil || d.client == nil {
		return nil
	}
	return d.client.Disconnect(ctx)
}
