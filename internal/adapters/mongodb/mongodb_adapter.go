package mongodb

import (
	"context"
	"fmt"

	"github.com/hsdfat8/gridops/internal/domain/ports"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoDBAdapter implements the DatabaseAdapter interface for MongoDB.
// It serves the append-only activity log and energy reading series.
type MongoDBAdapter struct {
	client *mongo.Client
	db     *mongo.Database
	config *ports.MongoDBConfig
}

var _ ports.DatabaseAdapter = (*MongoDBAdapter)(nil)

// NewMongoDBAdapter creates a new MongoDB database adapter
func NewMongoDBAdapter(config *ports.MongoDBConfig) *MongoDBAdapter {
	return &MongoDBAdapter{
		config: config,
	}
}

// clientOptions builds driver options from the adapter configuration
func (a *MongoDBAdapter) clientOptions() *options.ClientOptions {
	clientOpts := options.Client().ApplyURI(a.config.URI)

	// Configure connection pool
	if a.config.MaxPoolSize > 0 {
		clientOpts.SetMaxPoolSize(uint64(a.config.MaxPoolSize))
	}
	if a.config.MinPoolSize > 0 {
		clientOpts.SetMinPoolSize(uint64(a.config.MinPoolSize))
	}
	if a.config.MaxConnIdleTime > 0 {
		clientOpts.SetMaxConnIdleTime(a.config.MaxConnIdleTime)
	}
	if a.config.ServerTimeout > 0 {
		clientOpts.SetServerSelectionTimeout(a.config.ServerTimeout)
	}
	return clientOpts
}

// Connect establishes a connection to the MongoDB database
func (a *MongoDBAdapter) Connect(ctx context.Context) error {
	client, err := mongo.Connect(ctx, a.clientOptions())
	if err != nil {
		return fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	// Ping to verify connection
	if err = client.Ping(ctx, nil); err != nil {
		return fmt.Errorf("failed to ping mongodb: %w", err)
	}

	a.client = client
	a.db = client.Database(a.config.Database)

	// Create indexes
	if err = a.createIndexes(ctx); err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}

	return nil
}

// Disconnect closes the database connection
func (a *MongoDBAdapter) Disconnect(ctx context.Context) error {
	if a.client != nil {
		return a.client.Disconnect(ctx)
	}
	return nil
}

// Ping checks if the database connection is alive
func (a *MongoDBAdapter) Ping(ctx context.Context) error {
	if a.client == nil {
		return fmt.Errorf("database not connected")
	}
	return a.client.Ping(ctx, nil)
}

// GetType returns the database type
func (a *MongoDBAdapter) GetType() ports.DatabaseType {
	return ports.DatabaseTypeMongoDB
}

// Populate sets the time-series repositories of store
func (a *MongoDBAdapter) Populate(store *ports.Store) {
	store.ActivityLogs = NewActivityLogRepository(a.db)
	store.EnergyReadings = NewEnergyReadingRepository(a.db)
}

// createIndexes creates necessary indexes for optimal performance
func (a *MongoDBAdapter) createIndexes(ctx context.Context) error {
	activityIndexes := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "timestamp", Value: -1}},
		},
		{
			Keys: bson.D{
				{Key: "entity_type", Value: 1},
				{Key: "entity_id", Value: 1},
			},
		},
	}

	_, err := a.db.Collection(activityCollection).Indexes().CreateMany(ctx, activityIndexes)
	if err != nil {
		return fmt.Errorf("failed to create activity log indexes: %w", err)
	}

	energyIndexes := []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "equipment_id", Value: 1},
				{Key: "timestamp", Value: -1},
			},
		},
	}

	_, err = a.db.Collection(energyCollection).Indexes().CreateMany(ctx, energyIndexes)
	if err != nil {
		return fmt.Errorf("failed to create energy reading indexes: %w", err)
	}

	return nil
}
