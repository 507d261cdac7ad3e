package mongodb

import (
	"context"
	"fmt"

	"github.com/hsdfat8/gridops/internal/domain/models"
	"github.com/hsdfat8/gridops/internal/domain/ports"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	activityCollection = "activity_logs"
	energyCollection   = "energy_readings"
)

// ActivityLogRepository implements ports.ActivityLogRepository using MongoDB
type ActivityLogRepository struct {
	collection *mongo.Collection
	ids        *sequence
}

var _ ports.ActivityLogRepository = (*ActivityLogRepository)(nil)

// NewActivityLogRepository creates a new MongoDB activity log repository
func NewActivityLogRepository(db *mongo.Database) *ActivityLogRepository {
	return &ActivityLogRepository{
		collection: db.Collection(activityCollection),
		ids:        newSequence(db, activityCollection),
	}
}

// Append records an activity entry
func (r *ActivityLogRepository) Append(ctx context.Context, entry *models.ActivityLog) error {
	id, err := r.ids.next(ctx)
	if err != nil {
		return err
	}
	entry.ID = id

	if _, err := r.collection.InsertOne(ctx, entry); err != nil {
		return fmt.Errorf("failed to append activity log: %w", err)
	}
	return nil
}

// List retrieves the most recent entries, newest first
func (r *ActivityLogRepository) List(ctx context.Context, limit int) ([]*models.ActivityLog, error) {
	cursor, err := r.collection.Find(ctx, bson.M{}, newestFirst(limit))
	if err != nil {
		return nil, fmt.Errorf("failed to list activity logs: %w", err)
	}
	defer cursor.Close(ctx)

	logs := []*models.ActivityLog{}
	if err = cursor.All(ctx, &logs); err != nil {
		return nil, fmt.Errorf("failed to decode activity logs: %w", err)
	}
	return logs, nil
}

// EnergyReadingRepository implements ports.EnergyReadingRepository using MongoDB
type EnergyReadingRepository struct {
	collection *mongo.Collection
	ids        *sequence
}

var _ ports.EnergyReadingRepository = (*EnergyReadingRepository)(nil)

// NewEnergyReadingRepository creates a new MongoDB energy reading repository
func NewEnergyReadingRepository(db *mongo.Database) *EnergyReadingRepository {
	return &EnergyReadingRepository{
		collection: db.Collection(energyCollection),
		ids:        newSequence(db, energyCollection),
	}
}

// Append records a reading
func (r *EnergyReadingRepository) Append(ctx context.Context, reading *models.EnergyReading) error {
	id, err := r.ids.next(ctx)
	if err != nil {
		return err
	}
	reading.ID = id

	if _, err := r.collection.InsertOne(ctx, reading); err != nil {
		return fmt.Errorf("failed to append energy reading: %w", err)
	}
	return nil
}

// List retrieves readings matching filter, newest first
func (r *EnergyReadingRepository) List(ctx context.Context, filter ports.EnergyFilter) ([]*models.EnergyReading, error) {
	cursor, err := r.collection.Find(ctx, energyQuery(filter), newestFirst(filter.Limit))
	if err != nil {
		return nil, fmt.Errorf("failed to list energy readings: %w", err)
	}
	defer cursor.Close(ctx)

	readings := []*models.EnergyReading{}
	if err = cursor.All(ctx, &readings); err != nil {
		return nil, fmt.Errorf("failed to decode energy readings: %w", err)
	}
	return readings, nil
}

// energyQuery translates an EnergyFilter into a MongoDB filter document
func energyQuery(filter ports.EnergyFilter) bson.M {
	query := bson.M{}
	if filter.EquipmentID != 0 {
		query["equipment_id"] = filter.EquipmentID
	}
	if filter.Since != nil {
		query["timestamp"] = bson.M{"$gte": *filter.Since}
	}
	return query
}

// newestFirst sorts by timestamp then id, both descending; limit <= 0 means no limit
func newestFirst(limit int) *options.FindOptions {
	opts := options.Find().
		SetSort(bson.D{{Key: "timestamp", Value: -1}, {Key: "_id", Value: -1}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}
	return opts
}
