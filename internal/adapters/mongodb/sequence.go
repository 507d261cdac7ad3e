package mongodb

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const countersCollection = "counters"

// sequence hands out monotonically increasing int64 ids for one collection,
// so documents keep the numeric ids the rest of the system uses.
type sequence struct {
	counters *mongo.Collection
	name     string
}

func newSequence(db *mongo.Database, name string) *sequence {
	return &sequence{counters: db.Collection(countersCollection), name: name}
}

func (s *sequence) next(ctx context.Context) (int64, error) {
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var doc struct {
		Seq int64 `bson:"seq"`
	}
	err := s.counters.FindOneAndUpdate(ctx, bson.M{"_id": s.name}, bson.M{"$inc": bson.M{"seq": int64(1)}}, opts).Decode(&doc)
	if err != nil {
		return 0, fmt.Errorf("failed to allocate %s id: %w", s.name, err)
	}
	return doc.Seq, nil
}
