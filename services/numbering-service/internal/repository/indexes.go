package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/grigta/numbering/pkg/database"
)

const CallRecordsCollection = "call_records"

// IndexCreator is implemented by every repository that owns indexes.
type IndexCreator interface {
	CreateIndexes(ctx context.Context) error
}

// EnsureIndexes creates the indexes of every collection the service owns,
// including call_records which has no repository of its own.
func EnsureIndexes(ctx context.Context, db *mongo.Database, repos ...IndexCreator) error {
	for _, repo := range repos {
		if err := repo.CreateIndexes(ctx); err != nil {
			return err
		}
	}

	return database.EnsureIndexes(ctx, db.Collection(CallRecordsCollection), []mongo.IndexModel{
		{Keys: bson.D{{Key: "caller_id", Value: 1}, {Key: "callee_id", Value: 1}}},
		{Keys: bson.D{{Key: "start_time", Value: 1}}},
	})
}
