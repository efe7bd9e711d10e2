package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/grigta/numbering/pkg/database"
	"github.com/grigta/numbering/pkg/logger"
	"github.com/grigta/numbering/services/numbering-service/internal/models"
)

const VirtualNumbersCollection = "virtual_numbers"

type VirtualNumberRepository struct {
	collection *mongo.Collection
	timeout    time.Duration
	logger     logger.Logger
}

func NewVirtualNumberRepository(db *mongo.Database, timeout time.Duration, log logger.Logger) *VirtualNumberRepository {
	return &VirtualNumberRepository{
		collection: db.Collection(VirtualNumbersCollection),
		timeout:    timeout,
		logger:     log,
	}
}

func (r *VirtualNumberRepository) Create(ctx context.Context, number *models.VirtualNumber) error {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	now := time.Now().UTC()
	number.ID = primitive.NilObjectID
	number.CreatedAt = now
	number.UpdatedAt = now
	if number.Features == nil {
		number.Features = []models.Feature{}
	}

	result, err := r.collection.InsertOne(ctx, number)
	if err != nil {
		if database.IsDuplicate(err) {
			return fmt.Errorf("failed to insert virtual number: %w", database.ErrDuplicate)
		}
		return fmt.Errorf("failed to insert virtual number: %w", err)
	}

	number.ID = result.InsertedID.(primitive.ObjectID)
	return nil
}

// FindByID returns nil without error when nothing matches.
func (r *VirtualNumberRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.VirtualNumber, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	var number models.VirtualNumber
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&number)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find virtual number: %w", err)
	}

	return &number, nil
}

func (r *VirtualNumberRepository) ExistsByNumber(ctx context.Context, number string) (bool, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, bson.M{"number": number}, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("failed to check virtual number: %w", err)
	}
	return count > 0, nil
}

func (r *VirtualNumberRepository) Delete(ctx context.Context, id primitive.ObjectID) (int64, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return 0, fmt.Errorf("failed to delete virtual number: %w", err)
	}
	return result.DeletedCount, nil
}

func (r *VirtualNumberRepository) List(ctx context.Context, q models.PageQuery) ([]models.VirtualNumber, int64, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	filter := bson.M{}
	if q.Filter != "" {
		filter["number"] = database.ContainsFold(q.Filter)
	}

	total, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count virtual numbers: %w", err)
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "_id", Value: 1}}).
		SetSkip(q.Skip()).
		SetLimit(int64(q.Limit))

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to find virtual numbers: %w", err)
	}
	defer cursor.Close(ctx)

	numbers := make([]models.VirtualNumber, 0, q.Limit)
	if err := cursor.All(ctx, &numbers); err != nil {
		return nil, 0, fmt.Errorf("failed to decode virtual numbers: %w", err)
	}

	return numbers, total, nil
}

type ownerPage struct {
	Metadata []struct {
		Total int64 `bson:"total"`
	} `bson:"metadata"`
	Items []models.VirtualNumberWithOwner `bson:"items"`
}

// ListByOwner pages through the numbers owned by ownerID in a single
// aggregation. Counting, skip and limit apply to numbers before the owner
// is joined in; rows whose owner no longer exists are dropped by $unwind.
func (r *VirtualNumberRepository) ListByOwner(ctx context.Context, ownerID primitive.ObjectID, q models.PageQuery) ([]models.VirtualNumberWithOwner, int64, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	cursor, err := r.collection.Aggregate(ctx, ownerPipeline(ownerID, q))
	if err != nil {
		return nil, 0, fmt.Errorf("failed to aggregate virtual numbers: %w", err)
	}
	defer cursor.Close(ctx)

	var page ownerPage
	if cursor.Next(ctx) {
		if err := cursor.Decode(&page); err != nil {
			return nil, 0, fmt.Errorf("failed to decode virtual numbers: %w", err)
		}
	}
	if err := cursor.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to read virtual numbers: %w", err)
	}

	var total int64
	if len(page.Metadata) > 0 {
		total = page.Metadata[0].Total
	}
	if page.Items == nil {
		page.Items = []models.VirtualNumberWithOwner{}
	}

	return page.Items, total, nil
}

func ownerPipeline(ownerID primitive.ObjectID, q models.PageQuery) mongo.Pipeline {
	match := bson.M{"owner_id": ownerID}
	if q.Filter != "" {
		match["number"] = database.ContainsFold(q.Filter)
	}

	return mongo.Pipeline{
		{{Key: "$match", Value: match}},
		{{Key: "$sort", Value: bson.D{{Key: "_id", Value: 1}}}},
		{{Key: "$facet", Value: bson.M{
			"metadata": bson.A{
				bson.M{"$count": "total"},
			},
			"items": bson.A{
				bson.M{"$skip": q.Skip()},
				bson.M{"$limit": int64(q.Limit)},
				bson.M{"$lookup": bson.M{
					"from":         AccountsCollection,
					"localField":   "owner_id",
					"foreignField": "_id",
					"as":           "owner",
				}},
				bson.M{"$unwind": "$owner"},
			},
		}}},
	}
}

func (r *VirtualNumberRepository) CreateIndexes(ctx context.Context) error {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "number", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "owner_id", Value: 1}, {Key: "is_deleted", Value: 1}},
		},
	}

	if err := database.EnsureIndexes(ctx, r.collection, indexes); err != nil {
		return err
	}

	r.logger.Debug("Virtual number indexes ensured", logger.String("collection", VirtualNumbersCollection))
	return nil
}
