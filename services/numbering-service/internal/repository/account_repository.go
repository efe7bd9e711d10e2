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

const AccountsCollection = "accounts"

type AccountRepository struct {
	collection *mongo.Collection
	timeout    time.Duration
	logger     logger.Logger
}

func NewAccountRepository(db *mongo.Database, timeout time.Duration, log logger.Logger) *AccountRepository {
	return &AccountRepository{
		collection: db.Collection(AccountsCollection),
		timeout:    timeout,
		logger:     log,
	}
}

func (r *AccountRepository) Create(ctx context.Context, account *models.Account) error {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	now := time.Now().UTC()
	account.ID = primitive.NilObjectID
	account.CreatedAt = now
	account.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, account)
	if err != nil {
		if database.IsDuplicate(err) {
			return fmt.Errorf("failed to insert account: %w", database.ErrDuplicate)
		}
		return fmt.Errorf("failed to insert account: %w", err)
	}

	account.ID = result.InsertedID.(primitive.ObjectID)
	return nil
}

// FindByID returns nil without error when no account matches.
func (r *AccountRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Account, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	var account models.Account
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&account)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find account: %w", err)
	}

	return &account, nil
}

func (r *AccountRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, bson.M{"email": email}, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("failed to check account email: %w", err)
	}
	return count > 0, nil
}

// Update applies the non-nil fields of upd and returns the updated account,
// or nil when no account matches.
func (r *AccountRepository) Update(ctx context.Context, id primitive.ObjectID, upd models.AccountUpdate) (*models.Account, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	set := bson.M{"updated_at": time.Now().UTC()}
	if upd.Name != nil {
		set["name"] = *upd.Name
	}
	if upd.Email != nil {
		set["email"] = *upd.Email
	}
	if upd.AccountStatus != nil {
		set["account_status"] = *upd.AccountStatus
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var account models.Account
	err := r.collection.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&account)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		if database.IsDuplicate(err) {
			return nil, fmt.Errorf("failed to update account: %w", database.ErrDuplicate)
		}
		return nil, fmt.Errorf("failed to update account: %w", err)
	}

	return &account, nil
}

// Delete removes the account and returns it, or nil when no account matches.
func (r *AccountRepository) Delete(ctx context.Context, id primitive.ObjectID) (*models.Account, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	var account models.Account
	err := r.collection.FindOneAndDelete(ctx, bson.M{"_id": id}).Decode(&account)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to delete account: %w", err)
	}

	return &account, nil
}

// List returns one page of accounts in insertion order together with the
// number of accounts matching q.Filter.
func (r *AccountRepository) List(ctx context.Context, q models.PageQuery) ([]models.Account, int64, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	filter := bson.M{}
	if q.Filter != "" {
		re := database.ContainsFold(q.Filter)
		filter["$or"] = bson.A{
			bson.M{"name": re},
			bson.M{"email": re},
		}
	}

	total, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count accounts: %w", err)
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "_id", Value: 1}}).
		SetSkip(q.Skip()).
		SetLimit(int64(q.Limit))

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to find accounts: %w", err)
	}
	defer cursor.Close(ctx)

	accounts := make([]models.Account, 0, q.Limit)
	if err := cursor.All(ctx, &accounts); err != nil {
		return nil, 0, fmt.Errorf("failed to decode accounts: %w", err)
	}

	return accounts, total, nil
}

func (r *AccountRepository) CreateIndexes(ctx context.Context) error {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	}

	if err := database.EnsureIndexes(ctx, r.collection, indexes); err != nil {
		return err
	}

	r.logger.Debug("Account indexes ensured", logger.String("collection", AccountsCollection))
	return nil
}

func withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, timeout)
}
