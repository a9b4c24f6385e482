package services

import (
	"context"
	"sync"

	"shay-b-io/api/pkg/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// sellerRepository is the Mongo-backed seller account registry. Every
// write replaces the cached provider fields wholesale, which keeps
// concurrent refreshes last-write-wins without read-modify-write races.
type sellerRepository struct {
	collection *mongo.Collection
}

func NewSellerRepository(collection *mongo.Collection) SellerAccountRepository {
	return &sellerRepository{collection: collection}
}

func (r *sellerRepository) FindBySellerID(ctx context.Context, sellerID primitive.ObjectID) (*models.SellerAccount, error) {
	var acct models.SellerAccount
	err := r.collection.FindOne(ctx, bson.M{"seller_id": sellerID}).Decode(&acct)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, models.ErrAccountNotRegistered
		}
		return nil, err
	}

	return &acct, nil
}

func (r *sellerRepository) Upsert(ctx context.Context, account *models.SellerAccount) error {
	filter := bson.M{"seller_id": account.SellerID}
	update := bson.M{"$set": bson.M{
		"provider_account_id":  account.ProviderAccountID,
		"state":                account.State,
		"pending_requirements": account.PendingRequirements,
		"review_deadline":      account.ReviewDeadline,
		"modified_at":          account.ModifiedAt,
	}, "$setOnInsert": bson.M{
		"_id":        account.ID,
		"seller_id":  account.SellerID,
		"created_at": account.CreatedAt,
	}}

	opts := options.Update().SetUpsert(true)
	_, err := r.collection.UpdateOne(ctx, filter, update, opts)
	return err
}

// memorySellerRepository keeps accounts in a map guarded by a RWMutex.
// Used by tests and local development without a Mongo instance.
type memorySellerRepository struct {
	mu       sync.RWMutex
	accounts map[primitive.ObjectID]models.SellerAccount
}

func NewMemorySellerRepository() SellerAccountRepository {
	return &memorySellerRepository{accounts: make(map[primitive.ObjectID]models.SellerAccount)}
}

func (r *memorySellerRepository) FindBySellerID(_ context.Context, sellerID primitive.ObjectID) (*models.SellerAccount, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	acct, ok := r.accounts[sellerID]
	if !ok {
		return nil, models.ErrAccountNotRegistered
	}

	copied := acct
	copied.PendingRequirements = append([]string(nil), acct.PendingRequirements...)
	return &copied, nil
}

func (r *memorySellerRepository) Upsert(_ context.Context, account *models.SellerAccount) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored := *account
	stored.PendingRequirements = append([]string(nil), account.PendingRequirements...)
	if existing, ok := r.accounts[account.SellerID]; ok {
		stored.ID = existing.ID
		stored.CreatedAt = existing.CreatedAt
	}
	r.accounts[account.SellerID] = stored
	return nil
}
