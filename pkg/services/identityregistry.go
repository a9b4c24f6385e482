package services

import (
	"context"

	"shay-b-io/api/pkg/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// mongoIdentityRegistry reads seller profiles from the marketplace user
// collection. Read-only; the identity records are owned elsewhere.
type mongoIdentityRegistry struct {
	users *mongo.Collection
}

func NewIdentityRegistry(users *mongo.Collection) IdentityRegistry {
	return &mongoIdentityRegistry{users: users}
}

func (r *mongoIdentityRegistry) GetSellerIdentity(ctx context.Context, sellerID primitive.ObjectID) (*models.SellerIdentity, error) {
	var identity models.SellerIdentity
	err := r.users.FindOne(ctx, bson.M{"_id": sellerID}).Decode(&identity)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, models.ErrSellerNotFound
		}
		return nil, err
	}

	return &identity, nil
}
