package repository

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const usersCollection = "users"

// MongoUserRepository implements domain.UserRepository. Users are owned by
// the authentication service; this repository only probes for existence so
// trip creation can reject an unknown owner.
type MongoUserRepository struct {
	users *mongo.Collection
}

// NewMongoUserRepository creates a new MongoDB user repository
func NewMongoUserRepository(db *mongo.Database) *MongoUserRepository {
	return &MongoUserRepository{
		users: db.Collection(usersCollection),
	}
}

// Exists reports whether a user with the given ID exists
func (r *MongoUserRepository) Exists(ctx context.Context, id string) (bool, error) {
	count, err := r.users.CountDocuments(ctx, bson.M{"_id": id}, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("failed to check user existence: %w", err)
	}
	return count > 0, nil
}
