package persistence

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/Marc02130/tiktaik-sub000/domain/model"
	"github.com/Marc02130/tiktaik-sub000/domain/repository"
)

const usersCollection = "users"

// UserRepository resolves accounts from the document store for token
// verification.
type UserRepository struct {
	client *mongo.Client
	dbName string
}

func NewUserRepository(client *mongo.Client, dbName string) repository.IUser {
	return &UserRepository{client: client, dbName: dbName}
}

func (r *UserRepository) GetByUserName(ctx context.Context, userName string) (*model.User, error) {
	var user model.User
	err := r.client.Database(r.dbName).Collection(usersCollection).
		FindOne(ctx, bson.D{{Key: "userName", Value: userName}}).
		Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("user %q not found", userName)
		}
		return nil, fmt.Errorf("looking up user: %w", err)
	}
	return &user, nil
}
