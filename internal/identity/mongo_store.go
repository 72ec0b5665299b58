package identity

import (
	"context"
	"errors"
	"fmt"

	"github.com/Nicoc39/Proyecto-Backend-2-Nicolas-Carranza/internal/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

type mongoStore struct {
	collection *mongo.Collection
}

func NewMongoStore(db *mongo.Database) Store {
	return &mongoStore{collection: db.Collection("users")}
}

func (s *mongoStore) FindByID(ctx context.Context, id string) (*domain.User, error) {
	var user domain.User

	err := s.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return &user, nil
}

func (s *mongoStore) Insert(ctx context.Context, user *domain.User) error {
	if _, err := s.collection.InsertOne(ctx, user); err != nil {
		return fmt.Errorf("failed to insert user: %w", err)
	}
	return nil
}
