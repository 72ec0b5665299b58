package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/Nicoc39/Proyecto-Backend-2-Nicolas-Carranza/internal/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type mongoAccessor struct {
	collection *mongo.Collection
}

func NewMongoAccessor(db *mongo.Database) Accessor {
	return &mongoAccessor{collection: db.Collection("products")}
}

func (m *mongoAccessor) GetStock(ctx context.Context, productID string) (*domain.Product, error) {
	var product domain.Product

	err := m.collection.FindOne(ctx, bson.M{"_id": productID}).Decode(&product)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to get product: %w", err)
	}

	return &product, nil
}

func (m *mongoAccessor) DecrementStock(ctx context.Context, productID string, amount int) (*domain.Product, error) {
	if amount <= 0 {
		return nil, ErrInvalidDecrement
	}

	// Single conditional update: the stock >= amount guard and the $inc
	// run as one document operation, so two concurrent decrements cannot
	// both win the last units.
	filter := bson.M{
		"_id":   productID,
		"stock": bson.M{"$gte": amount},
	}
	update := bson.M{"$inc": bson.M{"stock": -amount}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var updated domain.Product
	err := m.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&updated)
	if err == nil {
		return &updated, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("failed to decrement stock: %w", err)
	}

	// No match: either the product is gone or the guard refused the
	// subtraction. Look the product up to tell the two apart.
	count, countErr := m.collection.CountDocuments(ctx, bson.M{"_id": productID})
	if countErr != nil {
		return nil, fmt.Errorf("failed to check product existence: %w", countErr)
	}
	if count == 0 {
		return nil, ErrProductNotFound
	}
	return nil, ErrInvalidDecrement
}

func (m *mongoAccessor) ListAvailable(ctx context.Context) ([]*domain.Product, error) {
	cursor, err := m.collection.Find(ctx, bson.M{"stock": bson.M{"$gt": 0}})
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer cursor.Close(ctx)

	var products []*domain.Product
	if err := cursor.All(ctx, &products); err != nil {
		return nil, fmt.Errorf("failed to decode products: %w", err)
	}

	return products, nil
}

func (m *mongoAccessor) Insert(ctx context.Context, product *domain.Product) error {
	if _, err := m.collection.InsertOne(ctx, product); err != nil {
		return fmt.Errorf("failed to insert product: %w", err)
	}
	return nil
}
