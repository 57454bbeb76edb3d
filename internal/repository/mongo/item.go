package mongo

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"rental-booking-engine/internal/domain"
	"rental-booking-engine/internal/repository"
)

type ItemRepository struct {
	col *mongo.Collection
}

func NewItemRepository(db *mongo.Database) repository.ItemRepository {
	return &ItemRepository{col: db.Collection(itemsCollection)}
}

func (r *ItemRepository) GetByID(ctx context.Context, id string) (*domain.Item, error) {
	var doc itemDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		return nil, wrapErr("get item "+id, err)
	}
	return &domain.Item{ID: doc.ID, OwnerID: doc.OwnerID, InstantBooking: doc.InstantBooking}, nil
}

type itemDocument struct {
	ID             string `bson:"_id"`
	OwnerID        string `bson:"owner_id"`
	InstantBooking bool   `bson:"instant_booking"`
}
