package postgres

import (
	"context"
	"database/sql"

	"rental-booking-engine/internal/domain"
	"rental-booking-engine/internal/repository"
)

type itemRepository struct {
	db *sql.DB
}

func NewItemRepository(db *sql.DB) repository.ItemRepository {
	return &itemRepository{db: db}
}

func (r *itemRepository) GetByID(ctx context.Context, id string) (*domain.Item, error) {
	it := &domain.Item{}
	query := `SELECT id, owner_id, instant_booking FROM items WHERE id = $1`
	err := r.db.QueryRowContext(ctx, query, id).Scan(&it.ID, &it.OwnerID, &it.InstantBooking)
	if err != nil {
		return nil, wrapErr("get item "+id, err)
	}
	return it, nil
}
