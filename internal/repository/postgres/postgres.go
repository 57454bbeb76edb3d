package postgres

import (
	"database/sql"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	_ "github.com/lib/pq"

	"rental-booking-engine/internal/domain"
	"rental-booking-engine/internal/repository"
)

// psql builds Postgres-flavoured queries ($1, $2, ...).
var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

type Store struct {
	db *sql.DB
	repository.BlockRepository
	repository.RentalRequestRepository
	repository.ItemRepository
}

func NewStore(db *sql.DB) *Store {
	return &Store{
		db:                      db,
		BlockRepository:         NewBlockRepository(db),
		RentalRequestRepository: NewRentalRequestRepository(db),
		ItemRepository:          NewItemRepository(db),
	}
}

func (s *Store) DB() *sql.DB {
	return s.db
}

// wrapErr maps driver errors onto the domain error taxonomy.
func wrapErr(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %s", domain.ErrNotFound, op)
	}
	return fmt.Errorf("%w: %s: %v", domain.ErrStoreUnavailable, op, err)
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullStringPtr(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}
