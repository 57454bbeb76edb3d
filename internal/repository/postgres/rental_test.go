package postgres_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rental-booking-engine/internal/domain"
	"rental-booking-engine/internal/repository/postgres"
)

var rentalRequestColumns = []string{
	"id", "item_id", "renter_id", "owner_id", "start_date", "end_date",
	"total_amount_cents", "message", "status", "created_on", "updated_on",
}

func TestRentalRequestRepository_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	defer db.Close()

	repo := postgres.NewRentalRequestRepository(db)
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		msg := "pick up at noon"
		rq := &domain.RentalRequest{
			ID:               "req-1",
			ItemID:           "item-1",
			RenterID:         "renter-1",
			OwnerID:          "owner-1",
			Range:            domain.NewDateRange(day("2024-07-01"), day("2024-07-03")),
			TotalAmountCents: 4500,
			Message:          &msg,
			Status:           domain.RentalStatusPending,
		}
		now := time.Now()

		mock.ExpectQuery("INSERT INTO rental_requests").
			WithArgs("req-1", "item-1", "renter-1", "owner-1", rq.Range.Start, rq.Range.End, int64(4500), msg, domain.RentalStatusPending).
			WillReturnRows(sqlmock.NewRows([]string{"created_on", "updated_on"}).AddRow(now, now))

		err := repo.Create(ctx, rq)
		assert.NoError(t, err)
		assert.Equal(t, now, rq.CreatedOn)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestRentalRequestRepository_GetByID(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	defer db.Close()

	repo := postgres.NewRentalRequestRepository(db)
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		rows := sqlmock.NewRows(rentalRequestColumns).
			AddRow("req-1", "item-1", "renter-1", "owner-1", day("2024-07-01"), day("2024-07-03"), int64(4500), nil, "approved", time.Now(), time.Now())

		mock.ExpectQuery("SELECT (.+) FROM rental_requests WHERE id = \\$1").
			WithArgs("req-1").
			WillReturnRows(rows)

		rq, err := repo.GetByID(ctx, "req-1")
		require.NoError(t, err)
		assert.Equal(t, "req-1", rq.ID)
		assert.Equal(t, domain.RentalStatusApproved, rq.Status)
		assert.Nil(t, rq.Message)
		assert.Equal(t, day("2024-07-03"), rq.Range.End)
	})

	t.Run("NotFound", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM rental_requests WHERE id = \\$1").
			WithArgs("missing").
			WillReturnError(sql.ErrNoRows)

		rq, err := repo.GetByID(ctx, "missing")
		assert.Nil(t, rq)
		assert.True(t, errors.Is(err, domain.ErrNotFound))
	})
}

func TestRentalRequestRepository_Update(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	defer db.Close()

	repo := postgres.NewRentalRequestRepository(db)

	rq := &domain.RentalRequest{
		ID:               "req-1",
		Range:            domain.NewDateRange(day("2024-07-02"), day("2024-07-04")),
		TotalAmountCents: 6000,
		Status:           domain.RentalStatusApproved,
	}
	mock.ExpectQuery("UPDATE rental_requests").
		WithArgs(rq.Range.Start, rq.Range.End, int64(6000), nil, domain.RentalStatusApproved, "req-1").
		WillReturnRows(sqlmock.NewRows([]string{"updated_on"}).AddRow(time.Now()))

	err = repo.Update(context.Background(), rq)
	assert.NoError(t, err)
	assert.False(t, rq.UpdatedOn.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRentalRequestRepository_List(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	defer db.Close()

	repo := postgres.NewRentalRequestRepository(db)
	ctx := context.Background()

	t.Run("ActiveByItem", func(t *testing.T) {
		rows := sqlmock.NewRows(rentalRequestColumns).
			AddRow("req-1", "item-1", "renter-1", "owner-1", day("2024-07-01"), day("2024-07-03"), int64(4500), "hi", "pending", time.Now(), time.Now()).
			AddRow("req-2", "item-1", "renter-2", "owner-1", day("2024-07-10"), day("2024-07-12"), int64(4500), nil, "paid", time.Now(), time.Now())

		mock.ExpectQuery("FROM rental_requests WHERE item_id = \\$1 AND status IN \\(\\$2,\\$3,\\$4\\) ORDER BY start_date ASC").
			WithArgs("item-1", "pending", "approved", "paid").
			WillReturnRows(rows)

		requests, err := repo.List(ctx, domain.RentalRequestFilter{ItemID: "item-1", Statuses: domain.ActiveStatuses})
		require.NoError(t, err)
		require.Len(t, requests, 2)
		require.NotNil(t, requests[0].Message)
		assert.Equal(t, "hi", *requests[0].Message)
		assert.Equal(t, domain.RentalStatusPaid, requests[1].Status)
	})

	t.Run("ByRenterEndingWindow", func(t *testing.T) {
		from := time.Date(2024, 7, 1, 15, 0, 0, 0, time.UTC)
		mock.ExpectQuery("FROM rental_requests WHERE renter_id = \\$1 AND end_date >= \\$2").
			WithArgs("renter-1", day("2024-07-01")).
			WillReturnRows(sqlmock.NewRows(rentalRequestColumns))

		requests, err := repo.List(ctx, domain.RentalRequestFilter{RenterID: "renter-1", EndingOnOrAfter: &from})
		assert.NoError(t, err)
		assert.Empty(t, requests)
	})

	t.Run("StoreDown", func(t *testing.T) {
		mock.ExpectQuery("FROM rental_requests").
			WillReturnError(errors.New("connection reset"))

		_, err := repo.List(ctx, domain.RentalRequestFilter{OwnerID: "owner-1"})
		assert.True(t, errors.Is(err, domain.ErrStoreUnavailable))
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestItemRepository_GetByID(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	defer db.Close()

	repo := postgres.NewItemRepository(db)

	mock.ExpectQuery("SELECT id, owner_id, instant_booking FROM items WHERE id = \\$1").
		WithArgs("item-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "owner_id", "instant_booking"}).AddRow("item-1", "owner-1", true))

	it, err := repo.GetByID(context.Background(), "item-1")
	require.NoError(t, err)
	assert.Equal(t, "owner-1", it.OwnerID)
	assert.True(t, it.InstantBooking)

	mock.ExpectQuery("FROM items").WithArgs("nope").WillReturnError(sql.ErrNoRows)
	_, err = repo.GetByID(context.Background(), "nope")
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}
