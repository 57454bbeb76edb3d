package mongo

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"rental-booking-engine/internal/domain"
)

func day(s string) time.Time {
	t, err := domain.ParseDay(s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestOverlapFilter(t *testing.T) {
	f := overlapFilter(domain.NewDateRange(day("2024-06-01").Add(15*time.Hour), day("2024-06-03")))

	assert.Equal(t, bson.M{"$lt": day("2024-06-04").UnixMilli()}, f["range.start"])
	assert.Equal(t, bson.M{"$gte": day("2024-06-01").UnixMilli()}, f["range.end"])
}

func TestRequestFilter(t *testing.T) {
	after := day("2024-07-01").Add(9 * time.Hour)
	f := requestFilter(domain.RentalRequestFilter{
		ItemID:          "item-1",
		Statuses:        []domain.RentalStatus{domain.RentalStatusApproved, domain.RentalStatusPaid},
		EndingOnOrAfter: &after,
	})

	assert.Equal(t, "item-1", f["item_id"])
	assert.Equal(t, bson.M{"$in": []string{"approved", "paid"}}, f["status"])
	assert.Equal(t, bson.M{"$gte": day("2024-07-01").UnixMilli()}, f["range.end"])
	assert.NotContains(t, f, "renter_id")

	assert.Empty(t, requestFilter(domain.RentalRequestFilter{}))
}

func TestRequestDocument_RoundTrip(t *testing.T) {
	msg := "thanks"
	rq := &domain.RentalRequest{
		ID:               "req-1",
		ItemID:           "item-1",
		RenterID:         "renter-1",
		OwnerID:          "owner-1",
		Range:            domain.NewDateRange(day("2024-07-01"), day("2024-07-03")),
		TotalAmountCents: 1200,
		Message:          &msg,
		Status:           domain.RentalStatusPending,
		CreatedOn:        day("2024-06-20"),
		UpdatedOn:        day("2024-06-21"),
	}

	got := newRequestDocument(rq).toDomain()
	assert.Equal(t, *rq, got)
}

func TestBlockRepository_Mock(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	rg := domain.NewDateRange(day("2024-06-01"), day("2024-06-05"))

	mt.Run("Conflict", func(mt *mtest.T) {
		repo := NewBlockRepository(mt.DB)
		ns := mt.DB.Name() + "." + blocksCollection
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch, bson.D{{Key: "n", Value: int32(1)}}))

		err := repo.CreateIfFree(context.Background(), &domain.BlockedDateRange{ID: "b1", ItemID: "item-1", Range: rg, Reason: domain.BlockReasonOther})
		assert.True(t, errors.Is(err, domain.ErrConflict))
	})

	mt.Run("Inserted", func(mt *mtest.T) {
		repo := NewBlockRepository(mt.DB)
		ns := mt.DB.Name() + "." + blocksCollection
		mt.AddMockResponses(
			mtest.CreateCursorResponse(0, ns, mtest.FirstBatch),
			mtest.CreateSuccessResponse(),
		)

		b := &domain.BlockedDateRange{ID: "b1", ItemID: "item-1", Range: rg, Reason: domain.BlockReasonMaintenance}
		require.NoError(t, repo.CreateIfFree(context.Background(), b))
		assert.False(t, b.CreatedOn.IsZero())
	})
}

func TestRentalRequestRepository_Mock(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("NotFound", func(mt *mtest.T) {
		repo := NewRentalRequestRepository(mt.DB)
		ns := mt.DB.Name() + "." + requestsCollection
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch))

		_, err := repo.GetByID(context.Background(), "missing")
		assert.True(t, errors.Is(err, domain.ErrNotFound))
	})

	mt.Run("Found", func(mt *mtest.T) {
		repo := NewRentalRequestRepository(mt.DB)
		ns := mt.DB.Name() + "." + requestsCollection
		doc := bson.D{
			{Key: "_id", Value: "req-1"},
			{Key: "item_id", Value: "item-1"},
			{Key: "renter_id", Value: "renter-1"},
			{Key: "owner_id", Value: "owner-1"},
			{Key: "range", Value: bson.D{{Key: "start", Value: day("2024-07-01").UnixMilli()}, {Key: "end", Value: day("2024-07-03").UnixMilli()}}},
			{Key: "total_amount_cents", Value: int64(900)},
			{Key: "status", Value: "approved"},
		}
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch, doc))

		rq, err := repo.GetByID(context.Background(), "req-1")
		require.NoError(t, err)
		assert.Equal(t, domain.RentalStatusApproved, rq.Status)
		assert.Equal(t, day("2024-07-03"), rq.Range.End)
		assert.Nil(t, rq.Message)
	})
}
