package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"rental-booking-engine/internal/domain"
	"rental-booking-engine/internal/repository"
)

const (
	blocksCollection   = "blocked_date_ranges"
	requestsCollection = "rental_requests"
	itemsCollection    = "items"
)

type Client struct {
	DB *mongo.Database
}

func New(uri, database string) (*Client, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	opts := options.Client().ApplyURI(uri).SetRetryWrites(true)
	m, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, err
	}
	return &Client{DB: m.Database(database)}, nil
}

func (c *Client) Ping(ctx context.Context) error {
	return c.DB.Client().Ping(ctx, nil)
}

func (c *Client) Close(ctx context.Context) error {
	return c.DB.Client().Disconnect(ctx)
}

// EnsureIndexes creates the lookup indexes the repositories query by.
func (c *Client) EnsureIndexes(ctx context.Context) error {
	_, err := c.DB.Collection(blocksCollection).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "item_id", Value: 1}, {Key: "range.start", Value: 1}}},
		{Keys: bson.D{{Key: "request_id", Value: 1}}},
	})
	if err != nil {
		return wrapErr("create block indexes", err)
	}
	_, err = c.DB.Collection(requestsCollection).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "item_id", Value: 1}, {Key: "status", Value: 1}}},
		{Keys: bson.D{{Key: "renter_id", Value: 1}}},
		{Keys: bson.D{{Key: "owner_id", Value: 1}}},
	})
	return wrapErr("create rental request indexes", err)
}

type Store struct {
	repository.BlockRepository
	repository.RentalRequestRepository
	repository.ItemRepository
}

func NewStore(c *Client) *Store {
	return &Store{
		BlockRepository:         NewBlockRepository(c.DB),
		RentalRequestRepository: NewRentalRequestRepository(c.DB),
		ItemRepository:          NewItemRepository(c.DB),
	}
}

func wrapErr(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, mongo.ErrNoDocuments) {
		return fmt.Errorf("%w: %s", domain.ErrNotFound, op)
	}
	return fmt.Errorf("%w: %s: %v", domain.ErrStoreUnavailable, op, err)
}

type rangeDocument struct {
	Start int64 `bson:"start"`
	End   int64 `bson:"end"`
}

func newRangeDocument(r domain.DateRange) rangeDocument {
	return rangeDocument{Start: r.Start.UnixMilli(), End: r.End.UnixMilli()}
}

func (d rangeDocument) toDomain() domain.DateRange {
	return domain.NewDateRange(timestampToTime(d.Start), timestampToTime(d.End))
}

// overlapFilter matches documents whose range shares a calendar day with r.
func overlapFilter(r domain.DateRange) bson.M {
	from := r.StartDay().UnixMilli()
	until := r.EndDay().AddDate(0, 0, 1).UnixMilli()
	return bson.M{
		"range.start": bson.M{"$lt": until},
		"range.end":   bson.M{"$gte": from},
	}
}

func timestampToTime(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}
