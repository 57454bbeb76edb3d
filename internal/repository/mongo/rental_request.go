package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"rental-booking-engine/internal/domain"
	"rental-booking-engine/internal/repository"
)

type RentalRequestRepository struct {
	col *mongo.Collection
}

func NewRentalRequestRepository(db *mongo.Database) repository.RentalRequestRepository {
	return &RentalRequestRepository{col: db.Collection(requestsCollection)}
}

func (r *RentalRequestRepository) Create(ctx context.Context, rq *domain.RentalRequest) error {
	now := time.Now().UTC()
	rq.CreatedOn, rq.UpdatedOn = now, now
	_, err := r.col.InsertOne(ctx, newRequestDocument(rq))
	return wrapErr("create rental request", err)
}

func (r *RentalRequestRepository) GetByID(ctx context.Context, id string) (*domain.RentalRequest, error) {
	var doc requestDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		return nil, wrapErr("get rental request "+id, err)
	}
	rq := doc.toDomain()
	return &rq, nil
}

func (r *RentalRequestRepository) Update(ctx context.Context, rq *domain.RentalRequest) error {
	rq.UpdatedOn = time.Now().UTC()
	update := bson.M{"$set": bson.M{
		"range":              newRangeDocument(rq.Range),
		"total_amount_cents": rq.TotalAmountCents,
		"message":            rq.Message,
		"status":             string(rq.Status),
		"updated_at":         rq.UpdatedOn.UnixMilli(),
	}}
	res, err := r.col.UpdateOne(ctx, bson.M{"_id": rq.ID}, update)
	if err != nil {
		return wrapErr("update rental request", err)
	}
	if res.MatchedCount == 0 {
		return wrapErr("update rental request "+rq.ID, mongo.ErrNoDocuments)
	}
	return nil
}

func (r *RentalRequestRepository) List(ctx context.Context, f domain.RentalRequestFilter) ([]domain.RentalRequest, error) {
	opts := options.Find().SetSort(bson.D{{Key: "range.start", Value: 1}, {Key: "created_at", Value: 1}})
	cur, err := r.col.Find(ctx, requestFilter(f), opts)
	if err != nil {
		return nil, wrapErr("list rental requests", err)
	}
	var docs []requestDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, wrapErr("decode rental requests", err)
	}
	requests := make([]domain.RentalRequest, 0, len(docs))
	for _, d := range docs {
		requests = append(requests, d.toDomain())
	}
	return requests, nil
}

func requestFilter(f domain.RentalRequestFilter) bson.M {
	filter := bson.M{}
	if f.ItemID != "" {
		filter["item_id"] = f.ItemID
	}
	if f.RenterID != "" {
		filter["renter_id"] = f.RenterID
	}
	if f.OwnerID != "" {
		filter["owner_id"] = f.OwnerID
	}
	if len(f.Statuses) > 0 {
		statuses := make([]string, len(f.Statuses))
		for i, s := range f.Statuses {
			statuses[i] = string(s)
		}
		filter["status"] = bson.M{"$in": statuses}
	}
	end := bson.M{}
	if f.EndingOnOrAfter != nil {
		end["$gte"] = domain.DayOf(*f.EndingOnOrAfter).UnixMilli()
	}
	if f.EndingBefore != nil {
		end["$lt"] = domain.DayOf(*f.EndingBefore).UnixMilli()
	}
	if len(end) > 0 {
		filter["range.end"] = end
	}
	return filter
}

type requestDocument struct {
	ID               string        `bson:"_id"`
	ItemID           string        `bson:"item_id"`
	RenterID         string        `bson:"renter_id"`
	OwnerID          string        `bson:"owner_id"`
	Range            rangeDocument `bson:"range"`
	TotalAmountCents int64         `bson:"total_amount_cents"`
	Message          *string       `bson:"message,omitempty"`
	Status           string        `bson:"status"`
	CreatedAt        int64         `bson:"created_at"`
	UpdatedAt        int64         `bson:"updated_at"`
}

func newRequestDocument(rq *domain.RentalRequest) requestDocument {
	return requestDocument{
		ID:               rq.ID,
		ItemID:           rq.ItemID,
		RenterID:         rq.RenterID,
		OwnerID:          rq.OwnerID,
		Range:            newRangeDocument(rq.Range),
		TotalAmountCents: rq.TotalAmountCents,
		Message:          rq.Message,
		Status:           string(rq.Status),
		CreatedAt:        rq.CreatedOn.UnixMilli(),
		UpdatedAt:        rq.UpdatedOn.UnixMilli(),
	}
}

func (d requestDocument) toDomain() domain.RentalRequest {
	return domain.RentalRequest{
		ID:               d.ID,
		ItemID:           d.ItemID,
		RenterID:         d.RenterID,
		OwnerID:          d.OwnerID,
		Range:            d.Range.toDomain(),
		TotalAmountCents: d.TotalAmountCents,
		Message:          d.Message,
		Status:           domain.RentalStatus(d.Status),
		CreatedOn:        timestampToTime(d.CreatedAt),
		UpdatedOn:        timestampToTime(d.UpdatedAt),
	}
}
