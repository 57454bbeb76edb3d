package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"rental-booking-engine/internal/domain"
	"rental-booking-engine/internal/repository"
)

type BlockRepository struct {
	col *mongo.Collection
}

func NewBlockRepository(db *mongo.Database) repository.BlockRepository {
	return &BlockRepository{col: db.Collection(blocksCollection)}
}

// CreateIfFree is a plain check-then-insert; two concurrent callers can both
// pass the check.
func (r *BlockRepository) CreateIfFree(ctx context.Context, b *domain.BlockedDateRange) error {
	filter := overlapFilter(b.Range)
	filter["item_id"] = b.ItemID
	n, err := r.col.CountDocuments(ctx, filter, options.Count().SetLimit(1))
	if err != nil {
		return wrapErr("check block overlap", err)
	}
	if n > 0 {
		return fmt.Errorf("%w: item %s already blocked within %s", domain.ErrConflict, b.ItemID, b.Range)
	}

	b.CreatedOn = time.Now().UTC()
	if _, err := r.col.InsertOne(ctx, newBlockDocument(b)); err != nil {
		return wrapErr("insert block", err)
	}
	return nil
}

func (r *BlockRepository) ListByItem(ctx context.Context, itemID string) ([]domain.BlockedDateRange, error) {
	return r.find(ctx, bson.M{"item_id": itemID})
}

func (r *BlockRepository) ListOverlapping(ctx context.Context, itemID string, rg domain.DateRange) ([]domain.BlockedDateRange, error) {
	filter := overlapFilter(rg)
	filter["item_id"] = itemID
	return r.find(ctx, filter)
}

func (r *BlockRepository) find(ctx context.Context, filter bson.M) ([]domain.BlockedDateRange, error) {
	opts := options.Find().SetSort(bson.D{{Key: "range.start", Value: 1}, {Key: "_id", Value: 1}})
	cur, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, wrapErr("find blocks", err)
	}
	var docs []blockDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, wrapErr("decode blocks", err)
	}
	blocks := make([]domain.BlockedDateRange, 0, len(docs))
	for _, d := range docs {
		blocks = append(blocks, d.toDomain())
	}
	return blocks, nil
}

func (r *BlockRepository) Delete(ctx context.Context, id string) (bool, error) {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return false, wrapErr("delete block", err)
	}
	return res.DeletedCount > 0, nil
}

func (r *BlockRepository) DeleteByRequest(ctx context.Context, requestID string) (int64, error) {
	res, err := r.col.DeleteMany(ctx, bson.M{"request_id": requestID, "reason": string(domain.BlockReasonRented)})
	if err != nil {
		return 0, wrapErr("release request blocks", err)
	}
	return res.DeletedCount, nil
}

type blockDocument struct {
	ID        string        `bson:"_id"`
	ItemID    string        `bson:"item_id"`
	Range     rangeDocument `bson:"range"`
	Reason    string        `bson:"reason"`
	RequestID string        `bson:"request_id,omitempty"`
	CreatedAt int64         `bson:"created_at"`
}

func newBlockDocument(b *domain.BlockedDateRange) blockDocument {
	return blockDocument{
		ID:        b.ID,
		ItemID:    b.ItemID,
		Range:     newRangeDocument(b.Range),
		Reason:    string(b.Reason),
		RequestID: b.RequestID,
		CreatedAt: b.CreatedOn.UnixMilli(),
	}
}

func (d blockDocument) toDomain() domain.BlockedDateRange {
	return domain.BlockedDateRange{
		ID:        d.ID,
		ItemID:    d.ItemID,
		Range:     d.Range.toDomain(),
		Reason:    domain.BlockReason(d.Reason),
		RequestID: d.RequestID,
		CreatedOn: timestampToTime(d.CreatedAt),
	}
}
