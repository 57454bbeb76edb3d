package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"rental-booking-engine/internal/domain"
	"rental-booking-engine/internal/logger"
	"rental-booking-engine/internal/repository"
)

const blockColumns = `id, item_id, start_date, end_date, reason, request_id, created_on`

type blockRepository struct {
	db *sql.DB
}

func NewBlockRepository(db *sql.DB) repository.BlockRepository {
	return &blockRepository{db: db}
}

// CreateIfFree runs the overlap check and the insert in one transaction that
// holds a per-item advisory lock, so concurrent inserts for the same item
// are serialized.
func (r *blockRepository) CreateIfFree(ctx context.Context, b *domain.BlockedDateRange) error {
	logger.DatabaseCall("CreateIfFree", "INSERT INTO blocked_date_ranges", "item_id", b.ItemID, "range", b.Range.String())

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return wrapErr("begin block insert", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, b.ItemID); err != nil {
		return wrapErr("lock item calendar", err)
	}

	var taken bool
	from, until := dayWindow(b.Range)
	err = tx.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM blocked_date_ranges WHERE item_id = $1 AND start_date < $2 AND end_date >= $3)`,
		b.ItemID, until, from,
	).Scan(&taken)
	if err != nil {
		return wrapErr("check block overlap", err)
	}
	if taken {
		return fmt.Errorf("%w: item %s already blocked within %s", domain.ErrConflict, b.ItemID, b.Range)
	}

	query := `INSERT INTO blocked_date_ranges (id, item_id, start_date, end_date, reason, request_id, created_on)
	          VALUES ($1, $2, $3, $4, $5, $6, NOW()) RETURNING created_on`
	err = tx.QueryRowContext(ctx, query, b.ID, b.ItemID, b.Range.Start, b.Range.End, b.Reason, nullString(b.RequestID)).Scan(&b.CreatedOn)
	if err != nil {
		return wrapErr("insert block", err)
	}

	err = tx.Commit()
	logger.DatabaseResult("CreateIfFree", 1, err, "block_id", b.ID)
	return wrapErr("commit block insert", err)
}

func (r *blockRepository) ListByItem(ctx context.Context, itemID string) ([]domain.BlockedDateRange, error) {
	query := `SELECT ` + blockColumns + ` FROM blocked_date_ranges WHERE item_id = $1 ORDER BY start_date ASC, id ASC`
	rows, err := r.db.QueryContext(ctx, query, itemID)
	if err != nil {
		return nil, wrapErr("list blocks", err)
	}
	return scanBlocks(rows)
}

func (r *blockRepository) ListOverlapping(ctx context.Context, itemID string, rg domain.DateRange) ([]domain.BlockedDateRange, error) {
	from, until := dayWindow(rg)
	query := `SELECT ` + blockColumns + ` FROM blocked_date_ranges
	          WHERE item_id = $1 AND start_date < $2 AND end_date >= $3 ORDER BY start_date ASC, id ASC`
	rows, err := r.db.QueryContext(ctx, query, itemID, until, from)
	if err != nil {
		return nil, wrapErr("list overlapping blocks", err)
	}
	return scanBlocks(rows)
}

func (r *blockRepository) Delete(ctx context.Context, id string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM blocked_date_ranges WHERE id = $1`, id)
	if err != nil {
		return false, wrapErr("delete block", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, wrapErr("delete block", err)
	}
	return n > 0, nil
}

func (r *blockRepository) DeleteByRequest(ctx context.Context, requestID string) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM blocked_date_ranges WHERE request_id = $1 AND reason = $2`, requestID, domain.BlockReasonRented)
	if err != nil {
		return 0, wrapErr("release request blocks", err)
	}
	n, err := res.RowsAffected()
	logger.DatabaseResult("DeleteByRequest", n, err, "request_id", requestID)
	if err != nil {
		return 0, wrapErr("release request blocks", err)
	}
	return n, nil
}

func scanBlocks(rows *sql.Rows) ([]domain.BlockedDateRange, error) {
	defer rows.Close()

	var blocks []domain.BlockedDateRange
	for rows.Next() {
		var b domain.BlockedDateRange
		var requestID sql.NullString
		if err := rows.Scan(&b.ID, &b.ItemID, &b.Range.Start, &b.Range.End, &b.Reason, &requestID, &b.CreatedOn); err != nil {
			return nil, wrapErr("scan block", err)
		}
		b.RequestID = requestID.String
		blocks = append(blocks, b)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapErr("iterate blocks", err)
	}
	return blocks, nil
}

// dayWindow turns a range into the [from, until) instants that cover its
// calendar days: from is the first day's midnight, until the midnight after
// the last day.
func dayWindow(r domain.DateRange) (from, until time.Time) {
	return r.StartDay(), r.EndDay().AddDate(0, 0, 1)
}
