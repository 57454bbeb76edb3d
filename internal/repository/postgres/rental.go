package postgres

import (
	"context"
	"database/sql"

	sq "github.com/Masterminds/squirrel"

	"rental-booking-engine/internal/domain"
	"rental-booking-engine/internal/repository"
)

var rentalRequestColumns = []string{
	"id", "item_id", "renter_id", "owner_id", "start_date", "end_date",
	"total_amount_cents", "message", "status", "created_on", "updated_on",
}

type rentalRequestRepository struct {
	db *sql.DB
}

func NewRentalRequestRepository(db *sql.DB) repository.RentalRequestRepository {
	return &rentalRequestRepository{db: db}
}

func (r *rentalRequestRepository) Create(ctx context.Context, rq *domain.RentalRequest) error {
	query := `INSERT INTO rental_requests (id, item_id, renter_id, owner_id, start_date, end_date, total_amount_cents, message, status, created_on, updated_on)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW(), NOW()) RETURNING created_on, updated_on`
	err := r.db.QueryRowContext(ctx, query,
		rq.ID, rq.ItemID, rq.RenterID, rq.OwnerID, rq.Range.Start, rq.Range.End,
		rq.TotalAmountCents, nullStringPtr(rq.Message), rq.Status,
	).Scan(&rq.CreatedOn, &rq.UpdatedOn)
	return wrapErr("create rental request", err)
}

func (r *rentalRequestRepository) GetByID(ctx context.Context, id string) (*domain.RentalRequest, error) {
	query, args, err := psql.Select(rentalRequestColumns...).
		From("rental_requests").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, wrapErr("build rental request query", err)
	}
	rq, err := scanRentalRequest(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		return nil, wrapErr("get rental request", err)
	}
	return rq, nil
}

func (r *rentalRequestRepository) Update(ctx context.Context, rq *domain.RentalRequest) error {
	query := `UPDATE rental_requests
	          SET start_date = $1, end_date = $2, total_amount_cents = $3, message = $4, status = $5, updated_on = NOW()
	          WHERE id = $6 RETURNING updated_on`
	err := r.db.QueryRowContext(ctx, query,
		rq.Range.Start, rq.Range.End, rq.TotalAmountCents, nullStringPtr(rq.Message), rq.Status, rq.ID,
	).Scan(&rq.UpdatedOn)
	return wrapErr("update rental request", err)
}

func (r *rentalRequestRepository) List(ctx context.Context, f domain.RentalRequestFilter) ([]domain.RentalRequest, error) {
	b := psql.Select(rentalRequestColumns...).From("rental_requests")
	if f.ItemID != "" {
		b = b.Where(sq.Eq{"item_id": f.ItemID})
	}
	if f.RenterID != "" {
		b = b.Where(sq.Eq{"renter_id": f.RenterID})
	}
	if f.OwnerID != "" {
		b = b.Where(sq.Eq{"owner_id": f.OwnerID})
	}
	if len(f.Statuses) > 0 {
		statuses := make([]string, len(f.Statuses))
		for i, s := range f.Statuses {
			statuses[i] = string(s)
		}
		b = b.Where(sq.Eq{"status": statuses})
	}
	if f.EndingOnOrAfter != nil {
		b = b.Where(sq.GtOrEq{"end_date": domain.DayOf(*f.EndingOnOrAfter)})
	}
	if f.EndingBefore != nil {
		b = b.Where(sq.Lt{"end_date": domain.DayOf(*f.EndingBefore)})
	}

	query, args, err := b.OrderBy("start_date ASC", "created_on ASC").ToSql()
	if err != nil {
		return nil, wrapErr("build rental request list", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, wrapErr("list rental requests", err)
	}
	defer rows.Close()

	var requests []domain.RentalRequest
	for rows.Next() {
		rq, err := scanRentalRequest(rows)
		if err != nil {
			return nil, wrapErr("scan rental request", err)
		}
		requests = append(requests, *rq)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapErr("iterate rental requests", err)
	}
	return requests, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanRentalRequest(row rowScanner) (*domain.RentalRequest, error) {
	rq := &domain.RentalRequest{}
	var message sql.NullString
	err := row.Scan(&rq.ID, &rq.ItemID, &rq.RenterID, &rq.OwnerID, &rq.Range.Start, &rq.Range.End,
		&rq.TotalAmountCents, &message, &rq.Status, &rq.CreatedOn, &rq.UpdatedOn)
	if err != nil {
		return nil, err
	}
	if message.Valid {
		msg := message.String
		rq.Message = &msg
	}
	return rq, nil
}
