package reservation

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/HloniTshele/Richfield-library-BackEnd/internal/metrics"

	"github.com/uptrace/bun"
)

type Repository interface {
	GetByID(ctx context.Context, reservationID string) (*Reservation, error)
	UpdateStatus(ctx context.Context, reservationID, status string) error
	Delete(ctx context.Context, reservationID string) error
	ListDetails(ctx context.Context) ([]Detail, error)
	ListPendingDetails(ctx context.Context) ([]Detail, error)
}

type repository struct {
	db      bun.IDB
	metrics *metrics.Metrics
}

// NewRepository accepts any bun.IDB; the status-transition workflow builds a
// transaction-scoped repository from the open bun.Tx.
func NewRepository(db bun.IDB, m *metrics.Metrics) Repository {
	return &repository{
		db:      db,
		metrics: m,
	}
}

func (r *repository) GetByID(ctx context.Context, reservationID string) (*Reservation, error) {
	start := time.Now()
	res := new(Reservation)
	err := r.db.NewSelect().
		Model(res).
		Where("reservation_id = ?", reservationID).
		Scan(ctx)

	r.metrics.Database.RecordQuery(ctx, "select", "reservations", time.Since(start), err)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrReservationNotFound
		}
		return nil, err
	}
	return res, nil
}

func (r *repository) UpdateStatus(ctx context.Context, reservationID, status string) error {
	start := time.Now()
	_, err := r.db.NewUpdate().
		Model((*Reservation)(nil)).
		Set("status = ?", status).
		Where("reservation_id = ?", reservationID).
		Exec(ctx)

	r.metrics.Database.RecordQuery(ctx, "update", "reservations", time.Since(start), err)

	return err
}

func (r *repository) Delete(ctx context.Context, reservationID string) error {
	start := time.Now()
	result, err := r.db.NewDelete().
		Model((*Reservation)(nil)).
		Where("reservation_id = ?", reservationID).
		Exec(ctx)

	r.metrics.Database.RecordQuery(ctx, "delete", "reservations", time.Since(start), err)

	if err != nil {
		return err
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrReservationNotFound
	}
	return nil
}

func (r *repository) ListDetails(ctx context.Context) ([]Detail, error) {
	return r.listDetails(ctx, false)
}

func (r *repository) ListPendingDetails(ctx context.Context) ([]Detail, error) {
	return r.listDetails(ctx, true)
}

// listDetails joins reservations with their user and book projections.
// Pending listings sort oldest-first so librarians work the queue in order;
// the full listing sorts newest-first.
func (r *repository) listDetails(ctx context.Context, pendingOnly bool) ([]Detail, error) {
	start := time.Now()

	q := r.db.NewSelect().
		TableExpr("reservations AS r").
		ColumnExpr("r.reservation_id").
		ColumnExpr("r.user_id").
		ColumnExpr("u.name AS user_name").
		ColumnExpr("u.email AS user_email").
		ColumnExpr("u.role AS user_role").
		ColumnExpr("r.book_id").
		ColumnExpr("b.title AS book_title").
		ColumnExpr("b.author AS book_author").
		ColumnExpr("b.isbn AS book_isbn").
		ColumnExpr("b.category AS book_category").
		ColumnExpr("r.reservation_date").
		ColumnExpr("r.expiry_date").
		ColumnExpr("r.status").
		ColumnExpr("r.created_at").
		Join("LEFT JOIN users AS u ON r.user_id = u.user_id").
		Join("LEFT JOIN books AS b ON r.book_id = b.book_id")

	if pendingOnly {
		q = q.Where("r.status = ?", StatusPending).OrderExpr("r.reservation_date ASC")
	} else {
		q = q.OrderExpr("r.reservation_date DESC")
	}

	details := make([]Detail, 0)
	err := q.Scan(ctx, &details)

	r.metrics.Database.RecordQuery(ctx, "select", "reservations", time.Since(start), err)

	if err != nil {
		return nil, err
	}
	return details, nil
}
