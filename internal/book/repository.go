package book

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/HloniTshele/Richfield-library-BackEnd/internal/metrics"

	"github.com/uptrace/bun"
)

var ErrBookNotFound = errors.New("book not found")

type Repository interface {
	GetByID(ctx context.Context, bookID string) (*Book, error)
	MarkBorrowed(ctx context.Context, bookID string) error
}

type repository struct {
	db      bun.IDB
	metrics *metrics.Metrics
}

// NewRepository accepts any bun.IDB so callers can run book queries both on
// the pool and inside an open transaction.
func NewRepository(db bun.IDB, m *metrics.Metrics) Repository {
	return &repository{
		db:      db,
		metrics: m,
	}
}

func (r *repository) GetByID(ctx context.Context, bookID string) (*Book, error) {
	start := time.Now()
	b := new(Book)
	err := r.db.NewSelect().
		Model(b).
		Where("book_id = ?", bookID).
		Scan(ctx)

	r.metrics.Database.RecordQuery(ctx, "select", "books", time.Since(start), err)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrBookNotFound
		}
		return nil, err
	}
	return b, nil
}

// MarkBorrowed flips the book to borrowed and decrements available_copies,
// clamped at zero in the database so the count never goes negative.
func (r *repository) MarkBorrowed(ctx context.Context, bookID string) error {
	start := time.Now()
	_, err := r.db.NewUpdate().
		Model((*Book)(nil)).
		Set("status = ?", StatusBorrowed).
		Set("available_copies = GREATEST(available_copies - 1, 0)").
		Where("book_id = ?", bookID).
		Exec(ctx)

	r.metrics.Database.RecordQuery(ctx, "update", "books", time.Since(start), err)

	return err
}
