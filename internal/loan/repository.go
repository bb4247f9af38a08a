package loan

import (
	"context"
	"time"

	"github.com/HloniTshele/Richfield-library-BackEnd/internal/metrics"

	"github.com/uptrace/bun"
)

type Repository interface {
	Create(ctx context.Context, loan *Loan) error
	ExistsByID(ctx context.Context, loanID string) (bool, error)
}

type repository struct {
	db      bun.IDB
	metrics *metrics.Metrics
}

// NewRepository accepts any bun.IDB so loans can be inserted inside the
// reservation-confirmation transaction.
func NewRepository(db bun.IDB, m *metrics.Metrics) Repository {
	return &repository{
		db:      db,
		metrics: m,
	}
}

func (r *repository) Create(ctx context.Context, loan *Loan) error {
	start := time.Now()
	_, err := r.db.NewInsert().Model(loan).Exec(ctx)

	r.metrics.Database.RecordQuery(ctx, "insert", "loans", time.Since(start), err)

	return err
}

func (r *repository) ExistsByID(ctx context.Context, loanID string) (bool, error) {
	start := time.Now()
	exists, err := r.db.NewSelect().
		Model((*Loan)(nil)).
		Where("loan_id = ?", loanID).
		Exists(ctx)

	r.metrics.Database.RecordQuery(ctx, "select", "loans", time.Since(start), err)

	return exists, err
}
