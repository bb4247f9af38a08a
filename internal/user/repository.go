package user

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/HloniTshele/Richfield-library-BackEnd/internal/metrics"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/driver/pgdriver"
)

type Repository interface {
	Create(ctx context.Context, user *User) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	ExistsByID(ctx context.Context, userID string) (bool, error)
}

type repository struct {
	db      bun.IDB
	metrics *metrics.Metrics
}

func NewRepository(db bun.IDB, m *metrics.Metrics) Repository {
	return &repository{
		db:      db,
		metrics: m,
	}
}

func (r *repository) Create(ctx context.Context, user *User) (*User, error) {
	start := time.Now()
	_, err := r.db.NewInsert().Model(user).Returning("*").Exec(ctx)

	r.metrics.Database.RecordQuery(ctx, "insert", "users", time.Since(start), err)

	if err != nil {
		return nil, err
	}
	return user, nil
}

func (r *repository) GetByEmail(ctx context.Context, email string) (*User, error) {
	start := time.Now()
	user := new(User)
	err := r.db.NewSelect().
		Model(user).
		Where("email = ?", email).
		Scan(ctx)

	r.metrics.Database.RecordQuery(ctx, "select", "users", time.Since(start), err)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

func (r *repository) ExistsByID(ctx context.Context, userID string) (bool, error) {
	start := time.Now()
	exists, err := r.db.NewSelect().
		Model((*User)(nil)).
		Where("user_id = ?", userID).
		Exists(ctx)

	r.metrics.Database.RecordQuery(ctx, "select", "users", time.Since(start), err)

	return exists, err
}

// IsUniqueViolation reports whether err is a Postgres duplicate-key error,
// i.e. the unique constraint on email or user_id fired.
func IsUniqueViolation(err error) bool {
	var pgErr pgdriver.Error
	return errors.As(err, &pgErr) && pgErr.Field('C') == "23505"
}
