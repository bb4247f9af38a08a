package app

import (
	"context"
	"fmt"

	"github.com/HloniTshele/Richfield-library-BackEnd/internal/book"
	"github.com/HloniTshele/Richfield-library-BackEnd/internal/loan"
	"github.com/HloniTshele/Richfield-library-BackEnd/internal/reservation"
	"github.com/HloniTshele/Richfield-library-BackEnd/internal/user"

	"github.com/uptrace/bun"
)

// runMigrations creates the library tables on startup. Each model owns its
// schema through bun struct tags; bootstrap just walks them in dependency
// order so foreign keys resolve.
func runMigrations(ctx context.Context, database *bun.DB) error {
	models := []interface{}{
		(*user.User)(nil),
		(*book.Book)(nil),
		(*reservation.Reservation)(nil),
		(*loan.Loan)(nil),
	}

	for _, model := range models {
		_, err := database.NewCreateTable().
			Model(model).
			IfNotExists().
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("failed to create table for %T: %w", model, err)
		}
	}
	return nil
}
