package reservation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/HloniTshele/Richfield-library-BackEnd/internal/book"
	"github.com/HloniTshele/Richfield-library-BackEnd/internal/loan"
	"github.com/HloniTshele/Richfield-library-BackEnd/internal/metrics"

	"github.com/uptrace/bun"
)

var (
	ErrReservationNotFound  = errors.New("reservation not found")
	ErrInvalidInput         = errors.New("reservation_id and status are required")
	ErrInvalidStatus        = errors.New("invalid status. Must be: pending, confirmed, cancelled, or expired")
	ErrMissingReservationID = errors.New("reservation_id is required")
)

// Producer publishes domain events after a successful commit.
type Producer interface {
	SendMessage(ctx context.Context, value interface{}) error
}

type Service interface {
	UpdateStatus(ctx context.Context, reservationID, status string) error
	Delete(ctx context.Context, reservationID string) error
	ListAll(ctx context.Context) ([]Detail, error)
	ListPending(ctx context.Context) ([]Detail, error)
}

type service struct {
	db       *bun.DB
	repo     Repository
	producer Producer
	logger   *slog.Logger
	metrics  *metrics.Metrics
}

// NewService wires the reservation workflow. producer may be nil, in which
// case loan-created events are simply not published.
func NewService(db *bun.DB, producer Producer, logger *slog.Logger, m *metrics.Metrics) Service {
	return &service{
		db:       db,
		repo:     NewRepository(db, m),
		producer: producer,
		logger:   logger,
		metrics:  m,
	}
}

// UpdateStatus applies a status transition to a reservation. Confirming a
// reservation whose book is available additionally creates a loan and
// decrements the book's available copies, all inside one transaction. The
// book being absent or unavailable does not block the confirmation itself;
// the reservation is confirmed and no loan is created.
func (s *service) UpdateStatus(ctx context.Context, reservationID, status string) error {
	if reservationID == "" || status == "" {
		return ErrInvalidInput
	}
	if !ValidStatus(status) {
		return ErrInvalidStatus
	}

	var event *LoanCreatedEvent

	start := time.Now()
	err := s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		repo := NewRepository(tx, s.metrics)

		res, err := repo.GetByID(ctx, reservationID)
		if err != nil {
			return err
		}

		if err := repo.UpdateStatus(ctx, reservationID, status); err != nil {
			return fmt.Errorf("failed to update reservation status: %w", err)
		}

		if status != StatusConfirmed {
			return nil
		}

		event, err = s.fulfillConfirmation(ctx, tx, res)
		return err
	})
	s.metrics.Database.RecordTransaction(ctx, "reservation_status_update", time.Since(start), err)

	if err != nil {
		return err
	}

	s.metrics.RecordReservationStatusUpdate(ctx)
	s.logger.InfoContext(ctx, "reservation status updated", "reservation_id", reservationID, "status", status)

	if event != nil {
		s.metrics.RecordLoanCreated(ctx)
		s.logger.InfoContext(ctx, "auto-created loan for confirmed reservation",
			"loan_id", event.LoanID,
			"reservation_id", event.ReservationID,
			"due_date", event.DueDate,
		)
		s.publishLoanCreated(ctx, event)
	}

	return nil
}

// fulfillConfirmation creates the loan side effects of a confirmation when
// the reserved book is on the shelf. Returns nil when the book is missing or
// not available; the confirmation itself still stands.
func (s *service) fulfillConfirmation(ctx context.Context, tx bun.Tx, res *Reservation) (*LoanCreatedEvent, error) {
	books := book.NewRepository(tx, s.metrics)

	b, err := books.GetByID(ctx, res.BookID)
	if err != nil {
		if errors.Is(err, book.ErrBookNotFound) {
			return nil, nil
		}
		return nil, err
	}
	if b.Status != book.StatusAvailable {
		return nil, nil
	}

	loans := loan.NewRepository(tx, s.metrics)

	loanID, err := loan.UniqueLoanID(ctx, loans.ExistsByID)
	if err != nil {
		return nil, err
	}

	loanDate := time.Now()
	dueDate := loanDate.AddDate(0, 0, loan.LoanPeriodDays)

	newLoan := &loan.Loan{
		LoanID:   loanID,
		UserID:   res.UserID,
		BookID:   res.BookID,
		LoanDate: loanDate,
		DueDate:  dueDate,
		Status:   loan.StatusActive,
	}
	if err := loans.Create(ctx, newLoan); err != nil {
		return nil, fmt.Errorf("failed to create loan: %w", err)
	}

	if err := books.MarkBorrowed(ctx, res.BookID); err != nil {
		return nil, fmt.Errorf("failed to update book availability: %w", err)
	}

	return &LoanCreatedEvent{
		LoanID:        loanID,
		ReservationID: res.ReservationID,
		UserID:        res.UserID,
		BookID:        res.BookID,
		LoanDate:      loanDate,
		DueDate:       dueDate,
	}, nil
}

// publishLoanCreated is best effort; the transaction has already committed
// and a publish failure must not fail the request.
func (s *service) publishLoanCreated(ctx context.Context, event *LoanCreatedEvent) {
	if s.producer == nil {
		return
	}
	if err := s.producer.SendMessage(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "failed to publish loan-created event", "loan_id", event.LoanID, "error", err)
	}
}

func (s *service) Delete(ctx context.Context, reservationID string) error {
	if reservationID == "" {
		return ErrMissingReservationID
	}

	if err := s.repo.Delete(ctx, reservationID); err != nil {
		return err
	}

	s.metrics.RecordReservationDeleted(ctx)
	s.logger.InfoContext(ctx, "reservation deleted", "reservation_id", reservationID)
	return nil
}

func (s *service) ListAll(ctx context.Context) ([]Detail, error) {
	return s.repo.ListDetails(ctx)
}

func (s *service) ListPending(ctx context.Context) ([]Detail, error) {
	return s.repo.ListPendingDetails(ctx)
}
