package reservation

import (
	"time"

	"github.com/uptrace/bun"
)

const (
	StatusPending   = "pending"
	StatusConfirmed = "confirmed"
	StatusCancelled = "cancelled"
	StatusExpired   = "expired"
)

// ValidStatus reports whether s is one of the four reservation statuses.
// Any status may transition to any other; only the value itself is checked.
func ValidStatus(s string) bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCancelled, StatusExpired:
		return true
	}
	return false
}

type Reservation struct {
	bun.BaseModel `bun:"table:reservations,alias:r"`

	ReservationID   string    `bun:"reservation_id,pk" json:"reservation_id"`
	UserID          string    `bun:"user_id,notnull" json:"user_id"`
	BookID          string    `bun:"book_id,notnull" json:"book_id"`
	ReservationDate time.Time `bun:"reservation_date,notnull" json:"reservation_date"`
	ExpiryDate      time.Time `bun:"expiry_date" json:"expiry_date"`
	Status          string    `bun:"status,notnull" json:"status"`
	CreatedAt       time.Time `bun:"created_at,notnull,default:current_timestamp" json:"created_at"`
}

// Detail is the flat reservation projection joined with its user and book.
type Detail struct {
	ReservationID   string    `bun:"reservation_id" json:"reservation_id"`
	UserID          string    `bun:"user_id" json:"user_id"`
	UserName        string    `bun:"user_name" json:"user_name"`
	UserEmail       string    `bun:"user_email" json:"user_email"`
	UserRole        string    `bun:"user_role" json:"user_role"`
	BookID          string    `bun:"book_id" json:"book_id"`
	BookTitle       string    `bun:"book_title" json:"book_title"`
	BookAuthor      string    `bun:"book_author" json:"book_author"`
	BookISBN        string    `bun:"book_isbn" json:"book_isbn"`
	BookCategory    string    `bun:"book_category" json:"book_category"`
	ReservationDate time.Time `bun:"reservation_date" json:"reservation_date"`
	ExpiryDate      time.Time `bun:"expiry_date" json:"expiry_date"`
	Status          string    `bun:"status" json:"status"`
	CreatedAt       time.Time `bun:"created_at" json:"created_at"`
}

// UpdateStatusRequest is the request body for a status transition
type UpdateStatusRequest struct {
	ReservationID string `json:"reservation_id" validate:"required"`
	Status        string `json:"status" validate:"required,oneof=pending confirmed cancelled expired"`
}

// DeleteRequest is the request body for reservation deletion
type DeleteRequest struct {
	ReservationID string `json:"reservation_id" validate:"required"`
}

// ListResponse is the envelope for reservation listings
type ListResponse struct {
	Success      bool     `json:"success"`
	Count        int      `json:"count"`
	Reservations []Detail `json:"reservations"`
}

// StatusResponse acknowledges a successful transition or deletion
type StatusResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// LoanCreatedEvent is published after a confirmation commits with a new loan.
type LoanCreatedEvent struct {
	LoanID        string    `json:"loan_id"`
	ReservationID string    `json:"reservation_id"`
	UserID        string    `json:"user_id"`
	BookID        string    `json:"book_id"`
	LoanDate      time.Time `json:"loan_date"`
	DueDate       time.Time `json:"due_date"`
}
