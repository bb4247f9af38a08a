package loan

import (
	"time"

	"github.com/uptrace/bun"
)

const StatusActive = "active"

// LoanPeriodDays is the fixed borrowing window granted on confirmation.
const LoanPeriodDays = 3

type Loan struct {
	bun.BaseModel `bun:"table:loans,alias:l"`

	LoanID   string    `bun:"loan_id,pk" json:"loan_id"`
	UserID   string    `bun:"user_id,notnull" json:"user_id"`
	BookID   string    `bun:"book_id,notnull" json:"book_id"`
	LoanDate time.Time `bun:"loan_date,notnull" json:"loan_date"`
	DueDate  time.Time `bun:"due_date,notnull" json:"due_date"`
	Status   string    `bun:"status,notnull" json:"status"`
}
