package book

import "github.com/uptrace/bun"

const (
	StatusAvailable = "available"
	StatusBorrowed  = "borrowed"
)

type Book struct {
	bun.BaseModel `bun:"table:books,alias:b"`

	BookID          string `bun:"book_id,pk" json:"book_id"`
	Title           string `bun:"title,notnull" json:"title"`
	Author          string `bun:"author" json:"author"`
	ISBN            string `bun:"isbn" json:"isbn"`
	Category        string `bun:"category" json:"category"`
	Status          string `bun:"status,notnull" json:"status"`
	AvailableCopies int    `bun:"available_copies,notnull" json:"available_copies"`
}
