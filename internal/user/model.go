package user

import (
	"time"

	"github.com/uptrace/bun"
)

// Roles recognised by user ID generation. Role is stored as free text;
// anything other than "student" gets the generic role-code ID format.
const RoleStudent = "student"

type User struct {
	bun.BaseModel `bun:"table:users,alias:u"`

	UserID           string    `bun:"user_id,pk" json:"user_id"`
	Name             string    `bun:"name,notnull" json:"name"`
	Email            string    `bun:"email,unique,notnull" json:"email"`
	Password         string    `bun:"password,notnull" json:"-"` // Never expose password hash in JSON
	Phone            string    `bun:"phone" json:"phone,omitempty"`
	Role             string    `bun:"role,notnull" json:"role"`
	Course           string    `bun:"course" json:"course,omitempty"`
	Department       string    `bun:"department" json:"department,omitempty"`
	RegistrationDate time.Time `bun:"registration_date,notnull" json:"registration_date"`
}

// RegisterRequest is the request body for registration
type RegisterRequest struct {
	Email      string `json:"email" validate:"required,email"`
	Name       string `json:"name" validate:"required"`
	Password   string `json:"password" validate:"required"`
	Phone      string `json:"phone"`
	Role       string `json:"role"`
	Course     string `json:"course"`
	Department string `json:"department"`
}

// RegisterResponse is the response for successful registration
type RegisterResponse struct {
	Message string `json:"message"`
	User    *User  `json:"user"`
}
