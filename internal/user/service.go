package user

import (
	"context"
	"errors"
	"time"

	"golang.org/x/crypto/bcrypt"
)

var (
	ErrUserNotFound          = errors.New("user not found")
	ErrEmailExists           = errors.New("email already exists")
	ErrDuplicate             = errors.New("duplicate information")
	ErrIDGenerationExhausted = errors.New("could not generate unique user ID after multiple attempts")
)

// bcryptCost matches the salt rounds the frontend was originally registered
// against; existing hashes keep verifying at any cost.
const bcryptCost = 12

type Service interface {
	Register(ctx context.Context, req RegisterRequest) (*User, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{
		repo: repo,
	}
}

// Register creates a new library user. The email pre-check keeps the common
// case friendly; the unique constraint still backstops concurrent registrations.
func (s *service) Register(ctx context.Context, req RegisterRequest) (*User, error) {
	existing, _ := s.repo.GetByEmail(ctx, req.Email)
	if existing != nil {
		return nil, ErrEmailExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcryptCost)
	if err != nil {
		return nil, err
	}

	role := req.Role
	if role == "" {
		role = RoleStudent
	}

	userID, err := UniqueUserID(ctx, role, s.repo.ExistsByID)
	if err != nil {
		return nil, err
	}

	newUser := &User{
		UserID:           userID,
		Name:             req.Name,
		Email:            req.Email,
		Password:         string(hash),
		Phone:            req.Phone,
		Role:             role,
		Course:           req.Course,
		Department:       req.Department,
		RegistrationDate: time.Now(),
	}

	created, err := s.repo.Create(ctx, newUser)
	if err != nil {
		if IsUniqueViolation(err) {
			return nil, ErrDuplicate
		}
		return nil, err
	}

	return created, nil
}
