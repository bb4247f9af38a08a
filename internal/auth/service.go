package auth

import (
	"context"
	"errors"

	"github.com/HloniTshele/Richfield-library-BackEnd/internal/user"

	"golang.org/x/crypto/bcrypt"
)

var ErrInvalidCredentials = errors.New("invalid email or password")

type Service struct {
	userRepo user.Repository
}

func NewService(userRepo user.Repository) *Service {
	return &Service{
		userRepo: userRepo,
	}
}

// Signin authenticates a user and returns the user together with an access token
func (s *Service) Signin(ctx context.Context, req SigninRequest) (*user.User, string, error) {
	u, err := s.userRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		return nil, "", ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(req.Password)); err != nil {
		return nil, "", ErrInvalidCredentials
	}

	token, err := GenerateAccessToken(u.UserID, u.Email, u.Role)
	if err != nil {
		return nil, "", err
	}

	return u, token, nil
}
