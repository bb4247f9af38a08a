package user_test

import (
	"context"
	"regexp"
	"testing"

	"github.com/HloniTshele/Richfield-library-BackEnd/internal/user"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type fakeRepo struct {
	byEmail map[string]*user.User
	takenID string
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{byEmail: make(map[string]*user.User)}
}

func (f *fakeRepo) Create(ctx context.Context, u *user.User) (*user.User, error) {
	f.byEmail[u.Email] = u
	return u, nil
}

func (f *fakeRepo) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	u, ok := f.byEmail[email]
	if !ok {
		return nil, user.ErrUserNotFound
	}
	return u, nil
}

func (f *fakeRepo) ExistsByID(ctx context.Context, userID string) (bool, error) {
	if f.takenID == "*" {
		return true, nil
	}
	return userID == f.takenID, nil
}

func TestRegister_Success(t *testing.T) {
	repo := newFakeRepo()
	svc := user.NewService(repo)

	created, err := svc.Register(context.Background(), user.RegisterRequest{
		Email:    "thabo@example.com",
		Name:     "Thabo M",
		Password: "secret123",
		Course:   "BSc IT",
	})
	require.NoError(t, err)

	assert.Regexp(t, regexp.MustCompile(`^S\d{8}$`), created.UserID)
	assert.Equal(t, "student", created.Role)
	assert.False(t, created.RegistrationDate.IsZero())

	// Stored password is a bcrypt hash of the submitted password
	assert.NotEqual(t, "secret123", created.Password)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(created.Password), []byte("secret123")))
}

func TestRegister_KeepsProvidedRole(t *testing.T) {
	repo := newFakeRepo()
	svc := user.NewService(repo)

	created, err := svc.Register(context.Background(), user.RegisterRequest{
		Email:    "lecturer@example.com",
		Name:     "Dr N",
		Password: "secret123",
		Role:     "lecturer",
	})
	require.NoError(t, err)
	assert.Equal(t, "lecturer", created.Role)
	assert.Regexp(t, regexp.MustCompile(`^L\d{8}$`), created.UserID)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	repo := newFakeRepo()
	repo.byEmail["taken@example.com"] = &user.User{UserID: "S12345678", Email: "taken@example.com"}
	svc := user.NewService(repo)

	_, err := svc.Register(context.Background(), user.RegisterRequest{
		Email:    "taken@example.com",
		Name:     "Someone",
		Password: "secret123",
	})
	require.ErrorIs(t, err, user.ErrEmailExists)
	assert.Len(t, repo.byEmail, 1, "no insert should be attempted")
}

func TestRegister_IDGenerationExhausted(t *testing.T) {
	repo := newFakeRepo()
	repo.takenID = "*" // every candidate collides
	svc := user.NewService(repo)

	_, err := svc.Register(context.Background(), user.RegisterRequest{
		Email:    "new@example.com",
		Name:     "Someone",
		Password: "secret123",
	})
	require.ErrorIs(t, err, user.ErrIDGenerationExhausted)
}
