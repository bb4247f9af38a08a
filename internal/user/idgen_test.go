package user_test

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/HloniTshele/Richfield-library-BackEnd/internal/user"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateUserID_Student(t *testing.T) {
	pattern := regexp.MustCompile(`^S\d{8}$`)

	for i := 0; i < 100; i++ {
		id := user.GenerateUserID("student")
		assert.Regexp(t, pattern, id)
	}
}

func TestGenerateUserID_EmptyRoleDefaultsToStudent(t *testing.T) {
	assert.Regexp(t, regexp.MustCompile(`^S\d{8}$`), user.GenerateUserID(""))
}

func TestGenerateUserID_OtherRole(t *testing.T) {
	// role code + last 6 digits of epoch millis + 2-digit random suffix
	pattern := regexp.MustCompile(`^L\d{8}$`)

	for i := 0; i < 100; i++ {
		id := user.GenerateUserID("librarian")
		assert.Regexp(t, pattern, id)
	}

	assert.Regexp(t, regexp.MustCompile(`^A\d{8}$`), user.GenerateUserID("admin"))
}

func TestUniqueUserID_FirstAttemptFree(t *testing.T) {
	probes := 0
	exists := func(ctx context.Context, id string) (bool, error) {
		probes++
		return false, nil
	}

	id, err := user.UniqueUserID(context.Background(), "student", exists)
	require.NoError(t, err)
	assert.NotEmpty(t, id)
	assert.Equal(t, 1, probes)
}

func TestUniqueUserID_ExhaustsRetryBudget(t *testing.T) {
	probes := 0
	exists := func(ctx context.Context, id string) (bool, error) {
		probes++
		return true, nil
	}

	_, err := user.UniqueUserID(context.Background(), "student", exists)
	require.ErrorIs(t, err, user.ErrIDGenerationExhausted)
	assert.Equal(t, 5, probes)
}

func TestUniqueUserID_ProbeError(t *testing.T) {
	probeErr := errors.New("connection refused")
	exists := func(ctx context.Context, id string) (bool, error) {
		return false, probeErr
	}

	_, err := user.UniqueUserID(context.Background(), "student", exists)
	require.ErrorIs(t, err, probeErr)
}
