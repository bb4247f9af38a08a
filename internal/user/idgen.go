package user

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strconv"
	"strings"
	"time"
)

const maxIDAttempts = 5

// ExistsFunc probes whether a candidate user ID is already taken.
type ExistsFunc func(ctx context.Context, userID string) (bool, error)

// GenerateUserID produces a candidate user ID. Students get "S" plus an
// 8-digit random number; other roles get the uppercased first letter of the
// role, the last 6 digits of the current epoch millis and a 2-digit random
// suffix. Uniqueness is the caller's problem, see UniqueUserID.
func GenerateUserID(role string) string {
	if role == "" || role == RoleStudent {
		return fmt.Sprintf("S%d", 10000000+rand.IntN(90000000))
	}

	roleCode := strings.ToUpper(role[:1])
	millis := strconv.FormatInt(time.Now().UnixMilli(), 10)
	return fmt.Sprintf("%s%s%02d", roleCode, millis[len(millis)-6:], rand.IntN(100))
}

// UniqueUserID generates a user ID and re-checks it against the users table,
// retrying up to maxIDAttempts times before giving up with
// ErrIDGenerationExhausted.
func UniqueUserID(ctx context.Context, role string, exists ExistsFunc) (string, error) {
	for attempt := 0; attempt < maxIDAttempts; attempt++ {
		id := GenerateUserID(role)

		taken, err := exists(ctx, id)
		if err != nil {
			return "", err
		}
		if !taken {
			return id, nil
		}
	}

	return "", ErrIDGenerationExhausted
}
