package loan

import (
	"context"
	"errors"
	"math/rand/v2"
	"strconv"
	"strings"
	"time"
)

var ErrIDGenerationExhausted = errors.New("could not generate unique loan ID after multiple attempts")

const (
	maxIDAttempts = 5
	idLength      = 10
	base36Chars   = "0123456789abcdefghijklmnopqrstuvwxyz"
)

// ExistsFunc probes whether a candidate loan ID is already taken.
type ExistsFunc func(ctx context.Context, loanID string) (bool, error)

// GenerateLoanID builds a short loan identifier: "L" plus the current epoch
// millis in base 36 plus 4 random base-36 characters, truncated to 10 chars.
func GenerateLoanID() string {
	var random strings.Builder
	for i := 0; i < 4; i++ {
		random.WriteByte(base36Chars[rand.IntN(len(base36Chars))])
	}

	id := "L" + strconv.FormatInt(time.Now().UnixMilli(), 36) + random.String()
	if len(id) > idLength {
		id = id[:idLength]
	}
	return id
}

// UniqueLoanID generates a loan ID and re-checks it against the loans table,
// retrying up to maxIDAttempts times before giving up.
func UniqueLoanID(ctx context.Context, exists ExistsFunc) (string, error) {
	for attempt := 0; attempt < maxIDAttempts; attempt++ {
		id := GenerateLoanID()

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
