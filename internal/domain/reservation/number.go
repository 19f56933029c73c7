package reservation

import (
	"crypto/rand"
	"fmt"
	"time"
)

// Suffix alphabet omits easily-confused characters (0/O, 1/I/L).
const numberAlphabet = "23456789ABCDEFGHJKMNPQRSTUVWXYZ"

const numberSuffixLen = 6

// GenerateNumber builds a human-readable reservation number with a
// date-derived prefix and a random suffix, e.g. TBL-20251101-X7K9Q2.
// Collisions are not pre-checked; the unique constraint on the reservations
// table is the arbiter and callers retry on a duplicate-key error.
func GenerateNumber(date time.Time) (string, error) {
	buf := make([]byte, numberSuffixLen)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate reservation number: %w", err)
	}
	for i, b := range buf {
		buf[i] = numberAlphabet[int(b)%len(numberAlphabet)]
	}
	return fmt.Sprintf("TBL-%s-%s", date.Format("20060102"), string(buf)), nil
}
