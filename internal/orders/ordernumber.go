package orders

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"
)

// NewOrderNumber builds a human-readable order number: TS-<yyyymmdd>-<6 hex>.
// Uniqueness is enforced by the database; the random suffix keeps collisions
// within a day vanishingly rare.
func NewOrderNumber(now time.Time) string {
	suffix := make([]byte, 3)
	_, _ = rand.Read(suffix)
	return fmt.Sprintf("TS-%s-%s", now.UTC().Format("20060102"), hex.EncodeToString(suffix))
}
