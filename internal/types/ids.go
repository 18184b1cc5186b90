package types

import (
	"time"

	"github.com/google/uuid"
)

// GenerationID identifies one recorded wrapper invocation.
// UUIDv7 time-ordering keeps ledger inserts clustered and listings sortable by ID.
type GenerationID string

// NewGenerationID generates a UUIDv7 generation identifier.
// Panics on clock regression (uuid.Must); acceptable for ID generation.
func NewGenerationID() GenerationID {
	return GenerationID(uuid.Must(uuid.NewV7()).String())
}

// ParseGenerationID validates and converts a string to GenerationID.
func ParseGenerationID(s string) (GenerationID, error) {
	u, err := uuid.Parse(s)
	if err != nil {
		return "", err
	}
	return GenerationID(u.String()), nil
}

// GenerationIDTime extracts the timestamp embedded in a UUIDv7 ID.
// Returns zero time for invalid UUIDs; caller should check IsZero().
func GenerationIDTime(id GenerationID) time.Time {
	u, err := uuid.Parse(string(id))
	if err != nil || u.Version() != 7 {
		return time.Time{}
	}
	sec, nsec := u.Time().UnixTime()
	return time.Unix(sec, nsec)
}
