package types

import "time"

// Status is the outcome reported by the invocation wrapper.
type Status string

const (
	StatusSuccess Status = "success"
	StatusFailed  Status = "failed"
)

// Generation records one wrapper invocation in the ledger.
// Fragment is set on success, ErrorMessage on failure; never both.
type Generation struct {
	ID             GenerationID
	RequestID      string
	Status         Status
	RuleCount      int
	Fragment       string
	ErrorMessage   string
	ConfigChecksum string // hex SHA-256 of the compact fragment JSON
	CreatedAt      time.Time
}
