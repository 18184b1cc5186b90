package auth

import "errors"

// Authentication errors all map to UNAUTHENTICATED so responses do not
// reveal which secret IDs exist.
var (
	ErrMissingKey       = errors.New("API key required in x-api-key metadata")
	ErrInvalidKeyFormat = errors.New("invalid API key format")
	ErrUnknownKey       = errors.New("unknown secret ID")
	ErrInvalidKey       = errors.New("invalid API key")
)
