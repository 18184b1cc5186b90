package config

import (
	"encoding/base64"
	"fmt"
	"os"
	"strings"
)

// HMACSecretEnv holds the API key signing secret as <secret_id>:<base64_secret>.
// Numbered variants (COSTRULES_HMAC_SECRET_1, _2, ...) allow rotation.
const HMACSecretEnv = EnvPrefix + "_HMAC_SECRET"

// HMACSecrets extracts API key signing secrets from environment variables.
// Returns map of secret_id -> decoded secret bytes; empty when none are set,
// which disables authentication.
func HMACSecrets() (map[string][]byte, error) {
	secrets := make(map[string][]byte)

	add := func(name, val string) error {
		secretID, decoded, err := ParseHMACSecretWithID(val)
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		if _, exists := secrets[secretID]; exists {
			return fmt.Errorf("duplicate secret_id '%s' found in environment variables (check %s and %s_* for conflicts)", secretID, HMACSecretEnv, HMACSecretEnv)
		}
		secrets[secretID] = decoded
		return nil
	}

	if val := os.Getenv(HMACSecretEnv); val != "" {
		if err := add(HMACSecretEnv, val); err != nil {
			return nil, err
		}
	}

	for i := 1; ; i++ {
		name := fmt.Sprintf("%s_%d", HMACSecretEnv, i)
		val := os.Getenv(name)
		if val == "" {
			break
		}
		if err := add(name, val); err != nil {
			return nil, err
		}
	}

	return secrets, nil
}

// ParseHMACSecretWithID parses secret_id:base64_secret format.
// Secret ID must be 32 hex chars (UUIDv7 without hyphens).
func ParseHMACSecretWithID(envValue string) (secretID string, secret []byte, err error) {
	parts := strings.SplitN(strings.TrimSpace(envValue), ":", 2)
	if len(parts) != 2 {
		return "", nil, fmt.Errorf("format must be <secret_id>:<base64_secret>")
	}

	secretID = parts[0]
	if len(secretID) != 32 {
		return "", nil, fmt.Errorf("secret_id must be 32 hex chars (UUIDv7 without hyphens)")
	}
	for _, c := range secretID {
		if !((c >= '0' && c <= '9') || (c >= 'a' && c <= 'f')) {
			return "", nil, fmt.Errorf("secret_id must be hex chars only")
		}
	}

	secret, err = base64.StdEncoding.DecodeString(parts[1])
	if err != nil {
		return "", nil, fmt.Errorf("invalid base64 encoding: %w", err)
	}
	if len(secret) < 32 {
		return "", nil, fmt.Errorf("secret must be at least 32 bytes, got %d", len(secret))
	}

	return secretID, secret, nil
}
