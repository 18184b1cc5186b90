package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
)

const keyPrefix = "cr-v1"

// APIKey is a parsed API key.
// Format: cr-v1-<secret_id>-<random_data>-<signature>, where signature is
// the hex HMAC-SHA256 of "cr-v1-<secret_id>-<random_data>" under the secret.
type APIKey struct {
	SecretID   string // 32 hex chars
	RandomData string // 32 hex chars
	Signature  string // 64 hex chars
}

// ParseAPIKey splits key into its parts and checks lengths and charset.
func ParseAPIKey(key string) (APIKey, error) {
	parts := strings.Split(key, "-")
	if len(parts) != 5 || parts[0]+"-"+parts[1] != keyPrefix {
		return APIKey{}, ErrInvalidKeyFormat
	}

	k := APIKey{SecretID: parts[2], RandomData: parts[3], Signature: parts[4]}
	if len(k.SecretID) != 32 || len(k.RandomData) != 32 || len(k.Signature) != 64 {
		return APIKey{}, ErrInvalidKeyFormat
	}
	if !isLowerHex(k.SecretID + k.RandomData + k.Signature) {
		return APIKey{}, ErrInvalidKeyFormat
	}
	return k, nil
}

// SignedPayload is the part of the key covered by the signature.
func (k APIKey) SignedPayload() string {
	return fmt.Sprintf("%s-%s-%s", keyPrefix, k.SecretID, k.RandomData)
}

// String formats the key.
func (k APIKey) String() string {
	return k.SignedPayload() + "-" + k.Signature
}

// ComputeHMAC computes HMAC-SHA256 signature of payload using secret.
func ComputeHMAC(secret []byte, payload string) []byte {
	h := hmac.New(sha256.New, secret)
	h.Write([]byte(payload))
	return h.Sum(nil)
}

// VerifyHMAC compares signatures in constant time.
func VerifyHMAC(expectedHash, computedHash []byte) bool {
	return hmac.Equal(expectedHash, computedHash)
}

// sign returns k with its signature set.
func sign(secret []byte, k APIKey) APIKey {
	k.Signature = hex.EncodeToString(ComputeHMAC(secret, k.SignedPayload()))
	return k
}

func isLowerHex(s string) bool {
	for _, c := range s {
		if !((c >= '0' && c <= '9') || (c >= 'a' && c <= 'f')) {
			return false
		}
	}
	return true
}
