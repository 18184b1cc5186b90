// Package auth provides optional HMAC-signed API key authentication for the
// gRPC service. Keys are self-contained: the server verifies them against
// secrets from the environment without a key table.
package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

// MetadataKey carries the API key in request metadata.
const MetadataKey = "x-api-key"

// healthPrefix covers the standard health service, which stays open for probes.
const healthPrefix = "/grpc.health.v1.Health/"

type contextKey string

const secretIDKey = contextKey("secret_id")

// Authenticator validates API keys against HMAC secrets keyed by secret ID.
type Authenticator struct {
	secrets map[string][]byte
}

// NewAuthenticator creates an authenticator for the given secrets.
func NewAuthenticator(secrets map[string][]byte) *Authenticator {
	return &Authenticator{secrets: secrets}
}

// Authenticate validates apiKey and returns the secret ID that signed it.
func (a *Authenticator) Authenticate(apiKey string) (string, error) {
	key, err := ParseAPIKey(apiKey)
	if err != nil {
		return "", err
	}

	secret, ok := a.secrets[key.SecretID]
	if !ok {
		return "", ErrUnknownKey
	}

	signature, err := hex.DecodeString(key.Signature)
	if err != nil {
		return "", ErrInvalidKeyFormat
	}
	if !VerifyHMAC(signature, ComputeHMAC(secret, key.SignedPayload())) {
		return "", ErrInvalidKey
	}

	return key.SecretID, nil
}

// IssueKey creates a new API key signed with the secret secretID.
func (a *Authenticator) IssueKey(secretID string) (string, error) {
	secret, ok := a.secrets[secretID]
	if !ok {
		return "", ErrUnknownKey
	}

	random := make([]byte, 16)
	if _, err := rand.Read(random); err != nil {
		return "", fmt.Errorf("failed to generate key: %w", err)
	}

	key := sign(secret, APIKey{SecretID: secretID, RandomData: hex.EncodeToString(random)})
	return key.String(), nil
}

// UnaryInterceptor returns gRPC interceptor that authenticates requests.
// Health checks are not authenticated.
func (a *Authenticator) UnaryInterceptor() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		if strings.HasPrefix(info.FullMethod, healthPrefix) {
			return handler(ctx, req)
		}

		md, ok := metadata.FromIncomingContext(ctx)
		if !ok {
			return nil, status.Error(codes.Unauthenticated, "missing metadata")
		}

		apiKeys := md.Get(MetadataKey)
		if len(apiKeys) == 0 {
			return nil, status.Error(codes.Unauthenticated, ErrMissingKey.Error())
		}

		secretID, err := a.Authenticate(apiKeys[0])
		if err != nil {
			return nil, status.Error(codes.Unauthenticated, err.Error())
		}

		return handler(context.WithValue(ctx, secretIDKey, secretID), req)
	}
}

// SecretIDFromContext returns the secret ID of the authenticated key, or ""
// when authentication is disabled.
func SecretIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(secretIDKey).(string); ok {
		return id
	}
	return ""
}

// WithAPIKey attaches apiKey to outgoing request metadata.
func WithAPIKey(ctx context.Context, apiKey string) context.Context {
	return metadata.AppendToOutgoingContext(ctx, MetadataKey, apiKey)
}
