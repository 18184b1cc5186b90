package auth

import (
	"context"
	"errors"
	"strings"
	"testing"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

const (
	testSecretID  = "0123456789abcdef0123456789abcdef"
	otherSecretID = "fedcba9876543210fedcba9876543210"
)

func newTestAuthenticator() *Authenticator {
	return NewAuthenticator(map[string][]byte{
		testSecretID:  []byte("testsecret1234567890abcdefghijklmnop"),
		otherSecretID: []byte("othersecret1234567890abcdefghijklmno"),
	})
}

func TestParseAPIKey(t *testing.T) {
	valid := "cr-v1-" + testSecretID + "-" + strings.Repeat("a", 32) + "-" + strings.Repeat("b", 64)

	key, err := ParseAPIKey(valid)
	if err != nil {
		t.Fatalf("ParseAPIKey() error = %v, want nil", err)
	}
	if key.SecretID != testSecretID || key.String() != valid {
		t.Errorf("ParseAPIKey() = %+v, want secret %s", key, testSecretID)
	}

	tests := []struct {
		name string
		key  string
	}{
		{"empty", ""},
		{"wrong prefix", "tk-v1-" + testSecretID + "-" + strings.Repeat("a", 32) + "-" + strings.Repeat("b", 64)},
		{"wrong version", "cr-v2-" + testSecretID + "-" + strings.Repeat("a", 32) + "-" + strings.Repeat("b", 64)},
		{"missing signature", "cr-v1-" + testSecretID + "-" + strings.Repeat("a", 32)},
		{"short secret id", "cr-v1-0123-" + strings.Repeat("a", 32) + "-" + strings.Repeat("b", 64)},
		{"short signature", "cr-v1-" + testSecretID + "-" + strings.Repeat("a", 32) + "-" + strings.Repeat("b", 63)},
		{"uppercase hex", "cr-v1-" + strings.ToUpper(testSecretID) + "-" + strings.Repeat("a", 32) + "-" + strings.Repeat("b", 64)},
		{"non-hex", "cr-v1-" + testSecretID + "-" + strings.Repeat("z", 32) + "-" + strings.Repeat("b", 64)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseAPIKey(tt.key); !errors.Is(err, ErrInvalidKeyFormat) {
				t.Errorf("ParseAPIKey() error = %v, want ErrInvalidKeyFormat", err)
			}
		})
	}
}

func TestAuthenticate(t *testing.T) {
	a := newTestAuthenticator()

	apiKey, err := a.IssueKey(testSecretID)
	if err != nil {
		t.Fatalf("IssueKey() error = %v, want nil", err)
	}

	secretID, err := a.Authenticate(apiKey)
	if err != nil {
		t.Fatalf("Authenticate() error = %v, want nil", err)
	}
	if secretID != testSecretID {
		t.Errorf("Authenticate() = %s, want %s", secretID, testSecretID)
	}

	key, err := ParseAPIKey(apiKey)
	if err != nil {
		t.Fatalf("ParseAPIKey() error = %v, want nil", err)
	}

	// Same random data claimed under another secret ID
	moved := key
	moved.SecretID = otherSecretID

	unknown := key
	unknown.SecretID = strings.Repeat("0", 32)

	forged := key
	forged.Signature = strings.Repeat("0", 64)

	tests := []struct {
		name string
		key  string
		want error
	}{
		{"forged signature", forged.String(), ErrInvalidKey},
		{"signature from another secret", moved.String(), ErrInvalidKey},
		{"unknown secret id", unknown.String(), ErrUnknownKey},
		{"malformed", "cr-v1-nope", ErrInvalidKeyFormat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := a.Authenticate(tt.key); !errors.Is(err, tt.want) {
				t.Errorf("Authenticate() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestIssueKey(t *testing.T) {
	a := newTestAuthenticator()

	first, err := a.IssueKey(testSecretID)
	if err != nil {
		t.Fatalf("IssueKey() error = %v, want nil", err)
	}
	second, err := a.IssueKey(testSecretID)
	if err != nil {
		t.Fatalf("IssueKey() error = %v, want nil", err)
	}
	if first == second {
		t.Error("IssueKey() returned the same key twice")
	}
	if !strings.HasPrefix(first, "cr-v1-"+testSecretID+"-") {
		t.Errorf("IssueKey() = %s, want cr-v1-%s prefix", first, testSecretID)
	}

	if _, err := a.IssueKey(strings.Repeat("0", 32)); !errors.Is(err, ErrUnknownKey) {
		t.Errorf("IssueKey(unknown) error = %v, want ErrUnknownKey", err)
	}
}

func TestUnaryInterceptor(t *testing.T) {
	a := newTestAuthenticator()
	interceptor := a.UnaryInterceptor()

	apiKey, err := a.IssueKey(otherSecretID)
	if err != nil {
		t.Fatalf("IssueKey() error = %v, want nil", err)
	}

	generate := &grpc.UnaryServerInfo{FullMethod: "/costrules.v1.RuleGenerator/Generate"}
	health := &grpc.UnaryServerInfo{FullMethod: "/grpc.health.v1.Health/Check"}

	incoming := func(key string) context.Context {
		return metadata.NewIncomingContext(context.Background(), metadata.Pairs(MetadataKey, key))
	}

	tests := []struct {
		name       string
		ctx        context.Context
		info       *grpc.UnaryServerInfo
		wantCode   codes.Code
		wantSecret string
	}{
		{"no metadata", context.Background(), generate, codes.Unauthenticated, ""},
		{"no key", metadata.NewIncomingContext(context.Background(), metadata.MD{}), generate, codes.Unauthenticated, ""},
		{"invalid key", incoming("cr-v1-bad"), generate, codes.Unauthenticated, ""},
		{"valid key", incoming(apiKey), generate, codes.OK, otherSecretID},
		{"health without key", context.Background(), health, codes.OK, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotSecret string
			called := false
			_, err := interceptor(tt.ctx, nil, tt.info, func(ctx context.Context, _ any) (any, error) {
				called = true
				gotSecret = SecretIDFromContext(ctx)
				return "ok", nil
			})

			if status.Code(err) != tt.wantCode {
				t.Errorf("code = %v, want %v", status.Code(err), tt.wantCode)
			}
			if called != (tt.wantCode == codes.OK) {
				t.Errorf("handler called = %v, want %v", called, tt.wantCode == codes.OK)
			}
			if gotSecret != tt.wantSecret {
				t.Errorf("SecretIDFromContext() = %q, want %q", gotSecret, tt.wantSecret)
			}
		})
	}
}

func TestWithAPIKey(t *testing.T) {
	ctx := WithAPIKey(context.Background(), "cr-v1-key")

	md, ok := metadata.FromOutgoingContext(ctx)
	if !ok {
		t.Fatal("no outgoing metadata")
	}
	if got := md.Get(MetadataKey); len(got) != 1 || got[0] != "cr-v1-key" {
		t.Errorf("metadata %s = %v, want [cr-v1-key]", MetadataKey, got)
	}
}
