package config

import (
	"strings"
	"testing"
)

const (
	testSecret      = "0123456789abcdef0123456789abcdef:dGVzdHNlY3JldDEyMzQ1Njc4OTBhYmNkZWZnaGlqa2xtbm9w"
	testOtherSecret = "fedcba9876543210fedcba9876543210:YW5vdGhlcnNlY3JldDEyMzQ1Njc4OTBhYmNkZWZnaGlqa2xtbm9w"
)

// clearSecrets unsets the signing secret variables for the test.
func clearSecrets(t *testing.T) {
	t.Helper()
	for _, name := range []string{HMACSecretEnv, HMACSecretEnv + "_1", HMACSecretEnv + "_2"} {
		t.Setenv(name, "")
	}
}

func TestHMACSecrets(t *testing.T) {
	t.Run("none set", func(t *testing.T) {
		clearSecrets(t)

		secrets, err := HMACSecrets()
		if err != nil {
			t.Fatalf("HMACSecrets failed: %v", err)
		}
		if len(secrets) != 0 {
			t.Errorf("expected no secrets, got %d", len(secrets))
		}
	})

	t.Run("single secret", func(t *testing.T) {
		clearSecrets(t)
		t.Setenv(HMACSecretEnv, testSecret)

		secrets, err := HMACSecrets()
		if err != nil {
			t.Fatalf("HMACSecrets failed: %v", err)
		}
		if _, ok := secrets["0123456789abcdef0123456789abcdef"]; !ok || len(secrets) != 1 {
			t.Errorf("expected one secret for 0123..., got %v", secrets)
		}
	})

	t.Run("numbered secrets", func(t *testing.T) {
		clearSecrets(t)
		t.Setenv(HMACSecretEnv+"_1", testSecret)
		t.Setenv(HMACSecretEnv+"_2", testOtherSecret)

		secrets, err := HMACSecrets()
		if err != nil {
			t.Fatalf("HMACSecrets failed: %v", err)
		}
		if len(secrets) != 2 {
			t.Errorf("expected 2 secrets, got %d", len(secrets))
		}
	})

	tests := []struct {
		name    string
		env     map[string]string
		wantErr string
	}{
		{
			name:    "invalid format",
			env:     map[string]string{HMACSecretEnv: "invalid_format"},
			wantErr: "format must be",
		},
		{
			name:    "short secret_id",
			env:     map[string]string{HMACSecretEnv: "short:dGVzdHNlY3JldDEyMzQ1Njc4OTBhYmNkZWZnaGlqa2xtbm9w"},
			wantErr: "32 hex chars",
		},
		{
			name:    "non-hex secret_id",
			env:     map[string]string{HMACSecretEnv: "0123456789abcdefGHIJKLMNOPQRSTUV:dGVzdHNlY3JldDEyMzQ1Njc4OTBhYmNkZWZnaGlqa2xtbm9w"},
			wantErr: "hex chars only",
		},
		{
			name:    "secret too short",
			env:     map[string]string{HMACSecretEnv: "0123456789abcdef0123456789abcdef:c2hvcnQ="},
			wantErr: "at least 32 bytes",
		},
		{
			name:    "invalid base64",
			env:     map[string]string{HMACSecretEnv + "_1": "0123456789abcdef0123456789abcdef:not-base64!!"},
			wantErr: HMACSecretEnv + "_1",
		},
		{
			name:    "duplicate between single and numbered",
			env:     map[string]string{HMACSecretEnv: testSecret, HMACSecretEnv + "_1": testSecret},
			wantErr: "duplicate secret_id",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearSecrets(t)
			for name, val := range tt.env {
				t.Setenv(name, val)
			}

			_, err := HMACSecrets()
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("HMACSecrets() error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestLoadConfig_RejectsHMACSecretInFile(t *testing.T) {
	for _, content := range []string{
		"hmac_secret: \"should_be_rejected\"\n",
		"auth:\n  hmac_secret: \"should_be_rejected\"\n",
	} {
		_, err := LoadConfig(writeConfig(t, content))
		if err == nil || !strings.Contains(err.Error(), HMACSecretEnv) {
			t.Errorf("LoadConfig(%q) error = %v, want rejection naming %s", content, err, HMACSecretEnv)
		}
	}
}
