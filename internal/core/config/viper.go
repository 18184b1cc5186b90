package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// LoadConfig loads configuration from file using viper.
// CLI flags > environment > config file > defaults precedence; callers apply
// flags to the returned config.
func LoadConfig(configPath string) (*ServiceConfig, error) {
	v := viper.New()

	def := DefaultServiceConfig()
	v.SetDefault("server.host", def.Host)
	v.SetDefault("server.port", def.Port)
	v.SetDefault("server.request_timeout", def.RequestTimeout.String())
	v.SetDefault("server.max_message_size", def.MaxMessageSize)
	v.SetDefault("server.data_dir", def.DataDir)
	v.SetDefault("storage.db_url", def.DBURL)
	v.SetDefault("history.limit", def.HistoryLimit)

	// Load config file if provided
	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// Checked before env binding so only file contents are inspected.
	if err := validateNoSecretsInConfig(v); err != nil {
		return nil, err
	}

	// Bind environment variables with COSTRULES_ prefix
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &ServiceConfig{
		Host:           v.GetString("server.host"),
		Port:           v.GetInt("server.port"),
		RequestTimeout: v.GetDuration("server.request_timeout"),
		MaxMessageSize: v.GetInt("server.max_message_size"),
		DataDir:        v.GetString("server.data_dir"),
		DBURL:          v.GetString("storage.db_url"),
		HistoryLimit:   v.GetInt("history.limit"),
	}

	if err := Validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks port range and positive values for timeout, message size
// and history limit.
func Validate(cfg *ServiceConfig) error {
	if cfg.Port <= 0 || cfg.Port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535, got %d", cfg.Port)
	}
	if cfg.RequestTimeout <= 0 {
		return fmt.Errorf("request_timeout must be positive, got %v", cfg.RequestTimeout)
	}
	if cfg.MaxMessageSize <= 0 {
		return fmt.Errorf("max_message_size must be positive, got %d", cfg.MaxMessageSize)
	}
	if cfg.HistoryLimit <= 0 {
		return fmt.Errorf("history limit must be positive, got %d", cfg.HistoryLimit)
	}
	if cfg.DataDir == "" {
		return fmt.Errorf("data_dir must not be empty")
	}
	return nil
}

// validateNoSecretsInConfig enforces environment-only database credentials
// and signing secrets.
func validateNoSecretsInConfig(v *viper.Viper) error {
	if v.IsSet("hmac_secret") || v.IsSet("auth.hmac_secret") {
		return fmt.Errorf("HMAC secrets not allowed in config files (use %s environment variable)", HMACSecretEnv)
	}
	if hasPassword(v.GetString("storage.db_url")) {
		return fmt.Errorf("database passwords not allowed in config files (use %s_STORAGE_DB_URL environment variable)", EnvPrefix)
	}
	return nil
}
