// Package config provides configuration management for the costrules service.
package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

// EnvPrefix prefixes every environment override, e.g. COSTRULES_SERVER_PORT.
const EnvPrefix = "COSTRULES"

// ServiceConfig holds configuration for the gRPC rule generator service and
// the commands sharing its storage.
type ServiceConfig struct {
	Host           string
	Port           int
	RequestTimeout time.Duration
	MaxMessageSize int
	DataDir        string
	DBURL          string
	HistoryLimit   int
}

// DefaultServiceConfig returns configuration with default values.
func DefaultServiceConfig() *ServiceConfig {
	return &ServiceConfig{
		Host:           "0.0.0.0",
		Port:           50061,
		RequestTimeout: 10 * time.Second,
		MaxMessageSize: 4 * 1024 * 1024,
		DataDir:        "./data",
		DBURL:          "",
		HistoryLimit:   20,
	}
}

// Address returns host:port for listening or dialing.
func (c *ServiceConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// LedgerEnabled reports whether generations are recorded in a database.
func (c *ServiceConfig) LedgerEnabled() bool {
	return c.DBURL != ""
}

// hasPassword reports whether a database URL embeds a password.
func hasPassword(dbURL string) bool {
	if !strings.Contains(dbURL, "://") {
		return false
	}
	u, err := url.Parse(dbURL)
	if err != nil || u.User == nil {
		return false
	}
	_, ok := u.User.Password()
	return ok
}
