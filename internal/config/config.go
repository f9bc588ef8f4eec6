// Package config provides configuration for the editor panel service.
//
// Process settings (listen address, logging, where the host keeps its
// settings) come from environment variables with sensible defaults and are
// validated on startup to fail fast on misconfiguration. User preferences for
// the editor itself live in the host's settings store and are loaded by
// LoadExtension.
package config

import (
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"
)

// Config holds all process configuration.
// All settings can be configured via environment variables.
type Config struct {
	Server   ServerConfig
	Logging  LoggingConfig
	Settings SettingsConfig
	Security SecurityConfig
	Editor   EditorConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	// Host is the interface to bind to (default: 127.0.0.1)
	Host string `env:"SERVER_HOST" default:"127.0.0.1"`

	// Port is the port to listen on (default: 8790)
	Port int `env:"SERVER_PORT" default:"8790"`

	// ReadTimeout is the maximum duration for reading a request (default: 15s)
	ReadTimeout time.Duration `env:"SERVER_READ_TIMEOUT" default:"15s"`

	// WriteTimeout is the maximum duration for writing a response (default: 0, the host socket is long-lived)
	WriteTimeout time.Duration `env:"SERVER_WRITE_TIMEOUT" default:"0s"`

	// IdleTimeout is the keep-alive timeout (default: 60s)
	IdleTimeout time.Duration `env:"SERVER_IDLE_TIMEOUT" default:"60s"`

	// ShutdownTimeout is the maximum duration to wait for graceful shutdown (default: 10s)
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" default:"10s"`

	// RequestTimeout is the middleware timeout for API requests (default: 30s)
	RequestTimeout time.Duration `env:"SERVER_REQUEST_TIMEOUT" default:"30s"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error (default: info)
	Level string `env:"LOG_LEVEL" default:"info"`

	// Format is the log format: text or json (default: text)
	Format string `env:"LOG_FORMAT" default:"text"`
}

// SettingsConfig locates the host's settings store.
type SettingsConfig struct {
	// File is the settings file (JSON, YAML or TOML). Empty means defaults only.
	File string `env:"SETTINGS_FILE"`

	// Section is the key prefix of the editor's settings (default: csv-edit)
	Section string `env:"SETTINGS_SECTION" default:"csv-edit"`

	// Watch reloads settings when the file changes (default: true)
	Watch bool `env:"SETTINGS_WATCH" default:"true"`
}

// SecurityConfig holds settings for the host connection.
type SecurityConfig struct {
	// RequireHostToken rejects host connections without a valid X-Host-Token (default: false)
	RequireHostToken bool `env:"REQUIRE_HOST_TOKEN" default:"false"`

	// HostTokens is a comma-separated list of accepted host tokens
	HostTokens []string `env:"HOST_TOKENS"`

	// AllowedOrigins is a comma-separated list of origin patterns for the host socket
	AllowedOrigins []string `env:"HOST_ALLOWED_ORIGINS"`

	// EnableCSP enables Content-Security-Policy headers (default: true)
	EnableCSP bool `env:"SECURITY_ENABLE_CSP" default:"true"`
}

// EditorConfig holds behavior switches of the editor session.
type EditorConfig struct {
	// SeparateComments moves leading and trailing comment lines out of the
	// table into their own text blocks (default: false)
	SeparateComments bool `env:"EDITOR_SEPARATE_COMMENTS" default:"false"`

	// MaxBodySize caps request bodies carrying CSV text (default: 32MB)
	MaxBodySize int64 `env:"EDITOR_MAX_BODY_SIZE" default:"33554432"`
}

// Addr returns the server listen address in host:port format.
func (c *ServerConfig) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// String returns a safe string representation of the config for logging.
// Host tokens are masked.
func (c *Config) String() string {
	var b strings.Builder
	b.WriteString("Config{")
	b.WriteString(fmt.Sprintf("Server: {Host: %q, Port: %d}, ", c.Server.Host, c.Server.Port))
	b.WriteString(fmt.Sprintf("Settings: {File: %q, Section: %q, Watch: %v}, ",
		c.Settings.File, c.Settings.Section, c.Settings.Watch))
	b.WriteString(fmt.Sprintf("Security: {RequireHostToken: %v, HostTokens: [MASKED x%d]}, ",
		c.Security.RequireHostToken, len(c.Security.HostTokens)))
	b.WriteString(fmt.Sprintf("Editor: {SeparateComments: %v, MaxBodySize: %d}, ",
		c.Editor.SeparateComments, c.Editor.MaxBodySize))
	b.WriteString(fmt.Sprintf("Logging: {Level: %q, Format: %q}",
		c.Logging.Level, c.Logging.Format))
	b.WriteString("}")
	return b.String()
}
