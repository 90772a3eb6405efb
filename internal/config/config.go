// Package config loads SQL Server connection and query-policy settings from
// environment variables and an optional config file. Credentials are never
// logged or exposed to tool responses.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Env var names. SQL_SERVER_HOST is the only required setting.
const (
	EnvServerHost        = "SQL_SERVER_HOST"
	EnvServerPort        = "SQL_SERVER_PORT"
	EnvServerDatabase    = "SQL_SERVER_DATABASE"
	EnvServerUser        = "SQL_SERVER_USER"
	EnvServerPassword    = "SQL_SERVER_PASSWORD"
	EnvEncrypt           = "SQL_ENCRYPT"
	EnvTrustServerCert   = "SQL_TRUST_SERVER_CERTIFICATE"
	EnvConnectionTimeout = "SQL_CONNECTION_TIMEOUT"
	EnvEnforceReadonly   = "SQL_ENFORCE_READONLY"
	EnvMaxQueryChars     = "SQL_MAX_QUERY_CHARS"
	EnvMaxRows           = "SQL_MAX_ROWS"
	EnvQueryTimeout      = "SQL_QUERY_TIMEOUT"
)

// DefaultConfigDir is the directory for the optional config file.
// Config file path: ~/.mssql-mcp/config.yaml
const DefaultConfigDir = ".mssql-mcp"
const ConfigFileName = "config.yaml"

// Defaults applied when neither the config file nor the environment sets a value.
const (
	DefaultDatabase          = "master"
	DefaultConnectionTimeout = 30
	DefaultMaxQueryChars     = 10000
	DefaultMaxRows           = 1000
	DefaultQueryTimeout      = 30
)

// Settings holds the loaded configuration. Immutable after Load; every
// request borrows it read-only.
type Settings struct {
	Server                 string `yaml:"sql_server"`
	Port                   string `yaml:"sql_server_port"`
	Database               string `yaml:"sql_database"`
	User                   string `yaml:"sql_user"`
	Password               string `yaml:"sql_password"`
	Encrypt                bool   `yaml:"sql_encrypt"`
	TrustServerCertificate bool   `yaml:"sql_trust_server_certificate"`
	ConnectionTimeout      int    `yaml:"sql_connection_timeout"`
	EnforceReadonly        bool   `yaml:"sql_enforce_readonly"`
	MaxQueryChars          int    `yaml:"sql_max_query_chars"`
	MaxRows                int    `yaml:"sql_max_rows"`
	QueryTimeout           int    `yaml:"sql_query_timeout"`
}

func defaults() Settings {
	return Settings{
		Database:               DefaultDatabase,
		Encrypt:                true,
		TrustServerCertificate: true,
		ConnectionTimeout:      DefaultConnectionTimeout,
		EnforceReadonly:        true,
		MaxQueryChars:          DefaultMaxQueryChars,
		MaxRows:                DefaultMaxRows,
		QueryTimeout:           DefaultQueryTimeout,
	}
}

// Load reads configuration from ~/.mssql-mcp/config.yaml (if present) and
// the environment. Env vars override file values.
func Load() (*Settings, error) {
	s := defaults()

	// 1) Optional config file (base)
	configPath, err := configFilePath()
	if err != nil {
		return nil, fmt.Errorf("config path: %w", err)
	}
	if configPath != "" {
		data, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("config file %s: %w", configPath, err)
		}
		if err := yaml.Unmarshal(data, &s); err != nil {
			return nil, fmt.Errorf("config file %s: %w", configPath, err)
		}
	}

	// 2) Env overrides
	s.applyEnv()

	if s.Server == "" {
		return nil, fmt.Errorf("%s must be set (env var or %s)", EnvServerHost, ConfigFileName)
	}
	if s.MaxRows <= 0 {
		s.MaxRows = DefaultMaxRows
	}
	if s.MaxQueryChars <= 0 {
		s.MaxQueryChars = DefaultMaxQueryChars
	}
	if s.QueryTimeout <= 0 {
		s.QueryTimeout = DefaultQueryTimeout
	}
	return &s, nil
}

func (s *Settings) applyEnv() {
	if v := os.Getenv(EnvServerHost); v != "" {
		s.Server = v
	}
	if v := os.Getenv(EnvServerPort); v != "" {
		s.Port = v
	}
	if v := os.Getenv(EnvServerDatabase); v != "" {
		s.Database = v
	}
	if v := os.Getenv(EnvServerUser); v != "" {
		s.User = v
	}
	if v := os.Getenv(EnvServerPassword); v != "" {
		s.Password = v
	}
	s.Encrypt = envBool(EnvEncrypt, s.Encrypt)
	s.TrustServerCertificate = envBool(EnvTrustServerCert, s.TrustServerCertificate)
	s.ConnectionTimeout = envInt(EnvConnectionTimeout, s.ConnectionTimeout)
	s.EnforceReadonly = envBool(EnvEnforceReadonly, s.EnforceReadonly)
	s.MaxQueryChars = envInt(EnvMaxQueryChars, s.MaxQueryChars)
	s.MaxRows = envInt(EnvMaxRows, s.MaxRows)
	s.QueryTimeout = envInt(EnvQueryTimeout, s.QueryTimeout)
}

// envBool parses a boolean env var; accepts 1/true/yes/y/on (any case).
// Unset or empty returns the fallback.
func envBool(name string, fallback bool) bool {
	v := strings.TrimSpace(os.Getenv(name))
	if v == "" {
		return fallback
	}
	switch strings.ToLower(v) {
	case "1", "true", "yes", "y", "on":
		return true
	default:
		return false
	}
}

// envInt parses an integer env var; unset, empty, or unparseable returns
// the fallback.
func envInt(name string, fallback int) int {
	v := strings.TrimSpace(os.Getenv(name))
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func configFilePath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	p := filepath.Join(home, DefaultConfigDir, ConfigFileName)
	_, err = os.Stat(p)
	if os.IsNotExist(err) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return p, nil
}
