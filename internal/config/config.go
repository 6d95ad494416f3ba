// Package config loads routinesync settings from flags, environment
// variables (ROUTINESYNC_*) and an optional config file through viper.
package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/viper"

	"github.com/enunezf/routinesync/internal/core/domain"
)

// EnvPrefix is prepended to every environment variable
const EnvPrefix = "ROUTINESYNC"

// DefaultObjectsDirName is looked up next to the executable
const DefaultObjectsDirName = "procedures_and_triggers"

// DefaultTimeout bounds a whole run
const DefaultTimeout = 10 * time.Minute

// Config holds all runtime configuration for one run.
type Config struct {
	// Connection
	ConnectionString string
	Server           string
	Port             int
	Database         string
	User             string
	Password         string
	TrustedAuth      bool
	TrustCert        bool

	// Objects
	ObjectsDir string
	Extension  string

	// Behavior
	DryRun  bool
	Yes     bool
	Verbose bool
	Timeout time.Duration
}

// SetDefaults registers the defaults on v
func SetDefaults(v *viper.Viper) {
	v.SetDefault("port", 1433)
	v.SetDefault("objects_dir", DefaultObjectsDir())
	v.SetDefault("extension", ".sql")
	v.SetDefault("timeout", DefaultTimeout)
}

// ReadFile merges the config file at path into v. The format follows the
// file extension (yaml, toml or json).
func ReadFile(v *viper.Viper, path string) error {
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return errors.Wrapf(err, "failed to read config file %s", path)
	}
	return nil
}

// Load reads configuration from v, which merges flag values, env vars,
// the config file and defaults.
func Load(v *viper.Viper) Config {
	return Config{
		ConnectionString: v.GetString("connection_string"),
		Server:           v.GetString("server"),
		Port:             v.GetInt("port"),
		Database:         v.GetString("database"),
		User:             v.GetString("user"),
		Password:         v.GetString("password"),
		TrustedAuth:      v.GetBool("trusted"),
		TrustCert:        v.GetBool("trust_cert"),
		ObjectsDir:       v.GetString("objects_dir"),
		Extension:        v.GetString("extension"),
		DryRun:           v.GetBool("dry_run"),
		Yes:              v.GetBool("yes"),
		Verbose:          v.GetBool("verbose"),
		Timeout:          v.GetDuration("timeout"),
	}
}

// Connection builds the connection settings of c
func (c Config) Connection() *domain.ConnectionConfig {
	conn := domain.NewConnectionConfig()
	conn.ConnString = c.ConnectionString
	conn.Server = c.Server
	conn.Database = c.Database
	conn.User = c.User
	conn.Password = c.Password
	conn.TrustedAuth = c.TrustedAuth
	if c.Port != 0 {
		conn.Port = c.Port
	}
	conn.TrustServer = c.TrustCert
	return conn
}

// DefaultObjectsDir returns procedures_and_triggers next to the running
// executable, or relative to the working directory if that is unknown.
func DefaultObjectsDir() string {
	exe, err := os.Executable()
	if err != nil {
		return DefaultObjectsDirName
	}
	return filepath.Join(filepath.Dir(exe), DefaultObjectsDirName)
}
