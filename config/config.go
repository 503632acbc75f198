// Package config handles tokenview configuration.
//
// Settings are layered: per-network defaults, then the .conf file in the
// data directory, then command-line flags. The result is checked by Validate.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"
)

// NetworkType selects which ledger deployment tokenview talks to.
type NetworkType string

const (
	Mainnet NetworkType = "mainnet"
	Local   NetworkType = "local"
)

// ErrInvalidNetwork is returned for any network selector other than
// mainnet or local.
var ErrInvalidNetwork = errors.New("invalid network")

// ParseNetwork parses a network selector. Matching is case-insensitive.
func ParseNetwork(s string) (NetworkType, error) {
	switch n := NetworkType(strings.ToLower(strings.TrimSpace(s))); n {
	case Mainnet, Local:
		return n, nil
	}
	return "", fmt.Errorf("%w: %q (must be %q or %q)", ErrInvalidNetwork, s, Mainnet, Local)
}

// Config holds tokenview runtime configuration.
type Config struct {
	// Core
	Network NetworkType `conf:"network"`
	DataDir string      `conf:"datadir"`

	// Ledger endpoint
	Ledger LedgerConfig

	// Gateway RPC server
	RPC RPCConfig

	// Logging
	Log LogConfig

	// ResetTracked clears the tracked-token list of the configured ledger
	// at startup. Set by --reset-tracked only.
	ResetTracked bool
}

// LedgerConfig holds the ledger endpoint settings.
type LedgerConfig struct {
	URL     string        `conf:"ledger.url"`
	Timeout time.Duration `conf:"ledger.timeout"`
}

// RPCConfig holds RPC server settings.
type RPCConfig struct {
	Enabled     bool     `conf:"rpc.enabled"`
	Addr        string   `conf:"rpc.addr"`
	Port        int      `conf:"rpc.port"`
	AllowedIPs  []string `conf:"rpc.allowed"`
	CORSOrigins []string `conf:"rpc.cors"` // Allowed CORS origins ("*" = all).
}

// ListenAddr returns the host:port the gateway binds to.
func (r RPCConfig) ListenAddr() string {
	return fmt.Sprintf("%s:%d", r.Addr, r.Port)
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `conf:"log.level"`
	File  string `conf:"log.file"`
	JSON  bool   `conf:"log.json"`
}

// DefaultDataDir returns the platform-specific default data directory.
//
//	Linux:   ~/.tokenview
//	macOS:   ~/Library/Application Support/Tokenview
//	Windows: %APPDATA%\Tokenview
func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".tokenview"
	}
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(home, "Library", "Application Support", "Tokenview")
	case "windows":
		appData := os.Getenv("APPDATA")
		if appData != "" {
			return filepath.Join(appData, "Tokenview")
		}
		return filepath.Join(home, "AppData", "Roaming", "Tokenview")
	default:
		return filepath.Join(home, ".tokenview")
	}
}

// NetworkDataDir returns the network-specific data directory.
func (c *Config) NetworkDataDir() string {
	return filepath.Join(c.DataDir, string(c.Network))
}

// DBDir returns the tracked-token database directory.
func (c *Config) DBDir() string {
	return filepath.Join(c.NetworkDataDir(), "db")
}

// LogsDir returns the logs directory.
func (c *Config) LogsDir() string {
	return filepath.Join(c.DataDir, "logs")
}

// ConfigFile returns the config file path.
func (c *Config) ConfigFile() string {
	return filepath.Join(c.DataDir, "tokenview.conf")
}
