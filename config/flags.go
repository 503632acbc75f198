package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"
)

// Version is the tokenview release reported by --version.
const Version = "0.1.0"

// ErrHelp is returned by ParseFlags when usage was requested.
var ErrHelp = flag.ErrHelp

// Flags holds parsed command-line flags.
type Flags struct {
	// Commands
	Help    bool
	Version bool

	// Core
	Network string
	DataDir string
	Config  string

	// Ledger
	LedgerURL     string
	LedgerTimeout time.Duration

	// RPC
	RPC        bool
	RPCAddr    string
	RPCPort    int
	RPCAllowed string
	RPCCORS    string

	// Logging
	LogLevel string
	LogFile  string
	LogJSON  bool

	// Maintenance
	ResetTracked bool

	// Remaining args
	Args []string

	// Explicitly-set bool flags (for true/false overrides).
	SetRPC     bool
	SetLogJSON bool
}

// ParseFlags parses daemon command-line flags from args (without the
// program name).
func ParseFlags(args []string) (*Flags, error) {
	f := &Flags{}
	fs := flag.NewFlagSet("tokenviewd", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	// Commands
	fs.BoolVar(&f.Help, "help", false, "Show help message")
	fs.BoolVar(&f.Help, "h", false, "Show help message (shorthand)")
	fs.BoolVar(&f.Version, "version", false, "Show version information")
	fs.BoolVar(&f.Version, "v", false, "Show version (shorthand)")

	// Core
	fs.StringVar(&f.Network, "network", "", "Network type (mainnet or local)")
	local := fs.Bool("local", false, "Use a local replica (shorthand for --network=local)")
	fs.StringVar(&f.DataDir, "datadir", "", "Data directory path")
	fs.StringVar(&f.Config, "config", "", "Config file path")
	fs.StringVar(&f.Config, "c", "", "Config file path (shorthand)")

	// Ledger
	fs.StringVar(&f.LedgerURL, "ledger-url", "", "Ledger JSON-RPC endpoint")
	fs.DurationVar(&f.LedgerTimeout, "ledger-timeout", 0, "Per-request ledger timeout")

	// RPC
	fs.BoolVar(&f.RPC, "rpc", true, "Enable the gateway RPC server")
	fs.StringVar(&f.RPCAddr, "rpc-addr", "", "RPC listen address")
	fs.IntVar(&f.RPCPort, "rpc-port", 0, "RPC listen port")
	fs.StringVar(&f.RPCAllowed, "rpc-allowed", "", "Allowed IPs for RPC")
	fs.StringVar(&f.RPCCORS, "rpc-cors", "", "Allowed CORS origins for RPC (comma-separated)")

	// Logging
	fs.StringVar(&f.LogLevel, "log-level", "", "Log level (debug, info, warn, error)")
	fs.StringVar(&f.LogFile, "log-file", "", "Log file path")
	fs.BoolVar(&f.LogJSON, "log-json", false, "Output logs as JSON")

	// Maintenance
	fs.BoolVar(&f.ResetTracked, "reset-tracked", false, "Clear tracked tokens for the configured ledger")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if *local {
		f.Network = string(Local)
	}
	f.SetRPC = isFlagSet(fs, "rpc")
	f.SetLogJSON = isFlagSet(fs, "log-json")
	f.Args = fs.Args()

	// A positional argument stops the parser; anything flag-like after it
	// was silently ignored.
	for _, arg := range f.Args {
		if strings.HasPrefix(arg, "-") {
			return nil, fmt.Errorf("flag %q was not parsed (positional argument stopped parsing)", arg)
		}
	}

	return f, nil
}

// ApplyFlags applies command-line flags to a Config struct.
func ApplyFlags(cfg *Config, f *Flags) {
	// Core
	if f.Network != "" {
		cfg.Network = NetworkType(strings.ToLower(f.Network))
	}
	if f.DataDir != "" {
		cfg.DataDir = f.DataDir
	}

	// Ledger
	if f.LedgerURL != "" {
		cfg.Ledger.URL = f.LedgerURL
	}
	if f.LedgerTimeout != 0 {
		cfg.Ledger.Timeout = f.LedgerTimeout
	}

	// RPC
	if f.SetRPC {
		cfg.RPC.Enabled = f.RPC
	}
	if f.RPCAddr != "" {
		cfg.RPC.Addr = f.RPCAddr
	}
	if f.RPCPort != 0 {
		cfg.RPC.Port = f.RPCPort
	}
	if f.RPCAllowed != "" {
		cfg.RPC.AllowedIPs = parseStringList(f.RPCAllowed)
	}
	if f.RPCCORS != "" {
		cfg.RPC.CORSOrigins = parseStringList(f.RPCCORS)
	}

	// Logging
	if f.LogLevel != "" {
		cfg.Log.Level = strings.ToLower(f.LogLevel)
	}
	if f.LogFile != "" {
		cfg.Log.File = f.LogFile
	}
	if f.SetLogJSON {
		cfg.Log.JSON = f.LogJSON
	}

	// Maintenance
	if f.ResetTracked {
		cfg.ResetTracked = true
	}
}

// isFlagSet checks if a flag was explicitly set.
func isFlagSet(fs *flag.FlagSet, name string) bool {
	found := false
	fs.Visit(func(f *flag.Flag) {
		if f.Name == name {
			found = true
		}
	})
	return found
}

// PrintUsage writes the daemon usage text to w.
func PrintUsage(w io.Writer) {
	usage := `Tokenview - token balance gateway for ICRC-1 ledgers

Usage:
  tokenviewd [options]
  tokenviewd --help

Commands:
  --help, -h      Show this help message
  --version, -v   Show version information

Core Options:
  --network       Network type: mainnet (default) or local
  --local         Shorthand for --network=local
  --datadir       Data directory (default: ~/.tokenview)
  --config, -c    Config file path (default: <datadir>/tokenview.conf)

Ledger Options:
  --ledger-url      Ledger JSON-RPC endpoint (mainnet: https://icp-api.io,
                    local: http://127.0.0.1:4943)
  --ledger-timeout  Per-request timeout, e.g. 5s (default: 10s)

RPC Options:
  --rpc           Enable the gateway RPC server (default: true)
  --rpc-addr      RPC listen address (default: 127.0.0.1)
  --rpc-port      RPC port (mainnet: 7545, local: 7546)
  --rpc-allowed   Allowed IPs for RPC (comma-separated)
  --rpc-cors      Allowed CORS origins for RPC (comma-separated)

Logging Options:
  --log-level     Log level: debug, info, warn, error (default: info)
  --log-file      Log file path (default: stdout)
  --log-json      Output logs as JSON

Maintenance:
  --reset-tracked Clear the tracked-token list of the configured ledger

Examples:
  # Serve mainnet balances
  tokenviewd

  # Against a local replica
  tokenviewd --local --ledger-url=http://127.0.0.1:4943
`
	fmt.Fprint(w, usage)
}

// Load loads configuration from os.Args. See LoadArgs.
func Load() (*Config, *Flags, error) {
	cfg, flags, err := LoadArgs(os.Args[1:])
	if errors.Is(err, ErrHelp) {
		PrintUsage(os.Stdout)
		os.Exit(0)
	}
	if err == nil && flags.Help {
		PrintUsage(os.Stdout)
		os.Exit(0)
	}
	if err == nil && flags.Version {
		fmt.Println("tokenviewd version " + Version)
		os.Exit(0)
	}
	return cfg, flags, err
}

// LoadArgs loads configuration with the following precedence:
// 1. Default values for the selected network
// 2. Auto-create data dirs + default config (idempotent)
// 3. Config file
// 4. Command-line flags
//
// The network is taken from the flags, else from the config file, else
// mainnet. An unknown network fails with ErrInvalidNetwork.
func LoadArgs(args []string) (*Config, *Flags, error) {
	flags, err := ParseFlags(args)
	if err != nil {
		return nil, nil, err
	}
	if flags.Help || flags.Version {
		return nil, flags, nil
	}

	dataDir := flags.DataDir
	if dataDir == "" {
		dataDir = DefaultDataDir()
	}
	configPath := flags.Config
	if configPath == "" {
		configPath = (&Config{DataDir: dataDir}).ConfigFile()
	}

	fileValues, err := LoadFile(configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("loading config file: %w", err)
	}

	selector := string(Mainnet)
	if v, ok := fileValues["network"]; ok {
		selector = v
	}
	if flags.Network != "" {
		selector = flags.Network
	}
	network, err := ParseNetwork(selector)
	if err != nil {
		return nil, nil, err
	}

	cfg, err := Default(network)
	if err != nil {
		return nil, nil, err
	}
	cfg.DataDir = dataDir

	if err := ApplyFileConfig(cfg, fileValues); err != nil {
		return nil, nil, fmt.Errorf("applying config file: %w", err)
	}
	ApplyFlags(cfg, flags)
	if err := Validate(cfg); err != nil {
		return nil, nil, fmt.Errorf("invalid config: %w", err)
	}

	// Auto-create data directories and default config on first start.
	if err := EnsureDataDirs(cfg); err != nil {
		return nil, nil, fmt.Errorf("ensuring data dirs: %w", err)
	}

	return cfg, flags, nil
}

// EnsureDataDirs creates the data directory structure and a default config
// file if they don't already exist. Safe to call on every startup.
func EnsureDataDirs(cfg *Config) error {
	dirs := []string{
		cfg.DataDir,
		cfg.NetworkDataDir(),
		cfg.DBDir(),
		cfg.LogsDir(),
	}

	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("creating directory %s: %w", dir, err)
		}
	}

	configPath := cfg.ConfigFile()
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		if err := WriteDefaultConfig(configPath, cfg.Network); err != nil {
			return fmt.Errorf("writing config file: %w", err)
		}
	}

	return nil
}
