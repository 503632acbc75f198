package config

import "time"

// Default ledger endpoints.
const (
	MainnetLedgerURL = "https://icp-api.io"
	LocalLedgerURL   = "http://127.0.0.1:4943"
)

// DefaultLedgerTimeout bounds a single ledger request.
const DefaultLedgerTimeout = 10 * time.Second

// DefaultMainnet returns the default configuration for mainnet.
func DefaultMainnet() *Config {
	return &Config{
		Network: Mainnet,
		DataDir: DefaultDataDir(),
		Ledger: LedgerConfig{
			URL:     MainnetLedgerURL,
			Timeout: DefaultLedgerTimeout,
		},
		RPC: RPCConfig{
			Enabled:    true,
			Addr:       "127.0.0.1",
			Port:       7545,
			AllowedIPs: []string{"127.0.0.1"},
		},
		Log: LogConfig{
			Level: "info",
			JSON:  false,
		},
	}
}

// DefaultLocal returns the default configuration for a local replica.
func DefaultLocal() *Config {
	cfg := DefaultMainnet()
	cfg.Network = Local
	cfg.Ledger.URL = LocalLedgerURL
	cfg.RPC.Port = 7546
	return cfg
}

// Default returns the default configuration for the given network. Unknown
// networks fail with ErrInvalidNetwork rather than falling back to mainnet.
func Default(network NetworkType) (*Config, error) {
	n, err := ParseNetwork(string(network))
	if err != nil {
		return nil, err
	}
	if n == Local {
		return DefaultLocal(), nil
	}
	return DefaultMainnet(), nil
}

func defaultLedgerURL(network NetworkType) string {
	if network == Local {
		return LocalLedgerURL
	}
	return MainnetLedgerURL
}

func defaultRPCPort(network NetworkType) string {
	if network == Local {
		return "7546"
	}
	return "7545"
}
