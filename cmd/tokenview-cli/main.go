// tokenview-cli is a command-line client for account derivations and for
// querying a tokenviewd gateway.
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/Klingon-tech/tokenview/config"
	"github.com/Klingon-tech/tokenview/internal/rpcclient"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	rpcURL := ""
	network := string(config.Mainnet)

	// Scan for --rpc and --network before the subcommand.
	args := os.Args[1:]
	for len(args) > 0 {
		switch {
		case args[0] == "--rpc" && len(args) > 1:
			rpcURL = args[1]
			args = args[2:]
		case strings.HasPrefix(args[0], "--rpc="):
			rpcURL = args[0][len("--rpc="):]
			args = args[1:]
		case args[0] == "--network" && len(args) > 1:
			network = args[1]
			args = args[2:]
		case strings.HasPrefix(args[0], "--network="):
			network = args[0][len("--network="):]
			args = args[1:]
		default:
			goto dispatch
		}
	}

dispatch:
	if len(args) == 0 {
		usage()
		os.Exit(1)
	}

	if rpcURL == "" {
		u, err := defaultRPCURL(network)
		if err != nil {
			fatal("%v", err)
		}
		rpcURL = u
	}

	cmd := args[0]
	cmdArgs := args[1:]

	switch cmd {
	// Local.
	case "account-id":
		cmdAccountID(cmdArgs)
	case "account":
		cmdAccount(cmdArgs)
	case "principal":
		cmdPrincipal(cmdArgs)
	case "amount":
		cmdAmount(cmdArgs)
	// Gateway.
	case "status":
		cmdStatus(rpcclient.New(rpcURL))
	case "balance":
		cmdBalance(rpcclient.New(rpcURL), cmdArgs)
	case "token":
		cmdToken(rpcclient.New(rpcURL), cmdArgs)
	case "version", "--version":
		fmt.Println("tokenview-cli version " + config.Version)
	case "help", "--help", "-h":
		usage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", cmd)
		usage()
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, `Usage: tokenview-cli [global flags] <command> [flags]

Global flags:
  --rpc <url>         Gateway endpoint (default: from --network)
  --network <net>     mainnet (default) or local

Local commands:
  account-id <principal> [--subaccount <hex>]
                                  Derive the 64-hex account identifier
  account <principal> [--subaccount <hex>]
                                  Show the textual account encoding
  principal from-pubkey <hex>     Derive a principal from a secp256k1 key
  amount format <raw> --decimals <n>
                                  Render a raw balance for display
  amount parse <text> --decimals <n>
                                  Convert display text to a raw balance

Gateway commands:
  status                          Show gateway info
  balance <token_id> <principal> [--subaccount <hex>]
                                  Show a formatted balance
  token info <token_id>           Show token metadata
  token list                      List tracked tokens
  token track <token_id> [--label <l>]
                                  Track a token ledger
  token untrack <token_id>        Stop tracking a token ledger
`)
}

// defaultRPCURL returns the gateway URL for a network's default port.
func defaultRPCURL(network string) (string, error) {
	n, err := config.ParseNetwork(network)
	if err != nil {
		return "", err
	}
	cfg, err := config.Default(n)
	if err != nil {
		return "", err
	}
	return "http://" + cfg.RPC.ListenAddr() + "/", nil
}

// parseInterspersed parses flags that may appear before, between or after
// positional arguments and returns the positionals in order.
func parseInterspersed(fs *flag.FlagSet, args []string) ([]string, error) {
	var positional []string
	for {
		if err := fs.Parse(args); err != nil {
			return nil, err
		}
		rest := fs.Args()
		if len(rest) == 0 {
			return positional, nil
		}
		positional = append(positional, rest[0])
		args = rest[1:]
	}
}

// ── Error helper ────────────────────────────────────────────────────────

func fatal(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	os.Exit(1)
}
