package main

import (
	"flag"
	"fmt"
	"io"
	"time"

	"github.com/Klingon-tech/tokenview/internal/rpc"
	"github.com/Klingon-tech/tokenview/internal/rpcclient"
)

// ── status ──────────────────────────────────────────────────────────────

func cmdStatus(client *rpcclient.Client) {
	var result rpc.GatewayInfoResult
	if err := client.Call("gateway_getInfo", nil, &result); err != nil {
		fatal("gateway_getInfo: %v", err)
	}

	fmt.Printf("Gateway:        %s\n", client.Endpoint())
	fmt.Printf("Version:        %s\n", result.Version)
	fmt.Printf("Network:        %s\n", result.Network)
	fmt.Printf("Ledger:         %s\n", result.LedgerURL)
	fmt.Printf("Cached tokens:  %d\n", result.CachedTokens)
	if result.Tracking {
		fmt.Printf("Tracked tokens: %d\n", result.TrackedTokens)
	} else {
		fmt.Println("Tracked tokens: disabled")
	}
}

// ── balance ─────────────────────────────────────────────────────────────

func cmdBalance(client *rpcclient.Client, args []string) {
	fs := flag.NewFlagSet("balance", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	subHex := fs.String("subaccount", "", "Subaccount (up to 64 hex chars)")
	positional, err := parseInterspersed(fs, args)
	if err != nil || len(positional) != 2 {
		fatal("Usage: tokenview-cli balance <token_id> <principal> [--subaccount <hex>]")
	}

	var result rpc.BalanceResult
	if err := client.Call("token_getBalance", rpc.BalanceParam{
		TokenID:    positional[0],
		Owner:      positional[1],
		Subaccount: *subHex,
	}, &result); err != nil {
		fatal("token_getBalance: %v", err)
	}

	fmt.Printf("Account: %s\n", result.Account)
	fmt.Printf("Token:   %s\n", result.TokenID)
	fmt.Printf("Balance: %s %s\n", result.Formatted, result.Symbol)
	fmt.Printf("Raw:     %s (decimals %d)\n", result.Raw, result.Decimals)
	if result.Fallback {
		fmt.Println("Note:    token metadata unavailable, showing defaults")
	}
}

// ── token ───────────────────────────────────────────────────────────────

func cmdToken(client *rpcclient.Client, args []string) {
	if len(args) < 1 {
		fatal("Usage: tokenview-cli token <info|list|track|untrack> [flags]")
	}

	switch args[0] {
	case "list":
		cmdTokenList(client)
	case "info":
		if len(args) < 2 {
			fatal("Usage: tokenview-cli token info <token_id>")
		}
		cmdTokenInfo(client, args[1])
	case "track":
		cmdTokenTrack(client, args[1:])
	case "untrack":
		if len(args) < 2 {
			fatal("Usage: tokenview-cli token untrack <token_id>")
		}
		cmdTokenUntrack(client, args[1])
	default:
		fatal("Unknown token command: %s\nUsage: tokenview-cli token <info|list|track|untrack> [flags]", args[0])
	}
}

func cmdTokenList(client *rpcclient.Client) {
	var result rpc.TokenListResult
	if err := client.Call("token_list", nil, &result); err != nil {
		fatal("token_list: %v", err)
	}

	if len(result.Tokens) == 0 {
		fmt.Println("No tracked tokens.")
		return
	}

	fmt.Printf("Tokens: %d\n\n", len(result.Tokens))
	for i, t := range result.Tokens {
		fmt.Printf("  [%d] %s (%s)\n", i, t.Name, t.Symbol)
		fmt.Printf("      ID:       %s\n", t.TokenID)
		fmt.Printf("      Decimals: %d\n", t.Decimals)
		if t.Label != "" {
			fmt.Printf("      Label:    %s\n", t.Label)
		}
		fmt.Printf("      Added:    %s\n", time.Unix(t.AddedAt, 0).Format(time.RFC3339))
		fmt.Println()
	}
}

func cmdTokenInfo(client *rpcclient.Client, tokenID string) {
	var result rpc.TokenInfoResult
	if err := client.Call("token_getInfo", rpc.TokenIDParam{TokenID: tokenID}, &result); err != nil {
		fatal("token_getInfo: %v", err)
	}

	fmt.Printf("Token ID: %s\n", result.TokenID)
	fmt.Printf("Name:     %s\n", result.Name)
	fmt.Printf("Symbol:   %s\n", result.Symbol)
	fmt.Printf("Decimals: %d\n", result.Decimals)
	fmt.Printf("Tracked:  %v\n", result.Tracked)
	if result.Fallback {
		fmt.Println("Note:     ledger did not answer, showing defaults")
	}
}

func cmdTokenTrack(client *rpcclient.Client, args []string) {
	fs := flag.NewFlagSet("token track", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	label := fs.String("label", "", "Display label")
	positional, err := parseInterspersed(fs, args)
	if err != nil || len(positional) != 1 {
		fatal("Usage: tokenview-cli token track <token_id> [--label <l>]")
	}

	var result rpc.TrackedTokenResult
	if err := client.Call("token_track", rpc.TrackParam{TokenID: positional[0], Label: *label}, &result); err != nil {
		fatal("token_track: %v", err)
	}
	fmt.Printf("Tracking %s\n", result.TokenID)
}

func cmdTokenUntrack(client *rpcclient.Client, tokenID string) {
	var result rpc.UntrackResult
	if err := client.Call("token_untrack", rpc.TokenIDParam{TokenID: tokenID}, &result); err != nil {
		fatal("token_untrack: %v", err)
	}
	if result.Removed {
		fmt.Printf("Stopped tracking %s\n", result.TokenID)
	} else {
		fmt.Printf("%s was not tracked\n", result.TokenID)
	}
}
