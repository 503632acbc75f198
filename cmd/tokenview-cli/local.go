package main

import (
	"encoding/hex"
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/Klingon-tech/tokenview/pkg/amount"
	"github.com/Klingon-tech/tokenview/pkg/crypto"
	"github.com/Klingon-tech/tokenview/pkg/types"
)

// ── account-id / account ────────────────────────────────────────────────

// accountArgs parses "<principal> [--subaccount hex]".
func accountArgs(name string, args []string) (types.Account, error) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	subHex := fs.String("subaccount", "", "Subaccount (up to 64 hex chars)")
	positional, err := parseInterspersed(fs, args)
	if err != nil {
		return types.Account{}, err
	}
	if len(positional) != 1 {
		return types.Account{}, fmt.Errorf("usage: tokenview-cli %s <principal> [--subaccount <hex>]", name)
	}

	owner, err := types.ParsePrincipal(positional[0])
	if err != nil {
		return types.Account{}, err
	}
	if *subHex == "" {
		return types.Account{Owner: owner}, nil
	}
	sub, err := types.ParseSubaccount(*subHex)
	if err != nil {
		return types.Account{}, fmt.Errorf("invalid subaccount: %w", err)
	}
	return types.NewAccount(owner, &sub), nil
}

func cmdAccountID(args []string) {
	acct, err := accountArgs("account-id", args)
	if err != nil {
		fatal("%v", err)
	}
	id, err := crypto.AccountIdentifierOf(acct)
	if err != nil {
		fatal("%v", err)
	}
	fmt.Println(id.Hex())
}

func cmdAccount(args []string) {
	acct, err := accountArgs("account", args)
	if err != nil {
		fatal("%v", err)
	}
	id, err := crypto.AccountIdentifierOf(acct)
	if err != nil {
		fatal("%v", err)
	}

	fmt.Printf("Account:            %s\n", acct.String())
	fmt.Printf("Owner:              %s\n", acct.Owner.Text())
	fmt.Printf("Subaccount:         %s\n", acct.EffectiveSubaccount().Hex())
	fmt.Printf("Account identifier: %s\n", id.Hex())
}

// ── principal ───────────────────────────────────────────────────────────

func cmdPrincipal(args []string) {
	if len(args) < 2 || args[0] != "from-pubkey" {
		fatal("Usage: tokenview-cli principal from-pubkey <hex>")
	}
	p, err := principalFromHex(args[1])
	if err != nil {
		fatal("%v", err)
	}
	fmt.Println(p.Text())
}

func principalFromHex(s string) (types.Principal, error) {
	pub, err := hex.DecodeString(strings.TrimPrefix(strings.TrimSpace(s), "0x"))
	if err != nil {
		return types.Principal{}, fmt.Errorf("decode public key: %w", err)
	}
	return crypto.PrincipalFromSecp256k1(pub)
}

// ── amount ──────────────────────────────────────────────────────────────

func cmdAmount(args []string) {
	if len(args) < 1 {
		fatal("Usage: tokenview-cli amount <format|parse> <value> --decimals <n>")
	}

	out, err := runAmount(args[0], args[1:])
	if err != nil {
		fatal("%v", err)
	}
	fmt.Println(out)
}

func runAmount(sub string, args []string) (string, error) {
	fs := flag.NewFlagSet("amount "+sub, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	decimals := fs.Uint("decimals", 8, "Decimal places (0-255)")
	positional, err := parseInterspersed(fs, args)
	if err != nil {
		return "", err
	}
	if len(positional) != 1 {
		return "", fmt.Errorf("usage: tokenview-cli amount %s <value> --decimals <n>", sub)
	}
	if *decimals > 255 {
		return "", fmt.Errorf("decimals must be in range [0, 255]")
	}
	d := uint8(*decimals)

	switch sub {
	case "format":
		raw, err := amount.Parse(positional[0], 0)
		if err != nil {
			return "", err
		}
		return amount.Format(raw, d), nil
	case "parse":
		raw, err := amount.Parse(positional[0], d)
		if err != nil {
			return "", err
		}
		return raw.String(), nil
	default:
		return "", fmt.Errorf("unknown amount command: %s", sub)
	}
}
