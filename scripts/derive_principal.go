// derive_principal.go prints the principal and default account identifier
// for a hex-encoded secp256k1 public key file.
// Usage: go run scripts/derive_principal.go <pubkeyfile>
package main

import (
	"encoding/hex"
	"fmt"
	"os"
	"strings"

	"github.com/Klingon-tech/tokenview/pkg/crypto"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: derive_principal <pubkeyfile>")
		os.Exit(1)
	}
	data, err := os.ReadFile(os.Args[1])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	pubHex := strings.TrimSpace(string(data))
	pubBytes, err := hex.DecodeString(pubHex)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	principal, err := crypto.PrincipalFromSecp256k1(pubBytes)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	id, err := crypto.AccountIdentifier(principal, nil)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	fmt.Printf("principal=%s\n", principal.Text())
	fmt.Printf("account_id=%s\n", id.Hex())
}
