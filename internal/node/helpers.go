package node

import (
	"encoding/hex"
	"os"
	"path/filepath"
	"strings"

	"github.com/Klingon-tech/tokenview/pkg/crypto"
)

// expandHome replaces a leading ~ with the user's home directory.
func expandHome(path string) string {
	if !strings.HasPrefix(path, "~") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[1:])
}

// ledgerNamespace returns the storage prefix for data tied to one ledger
// endpoint: "l/<fingerprint hex>/". Trailing slashes and case in the
// endpoint do not change the namespace.
func ledgerNamespace(endpoint string) []byte {
	normalized := strings.TrimRight(strings.ToLower(strings.TrimSpace(endpoint)), "/")
	fp := crypto.Fingerprint([]byte(normalized))
	return []byte("l/" + hex.EncodeToString(fp[:]) + "/")
}
