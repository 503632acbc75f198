// Tokenview gateway daemon.
//
// Usage:
//
//	tokenviewd [--network=local --ledger-url=...] Run gateway
//	tokenviewd --help                             Show help
package main

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/Klingon-tech/tokenview/config"
	klog "github.com/Klingon-tech/tokenview/internal/log"
	"github.com/Klingon-tech/tokenview/internal/node"
)

func main() {
	cfg, _, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		if errors.Is(err, config.ErrInvalidNetwork) {
			os.Exit(2)
		}
		os.Exit(1)
	}

	n, err := node.New(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	logger := klog.WithComponent("daemon")
	if err := n.Start(); err != nil {
		logger.Error().Err(err).Msg("Start failed")
		n.Stop()
		os.Exit(1)
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	logger.Info().Str("signal", sig.String()).Msg("Shutting down")

	n.Stop()
}
