// Package node wires the gateway together so it can be embedded in any
// binary (daemon, tests).
package node

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/Klingon-tech/tokenview/config"
	"github.com/Klingon-tech/tokenview/internal/ledger"
	klog "github.com/Klingon-tech/tokenview/internal/log"
	"github.com/Klingon-tech/tokenview/internal/rpc"
	"github.com/Klingon-tech/tokenview/internal/rpcclient"
	"github.com/Klingon-tech/tokenview/internal/storage"
	"github.com/Klingon-tech/tokenview/internal/token"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// warmupTimeout bounds the startup metadata prefetch for tracked tokens.
const warmupTimeout = 30 * time.Second

// Node is a fully-initialized gateway.
type Node struct {
	cfg    *config.Config
	logger zerolog.Logger

	// Storage
	db         storage.DB
	tokenStore *token.Store

	// Ledger
	ledgerRPC *rpcclient.Client
	svc       *ledger.Service

	// RPC
	rpcServer *rpc.Server

	// Lifecycle
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates and initializes a new Node. It performs all setup steps
// (logger, storage, ledger client, cache, service, RPC) but does NOT start
// the RPC listener or background work. Call Start() for that.
func New(cfg *config.Config) (*Node, error) {
	cfg.DataDir = expandHome(cfg.DataDir)

	// ── 1. Init logger ──────────────────────────────────────────────
	logFile := expandHome(cfg.Log.File)
	if logFile == "" {
		logsDir := cfg.LogsDir()
		if err := os.MkdirAll(logsDir, 0755); err != nil {
			return nil, fmt.Errorf("creating logs dir: %w", err)
		}
		logFile = filepath.Join(logsDir, "tokenviewd.log")
	}
	if err := klog.Init(cfg.Log.Level, cfg.Log.JSON, logFile); err != nil {
		return nil, fmt.Errorf("initializing logger: %w", err)
	}
	logger := klog.Node

	logger.Info().
		Str("network", string(cfg.Network)).
		Str("ledger", cfg.Ledger.URL).
		Dur("ledger_timeout", cfg.Ledger.Timeout).
		Msg("Starting Tokenview Gateway")

	// ── 2. Open storage ─────────────────────────────────────────────
	if err := os.MkdirAll(cfg.DBDir(), 0700); err != nil {
		return nil, fmt.Errorf("creating db dir: %w", err)
	}
	db, err := storage.NewBadger(cfg.DBDir())
	if err != nil {
		return nil, fmt.Errorf("open database at %s: %w", cfg.DBDir(), err)
	}

	tokenDB := storage.NewPrefixDB(db, ledgerNamespace(cfg.Ledger.URL))
	logger.Info().
		Str("path", cfg.DBDir()).
		Str("namespace", string(tokenDB.Prefix())).
		Msg("Database opened")

	if cfg.ResetTracked {
		if err := tokenDB.DeleteAll(); err != nil {
			db.Close()
			return nil, fmt.Errorf("reset tracked tokens: %w", err)
		}
		logger.Info().Str("namespace", string(tokenDB.Prefix())).Msg("Tracked tokens cleared")
	}
	tokenStore := token.NewStore(tokenDB)

	// ── 3. Ledger client and façade ─────────────────────────────────
	ledgerRPC := rpcclient.NewWithTimeout(cfg.Ledger.URL, cfg.Ledger.Timeout)
	svc := ledger.NewService(ledger.NewClient(ledgerRPC), token.NewCache())

	ctx, cancel := context.WithCancel(context.Background())
	n := &Node{
		cfg:        cfg,
		logger:     logger,
		db:         db,
		tokenStore: tokenStore,
		ledgerRPC:  ledgerRPC,
		svc:        svc,
		ctx:        ctx,
		cancel:     cancel,
	}

	// ── 4. RPC server ───────────────────────────────────────────────
	if cfg.RPC.Enabled {
		srv := rpc.New(cfg.RPC.ListenAddr(), svc, cfg.RPC)
		srv.SetTokenStore(tokenStore)
		srv.SetInfo(rpc.Info{
			Version:   config.Version,
			Network:   string(cfg.Network),
			LedgerURL: cfg.Ledger.URL,
		})
		n.rpcServer = srv
	}

	return n, nil
}

// Start binds the RPC listener and prefetches metadata for tracked tokens
// in the background.
func (n *Node) Start() error {
	if n.rpcServer != nil {
		if err := n.rpcServer.Start(); err != nil {
			return fmt.Errorf("start rpc: %w", err)
		}
	}

	n.wg.Add(1)
	go func() {
		defer n.wg.Done()
		n.warmCache()
	}()

	n.logger.Info().Msg("Gateway started")
	return nil
}

// Stop shuts down the RPC server, waits for background work and closes
// storage.
func (n *Node) Stop() {
	n.cancel()
	n.wg.Wait()

	if n.rpcServer != nil {
		if err := n.rpcServer.Stop(); err != nil {
			n.logger.Warn().Err(err).Msg("RPC shutdown")
		}
	}
	if n.db != nil {
		n.db.Close()
	}

	n.logger.Info().Msg("Goodbye!")
}

// RPCAddr returns the address the RPC server is listening on.
func (n *Node) RPCAddr() string {
	if n.rpcServer == nil {
		return ""
	}
	return n.rpcServer.Addr()
}

// Service returns the balance query façade.
func (n *Node) Service() *ledger.Service {
	return n.svc
}

// TokenStore returns the tracked-token store.
func (n *Node) TokenStore() *token.Store {
	return n.tokenStore
}

// warmCache fetches metadata for every tracked token so the first display
// of each is served from the cache. Failures only leave the entry uncached.
func (n *Node) warmCache() {
	list, err := n.tokenStore.List()
	if err != nil {
		n.logger.Warn().Err(err).Msg("List tracked tokens")
		return
	}
	if len(list) == 0 {
		return
	}

	ctx, cancel := context.WithTimeout(n.ctx, warmupTimeout)
	defer cancel()

	done := klog.Benchmark("metadata warmup")
	defer done()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for _, tt := range list {
		tt := tt
		g.Go(func() error {
			n.svc.Metadata(gctx, tt.LedgerID)
			return nil
		})
	}
	_ = g.Wait()

	n.logger.Info().
		Int("tracked", len(list)).
		Int("cached", n.svc.Cache().Len()).
		Msg("Metadata cache warmed")
}
