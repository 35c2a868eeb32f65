package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/rmax-ai/graphscope/pkg/api"
	"github.com/rmax-ai/graphscope/pkg/blob"
	"github.com/rmax-ai/graphscope/pkg/dataset"
	"github.com/rmax-ai/graphscope/pkg/store"
	"github.com/rmax-ai/graphscope/pkg/store/redis"
)

var Version = "dev"

func main() {
	cfg, err := LoadConfig(os.Args[1:])
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "graphscope-d: %v\n", err)
		os.Exit(2)
	}

	log := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel})).
		With("component", "graphscope-d")

	if err := run(cfg, log); err != nil {
		log.Error("fatal", "err", err)
		os.Exit(1)
	}
}

func run(cfg Config, log *slog.Logger) error {
	log.Info("system_started", "version", Version)

	st, err := store.NewStore(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("failed to init store: %w", err)
	}
	defer func() {
		if err := st.Close(); err != nil {
			log.Error("failed_to_close_store", "err", err)
		} else {
			log.Info("store_closed")
		}
	}()
	log.Info("store_initialized", "path", cfg.DBPath)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := seedIfEmpty(ctx, st, cfg.Seed, log); err != nil {
		return err
	}

	var backend store.PayloadStore = st
	var cache *redis.Cache
	if cfg.RedisAddr != "" {
		rc := goredis.NewClient(&goredis.Options{Addr: cfg.RedisAddr})
		defer rc.Close()
		cache = redis.NewCache(rc, st, cfg.CacheTTL, log)
		if err := cache.Ping(ctx); err != nil {
			log.Warn("redis_unreachable", "addr", cfg.RedisAddr, "err", err)
		} else {
			log.Info("redis_connected", "addr", cfg.RedisAddr, "ttl", cfg.CacheTTL)
		}
		backend = cache
	}

	srv := newServer(backend, cache, cfg, log)

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	select {
	case <-ctx.Done():
		log.Info("shutdown_initiated")
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Stop(shutdownCtx); err != nil {
		log.Error("failed_to_stop_server", "err", err)
	}
	log.Info("shutdown_complete")
	return nil
}

// newServer wires the API over backend. cache may be nil.
func newServer(backend store.PayloadStore, cache *redis.Cache, cfg Config, log *slog.Logger) *api.Server {
	srv := api.NewServer(backend, cfg.Addr)
	srv.SetLogger(log)
	srv.SetVersion(Version)
	srv.SetWriteToken(cfg.WriteToken)
	if cache != nil {
		srv.SetCache(cache)
	}
	if cfg.ArchiveDir != "" {
		srv.SetArchive(blob.NewArchive(blob.NewLocalStore(cfg.ArchiveDir), cfg.Keep))
	}
	if cfg.TLSCert != "" {
		srv.SetTLS(cfg.TLSCert, cfg.TLSKey)
	}
	return srv
}

// seedIfEmpty stores a generated company graph when nothing has been
// stored yet. A zero seed disables it.
func seedIfEmpty(ctx context.Context, st store.PayloadStore, seed int64, log *slog.Logger) error {
	if seed == 0 {
		return nil
	}
	_, err := st.Info(ctx)
	if err == nil {
		log.Info("seed_skipped", "reason", "store not empty")
		return nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("failed to inspect store: %w", err)
	}

	dc := dataset.DefaultConfig()
	dc.Seed = seed
	info, err := st.ReplacePayload(ctx, dataset.Generate(dc))
	if err != nil {
		return fmt.Errorf("failed to seed store: %w", err)
	}
	log.Info("store_seeded", "seed", seed, "nodes", info.Nodes, "edges", info.Edges)
	return nil
}
