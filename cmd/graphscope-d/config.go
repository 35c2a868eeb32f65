package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

const (
	defaultAddr     = "127.0.0.1:8090"
	defaultCacheTTL = 5 * time.Minute
	defaultKeep     = 10
)

type Config struct {
	DBPath     string
	Addr       string
	RedisAddr  string
	CacheTTL   time.Duration
	Seed       int64
	ArchiveDir string
	Keep       int
	WriteToken string
	TLSCert    string
	TLSKey     string
	LogLevel   slog.Level
}

func LoadConfig(args []string) (Config, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return Config{}, fmt.Errorf("failed to get cwd: %w", err)
	}

	defaultDBPath := filepath.Join(cwd, "graphscope.db")

	dbPath := envOrDefault("GRAPHSCOPE_DB_PATH", defaultDBPath)
	addr := addrFromEnv(defaultAddr)
	redisAddr := os.Getenv("GRAPHSCOPE_REDIS_ADDR")
	cacheTTL := defaultCacheTTL
	if ttlEnv := os.Getenv("GRAPHSCOPE_CACHE_TTL"); ttlEnv != "" {
		parsed, err := time.ParseDuration(ttlEnv)
		if err != nil {
			return Config{}, fmt.Errorf("invalid GRAPHSCOPE_CACHE_TTL: %w", err)
		}
		if parsed < 0 {
			return Config{}, errors.New("GRAPHSCOPE_CACHE_TTL cannot be negative")
		}
		cacheTTL = parsed
	}
	var seed int64
	if seedEnv := os.Getenv("GRAPHSCOPE_SEED"); seedEnv != "" {
		parsed, err := strconv.ParseInt(seedEnv, 10, 64)
		if err != nil {
			return Config{}, fmt.Errorf("invalid GRAPHSCOPE_SEED: %w", err)
		}
		seed = parsed
	}
	keep := defaultKeep
	if keepEnv := os.Getenv("GRAPHSCOPE_ARCHIVE_KEEP"); keepEnv != "" {
		parsed, err := strconv.Atoi(keepEnv)
		if err != nil {
			return Config{}, fmt.Errorf("invalid GRAPHSCOPE_ARCHIVE_KEEP: %w", err)
		}
		keep = parsed
	}
	token := os.Getenv("GRAPHSCOPE_WRITE_TOKEN")
	logLevel := envOrDefault("GRAPHSCOPE_LOG_LEVEL", "info")

	flagSet := flag.NewFlagSet("graphscope-d", flag.ContinueOnError)
	flagSet.SetOutput(io.Discard)
	flagDB := flagSet.String("db", dbPath, "path to SQLite database")
	flagAddr := flagSet.String("addr", addr, "HTTP listen address")
	flagRedis := flagSet.String("redis-addr", redisAddr, "Redis address for the payload cache (empty disables)")
	flagTTL := flagSet.String("cache-ttl", cacheTTL.String(), "payload cache TTL (0 keeps entries until the next write)")
	flagSeed := flagSet.Int64("seed", seed, "seed a synthetic company graph into an empty store (0 disables)")
	flagArchive := flagSet.String("archive-dir", os.Getenv("GRAPHSCOPE_ARCHIVE_DIR"), "keep uploaded revisions in this directory (empty disables)")
	flagKeep := flagSet.Int("archive-keep", keep, "number of archived revisions to keep (0 keeps all)")
	flagToken := flagSet.String("token", token, "bearer token required to replace the dataset")
	flagTLSCert := flagSet.String("tls-cert", os.Getenv("GRAPHSCOPE_TLS_CERT"), "TLS certificate file")
	flagTLSKey := flagSet.String("tls-key", os.Getenv("GRAPHSCOPE_TLS_KEY"), "TLS key file")
	flagLogLevel := flagSet.String("log-level", logLevel, "log level: debug|info|warn|error")

	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			flagSet.SetOutput(os.Stdout)
			flagSet.PrintDefaults()
			return Config{}, err
		}
		return Config{}, err
	}

	ttlParsed, err := time.ParseDuration(*flagTTL)
	if err != nil {
		return Config{}, fmt.Errorf("invalid cache ttl: %w", err)
	}
	if ttlParsed < 0 {
		return Config{}, errors.New("cache ttl cannot be negative")
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(*flagLogLevel))); err != nil {
		return Config{}, fmt.Errorf("invalid log level: %w", err)
	}

	config := Config{
		DBPath:     resolvePath(*flagDB, cwd),
		Addr:       strings.TrimSpace(*flagAddr),
		RedisAddr:  strings.TrimSpace(*flagRedis),
		CacheTTL:   ttlParsed,
		Seed:       *flagSeed,
		ArchiveDir: resolvePath(*flagArchive, cwd),
		Keep:       *flagKeep,
		WriteToken: *flagToken,
		TLSCert:    resolvePath(*flagTLSCert, cwd),
		TLSKey:     resolvePath(*flagTLSKey, cwd),
		LogLevel:   level,
	}

	if config.Addr == "" {
		return Config{}, errors.New("addr cannot be empty")
	}
	if config.DBPath == "" {
		return Config{}, errors.New("db cannot be empty")
	}
	if config.Keep < 0 {
		return Config{}, errors.New("archive-keep cannot be negative")
	}
	if (config.TLSCert == "") != (config.TLSKey == "") {
		return Config{}, errors.New("tls-cert and tls-key must be set together")
	}

	return config, nil
}

func envOrDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func addrFromEnv(fallback string) string {
	if value := os.Getenv("GRAPHSCOPE_ADDR"); value != "" {
		return value
	}
	if port := os.Getenv("GRAPHSCOPE_PORT"); port != "" {
		return fmt.Sprintf("127.0.0.1:%s", port)
	}
	return fallback
}

func resolvePath(path string, cwd string) string {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return trimmed
	}
	if filepath.IsAbs(trimmed) {
		return trimmed
	}
	return filepath.Join(cwd, trimmed)
}
