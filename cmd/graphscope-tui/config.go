package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/rmax-ai/graphscope/pkg/client"
)

const (
	defaultFPS = 30
	maxFPS     = 120
)

type Config struct {
	Endpoint string
	FPS      int
	LogPath  string
}

func LoadConfig(args []string) (Config, error) {
	endpoint := envOrDefault("GRAPHSCOPE_ENDPOINT", client.DefaultEndpoint)
	fps := defaultFPS
	if fpsEnv := os.Getenv("GRAPHSCOPE_FPS"); fpsEnv != "" {
		parsed, err := strconv.Atoi(fpsEnv)
		if err != nil {
			return Config{}, fmt.Errorf("invalid GRAPHSCOPE_FPS: %w", err)
		}
		fps = parsed
	}

	flagSet := flag.NewFlagSet("graphscope-tui", flag.ContinueOnError)
	flagSet.SetOutput(io.Discard)
	flagEndpoint := flagSet.String("endpoint", endpoint, "graphscope-d base URL")
	flagFPS := flagSet.Int("fps", fps, "frames per second")
	flagLog := flagSet.String("log", os.Getenv("GRAPHSCOPE_LOG"), "write debug logs to this file")

	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			flagSet.SetOutput(os.Stdout)
			flagSet.PrintDefaults()
		}
		return Config{}, err
	}

	config := Config{
		Endpoint: strings.TrimSpace(*flagEndpoint),
		FPS:      *flagFPS,
		LogPath:  strings.TrimSpace(*flagLog),
	}
	if config.Endpoint == "" {
		return Config{}, errors.New("endpoint cannot be empty")
	}
	if config.FPS <= 0 || config.FPS > maxFPS {
		return Config{}, fmt.Errorf("fps must be between 1 and %d", maxFPS)
	}
	return config, nil
}

func envOrDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
