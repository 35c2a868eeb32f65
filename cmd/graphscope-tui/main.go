package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/rmax-ai/graphscope/pkg/client"
)

func main() {
	cfg, err := LoadConfig(os.Args[1:])
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "graphscope-tui: %v\n", err)
		os.Exit(2)
	}

	// The alt screen owns stdout, so logs only go to a file.
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	if cfg.LogPath != "" {
		f, err := os.OpenFile(cfg.LogPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "graphscope-tui: open log: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		log = slog.New(slog.NewJSONHandler(f, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
	log = log.With("component", "graphscope-tui")

	src := client.NewClient(cfg.Endpoint)
	p := tea.NewProgram(newModel(src, cfg.FPS, log), tea.WithAltScreen(), tea.WithMouseAllMotion())
	if _, err := p.Run(); err != nil {
		fmt.Printf("Alas, there's been an error: %v", err)
		os.Exit(1)
	}
}
