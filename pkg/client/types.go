package client

import (
	"context"

	"github.com/rmax-ai/graphscope/pkg/graph"
)

// Status is the daemon health report.
type Status struct {
	// Status is "ok", "empty" (nothing stored yet) or "degraded" (cache
	// unreachable).
	Status string `json:"status"`
	// Version is the daemon build version.
	Version string `json:"version"`
	// Revision, Nodes and Edges describe the stored dataset.
	Revision int64 `json:"revision"`
	Nodes    int   `json:"nodes"`
	Edges    int   `json:"edges"`
	// Cache is "redis" or "none".
	Cache string `json:"cache,omitempty"`
}

// PutResult is the daemon's answer to a dataset upload.
type PutResult struct {
	Revision int64    `json:"revision"`
	Nodes    int      `json:"nodes"`
	Edges    int      `json:"edges"`
	Warnings []string `json:"warnings,omitempty"`
}

// errorBody is the JSON error envelope the daemon uses.
type errorBody struct {
	Error string `json:"error"`
}

// GraphSource is anything that can produce the dataset to display.
type GraphSource interface {
	GetGraph(ctx context.Context) (*graph.Payload, error)
}
