package store

import (
	"context"
	"errors"
	"time"

	"github.com/rmax-ai/graphscope/pkg/graph"
)

// ErrNotFound is returned when no dataset has been stored yet.
var ErrNotFound = errors.New("store: not found")

// Info describes the stored dataset.
type Info struct {
	Revision  int64     `json:"revision"`
	Nodes     int       `json:"nodes"`
	Edges     int       `json:"edges"`
	UpdatedAt time.Time `json:"updated_at"`
}

// PayloadStore is the read/write surface the API needs. Store implements it
// directly; the redis package wraps one with a cache.
type PayloadStore interface {
	LoadPayload(ctx context.Context) (*graph.Payload, error)
	ReplacePayload(ctx context.Context, p *graph.Payload) (Info, error)
	Info(ctx context.Context) (Info, error)
}
