// Package reports exports a dataset as CSV tables.
package reports

import (
	"context"
	"io"

	"github.com/rmax-ai/graphscope/pkg/graph"
)

type ReportType string

const (
	ReportTypeNodes ReportType = "nodes"
	ReportTypeEdges ReportType = "edges"
)

type Generator interface {
	Generate(ctx context.Context, p *graph.Payload) (io.Reader, error)
}
