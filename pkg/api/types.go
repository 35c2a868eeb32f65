package api

import "github.com/rmax-ai/graphscope/pkg/graph"

// HealthResponse is the body of GET /v1/health.
type HealthResponse struct {
	Status   string `json:"status"` // ok, empty or degraded
	Version  string `json:"version"`
	Revision int64  `json:"revision"`
	Nodes    int    `json:"nodes"`
	Edges    int    `json:"edges"`
	Cache    string `json:"cache"`
}

// PutGraphResponse is the body of a successful PUT /v1/graph.
type PutGraphResponse struct {
	Revision int64    `json:"revision"`
	Nodes    int      `json:"nodes"`
	Edges    int      `json:"edges"`
	Warnings []string `json:"warnings,omitempty"`
}

// RevisionsResponse is the body of GET /v1/graph/revisions.
type RevisionsResponse struct {
	Revisions []int64 `json:"revisions"`
}

// NodeResponse is the body of GET /v1/graph/nodes/{id}.
type NodeResponse = graph.Details

// ErrorResponse is the JSON error envelope.
type ErrorResponse struct {
	Error  string `json:"error"`
	Reason string `json:"reason,omitempty"`
}
