package graph

import (
	"errors"
	"fmt"
)

// ErrEmptyID is returned by Validate when a node has no id.
var ErrEmptyID = errors.New("node with empty id")

// Payload is the dataset exchanged with the data-fetching collaborator.
type Payload struct {
	Nodes []PayloadNode `json:"nodes"`
	Edges []PayloadEdge `json:"edges"`
}

// PayloadNode is a node as delivered on the wire.
type PayloadNode struct {
	ID    string         `json:"id"`
	Label NodeType       `json:"label"`
	Name  string         `json:"name"`
	Props map[string]any `json:"props,omitempty"`
}

// PayloadEdge is an edge as delivered on the wire.
type PayloadEdge struct {
	Source string   `json:"source"`
	Target string   `json:"target"`
	Type   EdgeType `json:"type"`
}

// DisplayName returns the node's name, falling back to the "name" and
// "title" props and finally to the id.
func (n PayloadNode) DisplayName() string {
	if n.Name != "" {
		return n.Name
	}
	for _, key := range []string{"name", "title"} {
		if s, ok := n.Props[key].(string); ok && s != "" {
			return s
		}
	}
	return n.ID
}

// Validate checks the payload for problems that would make a node
// unaddressable. It returns an error for empty ids and a list of warnings for
// recoverable issues (duplicate ids, dangling edges).
func (p *Payload) Validate() (warnings []string, err error) {
	seen := make(map[string]bool, len(p.Nodes))
	for i, n := range p.Nodes {
		if n.ID == "" {
			return nil, fmt.Errorf("nodes[%d]: %w", i, ErrEmptyID)
		}
		if seen[n.ID] {
			warnings = append(warnings, fmt.Sprintf("nodes[%d]: duplicate id %q ignored", i, n.ID))
			continue
		}
		seen[n.ID] = true
	}
	for i, e := range p.Edges {
		if !seen[e.Source] || !seen[e.Target] {
			warnings = append(warnings, fmt.Sprintf("edges[%d]: %s -> %s references a missing node", i, e.Source, e.Target))
		}
	}
	return warnings, nil
}
