package graph

import (
	"maps"

	"github.com/rmax-ai/graphscope/pkg/geom"
)

// Model is the graph being laid out: an arena of nodes addressed by integer
// handles plus an id->handle index. Topology never changes after NewModel;
// only kinematic state and pins are mutated.
type Model struct {
	nodes    []Node
	edges    []Edge
	index    map[string]int
	types    []NodeType
	dangling int
}

// NewModel builds a model from p, keeping payload order. Duplicate node ids
// keep their first occurrence. Edges with a missing endpoint are kept for
// counting but marked dangling.
func NewModel(p *Payload) *Model {
	m := &Model{index: make(map[string]int)}
	if p == nil {
		return m
	}

	m.nodes = make([]Node, 0, len(p.Nodes))
	seenType := make(map[NodeType]bool)
	for _, pn := range p.Nodes {
		if pn.ID == "" {
			continue
		}
		if _, dup := m.index[pn.ID]; dup {
			continue
		}
		m.index[pn.ID] = len(m.nodes)
		m.nodes = append(m.nodes, Node{
			ID:    pn.ID,
			Type:  pn.Label,
			Name:  pn.DisplayName(),
			Props: maps.Clone(pn.Props),
		})
		if !seenType[pn.Label] {
			seenType[pn.Label] = true
			m.types = append(m.types, pn.Label)
		}
	}

	m.edges = make([]Edge, 0, len(p.Edges))
	for _, pe := range p.Edges {
		e := Edge{Source: pe.Source, Target: pe.Target, Type: pe.Type, From: -1, To: -1}
		from, okFrom := m.index[pe.Source]
		to, okTo := m.index[pe.Target]
		if okFrom && okTo {
			e.From, e.To = from, to
		} else {
			m.dangling++
		}
		m.edges = append(m.edges, e)
	}
	return m
}

// Len returns the number of nodes.
func (m *Model) Len() int { return len(m.nodes) }

// EdgeCount returns the number of edges in the dataset, dangling ones included.
func (m *Model) EdgeCount() int { return len(m.edges) }

// DanglingCount returns the number of edges with a missing endpoint.
func (m *Model) DanglingCount() int { return m.dangling }

// Lookup returns the handle of the node with the given id.
func (m *Model) Lookup(id string) (int, bool) {
	i, ok := m.index[id]
	return i, ok
}

// Node returns the node stored at handle i.
func (m *Model) Node(i int) *Node { return &m.nodes[i] }

// Nodes exposes the arena in insertion order. Callers may mutate kinematic
// fields in place.
func (m *Model) Nodes() []Node { return m.nodes }

// Edges returns all edges in insertion order.
func (m *Model) Edges() []Edge { return m.edges }

// Types returns the distinct node types present, in first-appearance order.
func (m *Model) Types() []NodeType { return m.types }

// Pin forces node i to position v until Unpin is called.
func (m *Model) Pin(i int, v geom.Vec) {
	p := v
	m.nodes[i].Pin = &p
}

// Unpin hands node i back to the simulator.
func (m *Model) Unpin(i int) { m.nodes[i].Pin = nil }

// Bounds returns the box containing every node position.
func (m *Model) Bounds() geom.Rect {
	r := geom.EmptyRect()
	for i := range m.nodes {
		r = r.Extend(m.nodes[i].Pos)
	}
	return r
}

// Direction tells whether an incident edge leaves or enters a node.
type Direction string

const (
	Outgoing Direction = "out"
	Incoming Direction = "in"
)

// Arrow returns "→" for outgoing edges and "←" for incoming ones.
func (d Direction) Arrow() string {
	if d == Outgoing {
		return "→"
	}
	return "←"
}

// Connection is one edge incident to a node, seen from that node.
type Connection struct {
	Direction    Direction `json:"direction"`
	Type         EdgeType  `json:"type"`
	NeighborID   string    `json:"neighbor_id"`
	NeighborName string    `json:"neighbor_name"`
}

// Details is the read model of a single node used by info panels.
type Details struct {
	ID          string         `json:"id"`
	Type        NodeType       `json:"label"`
	Name        string         `json:"name"`
	Props       map[string]any `json:"props"`
	Connections []Connection   `json:"connections"`
}

// Details returns the node with the given id together with all incident
// edges. A neighbour missing from the node set is reported by id.
func (m *Model) Details(id string) (Details, bool) {
	i, ok := m.index[id]
	if !ok {
		return Details{}, false
	}
	n := &m.nodes[i]
	d := Details{ID: n.ID, Type: n.Type, Name: n.Name, Props: maps.Clone(n.Props)}
	if d.Props == nil {
		d.Props = map[string]any{}
	}
	for _, e := range m.edges {
		var c Connection
		switch {
		case e.Source == id:
			c = Connection{Direction: Outgoing, Type: e.Type, NeighborID: e.Target}
		case e.Target == id:
			c = Connection{Direction: Incoming, Type: e.Type, NeighborID: e.Source}
		default:
			continue
		}
		c.NeighborName = c.NeighborID
		if j, ok := m.index[c.NeighborID]; ok {
			c.NeighborName = m.nodes[j].Name
		}
		d.Connections = append(d.Connections, c)
	}
	return d, true
}
