package graph

import (
	"strings"

	"github.com/rmax-ai/graphscope/pkg/geom"
)

// NodeType is the entity type tag of a node. It only selects the display
// style; the simulator never looks at it.
type NodeType string

const (
	NodeTeam       NodeType = "Team"
	NodeProject    NodeType = "Project"
	NodeTicket     NodeType = "Ticket"
	NodeMember     NodeType = "Member"
	NodeSystemUser NodeType = "SystemUser"
)

// EdgeType is the relation tag of a directed edge.
type EdgeType string

const (
	EdgeHasProject EdgeType = "HAS_PROJECT" // Team -> Project
	EdgeHasTicket  EdgeType = "HAS_TICKET"  // Project -> Ticket
	EdgeAssignedTo EdgeType = "ASSIGNED_TO" // Member -> Ticket
	EdgeMemberOf   EdgeType = "MEMBER_OF"   // Member -> Team
	EdgeBlockedBy  EdgeType = "BLOCKED_BY"  // Ticket -> Ticket
)

// NodeStyle is the fixed display style of a node type.
type NodeStyle struct {
	Color  string
	Radius float64
	Glyph  string
}

// EdgeStyle is the fixed display style of a relation type.
type EdgeStyle struct {
	Color  string
	Dashed bool
	Width  float64
}

var nodeStyles = map[NodeType]NodeStyle{
	NodeTeam:       {Color: "#3b82f6", Radius: 28, Glyph: "T"},
	NodeProject:    {Color: "#8b5cf6", Radius: 24, Glyph: "P"},
	NodeTicket:     {Color: "#f59e0b", Radius: 16, Glyph: "#"},
	NodeMember:     {Color: "#10b981", Radius: 20, Glyph: "M"},
	NodeSystemUser: {Color: "#ec4899", Radius: 18, Glyph: "S"},
}

var edgeStyles = map[EdgeType]EdgeStyle{
	EdgeHasProject: {Color: "#6366f1", Width: 1.2},
	EdgeHasTicket:  {Color: "#a855f7", Width: 1.2},
	EdgeAssignedTo: {Color: "#22d3ee", Width: 1.2},
	EdgeMemberOf:   {Color: "#34d399", Width: 1.2},
	EdgeBlockedBy:  {Color: "#ef4444", Width: 2.5, Dashed: true},
}

const (
	fallbackNodeColor  = "#666666"
	fallbackNodeRadius = 16
	fallbackEdgeColor  = "#555555"
)

// NodeTypes lists the known node types in legend order.
func NodeTypes() []NodeType {
	return []NodeType{NodeTeam, NodeProject, NodeTicket, NodeMember, NodeSystemUser}
}

// EdgeTypes lists the known relation types in legend order.
func EdgeTypes() []EdgeType {
	return []EdgeType{EdgeHasProject, EdgeHasTicket, EdgeAssignedTo, EdgeMemberOf, EdgeBlockedBy}
}

// Style returns the display style for t. Unknown types get a grey style
// whose glyph is the first letter of the tag.
func (t NodeType) Style() NodeStyle {
	if s, ok := nodeStyles[t]; ok {
		return s
	}
	glyph := "?"
	if t != "" {
		glyph = strings.ToUpper(string([]rune(string(t))[0:1]))
	}
	return NodeStyle{Color: fallbackNodeColor, Radius: fallbackNodeRadius, Glyph: glyph}
}

// Radius is shorthand for t.Style().Radius.
func (t NodeType) Radius() float64 { return t.Style().Radius }

// Style returns the display style for t.
func (t EdgeType) Style() EdgeStyle {
	if s, ok := edgeStyles[t]; ok {
		return s
	}
	return EdgeStyle{Color: fallbackEdgeColor, Width: 1.2}
}

// Label is the human readable relation name ("BLOCKED_BY" -> "BLOCKED BY").
func (t EdgeType) Label() string {
	return strings.ReplaceAll(string(t), "_", " ")
}

// Node is one arena slot: the node's identity plus its kinematic state.
type Node struct {
	ID    string         `json:"id"`
	Type  NodeType       `json:"label"`
	Name  string         `json:"name"`
	Props map[string]any `json:"props,omitempty"`

	Pos geom.Vec  `json:"-"`
	Vel geom.Vec  `json:"-"`
	Pin *geom.Vec `json:"-"` // set while the user drags the node
}

// Pinned reports whether the node's position is currently forced.
func (n *Node) Pinned() bool { return n.Pin != nil }

// Edge is a directed, typed connection between two node ids. From and To are
// arena handles resolved at build time; both are -1 when the edge is dangling.
type Edge struct {
	Source string   `json:"source"`
	Target string   `json:"target"`
	Type   EdgeType `json:"type"`

	From int `json:"-"`
	To   int `json:"-"`
}

// Dangling reports whether either endpoint is absent from the node set.
func (e Edge) Dangling() bool { return e.From < 0 || e.To < 0 }
