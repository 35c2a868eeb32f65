package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"maps"
	"math"
	"math/rand"
	"slices"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/rmax-ai/graphscope/pkg/client"
	"github.com/rmax-ai/graphscope/pkg/graph"
	"github.com/rmax-ai/graphscope/pkg/viewer"
)

const (
	graphURI = "graphscope://graph"

	// layoutWidth and layoutHeight size the virtual surface settle_layout
	// lays the graph out on.
	layoutWidth    = 1200
	layoutHeight   = 800
	maxLayoutTicks = 5000
)

// GraphStats summarises a dataset.
type GraphStats struct {
	Nodes      int                    `json:"nodes"`
	Edges      int                    `json:"edges"`
	Dangling   int                    `json:"dangling"`
	ByNodeType map[graph.NodeType]int `json:"by_node_type"`
	ByEdgeType map[graph.EdgeType]int `json:"by_edge_type"`
}

// NodePosition is one node of a settled layout.
type NodePosition struct {
	ID   string         `json:"id"`
	Type graph.NodeType `json:"label"`
	X    float64        `json:"x"`
	Y    float64        `json:"y"`
}

// Server exposes a graph source over the Model Context Protocol.
type Server struct {
	mcpServer *server.MCPServer
	source    client.GraphSource
}

// NewServer creates a new MCP server reading from src.
func NewServer(src client.GraphSource, version string) *Server {
	s := &Server{
		mcpServer: server.NewMCPServer("graphscope", version),
		source:    src,
	}
	s.registerResources()
	s.registerTools()
	s.registerPrompts()
	return s
}

// Serve starts the MCP server on stdio.
func (s *Server) Serve() error {
	return server.ServeStdio(s.mcpServer)
}

// --- Resources ---

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource(
		graphURI,
		"Graph Summary",
		mcp.WithResourceDescription("Node and edge counts of the current dataset, by type"),
		mcp.WithMIMEType("application/json"),
	), s.handleReadGraph)
}

// --- Tools ---

func (s *Server) registerTools() {
	s.mcpServer.AddTool(mcp.NewTool(
		"graph_stats",
		mcp.WithDescription("Count the nodes and edges of the current dataset by type."),
	), s.handleGraphStats)

	s.mcpServer.AddTool(mcp.NewTool(
		"describe_node",
		mcp.WithDescription("Show a node's properties and every edge touching it."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Node id (e.g. 'FE-101')")),
	), s.handleDescribeNode)

	s.mcpServer.AddTool(mcp.NewTool(
		"settle_layout",
		mcp.WithDescription("Run the force layout until it settles and return node positions."),
		mcp.WithNumber("seed", mcp.Description("Seed for the initial placement (default 1)")),
	), s.handleSettleLayout)
}

// --- Prompts ---

func (s *Server) registerPrompts() {
	s.mcpServer.AddPrompt(mcp.NewPrompt(
		"graphscope-aware",
		mcp.WithPromptDescription("Explains the node and edge types of the company graph"),
	), s.handleGetPrompt)
}

// --- Handlers ---

func (s *Server) handleReadGraph(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	stats, err := s.stats(ctx)
	if err != nil {
		return nil, err
	}

	data, err := json.MarshalIndent(stats, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal stats: %w", err)
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      request.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}

func (s *Server) handleGraphStats(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	stats, err := s.stats(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("API error: %v", err)), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Nodes: %d\nEdges: %d (dangling: %d)\n", stats.Nodes, stats.Edges, stats.Dangling)
	for _, t := range graph.NodeTypes() {
		if n := stats.ByNodeType[t]; n > 0 {
			fmt.Fprintf(&b, "  %s: %d\n", t, n)
		}
	}
	for _, t := range graph.EdgeTypes() {
		if n := stats.ByEdgeType[t]; n > 0 {
			fmt.Fprintf(&b, "  %s: %d\n", t, n)
		}
	}
	return mcp.NewToolResultText(b.String()), nil
}

func (s *Server) handleDescribeNode(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := mcp.ParseString(request, "id", "")
	if id == "" {
		return mcp.NewToolResultError("id is required"), nil
	}

	p, err := s.source.GetGraph(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("API error: %v", err)), nil
	}

	d, ok := graph.NewModel(p).Details(id)
	if !ok {
		return mcp.NewToolResultError(fmt.Sprintf("node not found: %s", id)), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s (%s) %s\n", d.Name, d.Type, d.ID)
	for _, k := range slices.Sorted(maps.Keys(d.Props)) {
		fmt.Fprintf(&b, "  %s: %v\n", k, d.Props[k])
	}
	fmt.Fprintf(&b, "Connections (%d):\n", len(d.Connections))
	for _, c := range d.Connections {
		fmt.Fprintf(&b, "  %s %s %s\n", c.Direction.Arrow(), c.Type.Label(), c.NeighborName)
	}
	return mcp.NewToolResultText(b.String()), nil
}

func (s *Server) handleSettleLayout(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	seed := int64(mcp.ParseFloat64(request, "seed", 1))

	p, err := s.source.GetGraph(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("API error: %v", err)), nil
	}

	sess := viewer.NewSession(layoutWidth, layoutHeight, viewer.Options{
		Rand: rand.New(rand.NewSource(seed)),
	})
	sess.Load(p)
	for i := 0; i < maxLayoutTicks && sess.Step(); i++ {
		if ctx.Err() != nil {
			return mcp.NewToolResultError(ctx.Err().Error()), nil
		}
	}

	nodes := sess.Model().Nodes()
	out := make([]NodePosition, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, NodePosition{
			ID:   n.ID,
			Type: n.Type,
			X:    math.Round(n.Pos.X*10) / 10,
			Y:    math.Round(n.Pos.Y*10) / 10,
		})
	}

	data, err := json.Marshal(out)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal layout: %w", err)
	}
	return mcp.NewToolResultText(string(data)), nil
}

func (s *Server) handleGetPrompt(ctx context.Context, request mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	name := request.Params.Name
	if name != "graphscope-aware" {
		return nil, fmt.Errorf("prompt not found: %s", name)
	}

	promptText := `You are looking at a graph of a software company.

Node types:
- Team: a group of members that owns projects.
- Project: a body of work owned by a team.
- Ticket: a unit of work inside a project (ids like FE-101).
- Member: a person on a team.
- SystemUser: an automated account (bots, CI).

Edge types:
- HAS_PROJECT (Team -> Project), HAS_TICKET (Project -> Ticket)
- ASSIGNED_TO (Member -> Ticket), MEMBER_OF (Member -> Team)
- BLOCKED_BY (Ticket -> Ticket)

Use 'graph_stats' for an overview and 'describe_node' to follow connections.
`

	return mcp.NewGetPromptResult(
		"graphscope-aware",
		[]mcp.PromptMessage{
			mcp.NewPromptMessage(mcp.RoleUser, mcp.NewTextContent(promptText)),
		},
	), nil
}

func (s *Server) stats(ctx context.Context) (GraphStats, error) {
	p, err := s.source.GetGraph(ctx)
	if err != nil {
		return GraphStats{}, fmt.Errorf("failed to fetch graph: %w", err)
	}
	m := graph.NewModel(p)
	st := GraphStats{
		Nodes:      m.Len(),
		Edges:      m.EdgeCount(),
		Dangling:   m.DanglingCount(),
		ByNodeType: make(map[graph.NodeType]int),
		ByEdgeType: make(map[graph.EdgeType]int),
	}
	for _, n := range m.Nodes() {
		st.ByNodeType[n.Type]++
	}
	for _, e := range m.Edges() {
		st.ByEdgeType[e.Type]++
	}
	return st, nil
}
