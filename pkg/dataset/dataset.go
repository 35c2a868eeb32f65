// Package dataset generates a synthetic "virtual company" graph: teams own
// projects, projects hold tickets, members belong to teams and work tickets,
// and some tickets block others.
package dataset

import (
	"fmt"
	"math/rand"

	"github.com/rmax-ai/graphscope/pkg/graph"
)

// Config sizes the generated company.
type Config struct {
	Teams             int     `json:"teams"`
	ProjectsPerTeam   int     `json:"projects_per_team"`
	TicketsPerProject int     `json:"tickets_per_project"`
	MembersPerTeam    int     `json:"members_per_team"`
	SystemUsers       int     `json:"system_users"`
	BlockedRatio      float64 `json:"blocked_ratio"` // share of tickets blocked by another ticket
	// ExternalBlocker adds one BLOCKED_BY edge to a ticket owned by another
	// organisation, which is therefore absent from the node set.
	ExternalBlocker bool  `json:"external_blocker"`
	Seed            int64 `json:"seed"`
}

// DefaultConfig is a small company that settles quickly.
func DefaultConfig() Config {
	return Config{
		Teams:             3,
		ProjectsPerTeam:   2,
		TicketsPerProject: 4,
		MembersPerTeam:    4,
		SystemUsers:       2,
		BlockedRatio:      0.15,
		ExternalBlocker:   true,
		Seed:              1,
	}
}

var (
	teamNames   = []string{"Alpha", "Bravo", "Platform", "Payments", "Growth", "Mobile", "Data", "Identity"}
	projectWord = []string{"Apollo", "Atlas", "Borealis", "Comet", "Drift", "Ember", "Falcon", "Gemini", "Helix", "Ion"}
	firstNames  = []string{"Alice", "Bob", "Charlie", "Dave", "Eve", "Farah", "Gus", "Hana", "Ivan", "Jo", "Kemal", "Lena"}
	roles       = []string{"Junior", "Senior", "Staff", "Manager"}
	statuses    = []string{"TODO", "IN_PROGRESS", "IN_REVIEW", "DONE"}
	botNames    = []string{"ci-bot", "dependabot", "release-bot", "triage-bot"}
	ticketKinds = []string{"Fix", "Add", "Refactor", "Investigate", "Document", "Migrate"}
	ticketAreas = []string{"login flow", "billing export", "search ranking", "rate limits", "onboarding", "audit log", "SSO", "dark mode"}
)

// Generate builds the dataset for cfg. The same config always yields the
// same payload.
func Generate(cfg Config) *graph.Payload {
	rng := rand.New(rand.NewSource(cfg.Seed))
	p := &graph.Payload{}
	node := func(id string, label graph.NodeType, name string, props map[string]any) {
		p.Nodes = append(p.Nodes, graph.PayloadNode{ID: id, Label: label, Name: name, Props: props})
	}
	edge := func(src, dst string, t graph.EdgeType) {
		p.Edges = append(p.Edges, graph.PayloadEdge{Source: src, Target: dst, Type: t})
	}

	var tickets, assignees []string
	ticketSeq := 100
	for ti := 0; ti < cfg.Teams; ti++ {
		teamID := fmt.Sprintf("TEAM-%d", ti+1)
		node(teamID, graph.NodeTeam, "Team "+pick(teamNames, ti), map[string]any{"size": cfg.MembersPerTeam})

		var teamMembers []string
		for mi := 0; mi < cfg.MembersPerTeam; mi++ {
			id := fmt.Sprintf("USER-%d-%d", ti+1, mi+1)
			first := firstNames[rng.Intn(len(firstNames))]
			node(id, graph.NodeMember, fmt.Sprintf("%s %c.", first, 'A'+rune(rng.Intn(26))), map[string]any{
				"role":       roles[rng.Intn(len(roles))],
				"department": pick(teamNames, ti),
			})
			edge(id, teamID, graph.EdgeMemberOf)
			teamMembers = append(teamMembers, id)
		}
		assignees = append(assignees, teamMembers...)

		for pi := 0; pi < cfg.ProjectsPerTeam; pi++ {
			projID := fmt.Sprintf("PROJ-%d-%d", ti+1, pi+1)
			node(projID, graph.NodeProject, pick(projectWord, ti*cfg.ProjectsPerTeam+pi), map[string]any{"status": "active"})
			edge(teamID, projID, graph.EdgeHasProject)

			for k := 0; k < cfg.TicketsPerProject; k++ {
				ticketSeq++
				id := fmt.Sprintf("FE-%d", ticketSeq)
				title := ticketKinds[rng.Intn(len(ticketKinds))] + " " + ticketAreas[rng.Intn(len(ticketAreas))]
				node(id, graph.NodeTicket, "", map[string]any{
					"title":  title,
					"status": statuses[rng.Intn(len(statuses))],
					"points": 1 + rng.Intn(8),
				})
				edge(projID, id, graph.EdgeHasTicket)
				if len(teamMembers) > 0 {
					edge(teamMembers[rng.Intn(len(teamMembers))], id, graph.EdgeAssignedTo)
				}
				tickets = append(tickets, id)
			}
		}
	}

	for si := 0; si < cfg.SystemUsers; si++ {
		id := fmt.Sprintf("BOT-%d", si+1)
		node(id, graph.NodeSystemUser, pick(botNames, si), map[string]any{"kind": "automation"})
		if len(tickets) > 0 {
			edge(id, tickets[rng.Intn(len(tickets))], graph.EdgeAssignedTo)
		}
	}

	if len(tickets) > 1 && cfg.BlockedRatio > 0 {
		for i, id := range tickets {
			if rng.Float64() >= cfg.BlockedRatio {
				continue
			}
			j := rng.Intn(len(tickets) - 1)
			if j >= i {
				j++
			}
			edge(id, tickets[j], graph.EdgeBlockedBy)
		}
	}
	if cfg.ExternalBlocker && len(tickets) > 0 {
		edge(tickets[0], "BE-99", graph.EdgeBlockedBy)
	}
	return p
}

// pick cycles through names, adding a numeric suffix once they run out.
func pick(names []string, i int) string {
	n := names[i%len(names)]
	if round := i / len(names); round > 0 {
		n = fmt.Sprintf("%s %d", n, round+1)
	}
	return n
}
