package main

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/rmax-ai/graphscope/pkg/graph"
	"github.com/rmax-ai/graphscope/pkg/render"
)

// Styles
var (
	subtleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	okStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	titleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Bold(true)
	boldStyle   = lipgloss.NewStyle().Bold(true)

	paneStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")).
			Padding(0, 1)
)

func (m model) View() string {
	if !m.ready {
		return fmt.Sprintf("\n %s Loading graph…", m.spinner.View())
	}

	body := m.canvasView()
	if m.sidebar {
		body = lipgloss.JoinHorizontal(lipgloss.Top, body, m.sidebarView())
	}
	return lipgloss.JoinVertical(lipgloss.Left, m.headerView(), body, m.footerView())
}

func (m model) headerView() string {
	title := titleStyle.Render("graphscope")
	var status string
	switch {
	case m.loading:
		status = fmt.Sprintf("%s Loading graph…", m.spinner.View())
	case m.sess.Err() != nil:
		status = errorStyle.Render("Offline")
	default:
		st := m.sess.Stats()
		status = okStyle.Render(fmt.Sprintf("%d nodes • %d edges", st.Nodes, st.Edges))
		if !m.sess.Settled() {
			status += subtleStyle.Render(" • settling")
		}
	}
	zoom := subtleStyle.Render(fmt.Sprintf("zoom %.0f%%", m.sess.Camera().Zoom*100))
	return lipgloss.NewStyle().MaxWidth(m.width).Render(title + "  " + status + "  " + zoom)
}

func (m model) canvasView() string {
	box := lipgloss.NewStyle().Width(m.cols).Height(m.rows).MaxHeight(m.rows)

	if err := m.sess.Err(); err != nil && !m.loading {
		msg := errorStyle.Render("Failed to load graph: "+err.Error()) + "\n" +
			subtleStyle.Render("Press r to retry.")
		return box.Align(lipgloss.Center, lipgloss.Center).Render(msg)
	}
	if m.sess.Model() == nil {
		return box.Align(lipgloss.Center, lipgloss.Center).
			Render(fmt.Sprintf("%s Loading graph…", m.spinner.View()))
	}

	c := render.NewCanvas(m.cols, m.rows)
	c.Draw(m.sess.Frame())
	return strings.Join(c.Lines(), "\n")
}

func (m model) sidebarView() string {
	inner := sidebarWidth - 2
	content := lipgloss.JoinVertical(lipgloss.Left, legendView(), m.viewport.View())
	return lipgloss.NewStyle().Width(inner).Height(m.rows).MaxHeight(m.rows).
		BorderStyle(lipgloss.NormalBorder()).BorderLeft(true).
		BorderForeground(lipgloss.Color("238")).
		Render(content)
}

func (m model) footerView() string {
	help := "drag node: move • drag background: pan • wheel / + -: zoom • f: fit • r: reload • q: quit"
	return subtleStyle.MaxWidth(m.width).Render(help)
}

// legendView lists node and edge types with their colours.
func legendView() string {
	var b strings.Builder
	b.WriteString(boldStyle.Render("Nodes") + "\n")
	for _, t := range graph.NodeTypes() {
		st := t.Style()
		dot := lipgloss.NewStyle().Foreground(lipgloss.Color(st.Color)).Render("● " + st.Glyph)
		fmt.Fprintf(&b, "%s %s\n", dot, t)
	}
	b.WriteString(boldStyle.Render("Edges") + "\n")
	for _, t := range graph.EdgeTypes() {
		st := t.Style()
		line := "──"
		if st.Dashed {
			line = "╌╌"
		}
		fmt.Fprintf(&b, "%s %s\n", lipgloss.NewStyle().Foreground(lipgloss.Color(st.Color)).Render(line), t.Label())
	}
	return b.String()
}

func legendHeight() int {
	return len(graph.NodeTypes()) + len(graph.EdgeTypes()) + 3
}

// renderDetails formats a node panel: header, props and connections.
func renderDetails(d graph.Details, width int) string {
	st := d.Type.Style()
	var b strings.Builder

	name := lipgloss.NewStyle().Foreground(lipgloss.Color(st.Color)).Bold(true).Render(d.Name)
	b.WriteString(name + "\n")
	b.WriteString(subtleStyle.Render(fmt.Sprintf("%s • %s", d.Type, d.ID)) + "\n\n")

	if len(d.Props) > 0 {
		for _, k := range slices.Sorted(maps.Keys(d.Props)) {
			fmt.Fprintf(&b, "%s %v\n", subtleStyle.Render(k+":"), d.Props[k])
		}
		b.WriteString("\n")
	}

	b.WriteString(boldStyle.Render(fmt.Sprintf("Connections (%d)", len(d.Connections))) + "\n")
	for _, c := range d.Connections {
		rel := lipgloss.NewStyle().Foreground(lipgloss.Color(c.Type.Style().Color)).Render(c.Type.Label())
		fmt.Fprintf(&b, "%s %s %s\n", c.Direction.Arrow(), rel, c.NeighborName)
	}
	return paneStyle.Width(width - 2).Render(strings.TrimRight(b.String(), "\n"))
}
