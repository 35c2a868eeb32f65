package main

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/rmax-ai/graphscope/pkg/client"
	"github.com/rmax-ai/graphscope/pkg/graph"
	"github.com/rmax-ai/graphscope/pkg/render"
	"github.com/rmax-ai/graphscope/pkg/viewer"
)

const (
	headerRows   = 1
	footerRows   = 1
	sidebarWidth = 34
	// Below this terminal width the sidebar is hidden.
	sidebarMinWidth = 90
	fetchTimeout    = 15 * time.Second
)

// frameMsg is one tick of the frame clock. Ticks from an older epoch are
// dropped, so a reload never runs two clocks at once.
type frameMsg struct{ epoch uint64 }

// loadedMsg carries the result of fetch number seq. Results are applied in
// the order they arrive, so the last one to resolve wins.
type loadedMsg struct {
	seq     uint64
	payload *graph.Payload
	err     error
}

type model struct {
	src      client.GraphSource
	sess     *viewer.Session
	log      *slog.Logger
	interval time.Duration

	spinner  spinner.Model
	viewport viewport.Model

	width, height int
	cols, rows    int
	sidebar       bool

	seq      uint64
	resolved uint64 // highest seq that has arrived
	epoch    uint64
	loading  bool
	pending  *loadedMsg
	inside   bool
	ready    bool
}

func newModel(src client.GraphSource, fps int, log *slog.Logger) model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	if fps <= 0 {
		fps = defaultFPS
	}
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return model{
		src:      src,
		sess:     viewer.NewSession(0, 0, viewer.Options{Logger: log}),
		log:      log,
		interval: time.Second / time.Duration(fps),
		spinner:  s,
		viewport: viewport.New(sidebarWidth-2, 1),
		seq:      1,
		loading:  true,
	}
}

func (m model) Init() tea.Cmd {
	return tea.Batch(
		m.spinner.Tick,
		fetchGraph(m.src, m.seq),
		m.frame(),
	)
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var (
		cmd  tea.Cmd
		cmds []tea.Cmd
	)

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "r":
			m.seq++
			m.loading = true
			return m, tea.Batch(m.spinner.Tick, fetchGraph(m.src, m.seq))
		case "+", "=":
			m.sess.ZoomIn()
		case "-", "_":
			m.sess.ZoomOut()
		case "f":
			m.sess.FitAll()
		default:
			m.viewport, cmd = m.viewport.Update(msg)
			cmds = append(cmds, cmd)
		}
		return m, tea.Batch(cmds...)

	case tea.MouseMsg:
		m.handleMouse(msg)
		return m, nil

	case spinner.TickMsg:
		if m.loading {
			m.spinner, cmd = m.spinner.Update(msg)
			cmds = append(cmds, cmd)
		}

	case frameMsg:
		if msg.epoch != m.epoch {
			return m, nil
		}
		m.sess.Step()
		return m, m.frame()

	case loadedMsg:
		if msg.seq < m.resolved {
			m.log.Debug("older load resolved late", "seq", msg.seq, "resolved", m.resolved)
		}
		m.resolved = max(m.resolved, msg.seq)
		m.loading = m.resolved < m.seq
		if !m.ready {
			m.pending = &msg
			return m, nil
		}
		return m, m.apply(msg)

	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		if !m.ready {
			m.ready = true
			if m.pending != nil {
				p := *m.pending
				m.pending = nil
				return m, m.apply(p)
			}
		}
	}

	return m, tea.Batch(cmds...)
}

// apply installs a fetch result and restarts the frame clock.
func (m *model) apply(msg loadedMsg) tea.Cmd {
	m.inside = false
	if msg.err != nil {
		m.sess.SetError(msg.err)
	} else {
		m.sess.Load(msg.payload)
	}
	m.epoch++
	m.refreshDetails()
	return m.frame()
}

func (m *model) resize(width, height int) {
	m.width, m.height = width, height
	m.sidebar = width >= sidebarMinWidth
	m.cols = width
	if m.sidebar {
		m.cols = width - sidebarWidth
	}
	m.rows = max(height-headerRows-footerRows, 1)
	m.sess.Resize(render.SurfaceSize(m.cols, m.rows))

	m.viewport.Width = sidebarWidth - 2
	m.viewport.Height = max(m.rows-legendHeight(), 1)
}

// handleMouse maps terminal cells to surface points at the cell centre.
func (m *model) handleMouse(msg tea.MouseMsg) {
	col, row := msg.X, msg.Y-headerRows
	if col < 0 || row < 0 || col >= m.cols || row >= m.rows {
		if m.inside {
			m.inside = false
			m.sess.PointerLeave()
			m.refreshDetails()
		}
		return
	}
	m.inside = true
	p := render.CellCenter(col, row)

	switch {
	case msg.Button == tea.MouseButtonWheelUp:
		m.sess.Wheel(p, true)
	case msg.Button == tea.MouseButtonWheelDown:
		m.sess.Wheel(p, false)
	case msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft:
		m.sess.PointerDown(p)
	case msg.Action == tea.MouseActionRelease:
		m.sess.PointerUp()
	case msg.Action == tea.MouseActionMotion:
		m.sess.PointerMove(p)
	}
	m.refreshDetails()
}

// refreshDetails shows the selected node, or the hovered one when nothing
// is selected.
func (m *model) refreshDetails() {
	d, ok := m.sess.Selected()
	if !ok {
		d, ok = m.sess.Hovered()
	}
	if !ok {
		m.viewport.SetContent(subtleStyle.Render("Click a node to see its details."))
		return
	}
	m.viewport.SetContent(renderDetails(d, m.viewport.Width))
}

func (m model) frame() tea.Cmd {
	epoch := m.epoch
	return tea.Tick(m.interval, func(time.Time) tea.Msg {
		return frameMsg{epoch: epoch}
	})
}

func fetchGraph(src client.GraphSource, seq uint64) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
		defer cancel()
		p, err := src.GetGraph(ctx)
		return loadedMsg{seq: seq, payload: p, err: err}
	}
}
