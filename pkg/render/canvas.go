package render

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/rmax-ai/graphscope/pkg/geom"
)

// A terminal cell covers CellWidth x CellHeight surface units.
const (
	CellWidth  = 8.0
	CellHeight = 16.0
)

type cell struct {
	r    rune
	fg   string
	bg   string
	bold bool
}

func (c cell) style() cellStyle { return cellStyle{fg: c.fg, bg: c.bg, bold: c.bold} }

type cellStyle struct {
	fg   string
	bg   string
	bold bool
}

// Canvas is a grid of styled terminal cells.
type Canvas struct {
	cols, rows int
	grid       [][]cell
}

// NewCanvas returns a blank cols x rows canvas.
func NewCanvas(cols, rows int) *Canvas {
	c := &Canvas{cols: max(cols, 0), rows: max(rows, 0)}
	c.grid = make([][]cell, c.rows)
	for y := range c.grid {
		c.grid[y] = make([]cell, c.cols)
	}
	c.Clear()
	return c
}

// SurfaceSize is the surface a cols x rows canvas represents.
func SurfaceSize(cols, rows int) (w, h float64) {
	return float64(cols) * CellWidth, float64(rows) * CellHeight
}

// CellCenter maps a cell to the surface point at its centre.
func CellCenter(col, row int) geom.Vec {
	return geom.V((float64(col)+0.5)*CellWidth, (float64(row)+0.5)*CellHeight)
}

// Size returns the grid dimensions.
func (c *Canvas) Size() (cols, rows int) { return c.cols, c.rows }

// Clear blanks every cell.
func (c *Canvas) Clear() {
	for y := range c.grid {
		for x := range c.grid[y] {
			c.grid[y][x] = cell{r: ' '}
		}
	}
}

// Draw rasterizes f on top of the current contents.
func (c *Canvas) Draw(f Frame) {
	for _, e := range f.Edges {
		c.drawEdge(e)
	}
	for _, e := range f.Edges {
		c.drawEdgeLabel(e)
	}
	for _, n := range f.Nodes {
		c.drawNode(n)
	}
	for _, e := range f.Edges {
		c.drawArrow(e)
	}
}

func (c *Canvas) drawEdge(e EdgeGlyph) {
	w, h := SurfaceSize(c.cols, c.rows)
	from, to, ok := clipSegment(e.From, e.To, -CellWidth, -CellHeight, w+CellWidth, h+CellHeight)
	if ok {
		x0, y0 := toCell(from)
		x1, y1 := toCell(to)
		line := lineRune(e.To.Sub(e.From), e.Width)
		step := 0
		bresenham(x0, y0, x1, y1, func(x, y int) {
			if !e.Dashed || step%3 != 2 {
				c.set(x, y, cell{r: line, fg: e.Color})
			}
			step++
		})
	}
}

// drawArrow puts the arrow glyph on the first free cell at or behind the
// tip. Cells are coarser than node radii, so the tip often lands inside
// the target disk.
func (c *Canvas) drawArrow(e EdgeGlyph) {
	d := e.To.Sub(e.From)
	if d.Len() == 0 {
		return
	}
	back := d.Scale(-CellWidth / d.Len())
	for k := 0; k < 4; k++ {
		x, y := toCell(e.Arrow[0].Add(back.Scale(float64(k))))
		if c.blankOrLine(x, y) {
			c.set(x, y, cell{r: arrowRune(d), fg: e.Color, bold: true})
			return
		}
	}
}

func (c *Canvas) drawEdgeLabel(e EdgeGlyph) {
	if e.Label == "" {
		return
	}
	x, y := toCell(e.LabelAt)
	runes := []rune(e.Label)
	x -= len(runes) / 2
	for i := range runes {
		if !c.blankOrLine(x+i, y) {
			return
		}
	}
	for i, r := range runes {
		c.set(x+i, y, cell{r: r, fg: ColorEdgeLabel})
	}
}

func (c *Canvas) drawNode(n NodeGlyph) {
	cx, cy := toCell(n.Center)
	if n.Ring > 0 {
		ringFg := n.Color
		if n.Selected {
			ringFg = n.Stroke
		}
		c.disk(n.Center, n.Ring, func(x, y int) {
			c.set(x, y, cell{r: '░', fg: ringFg})
		})
	}
	filled := false
	c.disk(n.Center, n.Radius, func(x, y int) {
		filled = true
		c.set(x, y, cell{r: ' ', bg: n.Color})
	})
	glyph := []rune(n.Glyph)
	if len(glyph) > 0 {
		bg := n.Color
		if !filled {
			bg = ""
		}
		fg := ColorGlyph
		if !filled {
			fg = n.Color
		}
		c.set(cx, cy, cell{r: glyph[0], fg: fg, bg: bg, bold: true})
	}
	if n.Name != "" {
		nx, ny := toCell(n.NameAt)
		if ny == cy {
			ny++
		}
		c.text(nx-len([]rune(n.Name))/2, ny, n.Name, ColorName)
	}
}

// disk visits every cell whose centre lies within radius of centre.
func (c *Canvas) disk(centre geom.Vec, radius float64, visit func(x, y int)) {
	if radius <= 0 || !centre.Finite() {
		return
	}
	x0 := int(math.Floor((centre.X - radius) / CellWidth))
	x1 := int(math.Floor((centre.X + radius) / CellWidth))
	y0 := int(math.Floor((centre.Y - radius) / CellHeight))
	y1 := int(math.Floor((centre.Y + radius) / CellHeight))
	x0, y0 = max(x0, 0), max(y0, 0)
	x1, y1 = min(x1, c.cols-1), min(y1, c.rows-1)
	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			if CellCenter(x, y).Dist(centre) <= radius {
				visit(x, y)
			}
		}
	}
}

func (c *Canvas) text(x, y int, s, fg string) {
	for i, r := range []rune(s) {
		c.set(x+i, y, cell{r: r, fg: fg})
	}
}

func (c *Canvas) set(x, y int, v cell) {
	if y < 0 || y >= c.rows || x < 0 || x >= c.cols {
		return
	}
	c.grid[y][x] = v
}

func (c *Canvas) blankOrLine(x, y int) bool {
	if y < 0 || y >= c.rows || x < 0 || x >= c.cols {
		return false
	}
	switch c.grid[y][x].r {
	case ' ', '─', '│', '╱', '╲', '━', '┃':
		return c.grid[y][x].bg == ""
	}
	return false
}

// Plain returns the rows without styling.
func (c *Canvas) Plain() []string {
	out := make([]string, c.rows)
	for y, row := range c.grid {
		var b strings.Builder
		for _, v := range row {
			b.WriteRune(v.r)
		}
		out[y] = b.String()
	}
	return out
}

// Lines returns the rows with lipgloss styling. Adjacent cells with the
// same style share one styled run.
func (c *Canvas) Lines() []string {
	out := make([]string, c.rows)
	for y, row := range c.grid {
		var b, run strings.Builder
		var cur cellStyle
		flush := func() {
			if run.Len() == 0 {
				return
			}
			b.WriteString(styleFor(cur).Render(run.String()))
			run.Reset()
		}
		for x, v := range row {
			if x == 0 || v.style() != cur {
				flush()
				cur = v.style()
			}
			run.WriteRune(v.r)
		}
		flush()
		out[y] = b.String()
	}
	return out
}

// String joins Lines with newlines.
func (c *Canvas) String() string { return strings.Join(c.Lines(), "\n") }

func styleFor(s cellStyle) lipgloss.Style {
	st := lipgloss.NewStyle()
	if s.fg != "" {
		st = st.Foreground(lipgloss.Color(hexRGB(s.fg)))
	}
	if s.bg != "" {
		st = st.Background(lipgloss.Color(hexRGB(s.bg)))
	}
	if s.bold {
		st = st.Bold(true)
	}
	return st
}

// hexRGB drops an alpha suffix from #rrggbbaa colours.
func hexRGB(c string) string {
	if len(c) == 9 && c[0] == '#' {
		return c[:7]
	}
	return c
}

func toCell(p geom.Vec) (int, int) {
	if !p.Finite() {
		return -1, -1
	}
	x := math.Floor(p.X / CellWidth)
	y := math.Floor(p.Y / CellHeight)
	const lim = 1 << 20
	x = math.Max(math.Min(x, lim), -lim)
	y = math.Max(math.Min(y, lim), -lim)
	return int(x), int(y)
}

// bresenham visits the cells of the segment (x0,y0)-(x1,y1), both ends
// included.
func bresenham(x0, y0, x1, y1 int, visit func(x, y int)) {
	dx := abs(x1 - x0)
	dy := -abs(y1 - y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	err := dx + dy
	for {
		visit(x0, y0)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
}

// clipSegment clips a-b to the box (Liang-Barsky).
func clipSegment(a, b geom.Vec, minX, minY, maxX, maxY float64) (geom.Vec, geom.Vec, bool) {
	if !a.Finite() || !b.Finite() {
		return a, b, false
	}
	d := b.Sub(a)
	t0, t1 := 0.0, 1.0
	clip := func(p, q float64) bool {
		if p == 0 {
			return q >= 0
		}
		r := q / p
		if p < 0 {
			if r > t1 {
				return false
			}
			t0 = math.Max(t0, r)
		} else {
			if r < t0 {
				return false
			}
			t1 = math.Min(t1, r)
		}
		return true
	}
	if !clip(-d.X, a.X-minX) || !clip(d.X, maxX-a.X) ||
		!clip(-d.Y, a.Y-minY) || !clip(d.Y, maxY-a.Y) {
		return a, b, false
	}
	return a.Add(d.Scale(t0)), a.Add(d.Scale(t1)), true
}

// lineRune picks the box-drawing rune closest to direction d, measured in
// cells rather than surface units.
func lineRune(d geom.Vec, width float64) rune {
	dx, dy := d.X/CellWidth, d.Y/CellHeight
	heavy := width >= 2
	switch {
	case math.Abs(dx) >= 2*math.Abs(dy):
		if heavy {
			return '━'
		}
		return '─'
	case math.Abs(dy) >= 2*math.Abs(dx):
		if heavy {
			return '┃'
		}
		return '│'
	case (dx > 0) == (dy > 0):
		return '╲'
	default:
		return '╱'
	}
}

var octantArrows = [8]rune{'→', '↘', '↓', '↙', '←', '↖', '↑', '↗'}

// arrowRune picks the arrow closest to direction d; y grows downwards.
func arrowRune(d geom.Vec) rune {
	if d.Len() == 0 {
		return '→'
	}
	oct := int(math.Round(d.Angle()/(math.Pi/4))) % 8
	if oct < 0 {
		oct += 8
	}
	return octantArrows[oct]
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
