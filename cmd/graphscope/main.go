package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rmax-ai/graphscope/pkg/client"
	"github.com/rmax-ai/graphscope/pkg/dataset"
	"github.com/rmax-ai/graphscope/pkg/graph"
	"github.com/rmax-ai/graphscope/pkg/mcp"
	"github.com/rmax-ai/graphscope/pkg/render"
	"github.com/rmax-ai/graphscope/pkg/reports"
	"github.com/rmax-ai/graphscope/pkg/viewer"
)

var (
	Version   = "v1.0.0"
	Commit    = "unknown"
	BuildTime = "unknown"
)

const usage = `Usage: graphscope <command> [flags]

Commands:
  seed      generate a synthetic company graph and upload it
  stats     print node and edge counts of the served graph
  export    write the served graph's nodes or edges as CSV
  settle    run the force layout headless until it settles
  mcp       serve the graph over MCP on stdio
  version   print version information
`

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		fmt.Fprint(stderr, usage)
		return 2
	}

	var err error
	switch args[0] {
	case "seed":
		err = runSeed(ctx, args[1:], stdout)
	case "stats":
		err = runStats(ctx, args[1:], stdout)
	case "export":
		err = runExport(ctx, args[1:], stdout)
	case "settle":
		err = runSettle(ctx, args[1:], stdout)
	case "mcp":
		err = runMCP(args[1:])
	case "version":
		fmt.Fprintf(stdout, "graphscope %s (commit %s, built %s)\n", Version, Commit, BuildTime)
	case "help", "-h", "--help":
		fmt.Fprint(stdout, usage)
	default:
		fmt.Fprintf(stderr, "unknown command %q\n\n%s", args[0], usage)
		return 2
	}

	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

func newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet("graphscope "+name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}

func endpointFlag(fs *flag.FlagSet) *string {
	ep := os.Getenv("GRAPHSCOPE_ENDPOINT")
	if ep == "" {
		ep = client.DefaultEndpoint
	}
	return fs.String("endpoint", ep, "graphscope-d base URL")
}

func parse(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			fs.SetOutput(os.Stdout)
			fs.PrintDefaults()
		}
		return err
	}
	return nil
}

func runSeed(ctx context.Context, args []string, stdout io.Writer) error {
	def := dataset.DefaultConfig()
	fs := newFlagSet("seed")
	endpoint := endpointFlag(fs)
	token := fs.String("token", os.Getenv("GRAPHSCOPE_WRITE_TOKEN"), "bearer token for uploads")
	seed := fs.Int64("seed", def.Seed, "random seed")
	teams := fs.Int("teams", def.Teams, "number of teams")
	projects := fs.Int("projects", def.ProjectsPerTeam, "projects per team")
	tickets := fs.Int("tickets", def.TicketsPerProject, "tickets per project")
	members := fs.Int("members", def.MembersPerTeam, "members per team")
	bots := fs.Int("system-users", def.SystemUsers, "number of system users")
	blocked := fs.Float64("blocked", def.BlockedRatio, "share of tickets blocked by another ticket")
	external := fs.Bool("external-blocker", def.ExternalBlocker, "add one BLOCKED_BY edge to a ticket outside the dataset")
	dryRun := fs.Bool("dry-run", false, "print the generated graph instead of uploading it")
	if err := parse(fs, args); err != nil {
		return err
	}

	cfg := dataset.Config{
		Teams:             *teams,
		ProjectsPerTeam:   *projects,
		TicketsPerProject: *tickets,
		MembersPerTeam:    *members,
		SystemUsers:       *bots,
		BlockedRatio:      *blocked,
		ExternalBlocker:   *external,
		Seed:              *seed,
	}
	p := dataset.Generate(cfg)

	if *dryRun {
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(p)
	}

	res, err := client.NewClient(*endpoint).WithToken(*token).PutGraph(ctx, p)
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "Uploaded revision %d: %d nodes, %d edges\n", res.Revision, res.Nodes, res.Edges)
	for _, w := range res.Warnings {
		fmt.Fprintf(stdout, "warning: %s\n", w)
	}
	return nil
}

func runStats(ctx context.Context, args []string, stdout io.Writer) error {
	fs := newFlagSet("stats")
	endpoint := endpointFlag(fs)
	asJSON := fs.Bool("json", false, "print JSON")
	if err := parse(fs, args); err != nil {
		return err
	}

	p, err := client.NewClient(*endpoint).GetGraph(ctx)
	if err != nil {
		return err
	}
	m := graph.NewModel(p)

	if *asJSON {
		st := struct {
			viewer.Stats
			Dangling int `json:"dangling"`
		}{
			Stats:    viewer.Stats{Nodes: m.Len(), Edges: m.EdgeCount(), Types: m.Types()},
			Dangling: m.DanglingCount(),
		}
		return json.NewEncoder(stdout).Encode(st)
	}

	byType := make(map[graph.NodeType]int)
	for _, n := range m.Nodes() {
		byType[n.Type]++
	}
	fmt.Fprintf(stdout, "Nodes: %d\n", m.Len())
	for _, t := range m.Types() {
		fmt.Fprintf(stdout, "  %-12s %d\n", t, byType[t])
	}
	fmt.Fprintf(stdout, "Edges: %d (dangling: %d)\n", m.EdgeCount(), m.DanglingCount())
	return nil
}

func runExport(ctx context.Context, args []string, stdout io.Writer) error {
	fs := newFlagSet("export")
	endpoint := endpointFlag(fs)
	kind := fs.String("kind", string(reports.ReportTypeNodes), "table to export: nodes|edges")
	if err := parse(fs, args); err != nil {
		return err
	}

	gen, err := reports.NewReportGenerator(reports.ReportType(*kind))
	if err != nil {
		return err
	}
	p, err := client.NewClient(*endpoint).GetGraph(ctx)
	if err != nil {
		return err
	}
	r, err := gen.Generate(ctx, p)
	if err != nil {
		return err
	}
	_, err = io.Copy(stdout, r)
	return err
}

// runSettle lays the graph out on a background loop, the same way the
// viewer does, and reports when it comes to rest.
func runSettle(ctx context.Context, args []string, stdout io.Writer) error {
	fs := newFlagSet("settle")
	endpoint := endpointFlag(fs)
	fps := fs.Int("fps", 240, "simulation ticks per second")
	seed := fs.Int64("seed", 1, "seed for the initial placement")
	timeout := fs.Duration("timeout", 30*time.Second, "give up after this long")
	cols := fs.Int("cols", 100, "width of the printed picture in cells (0 disables it)")
	rows := fs.Int("rows", 30, "height of the printed picture in cells")
	verbose := fs.Bool("v", false, "log progress to stderr")
	if err := parse(fs, args); err != nil {
		return err
	}
	if *fps <= 0 {
		return errors.New("fps must be positive")
	}

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	if *verbose {
		log = slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}

	p, err := client.NewClient(*endpoint).GetGraph(ctx)
	if err != nil {
		return err
	}

	w, h := 1200.0, 800.0
	if *cols > 0 && *rows > 0 {
		w, h = render.SurfaceSize(*cols, *rows)
	}
	sess := viewer.NewSession(w, h, viewer.Options{
		Logger: log,
		Rand:   rand.New(rand.NewSource(*seed)),
	})
	sess.Load(p)

	ctx, cancel := context.WithTimeout(ctx, *timeout)
	defer cancel()

	settled := make(chan struct{})
	frames := 0
	loop := viewer.NewLoop(sess, *fps, func(render.Frame) {
		frames++
		if sess.Settled() {
			select {
			case <-settled:
			default:
				close(settled)
			}
		}
	})
	loop.Start(ctx)
	defer loop.Stop()

	start := time.Now()
	select {
	case <-settled:
	case <-ctx.Done():
		return fmt.Errorf("layout did not settle: %w", ctx.Err())
	}

	var frame render.Frame
	var n int
	if err := loop.Do(ctx, func(s *viewer.Session) {
		s.FitAll()
		frame = s.Frame()
		n = frames
	}); err != nil {
		return err
	}
	loop.Stop()

	fmt.Fprintf(stdout, "Settled after %d ticks in %s: %d nodes, %d edges drawn\n",
		n, time.Since(start).Round(time.Millisecond), len(frame.Nodes), len(frame.Edges))
	if *cols > 0 && *rows > 0 {
		c := render.NewCanvas(*cols, *rows)
		c.Draw(frame)
		fmt.Fprintln(stdout, c.String())
	}
	return nil
}

func runMCP(args []string) error {
	fs := newFlagSet("mcp")
	endpoint := endpointFlag(fs)
	if err := parse(fs, args); err != nil {
		return err
	}
	return mcp.NewServer(client.NewClient(*endpoint), Version).Serve()
}
