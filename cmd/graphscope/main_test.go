package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rmax-ai/graphscope/pkg/api"
	"github.com/rmax-ai/graphscope/pkg/graph"
	"github.com/rmax-ai/graphscope/pkg/store"
)

func newDaemon(t *testing.T, token string) string {
	t.Helper()
	st, err := store.NewStore(filepath.Join(t.TempDir(), "cli.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	srv := api.NewServer(st, "")
	srv.SetWriteToken(token)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts.URL
}

func runCLI(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(context.Background(), args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestRun_Usage(t *testing.T) {
	code, _, stderr := runCLI(t)
	assert.Equal(t, 2, code)
	assert.Contains(t, stderr, "Usage: graphscope")

	code, _, stderr = runCLI(t, "frobnicate")
	assert.Equal(t, 2, code)
	assert.Contains(t, stderr, `unknown command "frobnicate"`)

	code, stdout, _ := runCLI(t, "version")
	assert.Equal(t, 0, code)
	assert.Contains(t, stdout, Version)
}

func TestSeed_DryRun(t *testing.T) {
	code, stdout, stderr := runCLI(t, "seed", "-dry-run", "-teams", "2", "-seed", "9")
	require.Equal(t, 0, code, stderr)

	var p graph.Payload
	require.NoError(t, json.Unmarshal([]byte(stdout), &p))
	assert.NotEmpty(t, p.Nodes)

	teams := 0
	for _, n := range p.Nodes {
		if n.Label == graph.NodeTeam {
			teams++
		}
	}
	assert.Equal(t, 2, teams)
}

func TestSeedThenStats(t *testing.T) {
	url := newDaemon(t, "")

	code, stdout, stderr := runCLI(t, "seed", "-endpoint", url, "-seed", "5")
	require.Equal(t, 0, code, stderr)
	assert.Contains(t, stdout, "Uploaded revision 1")

	code, stdout, stderr = runCLI(t, "stats", "-endpoint", url)
	require.Equal(t, 0, code, stderr)
	assert.Contains(t, stdout, "Nodes: ")
	assert.Contains(t, stdout, "Team")
	assert.Contains(t, stdout, "dangling: 1")

	code, stdout, _ = runCLI(t, "stats", "-endpoint", url, "-json")
	require.Equal(t, 0, code)
	var st struct {
		Nodes    int              `json:"nodes"`
		Edges    int              `json:"edges"`
		Types    []graph.NodeType `json:"types"`
		Dangling int              `json:"dangling"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &st))
	assert.Positive(t, st.Nodes)
	assert.Equal(t, 1, st.Dangling)
	assert.Contains(t, st.Types, graph.NodeTicket)
}

func TestSeed_Token(t *testing.T) {
	url := newDaemon(t, "s3cret")

	code, _, stderr := runCLI(t, "seed", "-endpoint", url)
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "401")

	code, stdout, stderr := runCLI(t, "seed", "-endpoint", url, "-token", "s3cret")
	require.Equal(t, 0, code, stderr)
	assert.Contains(t, stdout, "Uploaded")
}

func TestSettle(t *testing.T) {
	url := newDaemon(t, "")
	code, _, stderr := runCLI(t, "seed", "-endpoint", url, "-teams", "1", "-projects", "1", "-tickets", "2", "-members", "1", "-system-users", "0")
	require.Equal(t, 0, code, stderr)

	code, stdout, stderr := runCLI(t, "settle", "-endpoint", url, "-fps", "1000", "-cols", "40", "-rows", "12")
	require.Equal(t, 0, code, stderr)
	assert.Contains(t, stdout, "Settled after")

	lines := strings.Split(strings.TrimRight(stdout, "\n"), "\n")
	assert.Len(t, lines, 1+12)
}

func TestSettle_BadFlags(t *testing.T) {
	code, _, stderr := runCLI(t, "settle", "-fps", "0")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "fps must be positive")
}

func TestExport(t *testing.T) {
	url := newDaemon(t, "")
	code, _, stderr := runCLI(t, "seed", "-endpoint", url, "-teams", "1", "-projects", "1", "-tickets", "2", "-members", "1", "-system-users", "0")
	require.Equal(t, 0, code, stderr)

	code, stdout, stderr := runCLI(t, "export", "-endpoint", url, "-kind", "edges")
	require.Equal(t, 0, code, stderr)
	assert.True(t, strings.HasPrefix(stdout, "source,source_name,type,target,target_name,dangling\n"))
	assert.Contains(t, stdout, "BE-99,,true")

	code, stdout, _ = runCLI(t, "export", "-endpoint", url)
	require.Equal(t, 0, code)
	assert.True(t, strings.HasPrefix(stdout, "id,label,name,in_degree,out_degree,props\n"))
	assert.Contains(t, stdout, "TEAM-1,Team,")

	code, _, stderr = runCLI(t, "export", "-endpoint", url, "-kind", "usage")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "unknown report type")
}
