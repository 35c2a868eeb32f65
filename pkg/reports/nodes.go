package reports

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/rmax-ai/graphscope/pkg/graph"
)

// NodeReport writes one row per node with its in and out degree. Props are
// a JSON object in the last column.
type NodeReport struct{}

func (r *NodeReport) Generate(ctx context.Context, p *graph.Payload) (io.Reader, error) {
	buf := &bytes.Buffer{}
	writer := csv.NewWriter(buf)

	headers := []string{"id", "label", "name", "in_degree", "out_degree", "props"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write headers: %w", err)
	}

	m := graph.NewModel(p)
	in := make([]int, m.Len())
	out := make([]int, m.Len())
	for _, e := range m.Edges() {
		if e.Dangling() {
			continue
		}
		out[e.From]++
		in[e.To]++
	}

	for i, n := range m.Nodes() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		props := ""
		if len(n.Props) > 0 {
			// encoding/json sorts map keys.
			data, err := json.Marshal(n.Props)
			if err != nil {
				return nil, fmt.Errorf("failed to encode props of %s: %w", n.ID, err)
			}
			props = string(data)
		}
		record := []string{
			n.ID,
			string(n.Type),
			n.Name,
			strconv.Itoa(in[i]),
			strconv.Itoa(out[i]),
			props,
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("csv writer error: %w", err)
	}
	return buf, nil
}
