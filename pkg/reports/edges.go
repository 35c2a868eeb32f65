package reports

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/rmax-ai/graphscope/pkg/graph"
)

// EdgeReport writes one row per edge, dangling ones included and flagged.
type EdgeReport struct{}

func (r *EdgeReport) Generate(ctx context.Context, p *graph.Payload) (io.Reader, error) {
	buf := &bytes.Buffer{}
	writer := csv.NewWriter(buf)

	headers := []string{"source", "source_name", "type", "target", "target_name", "dangling"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write headers: %w", err)
	}

	m := graph.NewModel(p)
	name := func(id string) string {
		if i, ok := m.Lookup(id); ok {
			return m.Node(i).Name
		}
		return ""
	}

	for _, e := range m.Edges() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		record := []string{
			e.Source,
			name(e.Source),
			string(e.Type),
			e.Target,
			name(e.Target),
			strconv.FormatBool(e.Dangling()),
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
