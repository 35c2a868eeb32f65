package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rmax-ai/graphscope/pkg/graph"
)

const datasetKey = "current"

// ReplacePayload swaps the stored dataset for p in one transaction and bumps
// the revision. Node order and edge order are preserved.
func (s *Store) ReplacePayload(ctx context.Context, p *graph.Payload) (Info, error) {
	if p == nil {
		p = &graph.Payload{}
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Info{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM nodes`); err != nil {
		return Info{}, fmt.Errorf("failed to clear nodes: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM edges`); err != nil {
		return Info{}, fmt.Errorf("failed to clear edges: %w", err)
	}

	nodeStmt, err := tx.PrepareContext(ctx, `INSERT OR IGNORE INTO nodes (seq, id, label, name, props) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return Info{}, fmt.Errorf("failed to prepare node insert: %w", err)
	}
	defer nodeStmt.Close()

	nodes := 0
	for i, n := range p.Nodes {
		props := n.Props
		if props == nil {
			props = map[string]any{}
		}
		raw, err := json.Marshal(props)
		if err != nil {
			return Info{}, fmt.Errorf("failed to marshal props of %q: %w", n.ID, err)
		}
		res, err := nodeStmt.ExecContext(ctx, i, n.ID, string(n.Label), n.Name, string(raw))
		if err != nil {
			return Info{}, fmt.Errorf("failed to insert node %q: %w", n.ID, err)
		}
		if k, _ := res.RowsAffected(); k > 0 {
			nodes++
		}
	}

	edgeStmt, err := tx.PrepareContext(ctx, `INSERT INTO edges (seq, source, target, type) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return Info{}, fmt.Errorf("failed to prepare edge insert: %w", err)
	}
	defer edgeStmt.Close()

	for i, e := range p.Edges {
		if _, err := edgeStmt.ExecContext(ctx, i, e.Source, e.Target, string(e.Type)); err != nil {
			return Info{}, fmt.Errorf("failed to insert edge %s->%s: %w", e.Source, e.Target, err)
		}
	}

	now := time.Now().UTC()
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO dataset (key, revision, updated_at) VALUES (?, 1, ?)
		ON CONFLICT(key) DO UPDATE SET revision = revision + 1, updated_at = excluded.updated_at
	`, datasetKey, now); err != nil {
		return Info{}, fmt.Errorf("failed to bump revision: %w", err)
	}

	var rev int64
	if err := tx.QueryRowContext(ctx, `SELECT revision FROM dataset WHERE key = ?`, datasetKey).Scan(&rev); err != nil {
		return Info{}, fmt.Errorf("failed to read revision: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return Info{}, fmt.Errorf("failed to commit dataset: %w", err)
	}
	return Info{Revision: rev, Nodes: nodes, Edges: len(p.Edges), UpdatedAt: now}, nil
}

// querier is satisfied by *sql.DB and *sql.Tx.
type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// LoadPayload reads the stored dataset. It returns ErrNotFound when nothing
// has been stored yet; an explicitly stored empty dataset is not an error.
// All reads share one transaction so nodes and edges come from the same
// revision.
func (s *Store) LoadPayload(ctx context.Context) (*graph.Payload, error) {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{ReadOnly: true})
	if err != nil {
		return nil, fmt.Errorf("failed to begin read transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := readInfo(ctx, tx); err != nil {
		return nil, err
	}

	p := &graph.Payload{
		Nodes: []graph.PayloadNode{},
		Edges: []graph.PayloadEdge{},
	}

	rows, err := tx.QueryContext(ctx, `SELECT id, label, name, props FROM nodes ORDER BY seq ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query nodes: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var n graph.PayloadNode
		var label, raw string
		if err := rows.Scan(&n.ID, &label, &n.Name, &raw); err != nil {
			return nil, fmt.Errorf("failed to scan node: %w", err)
		}
		n.Label = graph.NodeType(label)
		if err := json.Unmarshal([]byte(raw), &n.Props); err != nil {
			return nil, fmt.Errorf("failed to unmarshal props of %q: %w", n.ID, err)
		}
		p.Nodes = append(p.Nodes, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate nodes: %w", err)
	}

	erows, err := tx.QueryContext(ctx, `SELECT source, target, type FROM edges ORDER BY seq ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query edges: %w", err)
	}
	defer erows.Close()

	for erows.Next() {
		var e graph.PayloadEdge
		var typ string
		if err := erows.Scan(&e.Source, &e.Target, &typ); err != nil {
			return nil, fmt.Errorf("failed to scan edge: %w", err)
		}
		e.Type = graph.EdgeType(typ)
		p.Edges = append(p.Edges, e)
	}
	if err := erows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate edges: %w", err)
	}

	return p, nil
}

// Info returns the revision and size of the stored dataset, ErrNotFound when
// nothing has been stored.
func (s *Store) Info(ctx context.Context) (Info, error) {
	return readInfo(ctx, s.db)
}

func readInfo(ctx context.Context, q querier) (Info, error) {
	var info Info
	err := q.QueryRowContext(ctx, `SELECT revision, updated_at FROM dataset WHERE key = ?`, datasetKey).
		Scan(&info.Revision, &info.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Info{}, ErrNotFound
	}
	if err != nil {
		return Info{}, fmt.Errorf("failed to read dataset info: %w", err)
	}
	if err := q.QueryRowContext(ctx, `SELECT COUNT(*) FROM nodes`).Scan(&info.Nodes); err != nil {
		return Info{}, fmt.Errorf("failed to count nodes: %w", err)
	}
	if err := q.QueryRowContext(ctx, `SELECT COUNT(*) FROM edges`).Scan(&info.Edges); err != nil {
		return Info{}, fmt.Errorf("failed to count edges: %w", err)
	}
	return info, nil
}
