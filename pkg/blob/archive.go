package blob

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"path"
	"slices"
	"strconv"
	"strings"

	"github.com/rmax-ai/graphscope/pkg/graph"
)

const revisionPrefix = "revisions/"

// Archive keeps the payload of every stored dataset revision so an older
// dataset can be served again. Only the newest Keep revisions are retained;
// a Keep of zero or less keeps everything.
type Archive struct {
	store Store
	Keep  int
}

// NewArchive returns an archive over st keeping the newest keep revisions.
func NewArchive(st Store, keep int) *Archive {
	return &Archive{store: st, Keep: keep}
}

func revisionKey(rev int64) string {
	return fmt.Sprintf("%s%012d.json", revisionPrefix, rev)
}

// Save stores p as revision rev and prunes old revisions.
func (a *Archive) Save(ctx context.Context, rev int64, p *graph.Payload) error {
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("failed to marshal revision %d: %w", rev, err)
	}
	if err := a.store.Put(ctx, revisionKey(rev), bytes.NewReader(data)); err != nil {
		return err
	}
	return a.prune(ctx)
}

// Load returns revision rev.
func (a *Archive) Load(ctx context.Context, rev int64) (*graph.Payload, error) {
	rc, err := a.store.Get(ctx, revisionKey(rev))
	if err != nil {
		return nil, fmt.Errorf("revision %d: %w", rev, err)
	}
	defer rc.Close()

	var p graph.Payload
	if err := json.NewDecoder(rc).Decode(&p); err != nil {
		return nil, fmt.Errorf("failed to decode revision %d: %w", rev, err)
	}
	return &p, nil
}

// Revisions lists archived revisions, oldest first.
func (a *Archive) Revisions(ctx context.Context) ([]int64, error) {
	keys, err := a.store.List(ctx, revisionPrefix)
	if err != nil {
		return nil, err
	}
	revs := make([]int64, 0, len(keys))
	for _, k := range keys {
		name := strings.TrimSuffix(path.Base(k), ".json")
		rev, err := strconv.ParseInt(name, 10, 64)
		if err != nil {
			continue
		}
		revs = append(revs, rev)
	}
	slices.Sort(revs)
	return revs, nil
}

func (a *Archive) prune(ctx context.Context) error {
	if a.Keep <= 0 {
		return nil
	}
	revs, err := a.Revisions(ctx)
	if err != nil {
		return err
	}
	for len(revs) > a.Keep {
		if err := a.store.Delete(ctx, revisionKey(revs[0])); err != nil {
			return err
		}
		revs = revs[1:]
	}
	return nil
}
