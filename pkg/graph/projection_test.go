package graph

import "testing"

func TestProjection_SwapBumpsGeneration(t *testing.T) {
	proj := NewProjection()

	if m, gen := proj.Current(); m != nil || gen != 0 {
		t.Fatalf("expected empty projection at gen 0, got %v at %d", m, gen)
	}

	first := NewModel(&Payload{Nodes: []PayloadNode{{ID: "a", Label: NodeTeam}}})
	gen1 := proj.Swap(first)
	if !proj.IsCurrent(gen1) {
		t.Fatalf("generation %d should be current", gen1)
	}

	second := NewModel(&Payload{})
	gen2 := proj.Swap(second)
	if gen2 <= gen1 {
		t.Fatalf("expected generation to increase, got %d after %d", gen2, gen1)
	}
	if proj.IsCurrent(gen1) {
		t.Error("old generation must be stale after swap")
	}

	m, gen := proj.Current()
	if m != second || gen != gen2 {
		t.Errorf("Current() = (%p, %d), want (%p, %d)", m, gen, second, gen2)
	}
}

func TestProjection_ClearedIsNeverCurrent(t *testing.T) {
	proj := NewProjection()
	proj.Swap(NewModel(&Payload{}))
	gen := proj.Swap(nil)
	if proj.IsCurrent(gen) {
		t.Error("a cleared projection has no current generation")
	}
}
