package keygraph

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	pmerrors "github.com/tamirms/perfectmap/errors"
)

type treeEdge struct {
	From, To, Label uint32
}

func TestTreeIsAcyclic(t *testing.T) {
	g := New(6, 3)
	for _, e := range []treeEdge{{0, 1, 0}, {1, 2, 1}, {4, 5, 2}} {
		if err := g.InsertEdge(e.From, e.To, e.Label); err != nil {
			t.Fatalf("InsertEdge(%d, %d): %v", e.From, e.To, err)
		}
	}

	if !g.IsAcyclic() {
		t.Fatal("forest reported cyclic")
	}
	if got := g.NumVertices(); got != 5 {
		t.Errorf("NumVertices()=%d, want 5", got)
	}
	if got := g.NumEdges(); got != 3 {
		t.Errorf("NumEdges()=%d, want 3", got)
	}
	if got := g.Components(); got != 2 {
		t.Errorf("Components()=%d, want 2", got)
	}
	if got := g.Degree(1); got != 2 {
		t.Errorf("Degree(1)=%d, want 2", got)
	}
	if got := g.Degree(3); got != 0 {
		t.Errorf("Degree(3)=%d, want 0", got)
	}
}

func TestCycleDetected(t *testing.T) {
	g := New(4, 3)
	_ = g.InsertEdge(0, 1, 0)
	_ = g.InsertEdge(1, 2, 1)
	if !g.IsAcyclic() {
		t.Fatal("path reported cyclic")
	}
	if err := g.InsertEdge(2, 0, 2); err != nil {
		t.Fatalf("InsertEdge closing cycle: %v", err)
	}
	if g.IsAcyclic() {
		t.Fatal("triangle reported acyclic")
	}
}

func TestSelfLoopIsCycle(t *testing.T) {
	g := New(3, 1)
	if err := g.InsertEdge(2, 2, 0); err != nil {
		t.Fatalf("InsertEdge self loop: %v", err)
	}
	if g.IsAcyclic() {
		t.Fatal("self loop reported acyclic")
	}
	if got := g.Degree(2); got != 2 {
		t.Errorf("self loop Degree=%d, want 2", got)
	}
}

func TestDuplicateEdge(t *testing.T) {
	g := New(4, 2)
	if err := g.InsertEdge(1, 3, 0); err != nil {
		t.Fatal(err)
	}
	err := g.InsertEdge(3, 1, 1)
	if !errors.Is(err, pmerrors.ErrDuplicateEdge) {
		t.Fatalf("reversed duplicate: got %v, want ErrDuplicateEdge", err)
	}
	if g.NumEdges() != 1 {
		t.Fatalf("duplicate edge was stored: NumEdges()=%d", g.NumEdges())
	}
	if !g.IsAcyclic() {
		t.Fatal("rejected duplicate marked graph cyclic")
	}
}

func TestVertexOutOfRange(t *testing.T) {
	g := New(2, 1)
	if err := g.InsertVertex(2); !errors.Is(err, pmerrors.ErrVertexOutOfRange) {
		t.Fatalf("InsertVertex(2): got %v, want ErrVertexOutOfRange", err)
	}
	if err := g.InsertEdge(0, 5, 0); !errors.Is(err, pmerrors.ErrVertexOutOfRange) {
		t.Fatalf("InsertEdge(0, 5): got %v, want ErrVertexOutOfRange", err)
	}
}

func TestInsertVertexIdempotent(t *testing.T) {
	g := New(3, 0)
	_ = g.InsertVertex(1)
	_ = g.InsertVertex(1)
	if got := g.NumVertices(); got != 1 {
		t.Fatalf("NumVertices()=%d, want 1", got)
	}
	if got := g.Components(); got != 0 {
		t.Fatalf("isolated vertex counted as component: %d", got)
	}
}

func TestForestOrder(t *testing.T) {
	g := New(8, 5)
	for _, e := range []treeEdge{{3, 1, 0}, {1, 5, 1}, {3, 7, 2}, {6, 2, 3}, {2, 4, 4}} {
		if err := g.InsertEdge(e.From, e.To, e.Label); err != nil {
			t.Fatal(err)
		}
	}

	var roots []uint32
	var edges []treeEdge
	g.Forest(
		func(v uint32) { roots = append(roots, v) },
		func(from, to, label uint32) { edges = append(edges, treeEdge{from, to, label}) },
	)

	wantRoots := []uint32{1, 2}
	wantEdges := []treeEdge{
		{1, 3, 0}, {1, 5, 1}, {3, 7, 2},
		{2, 6, 3}, {2, 4, 4},
	}
	if diff := cmp.Diff(wantRoots, roots); diff != "" {
		t.Errorf("roots mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(wantEdges, edges); diff != "" {
		t.Errorf("tree edges mismatch (-want +got):\n%s", diff)
	}
}

func TestForestEmpty(t *testing.T) {
	g := New(0, 0)
	called := false
	g.Forest(func(uint32) { called = true }, func(_, _, _ uint32) { called = true })
	if called {
		t.Fatal("Forest visited something in an empty graph")
	}
}
