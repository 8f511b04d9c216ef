// Package keygraph provides the undirected multigraph used during perfect
// table construction. Vertices are hash buckets, edges are keys.
//
// The graph tracks acyclicity incrementally with a union-find structure, so
// IsAcyclic is O(1) and the builder can abandon a trial at the first edge
// that closes a cycle. A self loop counts as a cycle.
package keygraph

import (
	"fmt"

	"github.com/cockroachdb/swiss"

	pmerrors "github.com/tamirms/perfectmap/errors"
)

const noEdge = -1

// Graph is an undirected graph over vertices [0, n).
//
// Adjacency lists are stored as singly linked lists threaded through flat
// half-edge arrays: half-edge 2e and 2e+1 are the two directions of edge e.
type Graph struct {
	n uint32

	present     []bool
	numVertices int

	// per vertex
	head   []int32
	tail   []int32
	degree []uint32

	// per half-edge
	next  []int32
	to    []uint32
	label []uint32

	// unordered vertex pair -> label of the edge that first used it
	pairs *swiss.Map[uint64, uint32]

	// union-find for incremental cycle detection
	parent []uint32
	size   []uint32
	cyclic bool
}

// New returns an empty graph over n vertices. edgeHint pre-sizes the edge
// storage.
func New(n uint32, edgeHint int) *Graph {
	g := &Graph{
		n:       n,
		present: make([]bool, n),
		head:    make([]int32, n),
		tail:    make([]int32, n),
		degree:  make([]uint32, n),
		next:    make([]int32, 0, 2*edgeHint),
		to:      make([]uint32, 0, 2*edgeHint),
		label:   make([]uint32, 0, 2*edgeHint),
		pairs:   swiss.New[uint64, uint32](edgeHint),
		parent:  make([]uint32, n),
		size:    make([]uint32, n),
	}
	for v := range g.head {
		g.head[v] = noEdge
		g.tail[v] = noEdge
		g.parent[v] = uint32(v)
		g.size[v] = 1
	}
	return g
}

// InsertVertex marks v as part of the graph. Inserting an existing vertex is
// a no-op.
func (g *Graph) InsertVertex(v uint32) error {
	if v >= g.n {
		return fmt.Errorf("%w: %d (n=%d)", pmerrors.ErrVertexOutOfRange, v, g.n)
	}
	if !g.present[v] {
		g.present[v] = true
		g.numVertices++
	}
	return nil
}

// InsertEdge adds an undirected edge between u and v carrying label.
// Both endpoints are inserted if absent.
//
// It returns ErrDuplicateEdge, leaving the graph unchanged, if an edge
// between the same unordered pair already exists. An edge that closes a
// cycle (including a self loop) is added and marks the graph cyclic.
func (g *Graph) InsertEdge(u, v, label uint32) error {
	if err := g.InsertVertex(u); err != nil {
		return err
	}
	if err := g.InsertVertex(v); err != nil {
		return err
	}

	pk := pairKey(u, v)
	if prev, ok := g.pairs.Get(pk); ok {
		return fmt.Errorf("%w: (%d, %d) labels %d and %d", pmerrors.ErrDuplicateEdge, u, v, prev, label)
	}
	g.pairs.Put(pk, label)

	g.link(u, v, label)
	g.link(v, u, label)

	ru, rv := g.find(u), g.find(v)
	if ru == rv {
		g.cyclic = true
	} else {
		g.union(ru, rv)
	}
	return nil
}

// link appends the half-edge from -> to at the tail of from's adjacency list.
func (g *Graph) link(from, to, label uint32) {
	h := int32(len(g.to))
	g.next = append(g.next, noEdge)
	g.to = append(g.to, to)
	g.label = append(g.label, label)

	if g.tail[from] == noEdge {
		g.head[from] = h
	} else {
		g.next[g.tail[from]] = h
	}
	g.tail[from] = h
	g.degree[from]++
}

// IsAcyclic reports whether no inserted edge has closed a cycle.
func (g *Graph) IsAcyclic() bool {
	return !g.cyclic
}

// N returns the vertex universe size.
func (g *Graph) N() uint32 {
	return g.n
}

// NumVertices returns the number of inserted vertices.
func (g *Graph) NumVertices() int {
	return g.numVertices
}

// NumEdges returns the number of inserted edges.
func (g *Graph) NumEdges() int {
	return len(g.to) / 2
}

// Degree returns the number of edge endpoints at v. A self loop counts twice.
func (g *Graph) Degree(v uint32) uint32 {
	return g.degree[v]
}

// Components returns the number of connected components among vertices with
// at least one incident edge.
func (g *Graph) Components() int {
	c := 0
	for v := uint32(0); v < g.n; v++ {
		if g.degree[v] > 0 && g.find(v) == v {
			c++
		}
	}
	return c
}

// Forest walks every component breadth-first. Components are visited in
// increasing order of their lowest-numbered vertex, which becomes the root
// and is passed to root. tree is called once for every edge that reaches an
// unvisited vertex, with from already visited. Vertices without incident
// edges are skipped.
//
// On an acyclic graph every edge is reported exactly once.
func (g *Graph) Forest(root func(v uint32), tree func(from, to, label uint32)) {
	visited := make([]bool, g.n)
	queue := make([]uint32, 0, 64)

	for r := uint32(0); r < g.n; r++ {
		if visited[r] || g.degree[r] == 0 {
			continue
		}
		visited[r] = true
		root(r)

		queue = append(queue[:0], r)
		for len(queue) > 0 {
			u := queue[0]
			queue = queue[1:]
			for h := g.head[u]; h != noEdge; h = g.next[h] {
				w := g.to[h]
				if visited[w] {
					continue
				}
				visited[w] = true
				tree(u, w, g.label[h])
				queue = append(queue, w)
			}
		}
	}
}

// find returns the representative of v, halving paths as it goes.
func (g *Graph) find(v uint32) uint32 {
	for g.parent[v] != v {
		g.parent[v] = g.parent[g.parent[v]]
		v = g.parent[v]
	}
	return v
}

// union merges two distinct roots by size.
func (g *Graph) union(a, b uint32) {
	if g.size[a] < g.size[b] {
		a, b = b, a
	}
	g.parent[b] = a
	g.size[a] += g.size[b]
}

func pairKey(u, v uint32) uint64 {
	if u > v {
		u, v = v, u
	}
	return uint64(u)<<32 | uint64(v)
}
