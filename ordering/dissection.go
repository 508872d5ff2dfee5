// Package ordering computes fill-reducing permutations of patch point sets.
// The induced adjacency subgraph over a patch is dissected recursively:
// find a small vertex separator splitting the graph into two roughly
// balanced halves, order the halves first and the separator last. Factoring
// a patch's local system in that order incurs asymptotically less fill than
// the natural ordering on meshes with good aspect ratio.
package ordering

import (
	"sort"

	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/traverse"

	"github.com/notargets/asmpatch/mesh"
)

// Components this small are emitted as-is; a separator cannot pay for
// itself below this size.
const leafSize = 4

// Reorder computes a nested-dissection permutation of points. The result
// is a bijection on [0, len(points)): reordered[k] = points[perm[k]].
// Inputs of size zero or one return trivially. The permutation is
// deterministic for a given point sequence and topology.
func Reorder(points []int, dm mesh.Topology) []int {
	n := len(points)
	if n <= 1 {
		perm := make([]int, n)
		return perm
	}

	d := &dissector{
		g:    inducedSubgraph(points, dm),
		perm: make([]int, 0, n),
	}
	all := make([]int, n)
	for i := range all {
		all[i] = i
	}
	d.dissect(all)
	return d.perm
}

// Apply permutes points by perm, yielding the reordered sequence.
func Apply(points []int, perm []int) []int {
	out := make([]int, len(points))
	for k, i := range perm {
		out[k] = points[i]
	}
	return out
}

// inducedSubgraph builds the adjacency subgraph restricted to points:
// an edge joins two local indices iff the topology reports adjacency
// between the corresponding mesh points.
func inducedSubgraph(points []int, dm mesh.Topology) *simple.UndirectedGraph {
	index := make(map[int]int, len(points))
	for i, p := range points {
		index[p] = i
	}

	g := simple.NewUndirectedGraph()
	for i := range points {
		g.AddNode(simple.Node(i))
	}
	for i, p := range points {
		for _, q := range dm.Adjacency(p) {
			if j, ok := index[q]; ok && j != i {
				g.SetEdge(simple.Edge{F: simple.Node(i), T: simple.Node(j)})
			}
		}
	}
	return g
}

// dissector accumulates the permutation over recursive splits.
type dissector struct {
	g    *simple.UndirectedGraph
	perm []int
}

// dissect orders the given members (sorted ascending), splitting into
// connected components first and dissecting each independently.
func (d *dissector) dissect(members []int) {
	remaining := members
	for len(remaining) > 0 {
		in := make(map[int]bool, len(remaining))
		for _, v := range remaining {
			in[v] = true
		}
		levels := d.levels(remaining[0], in)
		d.dissectComponent(levels)

		comp := make(map[int]bool)
		for _, level := range levels {
			for _, v := range level {
				comp[v] = true
			}
		}
		rest := remaining[:0:0]
		for _, v := range remaining {
			if !comp[v] {
				rest = append(rest, v)
			}
		}
		remaining = rest
	}
}

// dissectComponent orders one connected component given its BFS level
// structure from an arbitrary member.
func (d *dissector) dissectComponent(levels [][]int) {
	size := 0
	for _, level := range levels {
		size += len(level)
	}
	if size <= leafSize {
		d.emit(levels)
		return
	}

	in := make(map[int]bool, size)
	for _, level := range levels {
		for _, v := range level {
			in[v] = true
		}
	}

	// Grow toward a pseudo-peripheral root: restart the level structure
	// from the farthest vertex while the eccentricity keeps increasing.
	for {
		last := levels[len(levels)-1]
		next := d.levels(last[0], in)
		if len(next) <= len(levels) {
			break
		}
		levels = next
	}

	// No useful separator in a graph of diameter below two.
	if len(levels) < 3 {
		d.emit(levels)
		return
	}

	mid := len(levels) / 2
	d.dissect(flatten(levels[:mid]))
	d.dissect(flatten(levels[mid+1:]))
	d.perm = append(d.perm, levels[mid]...)
}

// emit appends a component without further splitting, in level order.
func (d *dissector) emit(levels [][]int) {
	for _, level := range levels {
		d.perm = append(d.perm, level...)
	}
}

// levels computes the BFS level structure from root, restricted to the
// members of in. Each level is sorted ascending so the result does not
// depend on graph iteration order.
func (d *dissector) levels(root int, in map[int]bool) [][]int {
	bf := traverse.BreadthFirst{
		Traverse: func(e graph.Edge) bool {
			return in[int(e.From().ID())] && in[int(e.To().ID())]
		},
	}
	var levels [][]int
	bf.Walk(d.g, simple.Node(root), func(n graph.Node, depth int) bool {
		for len(levels) <= depth {
			levels = append(levels, nil)
		}
		levels[depth] = append(levels[depth], int(n.ID()))
		return false
	})
	for _, level := range levels {
		sort.Ints(level)
	}
	return levels
}

func flatten(levels [][]int) []int {
	var out []int
	for _, level := range levels {
		out = append(out, level...)
	}
	sort.Ints(out)
	return out
}
