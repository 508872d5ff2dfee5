package mesh

import (
	"fmt"
)

// Plex is an in-memory incidence DAG over a fixed chart of points.
// Points are connected downward by cones (a cell's cone is its facets, an
// edge's cone is its two vertices); supports are derived as the transpose.
// Build one by setting cones for every non-vertex point, then call
// Stratify before issuing queries.
type Plex struct {
	// Incidence
	cones    [][]int // [point] -> points one dimension below
	supports [][]int // [point] -> points one dimension above (derived)

	// Stratification (computed by Stratify)
	depth    []int    // Topological dimension of each point
	strata   [][2]int // [depth] -> [start, end) point range
	maxDepth int

	// Ownership
	ghost []bool

	stratified bool
}

// NewPlex creates an empty plex over the chart [0, numPoints).
func NewPlex(numPoints int) *Plex {
	return &Plex{
		cones:    make([][]int, numPoints),
		supports: make([][]int, numPoints),
		ghost:    make([]bool, numPoints),
	}
}

// SetCone assigns the cone of p. Points with no cone are vertices.
func (px *Plex) SetCone(p int, cone ...int) {
	px.cones[p] = cone
	px.stratified = false
}

// SetGhost marks points as ghosted from another process.
func (px *Plex) SetGhost(points ...int) {
	for _, p := range points {
		px.ghost[p] = true
	}
}

// Stratify derives supports and depth strata from the cones. Every depth
// stratum must occupy a contiguous id range (the DMPlex numbering
// convention: cells first, then vertices, then intermediate entities).
func (px *Plex) Stratify() error {
	n := len(px.cones)
	px.supports = make([][]int, n)
	px.depth = make([]int, n)

	// Longest-path depth over the cone DAG.
	const unresolved = -1
	for p := range px.depth {
		px.depth[p] = unresolved
	}
	var resolve func(p int, trail int) (int, error)
	resolve = func(p, trail int) (int, error) {
		if px.depth[p] != unresolved {
			return px.depth[p], nil
		}
		if trail > n {
			return 0, fmt.Errorf("cone cycle detected at point %d", p)
		}
		d := 0
		for _, q := range px.cones[p] {
			qd, err := resolve(q, trail+1)
			if err != nil {
				return 0, err
			}
			if qd+1 > d {
				d = qd + 1
			}
		}
		px.depth[p] = d
		return d, nil
	}
	px.maxDepth = 0
	for p := 0; p < n; p++ {
		d, err := resolve(p, 0)
		if err != nil {
			return err
		}
		if d > px.maxDepth {
			px.maxDepth = d
		}
	}

	// Transpose cones into supports.
	for p := 0; p < n; p++ {
		for _, q := range px.cones[p] {
			px.supports[q] = append(px.supports[q], p)
		}
	}

	// Verify stratum contiguity and record ranges.
	px.strata = make([][2]int, px.maxDepth+1)
	for d := range px.strata {
		px.strata[d] = [2]int{n, n}
	}
	seen := make([]bool, px.maxDepth+1)
	for p := 0; p < n; p++ {
		d := px.depth[p]
		if !seen[d] {
			px.strata[d] = [2]int{p, p + 1}
			seen[d] = true
			continue
		}
		if px.strata[d][1] != p {
			return fmt.Errorf("depth %d stratum is not contiguous: point %d follows range [%d,%d)",
				d, p, px.strata[d][0], px.strata[d][1])
		}
		px.strata[d][1] = p + 1
	}

	px.stratified = true
	return nil
}

// Chart returns the point id range [0, numPoints).
func (px *Plex) Chart() (int, int) {
	return 0, len(px.cones)
}

// DepthStratum returns the point range of topological dimension dim.
// Out-of-range dimensions yield an empty range.
func (px *Plex) DepthStratum(dim int) (int, int) {
	if dim < 0 || dim > px.maxDepth {
		return 0, 0
	}
	s := px.strata[dim]
	return s[0], s[1]
}

// HeightStratum returns the point range at co-dimension codim.
func (px *Plex) HeightStratum(codim int) (int, int) {
	return px.DepthStratum(px.maxDepth - codim)
}

// IsGhost reports whether p is owned by another process.
func (px *Plex) IsGhost(p int) bool {
	return px.ghost[p]
}

// Depth returns the topological dimension of p.
func (px *Plex) Depth(p int) int {
	return px.depth[p]
}

// Closure returns the transitive closure of p, starting with p itself.
// useCone=true walks cones (downward closure); useCone=false walks
// supports (the star of p). Order is breadth-first and deterministic.
func (px *Plex) Closure(p int, useCone bool) []int {
	next := px.supports
	if useCone {
		next = px.cones
	}
	closure := []int{p}
	seen := map[int]bool{p: true}
	for head := 0; head < len(closure); head++ {
		for _, q := range next[closure[head]] {
			if !seen[q] {
				seen[q] = true
				closure = append(closure, q)
			}
		}
	}
	return closure
}

// Adjacency returns the FEM adjacency of p: the union of the downward
// closures of every point in the star of p. The result includes p and is
// deduplicated in first-seen order.
func (px *Plex) Adjacency(p int) []int {
	var adj []int
	seen := make(map[int]bool)
	for _, q := range px.Closure(p, false) {
		for _, r := range px.Closure(q, true) {
			if !seen[r] {
				seen[r] = true
				adj = append(adj, r)
			}
		}
	}
	return adj
}

// ExtrudedPlex wraps a base plex with a vertical layer count. Topological
// queries answer for the base mesh; the layer count drives the
// extrusion-aware patch paths.
type ExtrudedPlex struct {
	*Plex
	numLayers int
}

// Extrude marks base as extruded into layers vertical layers.
func Extrude(base *Plex, layers int) *ExtrudedPlex {
	return &ExtrudedPlex{Plex: base, numLayers: layers}
}

// Layers returns the number of vertical layers.
func (ex *ExtrudedPlex) Layers() int {
	return ex.numLayers
}
