// Package mesh provides the topological view of an unstructured mesh used
// by patch construction: a DMPlex-style incidence DAG over opaque integer
// points, stratified by topological dimension, with transitive-closure and
// adjacency queries.
package mesh

// Topology is the read-only topology snapshot consumed by patch
// construction. Implementations must be safe for repeated queries; no
// mutation is modeled during a build call.
type Topology interface {
	// Chart returns the half-open range [start, end) of valid point ids.
	Chart() (start, end int)

	// DepthStratum returns the contiguous point range of topological
	// dimension dim (vertices are depth 0).
	DepthStratum(dim int) (start, end int)

	// HeightStratum returns the contiguous point range at co-dimension
	// codim from the top stratum (cells are height 0).
	HeightStratum(codim int) (start, end int)

	// IsGhost reports whether p is replicated from another process rather
	// than owned locally. Ghost points never seed a patch.
	IsGhost(p int) bool

	// Closure returns the transitive closure of p, p first. With
	// useCone=true it walks downward through cones (faces, edges,
	// vertices); with useCone=false it walks upward through supports,
	// yielding the topological star.
	Closure(p int, useCone bool) []int

	// Adjacency returns the points topologically adjacent to p: the union
	// of closures of every point in the star of p.
	Adjacency(p int) []int
}

// Extruded marks a topology as layered. Layers reports the number of
// vertical layers in the extruded direction; values above one enable the
// extrusion-aware patch paths.
type Extruded interface {
	Topology
	Layers() int
}
