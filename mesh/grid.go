package mesh

import (
	"fmt"
)

// TriangleGrid builds a fully interpolated triangulation of the unit square
// with nx by ny quads, each split into two triangles. Numbering follows the
// DMPlex convention: cells first, then vertices, then edges, so every depth
// stratum is contiguous. The returned plex is already stratified.
func TriangleGrid(nx, ny int) (*Plex, error) {
	if nx < 1 || ny < 1 {
		return nil, fmt.Errorf("invalid grid dimensions: nx=%d, ny=%d", nx, ny)
	}

	numCells := 2 * nx * ny
	numVerts := (nx + 1) * (ny + 1)

	// Each triangle contributes three edges; interior diagonals and shared
	// quad edges are deduplicated below, so allocate the exact count:
	// horizontal + vertical + one diagonal per quad.
	numEdges := nx*(ny+1) + ny*(nx+1) + nx*ny

	px := NewPlex(numCells + numVerts + numEdges)

	vertex := func(i, j int) int {
		return numCells + j*(nx+1) + i
	}

	edgeIDs := make(map[[2]int]int, numEdges)
	nextEdge := numCells + numVerts
	edge := func(a, b int) int {
		if a > b {
			a, b = b, a
		}
		key := [2]int{a, b}
		e, ok := edgeIDs[key]
		if !ok {
			e = nextEdge
			nextEdge++
			edgeIDs[key] = e
			px.SetCone(e, a, b)
		}
		return e
	}

	cell := 0
	for j := 0; j < ny; j++ {
		for i := 0; i < nx; i++ {
			a := vertex(i, j)
			b := vertex(i+1, j)
			c := vertex(i+1, j+1)
			d := vertex(i, j+1)

			// Lower triangle (a, b, c) and upper triangle (a, c, d),
			// split along the (a, c) diagonal.
			px.SetCone(cell, edge(a, b), edge(b, c), edge(c, a))
			cell++
			px.SetCone(cell, edge(a, c), edge(c, d), edge(d, a))
			cell++
		}
	}
	if nextEdge != numCells+numVerts+numEdges {
		return nil, fmt.Errorf("edge count mismatch: built %d, expected %d",
			nextEdge-numCells-numVerts, numEdges)
	}

	if err := px.Stratify(); err != nil {
		return nil, err
	}
	return px, nil
}

// IntervalMesh builds a 1D mesh of n cells over [0, 1]: cells numbered
// [0, n), vertices [n, 2n+1). The returned plex is already stratified.
func IntervalMesh(n int) (*Plex, error) {
	if n < 1 {
		return nil, fmt.Errorf("invalid interval mesh size: n=%d", n)
	}
	px := NewPlex(2*n + 1)
	for i := 0; i < n; i++ {
		px.SetCone(i, n+i, n+i+1)
	}
	if err := px.Stratify(); err != nil {
		return nil, err
	}
	return px, nil
}
