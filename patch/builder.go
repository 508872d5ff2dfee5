package patch

import (
	"fmt"
	"sort"

	"github.com/go-logr/logr"

	"github.com/notargets/asmpatch/dof"
	"github.com/notargets/asmpatch/mesh"
	"github.com/notargets/asmpatch/ordering"
)

// Patch is one Schwarz subdomain: an ordered sequence of local dof indices.
// Patches may legitimately be empty (for example a vertical layer with no
// stacked dofs); consumers must tolerate that.
type Patch []int

// BuildPatches enumerates the seed entities of the selected strategy and
// produces one patch per owned seed (one per owned seed and layer for
// ExtrudedStar on a layered mesh). Ghost seeds never produce patches, so
// each process builds exactly its own subdomains.
func BuildPatches(strategy Strategy, cfg Config, dm mesh.Topology, layout dof.Layout) ([]Patch, error) {
	// A zero-value Config carries a logger with a nil sink; advisory
	// warnings must stay non-fatal, so discard them instead.
	if cfg.Log.GetSink() == nil {
		cfg.Log = logr.Discard()
	}

	switch strategy {
	case Star:
		return buildStar(cfg, dm, layout)
	case Vanka:
		return buildVanka(cfg, dm, layout)
	case Linesmooth:
		return buildLinesmooth(cfg, dm, layout)
	case ExtrudedStar:
		return buildExtrudedStar(cfg, dm, layout)
	default:
		return nil, fmt.Errorf("%w: unknown strategy %q", ErrConfiguration, strategy)
	}
}

// buildStar emits one patch per owned seed of the construct dimension,
// covering the dofs of the seed's topological star.
func buildStar(cfg Config, dm mesh.Topology, layout dof.Layout) ([]Patch, error) {
	if ex, ok := dm.(mesh.Extruded); ok && ex.Layers() > 1 {
		cfg.Log.Info("applying a flat star smoother on an extruded mesh; consider the extruded star strategy")
	}

	dim := cfg.ConstructDim
	if dim < 0 {
		dim = 0
	}

	var patches []Patch
	start, end := dm.DepthStratum(dim)
	for seed := start; seed < end; seed++ {
		if dm.IsGhost(seed) {
			continue
		}
		points := dm.Closure(seed, false)
		points = ordering.Apply(points, ordering.Reorder(points, dm))
		patches = append(patches, Assemble(points, layout))
	}
	return patches, nil
}

// buildVanka emits one patch per owned seed of the selected stratum,
// covering the dofs of the closure of the seed's star. Exactly one of
// ConstructDim and ConstructCodim selects the stratum.
func buildVanka(cfg Config, dm mesh.Topology, layout dof.Layout) ([]Patch, error) {
	hasDim := cfg.ConstructDim >= 0
	hasCodim := cfg.ConstructCodim >= 0
	if hasDim == hasCodim {
		return nil, fmt.Errorf("%w: must set exactly one of ConstructDim or ConstructCodim", ErrConfiguration)
	}
	if ex, ok := dm.(mesh.Extruded); ok && ex.Layers() > 1 {
		cfg.Log.Info("applying a vanka smoother on an extruded mesh")
	}

	var start, end int
	if hasDim {
		start, end = dm.DepthStratum(cfg.ConstructDim)
	} else {
		start, end = dm.HeightStratum(cfg.ConstructCodim)
	}

	var patches []Patch
	for seed := start; seed < end; seed++ {
		if dm.IsGhost(seed) {
			continue
		}

		// Union of closures over the star. Only this strategy needs
		// deduplication; star and closure sets are overlap-free by
		// construction.
		members := make(map[int]bool)
		for _, pt := range dm.Closure(seed, false) {
			for _, q := range dm.Closure(pt, true) {
				members[q] = true
			}
		}
		points := make([]int, 0, len(members))
		for p := range members {
			points = append(points, p)
		}
		sort.Ints(points)

		points = ordering.Apply(points, ordering.Reorder(points, dm))
		patches = append(patches, Assemble(points, layout))
	}
	return patches, nil
}

// buildLinesmooth emits one patch per owned entity with dofs at each
// requested co-dimension, holding only that entity's own dofs. No closure
// expansion and no reordering: a single entity's dof block is already
// contiguous per field.
func buildLinesmooth(cfg Config, dm mesh.Topology, layout dof.Layout) ([]Patch, error) {
	codims := cfg.Codims
	if codims == nil {
		codims = []int{0, 1}
	}

	var patches []Patch
	for _, codim := range codims {
		start, end := dm.HeightStratum(codim)
		for p := start; p < end; p++ {
			if dm.IsGhost(p) {
				continue
			}
			indices := Assemble([]int{p}, layout)
			if len(indices) == 0 {
				continue
			}
			patches = append(patches, indices)
		}
	}
	return patches, nil
}
