package patch

import (
	"fmt"
	"sort"

	"github.com/notargets/asmpatch/dof"
	"github.com/notargets/asmpatch/mesh"
	"github.com/notargets/asmpatch/ordering"
)

// columnProfile caches, per base-mesh point of one field, the bottom of
// the vertical dof column, the dofs per layer, and the stride between
// layer bottoms. Precomputed once per build so the per-seed loop only does
// array lookups.
type columnProfile struct {
	off    []int
	dof    []int // dofs per layer
	stride []int // zero means no stacked dofs on this point
}

// buildColumnProfiles derives the per-field column profiles from a layered
// layout: dofsPerLayer = totalDofs - (layers-1)*stride.
func buildColumnProfiles(dm mesh.Topology, layout dof.LayeredLayout) ([]columnProfile, error) {
	start, end := dm.Chart()
	layers := layout.Layers()

	profiles := make([]columnProfile, layout.FieldCount())
	for f := range profiles {
		prof := columnProfile{
			off:    make([]int, end-start),
			dof:    make([]int, end-start),
			stride: make([]int, end-start),
		}
		for p := start; p < end; p++ {
			count := layout.DofCount(p, f)
			if count == 0 {
				continue
			}
			stride := layout.LayerStride(p, f)
			if stride < 0 {
				return nil, fmt.Errorf("field %d: no layer stride recorded for the column at point %d (offset %d)",
					f, p, layout.DofOffset(p, f))
			}
			perLayer := count - (layers-1)*stride
			if perLayer < 0 {
				return nil, fmt.Errorf("field %d: point %d carries %d dofs, fewer than %d layers at stride %d imply",
					f, p, count, layers, stride)
			}
			i := p - start
			prof.off[i] = layout.DofOffset(p, f)
			prof.dof[i] = perLayer
			prof.stride[i] = stride
		}
		profiles[f] = prof
	}
	return profiles, nil
}

// planesFor selects the vertical neighbor planes of layer k: the layer
// itself plus the layer above and below where they exist. This is the
// star pattern along the column.
func planesFor(k, layers int) []int {
	switch {
	case k == 0:
		return []int{1, 0}
	case k == layers-1:
		return []int{-1, 0}
	default:
		return []int{-1, 1, 0}
	}
}

// dofSpan is a contiguous dof node range [begin, end) of one field.
type dofSpan struct {
	begin, end int
}

func (s dofSpan) size() int {
	return s.end - s.begin
}

// buildExtrudedStar replicates base-mesh star patches across vertical
// layers: one patch per (owned seed, layer) pair. On a non-layered mesh it
// transparently delegates to the flat star algorithm.
func buildExtrudedStar(cfg Config, dm mesh.Topology, layout dof.Layout) ([]Patch, error) {
	ex, extruded := dm.(mesh.Extruded)
	if !extruded || ex.Layers() <= 1 {
		return buildStar(cfg, dm, layout)
	}
	layered, ok := layout.(dof.LayeredLayout)
	if !ok {
		return nil, fmt.Errorf("%w: the extruded star strategy needs a layered dof layout", ErrConfiguration)
	}
	layers := ex.Layers()
	if layered.Layers() != layers {
		return nil, fmt.Errorf("%w: mesh has %d layers but the dof layout declares %d",
			ErrConfiguration, layers, layered.Layers())
	}

	profiles, err := buildColumnProfiles(dm, layered)
	if err != nil {
		return nil, err
	}

	dim := cfg.ConstructDim
	if dim < 0 {
		dim = 0
	}

	chartStart, _ := dm.Chart()
	var patches []Patch
	start, end := dm.DepthStratum(dim)
	for seed := start; seed < end; seed++ {
		if dm.IsGhost(seed) {
			continue
		}
		points := dm.Closure(seed, false)
		points = ordering.Apply(points, ordering.Reorder(points, dm))

		for k := 0; k < layers; k++ {
			planes := planesFor(k, layers)

			indices := Patch{}
			for f := 0; f < layout.FieldCount(); f++ {
				prof := profiles[f]
				valueSize := layout.ValueSize(f)
				fieldOff := layout.FieldOffset(f)

				var spans []dofSpan
				for _, plane := range planes {
					for _, p := range points {
						i := p - chartStart
						stride := prof.stride[i]
						if stride <= 0 {
							// No dofs stacked on this point.
							continue
						}
						off := prof.off[i]
						perLayer := prof.dof[i]

						var span dofSpan
						if plane == 0 {
							span.begin = off + k*stride
							span.end = span.begin + perLayer
						} else {
							// Interior dofs between this layer's bottom
							// and the shifted layer's bottom, oriented so
							// begin <= end for either plane sign.
							span.begin = off + min(k, k+plane)*stride + perLayer
							span.end = off + max(k, k+plane)*stride
						}
						spans = append(spans, span)
					}
				}

				// Larger blocks first for the downstream factorization;
				// the sort is stable so equal sizes keep plane order.
				sort.SliceStable(spans, func(a, b int) bool {
					return spans[a].size() > spans[b].size()
				})
				for _, span := range spans {
					for i := valueSize * span.begin; i < valueSize*span.end; i++ {
						indices = append(indices, fieldOff+i)
					}
				}
			}
			patches = append(patches, indices)
		}
	}
	return patches, nil
}
