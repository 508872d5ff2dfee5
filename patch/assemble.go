package patch

import (
	"github.com/notargets/asmpatch/dof"
)

// Assemble maps an ordered point list through the dof layout into a flat
// sequence of local dof indices. Fields are emitted in declared order;
// within a field, points in the given order; within a point, components
// contiguously. Zero-dof points are skipped, never emitted as degenerate
// ranges. No deduplication happens here: callers guarantee a clean point
// list.
func Assemble(points []int, layout dof.Layout) Patch {
	indices := Patch{}
	for f := 0; f < layout.FieldCount(); f++ {
		valueSize := layout.ValueSize(f)
		fieldOff := layout.FieldOffset(f)
		for _, p := range points {
			count := layout.DofCount(p, f)
			if count <= 0 {
				continue
			}
			off := layout.DofOffset(p, f)
			for i := valueSize * off; i < valueSize*(off+count); i++ {
				indices = append(indices, fieldOff+i)
			}
		}
	}
	return indices
}
