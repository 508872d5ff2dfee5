package patch

import (
	"fmt"
	"math"
)

// Set is the ordered collection of patches produced by one build call. The
// builder retains no reference to it after returning: the consumer owns
// the index sets exclusively.
type Set struct {
	Patches []Patch

	// LocalSize is the length of the local vector the indices point into.
	LocalSize int
}

// NewSet wraps the patches of one build call over a local vector of the
// given length.
func NewSet(patches []Patch, localSize int) *Set {
	return &Set{Patches: patches, LocalSize: localSize}
}

// Validate checks every index against the local vector bounds. Empty
// patches are valid.
func (s *Set) Validate() error {
	for i, p := range s.Patches {
		for _, idx := range p {
			if idx < 0 || idx >= s.LocalSize {
				return fmt.Errorf("patch %d: index %d outside local vector [0,%d)",
					i, idx, s.LocalSize)
			}
		}
	}
	return nil
}

// Covered reports how many distinct local dofs appear in at least one
// patch.
func (s *Set) Covered() int {
	seen := make(map[int]bool)
	for _, p := range s.Patches {
		for _, idx := range p {
			seen[idx] = true
		}
	}
	return len(seen)
}

// Stats summarizes patch sizes for load inspection.
type Stats struct {
	NumPatches int
	MinSize    int
	MaxSize    int
	AvgSize    float64
	NumEmpty   int
}

// Statistics computes size metrics over the set.
func (s *Set) Statistics() Stats {
	stats := Stats{
		NumPatches: len(s.Patches),
		MinSize:    math.MaxInt32,
	}
	if stats.NumPatches == 0 {
		stats.MinSize = 0
		return stats
	}
	total := 0
	for _, p := range s.Patches {
		n := len(p)
		total += n
		if n < stats.MinSize {
			stats.MinSize = n
		}
		if n > stats.MaxSize {
			stats.MaxSize = n
		}
		if n == 0 {
			stats.NumEmpty++
		}
	}
	stats.AvgSize = float64(total) / float64(stats.NumPatches)
	return stats
}
