// Package patch constructs overlapping degree-of-freedom patches for
// additive-Schwarz preconditioning. A strategy enumerates seed entities of
// a mesh stratum, expands each owned seed into a point set by topology
// queries, reorders the set with a fill-reducing permutation, and maps the
// points through the dof layout into a flat index set. The collection of
// index sets defines the Schwarz subdomains.
package patch

import (
	"errors"
	"fmt"

	"github.com/go-logr/logr"
)

// Strategy selects how patches are derived from seed entities. The variant
// set is closed; dispatch happens once per build call.
type Strategy int

const (
	// Star patches hold the dofs of the topological star of each seed:
	// every entity whose closure contains the seed.
	Star Strategy = iota

	// Vanka patches hold the dofs of the closure of the star of each
	// seed, a wider overlap than Star.
	Vanka

	// Linesmooth patches hold the dofs of a single entity per patch, one
	// patch per owned entity at each requested co-dimension.
	Linesmooth

	// ExtrudedStar replicates base-mesh star patches across the vertical
	// layers of an extruded mesh. On a non-layered mesh it behaves
	// exactly like Star.
	ExtrudedStar
)

// String returns the option-facing strategy name.
func (s Strategy) String() string {
	switch s {
	case Star:
		return "star"
	case Vanka:
		return "vanka"
	case Linesmooth:
		return "linesmooth"
	case ExtrudedStar:
		return "extruded_star"
	default:
		return fmt.Sprintf("strategy(%d)", int(s))
	}
}

// Backend names how the downstream aggregator executes each patch's local
// solve. It is a pass-through flag: patch construction is identical for
// every backend.
type Backend string

const (
	// BackendDirect is the reference backend: dense LU per patch.
	BackendDirect Backend = "direct"

	// BackendBlocked is an optional accelerated backend with compact
	// blocked storage. It must be registered before use.
	BackendBlocked Backend = "blocked"
)

// Error taxonomy. Construction is deterministic and side-effect-free, so
// every error propagates synchronously to the caller; there are no retries.
var (
	// ErrConfiguration marks fatal option errors: the Vanka
	// exactly-one-of constraint, unknown strategies, unsupported
	// backend names.
	ErrConfiguration = errors.New("invalid patch configuration")

	// ErrBackendUnavailable marks a known backend that is not present in
	// this runtime. Raised before any patch work begins.
	ErrBackendUnavailable = errors.New("backend unavailable")
)

// Config carries the named options of a patch build. There is no ambient
// option state: every entry point receives a Config value.
type Config struct {
	// ConstructDim selects the seed stratum by topological dimension.
	// Negative means unset. Star and ExtrudedStar default to dimension 0;
	// Vanka requires exactly one of ConstructDim and ConstructCodim.
	ConstructDim int

	// ConstructCodim selects the seed stratum by co-dimension from the
	// top stratum. Negative means unset. Only Vanka reads it.
	ConstructCodim int

	// Codims lists the co-dimensions Linesmooth builds patches over.
	// Nil means {0, 1}.
	Codims []int

	// Backend selects the aggregator's local-solve implementation.
	Backend Backend

	// SortIndices asks the aggregator to sort each index set before
	// registering it.
	SortIndices bool

	// Log receives advisory warnings. Defaults to a discarding logger.
	Log logr.Logger
}

// DefaultConfig returns the documented option defaults.
func DefaultConfig() Config {
	return Config{
		ConstructDim:   -1,
		ConstructCodim: -1,
		Backend:        BackendDirect,
		SortIndices:    true,
		Log:            logr.Discard(),
	}
}
