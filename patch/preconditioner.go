package patch

import (
	"errors"
	"fmt"
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/notargets/asmpatch/dof"
	"github.com/notargets/asmpatch/mesh"
)

// Aggregator registers the patch index sets and performs the Schwarz
// solve. Implementations receive each patch once, at initialization; the
// preconditioner keeps no reference into the aggregator's internals.
type Aggregator interface {
	// SetSubdomains registers the index sets, one Schwarz subdomain each.
	// Empty patches must be tolerated.
	SetSubdomains(patches []Patch) error

	// SetUp (re)builds the aggregator's internal solver state.
	SetUp() error

	// Apply computes y = M⁻¹x for the assembled Schwarz operator M.
	Apply(x, y []float64) error

	// ApplyTranspose computes y = M⁻ᵀx.
	ApplyTranspose(x, y []float64) error
}

// AggregatorFactory builds an aggregator over the given operator.
type AggregatorFactory func(op mat.Matrix, cfg Config) (Aggregator, error)

var backendRegistry = map[Backend]AggregatorFactory{}

// RegisterBackend makes an aggregator implementation selectable by name.
// The direct backend is always registered; optional accelerated backends
// register themselves here.
func RegisterBackend(name Backend, factory AggregatorFactory) {
	backendRegistry[name] = factory
}

func init() {
	RegisterBackend(BackendDirect, func(op mat.Matrix, cfg Config) (Aggregator, error) {
		return NewAdditiveSchwarz(op, cfg.SortIndices), nil
	})
}

// lookupBackend resolves a backend name, distinguishing unsupported names
// (a configuration error) from known-but-absent backends.
func lookupBackend(name Backend) (AggregatorFactory, error) {
	if factory, ok := backendRegistry[name]; ok {
		return factory, nil
	}
	switch name {
	case BackendDirect, BackendBlocked:
		return nil, fmt.Errorf("%w: backend %q is not present in this runtime; register it with RegisterBackend or select %q",
			ErrBackendUnavailable, name, BackendDirect)
	default:
		return nil, fmt.Errorf("%w: unsupported backend name %q", ErrConfiguration, name)
	}
}

// LocalToGlobalMap translates local dof indices into the global numbering
// expected by an aggregator that operates on the assembled global system.
// It is applied uniformly to every emitted index.
type LocalToGlobalMap []int

// Apply translates one index set.
func (m LocalToGlobalMap) Apply(indices Patch) Patch {
	out := make(Patch, len(indices))
	for i, idx := range indices {
		out[i] = m[idx]
	}
	return out
}

// Preconditioner ties patch construction to an aggregator behind a
// two-state lifecycle: Initialize builds the patches exactly once and
// registers them; Update only re-runs the aggregator's setup. Patches are
// not rebuilt on Update, so a topology or layout change after Initialize
// requires a fresh Preconditioner.
type Preconditioner struct {
	strategy Strategy
	cfg      Config

	agg         Aggregator
	initialized bool
}

// Lifecycle violations: ErrNotInitialized is returned by methods invoked
// before Initialize, ErrAlreadyInitialized by a second Initialize.
var (
	ErrNotInitialized     = errors.New("preconditioner not initialized")
	ErrAlreadyInitialized = errors.New("preconditioner already initialized")
)

// NewPreconditioner creates an uninitialized preconditioner for one
// strategy and configuration.
func NewPreconditioner(strategy Strategy, cfg Config) *Preconditioner {
	return &Preconditioner{strategy: strategy, cfg: cfg}
}

// Initialize resolves the backend, builds the patches, optionally
// translates them to global numbering, and registers them with a fresh
// aggregator over op. The backend is resolved before any patch work so a
// missing backend fails fast.
func (pc *Preconditioner) Initialize(dm mesh.Topology, layout dof.Layout, op mat.Matrix, lgmap LocalToGlobalMap) error {
	if pc.initialized {
		return ErrAlreadyInitialized
	}

	factory, err := lookupBackend(pc.cfg.Backend)
	if err != nil {
		return err
	}

	patches, err := BuildPatches(pc.strategy, pc.cfg, dm, layout)
	if err != nil {
		return err
	}
	if lgmap != nil {
		for i, p := range patches {
			patches[i] = lgmap.Apply(p)
		}
	}

	agg, err := factory(op, pc.cfg)
	if err != nil {
		return fmt.Errorf("backend %q: %w", pc.cfg.Backend, err)
	}
	if err := agg.SetSubdomains(patches); err != nil {
		return fmt.Errorf("registering %d patches: %w", len(patches), err)
	}
	if err := agg.SetUp(); err != nil {
		return err
	}

	pc.agg = agg
	pc.initialized = true
	return nil
}

// Update re-runs the aggregator's setup over the current patches.
func (pc *Preconditioner) Update() error {
	if !pc.initialized {
		return ErrNotInitialized
	}
	return pc.agg.SetUp()
}

// Apply computes y = M⁻¹x.
func (pc *Preconditioner) Apply(x, y []float64) error {
	if !pc.initialized {
		return ErrNotInitialized
	}
	return pc.agg.Apply(x, y)
}

// ApplyTranspose computes y = M⁻ᵀx.
func (pc *Preconditioner) ApplyTranspose(x, y []float64) error {
	if !pc.initialized {
		return ErrNotInitialized
	}
	return pc.agg.ApplyTranspose(x, y)
}

// sortIndices sorts one index set in place; aggregators honoring
// Config.SortIndices call this at registration.
func sortIndices(p Patch) {
	sort.Ints(p)
}
