package patch

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// AdditiveSchwarz is the reference-direct aggregator: each patch's
// principal submatrix of the operator is factored densely at SetUp, and
// Apply accumulates y = Σ Rᵢᵀ Aᵢ⁻¹ Rᵢ x over the patches. Designed for the
// small blocks patch smoothers produce, not for large subdomains.
type AdditiveSchwarz struct {
	op          mat.Matrix
	sortIndices bool

	patches []Patch
	factors []*mat.LU // nil entry for an empty patch
	setUp   bool
}

// NewAdditiveSchwarz creates the aggregator over the assembled operator.
func NewAdditiveSchwarz(op mat.Matrix, sortIndices bool) *AdditiveSchwarz {
	return &AdditiveSchwarz{op: op, sortIndices: sortIndices}
}

// SetSubdomains registers the index sets after bounds-checking them
// against the operator dimensions.
func (a *AdditiveSchwarz) SetSubdomains(patches []Patch) error {
	n, m := a.op.Dims()
	if n != m {
		return fmt.Errorf("operator must be square, got %dx%d", n, m)
	}
	a.patches = make([]Patch, len(patches))
	for i, p := range patches {
		own := make(Patch, len(p))
		copy(own, p)
		if a.sortIndices {
			sortIndices(own)
		}
		for _, idx := range own {
			if idx < 0 || idx >= n {
				return fmt.Errorf("patch %d: index %d outside operator dimension %d", i, idx, n)
			}
		}
		a.patches[i] = own
	}
	a.setUp = false
	return nil
}

// SetUp factors every patch's local system. Safe to call repeatedly; the
// factorizations are rebuilt from the current operator values.
func (a *AdditiveSchwarz) SetUp() error {
	a.factors = make([]*mat.LU, len(a.patches))
	for i, p := range a.patches {
		k := len(p)
		if k == 0 {
			continue
		}
		sub := mat.NewDense(k, k, nil)
		for r, ri := range p {
			for c, ci := range p {
				sub.Set(r, c, a.op.At(ri, ci))
			}
		}
		lu := &mat.LU{}
		lu.Factorize(sub)
		a.factors[i] = lu
	}
	a.setUp = true
	return nil
}

// Apply computes y = Σ Rᵢᵀ Aᵢ⁻¹ Rᵢ x.
func (a *AdditiveSchwarz) Apply(x, y []float64) error {
	return a.apply(x, y, false)
}

// ApplyTranspose computes the transpose action.
func (a *AdditiveSchwarz) ApplyTranspose(x, y []float64) error {
	return a.apply(x, y, true)
}

func (a *AdditiveSchwarz) apply(x, y []float64, trans bool) error {
	if !a.setUp {
		return fmt.Errorf("additive schwarz applied before SetUp")
	}
	n, _ := a.op.Dims()
	if len(x) != n || len(y) != n {
		return fmt.Errorf("vector length mismatch: operator %d, x %d, y %d", n, len(x), len(y))
	}

	for i := range y {
		y[i] = 0
	}
	var local mat.VecDense
	for i, p := range a.patches {
		k := len(p)
		if k == 0 {
			continue
		}
		rhs := mat.NewVecDense(k, nil)
		for j, idx := range p {
			rhs.SetVec(j, x[idx])
		}
		if err := a.factors[i].SolveVecTo(&local, trans, rhs); err != nil {
			return fmt.Errorf("patch %d local solve: %w", i, err)
		}
		for j, idx := range p {
			y[idx] += local.AtVec(j)
		}
	}
	return nil
}
