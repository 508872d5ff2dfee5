package patch

import (
	"errors"
	"testing"

	"github.com/notargets/asmpatch/dof"
	"github.com/notargets/asmpatch/mesh"
)

// extrudedP2Column lays one field over an extruded interval mesh: each base
// vertex carries a column of layers dofs at stride 2 (one dof per layer
// bottom plus one interior dof between bottoms), cells carry nothing.
func extrudedP2Column(px *mesh.Plex, layers int) *dof.ExtrudedSection {
	start, end := px.Chart()
	sec := dof.NewExtrudedSection(start, end, layers)
	f := sec.AddField("u", 1)
	vs, ve := px.DepthStratum(0)
	for p := vs; p < ve; p++ {
		sec.SetDof(p, f, 1+(layers-1)*2)
	}
	sec.SetUp()
	for p := vs; p < ve; p++ {
		sec.SetColumnStride(f, sec.DofOffset(p, f), 2)
	}
	return sec
}

func TestExtrudedStarPatchCount(t *testing.T) {
	// S owned seeds and L layers must give exactly S*L patches.
	base, err := mesh.IntervalMesh(4)
	if err != nil {
		t.Fatalf("IntervalMesh failed: %v", err)
	}
	layers := 3
	ex := mesh.Extrude(base, layers)
	sec := extrudedP2Column(base, layers)

	patches, err := BuildPatches(ExtrudedStar, DefaultConfig(), ex, sec)
	if err != nil {
		t.Fatalf("BuildPatches failed: %v", err)
	}

	vs, ve := base.DepthStratum(0)
	seeds := ve - vs
	if len(patches) != seeds*layers {
		t.Errorf("Expected %d*%d=%d patches, got %d", seeds, layers, seeds*layers, len(patches))
	}

	// Ghost seeds drop whole columns of patches.
	base.SetGhost(vs)
	patches, err = BuildPatches(ExtrudedStar, DefaultConfig(), ex, sec)
	if err != nil {
		t.Fatalf("BuildPatches failed: %v", err)
	}
	if len(patches) != (seeds-1)*layers {
		t.Errorf("Expected %d patches after ghosting one seed, got %d", (seeds-1)*layers, len(patches))
	}
}

func TestPlaneSelection(t *testing.T) {
	cases := []struct {
		k, layers int
		want      []int
	}{
		{0, 3, []int{1, 0}},
		{1, 3, []int{-1, 1, 0}},
		{2, 3, []int{-1, 0}},
	}
	for _, tc := range cases {
		got := planesFor(tc.k, tc.layers)
		if len(got) != len(tc.want) {
			t.Fatalf("k=%d: expected planes %v, got %v", tc.k, tc.want, got)
		}
		for i := range got {
			if got[i] != tc.want[i] {
				t.Errorf("k=%d: expected planes %v, got %v", tc.k, tc.want, got)
			}
		}
	}
}

func TestExtrudedStarIndices(t *testing.T) {
	// One-cell base mesh, one seed vertex, three layers at stride 2 with
	// one dof per layer bottom. Verify the exact dof ranges per layer.
	base, err := mesh.IntervalMesh(1)
	if err != nil {
		t.Fatalf("IntervalMesh failed: %v", err)
	}
	layers := 3
	ex := mesh.Extrude(base, layers)
	sec := extrudedP2Column(base, layers)

	patches, err := BuildPatches(ExtrudedStar, DefaultConfig(), ex, sec)
	if err != nil {
		t.Fatalf("BuildPatches failed: %v", err)
	}
	if len(patches) != 2*layers {
		t.Fatalf("Expected %d patches, got %d", 2*layers, len(patches))
	}

	// Patches for the first seed vertex (column bottom at offset 0).
	// Column dofs: bottoms at 0, 2, 4; interiors at 1, 3. Every span here
	// has size one, so the stable sort keeps plane order: neighbor plane
	// first, then the current layer.
	wantByLayer := [][]int{
		{1, 0},    // k=0: planes {+1, 0} -> interior [1,2), bottom [0,1)
		{1, 3, 2}, // k=1: planes {-1, +1, 0}
		{3, 4},    // k=2: planes {-1, 0}
	}
	for k, want := range wantByLayer {
		got := patches[k]
		if len(got) != len(want) {
			t.Fatalf("Layer %d: expected %v, got %v", k, want, got)
		}
		for i := range want {
			if got[i] != want[i] {
				t.Errorf("Layer %d: expected %v, got %v", k, want, got)
			}
		}
	}
}

func TestExtrudedStarFlatFallback(t *testing.T) {
	// On a non-layered mesh the extrusion-aware path is not an error: it
	// must produce exactly the flat star patches.
	px, err := mesh.TriangleGrid(3, 3)
	if err != nil {
		t.Fatalf("TriangleGrid failed: %v", err)
	}
	sec := p1Section(px)

	flat, err := BuildPatches(Star, DefaultConfig(), px, sec)
	if err != nil {
		t.Fatalf("Star build failed: %v", err)
	}
	viaExtruded, err := BuildPatches(ExtrudedStar, DefaultConfig(), px, sec)
	if err != nil {
		t.Fatalf("ExtrudedStar build failed: %v", err)
	}

	if len(flat) != len(viaExtruded) {
		t.Fatalf("Expected %d patches, got %d", len(flat), len(viaExtruded))
	}
	for i := range flat {
		if len(flat[i]) != len(viaExtruded[i]) {
			t.Fatalf("Patch %d differs: %v vs %v", i, flat[i], viaExtruded[i])
		}
		for j := range flat[i] {
			if flat[i][j] != viaExtruded[i][j] {
				t.Errorf("Patch %d differs: %v vs %v", i, flat[i], viaExtruded[i])
			}
		}
	}
}

func TestExtrudedStarEmptyPatches(t *testing.T) {
	// A field with no stacked dofs anywhere still emits one (empty) patch
	// per seed and layer; the aggregator must tolerate them.
	base, err := mesh.IntervalMesh(2)
	if err != nil {
		t.Fatalf("IntervalMesh failed: %v", err)
	}
	layers := 2
	ex := mesh.Extrude(base, layers)
	sec := dof.NewExtrudedSection(0, 5, layers)
	sec.AddField("u", 1)
	sec.SetUp()

	patches, err := BuildPatches(ExtrudedStar, DefaultConfig(), ex, sec)
	if err != nil {
		t.Fatalf("BuildPatches failed: %v", err)
	}
	vs, ve := base.DepthStratum(0)
	if len(patches) != (ve-vs)*layers {
		t.Fatalf("Expected %d patches, got %d", (ve-vs)*layers, len(patches))
	}
	for i, p := range patches {
		if len(p) != 0 {
			t.Errorf("Patch %d: expected empty, got %v", i, p)
		}
	}
}

func TestExtrudedStarLayoutErrors(t *testing.T) {
	base, err := mesh.IntervalMesh(2)
	if err != nil {
		t.Fatalf("IntervalMesh failed: %v", err)
	}
	ex := mesh.Extrude(base, 3)

	t.Run("FlatLayout", func(t *testing.T) {
		_, err := BuildPatches(ExtrudedStar, DefaultConfig(), ex, p1Section(base))
		if !errors.Is(err, ErrConfiguration) {
			t.Errorf("Expected a configuration error for a flat layout, got %v", err)
		}
	})

	t.Run("LayerMismatch", func(t *testing.T) {
		sec := extrudedP2Column(base, 4)
		_, err := BuildPatches(ExtrudedStar, DefaultConfig(), ex, sec)
		if !errors.Is(err, ErrConfiguration) {
			t.Errorf("Expected a configuration error for a layer mismatch, got %v", err)
		}
	})

	t.Run("MissingStride", func(t *testing.T) {
		start, end := base.Chart()
		sec := dof.NewExtrudedSection(start, end, 3)
		f := sec.AddField("u", 1)
		vs, _ := base.DepthStratum(0)
		sec.SetDof(vs, f, 5)
		sec.SetUp()
		// No SetColumnStride call: the profile build must fail.
		_, err := BuildPatches(ExtrudedStar, DefaultConfig(), ex, sec)
		if err == nil {
			t.Error("Expected an error for a column without a recorded stride")
		}
	})
}
