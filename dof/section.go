// Package dof describes how degrees of freedom are laid out over mesh
// points: per field, each point carries a dof count and a base offset into
// that field's local vector, and each field has a value multiplicity
// (components per node).
package dof

import (
	"fmt"
)

// Layout is the read-only dof layout consumed by patch construction.
type Layout interface {
	// FieldCount returns the number of fields in declared order.
	FieldCount() int

	// ValueSize returns the vector components per scalar dof of field.
	ValueSize(field int) int

	// DofCount returns the number of dof nodes field places on point p.
	// A zero count means the point carries nothing for this field.
	DofCount(p, field int) int

	// DofOffset returns the first dof node of field on point p, in
	// field-local node numbering (multiply by ValueSize for components).
	DofOffset(p, field int) int

	// FieldOffset returns where field's block begins in the concatenated
	// local vector across all fields.
	FieldOffset(field int) int
}

// LayeredLayout extends Layout for extruded meshes: every point's dofs form
// a vertical column, walked layer to layer by a fixed stride.
type LayeredLayout interface {
	Layout

	// Layers returns the number of vertical layers.
	Layers() int

	// LayerStride returns the dof stride from one layer's bottom to the
	// next for field on base point p. Zero or negative means the point
	// has no stacked dofs.
	LayerStride(p, field int) int
}

// Section is the concrete Layout: build one with AddField and SetDof, then
// call SetUp to assign offsets.
type Section struct {
	chartStart int
	chartEnd   int
	fields     []*fieldSection
	setUp      bool
}

type fieldSection struct {
	name      string
	valueSize int
	counts    []int
	offsets   []int
	nodes     int // total dof nodes in this field
}

// NewSection creates a section over the point chart [start, end).
func NewSection(start, end int) *Section {
	return &Section{chartStart: start, chartEnd: end}
}

// AddField declares a field with the given value multiplicity and returns
// its index. Field order is the declared order.
func (s *Section) AddField(name string, valueSize int) int {
	n := s.chartEnd - s.chartStart
	s.fields = append(s.fields, &fieldSection{
		name:      name,
		valueSize: valueSize,
		counts:    make([]int, n),
		offsets:   make([]int, n),
	})
	s.setUp = false
	return len(s.fields) - 1
}

// SetDof assigns the dof node count of field on point p.
func (s *Section) SetDof(p, field, count int) {
	s.fields[field].counts[p-s.chartStart] = count
	s.setUp = false
}

// SetUp assigns contiguous per-field offsets in chart order. Must be called
// after the last SetDof and before any query.
func (s *Section) SetUp() {
	for _, f := range s.fields {
		off := 0
		for i, c := range f.counts {
			f.offsets[i] = off
			off += c
		}
		f.nodes = off
	}
	s.setUp = true
}

// Chart returns the point range the section is defined over.
func (s *Section) Chart() (int, int) {
	return s.chartStart, s.chartEnd
}

// FieldCount returns the number of declared fields.
func (s *Section) FieldCount() int {
	return len(s.fields)
}

// FieldName returns the declared name of field.
func (s *Section) FieldName(field int) string {
	return s.fields[field].name
}

// ValueSize returns the components per dof node of field.
func (s *Section) ValueSize(field int) int {
	return s.fields[field].valueSize
}

// DofCount returns the dof node count of field on p.
func (s *Section) DofCount(p, field int) int {
	return s.fields[field].counts[p-s.chartStart]
}

// DofOffset returns the first dof node of field on p.
func (s *Section) DofOffset(p, field int) int {
	s.mustBeSetUp()
	return s.fields[field].offsets[p-s.chartStart]
}

// FieldOffset returns the start of field's block in the local vector.
func (s *Section) FieldOffset(field int) int {
	s.mustBeSetUp()
	off := 0
	for _, f := range s.fields[:field] {
		off += f.nodes * f.valueSize
	}
	return off
}

// Size returns the total local vector length across all fields.
func (s *Section) Size() int {
	s.mustBeSetUp()
	size := 0
	for _, f := range s.fields {
		size += f.nodes * f.valueSize
	}
	return size
}

func (s *Section) mustBeSetUp() {
	if !s.setUp {
		panic(fmt.Sprintf("dof: section with %d fields queried before SetUp", len(s.fields)))
	}
}

// ExtrudedSection is a Section over the base mesh of an extruded mesh,
// where each point's dofs hold a whole vertical column. The per-field
// stride tables map a column-bottom dof offset to the vertical stride at
// that column, mirroring how cell node maps record layer offsets.
type ExtrudedSection struct {
	*Section
	numLayers int
	strides   []map[int]int // [field] -> column bottom offset -> stride
}

// NewExtrudedSection creates a layered section over [start, end) with the
// given number of vertical layers.
func NewExtrudedSection(start, end, layers int) *ExtrudedSection {
	return &ExtrudedSection{
		Section:   NewSection(start, end),
		numLayers: layers,
	}
}

// AddField declares a field and its (initially empty) stride table.
func (s *ExtrudedSection) AddField(name string, valueSize int) int {
	f := s.Section.AddField(name, valueSize)
	s.strides = append(s.strides, make(map[int]int))
	return f
}

// SetColumnStride records the vertical stride for the column whose bottom
// dof node sits at offset within field.
func (s *ExtrudedSection) SetColumnStride(field, offset, stride int) {
	s.strides[field][offset] = stride
}

// Layers returns the number of vertical layers.
func (s *ExtrudedSection) Layers() int {
	return s.numLayers
}

// LayerStride returns the vertical stride of field's column on p, or -1
// when the point carries dofs but no stride was recorded. Points with no
// dofs return 0.
func (s *ExtrudedSection) LayerStride(p, field int) int {
	if s.DofCount(p, field) == 0 {
		return 0
	}
	stride, ok := s.strides[field][s.DofOffset(p, field)]
	if !ok {
		return -1
	}
	return stride
}
