package scene

import (
	"retained-renderer/math"
)

// Attribute is one vertex channel (Float) or an index buffer (Uint).
// Call MarkDirty after editing the data so the GPU copy is refreshed.
type Attribute struct {
	Float      []float32
	Uint       []uint32
	ItemSize   int
	Normalized bool
	Dynamic    bool

	// UpdateRange limits the next upload of a dynamic attribute to a
	// sub-range of elements. Count < 0 uploads everything.
	UpdateRange struct{ Offset, Count int }

	handle  Handle
	version uint32
}

func NewFloatAttribute(data []float32, itemSize int) *Attribute {
	a := &Attribute{Float: data, ItemSize: itemSize, handle: attributeHandles.acquire()}
	a.UpdateRange.Count = -1
	return a
}

func NewIndexAttribute(indices []uint32) *Attribute {
	a := &Attribute{Uint: indices, ItemSize: 1, handle: attributeHandles.acquire()}
	a.UpdateRange.Count = -1
	return a
}

func (a *Attribute) Handle() Handle  { return a.handle }
func (a *Attribute) Version() uint32 { return a.version }
func (a *Attribute) IsIndex() bool   { return a.Uint != nil }

// MarkDirty schedules a re-upload.
func (a *Attribute) MarkDirty() {
	a.version++
}

// Count is the number of elements (vertices or indices).
func (a *Attribute) Count() int {
	if a.IsIndex() {
		return len(a.Uint)
	}
	if a.ItemSize == 0 {
		return 0
	}
	return len(a.Float) / a.ItemSize
}

// Dispose returns the attribute's handle for reuse. Attributes owned by a
// geometry are released by Geometry.Dispose.
func (a *Attribute) Dispose() {
	attributeHandles.release(a.handle)
	a.handle = 0
}

// Group is a sub-range of the geometry drawn with one material of a
// multi-material node.
type Group struct {
	Start         int
	Count         int
	MaterialIndex int
}

// DrawRange limits drawing to a sub-range. Count < 0 means "to the end".
type DrawRange struct {
	Start int
	Count int
}

// Geometry is a set of named vertex attributes with an optional index.
type Geometry struct {
	Name       string
	Attributes map[string]*Attribute
	Index      *Attribute
	Groups     []Group
	DrawRange  DrawRange

	MorphPositions []*Attribute
	MorphNormals   []*Attribute

	handle  Handle
	version uint32

	boundsKey      [2]uint32
	boundsValid    bool
	boundingSphere math.Sphere
	boundingBox    math.Box3
}

func NewGeometry(name string) *Geometry {
	return &Geometry{
		Name:       name,
		Attributes: make(map[string]*Attribute),
		DrawRange:  DrawRange{Count: -1},
		handle:     geometryHandles.acquire(),
	}
}

func (g *Geometry) Handle() Handle  { return g.handle }
func (g *Geometry) Version() uint32 { return g.version }

// MarkDirty signals a structural change (attributes added/removed, index
// replaced). It invalidates cached bounds and derived buffers.
func (g *Geometry) MarkDirty() {
	g.version++
}

func (g *Geometry) SetAttribute(name string, a *Attribute) {
	g.Attributes[name] = a
	g.MarkDirty()
}

func (g *Geometry) SetIndex(a *Attribute) {
	g.Index = a
	g.MarkDirty()
}

func (g *Geometry) AddGroup(start, count, materialIndex int) {
	g.Groups = append(g.Groups, Group{Start: start, Count: count, MaterialIndex: materialIndex})
}

func (g *Geometry) Position() *Attribute {
	return g.Attributes["position"]
}

func (g *Geometry) computeBounds() {
	pos := g.Position()
	key := [2]uint32{g.version, 0}
	if pos != nil {
		key[1] = pos.version
	}
	if g.boundsValid && key == g.boundsKey {
		return
	}
	if pos == nil {
		g.boundingBox = math.EmptyBox3()
		g.boundingSphere = math.Sphere{Radius: -1}
	} else {
		g.boundingBox = math.Box3FromPoints(pos.Float)
		g.boundingSphere = math.SphereFromPoints(pos.Float)
	}
	g.boundsKey = key
	g.boundsValid = true
}

// BoundingSphere is computed on first use and cached until the geometry or
// its position attribute changes version.
func (g *Geometry) BoundingSphere() math.Sphere {
	g.computeBounds()
	return g.boundingSphere
}

func (g *Geometry) BoundingBox() math.Box3 {
	g.computeBounds()
	return g.boundingBox
}

// Dispose returns the geometry's handles for reuse. Use
// Renderer.DisposeGeometry to also free GPU buffers.
func (g *Geometry) Dispose() {
	for _, a := range g.Attributes {
		a.Dispose()
	}
	if g.Index != nil {
		g.Index.Dispose()
	}
	for _, a := range g.MorphPositions {
		a.Dispose()
	}
	for _, a := range g.MorphNormals {
		a.Dispose()
	}
	geometryHandles.release(g.handle)
	g.handle = 0
}
