package resources

import (
	"retained-renderer/gpu"
	"retained-renderer/scene"
)

type geometryEntry struct {
	wireframe    *scene.Attribute
	wireframeKey [2]uint32
}

// Geometries tracks which geometries have GPU buffers and derives the line
// index used for wireframe drawing.
type Geometries struct {
	attributes *Attributes
	info       *Info
	entries    Table[*geometryEntry]
}

func NewGeometries(attributes *Attributes, info *Info) *Geometries {
	return &Geometries{attributes: attributes, info: info}
}

// Get registers geo on first sight and counts it in Info.Memory.
func (g *Geometries) Get(geo *scene.Geometry) *scene.Geometry {
	if _, ok := g.entries.Get(geo.Handle()); !ok && geo.Handle() != 0 {
		g.entries.Put(geo.Handle(), &geometryEntry{})
		g.info.Memory.Geometries++
	}
	return geo
}

// Update uploads every attribute, the index and the morph targets of geo.
func (g *Geometries) Update(geo *scene.Geometry) {
	if geo.Index != nil {
		g.attributes.Update(geo.Index, gpu.ELEMENT_ARRAY_BUFFER)
	}
	for _, a := range geo.Attributes {
		g.attributes.Update(a, gpu.ARRAY_BUFFER)
	}
	for _, a := range geo.MorphPositions {
		g.attributes.Update(a, gpu.ARRAY_BUFFER)
	}
	for _, a := range geo.MorphNormals {
		g.attributes.Update(a, gpu.ARRAY_BUFFER)
	}
}

// Wireframe returns a line-list index covering every triangle edge of geo,
// uploaded and cached until the geometry or its source data changes.
func (g *Geometries) Wireframe(geo *scene.Geometry) *scene.Attribute {
	e, ok := g.entries.Get(geo.Handle())
	if !ok {
		g.Get(geo)
		if e, ok = g.entries.Get(geo.Handle()); !ok {
			return nil
		}
	}

	src := geo.Index
	if src == nil {
		src = geo.Position()
	}
	key := [2]uint32{geo.Version(), 0}
	if src != nil {
		key[1] = src.Version()
	}
	if e.wireframe != nil && e.wireframeKey == key {
		return e.wireframe
	}

	var lines []uint32
	switch {
	case geo.Index != nil:
		idx := geo.Index.Uint
		for i := 0; i+2 < len(idx); i += 3 {
			a, b, c := idx[i], idx[i+1], idx[i+2]
			lines = append(lines, a, b, b, c, c, a)
		}
	case src != nil:
		n := uint32(src.Count())
		for i := uint32(0); i+2 < n; i += 3 {
			lines = append(lines, i, i+1, i+1, i+2, i+2, i)
		}
	}

	if e.wireframe != nil {
		g.attributes.Remove(e.wireframe)
		e.wireframe.Dispose()
	}
	e.wireframe = scene.NewIndexAttribute(lines)
	e.wireframeKey = key
	g.attributes.Update(e.wireframe, gpu.ELEMENT_ARRAY_BUFFER)
	return e.wireframe
}

// Dispose deletes the GPU buffers of geo and its derived wireframe index.
func (g *Geometries) Dispose(geo *scene.Geometry) {
	if geo.Index != nil {
		g.attributes.Remove(geo.Index)
	}
	for _, a := range geo.Attributes {
		g.attributes.Remove(a)
	}
	for _, a := range geo.MorphPositions {
		g.attributes.Remove(a)
	}
	for _, a := range geo.MorphNormals {
		g.attributes.Remove(a)
	}
	e, ok := g.entries.Delete(geo.Handle())
	if !ok {
		return
	}
	if e.wireframe != nil {
		g.attributes.Remove(e.wireframe)
		e.wireframe.Dispose()
	}
	g.info.Memory.Geometries--
}

// Reset forgets every geometry after context loss. Memory counters keep
// counting the CPU-side objects, which are re-uploaded on next use.
func (g *Geometries) Reset() {
	g.entries.Range(func(_ scene.Handle, e *geometryEntry) bool {
		if e.wireframe != nil {
			e.wireframe.Dispose()
			e.wireframe = nil
		}
		return true
	})
}
