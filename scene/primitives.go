package scene

import (
	"github.com/chewxy/math32"

	"retained-renderer/math"
)

// geometryBuilder accumulates interleaved-by-channel vertex data.
type geometryBuilder struct {
	positions []float32
	normals   []float32
	uvs       []float32
	indices   []uint32
}

func (b *geometryBuilder) vertex(p, n math.Vec3, u, v float32) uint32 {
	idx := uint32(len(b.positions) / 3)
	b.positions = append(b.positions, p[0], p[1], p[2])
	b.normals = append(b.normals, n[0], n[1], n[2])
	b.uvs = append(b.uvs, u, v)
	return idx
}

func (b *geometryBuilder) triangle(a, c, d uint32) {
	b.indices = append(b.indices, a, c, d)
}

func (b *geometryBuilder) build(name string) *Geometry {
	g := NewGeometry(name)
	g.SetAttribute("position", NewFloatAttribute(b.positions, 3))
	g.SetAttribute("normal", NewFloatAttribute(b.normals, 3))
	g.SetAttribute("uv", NewFloatAttribute(b.uvs, 2))
	g.SetIndex(NewIndexAttribute(b.indices))
	return g
}

// CreateBox generates an axis-aligned box centred on the origin. Each face
// is its own group (+X, -X, +Y, -Y, +Z, -Z) so a multi-material node can
// assign one material per face.
func CreateBox(width, height, depth float32) *Geometry {
	hw, hh, hd := width/2, height/2, depth/2
	faces := [6]struct{ n, u, v math.Vec3 }{
		{math.Vec3{hw, 0, 0}, math.Vec3{0, 0, -hd}, math.Vec3{0, hh, 0}},
		{math.Vec3{-hw, 0, 0}, math.Vec3{0, 0, hd}, math.Vec3{0, hh, 0}},
		{math.Vec3{0, hh, 0}, math.Vec3{hw, 0, 0}, math.Vec3{0, 0, -hd}},
		{math.Vec3{0, -hh, 0}, math.Vec3{hw, 0, 0}, math.Vec3{0, 0, hd}},
		{math.Vec3{0, 0, hd}, math.Vec3{hw, 0, 0}, math.Vec3{0, hh, 0}},
		{math.Vec3{0, 0, -hd}, math.Vec3{-hw, 0, 0}, math.Vec3{0, hh, 0}},
	}

	b := &geometryBuilder{}
	for _, f := range faces {
		normal := f.n.Normalize()
		i0 := b.vertex(f.n.Sub(f.u).Sub(f.v), normal, 0, 0)
		i1 := b.vertex(f.n.Add(f.u).Sub(f.v), normal, 1, 0)
		i2 := b.vertex(f.n.Add(f.u).Add(f.v), normal, 1, 1)
		i3 := b.vertex(f.n.Sub(f.u).Add(f.v), normal, 0, 1)
		b.triangle(i0, i1, i2)
		b.triangle(i0, i2, i3)
	}

	g := b.build("Box")
	for i := range faces {
		g.AddGroup(i*6, 6, i)
	}
	return g
}

// CreateSphere generates a UV-sphere
func CreateSphere(radius float32, segments, rings int) *Geometry {
	if segments < 3 {
		segments = 3
	}
	if rings < 2 {
		rings = 2
	}

	b := &geometryBuilder{}
	for ring := 0; ring <= rings; ring++ {
		phi := float32(ring) * math32.Pi / float32(rings)
		sinPhi, cosPhi := math32.Sin(phi), math32.Cos(phi)

		for seg := 0; seg <= segments; seg++ {
			theta := float32(seg) * 2 * math32.Pi / float32(segments)
			sinTheta, cosTheta := math32.Sin(theta), math32.Cos(theta)

			normal := math.Vec3{sinPhi * cosTheta, cosPhi, sinPhi * sinTheta}
			b.vertex(normal.Mul(radius), normal, float32(seg)/float32(segments), float32(ring)/float32(rings))
		}
	}

	for ring := 0; ring < rings; ring++ {
		for seg := 0; seg < segments; seg++ {
			current := uint32(ring*(segments+1) + seg)
			next := current + uint32(segments+1)

			b.triangle(current, next, current+1)
			b.triangle(current+1, next, next+1)
		}
	}

	return b.build("Sphere")
}

// CreateCylinder generates a capped cylinder along Y.
func CreateCylinder(radius, height float32, segments int) *Geometry {
	if segments < 3 {
		segments = 3
	}

	b := &geometryBuilder{}
	halfHeight := height / 2

	for i := 0; i <= segments; i++ {
		theta := float32(i) * 2 * math32.Pi / float32(segments)
		cosT, sinT := math32.Cos(theta), math32.Sin(theta)
		normal := math.Vec3{cosT, 0, sinT}
		u := float32(i) / float32(segments)

		b.vertex(math.Vec3{cosT * radius, -halfHeight, sinT * radius}, normal, u, 0)
		b.vertex(math.Vec3{cosT * radius, halfHeight, sinT * radius}, normal, u, 1)
	}

	for i := 0; i < segments; i++ {
		base := uint32(i * 2)
		b.triangle(base, base+1, base+2)
		b.triangle(base+2, base+1, base+3)
	}

	addCap := func(y float32, normal math.Vec3, flip bool) {
		center := b.vertex(math.Vec3{0, y, 0}, normal, 0.5, 0.5)
		for i := 0; i < segments; i++ {
			theta := float32(i) * 2 * math32.Pi / float32(segments)
			next := float32(i+1) * 2 * math32.Pi / float32(segments)
			cosT, sinT := math32.Cos(theta), math32.Sin(theta)
			cosN, sinN := math32.Cos(next), math32.Sin(next)

			v1 := b.vertex(math.Vec3{cosT * radius, y, sinT * radius}, normal, cosT*0.5+0.5, sinT*0.5+0.5)
			v2 := b.vertex(math.Vec3{cosN * radius, y, sinN * radius}, normal, cosN*0.5+0.5, sinN*0.5+0.5)
			if flip {
				b.triangle(center, v2, v1)
			} else {
				b.triangle(center, v1, v2)
			}
		}
	}
	addCap(halfHeight, math.Vec3Up, false)
	addCap(-halfHeight, math.Vec3{0, -1, 0}, true)

	return b.build("Cylinder")
}

// CreateTorus generates a torus in the XZ plane.
func CreateTorus(majorRadius, minorRadius float32, majorSegments, minorSegments int) *Geometry {
	if majorSegments < 3 {
		majorSegments = 3
	}
	if minorSegments < 3 {
		minorSegments = 3
	}

	b := &geometryBuilder{}
	for i := 0; i <= majorSegments; i++ {
		theta := float32(i) * 2 * math32.Pi / float32(majorSegments)
		cosTheta, sinTheta := math32.Cos(theta), math32.Sin(theta)

		for j := 0; j <= minorSegments; j++ {
			phi := float32(j) * 2 * math32.Pi / float32(minorSegments)
			cosPhi, sinPhi := math32.Cos(phi), math32.Sin(phi)

			p := math.Vec3{
				(majorRadius + minorRadius*cosPhi) * cosTheta,
				minorRadius * sinPhi,
				(majorRadius + minorRadius*cosPhi) * sinTheta,
			}
			n := math.Vec3{cosPhi * cosTheta, sinPhi, cosPhi * sinTheta}.Normalize()
			b.vertex(p, n, float32(i)/float32(majorSegments), float32(j)/float32(minorSegments))
		}
	}

	for i := 0; i < majorSegments; i++ {
		for j := 0; j < minorSegments; j++ {
			current := uint32(i*(minorSegments+1) + j)
			next := uint32((i+1)*(minorSegments+1) + j)

			b.triangle(current, next, current+1)
			b.triangle(current+1, next, next+1)
		}
	}

	return b.build("Torus")
}

// CreatePlane generates a flat, Y-up plane
func CreatePlane(width, depth float32, subdivisions int) *Geometry {
	if subdivisions < 1 {
		subdivisions = 1
	}

	b := &geometryBuilder{}
	halfW, halfD := width/2, depth/2

	for z := 0; z <= subdivisions; z++ {
		for x := 0; x <= subdivisions; x++ {
			u := float32(x) / float32(subdivisions)
			v := float32(z) / float32(subdivisions)
			b.vertex(math.Vec3{-halfW + u*width, 0, -halfD + v*depth}, math.Vec3Up, u, v)
		}
	}

	for z := 0; z < subdivisions; z++ {
		for x := 0; x < subdivisions; x++ {
			topLeft := uint32(z*(subdivisions+1) + x)
			topRight := topLeft + 1
			bottomLeft := topLeft + uint32(subdivisions+1)
			bottomRight := bottomLeft + 1

			b.triangle(topLeft, bottomLeft, topRight)
			b.triangle(topRight, bottomLeft, bottomRight)
		}
	}

	return b.build("Plane")
}

// CreateLineLoop generates a circle outline for line rendering.
func CreateLineLoop(radius float32, segments int) *Geometry {
	if segments < 3 {
		segments = 3
	}
	positions := make([]float32, 0, segments*3)
	for i := 0; i < segments; i++ {
		theta := float32(i) * 2 * math32.Pi / float32(segments)
		positions = append(positions, math32.Cos(theta)*radius, 0, math32.Sin(theta)*radius)
	}
	g := NewGeometry("Circle")
	g.SetAttribute("position", NewFloatAttribute(positions, 3))
	return g
}
