package math

// Plane is the half-space Normal·p + Constant = 0. Points with a positive
// distance are on the inside.
type Plane struct {
	Normal   Vec3
	Constant float32
}

func NewPlane(normal Vec3, constant float32) Plane {
	return Plane{Normal: normal, Constant: constant}
}

// PlaneFromComponents builds a plane from raw (a, b, c, d) coefficients.
func PlaneFromComponents(a, b, c, d float32) Plane {
	return Plane{Normal: Vec3{a, b, c}, Constant: d}
}

// Normalize scales normal and constant so the normal has unit length.
func (p Plane) Normalize() Plane {
	l := p.Normal.Len()
	if l == 0 {
		return p
	}
	inv := 1 / l
	return Plane{Normal: p.Normal.Mul(inv), Constant: p.Constant * inv}
}

// DistanceToPoint returns the signed distance from pt to the plane.
func (p Plane) DistanceToPoint(pt Vec3) float32 {
	return p.Normal.Dot(pt) + p.Constant
}

// CoplanarPoint returns the point on the plane closest to the origin.
func (p Plane) CoplanarPoint() Vec3 {
	return p.Normal.Mul(-p.Constant)
}

// ApplyMatrix4 transforms the plane by m. normalMatrix must be the inverse
// transpose of m's upper 3x3.
func (p Plane) ApplyMatrix4(m Mat4, normalMatrix Mat3) Plane {
	ref := TransformPoint(p.CoplanarPoint(), m)
	n := normalMatrix.Mul3x1(p.Normal)
	if n.LenSqr() > 0 {
		n = n.Normalize()
	}
	return Plane{Normal: n, Constant: -ref.Dot(n)}
}

// Vec4 packs the plane as (nx, ny, nz, constant) for upload.
func (p Plane) Vec4() Vec4 {
	return Vec4{p.Normal[0], p.Normal[1], p.Normal[2], p.Constant}
}
