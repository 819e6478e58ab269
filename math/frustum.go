package math

// Frustum holds six inward-facing planes: right, left, bottom, top, far, near.
type Frustum struct {
	Planes [6]Plane
}

// FrustumFromMatrix extracts the planes of a projection * view matrix
// (Gribb/Hartmann). Each plane is normalized so distances are in world units.
func FrustumFromMatrix(m Mat4) Frustum {
	var f Frustum
	f.Planes[0] = PlaneFromComponents(m[3]-m[0], m[7]-m[4], m[11]-m[8], m[15]-m[12]).Normalize()
	f.Planes[1] = PlaneFromComponents(m[3]+m[0], m[7]+m[4], m[11]+m[8], m[15]+m[12]).Normalize()
	f.Planes[2] = PlaneFromComponents(m[3]+m[1], m[7]+m[5], m[11]+m[9], m[15]+m[13]).Normalize()
	f.Planes[3] = PlaneFromComponents(m[3]-m[1], m[7]-m[5], m[11]-m[9], m[15]-m[13]).Normalize()
	f.Planes[4] = PlaneFromComponents(m[3]-m[2], m[7]-m[6], m[11]-m[10], m[15]-m[14]).Normalize()
	f.Planes[5] = PlaneFromComponents(m[3]+m[2], m[7]+m[6], m[11]+m[10], m[15]+m[14]).Normalize()
	return f
}

// IntersectsSphere reports whether any part of s is inside the frustum.
func (f *Frustum) IntersectsSphere(s Sphere) bool {
	for i := range f.Planes {
		if f.Planes[i].DistanceToPoint(s.Center) < -s.Radius {
			return false
		}
	}
	return true
}

// IntersectsBox uses the positive-vertex test: for each plane, the corner
// furthest along the normal must be inside.
func (f *Frustum) IntersectsBox(b Box3) bool {
	for i := range f.Planes {
		p := &f.Planes[i]
		v := b.Min
		if p.Normal[0] > 0 {
			v[0] = b.Max[0]
		}
		if p.Normal[1] > 0 {
			v[1] = b.Max[1]
		}
		if p.Normal[2] > 0 {
			v[2] = b.Max[2]
		}
		if p.DistanceToPoint(v) < 0 {
			return false
		}
	}
	return true
}

func (f *Frustum) ContainsPoint(p Vec3) bool {
	for i := range f.Planes {
		if f.Planes[i].DistanceToPoint(p) < 0 {
			return false
		}
	}
	return true
}
