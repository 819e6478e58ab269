package math

// Sphere is a bounding sphere. A negative radius marks an empty sphere.
type Sphere struct {
	Center Vec3
	Radius float32
}

func (s Sphere) IsEmpty() bool {
	return s.Radius < 0
}

// ApplyMatrix4 moves the center by m and scales the radius by the largest
// axis scale, so the result still encloses the transformed volume.
func (s Sphere) ApplyMatrix4(m Mat4) Sphere {
	return Sphere{
		Center: TransformPoint(s.Center, m),
		Radius: s.Radius * MaxScaleOnAxis(m),
	}
}

// SphereFromPoints returns the sphere centered on the points' bounding box
// that encloses all of them. positions is a packed xyz array.
func SphereFromPoints(positions []float32) Sphere {
	if len(positions) < 3 {
		return Sphere{Radius: -1}
	}
	box := Box3FromPoints(positions)
	center := box.Center()
	var maxSq float32
	for i := 0; i+2 < len(positions); i += 3 {
		d := Vec3{positions[i], positions[i+1], positions[i+2]}.Sub(center).LenSqr()
		maxSq = max(maxSq, d)
	}
	return Sphere{Center: center, Radius: sqrt(maxSq)}
}
