package math

import "github.com/chewxy/math32"

// Box3 is an axis-aligned bounding box.
type Box3 struct {
	Min, Max Vec3
}

// EmptyBox3 returns an inverted box that any point will expand.
func EmptyBox3() Box3 {
	inf := math32.Inf(1)
	return Box3{Min: Vec3{inf, inf, inf}, Max: Vec3{-inf, -inf, -inf}}
}

func (b Box3) IsEmpty() bool {
	return b.Max[0] < b.Min[0] || b.Max[1] < b.Min[1] || b.Max[2] < b.Min[2]
}

func (b Box3) ExpandByPoint(p Vec3) Box3 {
	return Box3{Min: MinVec3(b.Min, p), Max: MaxVec3(b.Max, p)}
}

func (b Box3) Center() Vec3 {
	if b.IsEmpty() {
		return Vec3{}
	}
	return b.Min.Add(b.Max).Mul(0.5)
}

// Box3FromPoints bounds a packed xyz array.
func Box3FromPoints(positions []float32) Box3 {
	b := EmptyBox3()
	for i := 0; i+2 < len(positions); i += 3 {
		b = b.ExpandByPoint(Vec3{positions[i], positions[i+1], positions[i+2]})
	}
	return b
}

// ApplyMatrix4 transforms all eight corners and re-bounds them.
func (b Box3) ApplyMatrix4(m Mat4) Box3 {
	if b.IsEmpty() {
		return b
	}
	mn, mx := b.Min, b.Max
	corners := [8]Vec3{
		{mn[0], mn[1], mn[2]},
		{mx[0], mn[1], mn[2]},
		{mn[0], mx[1], mn[2]},
		{mx[0], mx[1], mn[2]},
		{mn[0], mn[1], mx[2]},
		{mx[0], mn[1], mx[2]},
		{mn[0], mx[1], mx[2]},
		{mx[0], mx[1], mx[2]},
	}
	out := EmptyBox3()
	for _, c := range corners {
		out = out.ExpandByPoint(TransformPoint(c, m))
	}
	return out
}

func sqrt(v float32) float32 {
	return math32.Sqrt(v)
}
