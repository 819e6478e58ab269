package uniforms

import (
	"retained-renderer/core"
	"retained-renderer/math"
)

// appendFloats flattens a uniform value into dst. width is the number of
// components the GPU type expects per element (1, 2, 3, 4, 9 or 16) and
// selects RGB versus RGBA for colors. It reports false for values it does
// not understand.
func appendFloats(dst []float32, v any, width int) ([]float32, bool) {
	switch x := v.(type) {
	case float32:
		return append(dst, x), true
	case float64:
		return append(dst, float32(x)), true
	case int:
		return append(dst, float32(x)), true
	case int32:
		return append(dst, float32(x)), true
	case bool:
		if x {
			return append(dst, 1), true
		}
		return append(dst, 0), true
	case math.Vec2:
		return append(dst, x[:]...), true
	case math.Vec3:
		return append(dst, x[:]...), true
	case math.Vec4:
		return append(dst, x[:]...), true
	case math.Mat3:
		return append(dst, x[:]...), true
	case math.Mat4:
		return append(dst, x[:]...), true
	case core.Color:
		if width == 4 {
			return append(dst, x.R, x.G, x.B, x.A), true
		}
		return append(dst, x.R, x.G, x.B), true
	case math.Plane:
		return append(dst, x.Normal[0], x.Normal[1], x.Normal[2], x.Constant), true
	case []float32:
		return append(dst, x...), true
	case []math.Vec2:
		for _, e := range x {
			dst = append(dst, e[:]...)
		}
		return dst, true
	case []math.Vec3:
		for _, e := range x {
			dst = append(dst, e[:]...)
		}
		return dst, true
	case []math.Vec4:
		for _, e := range x {
			dst = append(dst, e[:]...)
		}
		return dst, true
	case []math.Mat3:
		for _, e := range x {
			dst = append(dst, e[:]...)
		}
		return dst, true
	case []math.Mat4:
		for _, e := range x {
			dst = append(dst, e[:]...)
		}
		return dst, true
	case []core.Color:
		for _, e := range x {
			dst, _ = appendFloats(dst, e, width)
		}
		return dst, true
	case []math.Plane:
		for _, e := range x {
			dst, _ = appendFloats(dst, e, width)
		}
		return dst, true
	}
	return dst, false
}

// appendInts flattens integer and boolean values.
func appendInts(dst []int32, v any) ([]int32, bool) {
	switch x := v.(type) {
	case int32:
		return append(dst, x), true
	case int:
		return append(dst, int32(x)), true
	case uint32:
		return append(dst, int32(x)), true
	case bool:
		if x {
			return append(dst, 1), true
		}
		return append(dst, 0), true
	case float32:
		return append(dst, int32(x)), true
	case []int32:
		return append(dst, x...), true
	case []int:
		for _, e := range x {
			dst = append(dst, int32(e))
		}
		return dst, true
	case []bool:
		for _, e := range x {
			dst, _ = appendInts(dst, e)
		}
		return dst, true
	}
	return dst, false
}
