package core

import (
	"retained-renderer/math"
)

type Color struct {
	R, G, B, A float32
}

var (
	ColorWhite  = Color{1, 1, 1, 1}
	ColorBlack  = Color{0, 0, 0, 1}
	ColorRed    = Color{1, 0, 0, 1}
	ColorGreen  = Color{0, 1, 0, 1}
	ColorBlue   = Color{0, 0, 1, 1}
	ColorYellow = Color{1, 1, 0, 1}
)

// ColorHex builds an opaque color from 0xRRGGBB.
func ColorHex(hex uint32) Color {
	return Color{
		R: float32(hex>>16&0xff) / 255,
		G: float32(hex>>8&0xff) / 255,
		B: float32(hex&0xff) / 255,
		A: 1,
	}
}

func (c Color) Vec3() math.Vec3 {
	return math.Vec3{c.R, c.G, c.B}
}

func (c Color) Vec4() math.Vec4 {
	return math.Vec4{c.R, c.G, c.B, c.A}
}

// Scale multiplies the RGB channels, leaving alpha untouched.
func (c Color) Scale(s float32) Color {
	return Color{c.R * s, c.G * s, c.B * s, c.A}
}

type Transform struct {
	Position math.Vec3
	Rotation math.Quat
	Scale    math.Vec3
}

func NewTransform() Transform {
	return Transform{
		Position: math.Vec3Zero,
		Rotation: math.QuaternionIdentity(),
		Scale:    math.Vec3One,
	}
}

// GetMatrix composes translation * rotation * scale.
func (t Transform) GetMatrix() math.Mat4 {
	return math.Compose(t.Position, t.Rotation, t.Scale)
}

func (t Transform) GetForward() math.Vec3 {
	return t.Rotation.Rotate(math.Vec3Front)
}

func (t Transform) GetRight() math.Vec3 {
	return t.Rotation.Rotate(math.Vec3Right)
}

func (t Transform) GetUp() math.Vec3 {
	return t.Rotation.Rotate(math.Vec3Up)
}

// Rect is an integer pixel rectangle used for viewports and scissor boxes.
type Rect struct {
	X, Y, Width, Height int
}

func (r Rect) Scale(s float32) Rect {
	return Rect{
		X:      int(float32(r.X) * s),
		Y:      int(float32(r.Y) * s),
		Width:  int(float32(r.Width) * s),
		Height: int(float32(r.Height) * s),
	}
}
