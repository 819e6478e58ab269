package core

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"retained-renderer/math"
)

func TestLayers(t *testing.T) {
	a := DefaultLayers
	b := DefaultLayers

	assert.True(t, a.Test(b))

	b.Set(3)
	assert.False(t, a.Test(b))

	a.Enable(3)
	assert.True(t, a.Test(b))

	a.Disable(3)
	a.Disable(0)
	assert.False(t, a.Test(b))
	assert.Equal(t, Layers(0), a)
}

func TestColorHex(t *testing.T) {
	c := ColorHex(0xff8000)

	assert.Equal(t, float32(1), c.R)
	assert.InDelta(t, 0.502, c.G, 0.001)
	assert.Equal(t, float32(0), c.B)
	assert.Equal(t, math.Vec3{1, c.G, 0}, c.Vec3())
}

func TestTransformMatrix(t *testing.T) {
	tr := NewTransform()
	tr.Position = math.Vec3{1, 2, 3}
	tr.Scale = math.Vec3{2, 2, 2}

	p := math.TransformPoint(math.Vec3{1, 0, 0}, tr.GetMatrix())
	assert.True(t, p.ApproxEqual(math.Vec3{3, 2, 3}))
	assert.True(t, tr.GetForward().ApproxEqual(math.Vec3Front))
}
