package scene

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"

	"retained-renderer/math"
)

type ProjectionType int

const (
	PerspectiveProjection ProjectionType = iota
	OrthographicProjection
)

// Camera is a scene node with a projection. Fov is vertical and in radians.
type Camera struct {
	*Node

	Projection ProjectionType
	Fov        float32
	Aspect     float32
	Near       float32
	Far        float32
	Zoom       float32

	Left, Right, Top, Bottom float32

	projectionMatrix        math.Mat4
	projectionMatrixInverse math.Mat4
	matrixWorldInverse      math.Mat4
}

func NewPerspectiveCamera(fov, aspect, near, far float32) *Camera {
	c := &Camera{
		Node:       NewNode("PerspectiveCamera"),
		Projection: PerspectiveProjection,
		Fov:        fov,
		Aspect:     aspect,
		Near:       near,
		Far:        far,
		Zoom:       1,
	}
	c.attach()
	return c
}

func NewOrthographicCamera(left, right, top, bottom, near, far float32) *Camera {
	c := &Camera{
		Node:       NewNode("OrthographicCamera"),
		Projection: OrthographicProjection,
		Left:       left,
		Right:      right,
		Top:        top,
		Bottom:     bottom,
		Near:       near,
		Far:        far,
		Zoom:       1,
	}
	c.attach()
	return c
}

func (c *Camera) attach() {
	c.Node.Kind = KindCamera
	c.Node.Camera = c
	c.matrixWorldInverse = math.Mat4Identity()
	c.UpdateProjectionMatrix()
}

// UpdateProjectionMatrix must be called after changing any projection field.
func (c *Camera) UpdateProjectionMatrix() {
	zoom := c.Zoom
	if zoom == 0 {
		zoom = 1
	}
	switch c.Projection {
	case OrthographicProjection:
		dx := (c.Right - c.Left) / (2 * zoom)
		dy := (c.Top - c.Bottom) / (2 * zoom)
		cx := (c.Right + c.Left) / 2
		cy := (c.Top + c.Bottom) / 2
		c.projectionMatrix = mgl32.Ortho(cx-dx, cx+dx, cy-dy, cy+dy, c.Near, c.Far)
	default:
		fov := 2 * math32.Atan(math32.Tan(c.Fov/2)/zoom)
		c.projectionMatrix = mgl32.Perspective(fov, c.Aspect, c.Near, c.Far)
	}
	c.projectionMatrixInverse = math.Inverse(c.projectionMatrix)
}

func (c *Camera) ProjectionMatrix() math.Mat4 {
	return c.projectionMatrix
}

func (c *Camera) ProjectionMatrixInverse() math.Mat4 {
	return c.projectionMatrixInverse
}

// UpdateMatrixWorldInverse recomputes the view matrix from the world matrix.
func (c *Camera) UpdateMatrixWorldInverse() {
	c.matrixWorldInverse = math.Inverse(c.GetWorldMatrix())
}

// MatrixWorldInverse is the view matrix as of the last
// UpdateMatrixWorldInverse call.
func (c *Camera) MatrixWorldInverse() math.Mat4 {
	return c.matrixWorldInverse
}

func (c *Camera) UpdateAspectRatio(width, height float32) {
	if height > 0 {
		c.Aspect = width / height
		c.UpdateProjectionMatrix()
	}
}

// OrbitCamera moves a camera on a sphere around a target point.
type OrbitCamera struct {
	*Camera
	Target   math.Vec3
	Distance float32
	Yaw      float32
	Pitch    float32
}

func NewOrbitCamera(target math.Vec3, distance, fov, aspectRatio float32) *OrbitCamera {
	c := &OrbitCamera{
		Camera:   NewPerspectiveCamera(fov, aspectRatio, 0.1, 1000.0),
		Target:   target,
		Distance: distance,
		Pitch:    0.3,
	}
	c.UpdatePosition()
	return c
}

func (c *OrbitCamera) UpdatePosition() {
	c.Pitch = mgl32.Clamp(c.Pitch, -1.5, 1.5)

	cosPitch, sinPitch := math32.Cos(c.Pitch), math32.Sin(c.Pitch)
	cosYaw, sinYaw := math32.Cos(c.Yaw), math32.Sin(c.Yaw)

	offset := math.Vec3{
		c.Distance * cosPitch * sinYaw,
		c.Distance * sinPitch,
		c.Distance * cosPitch * cosYaw,
	}

	c.SetPosition(c.Target.Add(offset))
	c.LookAt(c.Target)
}

func (c *OrbitCamera) Orbit(deltaYaw, deltaPitch float32) {
	c.Yaw += deltaYaw
	c.Pitch += deltaPitch
	c.UpdatePosition()
}

// Dolly moves the camera toward (negative delta) or away from the target.
func (c *OrbitCamera) Dolly(delta float32) {
	c.Distance = max(c.Distance+delta, 0.1)
	c.UpdatePosition()
}
