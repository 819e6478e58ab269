// Package lights aggregates the visible lights of a frame into the uniform
// block every lit program reads.
package lights

import (
	"fmt"

	"github.com/chewxy/math32"

	"retained-renderer/core"
	"retained-renderer/internal/programs"
	"retained-renderer/math"
	"retained-renderer/scene"
)

// Field names follow the GLSL structs with the first letter lower-cased.

type Directional struct {
	Direction     math.Vec3
	Color         core.Color
	Shadow        bool
	ShadowBias    float32
	ShadowRadius  float32
	ShadowMapSize math.Vec2
}

type Point struct {
	Position         math.Vec3
	Color            core.Color
	Distance         float32
	Decay            float32
	Shadow           bool
	ShadowBias       float32
	ShadowRadius     float32
	ShadowMapSize    math.Vec2
	ShadowCameraNear float32
	ShadowCameraFar  float32
}

type Spot struct {
	Position      math.Vec3
	Direction     math.Vec3
	Color         core.Color
	Distance      float32
	Decay         float32
	ConeCos       float32
	PenumbraCos   float32
	Shadow        bool
	ShadowBias    float32
	ShadowRadius  float32
	ShadowMapSize math.Vec2
}

type RectArea struct {
	Color      core.Color
	Position   math.Vec3
	HalfWidth  math.Vec3
	HalfHeight math.Vec3
}

type Hemisphere struct {
	Direction   math.Vec3
	SkyColor    core.Color
	GroundColor core.Color
}

// State is the light block of one frame. Positions and directions are in
// view space. Each shadow map and matrix slice runs parallel to its light
// slice; lights without a shadow hold a nil map and an identity matrix.
type State struct {
	// Hash changes whenever the number of lights of any kind or of shadow
	// casters changes.
	Hash    string
	Ambient core.Color

	Directional             []Directional
	DirectionalShadowMap    []*scene.Texture
	DirectionalShadowMatrix []math.Mat4

	Spot             []Spot
	SpotShadowMap    []*scene.Texture
	SpotShadowMatrix []math.Mat4

	Point             []Point
	PointShadowMap    []*scene.Texture
	PointShadowMatrix []math.Mat4

	Hemi     []Hemisphere
	RectArea []RectArea

	// Lights and Shadows are filled during traversal.
	Lights  []*scene.Node
	Shadows []*scene.Node
}

// Init clears the lists gathered during traversal.
func (s *State) Init() {
	s.Lights = s.Lights[:0]
	s.Shadows = s.Shadows[:0]
}

// PushLight records a visible light.
func (s *State) PushLight(n *scene.Node) { s.Lights = append(s.Lights, n) }

// PushShadow records a light that casts shadows this frame.
func (s *State) PushShadow(n *scene.Node) { s.Shadows = append(s.Shadows, n) }

// Setup rebuilds the block from the gathered lights as seen from camera.
// Shadow maps must already be rendered so their matrices are current.
func (s *State) Setup(camera *scene.Camera) {
	view := camera.MatrixWorldInverse()
	s.Ambient = core.Color{A: 1}

	s.Directional = s.Directional[:0]
	s.DirectionalShadowMap = s.DirectionalShadowMap[:0]
	s.DirectionalShadowMatrix = s.DirectionalShadowMatrix[:0]
	s.Spot = s.Spot[:0]
	s.SpotShadowMap = s.SpotShadowMap[:0]
	s.SpotShadowMatrix = s.SpotShadowMatrix[:0]
	s.Point = s.Point[:0]
	s.PointShadowMap = s.PointShadowMap[:0]
	s.PointShadowMatrix = s.PointShadowMatrix[:0]
	s.Hemi = s.Hemi[:0]
	s.RectArea = s.RectArea[:0]

	for _, n := range s.Lights {
		l := n.Light
		if l == nil {
			continue
		}
		color := l.Color.Scale(l.Intensity)
		world := n.GetWorldMatrix()
		position := math.Position(world)

		switch l.Type {
		case scene.AmbientLight:
			s.Ambient.R += color.R
			s.Ambient.G += color.G
			s.Ambient.B += color.B

		case scene.DirectionalLight:
			d := Directional{
				Direction: math.TransformDirection(position.Sub(l.TargetPosition()), view),
				Color:     color,
			}
			m, mat := shadowOf(n, &d.Shadow, &d.ShadowBias, &d.ShadowRadius, &d.ShadowMapSize)
			s.Directional = append(s.Directional, d)
			s.DirectionalShadowMap = append(s.DirectionalShadowMap, m)
			s.DirectionalShadowMatrix = append(s.DirectionalShadowMatrix, mat)

		case scene.SpotLight:
			sp := Spot{
				Position:    math.TransformPoint(position, view),
				Direction:   math.TransformDirection(position.Sub(l.TargetPosition()), view),
				Color:       color,
				Distance:    l.Distance,
				Decay:       l.Decay,
				ConeCos:     math32.Cos(l.Angle),
				PenumbraCos: math32.Cos(l.Angle * (1 - l.Penumbra)),
			}
			m, mat := shadowOf(n, &sp.Shadow, &sp.ShadowBias, &sp.ShadowRadius, &sp.ShadowMapSize)
			s.Spot = append(s.Spot, sp)
			s.SpotShadowMap = append(s.SpotShadowMap, m)
			s.SpotShadowMatrix = append(s.SpotShadowMatrix, mat)

		case scene.PointLight:
			p := Point{
				Position: math.TransformPoint(position, view),
				Color:    color,
				Distance: l.Distance,
				Decay:    l.Decay,
			}
			m, mat := shadowOf(n, &p.Shadow, &p.ShadowBias, &p.ShadowRadius, &p.ShadowMapSize)
			if p.Shadow {
				p.ShadowCameraNear = l.Shadow.Camera.Near
				p.ShadowCameraFar = l.Shadow.Camera.Far
			}
			s.Point = append(s.Point, p)
			s.PointShadowMap = append(s.PointShadowMap, m)
			s.PointShadowMatrix = append(s.PointShadowMatrix, mat)

		case scene.HemisphereLight:
			s.Hemi = append(s.Hemi, Hemisphere{
				Direction:   math.TransformDirection(position, view),
				SkyColor:    color,
				GroundColor: l.GroundColor.Scale(l.Intensity),
			})

		case scene.RectAreaLight:
			rot := rotationOf(view.Mul4(world))
			s.RectArea = append(s.RectArea, RectArea{
				Color:      color,
				Position:   math.TransformPoint(position, view),
				HalfWidth:  rot.Mul3x1(math.Vec3{l.Width * 0.5, 0, 0}),
				HalfHeight: rot.Mul3x1(math.Vec3{0, l.Height * 0.5, 0}),
			})
		}
	}

	s.Hash = fmt.Sprintf("%d,%d,%d,%d,%d,%d",
		len(s.Directional), len(s.Point), len(s.Spot), len(s.RectArea), len(s.Hemi), len(s.Shadows))
}

func shadowOf(n *scene.Node, on *bool, bias, radius *float32, size *math.Vec2) (*scene.Texture, math.Mat4) {
	sh := n.Light.Shadow
	if !n.CastShadow || sh == nil {
		return nil, math.Mat4Identity()
	}
	*on = true
	*bias = sh.Bias
	*radius = sh.Radius
	*size = math.Vec2{float32(sh.MapSize[0]), float32(sh.MapSize[1])}
	var tex *scene.Texture
	if sh.Map != nil {
		tex = sh.Map.Texture
	}
	return tex, sh.Matrix
}

// rotationOf strips scale from the upper 3x3 of m.
func rotationOf(m math.Mat4) math.Mat3 {
	r := m.Mat3()
	for c := 0; c < 3; c++ {
		col := r.Col(c)
		if l := col.Len(); l > 0 {
			r.SetCol(c, col.Mul(1/l))
		}
	}
	return r
}

// Counts reports the number of lights of each kind.
func (s *State) Counts() programs.LightCounts {
	return programs.LightCounts{
		Directional: len(s.Directional),
		Point:       len(s.Point),
		Spot:        len(s.Spot),
		RectArea:    len(s.RectArea),
		Hemi:        len(s.Hemi),
	}
}

// Apply writes the block into a material's uniform table. The entries are
// gated so they are only re-sent when refresh is set.
func (s *State) Apply(u scene.Uniforms, refresh bool) {
	set := func(name string, v any) {
		u.Set(name, v)
		u[name].SetNeedsUpdate(refresh)
	}
	set("ambientLightColor", s.Ambient)
	set("directionalLights", s.Directional)
	set("directionalShadowMap", s.DirectionalShadowMap)
	set("directionalShadowMatrix", s.DirectionalShadowMatrix)
	set("spotLights", s.Spot)
	set("spotShadowMap", s.SpotShadowMap)
	set("spotShadowMatrix", s.SpotShadowMatrix)
	set("pointLights", s.Point)
	set("pointShadowMap", s.PointShadowMap)
	set("pointShadowMatrix", s.PointShadowMatrix)
	set("hemisphereLights", s.Hemi)
	set("rectAreaLights", s.RectArea)
}
