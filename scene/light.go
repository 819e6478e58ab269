package scene

import (
	"github.com/chewxy/math32"

	"retained-renderer/core"
	"retained-renderer/math"
)

type LightType int

const (
	AmbientLight LightType = iota
	DirectionalLight
	PointLight
	SpotLight
	HemisphereLight
	RectAreaLight
)

// Light is the payload of a KindLight node. Only the fields relevant to
// Type are read.
type Light struct {
	Type      LightType
	Color     core.Color
	Intensity float32

	Distance float32 // point, spot: 0 means infinite range
	Decay    float32 // point, spot
	Angle    float32 // spot: cone half-angle in radians
	Penumbra float32 // spot: 0..1

	GroundColor core.Color // hemisphere

	Width, Height float32 // rect area

	// Target is what directional and spot lights point at. It does not need
	// to be part of the scene graph.
	Target *Node

	// Shadow is nil for light types that cannot cast shadows.
	Shadow *LightShadow
}

// LightShadow configures and stores the shadow map of one light.
type LightShadow struct {
	Camera  *Camera
	Bias    float32
	Radius  float32
	MapSize [2]int

	// Map is allocated lazily by the shadow pass.
	Map *RenderTarget
	// Matrix maps world space into shadow-map texture space.
	Matrix math.Mat4
}

func newLightNode(name string, light *Light) *Node {
	n := NewNode(name)
	n.Kind = KindLight
	n.Light = light
	return n
}

func newShadow(camera *Camera) *LightShadow {
	return &LightShadow{
		Camera:  camera,
		Radius:  1,
		MapSize: [2]int{512, 512},
		Matrix:  math.Mat4Identity(),
	}
}

func NewAmbientLight(color core.Color, intensity float32) *Node {
	return newLightNode("AmbientLight", &Light{Type: AmbientLight, Color: color, Intensity: intensity})
}

// NewDirectionalLight shines from the node position toward its target
// (the origin by default).
func NewDirectionalLight(color core.Color, intensity float32) *Node {
	n := newLightNode("DirectionalLight", &Light{
		Type:      DirectionalLight,
		Color:     color,
		Intensity: intensity,
		Target:    NewNode("DirectionalLightTarget"),
		Shadow:    newShadow(NewOrthographicCamera(-5, 5, 5, -5, 0.5, 500)),
	})
	n.SetPosition(math.Vec3Up)
	return n
}

func NewPointLight(color core.Color, intensity, distance, decay float32) *Node {
	return newLightNode("PointLight", &Light{
		Type:      PointLight,
		Color:     color,
		Intensity: intensity,
		Distance:  distance,
		Decay:     decay,
		Shadow:    newShadow(NewPerspectiveCamera(math32.Pi/2, 1, 0.5, 500)),
	})
}

func NewSpotLight(color core.Color, intensity, distance, angle, penumbra, decay float32) *Node {
	n := newLightNode("SpotLight", &Light{
		Type:      SpotLight,
		Color:     color,
		Intensity: intensity,
		Distance:  distance,
		Angle:     angle,
		Penumbra:  penumbra,
		Decay:     decay,
		Target:    NewNode("SpotLightTarget"),
		Shadow:    newShadow(NewPerspectiveCamera(math32.Pi*50/180, 1, 0.5, 500)),
	})
	n.SetPosition(math.Vec3Up)
	return n
}

func NewHemisphereLight(sky, ground core.Color, intensity float32) *Node {
	n := newLightNode("HemisphereLight", &Light{
		Type:        HemisphereLight,
		Color:       sky,
		GroundColor: ground,
		Intensity:   intensity,
	})
	n.SetPosition(math.Vec3Up)
	return n
}

func NewRectAreaLight(color core.Color, intensity, width, height float32) *Node {
	return newLightNode("RectAreaLight", &Light{
		Type:      RectAreaLight,
		Color:     color,
		Intensity: intensity,
		Width:     width,
		Height:    height,
	})
}

// UpdateSpotShadowCamera fits the shadow frustum to the cone of a spot light.
func (l *Light) UpdateSpotShadowCamera() {
	if l.Type != SpotLight || l.Shadow == nil {
		return
	}
	cam := l.Shadow.Camera
	fov := 2 * l.Angle
	aspect := float32(l.Shadow.MapSize[0]) / float32(l.Shadow.MapSize[1])
	far := cam.Far
	if l.Distance > 0 {
		far = l.Distance
	}
	if fov != cam.Fov || aspect != cam.Aspect || far != cam.Far {
		cam.Fov, cam.Aspect, cam.Far = fov, aspect, far
		cam.UpdateProjectionMatrix()
	}
}

// TargetPosition returns the world position the light points at.
func (l *Light) TargetPosition() math.Vec3 {
	if l.Target == nil {
		return math.Vec3Zero
	}
	return l.Target.WorldPosition()
}
