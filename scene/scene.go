package scene

import (
	"sync/atomic"

	"retained-renderer/core"
)

// Fog is linear between Near and Far, or exponential-squared with Density
// when Exp2 is set.
type Fog struct {
	Color   core.Color
	Near    float32
	Far     float32
	Density float32
	Exp2    bool
}

func NewFog(color core.Color, near, far float32) *Fog {
	return &Fog{Color: color, Near: near, Far: far}
}

func NewFogExp2(color core.Color, density float32) *Fog {
	return &Fog{Color: color, Density: density, Exp2: true}
}

var nextSceneID atomic.Uint32

// Scene is the root of a renderable graph.
type Scene struct {
	Root *Node
	Fog  *Fog
	// Background, when set, is the clear color used by Render.
	Background *core.Color
	// OverrideMaterial replaces every node's material in the main pass.
	OverrideMaterial *Material
	// AutoUpdate recomputes world matrices at the start of each Render.
	AutoUpdate bool

	id uint32
}

func NewScene() *Scene {
	return &Scene{
		Root:       NewNode("Root"),
		AutoUpdate: true,
		id:         nextSceneID.Add(1),
	}
}

// ID identifies the scene in per-(scene, camera) renderer caches.
func (s *Scene) ID() uint32 { return s.id }

func (s *Scene) AddNode(node *Node) {
	s.Root.AddChild(node)
}

func (s *Scene) RemoveNode(node *Node) {
	s.Root.RemoveChild(node)
}

// Lights returns every light node in the graph, visible or not.
func (s *Scene) Lights() []*Node {
	var lights []*Node
	s.Root.Traverse(func(n *Node) {
		if n.Kind == KindLight {
			lights = append(lights, n)
		}
	})
	return lights
}

// UpdateMatrixWorld refreshes cached world matrices for the whole graph.
func (s *Scene) UpdateMatrixWorld() {
	s.Root.UpdateMatrixWorld()
}
