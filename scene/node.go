package scene

import (
	"retained-renderer/core"
	"retained-renderer/math"
)

// ObjectKind tells the renderer how to treat a node.
type ObjectKind int

const (
	KindGroup ObjectKind = iota
	KindMesh
	KindLine
	KindLineSegments
	KindLineLoop
	KindPoints
	KindLight
	KindCamera
)

// IsDrawable reports whether nodes of this kind produce draw calls.
func (k ObjectKind) IsDrawable() bool {
	switch k {
	case KindMesh, KindLine, KindLineSegments, KindLineLoop, KindPoints:
		return true
	}
	return false
}

func (k ObjectKind) IsLine() bool {
	return k == KindLine || k == KindLineSegments || k == KindLineLoop
}

// Node represents an object in the scene graph
type Node struct {
	Name      string
	Kind      ObjectKind
	Transform core.Transform
	Up        math.Vec3
	Parent    *Node
	Children  []*Node
	Id        uint32

	Visible       bool
	Layers        core.Layers
	FrustumCulled bool
	CastShadow    bool
	ReceiveShadow bool
	RenderOrder   int

	// Drawable payload. Materials, when set, is indexed by Geometry group
	// material indices and takes precedence over Material.
	Geometry              *Geometry
	Material              *Material
	Materials             []*Material
	DrawMode              DrawMode
	InstanceCount         int
	MorphTargetInfluences []float32

	// Skinning. BindMatrix is the mesh's world matrix at bind time.
	Skeleton          *Skeleton
	BindMatrix        math.Mat4
	BindMatrixInverse math.Mat4

	// Shadow pass overrides.
	CustomDepthMaterial    *Material
	CustomDistanceMaterial *Material

	Light  *Light
	Camera *Camera

	// Written by the renderer before each draw.
	ModelViewMatrix math.Mat4
	NormalMatrix    math.Mat3

	// Cached world transform
	worldMatrixDirty bool
	worldMatrix      math.Mat4
}

var nodeIdCounter uint32 = 0

func NewNode(name string) *Node {
	nodeIdCounter++
	return &Node{
		Name:              name,
		Transform:         core.NewTransform(),
		Up:                math.Vec3Up,
		Children:          make([]*Node, 0),
		Visible:           true,
		Layers:            core.DefaultLayers,
		FrustumCulled:     true,
		Id:                nodeIdCounter,
		worldMatrixDirty:  true,
		worldMatrix:       math.Mat4Identity(),
		BindMatrix:        math.Mat4Identity(),
		BindMatrixInverse: math.Mat4Identity(),
	}
}

// NewMesh creates a triangle mesh node.
func NewMesh(name string, geometry *Geometry, material *Material) *Node {
	n := NewNode(name)
	n.Kind = KindMesh
	n.Geometry = geometry
	n.Material = material
	return n
}

// NewMultiMaterialMesh creates a mesh whose geometry groups select one of
// materials each.
func NewMultiMaterialMesh(name string, geometry *Geometry, materials []*Material) *Node {
	n := NewMesh(name, geometry, nil)
	n.Materials = materials
	return n
}

func NewLine(name string, kind ObjectKind, geometry *Geometry, material *Material) *Node {
	n := NewNode(name)
	n.Kind = kind
	n.Geometry = geometry
	n.Material = material
	return n
}

func NewPoints(name string, geometry *Geometry, material *Material) *Node {
	n := NewNode(name)
	n.Kind = KindPoints
	n.Geometry = geometry
	n.Material = material
	return n
}

func (n *Node) AddChild(child *Node) {
	if child.Parent != nil {
		child.Parent.RemoveChild(child)
	}
	child.Parent = n
	n.Children = append(n.Children, child)
	child.MarkWorldMatrixDirty()
}

func (n *Node) RemoveChild(child *Node) {
	for i, c := range n.Children {
		if c == child {
			n.Children = append(n.Children[:i], n.Children[i+1:]...)
			child.Parent = nil
			child.MarkWorldMatrixDirty()
			return
		}
	}
}

// GetWorldMatrix returns the cached world matrix, recomputing it (and any
// dirty ancestors) first.
func (n *Node) GetWorldMatrix() math.Mat4 {
	if n.worldMatrixDirty {
		localMatrix := n.Transform.GetMatrix()
		if n.Parent != nil {
			n.worldMatrix = n.Parent.GetWorldMatrix().Mul4(localMatrix)
		} else {
			n.worldMatrix = localMatrix
		}
		n.worldMatrixDirty = false
	}
	return n.worldMatrix
}

// UpdateMatrixWorld refreshes every dirty world matrix in the subtree.
func (n *Node) UpdateMatrixWorld() {
	n.GetWorldMatrix()
	for _, child := range n.Children {
		child.UpdateMatrixWorld()
	}
}

// WorldPosition is the translation of the world matrix.
func (n *Node) WorldPosition() math.Vec3 {
	return math.Position(n.GetWorldMatrix())
}

func (n *Node) MarkWorldMatrixDirty() {
	n.worldMatrixDirty = true
	for _, child := range n.Children {
		child.MarkWorldMatrixDirty()
	}
}

func (n *Node) SetPosition(pos math.Vec3) {
	n.Transform.Position = pos
	n.MarkWorldMatrixDirty()
}

func (n *Node) SetRotation(rot math.Quat) {
	n.Transform.Rotation = rot
	n.MarkWorldMatrixDirty()
}

func (n *Node) SetScale(scale math.Vec3) {
	n.Transform.Scale = scale
	n.MarkWorldMatrixDirty()
}

func (n *Node) Translate(delta math.Vec3) {
	n.Transform.Position = n.Transform.Position.Add(delta)
	n.MarkWorldMatrixDirty()
}

func (n *Node) Rotate(axis math.Vec3, angle float32) {
	rotation := math.QuaternionFromAxisAngle(axis, angle)
	n.Transform.Rotation = n.Transform.Rotation.Mul(rotation).Normalize()
	n.MarkWorldMatrixDirty()
}

// LookAt rotates the node so its forward axis points at the world-space
// target. Cameras and lights look down -Z, everything else down +Z.
func (n *Node) LookAt(target math.Vec3) {
	eye := n.WorldPosition()
	looksDownZ := n.Kind == KindCamera || n.Kind == KindLight
	q := math.QuaternionFromRotation(math.LookAtRotation(eye, target, n.Up, looksDownZ))
	if n.Parent != nil {
		parent := math.QuaternionFromRotation(unscaledRotation(n.Parent.GetWorldMatrix()))
		q = parent.Inverse().Mul(q)
	}
	n.SetRotation(q)
}

func unscaledRotation(m math.Mat4) math.Mat4 {
	out := math.Mat4Identity()
	for c := 0; c < 3; c++ {
		col := math.Vec3{m[c*4], m[c*4+1], m[c*4+2]}
		if l := col.Len(); l > 0 {
			col = col.Mul(1 / l)
		}
		out[c*4], out[c*4+1], out[c*4+2] = col[0], col[1], col[2]
	}
	return out
}

func (n *Node) GetForward() math.Vec3 {
	return n.Transform.GetForward()
}

// MaterialFor returns the material used for a geometry group, or the single
// material when the node has none per group.
func (n *Node) MaterialFor(group *Group) *Material {
	if group == nil || len(n.Materials) == 0 {
		return n.Material
	}
	if group.MaterialIndex < 0 || group.MaterialIndex >= len(n.Materials) {
		return nil
	}
	return n.Materials[group.MaterialIndex]
}

// Traverse visits all nodes in the graph
func (n *Node) Traverse(callback func(*Node)) {
	callback(n)
	for _, child := range n.Children {
		child.Traverse(callback)
	}
}

// Find finds a node by name
func (n *Node) Find(name string) *Node {
	if n.Name == name {
		return n
	}
	for _, child := range n.Children {
		if found := child.Find(name); found != nil {
			return found
		}
	}
	return nil
}
