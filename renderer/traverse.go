package renderer

import (
	"retained-renderer/internal/renderlist"
	"retained-renderer/math"
	"retained-renderer/scene"
)

// projectObject walks the graph depth-first. A hidden node cuts its whole
// subtree; lights are gathered, drawables that pass the layer and frustum
// tests are pushed with their projected depth.
func (r *Renderer) projectObject(n *scene.Node, camera *scene.Camera, list *renderlist.List) {
	if !n.Visible {
		return
	}

	if n.Layers.Test(camera.Layers) {
		switch {
		case n.Kind == scene.KindLight && n.Light != nil:
			r.lights.PushLight(n)
			if n.CastShadow && n.Light.Shadow != nil {
				r.lights.PushShadow(n)
			}

		case n.Kind.IsDrawable() && n.Geometry != nil:
			if !n.FrustumCulled || r.isVisible(n) {
				r.pushDrawable(n, list)
			}
		}
	}

	for _, child := range n.Children {
		r.projectObject(child, camera, list)
	}
}

func (r *Renderer) pushDrawable(n *scene.Node, list *renderlist.List) {
	if n.Skeleton != nil {
		n.Skeleton.Update()
	}
	geo := r.updateGeometry(n.Geometry)

	var z float32
	if r.SortObjects {
		z = math.TransformPoint(n.WorldPosition(), r.projScreen).Z()
	}

	if len(n.Materials) > 0 {
		for i := range geo.Groups {
			group := &geo.Groups[i]
			if m := n.MaterialFor(group); m != nil && m.Visible {
				list.Push(n, geo, m, r.programID(m), z, group)
			}
		}
		return
	}
	if m := n.Material; m != nil && m.Visible {
		list.Push(n, geo, m, r.programID(m), z, nil)
	}
}

// updateGeometry registers geo and uploads whatever changed since the last
// frame.
func (r *Renderer) updateGeometry(geo *scene.Geometry) *scene.Geometry {
	geo = r.geometries.Get(geo)
	r.geometries.Update(geo)
	return geo
}

// isVisible tests the bounding sphere of n against the camera frustum. An
// empty geometry has no bounds and is kept.
func (r *Renderer) isVisible(n *scene.Node) bool {
	sphere := n.Geometry.BoundingSphere()
	if sphere.IsEmpty() {
		return true
	}
	return r.frustum.IntersectsSphere(sphere.ApplyMatrix4(n.GetWorldMatrix()))
}

// programID is the sort key of m: its current program, or -1 before the
// first draw.
func (r *Renderer) programID(m *scene.Material) int {
	if props, ok := r.materials.Get(m.Handle()); ok && props.program != nil {
		return props.program.ID
	}
	return -1
}
