// Package clipping maintains the clipping-plane uniform: renderer-wide
// planes followed by the current material's local planes, all in view
// space.
package clipping

import (
	"retained-renderer/math"
	"retained-renderer/scene"
)

// State is shared by every program that clips. Uniform holds a []float32 of
// packed (nx, ny, nz, constant) planes.
type State struct {
	Uniform *scene.Uniform
	// NumPlanes is the plane count of the current uniform value.
	// NumIntersection trailing planes are combined by intersection.
	NumPlanes       int
	NumIntersection int

	global           []float32
	numGlobalPlanes  int
	localEnabled     bool
	renderingShadows bool
	showingGlobal    bool
}

func New() *State {
	u := scene.NewUniform([]float32(nil))
	u.SetNeedsUpdate(false)
	return &State{Uniform: u}
}

// Init projects the renderer-wide planes for this frame and reports whether
// clipping is active at all.
func (s *State) Init(planes []math.Plane, localEnabled bool, camera *scene.Camera) bool {
	enabled := len(planes) != 0 || localEnabled || s.numGlobalPlanes != 0 || s.localEnabled
	s.localEnabled = localEnabled
	s.global = s.project(planes, camera, 0, false, s.global)
	if len(planes) > 0 {
		s.showingGlobal = true
	}
	s.numGlobalPlanes = len(planes)
	return enabled
}

// BeginShadows disables global planes while shadow maps are drawn.
func (s *State) BeginShadows() {
	s.renderingShadows = true
	s.project(nil, nil, 0, false, nil)
}

// EndShadows restores the global planes.
func (s *State) EndShadows() {
	s.renderingShadows = false
	s.resetGlobal()
}

// SetState selects the planes for drawing with a material. cache holds the
// material's projected planes; with fromCache set the projection is reused
// instead of recomputed.
func (s *State) SetState(planes []math.Plane, clipIntersection, clipShadows bool, camera *scene.Camera, cache *[]float32, fromCache bool) {
	if !s.localEnabled || len(planes) == 0 || s.renderingShadows && !clipShadows {
		if s.renderingShadows {
			s.project(nil, nil, 0, false, nil)
		} else {
			s.resetGlobal()
		}
		return
	}
	nGlobal := s.numGlobalPlanes
	if s.renderingShadows {
		nGlobal = 0
	}
	lGlobal := nGlobal * 4
	dst := s.project(planes, camera, lGlobal, fromCache, *cache)
	copy(dst[:lGlobal], s.global)
	*cache = dst
	s.showingGlobal = false

	if clipIntersection {
		s.NumIntersection = s.NumPlanes
	} else {
		s.NumIntersection = 0
	}
	s.NumPlanes += nGlobal
}

func (s *State) resetGlobal() {
	if !s.showingGlobal {
		s.Uniform.Value = s.global
		s.Uniform.SetNeedsUpdate(s.numGlobalPlanes > 0)
		s.showingGlobal = true
	}
	s.NumPlanes = s.numGlobalPlanes
	s.NumIntersection = 0
}

// project writes planes transformed into view space into dst at offset,
// growing dst when needed, and makes it the uniform value.
func (s *State) project(planes []math.Plane, camera *scene.Camera, offset int, skipTransform bool, dst []float32) []float32 {
	n := len(planes)
	if n != 0 {
		size := offset + n*4
		if !skipTransform || len(dst) < size {
			view := camera.MatrixWorldInverse()
			normal := math.NormalMatrix(view)
			if len(dst) < size {
				dst = make([]float32, size)
			}
			for i, p := range planes {
				v := p.ApplyMatrix4(view, normal).Vec4()
				copy(dst[offset+i*4:], v[:])
			}
		}
		s.Uniform.Value = dst
		s.Uniform.SetNeedsUpdate(true)
		s.showingGlobal = false
	}
	s.NumPlanes = n
	return dst
}
