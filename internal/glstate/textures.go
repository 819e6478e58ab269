package glstate

import "retained-renderer/gpu"

type boundTexture struct {
	target  gpu.Enum
	texture gpu.Texture
}

// textureUnits mirrors the active unit and the texture bound on each unit.
// Binding texture 0 binds a 1x1 placeholder for the target instead.
type textureUnits struct {
	gl       gpu.Context
	maxUnits int
	active   gpu.Enum
	bound    map[gpu.Enum]boundTexture
	empty    map[gpu.Enum]gpu.Texture
}

func (t *textureUnits) init(gl gpu.Context) {
	t.gl = gl
	t.maxUnits = gl.GetParameter(gpu.MAX_COMBINED_TEXTURE_IMAGE_UNITS)
	if t.maxUnits <= 0 {
		t.maxUnits = 8
	}
	t.empty = make(map[gpu.Enum]gpu.Texture)
}

func (t *textureUnits) reset() {
	t.active = unknownEnum
	t.bound = make(map[gpu.Enum]boundTexture)
}

// placeholder returns the 1x1 black texture for target, creating it on
// first use.
func (t *textureUnits) placeholder(target gpu.Enum) gpu.Texture {
	if tex, ok := t.empty[target]; ok {
		return tex
	}
	tex := t.gl.CreateTexture()
	t.gl.BindTexture(target, tex)
	t.gl.TexParameteri(target, gpu.TEXTURE_MIN_FILTER, int32(gpu.NEAREST))
	t.gl.TexParameteri(target, gpu.TEXTURE_MAG_FILTER, int32(gpu.NEAREST))
	pixel := []byte{0, 0, 0, 0}
	if target == gpu.TEXTURE_CUBE_MAP {
		for face := gpu.Enum(0); face < 6; face++ {
			t.gl.TexImage2D(gpu.TEXTURE_CUBE_MAP_POSITIVE_X+face, 0, gpu.RGBA, 1, 1, gpu.RGBA, gpu.UNSIGNED_BYTE, pixel)
		}
	} else {
		t.gl.TexImage2D(target, 0, gpu.RGBA, 1, 1, gpu.RGBA, gpu.UNSIGNED_BYTE, pixel)
	}
	t.empty[target] = tex
	// The creation bind changed the unit's binding behind the mirror.
	delete(t.bound, t.active)
	return tex
}

// MaxTextureUnits is the number of combined texture image units.
func (s *State) MaxTextureUnits() int {
	return s.textures.maxUnits
}

// ActiveTexture selects a texture unit (gpu.TEXTURE0 + n).
func (s *State) ActiveTexture(unit gpu.Enum) {
	if s.textures.active != unit {
		s.gl.ActiveTexture(unit)
		s.textures.active = unit
	}
}

// BindTexture binds tex to target on the active unit. If no unit has been
// selected yet the last unit is used so the binding cannot disturb unit 0.
func (s *State) BindTexture(target gpu.Enum, tex gpu.Texture) {
	t := &s.textures
	if t.active == unknownEnum {
		s.ActiveTexture(gpu.TEXTURE0 + gpu.Enum(t.maxUnits-1))
	}
	if tex == 0 {
		tex = t.placeholder(target)
	}
	want := boundTexture{target: target, texture: tex}
	if cur, ok := t.bound[t.active]; ok && cur == want {
		return
	}
	s.gl.BindTexture(target, tex)
	t.bound[t.active] = want
}

// ForgetTexture drops mirror entries that refer to a deleted texture.
func (s *State) ForgetTexture(tex gpu.Texture) {
	for unit, b := range s.textures.bound {
		if b.texture == tex {
			delete(s.textures.bound, unit)
		}
	}
}

// ReleasePlaceholders deletes the placeholder textures. After context loss
// they are simply forgotten since the GPU objects are gone.
func (s *State) ReleasePlaceholders(contextLost bool) {
	for target, tex := range s.textures.empty {
		if !contextLost {
			s.gl.DeleteTexture(tex)
		}
		delete(s.textures.empty, target)
	}
}
