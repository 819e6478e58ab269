package scene

type uploadGate uint8

const (
	gateAlways uploadGate = iota
	gateDirty
	gateClean
)

// Uniform is one entry of a material's uniform table. Value holds a
// float32, int32, bool, math vector or matrix type, core.Color, *Texture,
// a slice of those, or a struct (or slice of structs) for structured GLSL
// uniforms.
type Uniform struct {
	Value any
	gate  uploadGate
}

func NewUniform(value any) *Uniform {
	return &Uniform{Value: value}
}

// SetNeedsUpdate opts the uniform into explicit upload gating. Once called,
// the value is only uploaded after SetNeedsUpdate(true) until the next
// successful upload.
func (u *Uniform) SetNeedsUpdate(v bool) {
	if v {
		u.gate = gateDirty
	} else {
		u.gate = gateClean
	}
}

// NeedsUpload reports whether the uploader should send this value.
func (u *Uniform) NeedsUpload() bool {
	return u.gate != gateClean
}

// Uploaded clears a pending explicit update.
func (u *Uniform) Uploaded() {
	if u.gate == gateDirty {
		u.gate = gateClean
	}
}

// Uniforms maps GLSL uniform names to values.
type Uniforms map[string]*Uniform

// Set assigns a value, creating the entry if needed.
func (u Uniforms) Set(name string, value any) {
	if e, ok := u[name]; ok {
		e.Value = value
		return
	}
	u[name] = NewUniform(value)
}

// Clone copies the table. Values are shared.
func (u Uniforms) Clone() Uniforms {
	if u == nil {
		return nil
	}
	c := make(Uniforms, len(u))
	for k, v := range u {
		cv := *v
		c[k] = &cv
	}
	return c
}

// Merge copies entries from other that are not already present.
func (u Uniforms) Merge(other Uniforms) {
	for k, v := range other {
		if _, ok := u[k]; !ok {
			u[k] = v
		}
	}
}
