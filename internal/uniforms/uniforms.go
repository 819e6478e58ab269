// Package uniforms turns a linked program's active uniform table into a tree
// of setters and uploads material uniform tables through it.
//
// Active uniform names are parsed into paths: "diffuse" is a single value,
// "clippingPlanes[0]" with size N is a flat array, and
// "directionalLights[0].direction" is a chain of structured containers ending
// in a single value.
package uniforms

import (
	"reflect"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"retained-renderer/gpu"
	"retained-renderer/scene"
)

// TextureBinder hands out texture units for the current draw and binds
// textures to them.
type TextureBinder interface {
	AllocTextureUnit() int
	SetTexture2D(t *scene.Texture, unit int)
	SetTextureCube(t *scene.Texture, unit int)
}

// Uniform is one node of the tree.
type Uniform interface {
	ID() string
	SetValue(v any, tex TextureBinder)
}

type container struct {
	seq  []Uniform
	byID map[string]Uniform
}

func (c *container) add(u Uniform) {
	if c.byID == nil {
		c.byID = make(map[string]Uniform)
	}
	c.seq = append(c.seq, u)
	c.byID[u.ID()] = u
}

// Registry is the root of a program's uniform tree.
type Registry struct {
	container
}

var pathPart = regexp.MustCompile(`([\w\d_]+)(\])?(\[|\.)?`)

// NewRegistry queries every active uniform of p.
func NewRegistry(gl gpu.Context, p gpu.Program) *Registry {
	r := &Registry{}
	n := gl.GetProgramParameter(p, gpu.ACTIVE_UNIFORMS)
	for i := 0; i < n; i++ {
		info := gl.GetActiveUniform(p, i)
		addr := gl.GetUniformLocation(p, info.Name)
		parse(gl, info, addr, &r.container)
	}
	return r
}

func parse(gl gpu.Context, info gpu.ActiveInfo, addr gpu.UniformLocation, c *container) {
	path := info.Name
	for _, m := range pathPart.FindAllStringSubmatchIndex(path, -1) {
		id := path[m[2]:m[3]]
		matchEnd := m[1]
		subscript := ""
		if m[6] >= 0 {
			subscript = path[m[6]:m[7]]
		}
		if subscript == "" || subscript == "[" && matchEnd+2 == len(path) {
			if subscript == "" {
				c.add(newSingle(gl, id, info, addr))
			} else {
				c.add(&PureArrayUniform{gl: gl, id: id, addr: addr, typ: info.Type, size: info.Size})
			}
			return
		}
		next, ok := c.byID[id].(*StructuredUniform)
		if !ok {
			next = &StructuredUniform{id: id}
			c.add(next)
		}
		c = &next.container
	}
}

// Seq returns the top-level uniforms in declaration order.
func (r *Registry) Seq() []Uniform { return r.seq }

// Has reports whether a top-level uniform is active.
func (r *Registry) Has(name string) bool {
	_, ok := r.byID[name]
	return ok
}

// Get returns a top-level uniform, or nil.
func (r *Registry) Get(name string) Uniform { return r.byID[name] }

// SetValue uploads v to the named uniform. Inactive names are ignored.
func (r *Registry) SetValue(name string, v any, tex TextureBinder) {
	if u, ok := r.byID[name]; ok {
		u.SetValue(v, tex)
	}
}

// SeqWithValue filters seq down to the uniforms that have an entry in values.
func SeqWithValue(seq []Uniform, values scene.Uniforms) []Uniform {
	out := make([]Uniform, 0, len(seq))
	for _, u := range seq {
		if _, ok := values[u.ID()]; ok {
			out = append(out, u)
		}
	}
	return out
}

// Upload sends every value of seq whose gate allows it.
func Upload(seq []Uniform, values scene.Uniforms, tex TextureBinder) {
	for _, u := range seq {
		v, ok := values[u.ID()]
		if !ok || !v.NeedsUpload() {
			continue
		}
		u.SetValue(v.Value, tex)
		v.Uploaded()
	}
}

// SingleUniform is a scalar, vector, matrix or sampler.
type SingleUniform struct {
	gl   gpu.Context
	id   string
	addr gpu.UniformLocation
	typ  gpu.Enum

	floats  []float32
	ints    []int32
	scratch []float32
	iscr    []int32
}

func newSingle(gl gpu.Context, id string, info gpu.ActiveInfo, addr gpu.UniformLocation) *SingleUniform {
	return &SingleUniform{gl: gl, id: id, addr: addr, typ: info.Type}
}

func (u *SingleUniform) ID() string { return u.id }

func (u *SingleUniform) SetValue(v any, tex TextureBinder) {
	switch u.typ {
	case gpu.SAMPLER_2D, gpu.SAMPLER_CUBE:
		unit := tex.AllocTextureUnit()
		u.setInts([]int32{int32(unit)})
		t, _ := v.(*scene.Texture)
		if u.typ == gpu.SAMPLER_CUBE {
			tex.SetTextureCube(t, unit)
		} else {
			tex.SetTexture2D(t, unit)
		}
	case gpu.INT, gpu.BOOL, gpu.INT_VEC2, gpu.INT_VEC3, gpu.INT_VEC4, gpu.BOOL_VEC2, gpu.BOOL_VEC3, gpu.BOOL_VEC4:
		var ok bool
		u.iscr, ok = appendInts(u.iscr[:0], v)
		if ok {
			u.setInts(u.iscr)
		}
	default:
		var ok bool
		u.scratch, ok = appendFloats(u.scratch[:0], v, floatWidth(u.typ))
		if ok {
			u.setFloats(u.scratch)
		}
	}
}

func (u *SingleUniform) setFloats(v []float32) {
	if equalFloats(u.floats, v) {
		return
	}
	u.floats = append(u.floats[:0], v...)
	uploadFloats(u.gl, u.typ, u.addr, v)
}

func (u *SingleUniform) setInts(v []int32) {
	if equalInts(u.ints, v) {
		return
	}
	u.ints = append(u.ints[:0], v...)
	switch u.typ {
	case gpu.INT_VEC2, gpu.BOOL_VEC2:
		u.gl.Uniform2iv(u.addr, v)
	case gpu.INT_VEC3, gpu.BOOL_VEC3:
		u.gl.Uniform3iv(u.addr, v)
	case gpu.INT_VEC4, gpu.BOOL_VEC4:
		u.gl.Uniform4iv(u.addr, v)
	default:
		u.gl.Uniform1i(u.addr, v[0])
	}
}

// PureArrayUniform is a flat array of a primitive type, uploaded in one call.
type PureArrayUniform struct {
	gl   gpu.Context
	id   string
	addr gpu.UniformLocation
	typ  gpu.Enum
	size int

	scratch []float32
	units   []int32
}

func (u *PureArrayUniform) ID() string { return u.id }

// Size is the declared array length.
func (u *PureArrayUniform) Size() int { return u.size }

func (u *PureArrayUniform) SetValue(v any, tex TextureBinder) {
	switch u.typ {
	case gpu.SAMPLER_2D, gpu.SAMPLER_CUBE:
		textures, _ := v.([]*scene.Texture)
		u.units = u.units[:0]
		for i := 0; i < u.size; i++ {
			u.units = append(u.units, int32(tex.AllocTextureUnit()))
		}
		u.gl.Uniform1iv(u.addr, u.units)
		for i, unit := range u.units {
			var t *scene.Texture
			if i < len(textures) {
				t = textures[i]
			}
			if u.typ == gpu.SAMPLER_CUBE {
				tex.SetTextureCube(t, int(unit))
			} else {
				tex.SetTexture2D(t, int(unit))
			}
		}
	case gpu.INT, gpu.BOOL:
		if ints, ok := appendInts(nil, v); ok {
			u.gl.Uniform1iv(u.addr, ints)
		}
	default:
		var ok bool
		u.scratch, ok = appendFloats(u.scratch[:0], v, floatWidth(u.typ))
		if ok && len(u.scratch) > 0 {
			uploadFloats(u.gl, u.typ, u.addr, u.scratch)
		}
	}
}

// StructuredUniform is a struct or an array of structs. Children are keyed
// by field name or by array index.
type StructuredUniform struct {
	id string
	container
}

func (u *StructuredUniform) ID() string { return u.id }

// Seq returns the children in declaration order.
func (u *StructuredUniform) Seq() []Uniform { return u.seq }

func (u *StructuredUniform) SetValue(v any, tex TextureBinder) {
	for _, child := range u.seq {
		if sub, ok := member(v, child.ID()); ok {
			child.SetValue(sub, tex)
		}
	}
}

// member resolves an array index or a field of v. Struct fields are matched
// by name with the first letter upper-cased, so "shadowBias" reads ShadowBias.
func member(v any, id string) (any, bool) {
	if v == nil {
		return nil, false
	}
	if m, ok := v.(map[string]any); ok {
		x, ok := m[id]
		return x, ok
	}
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil, false
		}
		rv = rv.Elem()
	}
	if i, err := strconv.Atoi(id); err == nil {
		if (rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array) && i < rv.Len() {
			return rv.Index(i).Interface(), true
		}
		return nil, false
	}
	if rv.Kind() != reflect.Struct {
		return nil, false
	}
	idx, ok := fieldIndex(rv.Type(), id)
	if !ok {
		return nil, false
	}
	return rv.Field(idx).Interface(), true
}

var fieldCache sync.Map // reflect.Type -> map[string]int

func fieldIndex(t reflect.Type, id string) (int, bool) {
	cached, ok := fieldCache.Load(t)
	if !ok {
		fields := make(map[string]int, t.NumField())
		for i := 0; i < t.NumField(); i++ {
			f := t.Field(i)
			if !f.IsExported() {
				continue
			}
			name := f.Name
			if tag := f.Tag.Get("uniform"); tag != "" {
				name = tag
			} else {
				name = strings.ToLower(name[:1]) + name[1:]
			}
			fields[name] = i
		}
		cached, _ = fieldCache.LoadOrStore(t, fields)
	}
	i, ok := cached.(map[string]int)[id]
	return i, ok
}

func floatWidth(typ gpu.Enum) int {
	switch typ {
	case gpu.FLOAT_VEC2:
		return 2
	case gpu.FLOAT_VEC3:
		return 3
	case gpu.FLOAT_VEC4:
		return 4
	case gpu.FLOAT_MAT2:
		return 4
	case gpu.FLOAT_MAT3:
		return 9
	case gpu.FLOAT_MAT4:
		return 16
	}
	return 1
}

func uploadFloats(gl gpu.Context, typ gpu.Enum, addr gpu.UniformLocation, v []float32) {
	switch typ {
	case gpu.FLOAT_VEC2:
		gl.Uniform2fv(addr, v)
	case gpu.FLOAT_VEC3:
		gl.Uniform3fv(addr, v)
	case gpu.FLOAT_VEC4:
		gl.Uniform4fv(addr, v)
	case gpu.FLOAT_MAT2:
		gl.UniformMatrix2fv(addr, v)
	case gpu.FLOAT_MAT3:
		gl.UniformMatrix3fv(addr, v)
	case gpu.FLOAT_MAT4:
		gl.UniformMatrix4fv(addr, v)
	default:
		if len(v) == 1 {
			gl.Uniform1f(addr, v[0])
		} else {
			gl.Uniform1fv(addr, v)
		}
	}
}

func equalFloats(a, b []float32) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func equalInts(a, b []int32) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
