// Package gputest provides a recording gpu.Context for tests. It keeps
// enough object state to compile, link and reflect programs, and records
// every command so tests can assert on the exact command stream.
package gputest

import (
	"fmt"
	"slices"
	"strings"

	"retained-renderer/gpu"
)

// Call is one recorded command.
type Call struct {
	Name string
	Args []any
}

func (c Call) String() string {
	return fmt.Sprintf("%s%v", c.Name, c.Args)
}

type shaderObject struct {
	typ      gpu.Enum
	source   string
	compiled bool
	log      string
}

type programObject struct {
	shaders  []gpu.Shader
	linked   bool
	log      string
	bound    map[string]uint32
	info     reflection
	attribs  map[string]int
	locs     map[string]gpu.UniformLocation
	values   map[gpu.UniformLocation]any
	vertex   string
	fragment string
}

// Recorder implements gpu.Context in memory.
type Recorder struct {
	Calls []Call

	// Lost makes IsContextLost report true.
	Lost bool
	// Extensions lists available extensions. Nil means all are available.
	Extensions map[string]bool
	// Params overrides GetParameter results.
	Params map[gpu.Enum]int
	// UseGLSL3 is returned by GLSL3.
	UseGLSL3 bool
	// FailCompile, when set, fails compilation of matching sources.
	FailCompile func(source string) bool
	// FramebufferStatus overrides CheckFramebufferStatus when non-zero.
	FramebufferStatus gpu.Enum

	next       uint32
	live       map[string]map[uint32]bool
	shaders    map[gpu.Shader]*shaderObject
	programs   map[gpu.Program]*programObject
	current    gpu.Program
	clearColor [4]float32
}

var defaultParams = map[gpu.Enum]int{
	gpu.MAX_TEXTURE_SIZE:                 4096,
	gpu.MAX_CUBE_MAP_TEXTURE_SIZE:        4096,
	gpu.MAX_TEXTURE_IMAGE_UNITS:          16,
	gpu.MAX_VERTEX_TEXTURE_IMAGE_UNITS:   16,
	gpu.MAX_COMBINED_TEXTURE_IMAGE_UNITS: 32,
	gpu.MAX_VERTEX_ATTRIBS:               16,
	gpu.MAX_VERTEX_UNIFORM_VECTORS:       1024,
	gpu.MAX_FRAGMENT_UNIFORM_VECTORS:     1024,
	gpu.MAX_VARYING_VECTORS:              15,
	gpu.MAX_SAMPLES:                      4,
	gpu.IMPLEMENTATION_COLOR_READ_FORMAT: int(gpu.RGBA),
	gpu.IMPLEMENTATION_COLOR_READ_TYPE:   int(gpu.UNSIGNED_BYTE),
}

func NewRecorder() *Recorder {
	return &Recorder{
		live:     map[string]map[uint32]bool{},
		shaders:  map[gpu.Shader]*shaderObject{},
		programs: map[gpu.Program]*programObject{},
	}
}

func (r *Recorder) record(name string, args ...any) {
	r.Calls = append(r.Calls, Call{Name: name, Args: args})
}

func (r *Recorder) create(kind string) uint32 {
	r.next++
	if r.live[kind] == nil {
		r.live[kind] = map[uint32]bool{}
	}
	r.live[kind][r.next] = true
	return r.next
}

func (r *Recorder) destroy(kind string, id uint32) {
	delete(r.live[kind], id)
}

// ── Inspection ───────────────────────────────────────────────────────────────

// Reset forgets recorded calls. Object state is kept.
func (r *Recorder) Reset() {
	r.Calls = r.Calls[:0]
}

// Count returns how many calls named name were recorded.
func (r *Recorder) Count(name string) int {
	n := 0
	for _, c := range r.Calls {
		if c.Name == name {
			n++
		}
	}
	return n
}

// Filter returns the recorded calls whose name is one of names.
func (r *Recorder) Filter(names ...string) []Call {
	var out []Call
	for _, c := range r.Calls {
		if slices.Contains(names, c.Name) {
			out = append(out, c)
		}
	}
	return out
}

// Draws returns every draw call.
func (r *Recorder) Draws() []Call {
	return r.Filter("DrawArrays", "DrawElements", "DrawArraysInstanced", "DrawElementsInstanced")
}

// Names lists recorded call names in order.
func (r *Recorder) Names() []string {
	out := make([]string, len(r.Calls))
	for i, c := range r.Calls {
		out[i] = c.Name
	}
	return out
}

// Live returns the number of undeleted objects of a kind: "buffer",
// "shader", "program", "texture", "framebuffer" or "renderbuffer".
func (r *Recorder) Live(kind string) int {
	return len(r.live[kind])
}

// CurrentProgram is the program bound by the last UseProgram.
func (r *Recorder) CurrentProgram() gpu.Program {
	return r.current
}

// UniformValue returns the last value uploaded to the named uniform of p.
func (r *Recorder) UniformValue(p gpu.Program, name string) (any, bool) {
	prog := r.programs[p]
	if prog == nil {
		return nil, false
	}
	loc, ok := prog.locs[name]
	if !ok {
		return nil, false
	}
	v, ok := prog.values[loc]
	return v, ok
}

// ProgramSource returns the vertex and fragment sources linked into p.
func (r *Recorder) ProgramSource(p gpu.Program) (vertex, fragment string) {
	if prog := r.programs[p]; prog != nil {
		return prog.vertex, prog.fragment
	}
	return "", ""
}

// ── Context ──────────────────────────────────────────────────────────────────

func (r *Recorder) IsContextLost() bool { return r.Lost }

func (r *Recorder) GetError() gpu.Enum {
	if r.Lost {
		return gpu.CONTEXT_LOST
	}
	return gpu.NO_ERROR
}

func (r *Recorder) GetParameter(pname gpu.Enum) int {
	if v, ok := r.Params[pname]; ok {
		return v
	}
	return defaultParams[pname]
}

func (r *Recorder) GetExtension(name string) bool {
	if r.Extensions == nil {
		return true
	}
	return r.Extensions[name]
}

func (r *Recorder) GLSL3() bool { return r.UseGLSL3 }

// ── Buffers ──────────────────────────────────────────────────────────────────

func (r *Recorder) CreateBuffer() gpu.Buffer {
	b := gpu.Buffer(r.create("buffer"))
	r.record("CreateBuffer", b)
	return b
}

func (r *Recorder) DeleteBuffer(b gpu.Buffer) {
	r.destroy("buffer", uint32(b))
	r.record("DeleteBuffer", b)
}

func (r *Recorder) BindBuffer(target gpu.Enum, b gpu.Buffer) {
	r.record("BindBuffer", target, b)
}

func (r *Recorder) BufferData(target gpu.Enum, data []byte, usage gpu.Enum) {
	r.record("BufferData", target, len(data), usage)
}

func (r *Recorder) BufferSubData(target gpu.Enum, offset int, data []byte) {
	r.record("BufferSubData", target, offset, len(data))
}

// ── Shaders and programs ────────────────────────────────────────────────────

func (r *Recorder) CreateShader(typ gpu.Enum) gpu.Shader {
	s := gpu.Shader(r.create("shader"))
	r.shaders[s] = &shaderObject{typ: typ}
	r.record("CreateShader", typ, s)
	return s
}

func (r *Recorder) ShaderSource(s gpu.Shader, src string) {
	if sh := r.shaders[s]; sh != nil {
		sh.source = src
	}
	r.record("ShaderSource", s)
}

func (r *Recorder) CompileShader(s gpu.Shader) {
	r.record("CompileShader", s)
	sh := r.shaders[s]
	if sh == nil {
		return
	}
	if r.FailCompile != nil && r.FailCompile(sh.source) {
		sh.compiled = false
		sh.log = "ERROR: 0:1: forced compile failure"
		return
	}
	sh.compiled = true
	sh.log = ""
}

func (r *Recorder) GetShaderParameter(s gpu.Shader, pname gpu.Enum) int {
	sh := r.shaders[s]
	if sh == nil {
		return 0
	}
	switch pname {
	case gpu.COMPILE_STATUS:
		if sh.compiled {
			return 1
		}
	}
	return 0
}

func (r *Recorder) GetShaderInfoLog(s gpu.Shader) string {
	if sh := r.shaders[s]; sh != nil {
		return sh.log
	}
	return ""
}

func (r *Recorder) DeleteShader(s gpu.Shader) {
	r.destroy("shader", uint32(s))
	r.record("DeleteShader", s)
}

func (r *Recorder) CreateProgram() gpu.Program {
	p := gpu.Program(r.create("program"))
	r.programs[p] = &programObject{bound: map[string]uint32{}}
	r.record("CreateProgram", p)
	return p
}

func (r *Recorder) AttachShader(p gpu.Program, s gpu.Shader) {
	if prog := r.programs[p]; prog != nil {
		prog.shaders = append(prog.shaders, s)
	}
	r.record("AttachShader", p, s)
}

func (r *Recorder) BindAttribLocation(p gpu.Program, index uint32, name string) {
	if prog := r.programs[p]; prog != nil {
		prog.bound[name] = index
	}
	r.record("BindAttribLocation", p, index, name)
}

func (r *Recorder) LinkProgram(p gpu.Program) {
	r.record("LinkProgram", p)
	prog := r.programs[p]
	if prog == nil {
		return
	}
	prog.linked = true
	var failed []string
	for _, s := range prog.shaders {
		sh := r.shaders[s]
		if sh == nil || !sh.compiled {
			prog.linked = false
			failed = append(failed, fmt.Sprint(s))
			continue
		}
		if sh.typ == gpu.VERTEX_SHADER {
			prog.vertex = sh.source
		} else {
			prog.fragment = sh.source
		}
	}
	if !prog.linked {
		prog.log = "ERROR: shaders not compiled: " + strings.Join(failed, ", ")
		return
	}

	prog.info = reflectProgram(prog.vertex, prog.fragment)
	prog.locs = map[string]gpu.UniformLocation{}
	prog.values = map[gpu.UniformLocation]any{}
	for i, u := range prog.info.uniforms {
		loc := gpu.UniformLocation(i)
		prog.locs[u.Name] = loc
		if base, ok := strings.CutSuffix(u.Name, "[0]"); ok {
			prog.locs[base] = loc
		}
	}

	prog.attribs = map[string]int{}
	used := map[uint32]bool{}
	for _, a := range prog.info.attribs {
		if idx, ok := prog.bound[a.Name]; ok {
			prog.attribs[a.Name] = int(idx)
			used[idx] = true
		}
	}
	next := uint32(0)
	for _, a := range prog.info.attribs {
		if _, ok := prog.attribs[a.Name]; ok {
			continue
		}
		for used[next] {
			next++
		}
		prog.attribs[a.Name] = int(next)
		used[next] = true
	}
}

func (r *Recorder) GetProgramParameter(p gpu.Program, pname gpu.Enum) int {
	prog := r.programs[p]
	if prog == nil {
		return 0
	}
	switch pname {
	case gpu.LINK_STATUS:
		if prog.linked {
			return 1
		}
	case gpu.ACTIVE_UNIFORMS:
		return len(prog.info.uniforms)
	case gpu.ACTIVE_ATTRIBUTES:
		return len(prog.info.attribs)
	}
	return 0
}

func (r *Recorder) GetProgramInfoLog(p gpu.Program) string {
	if prog := r.programs[p]; prog != nil {
		return prog.log
	}
	return ""
}

func (r *Recorder) DeleteProgram(p gpu.Program) {
	r.destroy("program", uint32(p))
	delete(r.programs, p)
	if r.current == p {
		r.current = 0
	}
	r.record("DeleteProgram", p)
}

func (r *Recorder) UseProgram(p gpu.Program) {
	r.current = p
	r.record("UseProgram", p)
}

func (r *Recorder) GetActiveUniform(p gpu.Program, index int) gpu.ActiveInfo {
	if prog := r.programs[p]; prog != nil && index < len(prog.info.uniforms) {
		return prog.info.uniforms[index]
	}
	return gpu.ActiveInfo{}
}

func (r *Recorder) GetActiveAttrib(p gpu.Program, index int) gpu.ActiveInfo {
	if prog := r.programs[p]; prog != nil && index < len(prog.info.attribs) {
		return prog.info.attribs[index]
	}
	return gpu.ActiveInfo{}
}

func (r *Recorder) GetUniformLocation(p gpu.Program, name string) gpu.UniformLocation {
	if prog := r.programs[p]; prog != nil {
		if loc, ok := prog.locs[name]; ok {
			return loc
		}
	}
	return gpu.NoLocation
}

func (r *Recorder) GetAttribLocation(p gpu.Program, name string) int {
	if prog := r.programs[p]; prog != nil {
		if idx, ok := prog.attribs[name]; ok {
			return idx
		}
	}
	return -1
}

// ── Uniforms ─────────────────────────────────────────────────────────────────

func (r *Recorder) setUniform(name string, loc gpu.UniformLocation, v any) {
	r.record(name, loc, v)
	if loc == gpu.NoLocation {
		return
	}
	if prog := r.programs[r.current]; prog != nil && prog.values != nil {
		prog.values[loc] = v
	}
}

func (r *Recorder) Uniform1i(loc gpu.UniformLocation, v int32) { r.setUniform("Uniform1i", loc, v) }

func (r *Recorder) Uniform1f(loc gpu.UniformLocation, v float32) { r.setUniform("Uniform1f", loc, v) }

func (r *Recorder) Uniform1fv(loc gpu.UniformLocation, v []float32) {
	r.setUniform("Uniform1fv", loc, slices.Clone(v))
}

func (r *Recorder) Uniform2fv(loc gpu.UniformLocation, v []float32) {
	r.setUniform("Uniform2fv", loc, slices.Clone(v))
}

func (r *Recorder) Uniform3fv(loc gpu.UniformLocation, v []float32) {
	r.setUniform("Uniform3fv", loc, slices.Clone(v))
}

func (r *Recorder) Uniform4fv(loc gpu.UniformLocation, v []float32) {
	r.setUniform("Uniform4fv", loc, slices.Clone(v))
}

func (r *Recorder) Uniform1iv(loc gpu.UniformLocation, v []int32) {
	r.setUniform("Uniform1iv", loc, slices.Clone(v))
}

func (r *Recorder) Uniform2iv(loc gpu.UniformLocation, v []int32) {
	r.setUniform("Uniform2iv", loc, slices.Clone(v))
}

func (r *Recorder) Uniform3iv(loc gpu.UniformLocation, v []int32) {
	r.setUniform("Uniform3iv", loc, slices.Clone(v))
}

func (r *Recorder) Uniform4iv(loc gpu.UniformLocation, v []int32) {
	r.setUniform("Uniform4iv", loc, slices.Clone(v))
}

func (r *Recorder) UniformMatrix2fv(loc gpu.UniformLocation, v []float32) {
	r.setUniform("UniformMatrix2fv", loc, slices.Clone(v))
}

func (r *Recorder) UniformMatrix3fv(loc gpu.UniformLocation, v []float32) {
	r.setUniform("UniformMatrix3fv", loc, slices.Clone(v))
}

func (r *Recorder) UniformMatrix4fv(loc gpu.UniformLocation, v []float32) {
	r.setUniform("UniformMatrix4fv", loc, slices.Clone(v))
}

// ── Vertex attributes ───────────────────────────────────────────────────────

func (r *Recorder) EnableVertexAttribArray(index uint32) {
	r.record("EnableVertexAttribArray", index)
}

func (r *Recorder) DisableVertexAttribArray(index uint32) {
	r.record("DisableVertexAttribArray", index)
}

func (r *Recorder) VertexAttribPointer(index uint32, size int, typ gpu.Enum, normalized bool, stride, offset int) {
	r.record("VertexAttribPointer", index, size, typ, normalized, stride, offset)
}

func (r *Recorder) VertexAttribDivisor(index, divisor uint32) {
	r.record("VertexAttribDivisor", index, divisor)
}

// ── Textures ─────────────────────────────────────────────────────────────────

func (r *Recorder) CreateTexture() gpu.Texture {
	t := gpu.Texture(r.create("texture"))
	r.record("CreateTexture", t)
	return t
}

func (r *Recorder) DeleteTexture(t gpu.Texture) {
	r.destroy("texture", uint32(t))
	r.record("DeleteTexture", t)
}

func (r *Recorder) ActiveTexture(unit gpu.Enum) { r.record("ActiveTexture", unit) }

func (r *Recorder) BindTexture(target gpu.Enum, t gpu.Texture) { r.record("BindTexture", target, t) }

func (r *Recorder) TexImage2D(target gpu.Enum, level int, internalFormat gpu.Enum, width, height int, format, typ gpu.Enum, pixels []byte) {
	r.record("TexImage2D", target, level, internalFormat, width, height, format, typ, len(pixels))
}

func (r *Recorder) CompressedTexImage2D(target gpu.Enum, level int, internalFormat gpu.Enum, width, height int, data []byte) {
	r.record("CompressedTexImage2D", target, level, internalFormat, width, height, len(data))
}

func (r *Recorder) TexParameteri(target, pname gpu.Enum, param int32) {
	r.record("TexParameteri", target, pname, param)
}

func (r *Recorder) TexParameterf(target, pname gpu.Enum, param float32) {
	r.record("TexParameterf", target, pname, param)
}

func (r *Recorder) GenerateMipmap(target gpu.Enum) { r.record("GenerateMipmap", target) }

func (r *Recorder) PixelStorei(pname gpu.Enum, param int32) { r.record("PixelStorei", pname, param) }

// ── Framebuffers ────────────────────────────────────────────────────────────

func (r *Recorder) CreateFramebuffer() gpu.Framebuffer {
	fb := gpu.Framebuffer(r.create("framebuffer"))
	r.record("CreateFramebuffer", fb)
	return fb
}

func (r *Recorder) DeleteFramebuffer(fb gpu.Framebuffer) {
	r.destroy("framebuffer", uint32(fb))
	r.record("DeleteFramebuffer", fb)
}

func (r *Recorder) BindFramebuffer(target gpu.Enum, fb gpu.Framebuffer) {
	r.record("BindFramebuffer", target, fb)
}

func (r *Recorder) FramebufferTexture2D(target, attachment, texTarget gpu.Enum, t gpu.Texture, level int) {
	r.record("FramebufferTexture2D", target, attachment, texTarget, t, level)
}

func (r *Recorder) CheckFramebufferStatus(target gpu.Enum) gpu.Enum {
	r.record("CheckFramebufferStatus", target)
	if r.FramebufferStatus != 0 {
		return r.FramebufferStatus
	}
	return gpu.FRAMEBUFFER_COMPLETE
}

func (r *Recorder) CreateRenderbuffer() gpu.Renderbuffer {
	rb := gpu.Renderbuffer(r.create("renderbuffer"))
	r.record("CreateRenderbuffer", rb)
	return rb
}

func (r *Recorder) DeleteRenderbuffer(rb gpu.Renderbuffer) {
	r.destroy("renderbuffer", uint32(rb))
	r.record("DeleteRenderbuffer", rb)
}

func (r *Recorder) BindRenderbuffer(target gpu.Enum, rb gpu.Renderbuffer) {
	r.record("BindRenderbuffer", target, rb)
}

func (r *Recorder) RenderbufferStorage(target, internalFormat gpu.Enum, width, height int) {
	r.record("RenderbufferStorage", target, internalFormat, width, height)
}

func (r *Recorder) FramebufferRenderbuffer(target, attachment, rbTarget gpu.Enum, rb gpu.Renderbuffer) {
	r.record("FramebufferRenderbuffer", target, attachment, rbTarget, rb)
}

// ReadPixels fills dst with the last clear color as RGBA8.
func (r *Recorder) ReadPixels(x, y, width, height int, format, typ gpu.Enum, dst []byte) {
	r.record("ReadPixels", x, y, width, height, format, typ)
	for i := 0; i+3 < len(dst); i += 4 {
		for c := 0; c < 4; c++ {
			dst[i+c] = byte(r.clearColor[c]*255 + 0.5)
		}
	}
}

// ── Fixed-function state ────────────────────────────────────────────────────

func (r *Recorder) Enable(capability gpu.Enum)  { r.record("Enable", capability) }
func (r *Recorder) Disable(capability gpu.Enum) { r.record("Disable", capability) }

func (r *Recorder) BlendEquation(mode gpu.Enum) { r.record("BlendEquation", mode) }

func (r *Recorder) BlendEquationSeparate(modeRGB, modeAlpha gpu.Enum) {
	r.record("BlendEquationSeparate", modeRGB, modeAlpha)
}

func (r *Recorder) BlendFunc(src, dst gpu.Enum) { r.record("BlendFunc", src, dst) }

func (r *Recorder) BlendFuncSeparate(srcRGB, dstRGB, srcAlpha, dstAlpha gpu.Enum) {
	r.record("BlendFuncSeparate", srcRGB, dstRGB, srcAlpha, dstAlpha)
}

func (r *Recorder) DepthFunc(fn gpu.Enum)         { r.record("DepthFunc", fn) }
func (r *Recorder) DepthMask(flag bool)           { r.record("DepthMask", flag) }
func (r *Recorder) ColorMask(cr, cg, cb, ca bool) { r.record("ColorMask", cr, cg, cb, ca) }
func (r *Recorder) StencilMask(mask uint32)       { r.record("StencilMask", mask) }

func (r *Recorder) StencilFunc(fn gpu.Enum, ref int32, mask uint32) {
	r.record("StencilFunc", fn, ref, mask)
}

func (r *Recorder) StencilOp(fail, zfail, zpass gpu.Enum) { r.record("StencilOp", fail, zfail, zpass) }

func (r *Recorder) CullFace(mode gpu.Enum)              { r.record("CullFace", mode) }
func (r *Recorder) FrontFace(mode gpu.Enum)             { r.record("FrontFace", mode) }
func (r *Recorder) LineWidth(width float32)             { r.record("LineWidth", width) }
func (r *Recorder) PolygonOffset(factor, units float32) { r.record("PolygonOffset", factor, units) }

func (r *Recorder) Viewport(x, y, width, height int) { r.record("Viewport", x, y, width, height) }
func (r *Recorder) Scissor(x, y, width, height int)  { r.record("Scissor", x, y, width, height) }

func (r *Recorder) ClearColor(cr, cg, cb, ca float32) {
	r.clearColor = [4]float32{cr, cg, cb, ca}
	r.record("ClearColor", cr, cg, cb, ca)
}

func (r *Recorder) ClearDepth(depth float32) { r.record("ClearDepth", depth) }
func (r *Recorder) ClearStencil(s int32)     { r.record("ClearStencil", s) }
func (r *Recorder) Clear(mask gpu.Enum)      { r.record("Clear", mask) }

// ── Draws ────────────────────────────────────────────────────────────────────

func (r *Recorder) DrawArrays(mode gpu.Enum, first, count int) {
	r.record("DrawArrays", mode, first, count)
}

func (r *Recorder) DrawElements(mode gpu.Enum, count int, typ gpu.Enum, offset int) {
	r.record("DrawElements", mode, count, typ, offset)
}

func (r *Recorder) DrawArraysInstanced(mode gpu.Enum, first, count, instances int) {
	r.record("DrawArraysInstanced", mode, first, count, instances)
}

func (r *Recorder) DrawElementsInstanced(mode gpu.Enum, count int, typ gpu.Enum, offset, instances int) {
	r.record("DrawElementsInstanced", mode, count, typ, offset, instances)
}

var _ gpu.Context = (*Recorder)(nil)
