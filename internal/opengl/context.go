// Package opengl implements gpu.Context on desktop OpenGL 4.1 core through
// go-gl. WebGL-only extensions and formats are mapped onto their core
// equivalents so the renderer can stay unaware of the platform.
package opengl

import (
	"fmt"
	"log/slog"
	"unsafe"

	gl "github.com/go-gl/gl/v4.1-core/gl"

	"retained-renderer/gpu"
)

// Extensions that are core in OpenGL 4.1.
var coreExtensions = map[string]bool{
	"WEBGL_depth_texture":      true,
	"OES_texture_float":        true,
	"OES_texture_float_linear": true,
	"OES_texture_half_float":   true,
	"OES_standard_derivatives": true,
	"OES_element_index_uint":   true,
	"ANGLE_instanced_arrays":   true,
	"EXT_frag_depth":           true,
	"EXT_blend_minmax":         true,
}

// Extensions that depend on the driver, with the GL names to look for.
var driverExtensions = map[string][]string{
	"EXT_texture_filter_anisotropic": {"GL_EXT_texture_filter_anisotropic", "GL_ARB_texture_filter_anisotropic"},
	"WEBGL_compressed_texture_s3tc":  {"GL_EXT_texture_compression_s3tc"},
}

// Context drives the OpenGL context current on the calling thread.
type Context struct {
	log        *slog.Logger
	vao        uint32
	extensions map[string]bool
	lost       bool
}

// New loads the GL entry points of the current context. A window (or other
// context owner) must have made its context current first.
func New(logger *slog.Logger) (*Context, error) {
	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("initialize OpenGL: %w", err)
	}
	c := &Context{
		log:        logger.With(slog.String("component", "opengl")),
		extensions: make(map[string]bool),
	}

	var n int32
	gl.GetIntegerv(gl.NUM_EXTENSIONS, &n)
	for i := range uint32(n) {
		c.extensions[gl.GoStr(gl.GetStringi(gl.EXTENSIONS, i))] = true
	}

	// Core profiles draw nothing without a bound vertex array object.
	gl.GenVertexArrays(1, &c.vao)
	gl.BindVertexArray(c.vao)
	gl.Enable(gl.PROGRAM_POINT_SIZE)

	c.log.Info("context ready",
		slog.String("version", gl.GoStr(gl.GetString(gl.VERSION))),
		slog.String("renderer", gl.GoStr(gl.GetString(gl.RENDERER))),
		slog.Int("extensions", int(n)))
	return c, nil
}

// MarkLost makes IsContextLost report true until MarkRestored. Window
// owners call it when the context goes away (for example on a display
// change).
func (c *Context) MarkLost() { c.lost = true }

// MarkRestored reverses MarkLost after the context was recreated.
func (c *Context) MarkRestored() {
	c.lost = false
	gl.GenVertexArrays(1, &c.vao)
	gl.BindVertexArray(c.vao)
	gl.Enable(gl.PROGRAM_POINT_SIZE)
}

// Destroy deletes the vertex array object.
func (c *Context) Destroy() {
	if c.vao != 0 {
		gl.DeleteVertexArrays(1, &c.vao)
		c.vao = 0
	}
}

func (c *Context) IsContextLost() bool { return c.lost }
func (c *Context) GetError() gpu.Enum  { return gpu.Enum(gl.GetError()) }
func (c *Context) GLSL3() bool         { return true }

func (c *Context) GetParameter(pname gpu.Enum) int {
	var v int32
	gl.GetIntegerv(uint32(pname), &v)
	return int(v)
}

func (c *Context) GetExtension(name string) bool {
	if coreExtensions[name] {
		return true
	}
	for _, glName := range driverExtensions[name] {
		if c.extensions[glName] {
			return true
		}
	}
	return false
}

// ── Buffers ──────────────────────────────────────────────────────────────────

func (c *Context) CreateBuffer() gpu.Buffer {
	var b uint32
	gl.GenBuffers(1, &b)
	return gpu.Buffer(b)
}

func (c *Context) DeleteBuffer(b gpu.Buffer) {
	id := uint32(b)
	gl.DeleteBuffers(1, &id)
}

func (c *Context) BindBuffer(target gpu.Enum, b gpu.Buffer) {
	gl.BindBuffer(uint32(target), uint32(b))
}

func (c *Context) BufferData(target gpu.Enum, data []byte, usage gpu.Enum) {
	gl.BufferData(uint32(target), len(data), ptr(data), uint32(usage))
}

func (c *Context) BufferSubData(target gpu.Enum, offset int, data []byte) {
	if len(data) == 0 {
		return
	}
	gl.BufferSubData(uint32(target), offset, len(data), gl.Ptr(data))
}

// ── Shaders and programs ─────────────────────────────────────────────────────

func (c *Context) CreateShader(typ gpu.Enum) gpu.Shader {
	return gpu.Shader(gl.CreateShader(uint32(typ)))
}

func (c *Context) ShaderSource(s gpu.Shader, src string) {
	csrc, free := gl.Strs(src + "\x00")
	length := int32(len(src))
	gl.ShaderSource(uint32(s), 1, csrc, &length)
	free()
}

func (c *Context) CompileShader(s gpu.Shader) { gl.CompileShader(uint32(s)) }

func (c *Context) GetShaderParameter(s gpu.Shader, pname gpu.Enum) int {
	var v int32
	gl.GetShaderiv(uint32(s), uint32(pname), &v)
	return int(v)
}

func (c *Context) GetShaderInfoLog(s gpu.Shader) string {
	var size int32
	gl.GetShaderiv(uint32(s), gl.INFO_LOG_LENGTH, &size)
	if size == 0 {
		return ""
	}
	buf := make([]byte, size+1)
	var n int32
	gl.GetShaderInfoLog(uint32(s), size, &n, &buf[0])
	return string(buf[:n])
}

func (c *Context) DeleteShader(s gpu.Shader) { gl.DeleteShader(uint32(s)) }

func (c *Context) CreateProgram() gpu.Program { return gpu.Program(gl.CreateProgram()) }

func (c *Context) AttachShader(p gpu.Program, s gpu.Shader) {
	gl.AttachShader(uint32(p), uint32(s))
}

func (c *Context) BindAttribLocation(p gpu.Program, index uint32, name string) {
	gl.BindAttribLocation(uint32(p), index, gl.Str(name+"\x00"))
}

func (c *Context) LinkProgram(p gpu.Program) { gl.LinkProgram(uint32(p)) }

func (c *Context) GetProgramParameter(p gpu.Program, pname gpu.Enum) int {
	var v int32
	gl.GetProgramiv(uint32(p), uint32(pname), &v)
	return int(v)
}

func (c *Context) GetProgramInfoLog(p gpu.Program) string {
	var size int32
	gl.GetProgramiv(uint32(p), gl.INFO_LOG_LENGTH, &size)
	if size == 0 {
		return ""
	}
	buf := make([]byte, size+1)
	var n int32
	gl.GetProgramInfoLog(uint32(p), size, &n, &buf[0])
	return string(buf[:n])
}

func (c *Context) DeleteProgram(p gpu.Program) { gl.DeleteProgram(uint32(p)) }
func (c *Context) UseProgram(p gpu.Program)    { gl.UseProgram(uint32(p)) }

func (c *Context) GetActiveUniform(p gpu.Program, index int) gpu.ActiveInfo {
	var maxLen int32
	gl.GetProgramiv(uint32(p), gl.ACTIVE_UNIFORM_MAX_LENGTH, &maxLen)
	return activeInfo(maxLen, func(bufSize int32, n, size *int32, typ *uint32, name *uint8) {
		gl.GetActiveUniform(uint32(p), uint32(index), bufSize, n, size, typ, name)
	})
}

func (c *Context) GetActiveAttrib(p gpu.Program, index int) gpu.ActiveInfo {
	var maxLen int32
	gl.GetProgramiv(uint32(p), gl.ACTIVE_ATTRIBUTE_MAX_LENGTH, &maxLen)
	return activeInfo(maxLen, func(bufSize int32, n, size *int32, typ *uint32, name *uint8) {
		gl.GetActiveAttrib(uint32(p), uint32(index), bufSize, n, size, typ, name)
	})
}

func activeInfo(maxLen int32, query func(bufSize int32, n, size *int32, typ *uint32, name *uint8)) gpu.ActiveInfo {
	buf := make([]byte, max(maxLen, 1)+1)
	var n, size int32
	var typ uint32
	query(int32(len(buf)), &n, &size, &typ, &buf[0])
	return gpu.ActiveInfo{Name: string(buf[:n]), Type: gpu.Enum(typ), Size: int(size)}
}

func (c *Context) GetUniformLocation(p gpu.Program, name string) gpu.UniformLocation {
	return gpu.UniformLocation(gl.GetUniformLocation(uint32(p), gl.Str(name+"\x00")))
}

func (c *Context) GetAttribLocation(p gpu.Program, name string) int {
	return int(gl.GetAttribLocation(uint32(p), gl.Str(name+"\x00")))
}

// ── Uniforms ─────────────────────────────────────────────────────────────────

func (c *Context) Uniform1i(loc gpu.UniformLocation, v int32) {
	if loc != gpu.NoLocation {
		gl.Uniform1i(int32(loc), v)
	}
}

func (c *Context) Uniform1f(loc gpu.UniformLocation, v float32) {
	if loc != gpu.NoLocation {
		gl.Uniform1f(int32(loc), v)
	}
}

func (c *Context) Uniform1fv(loc gpu.UniformLocation, v []float32) {
	if loc != gpu.NoLocation && len(v) > 0 {
		gl.Uniform1fv(int32(loc), int32(len(v)), &v[0])
	}
}

func (c *Context) Uniform2fv(loc gpu.UniformLocation, v []float32) {
	if loc != gpu.NoLocation && len(v) >= 2 {
		gl.Uniform2fv(int32(loc), int32(len(v)/2), &v[0])
	}
}

func (c *Context) Uniform3fv(loc gpu.UniformLocation, v []float32) {
	if loc != gpu.NoLocation && len(v) >= 3 {
		gl.Uniform3fv(int32(loc), int32(len(v)/3), &v[0])
	}
}

func (c *Context) Uniform4fv(loc gpu.UniformLocation, v []float32) {
	if loc != gpu.NoLocation && len(v) >= 4 {
		gl.Uniform4fv(int32(loc), int32(len(v)/4), &v[0])
	}
}

func (c *Context) Uniform1iv(loc gpu.UniformLocation, v []int32) {
	if loc != gpu.NoLocation && len(v) > 0 {
		gl.Uniform1iv(int32(loc), int32(len(v)), &v[0])
	}
}

func (c *Context) Uniform2iv(loc gpu.UniformLocation, v []int32) {
	if loc != gpu.NoLocation && len(v) >= 2 {
		gl.Uniform2iv(int32(loc), int32(len(v)/2), &v[0])
	}
}

func (c *Context) Uniform3iv(loc gpu.UniformLocation, v []int32) {
	if loc != gpu.NoLocation && len(v) >= 3 {
		gl.Uniform3iv(int32(loc), int32(len(v)/3), &v[0])
	}
}

func (c *Context) Uniform4iv(loc gpu.UniformLocation, v []int32) {
	if loc != gpu.NoLocation && len(v) >= 4 {
		gl.Uniform4iv(int32(loc), int32(len(v)/4), &v[0])
	}
}

func (c *Context) UniformMatrix2fv(loc gpu.UniformLocation, v []float32) {
	if loc != gpu.NoLocation && len(v) >= 4 {
		gl.UniformMatrix2fv(int32(loc), int32(len(v)/4), false, &v[0])
	}
}

func (c *Context) UniformMatrix3fv(loc gpu.UniformLocation, v []float32) {
	if loc != gpu.NoLocation && len(v) >= 9 {
		gl.UniformMatrix3fv(int32(loc), int32(len(v)/9), false, &v[0])
	}
}

func (c *Context) UniformMatrix4fv(loc gpu.UniformLocation, v []float32) {
	if loc != gpu.NoLocation && len(v) >= 16 {
		gl.UniformMatrix4fv(int32(loc), int32(len(v)/16), false, &v[0])
	}
}

// ── Vertex attributes ────────────────────────────────────────────────────────

func (c *Context) EnableVertexAttribArray(index uint32)  { gl.EnableVertexAttribArray(index) }
func (c *Context) DisableVertexAttribArray(index uint32) { gl.DisableVertexAttribArray(index) }

func (c *Context) VertexAttribPointer(index uint32, size int, typ gpu.Enum, normalized bool, stride, offset int) {
	gl.VertexAttribPointerWithOffset(index, int32(size), uint32(typ), normalized, int32(stride), uintptr(offset))
}

func (c *Context) VertexAttribDivisor(index, divisor uint32) { gl.VertexAttribDivisor(index, divisor) }

// ── Textures ─────────────────────────────────────────────────────────────────

func (c *Context) CreateTexture() gpu.Texture {
	var t uint32
	gl.GenTextures(1, &t)
	return gpu.Texture(t)
}

func (c *Context) DeleteTexture(t gpu.Texture) {
	id := uint32(t)
	gl.DeleteTextures(1, &id)
}

func (c *Context) ActiveTexture(unit gpu.Enum) { gl.ActiveTexture(uint32(unit)) }

func (c *Context) BindTexture(target gpu.Enum, t gpu.Texture) {
	gl.BindTexture(uint32(target), uint32(t))
}

// TexImage2D maps the single-channel formats core profiles dropped onto
// RED textures with a swizzle.
func (c *Context) TexImage2D(target gpu.Enum, level int, internalFormat gpu.Enum, width, height int, format, typ gpu.Enum, pixels []byte) {
	internal, external := int32(internalFormat), uint32(format)
	var swizzle *[4]int32
	switch format {
	case gpu.LUMINANCE:
		internal, external = gl.R8, gl.RED
		swizzle = &[4]int32{gl.RED, gl.RED, gl.RED, gl.ONE}
	case gpu.ALPHA:
		internal, external = gl.R8, gl.RED
		swizzle = &[4]int32{gl.ZERO, gl.ZERO, gl.ZERO, gl.RED}
	}
	if internalFormat == gpu.DEPTH_STENCIL {
		internal = gl.DEPTH24_STENCIL8
	}

	gl.TexImage2D(uint32(target), int32(level), internal, int32(width), int32(height), 0, external, uint32(typ), ptr(pixels))
	if swizzle != nil {
		t := uint32(target)
		if t != gl.TEXTURE_2D {
			t = gl.TEXTURE_CUBE_MAP
		}
		gl.TexParameteriv(t, gl.TEXTURE_SWIZZLE_RGBA, &swizzle[0])
	}
}

func (c *Context) CompressedTexImage2D(target gpu.Enum, level int, internalFormat gpu.Enum, width, height int, data []byte) {
	gl.CompressedTexImage2D(uint32(target), int32(level), uint32(internalFormat), int32(width), int32(height), 0, int32(len(data)), ptr(data))
}

func (c *Context) TexParameteri(target, pname gpu.Enum, param int32) {
	gl.TexParameteri(uint32(target), uint32(pname), param)
}

func (c *Context) TexParameterf(target, pname gpu.Enum, param float32) {
	gl.TexParameterf(uint32(target), uint32(pname), param)
}

func (c *Context) GenerateMipmap(target gpu.Enum) { gl.GenerateMipmap(uint32(target)) }

// PixelStorei ignores the WebGL-only unpack flags; images are flipped and
// premultiplied on the CPU before upload.
func (c *Context) PixelStorei(pname gpu.Enum, param int32) {
	switch pname {
	case gpu.UNPACK_FLIP_Y_WEBGL, gpu.UNPACK_PREMULTIPLY_ALPHA_WEBGL:
		return
	}
	gl.PixelStorei(uint32(pname), param)
}

// ── Framebuffers ─────────────────────────────────────────────────────────────

func (c *Context) CreateFramebuffer() gpu.Framebuffer {
	var fb uint32
	gl.GenFramebuffers(1, &fb)
	return gpu.Framebuffer(fb)
}

func (c *Context) DeleteFramebuffer(fb gpu.Framebuffer) {
	id := uint32(fb)
	gl.DeleteFramebuffers(1, &id)
}

func (c *Context) BindFramebuffer(target gpu.Enum, fb gpu.Framebuffer) {
	gl.BindFramebuffer(uint32(target), uint32(fb))
}

func (c *Context) FramebufferTexture2D(target, attachment, texTarget gpu.Enum, t gpu.Texture, level int) {
	gl.FramebufferTexture2D(uint32(target), uint32(attachment), uint32(texTarget), uint32(t), int32(level))
}

func (c *Context) CheckFramebufferStatus(target gpu.Enum) gpu.Enum {
	return gpu.Enum(gl.CheckFramebufferStatus(uint32(target)))
}

func (c *Context) CreateRenderbuffer() gpu.Renderbuffer {
	var rb uint32
	gl.GenRenderbuffers(1, &rb)
	return gpu.Renderbuffer(rb)
}

func (c *Context) DeleteRenderbuffer(rb gpu.Renderbuffer) {
	id := uint32(rb)
	gl.DeleteRenderbuffers(1, &id)
}

func (c *Context) BindRenderbuffer(target gpu.Enum, rb gpu.Renderbuffer) {
	gl.BindRenderbuffer(uint32(target), uint32(rb))
}

func (c *Context) RenderbufferStorage(target, internalFormat gpu.Enum, width, height int) {
	if internalFormat == gpu.DEPTH_STENCIL {
		internalFormat = gpu.DEPTH24_STENCIL8
	}
	gl.RenderbufferStorage(uint32(target), uint32(internalFormat), int32(width), int32(height))
}

func (c *Context) FramebufferRenderbuffer(target, attachment, rbTarget gpu.Enum, rb gpu.Renderbuffer) {
	gl.FramebufferRenderbuffer(uint32(target), uint32(attachment), uint32(rbTarget), uint32(rb))
}

func (c *Context) ReadPixels(x, y, width, height int, format, typ gpu.Enum, dst []byte) {
	if len(dst) == 0 {
		return
	}
	gl.ReadPixels(int32(x), int32(y), int32(width), int32(height), uint32(format), uint32(typ), gl.Ptr(dst))
}

// ── Fixed-function state ────────────────────────────────────────────────────

func (c *Context) Enable(capability gpu.Enum)  { gl.Enable(uint32(capability)) }
func (c *Context) Disable(capability gpu.Enum) { gl.Disable(uint32(capability)) }

func (c *Context) BlendEquation(mode gpu.Enum) { gl.BlendEquation(uint32(mode)) }

func (c *Context) BlendEquationSeparate(modeRGB, modeAlpha gpu.Enum) {
	gl.BlendEquationSeparate(uint32(modeRGB), uint32(modeAlpha))
}

func (c *Context) BlendFunc(src, dst gpu.Enum) { gl.BlendFunc(uint32(src), uint32(dst)) }

func (c *Context) BlendFuncSeparate(srcRGB, dstRGB, srcAlpha, dstAlpha gpu.Enum) {
	gl.BlendFuncSeparate(uint32(srcRGB), uint32(dstRGB), uint32(srcAlpha), uint32(dstAlpha))
}

func (c *Context) DepthFunc(fn gpu.Enum)      { gl.DepthFunc(uint32(fn)) }
func (c *Context) DepthMask(flag bool)        { gl.DepthMask(flag) }
func (c *Context) ColorMask(r, g, b, a bool)  { gl.ColorMask(r, g, b, a) }
func (c *Context) StencilMask(mask uint32)    { gl.StencilMask(mask) }
func (c *Context) CullFace(mode gpu.Enum)     { gl.CullFace(uint32(mode)) }
func (c *Context) FrontFace(mode gpu.Enum)    { gl.FrontFace(uint32(mode)) }
func (c *Context) PolygonOffset(f, u float32) { gl.PolygonOffset(f, u) }

func (c *Context) StencilFunc(fn gpu.Enum, ref int32, mask uint32) {
	gl.StencilFunc(uint32(fn), ref, mask)
}

func (c *Context) StencilOp(fail, zfail, zpass gpu.Enum) {
	gl.StencilOp(uint32(fail), uint32(zfail), uint32(zpass))
}

// LineWidth clamps to 1: forward-compatible core contexts reject wider
// lines.
func (c *Context) LineWidth(width float32) {
	if width > 1 {
		width = 1
	}
	gl.LineWidth(width)
}

func (c *Context) Viewport(x, y, width, height int) {
	gl.Viewport(int32(x), int32(y), int32(width), int32(height))
}

func (c *Context) Scissor(x, y, width, height int) {
	gl.Scissor(int32(x), int32(y), int32(width), int32(height))
}

func (c *Context) ClearColor(r, g, b, a float32) { gl.ClearColor(r, g, b, a) }
func (c *Context) ClearDepth(depth float32)      { gl.ClearDepthf(depth) }
func (c *Context) ClearStencil(s int32)          { gl.ClearStencil(s) }
func (c *Context) Clear(mask gpu.Enum)           { gl.Clear(uint32(mask)) }

// ── Draws ────────────────────────────────────────────────────────────────────

func (c *Context) DrawArrays(mode gpu.Enum, first, count int) {
	gl.DrawArrays(uint32(mode), int32(first), int32(count))
}

func (c *Context) DrawElements(mode gpu.Enum, count int, typ gpu.Enum, offset int) {
	gl.DrawElements(uint32(mode), int32(count), uint32(typ), gl.PtrOffset(offset))
}

func (c *Context) DrawArraysInstanced(mode gpu.Enum, first, count, instances int) {
	gl.DrawArraysInstanced(uint32(mode), int32(first), int32(count), int32(instances))
}

func (c *Context) DrawElementsInstanced(mode gpu.Enum, count int, typ gpu.Enum, offset, instances int) {
	gl.DrawElementsInstanced(uint32(mode), int32(count), uint32(typ), gl.PtrOffset(offset), int32(instances))
}

// ptr returns nil for empty slices; gl.Ptr rejects them.
func ptr(b []byte) unsafe.Pointer {
	if len(b) == 0 {
		return nil
	}
	return gl.Ptr(b)
}

