// Package gpu defines the low-level command interface the renderer drives.
// It mirrors the WebGL 1 API surface so that a desktop OpenGL backend, a
// recording test double, or any other implementation can sit underneath.
package gpu

import "errors"

// Enum is a GL enumerant.
type Enum uint32

// Object names. Zero is the null object for every kind.
type (
	Buffer       uint32
	Shader       uint32
	Program      uint32
	Texture      uint32
	Framebuffer  uint32
	Renderbuffer uint32
)

// UniformLocation is -1 when the uniform is not active.
type UniformLocation int32

// NoLocation is returned for inactive uniforms. Uploads to it are ignored.
const NoLocation UniformLocation = -1

// ActiveInfo describes one active uniform or attribute. Size is the array
// length, 1 for non-arrays. Array names carry a "[0]" suffix.
type ActiveInfo struct {
	Name string
	Type Enum
	Size int
}

// ErrContextLost is returned by operations that cannot proceed on a lost
// context.
var ErrContextLost = errors.New("gpu: context lost")

// Context issues GPU commands. All methods must be called from the goroutine
// that owns the underlying context.
type Context interface {
	IsContextLost() bool
	GetError() Enum
	GetParameter(pname Enum) int
	// GetExtension reports whether a WebGL-named extension is available.
	GetExtension(name string) bool
	// GLSL3 reports whether shaders are compiled as GLSL 3.30 core.
	GLSL3() bool

	CreateBuffer() Buffer
	DeleteBuffer(b Buffer)
	BindBuffer(target Enum, b Buffer)
	BufferData(target Enum, data []byte, usage Enum)
	BufferSubData(target Enum, offset int, data []byte)

	CreateShader(typ Enum) Shader
	ShaderSource(s Shader, src string)
	CompileShader(s Shader)
	GetShaderParameter(s Shader, pname Enum) int
	GetShaderInfoLog(s Shader) string
	DeleteShader(s Shader)

	CreateProgram() Program
	AttachShader(p Program, s Shader)
	BindAttribLocation(p Program, index uint32, name string)
	LinkProgram(p Program)
	GetProgramParameter(p Program, pname Enum) int
	GetProgramInfoLog(p Program) string
	DeleteProgram(p Program)
	UseProgram(p Program)
	GetActiveUniform(p Program, index int) ActiveInfo
	GetActiveAttrib(p Program, index int) ActiveInfo
	GetUniformLocation(p Program, name string) UniformLocation
	GetAttribLocation(p Program, name string) int

	Uniform1i(loc UniformLocation, v int32)
	Uniform1f(loc UniformLocation, v float32)
	Uniform1fv(loc UniformLocation, v []float32)
	Uniform2fv(loc UniformLocation, v []float32)
	Uniform3fv(loc UniformLocation, v []float32)
	Uniform4fv(loc UniformLocation, v []float32)
	Uniform1iv(loc UniformLocation, v []int32)
	Uniform2iv(loc UniformLocation, v []int32)
	Uniform3iv(loc UniformLocation, v []int32)
	Uniform4iv(loc UniformLocation, v []int32)
	UniformMatrix2fv(loc UniformLocation, v []float32)
	UniformMatrix3fv(loc UniformLocation, v []float32)
	UniformMatrix4fv(loc UniformLocation, v []float32)

	EnableVertexAttribArray(index uint32)
	DisableVertexAttribArray(index uint32)
	VertexAttribPointer(index uint32, size int, typ Enum, normalized bool, stride, offset int)
	VertexAttribDivisor(index, divisor uint32)

	CreateTexture() Texture
	DeleteTexture(t Texture)
	ActiveTexture(unit Enum)
	BindTexture(target Enum, t Texture)
	TexImage2D(target Enum, level int, internalFormat Enum, width, height int, format, typ Enum, pixels []byte)
	CompressedTexImage2D(target Enum, level int, internalFormat Enum, width, height int, data []byte)
	TexParameteri(target, pname Enum, param int32)
	TexParameterf(target, pname Enum, param float32)
	GenerateMipmap(target Enum)
	PixelStorei(pname Enum, param int32)

	CreateFramebuffer() Framebuffer
	DeleteFramebuffer(fb Framebuffer)
	BindFramebuffer(target Enum, fb Framebuffer)
	FramebufferTexture2D(target, attachment, texTarget Enum, t Texture, level int)
	CheckFramebufferStatus(target Enum) Enum
	CreateRenderbuffer() Renderbuffer
	DeleteRenderbuffer(rb Renderbuffer)
	BindRenderbuffer(target Enum, rb Renderbuffer)
	RenderbufferStorage(target, internalFormat Enum, width, height int)
	FramebufferRenderbuffer(target, attachment, rbTarget Enum, rb Renderbuffer)
	ReadPixels(x, y, width, height int, format, typ Enum, dst []byte)

	Enable(capability Enum)
	Disable(capability Enum)
	BlendEquation(mode Enum)
	BlendEquationSeparate(modeRGB, modeAlpha Enum)
	BlendFunc(src, dst Enum)
	BlendFuncSeparate(srcRGB, dstRGB, srcAlpha, dstAlpha Enum)
	DepthFunc(fn Enum)
	DepthMask(flag bool)
	ColorMask(r, g, b, a bool)
	StencilMask(mask uint32)
	StencilFunc(fn Enum, ref int32, mask uint32)
	StencilOp(fail, zfail, zpass Enum)
	CullFace(mode Enum)
	FrontFace(mode Enum)
	LineWidth(width float32)
	PolygonOffset(factor, units float32)
	Viewport(x, y, width, height int)
	Scissor(x, y, width, height int)
	ClearColor(r, g, b, a float32)
	ClearDepth(depth float32)
	ClearStencil(s int32)
	Clear(mask Enum)

	DrawArrays(mode Enum, first, count int)
	DrawElements(mode Enum, count int, typ Enum, offset int)
	DrawArraysInstanced(mode Enum, first, count, instances int)
	DrawElementsInstanced(mode Enum, count int, typ Enum, offset, instances int)
}
