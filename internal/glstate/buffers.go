package glstate

import (
	"github.com/chewxy/math32"

	"retained-renderer/gpu"
	"retained-renderer/scene"
)

// ColorBuffer mirrors the color write mask and clear color.
type ColorBuffer struct {
	state *State

	locked     bool
	mask       tristate
	clearKnown bool
	clear      [4]float32
}

// SetMask is ignored while the buffer is locked.
func (c *ColorBuffer) SetMask(mask bool) {
	if c.locked {
		return
	}
	t := triOf(mask)
	if c.mask != t {
		c.state.gl.ColorMask(mask, mask, mask, mask)
		c.mask = t
	}
}

func (c *ColorBuffer) SetLocked(lock bool) { c.locked = lock }

// SetClear sets the clear color, premultiplying RGB by alpha when asked.
func (c *ColorBuffer) SetClear(r, g, b, a float32, premultipliedAlpha bool) {
	if premultipliedAlpha {
		r, g, b = r*a, g*a, b*a
	}
	v := [4]float32{r, g, b, a}
	if c.clearKnown && c.clear == v {
		return
	}
	c.state.gl.ClearColor(r, g, b, a)
	c.clear = v
	c.clearKnown = true
}

func (c *ColorBuffer) reset() {
	c.locked = false
	c.mask = unknown
	c.clearKnown = false
}

// DepthBuffer mirrors depth test, write mask, function and clear value.
type DepthBuffer struct {
	state *State

	locked bool
	mask   tristate
	fn     gpu.Enum
	clear  float32
}

func (d *DepthBuffer) SetTest(test bool) {
	if test {
		d.state.Enable(gpu.DEPTH_TEST)
	} else {
		d.state.Disable(gpu.DEPTH_TEST)
	}
}

// SetMask is ignored while the buffer is locked.
func (d *DepthBuffer) SetMask(mask bool) {
	if d.locked {
		return
	}
	t := triOf(mask)
	if d.mask != t {
		d.state.gl.DepthMask(mask)
		d.mask = t
	}
}

// DepthFuncEnum maps a depth function to its GPU enum. Unrecognized values
// map to LEQUAL.
func DepthFuncEnum(f scene.DepthFunc) gpu.Enum {
	switch f {
	case scene.NeverDepth:
		return gpu.NEVER
	case scene.AlwaysDepth:
		return gpu.ALWAYS
	case scene.LessDepth:
		return gpu.LESS
	case scene.EqualDepth:
		return gpu.EQUAL
	case scene.GreaterEqualDepth:
		return gpu.GEQUAL
	case scene.GreaterDepth:
		return gpu.GREATER
	case scene.NotEqualDepth:
		return gpu.NOTEQUAL
	}
	return gpu.LEQUAL
}

func (d *DepthBuffer) SetFunc(f scene.DepthFunc) {
	e := DepthFuncEnum(f)
	if d.fn != e {
		d.state.gl.DepthFunc(e)
		d.fn = e
	}
}

func (d *DepthBuffer) SetLocked(lock bool) { d.locked = lock }

func (d *DepthBuffer) SetClear(depth float32) {
	if d.clear != depth {
		d.state.gl.ClearDepth(depth)
		d.clear = depth
	}
}

func (d *DepthBuffer) reset() {
	d.locked = false
	d.mask = unknown
	d.fn = unknownEnum
	d.clear = math32.NaN()
}

// StencilBuffer mirrors stencil test, mask, function, ops and clear value.
type StencilBuffer struct {
	state *State

	locked     bool
	mask       uint32
	maskKnown  bool
	fn         gpu.Enum
	ref        int32
	funcMask   uint32
	fail       gpu.Enum
	zFail      gpu.Enum
	zPass      gpu.Enum
	clear      int32
	clearKnown bool
}

// SetTest is ignored while the buffer is locked.
func (st *StencilBuffer) SetTest(test bool) {
	if st.locked {
		return
	}
	if test {
		st.state.Enable(gpu.STENCIL_TEST)
	} else {
		st.state.Disable(gpu.STENCIL_TEST)
	}
}

func (st *StencilBuffer) SetMask(mask uint32) {
	if st.maskKnown && st.mask == mask || st.locked {
		return
	}
	st.state.gl.StencilMask(mask)
	st.mask = mask
	st.maskKnown = true
}

func (st *StencilBuffer) SetFunc(fn gpu.Enum, ref int32, mask uint32) {
	if st.fn == fn && st.ref == ref && st.funcMask == mask {
		return
	}
	st.state.gl.StencilFunc(fn, ref, mask)
	st.fn, st.ref, st.funcMask = fn, ref, mask
}

func (st *StencilBuffer) SetOp(fail, zFail, zPass gpu.Enum) {
	if st.fail == fail && st.zFail == zFail && st.zPass == zPass {
		return
	}
	st.state.gl.StencilOp(fail, zFail, zPass)
	st.fail, st.zFail, st.zPass = fail, zFail, zPass
}

func (st *StencilBuffer) SetLocked(lock bool) { st.locked = lock }

func (st *StencilBuffer) SetClear(s int32) {
	if st.clearKnown && st.clear == s {
		return
	}
	st.state.gl.ClearStencil(s)
	st.clear = s
	st.clearKnown = true
}

func (st *StencilBuffer) reset() {
	st.locked = false
	st.maskKnown = false
	st.fn = unknownEnum
	st.fail, st.zFail, st.zPass = unknownEnum, unknownEnum, unknownEnum
	st.clearKnown = false
}
