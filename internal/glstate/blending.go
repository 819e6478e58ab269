package glstate

import (
	"retained-renderer/gpu"
	"retained-renderer/scene"
)

// BlendParams are the custom blending factors. Unset alpha values fall back
// to the color channel values. Only read for scene.CustomBlending, except
// PremultipliedAlpha which selects the premultiplied variant of the
// predefined modes.
type BlendParams struct {
	Equation           scene.BlendEquation
	Src                scene.BlendFactor
	Dst                scene.BlendFactor
	EquationAlpha      scene.BlendEquation
	SrcAlpha           scene.BlendFactor
	DstAlpha           scene.BlendFactor
	PremultipliedAlpha bool
}

func blendEquationEnum(e scene.BlendEquation) gpu.Enum {
	switch e {
	case scene.SubtractEquation:
		return gpu.FUNC_SUBTRACT
	case scene.ReverseSubtractEquation:
		return gpu.FUNC_REVERSE_SUBTRACT
	case scene.MinEquation:
		return gpu.MIN
	case scene.MaxEquation:
		return gpu.MAX
	}
	return gpu.FUNC_ADD
}

func blendFactorEnum(f scene.BlendFactor) gpu.Enum {
	switch f {
	case scene.ZeroFactor:
		return gpu.ZERO
	case scene.OneFactor:
		return gpu.ONE
	case scene.SrcColorFactor:
		return gpu.SRC_COLOR
	case scene.OneMinusSrcColorFactor:
		return gpu.ONE_MINUS_SRC_COLOR
	case scene.SrcAlphaFactor:
		return gpu.SRC_ALPHA
	case scene.OneMinusSrcAlphaFactor:
		return gpu.ONE_MINUS_SRC_ALPHA
	case scene.DstAlphaFactor:
		return gpu.DST_ALPHA
	case scene.OneMinusDstAlphaFactor:
		return gpu.ONE_MINUS_DST_ALPHA
	case scene.DstColorFactor:
		return gpu.DST_COLOR
	case scene.OneMinusDstColorFactor:
		return gpu.ONE_MINUS_DST_COLOR
	case scene.SrcAlphaSaturateFactor:
		return gpu.SRC_ALPHA_SATURATE
	}
	return gpu.ONE
}

func (s *State) resetCustomBlending() {
	s.currentBlendEquation = unknownEnum
	s.currentBlendSrc = unknownEnum
	s.currentBlendDst = unknownEnum
	s.currentBlendEquationAlpha = unknownEnum
	s.currentBlendSrcAlpha = unknownEnum
	s.currentBlendDstAlpha = unknownEnum
}

// SetBlending applies a predefined blending mode, or the factors in p for
// scene.CustomBlending.
func (s *State) SetBlending(blending scene.Blending, p BlendParams) {
	if blending == scene.NoBlending {
		s.Disable(gpu.BLEND)
		s.currentBlending = blending
		s.blendingKnown = true
		return
	}
	s.Enable(gpu.BLEND)

	if blending != scene.CustomBlending {
		premultiplied := triOf(p.PremultipliedAlpha)
		if s.blendingKnown && blending == s.currentBlending && premultiplied == s.currentPremultipliedAlpha {
			return
		}
		// The factor quadruple differs between the premultiplied and
		// straight variants of the same mode.
		if p.PremultipliedAlpha {
			s.gl.BlendEquationSeparate(gpu.FUNC_ADD, gpu.FUNC_ADD)
			switch blending {
			case scene.AdditiveBlending:
				s.gl.BlendFuncSeparate(gpu.ONE, gpu.ONE, gpu.ONE, gpu.ONE)
			case scene.SubtractiveBlending:
				s.gl.BlendFuncSeparate(gpu.ZERO, gpu.ZERO, gpu.ONE_MINUS_SRC_COLOR, gpu.ONE_MINUS_SRC_ALPHA)
			case scene.MultiplyBlending:
				s.gl.BlendFuncSeparate(gpu.ZERO, gpu.SRC_COLOR, gpu.ZERO, gpu.SRC_ALPHA)
			default:
				s.gl.BlendFuncSeparate(gpu.ONE, gpu.ONE_MINUS_SRC_ALPHA, gpu.ONE, gpu.ONE_MINUS_SRC_ALPHA)
			}
		} else {
			switch blending {
			case scene.AdditiveBlending:
				s.gl.BlendEquation(gpu.FUNC_ADD)
				s.gl.BlendFunc(gpu.SRC_ALPHA, gpu.ONE)
			case scene.SubtractiveBlending:
				s.gl.BlendEquation(gpu.FUNC_ADD)
				s.gl.BlendFunc(gpu.ZERO, gpu.ONE_MINUS_SRC_COLOR)
			case scene.MultiplyBlending:
				s.gl.BlendEquation(gpu.FUNC_ADD)
				s.gl.BlendFunc(gpu.ZERO, gpu.SRC_COLOR)
			default:
				s.gl.BlendEquationSeparate(gpu.FUNC_ADD, gpu.FUNC_ADD)
				s.gl.BlendFuncSeparate(gpu.SRC_ALPHA, gpu.ONE_MINUS_SRC_ALPHA, gpu.ONE, gpu.ONE_MINUS_SRC_ALPHA)
			}
		}
		s.resetCustomBlending()
		s.currentBlending = blending
		s.currentPremultipliedAlpha = premultiplied
		s.blendingKnown = true
		return
	}

	eqAlpha := p.EquationAlpha
	if eqAlpha == scene.BlendEquationUnset {
		eqAlpha = p.Equation
	}
	srcAlpha := p.SrcAlpha
	if srcAlpha == scene.BlendFactorUnset {
		srcAlpha = p.Src
	}
	dstAlpha := p.DstAlpha
	if dstAlpha == scene.BlendFactorUnset {
		dstAlpha = p.Dst
	}

	eq, eqA := blendEquationEnum(p.Equation), blendEquationEnum(eqAlpha)
	if eq != s.currentBlendEquation || eqA != s.currentBlendEquationAlpha {
		s.gl.BlendEquationSeparate(eq, eqA)
		s.currentBlendEquation = eq
		s.currentBlendEquationAlpha = eqA
	}

	src, dst := blendFactorEnum(p.Src), blendFactorEnum(p.Dst)
	srcA, dstA := blendFactorEnum(srcAlpha), blendFactorEnum(dstAlpha)
	if src != s.currentBlendSrc || dst != s.currentBlendDst || srcA != s.currentBlendSrcAlpha || dstA != s.currentBlendDstAlpha {
		s.gl.BlendFuncSeparate(src, dst, srcA, dstA)
		s.currentBlendSrc, s.currentBlendDst = src, dst
		s.currentBlendSrcAlpha, s.currentBlendDstAlpha = srcA, dstA
	}

	s.currentBlending = blending
	s.currentPremultipliedAlpha = unknown
	s.blendingKnown = true
}
