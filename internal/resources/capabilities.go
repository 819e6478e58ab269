package resources

import (
	"log/slog"

	"github.com/chewxy/math32"

	"retained-renderer/gpu"
)

// Capabilities are the context limits the pipeline plans against.
type Capabilities struct {
	Precision              string
	LogarithmicDepthBuffer bool

	MaxTextures         int
	MaxVertexTextures   int
	MaxTextureSize      int
	MaxCubemapSize      int
	MaxAttributes       int
	MaxVertexUniforms   int
	MaxVaryings         int
	MaxFragmentUniforms int
	MaxSamples          int
	MaxAnisotropy       float32

	VertexTextures        bool
	FloatFragmentTextures bool
	FloatVertexTextures   bool
	InstancedArrays       bool
	Uint32Indices         bool
}

// NewCapabilities queries the context. Unknown precisions fall back to
// highp; a logarithmic depth buffer needs EXT_frag_depth.
func NewCapabilities(gl gpu.Context, ext *Extensions, precision string, logDepth bool, logger *slog.Logger) *Capabilities {
	if logger == nil {
		logger = slog.Default()
	}
	log := logger.With(slog.String("component", "capabilities"))

	switch precision {
	case "highp", "mediump", "lowp":
	case "":
		precision = "highp"
	default:
		log.Warn("unknown precision, using highp", slog.String("precision", precision))
		precision = "highp"
	}
	if logDepth && !ext.Require(ExtFragDepth) {
		logDepth = false
	}

	c := &Capabilities{
		Precision:              precision,
		LogarithmicDepthBuffer: logDepth,
		MaxTextures:            gl.GetParameter(gpu.MAX_TEXTURE_IMAGE_UNITS),
		MaxVertexTextures:      gl.GetParameter(gpu.MAX_VERTEX_TEXTURE_IMAGE_UNITS),
		MaxTextureSize:         gl.GetParameter(gpu.MAX_TEXTURE_SIZE),
		MaxCubemapSize:         gl.GetParameter(gpu.MAX_CUBE_MAP_TEXTURE_SIZE),
		MaxAttributes:          gl.GetParameter(gpu.MAX_VERTEX_ATTRIBS),
		MaxVertexUniforms:      gl.GetParameter(gpu.MAX_VERTEX_UNIFORM_VECTORS),
		MaxVaryings:            gl.GetParameter(gpu.MAX_VARYING_VECTORS),
		MaxFragmentUniforms:    gl.GetParameter(gpu.MAX_FRAGMENT_UNIFORM_VECTORS),
		MaxSamples:             gl.GetParameter(gpu.MAX_SAMPLES),
		MaxAnisotropy:          1,
		InstancedArrays:        ext.Has(ExtInstancedArrays),
		Uint32Indices:          ext.Has(ExtElementIndexUint),
	}
	if ext.Has(ExtAnisotropic) {
		c.MaxAnisotropy = math32.Max(1, float32(gl.GetParameter(gpu.MAX_TEXTURE_MAX_ANISOTROPY_EXT)))
	}
	c.VertexTextures = c.MaxVertexTextures > 0
	c.FloatFragmentTextures = ext.Has(ExtTextureFloat)
	c.FloatVertexTextures = c.VertexTextures && c.FloatFragmentTextures
	return c
}
