package resources

import (
	"log/slog"

	"retained-renderer/gpu"
)

// Extension names probed at startup.
const (
	ExtDepthTexture        = "WEBGL_depth_texture"
	ExtTextureFloat        = "OES_texture_float"
	ExtTextureFloatLinear  = "OES_texture_float_linear"
	ExtTextureHalfFloat    = "OES_texture_half_float"
	ExtStandardDerivatives = "OES_standard_derivatives"
	ExtElementIndexUint    = "OES_element_index_uint"
	ExtInstancedArrays     = "ANGLE_instanced_arrays"
	ExtAnisotropic         = "EXT_texture_filter_anisotropic"
	ExtCompressedS3TC      = "WEBGL_compressed_texture_s3tc"
	ExtFragDepth           = "EXT_frag_depth"
	ExtBlendMinMax         = "EXT_blend_minmax"
)

var probed = []string{
	ExtDepthTexture,
	ExtTextureFloat,
	ExtTextureFloatLinear,
	ExtTextureHalfFloat,
	ExtStandardDerivatives,
	ExtElementIndexUint,
	ExtInstancedArrays,
	ExtAnisotropic,
	ExtCompressedS3TC,
	ExtFragDepth,
	ExtBlendMinMax,
}

// Extensions remembers which optional features the context supports. Each
// name is queried once.
type Extensions struct {
	gl        gpu.Context
	log       *slog.Logger
	available map[string]bool
	warned    map[string]bool
}

func NewExtensions(gl gpu.Context, logger *slog.Logger) *Extensions {
	if logger == nil {
		logger = slog.Default()
	}
	e := &Extensions{
		gl:     gl,
		log:    logger.With(slog.String("component", "extensions")),
		warned: make(map[string]bool),
	}
	e.Probe()
	return e
}

// Probe re-queries every known extension. Called at startup and after a
// context restore.
func (e *Extensions) Probe() {
	e.available = make(map[string]bool, len(probed))
	for _, name := range probed {
		e.available[name] = e.gl.GetExtension(name)
	}
}

// Has reports whether name is available.
func (e *Extensions) Has(name string) bool {
	ok, seen := e.available[name]
	if !seen {
		ok = e.gl.GetExtension(name)
		e.available[name] = ok
	}
	return ok
}

// Require is Has, logging a warning the first time a missing extension is
// asked for.
func (e *Extensions) Require(name string) bool {
	if e.Has(name) {
		return true
	}
	if !e.warned[name] {
		e.warned[name] = true
		e.log.Warn("extension not supported", slog.String("extension", name))
	}
	return false
}
