package renderer

import (
	"log/slog"

	"retained-renderer/config"
	"retained-renderer/core"
	"retained-renderer/internal/programs"
	"retained-renderer/scene"
)

// ShadowOptions configure the shadow map pass.
type ShadowOptions struct {
	Enabled            bool
	Type               scene.ShadowMapType
	AutoUpdate         bool
	RenderReverseSided bool
	RenderSingleSided  bool
}

// Options are fixed at construction. Most of them seed public Renderer
// fields that may be changed between frames.
type Options struct {
	Width, Height int
	PixelRatio    float32

	Precision              string
	PremultipliedAlpha     bool
	LogarithmicDepthBuffer bool
	SortObjects            bool
	AutoClear              bool
	ClearColor             core.Color
	ClearAlpha             float32

	ToneMapping             scene.ToneMapping
	ToneMappingExposure     float32
	OutputEncoding          scene.Encoding
	PhysicallyCorrectLights bool

	MaxMorphTargets int
	MaxBones        int

	// StrictMatrixInversion skips draws whose matrices cannot be inverted
	// instead of substituting identity.
	StrictMatrixInversion bool
	// Offscreen renders the default target into an owned render target
	// sized to the drawing buffer.
	Offscreen bool

	Shadows ShadowOptions

	// Library replaces the built-in shader chunks and templates.
	Library *programs.Library
	Logger  *slog.Logger
}

// DefaultOptions mirrors config.Default.
func DefaultOptions() Options {
	return OptionsFromConfig(config.Default())
}

// OptionsFromConfig converts validated settings. Unknown enum names fall
// back to the defaults.
func OptionsFromConfig(c *config.Renderer) Options {
	return Options{
		Width:                   c.Width,
		Height:                  c.Height,
		PixelRatio:              c.PixelRatio,
		Precision:               c.Precision,
		PremultipliedAlpha:      c.PremultipliedAlpha,
		LogarithmicDepthBuffer:  c.LogarithmicDepthBuffer,
		SortObjects:             c.SortObjects,
		AutoClear:               c.AutoClear,
		ClearColor:              core.Color{R: c.ClearColor[0], G: c.ClearColor[1], B: c.ClearColor[2], A: 1},
		ClearAlpha:              c.ClearAlpha,
		ToneMapping:             toneMappings[c.ToneMapping],
		ToneMappingExposure:     c.ToneMappingExposure,
		OutputEncoding:          encodings[c.OutputEncoding],
		PhysicallyCorrectLights: c.PhysicallyCorrectLights,
		MaxMorphTargets:         c.MaxMorphTargets,
		MaxBones:                c.MaxBones,
		StrictMatrixInversion:   c.StrictMatrixInversion,
		Offscreen:               c.Offscreen,
		Shadows: ShadowOptions{
			Enabled:            c.Shadows.Enabled,
			Type:               shadowTypes[c.Shadows.Type],
			AutoUpdate:         c.Shadows.AutoUpdate,
			RenderReverseSided: c.Shadows.RenderReverseSided,
			RenderSingleSided:  c.Shadows.RenderSingleSided,
		},
	}
}

var (
	toneMappings = map[string]scene.ToneMapping{
		"none":       scene.NoToneMapping,
		"linear":     scene.LinearToneMapping,
		"reinhard":   scene.ReinhardToneMapping,
		"uncharted2": scene.Uncharted2ToneMapping,
		"cineon":     scene.CineonToneMapping,
	}
	encodings = map[string]scene.Encoding{
		"linear": scene.LinearEncoding,
		"srgb":   scene.SRGBEncoding,
		"gamma":  scene.GammaEncoding,
	}
	shadowTypes = map[string]scene.ShadowMapType{
		"basic":   scene.BasicShadowMap,
		"pcf":     scene.PCFShadowMap,
		"pcfsoft": scene.PCFSoftShadowMap,
	}
)
