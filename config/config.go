// Package config loads renderer settings from TOML.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"slices"

	"github.com/pelletier/go-toml/v2"
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("config: invalid value")

// Shadows configures the shadow map pass.
type Shadows struct {
	Enabled            bool   `toml:"enabled"`
	Type               string `toml:"type"`
	AutoUpdate         bool   `toml:"auto_update"`
	RenderReverseSided bool   `toml:"render_reverse_sided"`
	RenderSingleSided  bool   `toml:"render_single_sided"`
}

// Renderer is the on-disk renderer configuration.
type Renderer struct {
	Width                  int        `toml:"width"`
	Height                 int        `toml:"height"`
	PixelRatio             float32    `toml:"pixel_ratio"`
	Antialias              bool       `toml:"antialias"`
	PremultipliedAlpha     bool       `toml:"premultiplied_alpha"`
	Precision              string     `toml:"precision"`
	LogarithmicDepthBuffer bool       `toml:"logarithmic_depth_buffer"`
	SortObjects            bool       `toml:"sort_objects"`
	AutoClear              bool       `toml:"auto_clear"`
	ClearColor             [3]float32 `toml:"clear_color"`
	ClearAlpha             float32    `toml:"clear_alpha"`

	ToneMapping             string  `toml:"tone_mapping"`
	ToneMappingExposure     float32 `toml:"tone_mapping_exposure"`
	OutputEncoding          string  `toml:"output_encoding"`
	PhysicallyCorrectLights bool    `toml:"physically_correct_lights"`

	MaxMorphTargets       int  `toml:"max_morph_targets"`
	MaxBones              int  `toml:"max_bones"`
	StrictMatrixInversion bool `toml:"strict_matrix_inversion"`
	Offscreen             bool `toml:"offscreen"`

	Shadows Shadows `toml:"shadows"`
}

var (
	precisions   = []string{"highp", "mediump", "lowp"}
	toneMappings = []string{"none", "linear", "reinhard", "uncharted2", "cineon"}
	encodings    = []string{"linear", "srgb", "gamma"}
	shadowTypes  = []string{"basic", "pcf", "pcfsoft"}
)

// Default returns the settings used when no file is given.
func Default() *Renderer {
	return &Renderer{
		Width:               1280,
		Height:              720,
		PixelRatio:          1,
		PremultipliedAlpha:  true,
		Precision:           "highp",
		SortObjects:         true,
		AutoClear:           true,
		ClearAlpha:          1,
		ToneMapping:         "none",
		ToneMappingExposure: 1,
		OutputEncoding:      "linear",
		MaxMorphTargets:     8,
		Shadows: Shadows{
			Type:               "pcf",
			AutoUpdate:         true,
			RenderReverseSided: true,
			RenderSingleSided:  true,
		},
	}
}

// Load reads and validates a TOML file. Keys missing from the file keep
// their default values.
func Load(path string) (*Renderer, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes TOML on top of Default and validates the result. Unknown
// keys are rejected.
func Parse(data []byte) (*Renderer, error) {
	cfg := Default()
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Encode writes cfg as TOML.
func (r *Renderer) Encode() ([]byte, error) {
	return toml.Marshal(r)
}

// Validate checks ranges and enum names.
func (r *Renderer) Validate() error {
	var errs []error
	if r.Width <= 0 || r.Height <= 0 {
		errs = append(errs, fmt.Errorf("%w: size %dx%d", ErrInvalid, r.Width, r.Height))
	}
	if r.PixelRatio <= 0 {
		errs = append(errs, fmt.Errorf("%w: pixel_ratio %g", ErrInvalid, r.PixelRatio))
	}
	if r.ClearAlpha < 0 || r.ClearAlpha > 1 {
		errs = append(errs, fmt.Errorf("%w: clear_alpha %g", ErrInvalid, r.ClearAlpha))
	}
	if r.MaxMorphTargets < 0 || r.MaxBones < 0 {
		errs = append(errs, fmt.Errorf("%w: negative morph target or bone limit", ErrInvalid))
	}
	errs = append(errs,
		oneOf("precision", r.Precision, precisions),
		oneOf("tone_mapping", r.ToneMapping, toneMappings),
		oneOf("output_encoding", r.OutputEncoding, encodings),
		oneOf("shadows.type", r.Shadows.Type, shadowTypes),
	)
	return errors.Join(errs...)
}

func oneOf(key, value string, allowed []string) error {
	if slices.Contains(allowed, value) {
		return nil
	}
	return fmt.Errorf("%w: %s %q, want one of %v", ErrInvalid, key, value, allowed)
}
