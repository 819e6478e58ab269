package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	require.NoError(t, Default().Validate())
}

func TestDefaultRoundTrip(t *testing.T) {
	data, err := Default().Encode()
	require.NoError(t, err)
	cfg, err := Parse(data)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestParseOverridesDefaults(t *testing.T) {
	cfg, err := Parse([]byte(`
width = 800
height = 600
tone_mapping = "reinhard"
clear_color = [0.1, 0.2, 0.3]

[shadows]
enabled = true
type = "pcfsoft"
`))
	require.NoError(t, err)
	assert.Equal(t, 800, cfg.Width)
	assert.Equal(t, 600, cfg.Height)
	assert.Equal(t, "reinhard", cfg.ToneMapping)
	assert.Equal(t, [3]float32{0.1, 0.2, 0.3}, cfg.ClearColor)
	assert.True(t, cfg.Shadows.Enabled)
	assert.Equal(t, "pcfsoft", cfg.Shadows.Type)
	assert.True(t, cfg.Shadows.AutoUpdate, "untouched keys keep defaults")
	assert.Equal(t, "highp", cfg.Precision)
}

func TestParseRejectsInvalidEnums(t *testing.T) {
	for _, src := range []string{
		`precision = "ultra"`,
		`tone_mapping = "aces"`,
		`output_encoding = "rgbe"`,
		"[shadows]\ntype = \"vsm\"",
		`pixel_ratio = 0.0`,
		`clear_alpha = 2.0`,
	} {
		_, err := Parse([]byte(src))
		assert.ErrorIs(t, err, ErrInvalid, src)
	}
}

func TestParseRejectsUnknownKeys(t *testing.T) {
	_, err := Parse([]byte(`antialiasing = true`))
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrInvalid)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "renderer.toml")
	require.NoError(t, os.WriteFile(path, []byte("offscreen = true\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.True(t, cfg.Offscreen)

	_, err = Load(filepath.Join(t.TempDir(), "missing.toml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
