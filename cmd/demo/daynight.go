package main

import (
	"fmt"

	"github.com/chewxy/math32"

	"retained-renderer/core"
	"retained-renderer/math"
	"retained-renderer/scene"
)

// dayPalette holds the sky and light values for one key time of day.
type dayPalette struct {
	t            float32 // normalised time 0..1
	horizon      core.Color
	fogColor     core.Color
	fogDensity   float32
	sunColor     core.Color
	sunIntensity float32
	ambient      core.Color
}

// palettes are ordered by t and wrap (0 == 1).
var palettes = []dayPalette{
	{ // noon
		t:            0.00,
		horizon:      core.Color{R: 0.58, G: 0.75, B: 0.95, A: 1},
		fogColor:     core.Color{R: 0.62, G: 0.78, B: 0.95, A: 1},
		fogDensity:   0.011,
		sunColor:     core.Color{R: 1.00, G: 0.98, B: 0.92, A: 1},
		sunIntensity: 1.20,
		ambient:      core.Color{R: 0.16, G: 0.18, B: 0.26, A: 1},
	},
	{ // golden hour
		t:            0.22,
		horizon:      core.Color{R: 0.90, G: 0.52, B: 0.18, A: 1},
		fogColor:     core.Color{R: 0.85, G: 0.55, B: 0.25, A: 1},
		fogDensity:   0.018,
		sunColor:     core.Color{R: 1.00, G: 0.65, B: 0.25, A: 1},
		sunIntensity: 0.90,
		ambient:      core.Color{R: 0.10, G: 0.12, B: 0.20, A: 1},
	},
	{ // dusk
		t:            0.30,
		horizon:      core.Color{R: 0.50, G: 0.22, B: 0.28, A: 1},
		fogColor:     core.Color{R: 0.35, G: 0.18, B: 0.22, A: 1},
		fogDensity:   0.020,
		sunColor:     core.Color{R: 0.70, G: 0.40, B: 0.55, A: 1},
		sunIntensity: 0.25,
		ambient:      core.Color{R: 0.06, G: 0.07, B: 0.14, A: 1},
	},
	{ // midnight, moonlight
		t:            0.50,
		horizon:      core.Color{R: 0.04, G: 0.04, B: 0.08, A: 1},
		fogColor:     core.Color{R: 0.03, G: 0.03, B: 0.06, A: 1},
		fogDensity:   0.010,
		sunColor:     core.Color{R: 0.40, G: 0.45, B: 0.65, A: 1},
		sunIntensity: 0.12,
		ambient:      core.Color{R: 0.03, G: 0.04, B: 0.09, A: 1},
	},
	{ // pre-dawn
		t:            0.70,
		horizon:      core.Color{R: 0.40, G: 0.18, B: 0.24, A: 1},
		fogColor:     core.Color{R: 0.30, G: 0.15, B: 0.20, A: 1},
		fogDensity:   0.020,
		sunColor:     core.Color{R: 0.75, G: 0.42, B: 0.60, A: 1},
		sunIntensity: 0.20,
		ambient:      core.Color{R: 0.06, G: 0.07, B: 0.14, A: 1},
	},
	{ // sunrise
		t:            0.78,
		horizon:      core.Color{R: 0.88, G: 0.45, B: 0.22, A: 1},
		fogColor:     core.Color{R: 0.75, G: 0.40, B: 0.20, A: 1},
		fogDensity:   0.015,
		sunColor:     core.Color{R: 1.00, G: 0.60, B: 0.28, A: 1},
		sunIntensity: 0.70,
		ambient:      core.Color{R: 0.09, G: 0.10, B: 0.17, A: 1},
	},
}

// DayNight animates the sun, ambient light, fog and background.
type DayNight struct {
	Time   float32 // 0..1: 0 noon, 0.25 sunset, 0.5 midnight, 0.75 sunrise
	Speed  float32 // full-cycle duration in seconds
	Active bool

	fog *scene.Fog
}

func NewDayNight() *DayNight {
	return &DayNight{Speed: 120, Active: true, fog: scene.NewFogExp2(core.Color{A: 1}, 0)}
}

func (dn *DayNight) Update(dt float32) {
	if !dn.Active {
		return
	}
	dn.Time += dt / dn.Speed
	if dn.Time > 1 {
		dn.Time--
	}
}

func lerpColor(a, b core.Color, t float32) core.Color {
	return core.Color{
		R: a.R + (b.R-a.R)*t,
		G: a.G + (b.G-a.G)*t,
		B: a.B + (b.B-a.B)*t,
		A: 1,
	}
}

// samplePalette interpolates the two keys around t, wrapping from the last
// key back to noon.
func samplePalette(t float32) dayPalette {
	n := len(palettes)
	for i := range n {
		a, b := palettes[i], palettes[(i+1)%n]
		ta, tb := a.t, b.t
		if i == n-1 {
			tb = 1
		}
		local := t
		if i == n-1 && t < palettes[0].t {
			local = t + 1
		}
		if local >= ta && local < tb {
			k := (local - ta) / (tb - ta)
			return dayPalette{
				horizon:      lerpColor(a.horizon, b.horizon, k),
				fogColor:     lerpColor(a.fogColor, b.fogColor, k),
				fogDensity:   a.fogDensity + (b.fogDensity-a.fogDensity)*k,
				sunColor:     lerpColor(a.sunColor, b.sunColor, k),
				sunIntensity: a.sunIntensity + (b.sunIntensity-a.sunIntensity)*k,
				ambient:      lerpColor(a.ambient, b.ambient, k),
			}
		}
	}
	return palettes[0]
}

// Apply writes the current palette into the scene. The sun orbits in the
// XY plane, tilted along Z, at a fixed distance from its target.
func (dn *DayNight) Apply(sc *scene.Scene, sun, ambient *scene.Node) {
	p := samplePalette(dn.Time)

	angle := dn.Time * 2 * math32.Pi
	dir := math.Vec3{math32.Sin(angle), math32.Cos(angle), 0.35}.Normalize()
	sun.SetPosition(dir.Mul(20))
	sun.Light.Color = p.sunColor
	sun.Light.Intensity = p.sunIntensity
	ambient.Light.Color = p.ambient

	background := p.horizon
	sc.Background = &background
	dn.fog.Color = p.fogColor
	dn.fog.Density = p.fogDensity
	sc.Fog = dn.fog
}

// TimeOfDayStr formats Time as a 12-hour clock.
func (dn *DayNight) TimeOfDayStr() string {
	hours := dn.Time*24 + 12
	h := int(hours) % 24
	m := int((hours - float32(int(hours))) * 60)
	period := "AM"
	if h >= 12 {
		period = "PM"
	}
	displayH := h % 12
	if displayH == 0 {
		displayH = 12
	}
	return fmt.Sprintf("%02d:%02d %s", displayH, m, period)
}
