package resources

import "retained-renderer/gpu"

// RenderInfo counts the work of the main pass of the current frame.
type RenderInfo struct {
	Frame    int
	Calls    int
	Vertices int
	Faces    int
	Lines    int
	Points   int
}

// ShadowInfo counts shadow pass draws of the current frame.
type ShadowInfo struct {
	Calls int
}

// MemoryInfo counts live GPU-backed objects.
type MemoryInfo struct {
	Geometries int
	Textures   int
}

// Info is the renderer's inspectable statistics.
type Info struct {
	// AutoReset clears the per-frame counters at the start of every render.
	AutoReset bool

	Render   RenderInfo
	Shadow   ShadowInfo
	Memory   MemoryInfo
	Programs int
}

// Update accounts for one draw of count vertices.
func (i *Info) Update(count int, mode gpu.Enum, instances int) {
	if instances < 1 {
		instances = 1
	}
	r := &i.Render
	r.Calls++
	r.Vertices += count * instances
	switch mode {
	case gpu.TRIANGLES:
		r.Faces += instances * (count / 3)
	case gpu.TRIANGLE_STRIP, gpu.TRIANGLE_FAN:
		if count > 2 {
			r.Faces += instances * (count - 2)
		}
	case gpu.LINES:
		r.Lines += instances * (count / 2)
	case gpu.LINE_STRIP:
		if count > 1 {
			r.Lines += instances * (count - 1)
		}
	case gpu.LINE_LOOP:
		r.Lines += instances * count
	case gpu.POINTS:
		r.Points += instances * count
	}
}

// UpdateShadow accounts for one shadow pass draw.
func (i *Info) UpdateShadow() {
	i.Shadow.Calls++
}

// Reset clears the per-frame counters and advances the frame number.
func (i *Info) Reset() {
	frame := i.Render.Frame + 1
	i.Render = RenderInfo{Frame: frame}
	i.Shadow = ShadowInfo{}
}
