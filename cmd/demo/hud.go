package main

import (
	"fmt"
	"strings"

	"retained-renderer/internal/resources"
)

// DebugOverlay collects status lines shown in the window title.
type DebugOverlay struct {
	lines []string
}

func (do *DebugOverlay) AddLine(format string, args ...any) {
	do.lines = append(do.lines, fmt.Sprintf(format, args...))
}

func (do *DebugOverlay) Clear() {
	do.lines = do.lines[:0]
}

func (do *DebugOverlay) GetText() string {
	return strings.Join(do.lines, " | ")
}

// AddInfo appends the renderer counters of the last frame.
func (do *DebugOverlay) AddInfo(info *resources.Info) {
	do.AddLine("calls %d", info.Render.Calls)
	do.AddLine("tris %d", info.Render.Faces)
	if info.Shadow.Calls > 0 {
		do.AddLine("shadow calls %d", info.Shadow.Calls)
	}
	do.AddLine("programs %d", info.Programs)
	do.AddLine("geometries %d textures %d", info.Memory.Geometries, info.Memory.Textures)
}
