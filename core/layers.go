package core

// Layers is a 32-bit visibility mask. An object is drawn by a camera only
// when the two masks share a bit.
type Layers uint32

// DefaultLayers enables layer 0 only.
const DefaultLayers Layers = 1

func (l *Layers) Set(channel int)     { *l = 1 << uint(channel) }
func (l *Layers) Enable(channel int)  { *l |= 1 << uint(channel) }
func (l *Layers) Disable(channel int) { *l &^= 1 << uint(channel) }
func (l *Layers) Toggle(channel int)  { *l ^= 1 << uint(channel) }

// Test reports whether l and other share at least one layer.
func (l Layers) Test(other Layers) bool {
	return l&other != 0
}
