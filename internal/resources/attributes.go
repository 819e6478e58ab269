package resources

import (
	"encoding/binary"
	"log/slog"
	"slices"

	"golang.org/x/mobile/exp/f32"

	"retained-renderer/gpu"
	"retained-renderer/scene"
)

// Buffer is the GPU copy of one attribute.
type Buffer struct {
	Buffer          gpu.Buffer
	Type            gpu.Enum
	BytesPerElement int
	version         uint32
	length          int
}

// Attributes uploads vertex and index attributes into GPU buffers and keeps
// them in step with the attribute version.
type Attributes struct {
	gl      gpu.Context
	caps    *Capabilities
	log     *slog.Logger
	buffers Table[*Buffer]
}

func NewAttributes(gl gpu.Context, caps *Capabilities, logger *slog.Logger) *Attributes {
	if logger == nil {
		logger = slog.Default()
	}
	return &Attributes{gl: gl, caps: caps, log: logger.With(slog.String("component", "attributes"))}
}

// Get returns the buffer for a, or nil if it was never uploaded.
func (a *Attributes) Get(attr *scene.Attribute) *Buffer {
	b, _ := a.buffers.Get(attr.Handle())
	return b
}

// Update uploads attr to target if it is new or its version moved on. A
// dynamic attribute with a non-negative UpdateRange only re-sends that range.
// It returns nil when the data cannot be represented on this context.
func (a *Attributes) Update(attr *scene.Attribute, target gpu.Enum) *Buffer {
	if attr.Handle() == 0 {
		return nil
	}
	b, ok := a.buffers.Get(attr.Handle())
	if ok && b.version == attr.Version() {
		return b
	}

	data, typ, bpe, good := a.pack(attr)
	if !good {
		return nil
	}
	usage := gpu.STATIC_DRAW
	if attr.Dynamic {
		usage = gpu.DYNAMIC_DRAW
	}

	if !ok {
		b = &Buffer{Buffer: a.gl.CreateBuffer()}
		a.buffers.Put(attr.Handle(), b)
	}
	a.gl.BindBuffer(target, b.Buffer)

	r := attr.UpdateRange
	switch {
	case ok && attr.Dynamic && r.Count >= 0 && b.Type == typ && b.length == len(data):
		if r.Count > 0 {
			lo, hi := r.Offset*bpe, (r.Offset+r.Count)*bpe
			if lo < 0 || hi > len(data) {
				a.log.Warn("update range outside attribute", slog.Int("offset", r.Offset), slog.Int("count", r.Count))
				a.gl.BufferData(target, data, usage)
			} else {
				a.gl.BufferSubData(target, lo, data[lo:hi])
			}
		}
		attr.UpdateRange.Count = -1
	default:
		a.gl.BufferData(target, data, usage)
	}

	b.Type = typ
	b.BytesPerElement = bpe
	b.length = len(data)
	b.version = attr.Version()
	return b
}

// pack encodes attr for upload. Indices use 16 bits when every value fits,
// 32 bits when the context supports it.
func (a *Attributes) pack(attr *scene.Attribute) ([]byte, gpu.Enum, int, bool) {
	if !attr.IsIndex() {
		return f32.Bytes(binary.LittleEndian, attr.Float...), gpu.FLOAT, 4, true
	}
	if len(attr.Uint) == 0 || slices.Max(attr.Uint) < 1<<16 {
		out := make([]byte, 0, 2*len(attr.Uint))
		for _, v := range attr.Uint {
			out = binary.LittleEndian.AppendUint16(out, uint16(v))
		}
		return out, gpu.UNSIGNED_SHORT, 2, true
	}
	if !a.caps.Uint32Indices {
		a.log.Warn("index values exceed 16 bits and OES_element_index_uint is missing", slog.Int("count", len(attr.Uint)))
		return nil, 0, 0, false
	}
	out := make([]byte, 0, 4*len(attr.Uint))
	for _, v := range attr.Uint {
		out = binary.LittleEndian.AppendUint32(out, v)
	}
	return out, gpu.UNSIGNED_INT, 4, true
}

// Remove deletes the GPU buffer of attr.
func (a *Attributes) Remove(attr *scene.Attribute) {
	if b, ok := a.buffers.Delete(attr.Handle()); ok {
		a.gl.DeleteBuffer(b.Buffer)
	}
}

// Reset forgets every buffer without deleting it. Used after context loss.
func (a *Attributes) Reset() {
	a.buffers.Clear()
}
