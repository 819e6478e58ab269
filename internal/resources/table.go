// Package resources owns the GPU-side copies of scene objects: vertex and
// index buffers, textures, render target framebuffers, together with the
// capability and extension probes that decide what can be uploaded.
//
// Every cache is a Table indexed by the object's scene.Handle.
package resources

import "retained-renderer/scene"

// Table is a dense map from handle to value. Handles are small and recycled
// by the scene package, so a slice stays short.
type Table[T any] struct {
	slots []T
	used  []bool
	n     int
}

// Get returns the value stored for h.
func (t *Table[T]) Get(h scene.Handle) (T, bool) {
	if int(h) < len(t.slots) && t.used[h] {
		return t.slots[h], true
	}
	var zero T
	return zero, false
}

// Put stores v for h, growing the table as needed.
func (t *Table[T]) Put(h scene.Handle, v T) {
	if h == 0 {
		return
	}
	if need := int(h) + 1; need > len(t.slots) {
		t.slots = append(t.slots, make([]T, need-len(t.slots))...)
		t.used = append(t.used, make([]bool, need-len(t.used))...)
	}
	if !t.used[h] {
		t.n++
	}
	t.slots[h] = v
	t.used[h] = true
}

// Delete removes and returns the value stored for h.
func (t *Table[T]) Delete(h scene.Handle) (T, bool) {
	v, ok := t.Get(h)
	if !ok {
		return v, false
	}
	var zero T
	t.slots[h] = zero
	t.used[h] = false
	t.n--
	return v, true
}

// Len is the number of stored values.
func (t *Table[T]) Len() int { return t.n }

// Range calls fn for every stored value in handle order until fn returns
// false.
func (t *Table[T]) Range(fn func(scene.Handle, T) bool) {
	for i, ok := range t.used {
		if ok && !fn(scene.Handle(i), t.slots[i]) {
			return
		}
	}
}

// Clear forgets every value.
func (t *Table[T]) Clear() {
	clear(t.slots)
	clear(t.used)
	t.n = 0
}
