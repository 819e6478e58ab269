package glstate

import "retained-renderer/gpu"

// attributeState tracks which vertex attribute arrays are enabled and their
// instancing divisors. A draw marks the arrays it needs between
// InitAttributes and DisableUnusedAttributes.
type attributeState struct {
	gl       gpu.Context
	wanted   []bool
	enabled  []tristate
	divisors []uint32
}

func (a *attributeState) init(gl gpu.Context) {
	a.gl = gl
	n := gl.GetParameter(gpu.MAX_VERTEX_ATTRIBS)
	if n <= 0 {
		n = 16
	}
	a.wanted = make([]bool, n)
	a.enabled = make([]tristate, n)
	a.divisors = make([]uint32, n)
}

func (a *attributeState) reset() {
	for i := range a.enabled {
		a.wanted[i] = false
		a.enabled[i] = unknown
		a.divisors[i] = 0
	}
}

func (s *State) InitAttributes() {
	for i := range s.attributes.wanted {
		s.attributes.wanted[i] = false
	}
}

// EnableAttribute marks index as used by the coming draw.
func (s *State) EnableAttribute(index int) {
	s.EnableAttributeAndDivisor(index, 0)
}

func (s *State) EnableAttributeAndDivisor(index int, divisor uint32) {
	a := &s.attributes
	if index < 0 || index >= len(a.wanted) {
		return
	}
	a.wanted[index] = true
	if a.enabled[index] != on {
		s.gl.EnableVertexAttribArray(uint32(index))
		a.enabled[index] = on
	}
	if a.divisors[index] != divisor {
		s.gl.VertexAttribDivisor(uint32(index), divisor)
		a.divisors[index] = divisor
	}
}

// DisableUnusedAttributes disables every enabled array the current draw did
// not ask for.
func (s *State) DisableUnusedAttributes() {
	a := &s.attributes
	for i := range a.enabled {
		if a.enabled[i] != off && !a.wanted[i] {
			s.gl.DisableVertexAttribArray(uint32(i))
			a.enabled[i] = off
		}
	}
}
