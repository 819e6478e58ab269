package scene

import "retained-renderer/math"

// Skeleton drives a skinned mesh. Bones are ordinary nodes; BoneInverses
// holds the inverse of each bone's world matrix at bind time.
type Skeleton struct {
	Bones        []*Node
	BoneInverses []math.Mat4

	boneMatrices []float32
}

// NewSkeleton captures the current bone poses as the bind pose when
// inverses is nil.
func NewSkeleton(bones []*Node, inverses []math.Mat4) *Skeleton {
	s := &Skeleton{Bones: bones, BoneInverses: inverses}
	if s.BoneInverses == nil {
		s.BoneInverses = make([]math.Mat4, len(bones))
		for i, b := range bones {
			s.BoneInverses[i] = math.Inverse(b.GetWorldMatrix())
		}
	}
	s.boneMatrices = make([]float32, 16*len(bones))
	return s
}

// Update recomputes the flattened bone matrices from the bones' world
// matrices.
func (s *Skeleton) Update() {
	for i, b := range s.Bones {
		m := b.GetWorldMatrix().Mul4(s.BoneInverses[i])
		copy(s.boneMatrices[i*16:], m[:])
	}
}

// BoneMatrices is the array uploaded to the boneMatrices uniform.
func (s *Skeleton) BoneMatrices() []float32 { return s.boneMatrices }
