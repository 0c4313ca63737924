package nn

import (
	"fmt"

	"github.com/born-ml/streamnet/internal/tensor"
)

// Reshape views each chunk with a fixed target shape. One dimension may be -1.
type Reshape[B tensor.Backend] struct {
	shape tensor.Shape
}

// NewReshape creates a Reshape node.
func NewReshape[B tensor.Backend](shape []int) (*Reshape[B], error) {
	inferred := 0
	for _, dim := range shape {
		if dim == -1 {
			inferred++
		} else if dim < 0 {
			return nil, errorf(ErrInvalidConfig, "Reshape: invalid dimension %d in %v", dim, shape)
		}
	}
	if inferred > 1 {
		return nil, errorf(ErrInvalidConfig, "Reshape: more than one -1 in %v", shape)
	}
	return &Reshape[B]{shape: tensor.Shape(shape).Clone()}, nil
}

// Forward reshapes input.
func (r *Reshape[B]) Forward(input *tensor.Tensor[B]) (*tensor.Tensor[B], error) {
	target, err := r.shape.Infer(input.NumElements())
	if err != nil {
		return nil, rankError("Reshape", "cannot reshape %v: %v", input.Shape(), err)
	}
	return input.Reshape(target...), nil
}

// Parameters returns nil.
func (r *Reshape[B]) Parameters() []*Parameter[B] {
	return nil
}

// Kind returns KindReshape.
func (r *Reshape[B]) Kind() Kind {
	return KindReshape
}

// Shape returns the configured target shape.
func (r *Reshape[B]) Shape() []int {
	return r.shape.Clone()
}

// Permute reorders the axes of each chunk.
type Permute[B tensor.Backend] struct {
	permutation []int
}

// NewPermute creates a Permute node. permutation must be a permutation of
// 0..n-1.
func NewPermute[B tensor.Backend](permutation []int) (*Permute[B], error) {
	seen := make([]bool, len(permutation))
	for _, axis := range permutation {
		if axis < 0 || axis >= len(permutation) || seen[axis] {
			return nil, errorf(ErrInvalidConfig, "Permute: %v is not a permutation", permutation)
		}
		seen[axis] = true
	}
	return &Permute[B]{permutation: append([]int(nil), permutation...)}, nil
}

// Forward permutes the axes of input.
func (p *Permute[B]) Forward(input *tensor.Tensor[B]) (*tensor.Tensor[B], error) {
	if input.Rank() != len(p.permutation) {
		return nil, rankError("Permute", "permutation %v does not match input %v", p.permutation, input.Shape())
	}
	return input.Transpose(p.permutation...), nil
}

// Parameters returns nil.
func (p *Permute[B]) Parameters() []*Parameter[B] {
	return nil
}

// Kind returns KindPermute.
func (p *Permute[B]) Kind() Kind {
	return KindPermute
}

// Permutation returns the configured axis order.
func (p *Permute[B]) Permutation() []int {
	return append([]int(nil), p.permutation...)
}

// String implements fmt.Stringer.
func (p *Permute[B]) String() string {
	return fmt.Sprintf("Permute(%v)", p.permutation)
}

// String implements fmt.Stringer.
func (r *Reshape[B]) String() string {
	return fmt.Sprintf("Reshape(%v)", []int(r.shape))
}
