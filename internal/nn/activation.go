package nn

import (
	"github.com/born-ml/streamnet/internal/tensor"
)

// ReLU applies max(0, x) element-wise.
type ReLU[B tensor.Backend] struct{}

// NewReLU creates a ReLU node.
func NewReLU[B tensor.Backend]() *ReLU[B] {
	return &ReLU[B]{}
}

// Forward applies ReLU.
func (r *ReLU[B]) Forward(input *tensor.Tensor[B]) (*tensor.Tensor[B], error) {
	return input.ReLU(), nil
}

// Parameters returns nil; ReLU has no parameters.
func (r *ReLU[B]) Parameters() []*Parameter[B] {
	return nil
}

// Kind returns KindReLU.
func (r *ReLU[B]) Kind() Kind {
	return KindReLU
}

// Identity returns its input unchanged.
type Identity[B tensor.Backend] struct{}

// NewIdentity creates an Identity node.
func NewIdentity[B tensor.Backend]() *Identity[B] {
	return &Identity[B]{}
}

// Forward returns input.
func (i *Identity[B]) Forward(input *tensor.Tensor[B]) (*tensor.Tensor[B], error) {
	return input, nil
}

// Parameters returns nil.
func (i *Identity[B]) Parameters() []*Parameter[B] {
	return nil
}

// Kind returns KindIdentity.
func (i *Identity[B]) Kind() Kind {
	return KindIdentity
}
