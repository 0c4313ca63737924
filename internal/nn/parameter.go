package nn

import (
	"github.com/born-ml/streamnet/internal/tensor"
)

// Parameter is a learnable tensor owned by a node.
//
// Graphs never train; parameter values are written once by Bind and read on
// every Forward.
type Parameter[B tensor.Backend] struct {
	name   string           // Local name (e.g., "weight", "bias")
	tensor *tensor.Tensor[B] // Parameter values
}

// NewParameter creates a parameter holding t.
func NewParameter[B tensor.Backend](name string, t *tensor.Tensor[B]) *Parameter[B] {
	return &Parameter[B]{
		name:   name,
		tensor: t,
	}
}

// Name returns the parameter's local name.
func (p *Parameter[B]) Name() string {
	return p.name
}

// Tensor returns the parameter tensor.
func (p *Parameter[B]) Tensor() *tensor.Tensor[B] {
	return p.tensor
}

// Shape returns the parameter's shape.
func (p *Parameter[B]) Shape() tensor.Shape {
	return p.tensor.Shape()
}
