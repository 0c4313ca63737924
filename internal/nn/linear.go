package nn

import (
	"github.com/born-ml/streamnet/internal/tensor"
)

// Linear implements a fully connected (dense) layer.
//
// Performs the transformation: y = x @ W.T + b over the last axis
// where:
//   - x is the input tensor with shape [..., in_features]
//   - W is the weight matrix with shape [out_features, in_features]
//   - b is the bias vector with shape [out_features]
//   - y is the output tensor with shape [..., out_features]
//
// Leading axes are flattened for the product and restored afterwards, so a
// time-major chunk [T, in_features] maps to [T, out_features].
//
// Weights start at zero and are populated by Bind.
type Linear[B tensor.Backend] struct {
	inFeatures  int
	outFeatures int
	weight      *Parameter[B] // [out_features, in_features]
	bias        *Parameter[B] // [out_features]
}

// NewLinear creates a new Linear layer.
func NewLinear[B tensor.Backend](inFeatures, outFeatures int, backend B) (*Linear[B], error) {
	if inFeatures <= 0 || outFeatures <= 0 {
		return nil, errorf(ErrInvalidConfig, "Linear: features must be positive, got in=%d out=%d", inFeatures, outFeatures)
	}

	return &Linear[B]{
		inFeatures:  inFeatures,
		outFeatures: outFeatures,
		weight:      NewParameter("weight", tensor.Zeros(tensor.Shape{outFeatures, inFeatures}, backend)),
		bias:        NewParameter("bias", tensor.Zeros(tensor.Shape{outFeatures}, backend)),
	}, nil
}

// Forward computes x @ W.T + b over the last axis.
func (l *Linear[B]) Forward(input *tensor.Tensor[B]) (*tensor.Tensor[B], error) {
	shape := input.Shape()
	if len(shape) == 0 {
		return nil, rankError("Linear", "expected at least 1D input, got scalar")
	}
	last := len(shape) - 1
	if shape[last] != l.inFeatures {
		return nil, &ShapeError{Node: "Linear", Axis: last, Want: l.inFeatures, Got: shape[last]}
	}

	// [rows, in] @ [in, out] = [rows, out]
	rows := input.Reshape(-1, l.inFeatures)
	output := rows.MatMul(l.weight.Tensor().Transpose())
	output = output.Add(l.bias.Tensor().Reshape(1, l.outFeatures))

	outShape := shape.Clone()
	outShape[last] = l.outFeatures
	return output.Reshape(outShape...), nil
}

// Parameters returns [weight, bias].
func (l *Linear[B]) Parameters() []*Parameter[B] {
	return []*Parameter[B]{l.weight, l.bias}
}

// Kind returns KindLinear.
func (l *Linear[B]) Kind() Kind {
	return KindLinear
}

// Weight returns the weight parameter.
func (l *Linear[B]) Weight() *Parameter[B] {
	return l.weight
}

// Bias returns the bias parameter.
func (l *Linear[B]) Bias() *Parameter[B] {
	return l.bias
}

// InFeatures returns the number of input features.
func (l *Linear[B]) InFeatures() int {
	return l.inFeatures
}

// OutFeatures returns the number of output features.
func (l *Linear[B]) OutFeatures() int {
	return l.outFeatures
}
