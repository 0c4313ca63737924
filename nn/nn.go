// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package nn

import (
	"github.com/born-ml/streamnet/internal/nn"
	"github.com/born-ml/streamnet/tensor"
)

// Errors.
var (
	ErrShape                  = nn.ErrShape
	ErrInvalidConfig          = nn.ErrInvalidConfig
	ErrNonConformant          = nn.ErrNonConformant
	ErrParameterCountMismatch = nn.ErrParameterCountMismatch
	ErrParameterShapeMismatch = nn.ErrParameterShapeMismatch
)

// ShapeError reports a chunk that does not fit a node.
type ShapeError = nn.ShapeError

// ConformanceError reports a parameter stream that does not fit a graph.
type ConformanceError = nn.ConformanceError

// Linear applies y = x @ W^T + b over the last axis.
type Linear[B tensor.Backend] = nn.Linear[B]

// NewLinear creates a zero-initialized Linear node.
func NewLinear[B tensor.Backend](inFeatures, outFeatures int, backend B) (*Linear[B], error) {
	return nn.NewLinear(inFeatures, outFeatures, backend)
}

// Conv1dConfig configures a streaming convolution.
type Conv1dConfig = nn.Conv1dConfig

// Conv1d is a streaming grouped 1D convolution with unequal padding.
type Conv1d[B tensor.Backend] = nn.Conv1d[B]

// NewConv1d creates a zero-initialized Conv1d node.
func NewConv1d[B tensor.Backend](config Conv1dConfig, backend B) (*Conv1d[B], error) {
	return nn.NewConv1d(config, backend)
}

// GroupNorm normalizes each time step over the channel axis.
type GroupNorm[B tensor.Backend] = nn.GroupNorm[B]

// NewGroupNorm creates a GroupNorm node. alpha and beta are scalars or
// per-channel vectors.
func NewGroupNorm[B tensor.Backend](tag string, alpha, beta *tensor.Tensor[B]) (*GroupNorm[B], error) {
	return nn.NewGroupNorm(tag, alpha, beta)
}

// ReLU is the rectified linear activation.
type ReLU[B tensor.Backend] = nn.ReLU[B]

// NewReLU creates a ReLU node.
func NewReLU[B tensor.Backend]() *ReLU[B] { return nn.NewReLU[B]() }

// Identity passes chunks through unchanged.
type Identity[B tensor.Backend] = nn.Identity[B]

// NewIdentity creates an Identity node.
func NewIdentity[B tensor.Backend]() *Identity[B] { return nn.NewIdentity[B]() }

// Reshape reshapes chunks; one dimension may be -1.
type Reshape[B tensor.Backend] = nn.Reshape[B]

// NewReshape creates a Reshape node.
func NewReshape[B tensor.Backend](shape []int) (*Reshape[B], error) {
	return nn.NewReshape[B](shape)
}

// Permute reorders the axes of chunks.
type Permute[B tensor.Backend] = nn.Permute[B]

// NewPermute creates a Permute node.
func NewPermute[B tensor.Backend](permutation []int) (*Permute[B], error) {
	return nn.NewPermute[B](permutation)
}

// Sequential applies named children in order.
type Sequential[B tensor.Backend] = nn.Sequential[B]

// NewSequential creates a Sequential node. Children are named "<kind>-<k>".
func NewSequential[B tensor.Backend](modules ...Module[B]) *Sequential[B] {
	return nn.NewSequential(modules...)
}

// Residual adds its input to its inner module's output, holding skip-path
// frames until the inner module catches up.
type Residual[B tensor.Backend] = nn.Residual[B]

// NewResidual wraps module in a residual connection.
func NewResidual[B tensor.Backend](module Module[B]) *Residual[B] {
	return nn.NewResidual(module)
}
