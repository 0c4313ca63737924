package nn

import (
	"github.com/born-ml/streamnet/internal/tensor"
)

// GroupNorm normalizes each chunk over its channel axis (axis 1).
//
// Computes: y = (x - mean) / std * alpha + beta
// where:
//   - mean and std are taken over axis 1 of the current chunk only
//   - std is the population standard deviation, with no epsilon
//   - alpha and beta are scalars, or vectors with one entry per channel
//
// Statistics are chunk-local, not stream-global.
type GroupNorm[B tensor.Backend] struct {
	tag   string
	alpha *Parameter[B] // [] or [channels]
	beta  *Parameter[B] // [] or [channels]
}

// NewGroupNorm creates a GroupNorm node. tag is the description tag that named
// it (any tag starting with "GroupNorm").
func NewGroupNorm[B tensor.Backend](tag string, alpha, beta *tensor.Tensor[B]) (*GroupNorm[B], error) {
	if alpha.Rank() > 1 || beta.Rank() > 1 {
		return nil, errorf(ErrInvalidConfig, "%s: alpha %v and beta %v must be scalars or vectors",
			tag, alpha.Shape(), beta.Shape())
	}
	if tag == "" {
		tag = KindGroupNorm.String()
	}

	return &GroupNorm[B]{
		tag:   tag,
		alpha: NewParameter("alpha", alpha),
		beta:  NewParameter("beta", beta),
	}, nil
}

// Forward normalizes x over axis 1.
func (g *GroupNorm[B]) Forward(input *tensor.Tensor[B]) (*tensor.Tensor[B], error) {
	if input.Rank() < 2 {
		return nil, rankError(g.tag, "expected at least 2D input, got %v", input.Shape())
	}

	alpha, err := g.channelwise(g.alpha.Tensor(), input.Shape())
	if err != nil {
		return nil, err
	}
	beta, err := g.channelwise(g.beta.Tensor(), input.Shape())
	if err != nil {
		return nil, err
	}

	mean := input.MeanDim(1, true)
	std := input.StdDim(1, true)
	return input.Sub(mean).Div(std).Mul(alpha).Add(beta), nil
}

// channelwise reshapes a per-channel vector so it broadcasts along axis 1.
func (g *GroupNorm[B]) channelwise(p *tensor.Tensor[B], shape tensor.Shape) (*tensor.Tensor[B], error) {
	if p.Rank() == 0 {
		return p, nil
	}
	if p.Dim(0) != shape[1] {
		return nil, &ShapeError{Node: g.tag, Axis: 1, Want: p.Dim(0), Got: shape[1]}
	}

	target := make([]int, len(shape))
	for i := range target {
		target[i] = 1
	}
	target[1] = shape[1]
	return p.Reshape(target...), nil
}

// Parameters returns [alpha, beta].
func (g *GroupNorm[B]) Parameters() []*Parameter[B] {
	return []*Parameter[B]{g.alpha, g.beta}
}

// Kind returns KindGroupNorm.
func (g *GroupNorm[B]) Kind() Kind {
	return KindGroupNorm
}

// Tag returns the description tag the node was built from.
func (g *GroupNorm[B]) Tag() string {
	return g.tag
}

// Alpha returns the scale parameter.
func (g *GroupNorm[B]) Alpha() *Parameter[B] {
	return g.alpha
}

// Beta returns the shift parameter.
func (g *GroupNorm[B]) Beta() *Parameter[B] {
	return g.beta
}
