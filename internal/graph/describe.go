package graph

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/born-ml/streamnet/internal/nn"
	"github.com/born-ml/streamnet/internal/tensor"
)

// Describe returns the description m was built from, so a built graph can be
// saved and rebuilt. GroupNorm alpha and beta carry their current values.
func Describe[B tensor.Backend](m nn.Module[B]) (*Description, error) {
	switch node := m.(type) {
	case *nn.Linear[B]:
		return &Description{
			Name:        nn.KindLinear.String(),
			InFeatures:  node.InFeatures(),
			OutFeatures: node.OutFeatures(),
		}, nil
	case *nn.Conv1d[B]:
		c := node.Config()
		return &Description{
			Name:         nn.KindConv1d.String(),
			InChannels:   c.InChannels,
			OutChannels:  c.OutChannels,
			KernelSize:   c.KernelSize,
			Stride:       c.Stride,
			LeftPadding:  c.LeftPadding,
			RightPadding: c.RightPadding,
			Groups:       c.Groups,
		}, nil
	case *nn.ReLU[B]:
		return &Description{Name: nn.KindReLU.String()}, nil
	case *nn.Identity[B]:
		return &Description{Name: nn.KindIdentity.String()}, nil
	case *nn.Sequential[B]:
		desc := &Description{Name: nn.KindSequential.String(), Children: []*Description{}}
		for _, child := range node.Children() {
			cd, err := Describe(child.Module)
			if err != nil {
				return nil, errors.WithMessage(err, child.Name)
			}
			desc.Children = append(desc.Children, cd)
		}
		return desc, nil
	case *nn.Residual[B]:
		inner, err := Describe(node.Module())
		if err != nil {
			return nil, errors.WithMessage(err, "module")
		}
		desc := &Description{Name: nn.KindResidual.String(), Module: inner}
		if axis, ok := node.TimeAxis(); ok {
			desc.TimeAxis = &axis
		}
		return desc, nil
	case *nn.GroupNorm[B]:
		return &Description{
			Name:  node.Tag(),
			Alpha: floatsOf(node.Alpha().Tensor()),
			Beta:  floatsOf(node.Beta().Tensor()),
		}, nil
	case *nn.Reshape[B]:
		return &Description{Name: nn.KindReshape.String(), Shape: node.Shape()}, nil
	case *nn.Permute[B]:
		return &Description{Name: nn.KindPermute.String(), Permutation: node.Permutation()}, nil
	default:
		return nil, errors.WithStack(&KindError{Tag: fmt.Sprintf("%T", m)})
	}
}

func floatsOf[B tensor.Backend](t *tensor.Tensor[B]) *Floats {
	values := append([]float32(nil), t.Data()...)
	return &Floats{Values: values, Scalar: t.Rank() == 0}
}
