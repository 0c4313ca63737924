package graph

import (
	"fmt"

	"github.com/pkg/errors"
	"k8s.io/klog/v2"

	"github.com/born-ml/streamnet/internal/nn"
	"github.com/born-ml/streamnet/internal/tensor"
)

// Build constructs a graph from desc.
//
// Parameters start at zero (GroupNorm takes alpha and beta from the
// description) and are populated later with nn.Bind. On error no graph is
// returned; the error matches ErrUnknownModuleKind or ErrInvalidDescription
// and names the failing node's path.
func Build[B tensor.Backend](desc *Description, backend B) (nn.Module[B], error) {
	m, err := build(desc, "", backend)
	if err != nil {
		return nil, err
	}
	klog.V(1).Infof("Built %s graph: %d parameter tensors, %d values",
		m.Kind(), len(m.Parameters()), nn.NumParameters(m))
	return m, nil
}

func build[B tensor.Backend](desc *Description, path string, backend B) (nn.Module[B], error) {
	if desc == nil {
		return nil, invalid(path, "missing node")
	}
	kind, ok := nn.ParseKind(desc.Name)
	if !ok {
		return nil, errors.WithStack(&KindError{Path: path, Tag: desc.Name})
	}

	var (
		m   nn.Module[B]
		err error
	)
	switch kind {
	case nn.KindLinear:
		m, err = nn.NewLinear(desc.InFeatures, desc.OutFeatures, backend)
	case nn.KindConv1d:
		m, err = nn.NewConv1d(nn.Conv1dConfig{
			InChannels:   desc.InChannels,
			OutChannels:  desc.OutChannels,
			KernelSize:   desc.KernelSize,
			Stride:       desc.Stride,
			LeftPadding:  desc.LeftPadding,
			RightPadding: desc.RightPadding,
			Groups:       desc.Groups,
		}, backend)
	case nn.KindReLU:
		m = nn.NewReLU[B]()
	case nn.KindIdentity:
		m = nn.NewIdentity[B]()
	case nn.KindSequential:
		return buildSequential(desc, path, backend)
	case nn.KindResidual:
		return buildResidual(desc, path, backend)
	case nn.KindGroupNorm:
		m, err = buildGroupNorm(desc, path, backend)
	case nn.KindReshape:
		if desc.Shape == nil {
			return nil, invalid(path, "Reshape requires shape")
		}
		m, err = nn.NewReshape[B](desc.Shape)
	case nn.KindPermute:
		if desc.Permutation == nil {
			return nil, invalid(path, "Permute requires permutation")
		}
		m, err = nn.NewPermute[B](desc.Permutation)
	default:
		panic(fmt.Sprintf("graph: unhandled kind %s", kind))
	}
	if err != nil {
		var descErr *DescriptionError
		if errors.As(err, &descErr) {
			return nil, err
		}
		return nil, errors.WithStack(&DescriptionError{Path: path, Err: err})
	}

	klog.V(2).Infof("Built %s at %s", desc.Name, displayPath(path))
	return m, nil
}

func buildSequential[B tensor.Backend](desc *Description, path string, backend B) (nn.Module[B], error) {
	seq := nn.NewSequential[B]()
	for i, child := range desc.Children {
		childPath := join(path, fmt.Sprintf("children[%d]", i))
		m, err := build(child, childPath, backend)
		if err != nil {
			return nil, err
		}
		name := seq.Add(child.Name, m)
		klog.V(2).Infof("%s is %s", childPath, name)
	}
	return seq, nil
}

func buildResidual[B tensor.Backend](desc *Description, path string, backend B) (nn.Module[B], error) {
	if desc.Module == nil {
		return nil, invalid(path, "Residual requires module")
	}
	inner, err := build(desc.Module, join(path, "module"), backend)
	if err != nil {
		return nil, err
	}
	res := nn.NewResidual(inner)
	if desc.TimeAxis != nil {
		res.WithTimeAxis(*desc.TimeAxis)
	}
	return res, nil
}

func buildGroupNorm[B tensor.Backend](desc *Description, path string, backend B) (nn.Module[B], error) {
	alpha, err := floatsTensor(desc.Alpha, "alpha", path, backend)
	if err != nil {
		return nil, err
	}
	beta, err := floatsTensor(desc.Beta, "beta", path, backend)
	if err != nil {
		return nil, err
	}
	return nn.NewGroupNorm(desc.Name, alpha, beta)
}

// floatsTensor turns a scalar into a 0-d tensor and a list into a vector.
func floatsTensor[B tensor.Backend](f *Floats, field, path string, backend B) (*tensor.Tensor[B], error) {
	if f == nil || len(f.Values) == 0 {
		return nil, invalid(path, "GroupNorm requires %s", field)
	}
	shape := tensor.Shape{len(f.Values)}
	if f.Scalar {
		shape = tensor.Shape{}
	}
	t, err := tensor.FromSlice(f.Values, shape, backend)
	if err != nil {
		return nil, invalid(path, "%s: %v", field, err)
	}
	return t, nil
}
