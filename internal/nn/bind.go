package nn

import (
	"k8s.io/klog/v2"

	"github.com/born-ml/streamnet/internal/tensor"
)

// Bind copies an external parameter stream into m.
//
// params must be conformant with m.Parameters(): the same length, and the same
// shape at every position. Conformance is checked before anything is copied,
// so on error m is unchanged. The returned error is a *ConformanceError that
// matches ErrNonConformant and either ErrParameterCountMismatch or
// ErrParameterShapeMismatch.
func Bind[B tensor.Backend](m Module[B], params []*tensor.RawTensor) error {
	named := NamedParameters(m)
	if err := Conformant(named, params); err != nil {
		return err
	}

	total := 0
	for i, np := range named {
		if err := np.Parameter.Tensor().Raw().CopyFrom(params[i]); err != nil {
			// Shapes were checked above.
			panic(err)
		}
		total += params[i].NumElements()
	}
	klog.V(1).Infof("Bound %d parameter tensors (%d values)", len(named), total)
	return nil
}

// Conformant reports whether params can be bound to the named parameters.
func Conformant[B tensor.Backend](named []NamedParameter[B], params []*tensor.RawTensor) error {
	if len(named) != len(params) {
		return &ConformanceError{
			Reason:    ErrParameterCountMismatch,
			WantCount: len(named),
			GotCount:  len(params),
		}
	}
	for i, np := range named {
		want := np.Parameter.Shape()
		if got := params[i].Shape(); !want.Equal(got) {
			return &ConformanceError{
				Reason:    ErrParameterShapeMismatch,
				Index:     i,
				Name:      np.Name,
				WantShape: want,
				GotShape:  got,
			}
		}
	}
	return nil
}
