package nn

import (
	"github.com/pkg/errors"

	"github.com/born-ml/streamnet/internal/tensor"
)

// Residual adds the output of an inner module back onto its own input.
//
// The inner path may emit fewer time steps than it receives (a strided
// convolution, say), so input steps are held in a pending buffer until the
// inner path catches up:
//
//	inner   := module(chunk)
//	aligned := pending ++ chunk
//	size    := min(len(aligned), len(inner))
//	output  := aligned[:size] + inner[:size]
//	pending  = aligned[size:]
//
// Lengths are measured along the time axis. Unless configured with
// WithTimeAxis, a 3D chunk [batch, channels, time] uses axis 2 and a 2D chunk
// [time, features] uses axis 0; other ranks are rejected.
type Residual[B tensor.Backend] struct {
	module      Module[B]
	timeAxis    int
	hasTimeAxis bool
	pending     *tensor.Tensor[B]
}

// NewResidual wraps module.
func NewResidual[B tensor.Backend](module Module[B]) *Residual[B] {
	return &Residual[B]{module: module}
}

// WithTimeAxis fixes the time axis instead of inferring it from rank.
// Negative axes count from the end.
func (r *Residual[B]) WithTimeAxis(axis int) *Residual[B] {
	r.timeAxis = axis
	r.hasTimeAxis = true
	return r
}

// TimeAxis returns the configured time axis, if any.
func (r *Residual[B]) TimeAxis() (int, bool) {
	return r.timeAxis, r.hasTimeAxis
}

// Forward applies the inner module and adds the aligned input.
func (r *Residual[B]) Forward(input *tensor.Tensor[B]) (*tensor.Tensor[B], error) {
	axis, err := r.axis(input.Rank())
	if err != nil {
		return nil, err
	}

	inner, err := r.module.Forward(input)
	if err != nil {
		return nil, errors.WithMessage(err, "module")
	}
	if err := matchExceptAxis(input.Shape(), inner.Shape(), axis); err != nil {
		return nil, err
	}

	pending := r.pending
	if pending == nil || pending.NumElements() == 0 {
		empty := input.Shape().Clone()
		empty[axis] = 0
		pending = tensor.Zeros(empty, input.Backend())
	} else if err := matchExceptAxis(pending.Shape(), input.Shape(), axis); err != nil {
		return nil, err
	}

	aligned := tensor.Cat([]*tensor.Tensor[B]{pending, input}, axis)
	size := min(aligned.Dim(axis), inner.Dim(axis))

	output := aligned.Narrow(axis, 0, size).Add(inner.Narrow(axis, 0, size))
	r.pending = aligned.Narrow(axis, size, aligned.Dim(axis)-size)
	return output, nil
}

func (r *Residual[B]) axis(rank int) (int, error) {
	if r.hasTimeAxis {
		axis, err := tensor.NormalizeAxis(r.timeAxis, rank)
		if err != nil {
			return 0, rankError("Residual", "time axis: %v", err)
		}
		return axis, nil
	}
	switch rank {
	case 3:
		return 2, nil
	case 2:
		return 0, nil
	default:
		return 0, rankError("Residual", "cannot infer time axis for rank %d input", rank)
	}
}

// matchExceptAxis checks that two shapes agree everywhere but the time axis.
func matchExceptAxis(want, got tensor.Shape, axis int) error {
	if len(want) != len(got) {
		return rankError("Residual", "shape %v does not match input %v", got, want)
	}
	for d := range want {
		if d != axis && want[d] != got[d] {
			return &ShapeError{Node: "Residual", Axis: d, Want: want[d], Got: got[d]}
		}
	}
	return nil
}

// Pending returns the number of input steps carried into the next call.
func (r *Residual[B]) Pending() int {
	if r.pending == nil {
		return 0
	}
	axis, err := r.axis(r.pending.Rank())
	if err != nil {
		return 0
	}
	return r.pending.Dim(axis)
}

// Parameters returns the inner module's parameters.
func (r *Residual[B]) Parameters() []*Parameter[B] {
	return r.module.Parameters()
}

// Kind returns KindResidual.
func (r *Residual[B]) Kind() Kind {
	return KindResidual
}

// Module returns the inner module.
func (r *Residual[B]) Module() Module[B] {
	return r.module
}

// Children returns the inner module under the name "module".
func (r *Residual[B]) Children() []Child[B] {
	return []Child[B]{{Name: "module", Module: r.module}}
}

// Start starts the inner module and clears pending input.
func (r *Residual[B]) Start() {
	r.pending = nil
	Start(r.module)
}

// Finish finishes the inner module.
func (r *Residual[B]) Finish() {
	Finish(r.module)
}

// Reset clears pending input and resets the inner module.
func (r *Residual[B]) Reset() {
	r.pending = nil
	Reset(r.module)
}
