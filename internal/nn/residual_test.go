package nn_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/streamnet/internal/backend/cpu"
	"github.com/born-ml/streamnet/internal/nn"
	"github.com/born-ml/streamnet/internal/tensor"
)

// TestResidual_LengthReconciliation tests that a strided inner path emits the
// cumulative minimum of both paths and carries the rest of the input.
func TestResidual_LengthReconciliation(t *testing.T) {
	inner := newConv(t, nn.Conv1dConfig{InChannels: 3, OutChannels: 3, KernelSize: 2, Stride: 2, Groups: 1})
	fill(inner, 4)
	res := nn.NewResidual[backend](inner)

	x := signal(t, 1, 3, 10)
	emitted := 0
	innerTotal := 0

	for i, chunk := range []*tensor.Tensor[backend]{x.Narrow(2, 0, 5), x.Narrow(2, 5, 5)} {
		out, err := res.Forward(chunk)
		require.NoError(t, err)
		emitted += out.Dim(2)
		innerTotal = (5*(i+1)-2)/2 + 1
		cumulativeInput := 5 * (i + 1)

		assert.Equal(t, min(cumulativeInput, innerTotal), emitted, "call %d", i)
		assert.Equal(t, cumulativeInput, emitted+res.Pending(), "call %d", i)
	}
	assert.Equal(t, 5, emitted)
}

// TestResidual_ChunkInvariance tests a strided residual block under chunking.
func TestResidual_ChunkInvariance(t *testing.T) {
	build := func() nn.Module[backend] {
		conv := newConv(t, nn.Conv1dConfig{InChannels: 2, OutChannels: 2, KernelSize: 3, Stride: 2, Groups: 2})
		block := nn.NewSequential[backend](conv, nn.NewReLU[backend]())
		m := nn.NewResidual[backend](block)
		fill(m, 5)
		return m
	}
	x := signal(t, 1, 2, 23)

	want, err := build().Forward(x)
	require.NoError(t, err)

	for _, sizes := range [][]int{{1, 2, 3, 4, 5, 8}, {11, 12}, {2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 3}} {
		got := stream(t, build(), x, 2, 2, sizes)
		assert.Equal(t, want.Shape(), got.Shape(), "sizes %v", sizes)
		assert.InDeltaSlice(t, want.Data(), got.Data(), 1e-5, "sizes %v", sizes)
	}
}

// TestResidual_TimeAxis tests rank-based and explicit time axes.
func TestResidual_TimeAxis(t *testing.T) {
	identity := nn.NewIdentity[backend]()

	// [time, features]: time is axis 0.
	x, err := tensor.FromSlice([]float32{1, 2, 3, 4}, tensor.Shape{2, 2}, cpu.New())
	require.NoError(t, err)
	out, err := nn.NewResidual[backend](identity).Forward(x)
	require.NoError(t, err)
	assert.Equal(t, []float32{2, 4, 6, 8}, out.Data())

	// Rank 1 has no conventional time axis.
	v, err := tensor.FromSlice([]float32{1, 2}, tensor.Shape{2}, cpu.New())
	require.NoError(t, err)
	_, err = nn.NewResidual[backend](identity).Forward(v)
	assert.ErrorIs(t, err, nn.ErrShape)

	// Unless one is configured.
	res := nn.NewResidual[backend](identity).WithTimeAxis(-1)
	out, err = res.Forward(v)
	require.NoError(t, err)
	assert.Equal(t, []float32{2, 4}, out.Data())
	axis, ok := res.TimeAxis()
	assert.True(t, ok)
	assert.Equal(t, -1, axis)
}

// TestResidual_InnerShapeMismatch tests that an inner path that changes
// channels is rejected.
func TestResidual_InnerShapeMismatch(t *testing.T) {
	conv := newConv(t, nn.Conv1dConfig{InChannels: 2, OutChannels: 4, KernelSize: 1, Stride: 1, Groups: 1})
	_, err := nn.NewResidual[backend](conv).Forward(signal(t, 1, 2, 3))
	assert.ErrorIs(t, err, nn.ErrShape)
}

// TestResidual_Reset tests that Reset drops pending input and inner carries.
func TestResidual_Reset(t *testing.T) {
	inner := newConv(t, nn.Conv1dConfig{InChannels: 1, OutChannels: 1, KernelSize: 2, Stride: 2, Groups: 1})
	res := nn.NewResidual[backend](inner)

	_, err := res.Forward(signal(t, 1, 1, 5))
	require.NoError(t, err)
	assert.Equal(t, 3, res.Pending())
	assert.Equal(t, 1, inner.Pending())

	nn.Reset[backend](res)
	assert.Equal(t, 0, res.Pending())
	assert.Equal(t, 0, inner.Pending())
}
