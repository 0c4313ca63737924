package nn_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/streamnet/internal/backend/cpu"
	"github.com/born-ml/streamnet/internal/nn"
	"github.com/born-ml/streamnet/internal/tensor"
)

// TestConv1d_FrameCount tests output length and carry length for one call.
func TestConv1d_FrameCount(t *testing.T) {
	tests := []struct {
		name           string
		length         int
		kernel, stride int
		wantFrames     int
		wantCarry      int
	}{
		{name: "exact", length: 7, kernel: 3, stride: 2, wantFrames: 3, wantCarry: 1},
		{name: "remainder", length: 8, kernel: 3, stride: 2, wantFrames: 3, wantCarry: 2},
		{name: "stride1", length: 5, kernel: 3, stride: 1, wantFrames: 3, wantCarry: 2},
		{name: "short", length: 2, kernel: 3, stride: 1, wantFrames: 0, wantCarry: 2},
		{name: "empty", length: 0, kernel: 3, stride: 1, wantFrames: 0, wantCarry: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conv := newConv(t, nn.Conv1dConfig{
				InChannels: 2, OutChannels: 4, KernelSize: tt.kernel, Stride: tt.stride, Groups: 1,
			})
			out, err := conv.Forward(signal(t, 1, 2, tt.length))
			require.NoError(t, err)
			assert.Equal(t, tensor.Shape{1, 4, tt.wantFrames}, out.Shape())
			assert.Equal(t, tt.wantCarry, conv.Pending())
		})
	}
}

// TestConv1d_ChunkInvariance tests that any chunking matches a single pass.
func TestConv1d_ChunkInvariance(t *testing.T) {
	config := nn.Conv1dConfig{InChannels: 4, OutChannels: 6, KernelSize: 5, Stride: 3, Groups: 2}
	x := signal(t, 1, 4, 40)

	whole := newConv(t, config)
	fill(whole, 1)
	want, err := whole.Forward(x)
	require.NoError(t, err)
	require.Equal(t, tensor.Shape{1, 6, 12}, want.Shape())

	for _, sizes := range [][]int{
		{1, 1, 1, 1, 36},
		{7, 13, 20},
		{4, 0, 4, 4, 4, 4, 4, 4, 4, 4, 4},
	} {
		conv := newConv(t, config)
		fill(conv, 1)
		got := stream(t, conv, x, 2, 2, sizes)
		assert.Equal(t, want.Shape(), got.Shape(), "sizes %v", sizes)
		assert.InDeltaSlice(t, want.Data(), got.Data(), 1e-5, "sizes %v", sizes)
	}
}

// TestConv1d_GroupedEquivalence tests that a grouped convolution equals
// independent convolutions on each channel slice with the same weights.
func TestConv1d_GroupedEquivalence(t *testing.T) {
	x := signal(t, 1, 6, 10)

	grouped := newConv(t, nn.Conv1dConfig{InChannels: 6, OutChannels: 9, KernelSize: 3, Stride: 1, Groups: 3})
	fill(grouped, 2)
	got, err := grouped.Forward(x)
	require.NoError(t, err)
	require.Equal(t, tensor.Shape{1, 9, 8}, got.Shape())

	var parts []*tensor.Tensor[backend]
	for g := 0; g < 3; g++ {
		single := newConv(t, nn.Conv1dConfig{InChannels: 2, OutChannels: 3, KernelSize: 3, Stride: 1, Groups: 1})
		fill(single, 2)
		out, err := single.Forward(x.Narrow(1, 2*g, 2))
		require.NoError(t, err)
		parts = append(parts, out)
	}
	want := tensor.Cat(parts, 1)
	assert.InDeltaSlice(t, want.Data(), got.Data(), 1e-6)
}

// TestConv1d_FinishFlushesRightPadding tests that Finish emits the trailing
// windows as if the stream were followed by RightPadding zeros, and that
// terminal mode holds until Reset.
func TestConv1d_FinishFlushesRightPadding(t *testing.T) {
	config := nn.Conv1dConfig{InChannels: 2, OutChannels: 2, KernelSize: 3, Stride: 1, RightPadding: 2, Groups: 1}
	x := signal(t, 1, 2, 5)
	padded := tensor.Cat([]*tensor.Tensor[backend]{x, tensor.Zeros(tensor.Shape{1, 2, 2}, cpu.New())}, 2)

	reference := newConv(t, nn.Conv1dConfig{InChannels: 2, OutChannels: 2, KernelSize: 3, Stride: 1, Groups: 1})
	fill(reference, 3)
	want, err := reference.Forward(padded)
	require.NoError(t, err)

	conv := newConv(t, config)
	fill(conv, 3)
	head, err := conv.Forward(x)
	require.NoError(t, err)
	assert.Equal(t, 3, head.Dim(2))

	conv.Finish()
	tail, err := conv.Forward(tensor.Zeros(tensor.Shape{1, 2, 0}, cpu.New()))
	require.NoError(t, err)
	assert.Equal(t, 2, tail.Dim(2))

	got := tensor.Cat([]*tensor.Tensor[backend]{head, tail}, 2)
	assert.InDeltaSlice(t, want.Data(), got.Data(), 1e-6)

	// Still terminal: the carried zeros and a fresh right padding form two
	// more windows of bias only.
	again, err := conv.Forward(tensor.Zeros(tensor.Shape{1, 2, 0}, cpu.New()))
	require.NoError(t, err)
	require.Equal(t, 2, again.Dim(2))
	bias := conv.Bias().Tensor().Data()
	assert.InDeltaSlice(t, []float32{bias[0], bias[0], bias[1], bias[1]}, again.Data(), 1e-6)

	conv.Reset()
	empty, err := conv.Forward(tensor.Zeros(tensor.Shape{1, 2, 0}, cpu.New()))
	require.NoError(t, err)
	assert.Equal(t, 0, empty.Dim(2))
	assert.Equal(t, 0, conv.Pending())
}

// TestConv1d_StartPrimesLeftPadding tests that Start prepends LeftPadding zeros.
func TestConv1d_StartPrimesLeftPadding(t *testing.T) {
	conv := newConv(t, nn.Conv1dConfig{InChannels: 1, OutChannels: 1, KernelSize: 3, Stride: 1, LeftPadding: 2, Groups: 1})
	copy(conv.Weight().Tensor().Data(), []float32{1, 1, 1})

	x, err := tensor.FromSlice([]float32{1, 2, 3}, tensor.Shape{1, 1, 3}, cpu.New())
	require.NoError(t, err)

	conv.Start()
	out, err := conv.Forward(x)
	require.NoError(t, err)
	assert.Equal(t, []float32{1, 3, 6}, out.Data())

	// Reset returns to empty carries: no priming.
	conv.Reset()
	out, err = conv.Forward(x)
	require.NoError(t, err)
	assert.Equal(t, []float32{6}, out.Data())
}

// TestConv1d_ShapeErrors tests per-call input validation.
func TestConv1d_ShapeErrors(t *testing.T) {
	conv := newConv(t, nn.Conv1dConfig{InChannels: 4, OutChannels: 4, KernelSize: 2, Stride: 1, Groups: 1})

	_, err := conv.Forward(signal(t, 1, 3, 5))
	require.Error(t, err)
	assert.ErrorIs(t, err, nn.ErrShape)
	var shapeErr *nn.ShapeError
	require.ErrorAs(t, err, &shapeErr)
	assert.Equal(t, 1, shapeErr.Axis)
	assert.Equal(t, 4, shapeErr.Want)
	assert.Equal(t, 3, shapeErr.Got)

	_, err = conv.Forward(signal(t, 4, 5))
	assert.ErrorIs(t, err, nn.ErrShape)

	// A carried remainder ties the node to its batch size.
	_, err = conv.Forward(signal(t, 1, 4, 4))
	require.NoError(t, err)
	_, err = conv.Forward(signal(t, 2, 4, 4))
	assert.ErrorIs(t, err, nn.ErrShape)
}

// TestConv1dConfig_Validate tests configuration checks.
func TestConv1dConfig_Validate(t *testing.T) {
	valid := nn.Conv1dConfig{InChannels: 4, OutChannels: 4, KernelSize: 3, Stride: 1, Groups: 2}
	require.NoError(t, valid.Validate())

	for _, mutate := range []func(*nn.Conv1dConfig){
		func(c *nn.Conv1dConfig) { c.Groups = 0 },
		func(c *nn.Conv1dConfig) { c.Groups = 3 },
		func(c *nn.Conv1dConfig) { c.KernelSize = 0 },
		func(c *nn.Conv1dConfig) { c.Stride = -1 },
		func(c *nn.Conv1dConfig) { c.LeftPadding = -1 },
	} {
		config := valid
		mutate(&config)
		_, err := nn.NewConv1d(config, cpu.New())
		assert.ErrorIs(t, err, nn.ErrInvalidConfig)
	}
}
