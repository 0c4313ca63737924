package nn_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/streamnet/internal/backend/cpu"
	"github.com/born-ml/streamnet/internal/nn"
	"github.com/born-ml/streamnet/internal/tensor"
)

// TestLinear_Forward tests y = x @ W.T + b over the last axis.
func TestLinear_Forward(t *testing.T) {
	layer, err := nn.NewLinear(2, 2, cpu.New())
	require.NoError(t, err)

	// Weight: [[1, 2], [3, 4]], bias: [0.5, 1.0]
	copy(layer.Weight().Tensor().Data(), []float32{1, 2, 3, 4})
	copy(layer.Bias().Tensor().Data(), []float32{0.5, 1.0})

	// [batch=1, time=2, features=2]
	x, err := tensor.FromSlice([]float32{1, 1, 1, 0}, tensor.Shape{1, 2, 2}, cpu.New())
	require.NoError(t, err)

	out, err := layer.Forward(x)
	require.NoError(t, err)
	assert.Equal(t, tensor.Shape{1, 2, 2}, out.Shape())
	assert.Equal(t, []float32{3.5, 8, 1.5, 4}, out.Data())

	_, err = layer.Forward(signal(t, 2, 3))
	assert.ErrorIs(t, err, nn.ErrShape)

	_, err = nn.NewLinear(0, 2, cpu.New())
	assert.ErrorIs(t, err, nn.ErrInvalidConfig)
}

// TestGroupNorm_Scalar tests normalization over axis 1 with scalar affine.
func TestGroupNorm_Scalar(t *testing.T) {
	b := cpu.New()
	norm, err := nn.NewGroupNorm("GroupNorm", tensor.Full(tensor.Shape{}, 2, b), tensor.Full(tensor.Shape{}, 1, b))
	require.NoError(t, err)

	// [1, 3, 2]: time step 0 holds {1, 3, 5}, time step 1 holds {0, 0, 6}
	x, err := tensor.FromSlice([]float32{1, 0, 3, 0, 5, 6}, tensor.Shape{1, 3, 2}, b)
	require.NoError(t, err)

	out, err := norm.Forward(x)
	require.NoError(t, err)

	// Step 0: mean 3, std sqrt(8/3). Step 1: mean 2, std sqrt(8).
	s0 := math.Sqrt(8.0 / 3.0)
	s1 := math.Sqrt(8.0)
	want := []float32{
		float32(-2/s0*2 + 1), float32(-2/s1*2 + 1),
		1, float32(-2/s1*2 + 1),
		float32(2/s0*2 + 1), float32(4/s1*2 + 1),
	}
	assert.InDeltaSlice(t, want, out.Data(), 1e-5)
}

// TestGroupNorm_PerChannel tests vector alpha/beta broadcast along axis 1.
func TestGroupNorm_PerChannel(t *testing.T) {
	b := cpu.New()
	alpha, err := tensor.FromSlice([]float32{1, 2}, tensor.Shape{2}, b)
	require.NoError(t, err)
	beta, err := tensor.FromSlice([]float32{0, 10}, tensor.Shape{2}, b)
	require.NoError(t, err)
	norm, err := nn.NewGroupNorm("GroupNormPerChannel", alpha, beta)
	require.NoError(t, err)

	// [1, 2, 1]: channels {1, 3} -> normalized {-1, 1}
	x, err := tensor.FromSlice([]float32{1, 3}, tensor.Shape{1, 2, 1}, b)
	require.NoError(t, err)
	out, err := norm.Forward(x)
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float32{-1, 12}, out.Data(), 1e-6)

	_, err = norm.Forward(signal(t, 1, 3, 4))
	assert.ErrorIs(t, err, nn.ErrShape)
	assert.Equal(t, "GroupNormPerChannel", norm.Tag())
}

// TestReLUIdentity tests the stateless activations.
func TestReLUIdentity(t *testing.T) {
	x, err := tensor.FromSlice([]float32{-1, 2}, tensor.Shape{2}, cpu.New())
	require.NoError(t, err)

	out, err := nn.NewReLU[backend]().Forward(x)
	require.NoError(t, err)
	assert.Equal(t, []float32{0, 2}, out.Data())

	same, err := nn.NewIdentity[backend]().Forward(x)
	require.NoError(t, err)
	assert.Same(t, x, same)
}

// TestReshapePermute tests the shape-only nodes.
func TestReshapePermute(t *testing.T) {
	reshape, err := nn.NewReshape[backend]([]int{1, -1, 80})
	require.NoError(t, err)
	out, err := reshape.Forward(signal(t, 57*80))
	require.NoError(t, err)
	assert.Equal(t, tensor.Shape{1, 57, 80}, out.Shape())

	_, err = reshape.Forward(signal(t, 81))
	assert.ErrorIs(t, err, nn.ErrShape)

	permute, err := nn.NewPermute[backend]([]int{0, 2, 1})
	require.NoError(t, err)
	out, err = permute.Forward(out)
	require.NoError(t, err)
	assert.Equal(t, tensor.Shape{1, 80, 57}, out.Shape())

	_, err = permute.Forward(signal(t, 4, 5))
	assert.ErrorIs(t, err, nn.ErrShape)

	_, err = nn.NewReshape[backend]([]int{-1, -1})
	assert.ErrorIs(t, err, nn.ErrInvalidConfig)
	_, err = nn.NewPermute[backend]([]int{0, 0})
	assert.ErrorIs(t, err, nn.ErrInvalidConfig)
}

// TestParseKind tests tag dispatch, including the GroupNorm prefix rule.
func TestParseKind(t *testing.T) {
	for _, k := range nn.Kinds {
		got, ok := nn.ParseKind(k.String())
		assert.True(t, ok, k.String())
		assert.Equal(t, k, got)
	}

	k, ok := nn.ParseKind("GroupNormW2L")
	assert.True(t, ok)
	assert.Equal(t, nn.KindGroupNorm, k)

	_, ok = nn.ParseKind("Foo")
	assert.False(t, ok)
	_, ok = nn.ParseKind("conv1d")
	assert.False(t, ok)
}
