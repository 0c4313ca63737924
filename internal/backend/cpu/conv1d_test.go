package cpu

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/born-ml/streamnet/internal/parallel"
	"github.com/born-ml/streamnet/internal/tensor"
)

// TestConv1D_Basic tests a single-channel convolution with stride 1.
func TestConv1D_Basic(t *testing.T) {
	backend := New()
	input := raw(t, []float32{1, 2, 3, 4, 5}, 1, 1, 5)
	kernel := raw(t, []float32{1, 0, -1}, 1, 1, 3)
	bias := raw(t, []float32{0.5}, 1)

	out := backend.Conv1D(input, kernel, bias, 1)
	assert.Equal(t, tensor.Shape{1, 1, 3}, out.Shape())
	assert.Equal(t, []float32{-1.5, -1.5, -1.5}, out.AsFloat32())
}

// TestConv1D_StrideChannels tests multiple channels and stride without bias.
func TestConv1D_StrideChannels(t *testing.T) {
	backend := New()
	// 2 input channels, length 6.
	input := raw(t, []float32{
		1, 2, 3, 4, 5, 6,
		1, 1, 1, 1, 1, 1,
	}, 1, 2, 6)
	// 2 output channels, kernel 2: out0 sums channel 0, out1 sums channel 1.
	kernel := raw(t, []float32{
		1, 1, 0, 0,
		0, 0, 1, 1,
	}, 2, 2, 2)

	out := backend.Conv1D(input, kernel, nil, 2)
	assert.Equal(t, tensor.Shape{1, 2, 3}, out.Shape())
	assert.Equal(t, []float32{3, 7, 11, 2, 2, 2}, out.AsFloat32())
}

// TestConv1D_ShortInput tests that inputs shorter than the kernel produce no frames.
func TestConv1D_ShortInput(t *testing.T) {
	backend := New()
	input := raw(t, []float32{1, 2}, 1, 1, 2)
	kernel := raw(t, []float32{1, 1, 1}, 1, 1, 3)

	out := backend.Conv1D(input, kernel, nil, 1)
	assert.Equal(t, tensor.Shape{1, 1, 0}, out.Shape())
}

// TestConv1D_Invalid tests shape validation.
func TestConv1D_Invalid(t *testing.T) {
	backend := New()
	input := raw(t, []float32{1, 2, 3, 4}, 1, 2, 2)
	kernel := raw(t, []float32{1, 1}, 1, 1, 2)

	assert.Panics(t, func() { backend.Conv1D(input, kernel, nil, 1) })
	assert.Panics(t, func() { backend.Conv1D(input, raw(t, []float32{1, 1, 1, 1}, 1, 2, 2), nil, 0) })
}

// TestConv1D_ParallelMatchesSequential tests that worker count does not change results.
func TestConv1D_ParallelMatchesSequential(t *testing.T) {
	const n, cin, cout, length, k = 2, 5, 24, 40, 4
	in := make([]float32, n*cin*length)
	for i := range in {
		in[i] = float32(i%13) - 6
	}
	w := make([]float32, cout*cin*k)
	for i := range w {
		w[i] = float32(i%7)/4 - 0.75
	}
	bias := make([]float32, cout)
	for i := range bias {
		bias[i] = float32(i) / 10
	}
	input := raw(t, in, n, cin, length)
	kernel := raw(t, w, cout, cin, k)
	b := raw(t, bias, cout)

	seq := NewWithConfig(parallel.Sequential()).Conv1D(input, kernel, b, 3)
	par := NewWithConfig(parallel.Config{Workers: 8, MinItems: 1}).Conv1D(input, kernel, b, 3)
	assert.Equal(t, tensor.Shape{n, cout, (length-k)/3 + 1}, par.Shape())
	assert.Equal(t, seq.AsFloat32(), par.AsFloat32())
}
