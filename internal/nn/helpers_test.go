package nn_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/born-ml/streamnet/internal/backend/cpu"
	"github.com/born-ml/streamnet/internal/nn"
	"github.com/born-ml/streamnet/internal/tensor"
)

type backend = *cpu.CPUBackend

// fill writes deterministic, non-trivial values into every parameter of m.
func fill(m nn.Module[backend], seed float64) {
	k := 0
	for _, p := range m.Parameters() {
		data := p.Tensor().Data()
		for i := range data {
			data[i] = float32(math.Sin(seed + 0.37*float64(k)))
			k++
		}
	}
}

// signal returns a tensor of the given shape holding a smooth test signal.
func signal(t *testing.T, shape ...int) *tensor.Tensor[backend] {
	t.Helper()
	data := make([]float32, tensor.Shape(shape).NumElements())
	for i := range data {
		data[i] = float32(math.Cos(0.21*float64(i)) + 0.01*float64(i%7))
	}
	x, err := tensor.FromSlice(data, tensor.Shape(shape), cpu.New())
	require.NoError(t, err)
	return x
}

// stream feeds x to m in chunks of the given sizes along axis and
// concatenates the outputs along outAxis.
func stream(t *testing.T, m nn.Module[backend], x *tensor.Tensor[backend], axis, outAxis int, sizes []int) *tensor.Tensor[backend] {
	t.Helper()
	var outputs []*tensor.Tensor[backend]
	start := 0
	for _, size := range sizes {
		out, err := m.Forward(x.Narrow(axis, start, size))
		require.NoError(t, err)
		outputs = append(outputs, out)
		start += size
	}
	require.Equal(t, x.Dim(axis), start, "chunk sizes must cover the input")
	return tensor.Cat(outputs, outAxis)
}

func newConv(t *testing.T, config nn.Conv1dConfig) *nn.Conv1d[backend] {
	t.Helper()
	conv, err := nn.NewConv1d(config, cpu.New())
	require.NoError(t, err)
	return conv
}
