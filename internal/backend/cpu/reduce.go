package cpu

import (
	"math"

	"github.com/born-ml/streamnet/internal/tensor"
)

// MeanDim computes the mean of tensor elements along the specified dimension.
//
// Parameters:
//   - dim: dimension to reduce (supports negative indexing: -1 = last dim)
//   - keepDim: if true, keep the reduced dimension with size 1; if false, remove it
//
// Example:
//
//	x := tensor.Zeros(tensor.Shape{1, 80, 57}, backend)
//	y := backend.MeanDim(x.Raw(), 1, true) // shape: [1, 1, 57]
func (cpu *CPUBackend) MeanDim(x *tensor.RawTensor, dim int, keepDim bool) *tensor.RawTensor {
	return cpu.reduce("meandim", x, dim, keepDim, func(values func(int) float32, n int) float32 {
		var sum float32
		for i := 0; i < n; i++ {
			sum += values(i)
		}
		return sum / float32(n)
	})
}

// StdDim computes the population (biased) standard deviation along dim:
// sqrt(mean((x - mean(x))^2)).
func (cpu *CPUBackend) StdDim(x *tensor.RawTensor, dim int, keepDim bool) *tensor.RawTensor {
	return cpu.reduce("stddim", x, dim, keepDim, func(values func(int) float32, n int) float32 {
		var sum float32
		for i := 0; i < n; i++ {
			sum += values(i)
		}
		mean := sum / float32(n)

		var sq float32
		for i := 0; i < n; i++ {
			d := values(i) - mean
			sq += d * d
		}
		return float32(math.Sqrt(float64(sq / float32(n))))
	})
}

// reduce folds dim with fn, which receives an accessor over the n values of
// one reduction lane.
func (cpu *CPUBackend) reduce(
	op string,
	x *tensor.RawTensor,
	dim int,
	keepDim bool,
	fn func(values func(int) float32, n int) float32,
) *tensor.RawTensor {
	shape := x.Shape()
	dim = normalizeAxis(op, dim, len(shape))

	outShape := make(tensor.Shape, 0, len(shape))
	for d, size := range shape {
		switch {
		case d != dim:
			outShape = append(outShape, size)
		case keepDim:
			outShape = append(outShape, 1)
		}
	}

	result := cpu.newResult(op, outShape)
	out := result.AsFloat32()
	in := x.AsFloat32()
	outer, n, inner := shape.SplitAt(dim)

	for o := 0; o < outer; o++ {
		for i := 0; i < inner; i++ {
			base := o*n*inner + i
			out[o*inner+i] = fn(func(k int) float32 { return in[base+k*inner] }, n)
		}
	}
	return result
}
