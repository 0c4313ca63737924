package cpu

import (
	"fmt"

	"github.com/born-ml/streamnet/internal/tensor"
)

// Reshape returns a view of t with a new shape. At most one dimension may be
// -1; it is inferred from the element count.
func (cpu *CPUBackend) Reshape(t *tensor.RawTensor, newShape tensor.Shape) *tensor.RawTensor {
	resolved, err := newShape.Infer(t.NumElements())
	if err != nil {
		panic(fmt.Sprintf("reshape: cannot reshape %v: %v", t.Shape(), err))
	}
	return t.View(resolved)
}

// Transpose permutes the dimensions of t. Empty axes reverses all dimensions.
func (cpu *CPUBackend) Transpose(t *tensor.RawTensor, axes ...int) *tensor.RawTensor {
	shape := t.Shape()
	rank := len(shape)

	if len(axes) == 0 {
		axes = make([]int, rank)
		for i := range axes {
			axes[i] = rank - 1 - i
		}
	}
	if len(axes) != rank {
		panic(fmt.Sprintf("transpose: expected %d axes, got %v", rank, axes))
	}

	perm := make([]int, rank)
	seen := make([]bool, rank)
	for i, axis := range axes {
		a := normalizeAxis("transpose", axis, rank)
		if seen[a] {
			panic(fmt.Sprintf("transpose: repeated axis in %v", axes))
		}
		seen[a] = true
		perm[i] = a
	}

	newShape := make(tensor.Shape, rank)
	for i, a := range perm {
		newShape[i] = shape[a]
	}

	result := cpu.newResult("transpose", newShape)
	out := result.AsFloat32()
	in := t.AsFloat32()
	if len(out) == 0 {
		return result
	}

	// Input stride for each output dimension.
	inStrides := shape.ComputeStrides()
	strides := make([]int, rank)
	for i, a := range perm {
		strides[i] = inStrides[a]
	}

	index := make([]int, rank)
	inOff := 0
	for i := range out {
		out[i] = in[inOff]
		for d := rank - 1; d >= 0; d-- {
			index[d]++
			inOff += strides[d]
			if index[d] < newShape[d] {
				break
			}
			inOff -= strides[d] * index[d]
			index[d] = 0
		}
	}
	return result
}

// Cat concatenates tensors along dim. All other dimensions must match.
func (cpu *CPUBackend) Cat(tensors []*tensor.RawTensor, dim int) *tensor.RawTensor {
	if len(tensors) == 0 {
		panic("cat: at least one tensor required")
	}

	first := tensors[0].Shape()
	rank := len(first)
	dim = normalizeAxis("cat", dim, rank)

	outShape := first.Clone()
	outShape[dim] = 0
	for _, t := range tensors {
		shape := t.Shape()
		if len(shape) != rank {
			panic(fmt.Sprintf("cat: rank mismatch: %v vs %v", first, shape))
		}
		for d := range shape {
			if d != dim && shape[d] != first[d] {
				panic(fmt.Sprintf("cat: shape mismatch at dimension %d: %v vs %v", d, first, shape))
			}
		}
		outShape[dim] += shape[dim]
	}

	result := cpu.newResult("cat", outShape)
	out := result.AsFloat32()
	outer, outDim, inner := outShape.SplitAt(dim)

	for o := 0; o < outer; o++ {
		dst := out[o*outDim*inner:]
		for _, t := range tensors {
			n := t.Shape()[dim] * inner
			copy(dst[:n], t.AsFloat32()[o*n:(o+1)*n])
			dst = dst[n:]
		}
	}
	return result
}

// Narrow returns a copy of x restricted to [start, start+length) along dim.
func (cpu *CPUBackend) Narrow(x *tensor.RawTensor, dim, start, length int) *tensor.RawTensor {
	shape := x.Shape()
	dim = normalizeAxis("narrow", dim, len(shape))
	if start < 0 || length < 0 || start+length > shape[dim] {
		panic(fmt.Sprintf("narrow: range [%d, %d) out of bounds for dimension %d of %v", start, start+length, dim, shape))
	}

	outShape := shape.Clone()
	outShape[dim] = length
	result := cpu.newResult("narrow", outShape)
	out := result.AsFloat32()
	in := x.AsFloat32()

	outer, inDim, inner := shape.SplitAt(dim)
	n := length * inner
	for o := 0; o < outer; o++ {
		src := in[o*inDim*inner+start*inner:]
		copy(out[o*n:(o+1)*n], src[:n])
	}
	return result
}
