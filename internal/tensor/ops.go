package tensor

// Add performs element-wise addition with broadcasting.
//
// Example:
//
//	a := tensor.Full(Shape{3, 1}, 1, backend)
//	b := tensor.Full(Shape{3, 5}, 1, backend)
//	c := a.Add(b) // Shape: [3, 5] (broadcasted)
func (t *Tensor[B]) Add(other *Tensor[B]) *Tensor[B] {
	return New(t.backend.Add(t.raw, other.raw), t.backend)
}

// Sub performs element-wise subtraction with broadcasting.
func (t *Tensor[B]) Sub(other *Tensor[B]) *Tensor[B] {
	return New(t.backend.Sub(t.raw, other.raw), t.backend)
}

// Mul performs element-wise multiplication with broadcasting.
func (t *Tensor[B]) Mul(other *Tensor[B]) *Tensor[B] {
	return New(t.backend.Mul(t.raw, other.raw), t.backend)
}

// Div performs element-wise division with broadcasting.
func (t *Tensor[B]) Div(other *Tensor[B]) *Tensor[B] {
	return New(t.backend.Div(t.raw, other.raw), t.backend)
}

// MatMul performs 2D matrix multiplication: (M, K) @ (K, N) → (M, N).
func (t *Tensor[B]) MatMul(other *Tensor[B]) *Tensor[B] {
	return New(t.backend.MatMul(t.raw, other.raw), t.backend)
}

// Reshape returns a tensor with the same data but different shape.
// One dimension may be -1 and is inferred from the element count.
//
// Example:
//
//	t := tensor.Arange(0, 12, backend) // Shape: [12]
//	reshaped := t.Reshape(-1, 4)      // Shape: [3, 4]
func (t *Tensor[B]) Reshape(newShape ...int) *Tensor[B] {
	return New(t.backend.Reshape(t.raw, Shape(newShape)), t.backend)
}

// Transpose permutes the tensor's dimensions.
//
// If axes is empty, reverses all dimensions (for 2D, this is standard transpose).
//
// Example:
//
//	t := tensor.Zeros(Shape{1, 57, 80}, backend)
//	channelsFirst := t.Transpose(0, 2, 1) // Shape: [1, 80, 57]
func (t *Tensor[B]) Transpose(axes ...int) *Tensor[B] {
	return New(t.backend.Transpose(t.raw, axes...), t.backend)
}

// Narrow returns length elements along dim starting at start.
func (t *Tensor[B]) Narrow(dim, start, length int) *Tensor[B] {
	return New(t.backend.Narrow(t.raw, dim, start, length), t.backend)
}

// MeanDim computes the mean along dim.
func (t *Tensor[B]) MeanDim(dim int, keepDim bool) *Tensor[B] {
	return New(t.backend.MeanDim(t.raw, dim, keepDim), t.backend)
}

// StdDim computes the population standard deviation along dim.
func (t *Tensor[B]) StdDim(dim int, keepDim bool) *Tensor[B] {
	return New(t.backend.StdDim(t.raw, dim, keepDim), t.backend)
}

// ReLU applies max(0, x) element-wise.
func (t *Tensor[B]) ReLU() *Tensor[B] {
	return New(t.backend.ReLU(t.raw), t.backend)
}

// Conv1D convolves t ([N, C, T]) with kernel ([O, C, K]) and an optional bias ([O]).
func (t *Tensor[B]) Conv1D(kernel, bias *Tensor[B], stride int) *Tensor[B] {
	var biasRaw *RawTensor
	if bias != nil {
		biasRaw = bias.raw
	}
	return New(t.backend.Conv1D(t.raw, kernel.raw, biasRaw, stride), t.backend)
}

// Cat concatenates tensors along the specified dimension.
//
// All tensors must have the same shape except along the concatenation dimension.
// Zero-length tensors are allowed and contribute nothing.
//
// Example:
//
//	carry := tensor.Zeros(Shape{1, 80, 0}, backend)
//	chunk := tensor.Zeros(Shape{1, 80, 10}, backend)
//	x := tensor.Cat([]*Tensor[B]{carry, chunk}, 2) // Shape: [1, 80, 10]
func Cat[B Backend](tensors []*Tensor[B], dim int) *Tensor[B] {
	if len(tensors) == 0 {
		panic("cat: at least one tensor required")
	}

	raws := make([]*RawTensor, len(tensors))
	for i, t := range tensors {
		raws[i] = t.raw
	}
	backend := tensors[0].backend
	return New(backend.Cat(raws, dim), backend)
}
