package tensor

// Backend defines the interface that all compute backends must implement.
// Backends handle the actual computation for tensor operations.
//
// Operations panic on invariant violations (incompatible shapes, axes out of
// range); callers that accept untrusted input validate shapes first.
type Backend interface {
	// Element-wise binary operations with NumPy-style broadcasting.
	Add(a, b *RawTensor) *RawTensor
	Sub(a, b *RawTensor) *RawTensor
	Mul(a, b *RawTensor) *RawTensor
	Div(a, b *RawTensor) *RawTensor

	// MatMul multiplies 2D matrices: [M, K] @ [K, N] -> [M, N].
	MatMul(a, b *RawTensor) *RawTensor

	// Conv1D applies a single-group, unpadded 1D convolution.
	// input [N, C, T], kernel [O, C, K], bias [O] or nil -> [N, O, (T-K)/stride+1].
	// Inputs shorter than the kernel produce a zero-length output.
	Conv1D(input, kernel, bias *RawTensor, stride int) *RawTensor

	// ReLU computes max(0, x) element-wise.
	ReLU(x *RawTensor) *RawTensor

	// Reshape infers at most one -1 dimension.
	Reshape(t *RawTensor, newShape Shape) *RawTensor
	// Transpose permutes dimensions; empty axes reverses them.
	Transpose(t *RawTensor, axes ...int) *RawTensor

	// Cat concatenates along dim; Narrow takes a contiguous slice along dim.
	Cat(tensors []*RawTensor, dim int) *RawTensor
	Narrow(x *RawTensor, dim, start, length int) *RawTensor

	// MeanDim and StdDim reduce along dim. StdDim is the population
	// (biased) standard deviation.
	MeanDim(x *RawTensor, dim int, keepDim bool) *RawTensor
	StdDim(x *RawTensor, dim int, keepDim bool) *RawTensor

	// Metadata
	Name() string
	Device() Device
}
