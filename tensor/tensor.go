// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package tensor

import (
	"github.com/born-ml/streamnet/internal/tensor"
)

// Backend defines the operations a compute backend implements.
//
// Implementations:
//   - backend/cpu: pure Go
type Backend = tensor.Backend

// Tensor is a float32 tensor bound to backend B.
//
// Example:
//
//	backend := cpu.New()
//	x := tensor.Zeros(tensor.Shape{1, 80, 16}, backend)
//	fmt.Println(x.Dim(2)) // 16
type Tensor[B Backend] = tensor.Tensor[B]

// RawTensor is the low-level tensor representation.
//
// Most users should use Tensor[B]. RawTensors appear in parameter streams
// and in Bind.
type RawTensor = tensor.RawTensor

// Shape represents the dimensions of a tensor.
// Example: Shape{1, 80, 57} is a batch of one 80-channel, 57-step signal.
type Shape = tensor.Shape

// DataType is a storage type of serialized tensors. In memory, tensors are
// always float32.
type DataType = tensor.DataType

// Storage types.
const (
	Float32  DataType = tensor.Float32
	Float16  DataType = tensor.Float16
	BFloat16 DataType = tensor.BFloat16
	Float64  DataType = tensor.Float64
)

// Device represents the device where tensor data resides.
type Device = tensor.Device

// CPU is the host device.
const CPU Device = tensor.CPU

// Zeros creates a tensor filled with zeros.
func Zeros[B Backend](shape Shape, b B) *Tensor[B] {
	return tensor.Zeros(shape, b)
}

// Full creates a tensor filled with value.
func Full[B Backend](shape Shape, value float32, b B) *Tensor[B] {
	return tensor.Full(shape, value, b)
}

// Arange creates a 1D tensor with values from start to end (exclusive).
//
// Example:
//
//	x := tensor.Arange(0, 57*80, backend) // [0, 1, ..., 4559]
func Arange[B Backend](start, end int, b B) *Tensor[B] {
	return tensor.Arange(start, end, b)
}

// FromSlice creates a tensor from a Go slice.
//
// Example:
//
//	x, err := tensor.FromSlice([]float32{1, 2, 3, 4, 5, 6}, tensor.Shape{2, 3}, backend)
func FromSlice[B Backend](data []float32, shape Shape, b B) (*Tensor[B], error) {
	return tensor.FromSlice(data, shape, b)
}

// New wraps a raw tensor.
func New[B Backend](raw *RawTensor, b B) *Tensor[B] {
	return tensor.New(raw, b)
}

// NewRaw creates a zero-filled raw tensor.
func NewRaw(shape Shape, device Device) (*RawTensor, error) {
	return tensor.NewRaw(shape, device)
}

// RawFromFloat32 creates a raw tensor over data without copying.
func RawFromFloat32(data []float32, shape Shape, device Device) (*RawTensor, error) {
	return tensor.RawFromFloat32(data, shape, device)
}

// Cat concatenates tensors along a dimension.
//
// Example:
//
//	c := tensor.Cat([]*tensor.Tensor[B]{a, b}, 2) // join along time
func Cat[B Backend](tensors []*Tensor[B], dim int) *Tensor[B] {
	return tensor.Cat(tensors, dim)
}

// BroadcastShapes computes the broadcast shape of two shapes following NumPy
// rules. The flag reports whether either operand needs broadcasting.
func BroadcastShapes(a, b Shape) (Shape, bool, error) {
	return tensor.BroadcastShapes(a, b)
}
