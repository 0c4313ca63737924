// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package tensor provides the tensors streamed through streamnet graphs.
//
// # Overview
//
// Tensors hold row-major float32 data on a compute backend:
//   - Tensor[B]: typed tensor with method chaining
//   - RawTensor: storage plus shape, used by backends and loaders
//   - Backend: the operations streaming graphs need (broadcasting arithmetic,
//     MatMul, Conv1D, reshaping, concatenation and reductions)
//
// Shapes may contain zero-length dimensions, so an empty time axis is a
// valid tensor. Streaming nodes rely on this for their carry buffers.
//
// # Basic Usage
//
//	import (
//	    "github.com/born-ml/streamnet/backend/cpu"
//	    "github.com/born-ml/streamnet/tensor"
//	)
//
//	func main() {
//	    backend := cpu.New()
//	    x := tensor.Arange(0, 6, backend).Reshape(2, 3)
//	    y := tensor.Full(tensor.Shape{3}, 0.5, backend)
//	    z := x.Mul(y) // broadcast along rows
//	    fmt.Println(z.Shape()) // [2 3]
//	}
//
// # Errors
//
// Backend operations panic on invariant violations such as incompatible
// shapes. Graph nodes validate their inputs and return errors instead.
package tensor
