// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package cpu provides a pure Go CPU backend for tensor operations.
//
// # Overview
//
// This package implements the tensor backend with:
//   - Pure Go implementation (no CGO)
//   - Direct 1D convolution over [N, C, T] inputs
//   - NumPy-compatible broadcasting
//   - Zero-length dimensions throughout
//
// # Basic Usage
//
//	import (
//	    "github.com/born-ml/streamnet/backend/cpu"
//	    "github.com/born-ml/streamnet/graph"
//	)
//
//	func main() {
//	    backend := cpu.New()
//	    desc, _ := graph.LoadDescription("acoustic.json")
//	    model, _ := graph.Build(desc, backend)
//	}
//
// # Thread Safety
//
// The CPU backend is safe for concurrent use. Each tensor operation
// is isolated and does not share mutable state. Graphs built on it are not:
// they carry per-stream state.
package cpu
