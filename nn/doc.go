// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package nn provides the nodes of streaming acoustic-model graphs.
//
// # Overview
//
// This package contains:
//   - Learnable nodes: Linear, Conv1d, GroupNorm
//   - Stateless nodes: ReLU, Identity, Reshape, Permute
//   - Containers: Sequential, Residual
//   - Lifecycle: Start, Finish, Reset for streaming state
//   - Weights: NamedParameters, Bind
//
// # Streaming
//
// Every node consumes one chunk per Forward call. Conv1d keeps the input
// frames its next window needs, and Residual keeps skip-path frames its inner
// module has not produced yet, so feeding a signal in any chunking yields
// the same concatenated output.
//
//	backend := cpu.New()
//	conv, _ := nn.NewConv1d(nn.Conv1dConfig{
//	    InChannels: 80, OutChannels: 32, KernelSize: 5, Stride: 2,
//	    LeftPadding: 4, RightPadding: 1, Groups: 1,
//	}, backend)
//	model := nn.NewSequential[*cpu.Backend](conv, nn.NewReLU[*cpu.Backend]())
//
//	nn.Start(model)          // optional: prime left padding
//	y1, _ := model.Forward(chunk1)
//	nn.Finish(model)         // the next call flushes right padding
//	y2, _ := model.Forward(chunk2)
//
// Graphs are usually built from descriptions with the graph package.
//
// # Thread Safety
//
// A graph serves one stream at a time and is not safe for concurrent use.
package nn
