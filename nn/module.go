// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package nn

import (
	"github.com/born-ml/streamnet/internal/nn"
	"github.com/born-ml/streamnet/tensor"
)

// Module is the base interface for all graph nodes.
//
// Forward consumes one chunk and returns the output the chunk makes
// available; Parameters returns learnable parameters in traversal order;
// Kind returns the node's variant tag.
type Module[B tensor.Backend] = nn.Module[B]

// Streamer is implemented by nodes that carry state across chunks.
type Streamer = nn.Streamer

// Container is implemented by nodes that own other nodes.
type Container[B tensor.Backend] = nn.Container[B]

// Child is a named child of a container.
type Child[B tensor.Backend] = nn.Child[B]

// Kind is a node variant tag.
type Kind = nn.Kind

// ParseKind maps a description tag to a Kind. Tags starting with
// "GroupNorm" name the GroupNorm variant.
func ParseKind(tag string) (Kind, bool) {
	return nn.ParseKind(tag)
}

// Start prepares m for a new stream, priming left padding.
func Start[B tensor.Backend](m Module[B]) { nn.Start(m) }

// Finish switches m to terminal mode: the next call flushes right padding.
func Finish[B tensor.Backend](m Module[B]) { nn.Finish(m) }

// Reset discards m's streaming state.
func Reset[B tensor.Backend](m Module[B]) { nn.Reset(m) }

// NumParameters returns the number of scalar parameters in m.
func NumParameters[B tensor.Backend](m Module[B]) int {
	return nn.NumParameters(m)
}
