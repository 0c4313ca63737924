// Package nn implements the streaming module graph.
//
// This package provides the node types a graph description can name:
//   - Module interface: Forward over one chunk, plus the parameter stream
//   - Streamer: Start/Finish/Reset lifecycle for stateful nodes
//   - Linear, Conv1d, GroupNorm: learnable nodes
//   - ReLU, Identity, Reshape, Permute: stateless shape and activation nodes
//   - Sequential, Residual: containers
//   - Bind: copies an external parameter stream into a graph
//
// Stateful nodes own their carry buffers. A graph serves one stream at a time
// and must not be called concurrently; independent streams use independent
// graphs.
package nn

import (
	"github.com/born-ml/streamnet/internal/tensor"
)

// Module is the base interface for all graph nodes.
//
// Forward consumes one chunk and returns the output that the chunk makes
// available. Stateful nodes may return fewer time steps than they receive and
// emit the remainder on later calls.
type Module[B tensor.Backend] interface {
	// Forward applies the node to one chunk.
	//
	// Returns a *ShapeError (matching ErrShape) when the chunk does not fit
	// the node's configuration.
	Forward(input *tensor.Tensor[B]) (*tensor.Tensor[B], error)

	// Parameters returns the learnable parameters in traversal order.
	// Containers return the concatenation of their children's parameters.
	Parameters() []*Parameter[B]

	// Kind returns the node's variant tag.
	Kind() Kind
}

// Streamer is implemented by nodes that carry state across chunks.
type Streamer interface {
	// Start prepares the node for a new stream. Convolutions prime their left
	// context with zero padding.
	Start()

	// Finish switches to terminal mode: calls from then on flush trailing
	// windows using right padding, until Reset.
	Finish()

	// Reset discards all carried state and leaves terminal mode.
	Reset()
}

// Child is a named child of a container node.
type Child[B tensor.Backend] struct {
	Name   string
	Module Module[B]
}

// Container is implemented by nodes that own other nodes.
type Container[B tensor.Backend] interface {
	Children() []Child[B]
}

// Start calls Start on m if it carries streaming state.
func Start[B tensor.Backend](m Module[B]) {
	if s, ok := m.(Streamer); ok {
		s.Start()
	}
}

// Finish calls Finish on m if it carries streaming state.
func Finish[B tensor.Backend](m Module[B]) {
	if s, ok := m.(Streamer); ok {
		s.Finish()
	}
}

// Reset calls Reset on m if it carries streaming state.
func Reset[B tensor.Backend](m Module[B]) {
	if s, ok := m.(Streamer); ok {
		s.Reset()
	}
}

// NumParameters returns the total number of scalar parameters in m.
func NumParameters[B tensor.Backend](m Module[B]) int {
	n := 0
	for _, p := range m.Parameters() {
		n += p.Tensor().NumElements()
	}
	return n
}
