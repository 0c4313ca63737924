package stream

import (
	"bufio"
	"fmt"
	"io"

	"github.com/pkg/errors"

	"github.com/born-ml/streamnet/internal/tensor"
)

// Sink receives chunk outputs in order.
type Sink[B tensor.Backend] interface {
	Write(c Chunk[B]) error
}

// SinkFunc adapts a function to a Sink.
type SinkFunc[B tensor.Backend] func(c Chunk[B]) error

// Write calls f(c).
func (f SinkFunc[B]) Write(c Chunk[B]) error { return f(c) }

// Collector concatenates chunk outputs along an axis.
type Collector[B tensor.Backend] struct {
	axis  int
	parts []*tensor.Tensor[B]
}

// Collect returns a Collector joining outputs along axis.
func Collect[B tensor.Backend](axis int) *Collector[B] {
	return &Collector[B]{axis: axis}
}

// Write stores the chunk output.
func (c *Collector[B]) Write(chunk Chunk[B]) error {
	c.parts = append(c.parts, chunk.Output)
	return nil
}

// Len returns the number of collected chunks.
func (c *Collector[B]) Len() int { return len(c.parts) }

// Result returns the concatenated output, or nil before any chunk arrived.
func (c *Collector[B]) Result() *tensor.Tensor[B] {
	if len(c.parts) == 0 {
		return nil
	}
	if len(c.parts) == 1 {
		return c.parts[0]
	}
	return tensor.Cat(c.parts, c.axis)
}

// ValueFormat is the per-line format of TextWriter: signed scientific notation
// with four decimals.
const ValueFormat = "% 2.4e\n"

// TextWriter writes every output value on its own line in row-major order.
type TextWriter[B tensor.Backend] struct {
	w      *bufio.Writer
	values int
}

// NewTextWriter returns a TextWriter on w. Call Flush when the stream ends.
func NewTextWriter[B tensor.Backend](w io.Writer) *TextWriter[B] {
	return &TextWriter[B]{w: bufio.NewWriter(w)}
}

// Write formats the chunk output.
func (t *TextWriter[B]) Write(c Chunk[B]) error {
	for _, v := range c.Output.Data() {
		if _, err := fmt.Fprintf(t.w, ValueFormat, v); err != nil {
			return errors.Wrap(err, "write values")
		}
	}
	t.values += c.Output.NumElements()
	return nil
}

// Values returns the number of values written.
func (t *TextWriter[B]) Values() int { return t.values }

// Flush writes buffered output.
func (t *TextWriter[B]) Flush() error {
	return errors.Wrap(t.w.Flush(), "flush values")
}

// Tee delivers each chunk to every sink in order and stops at the first error.
func Tee[B tensor.Backend](sinks ...Sink[B]) Sink[B] {
	return SinkFunc[B](func(c Chunk[B]) error {
		for _, s := range sinks {
			if err := s.Write(c); err != nil {
				return err
			}
		}
		return nil
	})
}
