package nn

import (
	"github.com/born-ml/streamnet/internal/tensor"
)

// Conv1dConfig holds the hyperparameters of a streaming convolution.
type Conv1dConfig struct {
	InChannels   int
	OutChannels  int
	KernelSize   int
	Stride       int
	LeftPadding  int
	RightPadding int
	Groups       int
}

// Validate checks that the configuration describes a buildable convolution.
func (c Conv1dConfig) Validate() error {
	switch {
	case c.Groups <= 0:
		return errorf(ErrInvalidConfig, "Conv1d: groups must be positive, got %d", c.Groups)
	case c.InChannels <= 0 || c.OutChannels <= 0:
		return errorf(ErrInvalidConfig, "Conv1d: channels must be positive, got in=%d out=%d", c.InChannels, c.OutChannels)
	case c.InChannels%c.Groups != 0 || c.OutChannels%c.Groups != 0:
		return errorf(ErrInvalidConfig, "Conv1d: channels in=%d out=%d not divisible by groups=%d",
			c.InChannels, c.OutChannels, c.Groups)
	case c.KernelSize <= 0 || c.Stride <= 0:
		return errorf(ErrInvalidConfig, "Conv1d: kernel size %d and stride %d must be positive", c.KernelSize, c.Stride)
	case c.LeftPadding < 0 || c.RightPadding < 0:
		return errorf(ErrInvalidConfig, "Conv1d: negative padding (%d, %d)", c.LeftPadding, c.RightPadding)
	}
	return nil
}

// Conv1d is a causal 1D convolution over a stream delivered in chunks.
//
// Input shape: [batch, in_channels, time]
// Output shape: [batch, out_channels, frames]
//
// Each call convolves leftCarry ++ chunk ++ rightCarry along time and keeps
// the samples that did not start a full window as the next leftCarry, so the
// concatenated outputs of any chunking equal one pass over the whole stream.
//
// Grouped convolutions split the channels into groups equal slices and apply
// the same weight and bias to every slice:
//
//	weight: [out_channels/groups, in_channels/groups, kernel_size]
//	bias:   [out_channels/groups]
type Conv1d[B tensor.Backend] struct {
	config  Conv1dConfig
	weight  *Parameter[B]
	bias    *Parameter[B]
	backend B

	leftCarry  *tensor.Tensor[B] // [batch, in_channels, pending]
	rightCarry *tensor.Tensor[B] // [batch, in_channels, right_padding] in terminal mode

	// primeLeft is materialized on the next Forward once the batch size is
	// known. terminal holds until Reset.
	primeLeft bool
	terminal  bool
}

// NewConv1d creates a streaming convolution with empty carries.
func NewConv1d[B tensor.Backend](config Conv1dConfig, backend B) (*Conv1d[B], error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	groupIn := config.InChannels / config.Groups
	groupOut := config.OutChannels / config.Groups

	return &Conv1d[B]{
		config:  config,
		weight:  NewParameter("weight", tensor.Zeros(tensor.Shape{groupOut, groupIn, config.KernelSize}, backend)),
		bias:    NewParameter("bias", tensor.Zeros(tensor.Shape{groupOut}, backend)),
		backend: backend,
	}, nil
}

// Forward convolves one chunk.
//
// The output has floor((L-k)/s)+1 frames, where L is the carried plus new
// length, or no frames when L < k. Nothing is dropped: a chunk too short for a
// window is carried whole.
func (c *Conv1d[B]) Forward(input *tensor.Tensor[B]) (*tensor.Tensor[B], error) {
	shape := input.Shape()
	if len(shape) != 3 {
		return nil, rankError("Conv1d", "expected 3D input [batch, channels, time], got %v", shape)
	}
	if shape[1] != c.config.InChannels {
		return nil, &ShapeError{Node: "Conv1d", Axis: 1, Want: c.config.InChannels, Got: shape[1]}
	}
	batch := shape[0]

	left, err := c.carry(c.leftCarry, batch, c.primeLeft, c.config.LeftPadding)
	if err != nil {
		return nil, err
	}
	right, err := c.carry(c.rightCarry, batch, c.terminal, c.config.RightPadding)
	if err != nil {
		return nil, err
	}
	c.primeLeft = false

	x := tensor.Cat([]*tensor.Tensor[B]{left, input, right}, 2)
	total := x.Dim(2)

	frames := 0
	if total >= c.config.KernelSize {
		frames = (total-c.config.KernelSize)/c.config.Stride + 1
	}
	consumed := frames * c.config.Stride

	c.leftCarry = x.Narrow(2, consumed, total-consumed)
	c.rightCarry = right

	if frames == 0 {
		return tensor.Zeros(tensor.Shape{batch, c.config.OutChannels, 0}, c.backend), nil
	}

	// Only the consumed span plus the last window's overhang is needed.
	x = x.Narrow(2, 0, consumed-c.config.Stride+c.config.KernelSize)
	return c.convolve(x), nil
}

// convolve applies the shared kernel to each channel group and joins the
// results along channels in group order.
func (c *Conv1d[B]) convolve(x *tensor.Tensor[B]) *tensor.Tensor[B] {
	weight := c.weight.Tensor()
	bias := c.bias.Tensor()
	if c.config.Groups == 1 {
		return x.Conv1D(weight, bias, c.config.Stride)
	}

	groupIn := c.config.InChannels / c.config.Groups
	outputs := make([]*tensor.Tensor[B], c.config.Groups)
	for g := range outputs {
		slice := x.Narrow(1, g*groupIn, groupIn)
		outputs[g] = slice.Conv1D(weight, bias, c.config.Stride)
	}
	return tensor.Cat(outputs, 1)
}

// carry returns the carry buffer to use for a call with the given batch size.
// A pending transition replaces it with padding zero frames.
func (c *Conv1d[B]) carry(buf *tensor.Tensor[B], batch int, pad bool, padding int) (*tensor.Tensor[B], error) {
	if pad {
		return tensor.Zeros(tensor.Shape{batch, c.config.InChannels, padding}, c.backend), nil
	}
	if buf == nil || buf.Dim(2) == 0 {
		return c.empty(batch), nil
	}
	if buf.Dim(0) != batch {
		return nil, &ShapeError{Node: "Conv1d", Axis: 0, Want: buf.Dim(0), Got: batch, Detail: "batch changed mid-stream"}
	}
	return buf, nil
}

func (c *Conv1d[B]) empty(batch int) *tensor.Tensor[B] {
	return tensor.Zeros(tensor.Shape{batch, c.config.InChannels, 0}, c.backend)
}

// Start primes the left context with LeftPadding zero frames.
func (c *Conv1d[B]) Start() {
	c.Reset()
	c.primeLeft = true
}

// Finish enters terminal mode: every following call appends RightPadding zero
// frames so the trailing windows of the stream are emitted. Terminal mode
// lasts until Reset or Start; feeding more chunks after the final one pads
// each of them again.
func (c *Conv1d[B]) Finish() {
	c.terminal = true
}

// Reset empties both carries and leaves terminal mode.
func (c *Conv1d[B]) Reset() {
	c.leftCarry = nil
	c.rightCarry = nil
	c.primeLeft = false
	c.terminal = false
}

// Pending returns the number of time steps carried into the next call.
func (c *Conv1d[B]) Pending() int {
	if c.leftCarry == nil {
		return 0
	}
	return c.leftCarry.Dim(2)
}

// Parameters returns [weight, bias].
func (c *Conv1d[B]) Parameters() []*Parameter[B] {
	return []*Parameter[B]{c.weight, c.bias}
}

// Kind returns KindConv1d.
func (c *Conv1d[B]) Kind() Kind {
	return KindConv1d
}

// Config returns the convolution's hyperparameters.
func (c *Conv1d[B]) Config() Conv1dConfig {
	return c.config
}

// Weight returns the shared kernel parameter.
func (c *Conv1d[B]) Weight() *Parameter[B] {
	return c.weight
}

// Bias returns the shared bias parameter.
func (c *Conv1d[B]) Bias() *Parameter[B] {
	return c.bias
}
