// Package stream feeds feature matrices through streaming graphs chunk by
// chunk and delivers the outputs to sinks.
package stream

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"k8s.io/klog/v2"

	"github.com/born-ml/streamnet/internal/nn"
	"github.com/born-ml/streamnet/internal/tensor"
)

// ErrInvalidConfig is returned for a Config that cannot drive a stream.
var ErrInvalidConfig = errors.New("invalid stream config")

// Config configures a Runner.
type Config struct {
	// ChunkFrames is the number of input time steps per chunk.
	ChunkFrames int

	// Start primes the graph's left padding before the first chunk.
	Start bool

	// TimeAxis is the input's time axis. Inputs are usually [T, F].
	TimeAxis int
}

// DefaultConfig returns 16-frame chunks over [T, F] input without start padding.
func DefaultConfig() Config {
	return Config{
		ChunkFrames: 16,
		Start:       false,
		TimeAxis:    0,
	}
}

// Validate checks the config.
func (c Config) Validate() error {
	if c.ChunkFrames <= 0 {
		return errors.Wrapf(ErrInvalidConfig, "chunk frames %d", c.ChunkFrames)
	}
	if c.TimeAxis < 0 {
		return errors.Wrapf(ErrInvalidConfig, "time axis %d", c.TimeAxis)
	}
	return nil
}

// Chunk is the output of one Forward call.
type Chunk[B tensor.Backend] struct {
	Index  int               // Chunk number, from 0
	Frames int               // Input time steps consumed by this call
	Last   bool              // Whether the graph was finished before this call
	Output *tensor.Tensor[B] // Graph output; may have zero time steps
}

// Stats summarizes a completed stream.
type Stats struct {
	Chunks      int
	InputFrames int
	Elapsed     time.Duration
}

// Runner drives one graph over whole inputs. A Runner is not safe for
// concurrent use because its graph carries per-stream state.
type Runner[B tensor.Backend] struct {
	module   nn.Module[B]
	cfg      Config
	progress func(done, total int)
}

// RunnerOption configures a Runner.
type RunnerOption func(*runnerOptions)

type runnerOptions struct {
	progress func(done, total int)
}

// WithProgress reports the number of input frames consumed after each chunk.
func WithProgress(fn func(done, total int)) RunnerOption {
	return func(o *runnerOptions) {
		o.progress = fn
	}
}

// NewRunner creates a Runner for m.
func NewRunner[B tensor.Backend](m nn.Module[B], cfg Config, opts ...RunnerOption) (*Runner[B], error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	options := &runnerOptions{}
	for _, opt := range opts {
		opt(options)
	}
	return &Runner[B]{module: m, cfg: cfg, progress: options.progress}, nil
}

// Config returns the runner's configuration.
func (r *Runner[B]) Config() Config { return r.cfg }

// Run streams x through the graph.
//
// The graph is reset, optionally started, fed ChunkFrames steps at a time,
// and finished before the final chunk, so every output frame of the whole
// input is delivered exactly once. Cancellation is checked between chunks;
// a canceled stream leaves the graph mid-stream until the next Run.
func (r *Runner[B]) Run(ctx context.Context, x *tensor.Tensor[B], sink Sink[B]) (Stats, error) {
	begin := time.Now()
	if r.cfg.TimeAxis >= x.Rank() {
		return Stats{}, errors.Wrapf(ErrInvalidConfig, "time axis %d of rank-%d input", r.cfg.TimeAxis, x.Rank())
	}
	total := x.Dim(r.cfg.TimeAxis)
	numChunks := max((total+r.cfg.ChunkFrames-1)/r.cfg.ChunkFrames, 1)

	nn.Reset(r.module)
	if r.cfg.Start {
		nn.Start(r.module)
	}

	stats := Stats{}
	for i := 0; i < numChunks; i++ {
		if err := ctx.Err(); err != nil {
			return stats, errors.Wrapf(err, "stream canceled after %d of %d chunks", i, numChunks)
		}

		start := i * r.cfg.ChunkFrames
		frames := min(r.cfg.ChunkFrames, total-start)
		chunk := x.Narrow(r.cfg.TimeAxis, start, frames)
		last := i == numChunks-1
		if last {
			nn.Finish(r.module)
		}

		out, err := r.module.Forward(chunk)
		if err != nil {
			return stats, errors.WithMessagef(err, "chunk %d", i)
		}
		klog.V(2).Infof("Chunk %d: %d frames in, output %v", i, frames, out.Shape())

		if err := sink.Write(Chunk[B]{Index: i, Frames: frames, Last: last, Output: out}); err != nil {
			return stats, errors.WithMessagef(err, "sink chunk %d", i)
		}
		stats.Chunks++
		stats.InputFrames += frames
		if r.progress != nil {
			r.progress(stats.InputFrames, total)
		}
	}

	stats.Elapsed = time.Since(begin)
	klog.V(1).Infof("Streamed %d frames in %d chunks (%s)", stats.InputFrames, stats.Chunks, stats.Elapsed)
	return stats, nil
}

// Result is a single result from RunStream.
type Result[B tensor.Backend] struct {
	Chunk Chunk[B]
	Err   error // Set on the final result when the stream failed
}

// RunStream runs the stream in a goroutine and returns a channel of chunks.
// The channel is closed when the stream ends. Callers must drain the channel
// or cancel ctx.
func (r *Runner[B]) RunStream(ctx context.Context, x *tensor.Tensor[B]) <-chan Result[B] {
	ch := make(chan Result[B], 1)

	go func() {
		defer close(ch)

		send := SinkFunc[B](func(c Chunk[B]) error {
			select {
			case ch <- Result[B]{Chunk: c}:
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		})
		if _, err := r.Run(ctx, x, send); err != nil {
			select {
			case ch <- Result[B]{Err: err}:
			case <-ctx.Done():
			}
		}
	}()

	return ch
}
