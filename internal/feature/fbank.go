package feature

import (
	"math"

	"github.com/pkg/errors"
	"k8s.io/klog/v2"

	"github.com/born-ml/streamnet/internal/parallel"
	"github.com/born-ml/streamnet/internal/tensor"
)

// ErrInvalidConfig is returned by Config.Validate.
var ErrInvalidConfig = errors.New("invalid feature config")

// Config controls log mel filterbank extraction.
type Config struct {
	SampleRate  int     `yaml:"sampleRate"`  // audio sample rate in Hz
	WindowSize  int     `yaml:"windowSize"`  // window length in samples
	HopSize     int     `yaml:"hopSize"`     // hop length in samples
	FFTSize     int     `yaml:"fftSize"`     // FFT size, a power of two
	NumMels     int     `yaml:"numMels"`     // number of mel bins
	LowFreq     float64 `yaml:"lowFreq"`     // lowest filter edge in Hz
	HighFreq    float64 `yaml:"highFreq"`    // highest filter edge in Hz
	PreEmphasis float64 `yaml:"preEmphasis"` // pre-emphasis coefficient
}

// DefaultConfig returns 80 mel bins over 25 ms windows with a 10 ms hop at 16 kHz.
func DefaultConfig() Config {
	return Config{
		SampleRate:  16000,
		WindowSize:  400,
		HopSize:     160,
		FFTSize:     512,
		NumMels:     80,
		LowFreq:     20,
		HighFreq:    7600,
		PreEmphasis: 0.97,
	}
}

// Validate checks that the config describes a computable filterbank.
func (c Config) Validate() error {
	switch {
	case c.SampleRate <= 0:
		return errors.Wrapf(ErrInvalidConfig, "sampleRate %d", c.SampleRate)
	case c.WindowSize <= 0 || c.HopSize <= 0:
		return errors.Wrapf(ErrInvalidConfig, "windowSize %d, hopSize %d", c.WindowSize, c.HopSize)
	case !isPowerOfTwo(c.FFTSize) || c.FFTSize < c.WindowSize:
		return errors.Wrapf(ErrInvalidConfig, "fftSize %d must be a power of two >= windowSize %d", c.FFTSize, c.WindowSize)
	case c.NumMels <= 0:
		return errors.Wrapf(ErrInvalidConfig, "numMels %d", c.NumMels)
	case c.LowFreq < 0 || c.HighFreq <= c.LowFreq || c.HighFreq > float64(c.SampleRate)/2:
		return errors.Wrapf(ErrInvalidConfig, "frequency range [%g, %g] at %d Hz", c.LowFreq, c.HighFreq, c.SampleRate)
	}
	return nil
}

// NumFrames returns the number of feature frames for n samples.
func (c Config) NumFrames(n int) int {
	if n < c.WindowSize {
		return 0
	}
	return (n-c.WindowSize)/c.HopSize + 1
}

// Extractor computes log mel filterbank features.
type Extractor struct {
	cfg     Config
	window  []float64
	melBank [][]float64
}

// New creates an Extractor.
func New(cfg Config) (*Extractor, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Extractor{
		cfg:     cfg,
		window:  hammingWindow(cfg.WindowSize),
		melBank: melFilterBank(cfg.NumMels, cfg.FFTSize, cfg.SampleRate, cfg.LowFreq, cfg.HighFreq),
	}, nil
}

// Config returns the extractor's configuration.
func (e *Extractor) Config() Config { return e.cfg }

// Extract computes features of samples taken at the configured rate.
// The result has shape [T, NumMels]; T is zero when there are fewer samples
// than one window. Frames are computed in parallel.
func (e *Extractor) Extract(samples []float32) *tensor.RawTensor {
	cfg := e.cfg
	numFrames := cfg.NumFrames(len(samples))
	out, err := tensor.NewRaw(tensor.Shape{numFrames, cfg.NumMels}, tensor.CPU)
	if err != nil {
		panic(err) // dimensions are validated by New
	}
	features := out.AsFloat32()

	parallel.For(numFrames, func(t int) {
		re := make([]float64, cfg.FFTSize)
		im := make([]float64, cfg.FFTSize)
		start := t * cfg.HopSize
		for i := 0; i < cfg.WindowSize; i++ {
			s := float64(samples[start+i])
			if i > 0 {
				s -= cfg.PreEmphasis * float64(samples[start+i-1])
			}
			re[i] = s * e.window[i]
		}
		fft(re, im)

		power := re[:cfg.FFTSize/2+1]
		for k := range power {
			power[k] = re[k]*re[k] + im[k]*im[k]
		}

		row := features[t*cfg.NumMels : (t+1)*cfg.NumMels]
		for m, filter := range e.melBank {
			sum := 0.0
			for k, w := range filter {
				sum += w * power[k]
			}
			row[m] = float32(math.Log(max(sum, 1e-10)))
		}
	}, parallel.DefaultConfig())
	return out
}

// Compute resamples a to the configured rate and extracts features.
func (e *Extractor) Compute(a *Audio) (*tensor.RawTensor, error) {
	resampled, err := Resample(a, e.cfg.SampleRate)
	if err != nil {
		return nil, err
	}
	features := e.Extract(resampled.Samples)
	klog.V(1).Infof("Extracted %v features from %.2fs of audio at %d Hz",
		features.Shape(), a.Duration(), a.SampleRate)
	return features, nil
}
