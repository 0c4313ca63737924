// Package config loads run configurations for the streamnet CLI.
//
// A run configuration names the graph description, its weights, the input
// and the streaming parameters. Files are YAML; fields left out keep their
// defaults, and relative paths are resolved against the file's directory.
package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/born-ml/streamnet/internal/feature"
	"github.com/born-ml/streamnet/internal/stream"
	"github.com/born-ml/streamnet/internal/tensor"
)

// ErrInvalidConfig is returned by Validate.
var ErrInvalidConfig = errors.New("invalid run config")

// Config is a run configuration.
type Config struct {
	// Description is the graph description file (.json, .yaml).
	Description string `yaml:"description"`

	// Weights is a safetensors file or an exported artifact. Empty runs with
	// zero-initialized parameters. Description is optional for artifacts.
	Weights string `yaml:"weights,omitempty"`

	// Input is a WAV file. Empty streams the synthetic ramp.
	Input string `yaml:"input,omitempty"`

	// ChunkFrames is the number of feature frames per Forward call.
	ChunkFrames int `yaml:"chunkFrames"`

	// FrameSize is the number of features per frame.
	FrameSize int `yaml:"frameSize"`

	// RampFrames is the length of the synthetic ramp input.
	RampFrames int `yaml:"rampFrames"`

	// StartPadding primes left padding before the first chunk.
	StartPadding bool `yaml:"startPadding"`

	// Output receives one output value per line. Empty or "-" is stdout.
	Output string `yaml:"output,omitempty"`

	// Export is the artifact written by the export command.
	Export string `yaml:"export,omitempty"`

	// ExportDType is the artifact storage type: float16, bfloat16 or float32.
	ExportDType string `yaml:"exportDType"`

	// Feature configures the audio front-end for WAV input.
	Feature feature.Config `yaml:"feature"`
}

// Default returns the default configuration. Description must still be set.
func Default() *Config {
	fc := feature.DefaultConfig()
	return &Config{
		ChunkFrames: 16,
		FrameSize:   fc.NumMels,
		RampFrames:  57,
		ExportDType: tensor.Float16.String(),
		Feature:     fc,
	}
}

// Load reads a configuration file over the defaults.
func Load(path string) (*Config, error) {
	//nolint:gosec // G304: config path is user input.
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read config")
	}

	cfg := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, errors.Wrapf(ErrInvalidConfig, "parse %s: %v", path, err)
	}

	cfg.resolve(filepath.Dir(path))
	return cfg, nil
}

func (c *Config) resolve(dir string) {
	for _, p := range []*string{&c.Description, &c.Weights, &c.Input, &c.Output, &c.Export} {
		if *p != "" && *p != "-" && !filepath.IsAbs(*p) {
			*p = filepath.Join(dir, *p)
		}
	}
}

// Save writes the configuration as YAML.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return errors.Wrap(err, "marshal config")
	}
	return errors.Wrap(os.WriteFile(path, data, 0o600), "write config")
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	switch {
	case c.Description == "" && !c.IsArtifact():
		return errors.Wrap(ErrInvalidConfig, "description is required")
	case c.FrameSize <= 0:
		return errors.Wrapf(ErrInvalidConfig, "frameSize %d", c.FrameSize)
	case c.RampFrames < 0:
		return errors.Wrapf(ErrInvalidConfig, "rampFrames %d", c.RampFrames)
	case c.Input != "" && c.FrameSize != c.Feature.NumMels:
		return errors.Wrapf(ErrInvalidConfig, "frameSize %d does not match feature.numMels %d",
			c.FrameSize, c.Feature.NumMels)
	}
	if _, err := c.ExportType(); err != nil {
		return err
	}
	if err := c.Stream().Validate(); err != nil {
		return errors.WithMessage(ErrInvalidConfig, err.Error())
	}
	if c.Input != "" {
		if err := c.Feature.Validate(); err != nil {
			return errors.WithMessage(ErrInvalidConfig, err.Error())
		}
	}
	return nil
}

// ArtifactExt is the file extension of exported artifacts.
const ArtifactExt = ".born"

// IsArtifact reports whether Weights names an exported artifact, which
// carries its own graph description.
func (c *Config) IsArtifact() bool {
	return strings.EqualFold(filepath.Ext(c.Weights), ArtifactExt)
}

// ExportType returns the parsed artifact storage type.
func (c *Config) ExportType() (tensor.DataType, error) {
	dt, ok := tensor.ParseDataType(c.ExportDType)
	if !ok || dt == tensor.Float64 {
		return 0, errors.Wrapf(ErrInvalidConfig, "exportDType %q", c.ExportDType)
	}
	return dt, nil
}

// Stream returns the runner configuration. Input is always [T, F].
func (c *Config) Stream() stream.Config {
	return stream.Config{
		ChunkFrames: c.ChunkFrames,
		Start:       c.StartPadding,
		TimeAxis:    0,
	}
}
