package main

import (
	"flag"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"k8s.io/klog/v2"

	"github.com/born-ml/streamnet/internal/config"
)

// flags holds the command line overrides of the run configuration.
type flags struct {
	config       string
	graph        string
	weights      string
	input        string
	output       string
	export       string
	dtype        string
	chunkFrames  int
	frameSize    int
	rampFrames   int
	startPadding bool
	noProgress   bool
}

func newRootCmd() *cobra.Command {
	f := &flags{}
	root := &cobra.Command{
		Use:   "streamnet",
		Short: "Streaming acoustic-model graphs",
		Long: `streamnet - build and run streaming acoustic-model graphs.

A graph description (JSON or YAML) names the nodes; weights come from a
safetensors file or an exported .born artifact. Input is a WAV file or the
synthetic normalized ramp.

Examples:
  # Show the graph and its parameters
  streamnet describe --graph acoustic.json

  # Stream a recording in 8-frame chunks with start padding
  streamnet run --graph acoustic.json --weights acoustic.safetensors \
      --input speech.wav --chunk-frames 8 --start

  # Write a half-precision artifact
  streamnet export --graph acoustic.json --weights acoustic.safetensors \
      --export acoustic.born`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := root.PersistentFlags()
	pf.StringVarP(&f.config, "config", "c", "", "run configuration file (YAML)")
	pf.StringVarP(&f.graph, "graph", "g", "", "graph description file (.json, .yaml)")
	pf.StringVarP(&f.weights, "weights", "w", "", "weights file (.safetensors or .born)")

	klogFlags := flag.NewFlagSet("klog", flag.ExitOnError)
	klog.InitFlags(klogFlags)
	pf.AddGoFlagSet(klogFlags)

	root.AddCommand(
		newDescribeCmd(f),
		newRunCmd(f),
		newExportCmd(f),
		newVersionCmd(),
	)
	return root
}

// load returns the run configuration: the config file (or defaults) with
// every explicitly set flag applied on top.
func (f *flags) load(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.Default()
	if f.config != "" {
		var err error
		if cfg, err = config.Load(f.config); err != nil {
			return nil, err
		}
	}

	changed := cmd.Flags().Changed
	overrides := []struct {
		name  string
		apply func()
	}{
		{"graph", func() { cfg.Description = f.graph }},
		{"weights", func() { cfg.Weights = f.weights }},
		{"input", func() { cfg.Input = f.input }},
		{"output", func() { cfg.Output = f.output }},
		{"export", func() { cfg.Export = f.export }},
		{"dtype", func() { cfg.ExportDType = f.dtype }},
		{"chunk-frames", func() { cfg.ChunkFrames = f.chunkFrames }},
		{"frame-size", func() { cfg.FrameSize = f.frameSize }},
		{"ramp-frames", func() { cfg.RampFrames = f.rampFrames }},
		{"start", func() { cfg.StartPadding = f.startPadding }},
	}
	for _, o := range overrides {
		if cmd.Flags().Lookup(o.name) != nil && changed(o.name) {
			o.apply()
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, errors.WithMessage(err, "configuration")
	}
	return cfg, nil
}
