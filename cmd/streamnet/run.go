package main

import (
	"context"
	"io"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"k8s.io/klog/v2"

	"github.com/born-ml/streamnet/internal/backend/cpu"
	"github.com/born-ml/streamnet/internal/config"
	"github.com/born-ml/streamnet/internal/feature"
	"github.com/born-ml/streamnet/internal/stream"
	"github.com/born-ml/streamnet/internal/tensor"
)

func newRunCmd(f *flags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Stream an input through the weighted graph",
		Long: `Stream a WAV recording (--input) or the synthetic normalized ramp through
the graph chunk by chunk and write every output value on its own line.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := f.load(cmd)
			if err != nil {
				return err
			}
			return runStream(cmd.Context(), cfg, cmd.OutOrStdout(), !f.noProgress)
		},
	}

	fl := cmd.Flags()
	fl.StringVarP(&f.input, "input", "i", "", "WAV input; the normalized ramp is used when empty")
	fl.StringVarP(&f.output, "output", "o", "", `output file, one value per line ("-" or empty for stdout)`)
	fl.IntVar(&f.chunkFrames, "chunk-frames", 0, "feature frames per chunk")
	fl.IntVar(&f.frameSize, "frame-size", 0, "features per frame")
	fl.IntVar(&f.rampFrames, "ramp-frames", 0, "frames of the synthetic ramp input")
	fl.BoolVar(&f.startPadding, "start", false, "prime left padding before the first chunk")
	fl.BoolVar(&f.noProgress, "no-progress", false, "disable the progress bar")
	return cmd
}

// readInput returns the [T, F] feature matrix of the configured input.
func readInput(cfg *config.Config) (*tensor.RawTensor, error) {
	if cfg.Input == "" {
		klog.V(1).Infof("Using the normalized ramp input [%d, %d]", cfg.RampFrames, cfg.FrameSize)
		return feature.Ramp(cfg.RampFrames, cfg.FrameSize), nil
	}

	audio, err := feature.LoadWAV(cfg.Input)
	if err != nil {
		return nil, err
	}
	extractor, err := feature.New(cfg.Feature)
	if err != nil {
		return nil, err
	}
	features, err := extractor.Compute(audio)
	if err != nil {
		return nil, errors.WithMessagef(err, "features of %s", cfg.Input)
	}
	feature.Normalize(features)
	return features, nil
}

func runStream(ctx context.Context, cfg *config.Config, stdout io.Writer, showProgress bool) error {
	m, err := loadModel(cfg)
	if err != nil {
		return err
	}
	features, err := readInput(cfg)
	if err != nil {
		return err
	}
	x := tensor.New(features, cpu.New())

	var opts []stream.RunnerOption
	if showProgress {
		bar := progressbar.NewOptions(x.Dim(0),
			progressbar.OptionSetDescription("streaming"),
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionSetItsString("frames"),
			progressbar.OptionShowIts(),
			progressbar.OptionShowCount(),
			progressbar.OptionSetTheme(progressbar.ThemeASCII),
			progressbar.OptionClearOnFinish(),
		)
		defer func() { _ = bar.Finish() }()
		opts = append(opts, stream.WithProgress(func(done, _ int) { _ = bar.Set(done) }))
	}
	runner, err := stream.NewRunner(m, cfg.Stream(), opts...)
	if err != nil {
		return err
	}

	out := stdout
	if cfg.Output != "" && cfg.Output != "-" {
		file, err := os.Create(cfg.Output)
		if err != nil {
			return errors.Wrap(err, "create output")
		}
		defer func() { _ = file.Close() }()
		out = file
	}
	writer := stream.NewTextWriter[backend](out)

	stats, err := runner.Run(ctx, x, writer)
	if err != nil {
		return err
	}
	if err := writer.Flush(); err != nil {
		return err
	}
	klog.Infof("Streamed %s frames in %d chunks in %s: %s output values",
		humanize.Comma(int64(stats.InputFrames)), stats.Chunks, stats.Elapsed,
		humanize.Comma(int64(writer.Values())))
	return nil
}
