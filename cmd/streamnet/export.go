package main

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"k8s.io/klog/v2"

	"github.com/born-ml/streamnet/internal/config"
	"github.com/born-ml/streamnet/internal/loader"
	"github.com/born-ml/streamnet/internal/serialization"
)

func newExportCmd(f *flags) *cobra.Command {
	var metadata map[string]string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the weighted graph as a reduced-precision artifact",
		Long: `Write the weighted graph to --export. A .safetensors path writes only the
parameter stream; any other path writes a .born artifact holding the graph
description and the parameters.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := f.load(cmd)
			if err != nil {
				return err
			}
			return export(cfg, metadata)
		},
	}

	fl := cmd.Flags()
	fl.StringVarP(&f.export, "export", "e", "", "artifact path (.born or .safetensors)")
	fl.StringVar(&f.dtype, "dtype", "", "storage type: float16, bfloat16 or float32")
	fl.StringToStringVar(&metadata, "metadata", nil, "key=value pairs stored in the artifact header")
	return cmd
}

func export(cfg *config.Config, metadata map[string]string) error {
	if cfg.Export == "" {
		return errors.Wrap(config.ErrInvalidConfig, "export path is required")
	}
	dt, err := cfg.ExportType()
	if err != nil {
		return err
	}
	m, err := loadModel(cfg)
	if err != nil {
		return err
	}

	if strings.EqualFold(filepath.Ext(cfg.Export), ".safetensors") {
		err = loader.SaveFrom(cfg.Export, m, dt)
	} else {
		err = serialization.Export(cfg.Export, m, serialization.ExportOptions{
			DType:    dt,
			Metadata: metadata,
		})
	}
	if err != nil {
		return err
	}

	info, err := os.Stat(cfg.Export)
	if err != nil {
		return errors.Wrap(err, "stat export")
	}
	klog.Infof("Wrote %s (%s, %s)", cfg.Export, dt, humanize.Bytes(uint64(info.Size()))) //nolint:gosec // file sizes are non-negative.
	return nil
}
