package main

import (
	"github.com/pkg/errors"
	"k8s.io/klog/v2"

	"github.com/born-ml/streamnet/internal/backend/cpu"
	"github.com/born-ml/streamnet/internal/config"
	"github.com/born-ml/streamnet/internal/graph"
	"github.com/born-ml/streamnet/internal/loader"
	"github.com/born-ml/streamnet/internal/nn"
	"github.com/born-ml/streamnet/internal/serialization"
)

type backend = *cpu.CPUBackend

// loadModel builds the configured graph and binds its weights.
func loadModel(cfg *config.Config) (nn.Module[backend], error) {
	if cfg.IsArtifact() {
		if cfg.Description != "" {
			klog.Warningf("Using the graph stored in %s; ignoring %s", cfg.Weights, cfg.Description)
		}
		return serialization.Load(cfg.Weights, cpu.New())
	}

	desc, err := graph.LoadDescription(cfg.Description)
	if err != nil {
		return nil, err
	}
	m, err := graph.Build(desc, cpu.New())
	if err != nil {
		return nil, errors.WithMessagef(err, "build %s", cfg.Description)
	}
	if cfg.Weights == "" {
		klog.Warningf("No weights given; %s runs with zero parameters", cfg.Description)
		return m, nil
	}
	if err := loader.LoadInto(cfg.Weights, m); err != nil {
		return nil, err
	}
	return m, nil
}
