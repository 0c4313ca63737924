// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package loader reads and writes parameter streams in SafeTensors format.
//
// Example usage:
//
//	import (
//	    "github.com/born-ml/streamnet/backend/cpu"
//	    "github.com/born-ml/streamnet/graph"
//	    "github.com/born-ml/streamnet/loader"
//	)
//
//	desc, err := graph.LoadDescription("acoustic.json")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	model, err := graph.Build(desc, cpu.New())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := loader.LoadInto("acoustic.safetensors", model); err != nil {
//	    log.Fatal(err)
//	}
package loader

import (
	"github.com/born-ml/streamnet/internal/loader"
	"github.com/born-ml/streamnet/nn"
	"github.com/born-ml/streamnet/tensor"
)

// Errors.
var (
	ErrTensorNotFound   = loader.ErrTensorNotFound
	ErrUnsupportedDType = loader.ErrUnsupportedDType
	ErrCorruptFile      = loader.ErrCorruptFile
)

// ParameterStream is an ordered list of named tensors.
type ParameterStream = loader.ParameterStream

// SafeTensorsReader reads tensors from a SafeTensors file.
type SafeTensorsReader = loader.SafeTensorsReader

// NewSafeTensorsReader opens a SafeTensors file.
func NewSafeTensorsReader(path string) (*SafeTensorsReader, error) {
	return loader.NewSafeTensorsReader(path)
}

// ReadParameterStream reads every tensor of path as float32. The stream
// follows names when all of them are present, and file order otherwise.
func ReadParameterStream(path string, names []string) (*ParameterStream, error) {
	return loader.ReadParameterStream(path, names)
}

// LoadInto reads path and binds it to m.
func LoadInto[B tensor.Backend](path string, m nn.Module[B]) error {
	return loader.LoadInto(path, m)
}

// SaveFrom writes m's parameters to path under their dotted names.
func SaveFrom[B tensor.Backend](path string, m nn.Module[B], dt tensor.DataType) error {
	return loader.SaveFrom(path, m, dt)
}
