// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package graph builds streaming graphs from descriptions.
//
// A description is a tree of tagged records, stored as JSON or YAML:
//
//	{"name": "Sequential", "children": [
//	    {"name": "Conv1d", "inChannels": 80, "outChannels": 32, "kernelSize": 5,
//	     "stride": 2, "leftPadding": 4, "rightPadding": 1, "groups": 1},
//	    {"name": "GroupNorm", "alpha": 1.0, "beta": 0.0},
//	    {"name": "ReLU"}
//	]}
//
// Build turns a description into a graph with zero parameters; Describe
// turns a graph back into its description.
//
// Example:
//
//	desc, err := graph.LoadDescription("acoustic.json")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	model, err := graph.Build(desc, cpu.New())
package graph

import (
	"github.com/born-ml/streamnet/internal/graph"
	"github.com/born-ml/streamnet/nn"
	"github.com/born-ml/streamnet/tensor"
)

// Errors. Build errors carry the description path of the offending node.
var (
	ErrUnknownModuleKind  = graph.ErrUnknownModuleKind
	ErrInvalidDescription = graph.ErrInvalidDescription
)

// Description is a graph description node.
type Description = graph.Description

// Floats is a description value holding a number or a list of numbers.
type Floats = graph.Floats

// Format is a description encoding.
type Format = graph.Format

// Supported formats.
const (
	JSON Format = graph.JSON
	YAML Format = graph.YAML
)

// Parse decodes a description.
func Parse(data []byte, format Format) (*Description, error) {
	return graph.Parse(data, format)
}

// LoadDescription reads a .json, .yaml or .yml description file.
func LoadDescription(path string) (*Description, error) {
	return graph.LoadDescription(path)
}

// Build constructs the graph desc describes. On failure no graph is returned.
func Build[B tensor.Backend](desc *Description, backend B) (nn.Module[B], error) {
	return graph.Build(desc, backend)
}

// Describe returns the description of a built graph.
func Describe[B tensor.Backend](m nn.Module[B]) (*Description, error) {
	return graph.Describe(m)
}
