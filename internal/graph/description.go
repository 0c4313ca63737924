// Package graph builds streaming graphs from declarative descriptions.
//
// A description is a recursively nested record tagged by its name field:
//
//	{"name": "Sequential", "children": [
//	  {"name": "Conv1d", "inChannels": 80, "outChannels": 256, "kernelSize": 8,
//	   "stride": 2, "leftPadding": 7, "rightPadding": 0, "groups": 1},
//	  {"name": "ReLU"}
//	]}
//
// Build turns a description into an nn.Module; Describe goes the other way.
package graph

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Description is one node of a graph description. Which fields apply depends
// on Name; the rest are left zero.
type Description struct {
	Name string `json:"name" yaml:"name"`

	// Linear
	InFeatures  int `json:"inFeatures,omitempty" yaml:"inFeatures,omitempty"`
	OutFeatures int `json:"outFeatures,omitempty" yaml:"outFeatures,omitempty"`

	// Conv1d
	InChannels   int `json:"inChannels,omitempty" yaml:"inChannels,omitempty"`
	OutChannels  int `json:"outChannels,omitempty" yaml:"outChannels,omitempty"`
	KernelSize   int `json:"kernelSize,omitempty" yaml:"kernelSize,omitempty"`
	Stride       int `json:"stride,omitempty" yaml:"stride,omitempty"`
	LeftPadding  int `json:"leftPadding,omitempty" yaml:"leftPadding,omitempty"`
	RightPadding int `json:"rightPadding,omitempty" yaml:"rightPadding,omitempty"`
	Groups       int `json:"groups,omitempty" yaml:"groups,omitempty"`

	// Sequential
	Children []*Description `json:"children,omitempty" yaml:"children,omitempty"`

	// Residual
	Module   *Description `json:"module,omitempty" yaml:"module,omitempty"`
	TimeAxis *int         `json:"timeAxis,omitempty" yaml:"timeAxis,omitempty"`

	// GroupNorm*
	Alpha *Floats `json:"alpha,omitempty" yaml:"alpha,omitempty"`
	Beta  *Floats `json:"beta,omitempty" yaml:"beta,omitempty"`

	// Reshape, Permute
	Shape       []int `json:"shape,omitempty" yaml:"shape,omitempty"`
	Permutation []int `json:"permutation,omitempty" yaml:"permutation,omitempty"`
}

// Floats holds a number or a list of numbers, remembering which.
type Floats struct {
	Values []float32
	Scalar bool
}

// Scalar returns a scalar Floats.
func Scalar(v float32) *Floats {
	return &Floats{Values: []float32{v}, Scalar: true}
}

// Vector returns a list Floats.
func Vector(vs ...float32) *Floats {
	return &Floats{Values: append([]float32(nil), vs...)}
}

// MarshalJSON writes a number for scalars and a list otherwise.
func (f Floats) MarshalJSON() ([]byte, error) {
	if f.Scalar && len(f.Values) == 1 {
		return json.Marshal(f.Values[0])
	}
	if f.Values == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(f.Values)
}

// UnmarshalJSON accepts a number or a list of numbers.
func (f *Floats) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '[' {
		f.Scalar = false
		return json.Unmarshal(data, &f.Values)
	}
	var v float32
	if err := json.Unmarshal(data, &v); err != nil {
		return errors.Wrap(err, "expected a number or a list of numbers")
	}
	*f = Floats{Values: []float32{v}, Scalar: true}
	return nil
}

// MarshalYAML writes a number for scalars and a list otherwise.
func (f Floats) MarshalYAML() (any, error) {
	if f.Scalar && len(f.Values) == 1 {
		return f.Values[0], nil
	}
	return f.Values, nil
}

// UnmarshalYAML accepts a scalar or a sequence node.
func (f *Floats) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		var v float32
		if err := node.Decode(&v); err != nil {
			return err
		}
		*f = Floats{Values: []float32{v}, Scalar: true}
		return nil
	case yaml.SequenceNode:
		f.Scalar = false
		return node.Decode(&f.Values)
	default:
		return errors.Errorf("line %d: expected a number or a list of numbers", node.Line)
	}
}

// Format is a description encoding.
type Format int

// Supported formats.
const (
	JSON Format = iota
	YAML
)

// String returns the format name.
func (f Format) String() string {
	if f == YAML {
		return "yaml"
	}
	return "json"
}

// FormatOf picks a format from a file extension: .yaml and .yml are YAML,
// everything else JSON.
func FormatOf(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return YAML
	default:
		return JSON
	}
}

// Parse decodes a description.
func Parse(data []byte, format Format) (*Description, error) {
	var desc Description
	var err error
	switch format {
	case YAML:
		err = yaml.Unmarshal(data, &desc)
	default:
		err = json.Unmarshal(data, &desc)
	}
	if err != nil {
		return nil, errors.Wrapf(ErrInvalidDescription, "parse %s: %v", format, err)
	}
	return &desc, nil
}

// LoadDescription reads and parses a description file.
func LoadDescription(path string) (*Description, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read description %q", path)
	}
	desc, err := Parse(data, FormatOf(path))
	if err != nil {
		return nil, errors.WithMessagef(err, "load %q", path)
	}
	return desc, nil
}

// Marshal encodes the description. JSON output is indented.
func (d *Description) Marshal(format Format) ([]byte, error) {
	if format == YAML {
		return yaml.Marshal(d)
	}
	return json.MarshalIndent(d, "", "  ")
}

// Save writes the description to path in the format its extension implies.
func (d *Description) Save(path string) error {
	data, err := d.Marshal(FormatOf(path))
	if err != nil {
		return errors.Wrap(err, "marshal description")
	}
	return errors.Wrapf(os.WriteFile(path, data, 0o644), "write description %q", path)
}
