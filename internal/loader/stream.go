package loader

import (
	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"

	"github.com/born-ml/streamnet/internal/nn"
	"github.com/born-ml/streamnet/internal/tensor"
)

// ParameterStream is an ordered list of named tensors.
type ParameterStream struct {
	Names   []string
	Tensors []*tensor.RawTensor
}

// Len returns the number of tensors in the stream.
func (s *ParameterStream) Len() int {
	return len(s.Tensors)
}

// Bytes returns the float32 size of the stream.
func (s *ParameterStream) Bytes() int {
	n := 0
	for _, t := range s.Tensors {
		n += t.ByteSize()
	}
	return n
}

// ReadParameterStream loads every tensor in path as a parameter stream.
//
// When names is non-empty and every name is present in the file, the stream
// follows names. Otherwise it follows data offsets, which is the order the
// file was written in.
func ReadParameterStream(path string, names []string) (*ParameterStream, error) {
	r, err := NewSafeTensorsReader(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = r.Close() }()

	order := r.TensorNames()
	if len(names) > 0 && hasAll(r, names) {
		order = names
	} else if len(names) > 0 {
		klog.V(1).Infof("%s: tensor names differ from the graph's, using file order", path)
	}

	stream := &ParameterStream{
		Names:   make([]string, 0, len(order)),
		Tensors: make([]*tensor.RawTensor, 0, len(order)),
	}
	for _, name := range order {
		raw, err := r.LoadTensor(name)
		if err != nil {
			return nil, errors.WithMessagef(err, "%s", path)
		}
		stream.Names = append(stream.Names, name)
		stream.Tensors = append(stream.Tensors, raw)
	}

	klog.V(1).Infof("Loaded %d tensors (%s) from %s",
		stream.Len(), humanize.Bytes(uint64(stream.Bytes())), path) //nolint:gosec // sizes are non-negative.
	return stream, nil
}

func hasAll(r *SafeTensorsReader, names []string) bool {
	for _, name := range names {
		if _, ok := r.header.Tensors[name]; !ok {
			return false
		}
	}
	return true
}

// LoadInto reads path and binds it to m, matching tensors by m's dotted
// parameter names when the file uses them.
func LoadInto[B tensor.Backend](path string, m nn.Module[B]) error {
	named := nn.NamedParameters(m)
	names := make([]string, len(named))
	for i, np := range named {
		names[i] = np.Name
	}

	stream, err := ReadParameterStream(path, names)
	if err != nil {
		return err
	}
	if err := nn.Bind(m, stream.Tensors); err != nil {
		return errors.WithMessagef(err, "bind %s", path)
	}
	return nil
}

// SaveFrom writes m's parameters to path under their dotted names.
func SaveFrom[B tensor.Backend](path string, m nn.Module[B], dt tensor.DataType) error {
	named := nn.NamedParameters(m)
	stream := &ParameterStream{
		Names:   make([]string, len(named)),
		Tensors: make([]*tensor.RawTensor, len(named)),
	}
	for i, np := range named {
		stream.Names[i] = np.Name
		stream.Tensors[i] = np.Parameter.Tensor().Raw()
	}
	return WriteSafeTensors(path, stream, dt, nil)
}
