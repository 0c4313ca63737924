package serialization

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"encoding/json"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"

	"github.com/born-ml/streamnet/internal/graph"
	"github.com/born-ml/streamnet/internal/loader"
	"github.com/born-ml/streamnet/internal/nn"
	"github.com/born-ml/streamnet/internal/tensor"
)

// ExportOptions configures Export. The zero value stores float32; use
// DefaultExportOptions for the half-precision deployment export.
type ExportOptions struct {
	// DType is the storage type of every tensor.
	DType tensor.DataType

	// Metadata is copied into the header.
	Metadata map[string]string
}

// DefaultExportOptions returns options for a float16 export.
func DefaultExportOptions() ExportOptions {
	return ExportOptions{DType: tensor.Float16}
}

// Export writes m's description and parameters to path. Parameters are
// converted to the reduced storage type; m is not modified.
func Export[B tensor.Backend](path string, m nn.Module[B], opts ExportOptions) error {
	desc, err := graph.Describe(m)
	if err != nil {
		return errors.WithMessage(err, "describe graph")
	}

	named := nn.NamedParameters(m)
	stream := &loader.ParameterStream{
		Names:   make([]string, len(named)),
		Tensors: make([]*tensor.RawTensor, len(named)),
	}
	for i, np := range named {
		stream.Names[i] = np.Name
		stream.Tensors[i] = np.Parameter.Tensor().Raw()
	}
	return WriteArtifact(path, desc, stream, opts)
}

// WriteArtifact writes a description and its parameter stream to path.
func WriteArtifact(path string, desc *graph.Description, stream *loader.ParameterStream, opts ExportOptions) error {
	dt := opts.DType

	graphJSON, err := json.Marshal(desc)
	if err != nil {
		return errors.Wrap(err, "marshal graph description")
	}

	header := Header{
		FormatVersion: FormatVersion,
		ModelType:     ModelType,
		CreatedAt:     time.Now().UTC(),
		Graph:         graphJSON,
		Tensors:       make([]TensorMeta, 0, stream.Len()),
		Metadata:      opts.Metadata,
	}

	var data bytes.Buffer
	for i, raw := range stream.Tensors {
		name := stream.Names[i]
		if err := ValidateTensorName(name); err != nil {
			return err
		}
		encoded := loader.EncodeFloat32(dt, raw.AsFloat32())
		header.Tensors = append(header.Tensors, TensorMeta{
			Name:   name,
			DType:  dt.String(),
			Shape:  append([]int{}, raw.Shape()...),
			Offset: int64(data.Len()),
			Size:   int64(len(encoded)),
		})
		data.Write(encoded)
	}
	header.Checksum = checksum(data.Bytes())

	headerJSON, err := json.Marshal(header)
	if err != nil {
		return errors.Wrap(err, "marshal header")
	}

	flags := uint32(0)
	if dt == tensor.Float16 || dt == tensor.BFloat16 {
		flags |= FlagHalfPrecision
	}
	if len(opts.Metadata) > 0 {
		flags |= FlagHasMetadata
	}

	//nolint:gosec // G304: File path comes from user input, which is expected for model saving
	file, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "create artifact")
	}
	w := bufio.NewWriter(file)

	headerSize := int64(len(headerJSON))
	padding := alignedDataOffset(headerSize) - int64(fixedHeaderSize) - headerSize

	writes := []func() error{
		func() error { _, err := w.WriteString(MagicBytes); return err },
		func() error { return binary.Write(w, binary.LittleEndian, uint32(FormatVersion)) },
		func() error { return binary.Write(w, binary.LittleEndian, flags) },
		func() error { return binary.Write(w, binary.LittleEndian, uint64(headerSize)) },
		func() error { _, err := w.Write(headerJSON); return err },
		func() error { _, err := w.Write(make([]byte, padding)); return err },
		func() error { _, err := w.Write(data.Bytes()); return err },
		w.Flush,
	}
	for _, write := range writes {
		if err := write(); err != nil {
			_ = file.Close()
			return errors.Wrapf(err, "write artifact %s", path)
		}
	}
	if err := file.Close(); err != nil {
		return errors.Wrapf(err, "close artifact %s", path)
	}

	klog.V(1).Infof("Exported %d tensors as %s to %s (%s data)",
		stream.Len(), dt, path, humanize.Bytes(uint64(data.Len()))) //nolint:gosec // buffer sizes are non-negative.
	return nil
}
