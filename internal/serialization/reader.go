package serialization

import (
	"encoding/binary"
	"encoding/json"
	"io"
	"os"

	"github.com/pkg/errors"

	"github.com/born-ml/streamnet/internal/graph"
	"github.com/born-ml/streamnet/internal/loader"
	"github.com/born-ml/streamnet/internal/nn"
	"github.com/born-ml/streamnet/internal/tensor"
)

// Artifact is a decoded artifact with parameters widened to float32.
type Artifact struct {
	Header      Header
	Flags       uint32
	Description *graph.Description
	Stream      *loader.ParameterStream
}

// ReadArtifact reads and validates an artifact.
func ReadArtifact(path string) (*Artifact, error) {
	//nolint:gosec // G304: File path comes from user input, which is expected for model loading
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open artifact")
	}
	defer func() { _ = file.Close() }()

	a, err := readArtifact(file)
	if err != nil {
		return nil, errors.WithMessagef(err, "read artifact %s", path)
	}
	return a, nil
}

func readArtifact(r io.Reader) (*Artifact, error) {
	magic := make([]byte, len(MagicBytes))
	if _, err := io.ReadFull(r, magic); err != nil {
		return nil, errors.Wrap(ErrInvalidMagic, err.Error())
	}
	if string(magic) != MagicBytes {
		return nil, errors.WithStack(ErrInvalidMagic)
	}

	var (
		version    uint32
		flags      uint32
		headerSize uint64
	)
	if err := binary.Read(r, binary.LittleEndian, &version); err != nil {
		return nil, errors.Wrap(err, "read version")
	}
	if version != FormatVersion {
		return nil, errors.Wrapf(ErrUnsupportedVersion, "got %d, expected %d", version, FormatVersion)
	}
	if err := binary.Read(r, binary.LittleEndian, &flags); err != nil {
		return nil, errors.Wrap(err, "read flags")
	}
	if err := binary.Read(r, binary.LittleEndian, &headerSize); err != nil {
		return nil, errors.Wrap(err, "read header size")
	}
	if headerSize > MaxHeaderSize {
		return nil, errors.WithStack(ErrHeaderTooLarge)
	}

	headerJSON := make([]byte, headerSize)
	if _, err := io.ReadFull(r, headerJSON); err != nil {
		return nil, errors.Wrap(err, "read header")
	}
	var header Header
	if err := json.Unmarshal(headerJSON, &header); err != nil {
		return nil, errors.Wrapf(ErrInvalidArtifact, "parse header: %v", err)
	}

	//nolint:gosec // G115: headerSize is bounded by MaxHeaderSize.
	padding := alignedDataOffset(int64(headerSize)) - int64(fixedHeaderSize) - int64(headerSize)
	if _, err := io.CopyN(io.Discard, r, padding); err != nil {
		return nil, errors.Wrap(err, "skip padding")
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, "read data")
	}

	if err := ValidateHeader(&header, int64(len(data))); err != nil {
		return nil, errors.WithStack(err)
	}
	if err := validateChecksum(data, header.Checksum); err != nil {
		return nil, errors.WithStack(err)
	}

	desc, err := graph.Parse(header.Graph, graph.JSON)
	if err != nil {
		return nil, err
	}

	stream := &loader.ParameterStream{
		Names:   make([]string, len(header.Tensors)),
		Tensors: make([]*tensor.RawTensor, len(header.Tensors)),
	}
	for i, meta := range header.Tensors {
		dt, _ := tensor.ParseDataType(meta.DType) // checked by ValidateHeader
		raw, err := tensor.NewRaw(tensor.Shape(meta.Shape), tensor.CPU)
		if err != nil {
			return nil, errors.Wrapf(err, "tensor %s", meta.Name)
		}
		loader.DecodeFloat32(dt, data[meta.Offset:meta.Offset+meta.Size], raw.AsFloat32())
		stream.Names[i] = meta.Name
		stream.Tensors[i] = raw
	}

	return &Artifact{
		Header:      header,
		Flags:       flags,
		Description: desc,
		Stream:      stream,
	}, nil
}

// Load rebuilds a weighted graph from an artifact.
func Load[B tensor.Backend](path string, backend B) (nn.Module[B], error) {
	a, err := ReadArtifact(path)
	if err != nil {
		return nil, err
	}
	m, err := graph.Build(a.Description, backend)
	if err != nil {
		return nil, err
	}
	if err := nn.Bind(m, a.Stream.Tensors); err != nil {
		return nil, errors.WithMessagef(err, "bind artifact %s", path)
	}
	return m, nil
}
