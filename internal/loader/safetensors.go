package loader

import (
	"encoding/binary"
	"encoding/json"
	"io"
	"math"
	"os"
	"sort"

	"github.com/pkg/errors"
	"github.com/x448/float16"

	"github.com/born-ml/streamnet/internal/tensor"
)

// SafeTensors format:
// [8 bytes: header_size (uint64 LE)]
// [header_size bytes: JSON header]
// [tensor data: raw bytes]

// Sentinel errors.
var (
	ErrTensorNotFound   = errors.New("tensor not found")
	ErrUnsupportedDType = errors.New("unsupported dtype")
	ErrCorruptFile      = errors.New("corrupt safetensors file")
)

// maxHeaderSize bounds the JSON header (100MB).
const maxHeaderSize = 100 * 1024 * 1024

// SafeTensorsDType represents supported SafeTensors data types.
type SafeTensorsDType string

// Supported SafeTensors dtypes.
const (
	SafeTensorsF16  SafeTensorsDType = "F16"
	SafeTensorsF32  SafeTensorsDType = "F32"
	SafeTensorsF64  SafeTensorsDType = "F64"
	SafeTensorsBF16 SafeTensorsDType = "BF16"
)

// DataType maps the dtype to its storage type.
func (d SafeTensorsDType) DataType() (tensor.DataType, error) {
	switch d {
	case SafeTensorsF32:
		return tensor.Float32, nil
	case SafeTensorsF16:
		return tensor.Float16, nil
	case SafeTensorsBF16:
		return tensor.BFloat16, nil
	case SafeTensorsF64:
		return tensor.Float64, nil
	default:
		return 0, errors.Wrapf(ErrUnsupportedDType, "%s", string(d))
	}
}

// dtypeOf is the inverse of SafeTensorsDType.DataType.
func dtypeOf(dt tensor.DataType) (SafeTensorsDType, error) {
	switch dt {
	case tensor.Float32:
		return SafeTensorsF32, nil
	case tensor.Float16:
		return SafeTensorsF16, nil
	case tensor.BFloat16:
		return SafeTensorsBF16, nil
	case tensor.Float64:
		return SafeTensorsF64, nil
	default:
		return "", errors.Wrapf(ErrUnsupportedDType, "%s", dt)
	}
}

// SafeTensorInfo describes a tensor in SafeTensors format.
type SafeTensorInfo struct {
	DType       SafeTensorsDType `json:"dtype"`
	Shape       []int            `json:"shape"`
	DataOffsets [2]int64         `json:"data_offsets"` // [start, end]
}

// SafeTensorsHeader is the JSON header in SafeTensors format.
type SafeTensorsHeader struct {
	Metadata map[string]string         `json:"__metadata__"`
	Tensors  map[string]SafeTensorInfo `json:"-"`
}

// UnmarshalJSON implements custom JSON unmarshaling for SafeTensorsHeader.
func (h *SafeTensorsHeader) UnmarshalJSON(data []byte) error {
	var rawMap map[string]json.RawMessage
	if err := json.Unmarshal(data, &rawMap); err != nil {
		return err
	}

	if metadataRaw, ok := rawMap["__metadata__"]; ok {
		if err := json.Unmarshal(metadataRaw, &h.Metadata); err != nil {
			return errors.Wrap(err, "unmarshal metadata")
		}
	}

	// Everything except __metadata__ is a tensor.
	h.Tensors = make(map[string]SafeTensorInfo, len(rawMap))
	for key, value := range rawMap {
		if key == "__metadata__" {
			continue
		}
		var info SafeTensorInfo
		if err := json.Unmarshal(value, &info); err != nil {
			return errors.Wrapf(err, "unmarshal tensor %s", key)
		}
		h.Tensors[key] = info
	}
	return nil
}

// MarshalJSON flattens tensors next to __metadata__.
func (h SafeTensorsHeader) MarshalJSON() ([]byte, error) {
	flat := make(map[string]any, len(h.Tensors)+1)
	if len(h.Metadata) > 0 {
		flat["__metadata__"] = h.Metadata
	}
	for name, info := range h.Tensors {
		flat[name] = info
	}
	return json.Marshal(flat)
}

// SafeTensorsReader reads SafeTensors format files.
type SafeTensorsReader struct {
	file       *os.File
	header     SafeTensorsHeader
	dataOffset int64 // Offset where tensor data starts
	dataSize   int64
}

// NewSafeTensorsReader opens path and parses its header.
func NewSafeTensorsReader(path string) (*SafeTensorsReader, error) {
	//nolint:gosec // G304: weight paths come from the command line.
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open safetensors")
	}

	r, err := newReader(file)
	if err != nil {
		_ = file.Close() // Best effort close on error
		return nil, errors.WithMessagef(err, "%s", path)
	}
	return r, nil
}

func newReader(file *os.File) (*SafeTensorsReader, error) {
	var headerSize uint64
	if err := binary.Read(file, binary.LittleEndian, &headerSize); err != nil {
		return nil, errors.Wrapf(ErrCorruptFile, "read header size: %v", err)
	}
	if headerSize > maxHeaderSize {
		return nil, errors.Wrapf(ErrCorruptFile, "header size %d too large", headerSize)
	}

	headerBytes := make([]byte, headerSize)
	if _, err := io.ReadFull(file, headerBytes); err != nil {
		return nil, errors.Wrapf(ErrCorruptFile, "read header: %v", err)
	}

	var header SafeTensorsHeader
	if err := json.Unmarshal(headerBytes, &header); err != nil {
		return nil, errors.Wrapf(ErrCorruptFile, "parse header: %v", err)
	}

	stat, err := file.Stat()
	if err != nil {
		return nil, errors.Wrap(err, "stat safetensors")
	}

	dataOffset := int64(8 + headerSize) //nolint:gosec // G115: bounded by maxHeaderSize.
	r := &SafeTensorsReader{
		file:       file,
		header:     header,
		dataOffset: dataOffset,
		dataSize:   stat.Size() - dataOffset,
	}
	for name, info := range header.Tensors {
		if err := r.validate(name, info); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// validate checks that a tensor's byte range matches its dtype and shape and
// lies inside the file.
func (r *SafeTensorsReader) validate(name string, info SafeTensorInfo) error {
	dt, err := info.DType.DataType()
	if err != nil {
		return errors.WithMessagef(err, "tensor %s", name)
	}
	shape := tensor.Shape(info.Shape)
	if err := shape.Validate(); err != nil {
		return errors.Wrapf(ErrCorruptFile, "tensor %s: %v", name, err)
	}

	start, end := info.DataOffsets[0], info.DataOffsets[1]
	want := int64(shape.NumElements() * dt.Size())
	if start < 0 || end < start || end-start != want || end > r.dataSize {
		return errors.Wrapf(ErrCorruptFile, "tensor %s: offsets [%d, %d] do not hold %v %s",
			name, start, end, shape, info.DType)
	}
	return nil
}

// Close closes the SafeTensors file.
func (r *SafeTensorsReader) Close() error {
	if r.file != nil {
		return r.file.Close()
	}
	return nil
}

// Metadata returns the metadata map from the header.
func (r *SafeTensorsReader) Metadata() map[string]string {
	return r.header.Metadata
}

// TensorNames returns all tensor names ordered by data offset, which is the
// order the writer emitted them in.
func (r *SafeTensorsReader) TensorNames() []string {
	names := make([]string, 0, len(r.header.Tensors))
	for name := range r.header.Tensors {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		a, b := r.header.Tensors[names[i]], r.header.Tensors[names[j]]
		if a.DataOffsets[0] != b.DataOffsets[0] {
			return a.DataOffsets[0] < b.DataOffsets[0]
		}
		return names[i] < names[j]
	})
	return names
}

// TensorInfo returns information about a specific tensor.
func (r *SafeTensorsReader) TensorInfo(name string) (*SafeTensorInfo, error) {
	info, ok := r.header.Tensors[name]
	if !ok {
		return nil, errors.Wrapf(ErrTensorNotFound, "%q", name)
	}
	return &info, nil
}

// ReadTensorData reads raw tensor bytes for a given tensor name.
func (r *SafeTensorsReader) ReadTensorData(name string) ([]byte, error) {
	info, err := r.TensorInfo(name)
	if err != nil {
		return nil, err
	}

	start := r.dataOffset + info.DataOffsets[0]
	data := make([]byte, info.DataOffsets[1]-info.DataOffsets[0])
	if _, err := r.file.ReadAt(data, start); err != nil {
		return nil, errors.Wrapf(err, "read tensor %s", name)
	}
	return data, nil
}

// LoadTensor loads a tensor as float32, converting from its stored dtype.
func (r *SafeTensorsReader) LoadTensor(name string) (*tensor.RawTensor, error) {
	info, err := r.TensorInfo(name)
	if err != nil {
		return nil, err
	}
	dt, err := info.DType.DataType()
	if err != nil {
		return nil, err
	}

	data, err := r.ReadTensorData(name)
	if err != nil {
		return nil, err
	}

	raw, err := tensor.NewRaw(tensor.Shape(info.Shape), tensor.CPU)
	if err != nil {
		return nil, errors.Wrapf(err, "tensor %s", name)
	}
	DecodeFloat32(dt, data, raw.AsFloat32())
	return raw, nil
}

// DecodeFloat32 converts little-endian values of type dt from src into dst.
// len(dst) must equal len(src)/dt.Size().
func DecodeFloat32(dt tensor.DataType, src []byte, dst []float32) {
	switch dt {
	case tensor.Float32:
		for i := range dst {
			dst[i] = math.Float32frombits(binary.LittleEndian.Uint32(src[4*i:]))
		}
	case tensor.Float16:
		for i := range dst {
			dst[i] = float16.Frombits(binary.LittleEndian.Uint16(src[2*i:])).Float32()
		}
	case tensor.BFloat16:
		for i := range dst {
			dst[i] = math.Float32frombits(uint32(binary.LittleEndian.Uint16(src[2*i:])) << 16)
		}
	case tensor.Float64:
		for i := range dst {
			dst[i] = float32(math.Float64frombits(binary.LittleEndian.Uint64(src[8*i:])))
		}
	default:
		panic("decode: unknown data type " + dt.String())
	}
}

// EncodeFloat32 converts src to little-endian values of type dt.
func EncodeFloat32(dt tensor.DataType, src []float32) []byte {
	out := make([]byte, len(src)*dt.Size())
	switch dt {
	case tensor.Float32:
		for i, v := range src {
			binary.LittleEndian.PutUint32(out[4*i:], math.Float32bits(v))
		}
	case tensor.Float16:
		for i, v := range src {
			binary.LittleEndian.PutUint16(out[2*i:], float16.Fromfloat32(v).Bits())
		}
	case tensor.BFloat16:
		for i, v := range src {
			binary.LittleEndian.PutUint16(out[2*i:], uint16(math.Float32bits(v)>>16))
		}
	case tensor.Float64:
		for i, v := range src {
			binary.LittleEndian.PutUint64(out[8*i:], math.Float64bits(float64(v)))
		}
	default:
		panic("encode: unknown data type " + dt.String())
	}
	return out
}
