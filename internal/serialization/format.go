package serialization

import (
	"encoding/json"
	"time"
)

// Format constants.
const (
	MagicBytes      = "BORN"
	FormatVersion   = 1  // v1: description + checksummed parameter stream
	HeaderAlignment = 64 // Align tensor data to 64 bytes
	fixedHeaderSize = 4 + 4 + 4 + 8
)

// Flags for the artifact format.
const (
	FlagHalfPrecision uint32 = 1 << 0 // bit 0: tensors stored as float16 or bfloat16
	FlagHasMetadata   uint32 = 1 << 2 // bit 2: custom metadata included
)

// ModelType identifies streaming graph artifacts.
const ModelType = "streamnet"

// Header represents the JSON header of an artifact.
type Header struct {
	FormatVersion int               `json:"format_version"` // Version of the artifact format
	ModelType     string            `json:"model_type"`     // Always ModelType
	CreatedAt     time.Time         `json:"created_at"`     // When the file was created
	Graph         json.RawMessage   `json:"graph"`          // Graph description
	Tensors       []TensorMeta      `json:"tensors"`        // Tensor metadata, stream order
	Checksum      string            `json:"checksum"`       // Hex SHA-256 of the data section
	Metadata      map[string]string `json:"metadata,omitempty"`
}

// TensorMeta describes a tensor in the artifact.
type TensorMeta struct {
	Name   string `json:"name"`   // Dotted parameter name (e.g., "Conv1d-0.weight")
	DType  string `json:"dtype"`  // Storage type (e.g., "float16")
	Shape  []int  `json:"shape"`  // Tensor shape
	Offset int64  `json:"offset"` // Offset in the data section
	Size   int64  `json:"size"`   // Size in bytes
}

// alignedDataOffset returns where the data section starts for a header of
// headerSize bytes.
func alignedDataOffset(headerSize int64) int64 {
	pos := int64(fixedHeaderSize) + headerSize
	return pos + (HeaderAlignment-pos%HeaderAlignment)%HeaderAlignment
}
