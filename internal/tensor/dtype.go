// Package tensor provides the dense tensor types used by streaming graphs.
package tensor

// DataType describes how tensor elements are stored on disk.
//
// In memory every tensor holds float32 values; the other types only appear in
// weight files and exported artifacts and are converted on load.
type DataType int

// Supported storage types.
const (
	Float32 DataType = iota
	Float16
	BFloat16
	Float64
)

// Size returns the byte size of the data type.
func (dt DataType) Size() int {
	switch dt {
	case Float16, BFloat16:
		return 2
	case Float32:
		return 4
	case Float64:
		return 8
	default:
		panic("unknown data type")
	}
}

// String returns a human-readable name for the data type.
func (dt DataType) String() string {
	switch dt {
	case Float32:
		return "float32"
	case Float16:
		return "float16"
	case BFloat16:
		return "bfloat16"
	case Float64:
		return "float64"
	default:
		return "unknown"
	}
}

// ParseDataType is the inverse of DataType.String.
func ParseDataType(s string) (DataType, bool) {
	switch s {
	case "float32":
		return Float32, true
	case "float16":
		return Float16, true
	case "bfloat16":
		return BFloat16, true
	case "float64":
		return Float64, true
	default:
		return 0, false
	}
}
