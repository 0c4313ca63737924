package nn

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/born-ml/streamnet/internal/tensor"
)

// Sentinel errors.
var (
	// ErrShape is matched by every *ShapeError.
	ErrShape = errors.New("shape mismatch")

	// ErrInvalidConfig reports a node configuration that cannot be built.
	ErrInvalidConfig = errors.New("invalid module configuration")

	// ErrNonConformant is matched by both parameter stream mismatches.
	ErrNonConformant = errors.New("parameter streams are not conformant")

	// ErrParameterCountMismatch reports streams of different lengths.
	ErrParameterCountMismatch = errors.New("parameter count mismatch")

	// ErrParameterShapeMismatch reports a position whose shapes differ.
	ErrParameterShapeMismatch = errors.New("parameter shape mismatch")
)

// ShapeError reports a chunk that does not fit a node.
type ShapeError struct {
	Node   string // Node kind
	Axis   int    // Offending axis, or -1 for rank errors
	Want   int
	Got    int
	Detail string
}

func (e *ShapeError) Error() string {
	if e.Axis < 0 {
		return fmt.Sprintf("%s: %s", e.Node, e.Detail)
	}
	msg := fmt.Sprintf("%s: axis %d: want %d, got %d", e.Node, e.Axis, e.Want, e.Got)
	if e.Detail != "" {
		msg += " (" + e.Detail + ")"
	}
	return msg
}

// Is reports whether target is ErrShape.
func (e *ShapeError) Is(target error) bool {
	return target == ErrShape
}

func rankError(node, format string, args ...any) *ShapeError {
	return &ShapeError{Node: node, Axis: -1, Detail: fmt.Sprintf(format, args...)}
}

// ConformanceError reports why a parameter stream cannot be bound.
type ConformanceError struct {
	Reason error // ErrParameterCountMismatch or ErrParameterShapeMismatch

	// Count mismatch.
	WantCount int
	GotCount  int

	// Shape mismatch.
	Index     int
	Name      string
	WantShape tensor.Shape
	GotShape  tensor.Shape
}

func (e *ConformanceError) Error() string {
	if e.Reason == ErrParameterCountMismatch {
		return fmt.Sprintf("%v: graph has %d parameters, stream has %d", e.Reason, e.WantCount, e.GotCount)
	}
	return fmt.Sprintf("%v: parameter %d (%s): graph wants %v, stream has %v",
		e.Reason, e.Index, e.Name, e.WantShape, e.GotShape)
}

// Is matches ErrNonConformant and the specific reason.
func (e *ConformanceError) Is(target error) bool {
	return target == ErrNonConformant || target == e.Reason
}

// errorf wraps a sentinel with a formatted message and a stack trace.
func errorf(sentinel error, format string, args ...any) error {
	return errors.Wrapf(sentinel, format, args...)
}
