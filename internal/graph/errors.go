package graph

import (
	"fmt"

	"github.com/pkg/errors"
)

// Sentinel errors.
var (
	// ErrUnknownModuleKind is matched by every *KindError.
	ErrUnknownModuleKind = errors.New("unknown module kind")

	// ErrInvalidDescription reports a description that names a known kind
	// but cannot be built from.
	ErrInvalidDescription = errors.New("invalid description")
)

// KindError reports a description tag that matches no node variant.
type KindError struct {
	Path string // Location in the description, e.g. "children[2].module"
	Tag  string
}

func (e *KindError) Error() string {
	return fmt.Sprintf("%s: %v %q", displayPath(e.Path), ErrUnknownModuleKind, e.Tag)
}

// Is reports whether target is ErrUnknownModuleKind.
func (e *KindError) Is(target error) bool {
	return target == ErrUnknownModuleKind
}

// DescriptionError reports a node that could not be built.
// It matches ErrInvalidDescription and unwraps to the underlying cause.
type DescriptionError struct {
	Path string
	Err  error
}

func (e *DescriptionError) Error() string {
	return fmt.Sprintf("%s: %v: %v", displayPath(e.Path), ErrInvalidDescription, e.Err)
}

// Is reports whether target is ErrInvalidDescription.
func (e *DescriptionError) Is(target error) bool {
	return target == ErrInvalidDescription
}

// Unwrap returns the underlying cause.
func (e *DescriptionError) Unwrap() error {
	return e.Err
}

func invalid(path, format string, args ...any) error {
	return errors.WithStack(&DescriptionError{Path: path, Err: errors.Errorf(format, args...)})
}

func displayPath(path string) string {
	if path == "" {
		return "<root>"
	}
	return path
}

func join(path, field string) string {
	if path == "" {
		return field
	}
	return path + "." + field
}
