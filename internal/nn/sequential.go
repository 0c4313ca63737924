package nn

import (
	"strconv"

	"github.com/pkg/errors"

	"github.com/born-ml/streamnet/internal/tensor"
)

// Sequential is a container module that chains multiple modules together.
//
// Each module's output becomes the next module's input. Children are named
// "<tag>-<k>", where k counts earlier children with the same tag:
//
//	seq := nn.NewSequential(conv1, relu, conv2)
//	// children: Conv1d-0, ReLU-0, Conv1d-1
//
// Sequential owns no parameters or state of its own.
type Sequential[B tensor.Backend] struct {
	children []Child[B]
	counter  map[string]int
}

// NewSequential creates a Sequential container, naming each module by its kind.
func NewSequential[B tensor.Backend](modules ...Module[B]) *Sequential[B] {
	s := &Sequential[B]{counter: make(map[string]int)}
	for _, m := range modules {
		s.Add(tagOf(m), m)
	}
	return s
}

// Add appends a module named after tag and returns the assigned name.
func (s *Sequential[B]) Add(tag string, module Module[B]) string {
	name := tag + "-" + strconv.Itoa(s.counter[tag])
	s.counter[tag]++
	s.children = append(s.children, Child[B]{Name: name, Module: module})
	return name
}

// Forward applies all children in order.
func (s *Sequential[B]) Forward(input *tensor.Tensor[B]) (*tensor.Tensor[B], error) {
	output := input
	for _, child := range s.children {
		var err error
		output, err = child.Module.Forward(output)
		if err != nil {
			return nil, errors.WithMessage(err, child.Name)
		}
	}
	return output, nil
}

// Parameters returns the children's parameters in order.
func (s *Sequential[B]) Parameters() []*Parameter[B] {
	var params []*Parameter[B]
	for _, child := range s.children {
		params = append(params, child.Module.Parameters()...)
	}
	return params
}

// Kind returns KindSequential.
func (s *Sequential[B]) Kind() Kind {
	return KindSequential
}

// Children returns the named children in order.
func (s *Sequential[B]) Children() []Child[B] {
	return s.children
}

// Len returns the number of children.
func (s *Sequential[B]) Len() int {
	return len(s.children)
}

// Module returns the child at index i.
func (s *Sequential[B]) Module(i int) Module[B] {
	return s.children[i].Module
}

// Start starts every child.
func (s *Sequential[B]) Start() {
	for _, child := range s.children {
		Start(child.Module)
	}
}

// Finish finishes every child.
func (s *Sequential[B]) Finish() {
	for _, child := range s.children {
		Finish(child.Module)
	}
}

// Reset resets every child.
func (s *Sequential[B]) Reset() {
	for _, child := range s.children {
		Reset(child.Module)
	}
}

// tagOf returns the description tag of m.
func tagOf[B tensor.Backend](m Module[B]) string {
	if g, ok := m.(*GroupNorm[B]); ok {
		return g.Tag()
	}
	return m.Kind().String()
}
