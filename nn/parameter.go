// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package nn

import (
	"github.com/born-ml/streamnet/internal/nn"
	"github.com/born-ml/streamnet/tensor"
)

// Parameter is a named learnable tensor of a node.
//
// Note: Parameter is implemented as a type alias because it is used as a return type
// in the Module interface. Go's type system requires exact type matches for interface
// implementations, so we cannot use an interface here.
type Parameter[B tensor.Backend] = nn.Parameter[B]

// NamedParameter is a parameter with its dotted path in the graph, such as
// "Residual-0.module.Conv1d-0.weight".
type NamedParameter[B tensor.Backend] = nn.NamedParameter[B]

// NamedParameters returns m's parameter stream with dotted names, in
// traversal order.
func NamedParameters[B tensor.Backend](m Module[B]) []NamedParameter[B] {
	return nn.NamedParameters(m)
}

// StateDict returns m's parameters keyed by dotted name.
func StateDict[B tensor.Backend](m Module[B]) map[string]*tensor.RawTensor {
	return nn.StateDict(m)
}

// Bind copies params into m's parameters in traversal order. Nothing is
// copied unless the streams have the same length and every shape matches;
// errors then match ErrNonConformant.
func Bind[B tensor.Backend](m Module[B], params []*tensor.RawTensor) error {
	return nn.Bind(m, params)
}
