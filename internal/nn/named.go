package nn

import (
	"github.com/born-ml/streamnet/internal/tensor"
)

// NamedParameter pairs a parameter with its dotted path in the graph.
type NamedParameter[B tensor.Backend] struct {
	Name      string // e.g. "Residual-0.module.Conv1d-0.weight"
	Parameter *Parameter[B]
}

// NamedParameters returns m's parameter stream with dotted names, in the same
// order as m.Parameters().
func NamedParameters[B tensor.Backend](m Module[B]) []NamedParameter[B] {
	var out []NamedParameter[B]
	collectNamed(m, "", &out)
	return out
}

func collectNamed[B tensor.Backend](m Module[B], prefix string, out *[]NamedParameter[B]) {
	if c, ok := m.(Container[B]); ok {
		for _, child := range c.Children() {
			collectNamed(child.Module, prefix+child.Name+".", out)
		}
		return
	}
	for _, p := range m.Parameters() {
		*out = append(*out, NamedParameter[B]{Name: prefix + p.Name(), Parameter: p})
	}
}

// StateDict returns a map of dotted parameter names to raw tensors.
func StateDict[B tensor.Backend](m Module[B]) map[string]*tensor.RawTensor {
	named := NamedParameters(m)
	stateDict := make(map[string]*tensor.RawTensor, len(named))
	for _, np := range named {
		stateDict[np.Name] = np.Parameter.Tensor().Raw()
	}
	return stateDict
}
