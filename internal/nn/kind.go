package nn

import "strings"

// Kind is the closed set of node variants a graph can contain.
type Kind int

// Node variants.
const (
	KindLinear Kind = iota
	KindConv1d
	KindReLU
	KindIdentity
	KindSequential
	KindResidual
	KindGroupNorm
	KindReshape
	KindPermute
)

// Kinds lists every variant in declaration order.
var Kinds = []Kind{
	KindLinear, KindConv1d, KindReLU, KindIdentity, KindSequential,
	KindResidual, KindGroupNorm, KindReshape, KindPermute,
}

// String returns the description tag of the variant.
func (k Kind) String() string {
	switch k {
	case KindLinear:
		return "Linear"
	case KindConv1d:
		return "Conv1d"
	case KindReLU:
		return "ReLU"
	case KindIdentity:
		return "Identity"
	case KindSequential:
		return "Sequential"
	case KindResidual:
		return "Residual"
	case KindGroupNorm:
		return "GroupNorm"
	case KindReshape:
		return "Reshape"
	case KindPermute:
		return "Permute"
	default:
		return "Unknown"
	}
}

// ParseKind maps a description tag to its variant. Any tag starting with
// "GroupNorm" selects KindGroupNorm; every other tag must match exactly.
func ParseKind(tag string) (Kind, bool) {
	if strings.HasPrefix(tag, "GroupNorm") {
		return KindGroupNorm, true
	}
	for _, k := range Kinds {
		if k != KindGroupNorm && k.String() == tag {
			return k, true
		}
	}
	return 0, false
}
