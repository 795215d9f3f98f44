package ir

// Kind identifies a node's operation. Kinds use a dotted namespace
// convention: "core.*" for structural operations owned by this package,
// anything else for the host system's op set.
type Kind string

// Structural kinds. Param and Return are the synthetic sentinel nodes
// bounding every block; they never appear in a block's interior.
const (
	KindParam    Kind = "core.param"
	KindReturn   Kind = "core.return"
	KindConstant Kind = "core.constant"
	KindProfile  Kind = "core.profile"
	KindGroup    Kind = "core.group"
	KindIf       Kind = "core.if"
	KindLoop     Kind = "core.loop"
)

// TypeKind discriminates the value type descriptors the partitioner cares
// about. Only tensors carry gradient metadata.
type TypeKind int

const (
	TensorKind TypeKind = iota
	ScalarKind
	BoolKind
)

// String returns the type kind's display name.
func (k TypeKind) String() string {
	switch k {
	case TensorKind:
		return "Tensor"
	case ScalarKind:
		return "Scalar"
	case BoolKind:
		return "Bool"
	default:
		return "Unknown"
	}
}

// Type is a value type descriptor. RequiresGrad is a tri-state: nil means
// the gradient requirement is unknown, otherwise it holds the recorded
// answer. Types are treated as immutable; use WithRequiresGrad to derive.
type Type struct {
	Kind         TypeKind
	RequiresGrad *bool
}

// Tensor returns a tensor type with unknown gradient requirement.
func Tensor() *Type {
	return &Type{Kind: TensorKind}
}

// TensorRequiresGrad returns a tensor type with a recorded gradient
// requirement.
func TensorRequiresGrad(rg bool) *Type {
	return &Type{Kind: TensorKind, RequiresGrad: &rg}
}

// Scalar returns a scalar type.
func Scalar() *Type {
	return &Type{Kind: ScalarKind}
}

// HasGradientFlag reports whether the gradient requirement is recorded.
func (t *Type) HasGradientFlag() bool {
	return t.RequiresGrad != nil
}

// GradientFlag returns the recorded gradient requirement. The second result
// is false when the flag is absent.
func (t *Type) GradientFlag() (bool, bool) {
	if t.RequiresGrad == nil {
		return false, false
	}
	return *t.RequiresGrad, true
}

// WithRequiresGrad returns a copy of t with the gradient requirement set.
func (t *Type) WithRequiresGrad(rg bool) *Type {
	return &Type{Kind: t.Kind, RequiresGrad: &rg}
}

// String renders the descriptor, including the gradient flag when present.
func (t *Type) String() string {
	if t == nil {
		return "Unknown"
	}
	if t.Kind == TensorKind && t.RequiresGrad != nil {
		if *t.RequiresGrad {
			return "Tensor(grad=true)"
		}
		return "Tensor(grad=false)"
	}
	return t.Kind.String()
}
