// Package opset is the operation metadata registry: it classifies node
// kinds as differentiable, view-producing, side-effecting, in-place, or
// not-executed, and provides the default differentiability oracle consumed
// by the partitioner.
package opset

import "github.com/diffkit/diffkit/internal/ir"

// Info describes the partitioning-relevant properties of one op kind.
type Info struct {
	// Differentiable marks ops the differentiation engine can handle.
	Differentiable bool

	// View marks ops whose output aliases their first input without
	// computing anything (reshapes, transposes, slices).
	View bool

	// SideEffect marks ops that are ordering barriers: nothing may be
	// reordered across them.
	SideEffect bool

	// InPlace marks ops that write through their first input; the output
	// aliases it.
	InPlace bool

	// Alias marks ops whose output 0 aliases input 0 without being a view
	// (profiling pass-throughs). Views and in-place ops alias implicitly.
	Alias bool

	// NoOp marks ops that never execute at runtime (constants, profiling
	// hooks) and therefore do not count toward a group's size.
	NoOp bool
}

var registry = map[ir.Kind]Info{
	// Structural kinds. Profiles are differentiable pass-throughs: they
	// ride along into groups, and because their output aliases their
	// input they are frequently split back out by alias unfusing.
	ir.KindConstant: {NoOp: true},
	ir.KindProfile:  {NoOp: true, Differentiable: true, Alias: true},
	ir.KindGroup:    {Differentiable: true},
	ir.KindIf:       {},
	ir.KindLoop:     {},

	// Pointwise and linear math.
	"math.add":     {Differentiable: true},
	"math.sub":     {Differentiable: true},
	"math.mul":     {Differentiable: true},
	"math.div":     {Differentiable: true},
	"math.neg":     {Differentiable: true},
	"math.tanh":    {Differentiable: true},
	"math.sigmoid": {Differentiable: true},
	"math.relu":    {Differentiable: true},
	"math.matmul":  {Differentiable: true},

	// In-place accumulation writes through its first operand.
	"math.accum": {InPlace: true},

	// Views alias their operand; differentiable in principle but excluded
	// from merge candidacy because aliased group outputs break the
	// differentiation engine.
	"view.reshape":   {Differentiable: true, View: true},
	"view.transpose": {Differentiable: true, View: true},
	"view.expand":    {Differentiable: true, View: true},
	"view.slice":     {Differentiable: true, View: true},

	// Effectful ops are ordering barriers.
	"io.print": {SideEffect: true},
	"io.write": {SideEffect: true},
	"rng.seed": {SideEffect: true},
}

// Lookup returns the registered metadata for a kind. Unregistered kinds
// report the zero Info: opaque, non-differentiable, effect-free.
func Lookup(k ir.Kind) Info {
	return registry[k]
}

// Register adds or replaces the metadata for a kind. It is intended for
// host systems embedding their own op set.
func Register(k ir.Kind, info Info) {
	registry[k] = info
}

// IsView reports whether the kind produces an alias of its first input.
func IsView(k ir.Kind) bool {
	return registry[k].View
}

// IsAliasing reports whether the kind's output 0 aliases its input 0 for
// any reason: view, in-place write, or pass-through.
func IsAliasing(k ir.Kind) bool {
	info := registry[k]
	return info.View || info.InPlace || info.Alias
}

// IsInPlace reports whether the kind writes through its first input.
func IsInPlace(k ir.Kind) bool {
	return registry[k].InPlace
}

// IsNoOp reports whether the kind never executes at runtime.
func IsNoOp(k ir.Kind) bool {
	return registry[k].NoOp
}

// Apply stamps registry-derived node state (currently the side-effect flag)
// onto a freshly created node. Builders call it so passes can rely on the
// node flag alone.
func Apply(n *ir.Node) {
	if registry[n.Kind()].SideEffect {
		n.SetSideEffect(true)
	}
}

// DefaultOracle answers differentiability from the registry.
type DefaultOracle struct{}

// Differentiable reports whether the differentiation engine handles the
// kind.
func (DefaultOracle) Differentiable(k ir.Kind) bool {
	return registry[k].Differentiable
}
