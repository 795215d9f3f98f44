package cli

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/diffkit/diffkit/internal/ir"
	"github.com/diffkit/diffkit/internal/opset"
)

// Load error codes.
const (
	ErrCodeNotFound  = "FILE_NOT_FOUND"
	ErrCodeParse     = "PARSE_ERROR"
	ErrCodeUndefined = "UNDEFINED_VALUE"
	ErrCodeRedefined = "REDEFINED_VALUE"
	ErrCodeBadType   = "BAD_TYPE"
)

// LoadError represents an error that occurred during graph loading.
type LoadError struct {
	Code    string
	Message string
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// GraphSpec is the YAML shape of a graph fixture.
type GraphSpec struct {
	Inputs  []ParamSpec `yaml:"inputs"`
	Nodes   []NodeSpec  `yaml:"nodes"`
	Outputs []string    `yaml:"outputs"`
}

// ParamSpec declares one block parameter.
type ParamSpec struct {
	Name         string `yaml:"name"`
	Type         string `yaml:"type"`          // tensor | scalar | bool; default tensor
	RequiresGrad *bool  `yaml:"requires_grad"` // optional gradient flag
}

// NodeSpec declares one node: its op kind, named operands and results, and
// optional attributes.
type NodeSpec struct {
	Op     string      `yaml:"op"`
	In     []string    `yaml:"in"`
	Out    []string    `yaml:"out"`
	Value  string      `yaml:"value"`  // constant payload
	Grad   *bool       `yaml:"grad"`   // observed requires_grad (profiles)
	Blocks []BlockSpec `yaml:"blocks"` // nested control-flow blocks
}

// BlockSpec declares one nested block of a control-flow node.
type BlockSpec struct {
	Params  []ParamSpec `yaml:"params"`
	Nodes   []NodeSpec  `yaml:"nodes"`
	Outputs []string    `yaml:"outputs"`
}

// LoadGraph reads a YAML graph fixture and builds the IR graph.
func LoadGraph(path string) (*ir.Graph, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("graph file not found: %s", path)}
	}
	if err != nil {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: err.Error()}
	}
	var spec GraphSpec
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return nil, &LoadError{Code: ErrCodeParse, Message: err.Error()}
	}
	return BuildGraph(&spec)
}

// BuildGraph constructs the IR graph described by spec.
func BuildGraph(spec *GraphSpec) (*ir.Graph, error) {
	g := ir.NewGraph()
	sc := newScope(nil)
	for _, p := range spec.Inputs {
		t, err := paramType(p)
		if err != nil {
			return nil, err
		}
		v := g.AddInput(t)
		if err := sc.bind(p.Name, v); err != nil {
			return nil, err
		}
	}
	if err := buildNodes(g.Block(), spec.Nodes, sc); err != nil {
		return nil, err
	}
	for _, name := range spec.Outputs {
		v, ok := sc.lookup(name)
		if !ok {
			return nil, undefined(name)
		}
		g.RegisterOutput(v)
	}
	return g, nil
}

func buildNodes(b *ir.Block, specs []NodeSpec, sc *scope) error {
	for _, ns := range specs {
		n := b.Graph().NewNode(ir.Kind(ns.Op), 0)
		for _, name := range ns.In {
			v, ok := sc.lookup(name)
			if !ok {
				return undefined(name)
			}
			n.AddInput(v)
		}
		for _, name := range ns.Out {
			v := n.AddOutput(ir.Tensor())
			if err := sc.bind(name, v); err != nil {
				return err
			}
		}
		if ns.Value != "" {
			n.SetLiteral(ns.Value)
		}
		if ns.Grad != nil {
			n.SetProfiled(ir.TensorRequiresGrad(*ns.Grad))
		}
		opset.Apply(n)
		b.AppendNode(n)
		for _, bs := range ns.Blocks {
			child := n.AddBlock()
			inner := newScope(sc)
			for _, p := range bs.Params {
				t, err := paramType(p)
				if err != nil {
					return err
				}
				v := child.AddParam(t)
				if err := inner.bind(p.Name, v); err != nil {
					return err
				}
			}
			if err := buildNodes(child, bs.Nodes, inner); err != nil {
				return err
			}
			for _, name := range bs.Outputs {
				v, ok := inner.lookup(name)
				if !ok {
					return undefined(name)
				}
				child.RegisterOutput(v)
			}
		}
	}
	return nil
}

func paramType(p ParamSpec) (*ir.Type, error) {
	var t *ir.Type
	switch p.Type {
	case "", "tensor":
		t = ir.Tensor()
	case "scalar":
		t = ir.Scalar()
	case "bool":
		t = &ir.Type{Kind: ir.BoolKind}
	default:
		return nil, &LoadError{Code: ErrCodeBadType, Message: fmt.Sprintf("unknown type %q", p.Type)}
	}
	if p.RequiresGrad != nil {
		t = t.WithRequiresGrad(*p.RequiresGrad)
	}
	return t, nil
}

// scope resolves value names lexically: each nested block binds into its own
// frame and reads through to the enclosing ones, so a block-local name is
// invisible to the outer block and to sibling blocks.
type scope struct {
	parent *scope
	vals   map[string]*ir.Value
}

func newScope(parent *scope) *scope {
	return &scope{parent: parent, vals: make(map[string]*ir.Value)}
}

func (s *scope) lookup(name string) (*ir.Value, bool) {
	for sc := s; sc != nil; sc = sc.parent {
		if v, ok := sc.vals[name]; ok {
			return v, true
		}
	}
	return nil, false
}

func (s *scope) bind(name string, v *ir.Value) error {
	if name == "" {
		return &LoadError{Code: ErrCodeUndefined, Message: "value name must not be empty"}
	}
	if _, dup := s.lookup(name); dup {
		return &LoadError{Code: ErrCodeRedefined, Message: fmt.Sprintf("value %q defined twice", name)}
	}
	v.SetName(name)
	s.vals[name] = v
	return nil
}

func undefined(name string) error {
	return &LoadError{Code: ErrCodeUndefined, Message: fmt.Sprintf("value %q is not defined", name)}
}
