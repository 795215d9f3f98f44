package ir

// Use records one consumption site of a value: the consuming node and the
// input slot it occupies there. Offsets are kept exact across input removal.
type Use struct {
	User   *Node
	Offset int
}

// Value is a dataflow edge endpoint. It is produced by exactly one node (a
// block's param sentinel counts as a producer) and consumed by zero or more
// use-sites.
type Value struct {
	node   *Node
	offset int
	name   string
	typ    *Type
	uses   []Use
}

// Node returns the producing node. For block parameters this is the block's
// param sentinel.
func (v *Value) Node() *Node {
	return v.node
}

// Offset returns the value's output slot on its producing node.
func (v *Value) Offset() int {
	return v.offset
}

// Name returns the value's display name (without the "%" sigil).
func (v *Value) Name() string {
	return v.name
}

// SetName overrides the generated display name.
func (v *Value) SetName(name string) {
	v.name = name
}

// Type returns the value's type descriptor.
func (v *Value) Type() *Type {
	return v.typ
}

// SetType replaces the value's type descriptor.
func (v *Value) SetType(t *Type) {
	v.typ = t
}

// Uses returns a copy of the value's use-sites. The copy is safe to hold
// across mutations of the underlying graph.
func (v *Value) Uses() []Use {
	out := make([]Use, len(v.uses))
	copy(out, v.uses)
	return out
}

// HasUses reports whether any use-site remains.
func (v *Value) HasUses() bool {
	return len(v.uses) > 0
}

// ReplaceAllUsesWith rewires every use-site of v to consume other instead.
func (v *Value) ReplaceAllUsesWith(other *Value) {
	if v == other {
		return
	}
	for _, u := range v.Uses() {
		u.User.ReplaceInput(u.Offset, other)
	}
}

// addUse and removeUse maintain the use list; they are called only from
// Node input mutations so offsets stay consistent.
func (v *Value) addUse(n *Node, offset int) {
	v.uses = append(v.uses, Use{User: n, Offset: offset})
}

func (v *Value) removeUse(n *Node, offset int) {
	for i, u := range v.uses {
		if u.User == n && u.Offset == offset {
			v.uses = append(v.uses[:i], v.uses[i+1:]...)
			return
		}
	}
	panic("ir: removeUse: use-site not found")
}

func (v *Value) shiftUse(n *Node, from, to int) {
	for i, u := range v.uses {
		if u.User == n && u.Offset == from {
			v.uses[i].Offset = to
			return
		}
	}
	panic("ir: shiftUse: use-site not found")
}
