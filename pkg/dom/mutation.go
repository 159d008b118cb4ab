package dom

import "fmt"

// MutationOp is the kind of change recorded in the mutation log.
type MutationOp uint8

const (
	OpCreate     MutationOp = iota + 1 // Node created
	OpInsert                           // Node inserted or moved
	OpRemove                           // Node removed from its parent
	OpSetAttr                          // Attribute set
	OpRemoveAttr                       // Attribute removed
	OpSetProp                          // DOM property set
	OpSetText                          // Text node data changed
	OpListen                           // Event listener added
	OpUnlisten                         // Event listener removed
)

// String returns the string representation of the MutationOp.
func (op MutationOp) String() string {
	switch op {
	case OpCreate:
		return "Create"
	case OpInsert:
		return "Insert"
	case OpRemove:
		return "Remove"
	case OpSetAttr:
		return "SetAttr"
	case OpRemoveAttr:
		return "RemoveAttr"
	case OpSetProp:
		return "SetProp"
	case OpSetText:
		return "SetText"
	case OpListen:
		return "Listen"
	case OpUnlisten:
		return "Unlisten"
	default:
		return "Unknown"
	}
}

// Mutation is a single recorded change to the document.
type Mutation struct {
	Op     MutationOp
	Target *Node
	Parent *Node // For Insert/Remove
	Name   string
	Value  string
}

// String renders the mutation for logs and the CLI diff output.
func (m Mutation) String() string {
	switch m.Op {
	case OpInsert:
		return fmt.Sprintf("insert %s into %s", m.Target.Describe(), m.Parent.Describe())
	case OpRemove:
		return fmt.Sprintf("remove %s from %s", m.Target.Describe(), m.Parent.Describe())
	case OpSetAttr:
		return fmt.Sprintf("set %s[%s] = %q", m.Target.Describe(), m.Name, m.Value)
	case OpRemoveAttr:
		return fmt.Sprintf("remove %s[%s]", m.Target.Describe(), m.Name)
	case OpSetProp:
		return fmt.Sprintf("set %s.%s = %s", m.Target.Describe(), m.Name, m.Value)
	case OpSetText:
		return fmt.Sprintf("text %q", m.Value)
	case OpListen, OpUnlisten:
		return fmt.Sprintf("%s %s on%s", m.Op, m.Target.Describe(), m.Name)
	default:
		return fmt.Sprintf("%s %s", m.Op, m.Target.Describe())
	}
}

// Mutations returns a copy of the mutation log.
func (d *Document) Mutations() []Mutation {
	out := make([]Mutation, len(d.log))
	copy(out, d.log)
	return out
}

// MutationCount returns the number of recorded mutations.
func (d *Document) MutationCount() int {
	return len(d.log)
}

// CountOps returns how many mutations of the given kind were recorded.
func (d *Document) CountOps(op MutationOp) int {
	n := 0
	for _, m := range d.log {
		if m.Op == op {
			n++
		}
	}
	return n
}

// ResetMutations clears the mutation log.
func (d *Document) ResetMutations() {
	d.log = d.log[:0]
}

// OnMutation registers fn to observe every mutation as it is recorded.
// The returned function unregisters it.
func (d *Document) OnMutation(fn func(Mutation)) func() {
	d.observerSeq++
	id := d.observerSeq
	d.observers[id] = fn
	return func() { delete(d.observers, id) }
}

func (d *Document) record(m Mutation) {
	if d.muted > 0 {
		return
	}
	d.log = append(d.log, m)
	for _, fn := range d.observers {
		fn(m)
	}
}
