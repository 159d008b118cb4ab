package reconcile

import (
	"fmt"
	"sync/atomic"

	"github.com/vango-dev/vdom/pkg/dom"
	"github.com/vango-dev/vdom/pkg/registry"
	"github.com/vango-dev/vdom/pkg/vdom"
)

// InstanceID addresses a component instance in a Store. IDs of destroyed
// instances never resolve again, even when their slot is reused.
type InstanceID struct {
	index uint32
	gen   uint32
}

// IsZero reports whether id is the zero ID, which never resolves.
func (id InstanceID) IsZero() bool {
	return id.gen == 0
}

// String returns a compact form such as "#3.1".
func (id InstanceID) String() string {
	return fmt.Sprintf("#%d.%d", id.index, id.gen)
}

// Instance is the engine record of a mounted component.
type Instance struct {
	id     InstanceID
	engine *Engine

	comp     vdom.Component
	ref      vdom.CompRef
	props    vdom.Props
	children []*vdom.VNode
	rendered *vdom.VNode

	dirty    bool
	live     atomic.Bool
	pending  bool
	attached bool
	unsub    func()

	metas    []vdom.Meta
	parent   *Instance
	registry *registry.Registry
	depth    int

	rn    *rnode
	nodes map[any]*dom.Node
	root  *dom.Node
}

// ID returns the instance handle.
func (in *Instance) ID() InstanceID { return in.id }

// Component returns the component value, or nil while its label is pending.
func (in *Instance) Component() vdom.Component { return in.comp }

// Depth returns the number of component ancestors.
func (in *Instance) Depth() int { return in.depth }

// Parent returns the enclosing instance, or nil.
func (in *Instance) Parent() *Instance { return in.parent }

// Props returns the properties last handed to the component.
func (in *Instance) Props() vdom.Props { return in.props }

// Rendered returns the cached result of the last render.
func (in *Instance) Rendered() *vdom.VNode { return in.rendered }

// Dirty reports whether a render is pending.
func (in *Instance) Dirty() bool { return in.dirty }

// Pending reports whether the component label is still unresolved.
func (in *Instance) Pending() bool { return in.pending }

// Invalidate implements vdom.Binding.
func (in *Instance) Invalidate() {
	if !in.live.Load() {
		return
	}
	if fn := in.engine.opts.OnInvalidate; fn != nil {
		fn(in.id)
	}
}

// Live implements vdom.Binding.
func (in *Instance) Live() bool { return in.live.Load() }

// Node implements vdom.Binding.
func (in *Instance) Node(key any) *dom.Node {
	return in.nodes[normalizeKey(key)]
}

// Root implements vdom.Binding.
func (in *Instance) Root() *dom.Node { return in.root }

// AddMeta implements vdom.Binding.
func (in *Instance) AddMeta(m vdom.Meta) {
	in.metas = append(in.metas, m)
	if in.attached && m.OnAttach != nil {
		m.OnAttach()
	}
}

type slot struct {
	gen  uint32
	inst *Instance
}

// Store is an arena of component instances. It is owned by one engine and
// only touched inside render passes.
type Store struct {
	slots []slot
	free  []uint32
	count int
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{}
}

func (s *Store) create(in *Instance) InstanceID {
	var idx uint32
	if n := len(s.free); n > 0 {
		idx = s.free[n-1]
		s.free = s.free[:n-1]
	} else {
		idx = uint32(len(s.slots))
		s.slots = append(s.slots, slot{})
	}
	sl := &s.slots[idx]
	sl.gen++
	sl.inst = in
	in.id = InstanceID{index: idx, gen: sl.gen}
	in.live.Store(true)
	s.count++
	return in.id
}

// Get returns the live instance for id, or nil.
func (s *Store) Get(id InstanceID) *Instance {
	if id.IsZero() || int(id.index) >= len(s.slots) {
		return nil
	}
	sl := s.slots[id.index]
	if sl.gen != id.gen || sl.inst == nil {
		return nil
	}
	return sl.inst
}

func (s *Store) destroy(id InstanceID) {
	in := s.Get(id)
	if in == nil {
		return
	}
	in.live.Store(false)
	s.slots[id.index].inst = nil
	s.free = append(s.free, id.index)
	s.count--
}

// Len returns the number of live instances.
func (s *Store) Len() int {
	return s.count
}

// Each calls fn for every live instance in slot order.
func (s *Store) Each(fn func(*Instance)) {
	for _, sl := range s.slots {
		if sl.inst != nil {
			fn(sl.inst)
		}
	}
}
