package reconcile

import (
	"strings"

	"github.com/vango-dev/vdom/pkg/dom"
	"github.com/vango-dev/vdom/pkg/vdom"
)

// rnode is the committed shadow of one virtual node.
type rnode struct {
	v      *vdom.VNode
	node   *dom.Node // own DOM node; nil for components and relocation groups
	parent *rnode
	owner  *Instance // instance whose render produced v
	inst   *Instance // for component nodes

	// children are element children, a relocation group's members, or a
	// component's normalized render output.
	children []*rnode

	// host is the physical parent of a relocation group (document body or
	// head) and the mount target for the root.
	host *dom.Node

	dead    bool // detached from the tree
	tracked bool // listed in the engine's deferred set

	props      vdom.Props // effective properties last applied
	deferred   vdom.Props // last deferred result
	classes    map[string]bool
	listeners  map[string]*listener
	directives map[string]bool
}

func (r *rnode) isComponent() bool { return r.inst != nil }

// isGroup reports whether r is a body or head relocation group.
func (r *rnode) isGroup() bool {
	return r.node == nil && r.inst == nil && r.host != nil && r.parent != nil
}

// ownsDOM reports whether r's children are placed directly in a DOM node
// that r controls.
func (r *rnode) ownsDOM() bool {
	return r.node != nil || r.host != nil
}

// container returns the DOM node r's children are placed in.
func (r *rnode) container() *dom.Node {
	if r.node != nil {
		return r.node
	}
	return r.host
}

// domNodes appends the top-level DOM nodes r contributes to its physical
// parent. Relocation groups contribute none.
func (r *rnode) domNodes(out []*dom.Node) []*dom.Node {
	switch {
	case r.node != nil:
		return append(out, r.node)
	case r.inst != nil:
		for _, c := range r.children {
			out = c.domNodes(out)
		}
	}
	return out
}

// firstDOM returns the first DOM node r contributes, or nil.
func (r *rnode) firstDOM() *dom.Node {
	if r.node != nil {
		return r.node
	}
	if r.inst != nil {
		for _, c := range r.children {
			if n := c.firstDOM(); n != nil {
				return n
			}
		}
	}
	return nil
}

// freeTail reports whether r's child list may end before foreign nodes in
// its container. Mount targets, relocation groups and wrapped DOM nodes
// share their container with content the engine does not own.
func (r *rnode) freeTail() bool {
	return r.node == nil || r.v.Kind == vdom.KindDOM
}

// anchor returns where r's DOM nodes belong: the physical parent, the node
// that must follow them (nil for the end), and whether the end is free.
func (r *rnode) anchor() (host, ref *dom.Node, free bool) {
	if r.ownsDOM() {
		return r.container(), nil, r.freeTail()
	}
	cur := r
	for p := r.parent; p != nil; cur, p = p, p.parent {
		found := false
		for _, sib := range p.children {
			if found {
				if n := sib.firstDOM(); n != nil {
					ref = n
					break
				}
				continue
			}
			found = sib == cur
		}
		if p.ownsDOM() {
			return p.container(), ref, ref == nil && p.freeTail()
		}
		if ref != nil {
			for q := p.parent; q != nil; q = q.parent {
				if q.ownsDOM() {
					return q.container(), ref, false
				}
			}
			return nil, nil, false
		}
	}
	return nil, nil, false
}

// path returns a readable logical position such as "div > ul > li".
func (r *rnode) path() string {
	var parts []string
	for cur := r; cur != nil && cur.parent != nil; cur = cur.parent {
		parts = append(parts, describe(cur.v))
	}
	for i, j := 0, len(parts)-1; i < j; i, j = i+1, j-1 {
		parts[i], parts[j] = parts[j], parts[i]
	}
	return strings.Join(parts, " > ")
}

func describe(v *vdom.VNode) string {
	if v == nil {
		return "?"
	}
	switch v.Kind {
	case vdom.KindText:
		return "#text"
	case vdom.KindComponent:
		if v.Comp.Label != "" {
			return "<" + v.Comp.Label + ">"
		}
		return "<component>"
	case vdom.KindDOM:
		if v.Raw != nil && v.Raw.Node != nil {
			return "dom" + v.Raw.Node.Describe()
		}
		return "dom"
	}
	s := v.Tag
	if k, ok := v.Key(); ok {
		s += "[key=" + stringify(k) + "]"
	}
	return s
}

// walk visits r and its descendants depth first, parents before children.
func (r *rnode) walk(fn func(*rnode)) {
	fn(r)
	for _, c := range r.children {
		c.walk(fn)
	}
}
