package reconcile

import (
	"fmt"

	"github.com/vango-dev/vdom/pkg/dom"
	"github.com/vango-dev/vdom/pkg/vdom"
)

// normalize flattens virtual elements, drops nil and empty text, and
// coalesces adjacent text into a single node. Caller nodes are never
// modified; coalesced text gets a fresh VNode.
func normalize(list []*vdom.VNode) []*vdom.VNode {
	out := make([]*vdom.VNode, 0, len(list))
	var flatten func([]*vdom.VNode)
	flatten = func(l []*vdom.VNode) {
		for _, v := range l {
			switch {
			case v == nil:
			case v.Kind == vdom.KindElement && v.Tag == vdom.TagVirtual:
				flatten(v.Children)
			case v.Kind == vdom.KindText:
				if v.Text == "" {
					continue
				}
				if n := len(out); n > 0 && out[n-1].Kind == vdom.KindText {
					out[n-1] = &vdom.VNode{Kind: vdom.KindText, Text: out[n-1].Text + v.Text}
					continue
				}
				out = append(out, v)
			default:
				out = append(out, v)
			}
		}
	}
	flatten(list)
	return out
}

// kindKey groups siblings that may be matched with each other.
func kindKey(v *vdom.VNode) string {
	switch v.Kind {
	case vdom.KindText:
		return "t"
	case vdom.KindComponent:
		return "c:" + v.Comp.Identity()
	case vdom.KindDOM:
		var n *dom.Node
		if v.Raw != nil {
			n = v.Raw.Node
		}
		return fmt.Sprintf("d:%p", n)
	}
	return "e:" + v.Namespace + ":" + v.Tag
}

// reconcileChildren matches next against prev, patches matched pairs,
// creates the rest of next and removes the rest of prev. It returns the
// new child list in next order. DOM placement is left to the caller.
func (e *Engine) reconcileChildren(parent *rnode, prev []*rnode, next []*vdom.VNode, owner *Instance) []*rnode {
	prevKeyed := make(map[string]map[any]int)
	prevUnkeyed := make(map[string][]int)
	for i, r := range prev {
		k := kindKey(r.v)
		key, ok := r.v.Key()
		if !ok {
			prevUnkeyed[k] = append(prevUnkeyed[k], i)
			continue
		}
		m := prevKeyed[k]
		if m == nil {
			m = make(map[any]int)
			prevKeyed[k] = m
		}
		nk := normalizeKey(key)
		if _, dup := m[nk]; !dup {
			m[nk] = i
		}
	}

	if len(prev) > 0 {
		e.checkAmbiguous(parent, prevUnkeyed, next)
	}

	used := make([]bool, len(prev))
	seen := make(map[string]map[any]bool)
	cursor := make(map[string]int)
	out := make([]*rnode, 0, len(next))

	for _, v := range next {
		k := kindKey(v)
		var match *rnode
		if key, ok := v.Key(); ok {
			nk := normalizeKey(key)
			if seen[k] == nil {
				seen[k] = make(map[any]bool)
			}
			if seen[k][nk] {
				e.diag(DiagDuplicateKey, parent.path(), "duplicate key %v among %s siblings; the duplicate is created as a new node", key, describe(v))
			} else {
				seen[k][nk] = true
				if i, ok := prevKeyed[k][nk]; ok && !used[i] {
					used[i] = true
					match = prev[i]
				}
			}
		} else if list := prevUnkeyed[k]; cursor[k] < len(list) {
			i := list[cursor[k]]
			cursor[k]++
			used[i] = true
			match = prev[i]
		}

		if match != nil {
			e.patch(match, v)
			out = append(out, match)
		} else {
			out = append(out, e.create(v, parent, owner))
		}
	}

	for i, r := range prev {
		if !used[i] {
			e.remove(r)
		}
	}
	return out
}

// checkAmbiguous reports unkeyed element or component groups whose size
// changed while both sides are non-empty. Such groups are matched by
// position, which may pair the wrong nodes.
func (e *Engine) checkAmbiguous(parent *rnode, prevUnkeyed map[string][]int, next []*vdom.VNode) {
	counts := make(map[string]int)
	var order []string
	sample := make(map[string]*vdom.VNode)
	for _, v := range next {
		if _, ok := v.Key(); ok || v.Kind == vdom.KindText {
			continue
		}
		k := kindKey(v)
		if counts[k] == 0 {
			order = append(order, k)
			sample[k] = v
		}
		counts[k]++
	}
	for _, k := range order {
		before, after := len(prevUnkeyed[k]), counts[k]
		if before == 0 || before == after {
			continue
		}
		e.diag(DiagAmbiguousSiblings, parent.path(),
			"%d unkeyed %s siblings became %d; matching by position, add keys to disambiguate",
			before, describe(sample[k]), after)
	}
}

// place moves the DOM nodes of r's children into next-list order with a
// reverse walk: each node is inserted before the node placed after it.
// Nodes already in position are not touched.
func (e *Engine) place(r *rnode) {
	host, ref, free := r.anchor()
	if host == nil {
		return
	}
	var flat []*dom.Node
	for _, c := range r.children {
		flat = c.domNodes(flat)
	}
	for i := len(flat) - 1; i >= 0; i-- {
		n := flat[i]
		if free && ref == nil && n.Parent() == host {
			ref = n
			continue
		}
		if n.Parent() != host || e.liveNext(n) != ref {
			host.InsertBefore(n, ref)
			e.stats.Moved++
		}
		ref = n
	}
}

// liveNext returns the next sibling of n, skipping nodes waiting for an
// exit animation.
func (e *Engine) liveNext(n *dom.Node) *dom.Node {
	s := n.NextSibling()
	for s != nil && e.exiting[s] {
		s = s.NextSibling()
	}
	return s
}
