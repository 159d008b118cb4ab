package reconcile

import (
	"strings"

	"github.com/vango-dev/vdom/pkg/dom"
	"github.com/vango-dev/vdom/pkg/vdom"
)

// cursor walks the existing children of a DOM node during a merge. Nodes
// are consumed in order; nodes skipped over are pruned at the end.
type cursor struct {
	host  *dom.Node
	nodes []*dom.Node
	pos   int
	used  map[*dom.Node]bool
}

func newCursor(host *dom.Node) *cursor {
	return &cursor{host: host, nodes: host.Children(), used: make(map[*dom.Node]bool)}
}

// find consumes the first node at or after the cursor that satisfies match.
func (c *cursor) find(match func(*dom.Node) bool) *dom.Node {
	for i := c.pos; i < len(c.nodes); i++ {
		n := c.nodes[i]
		if c.used[n] || !match(n) {
			continue
		}
		c.used[n] = true
		c.pos = i + 1
		return n
	}
	return nil
}

// prune removes the nodes present when the cursor was created that no
// virtual node adopted.
func (e *Engine) prune(c *cursor) {
	for _, n := range c.nodes {
		if !c.used[n] && n.Parent() == c.host {
			n.Remove()
			e.stats.Removed++
		}
	}
}

// Merge adopts the markup already inside target, for example server
// rendered HTML, as the tree for root. Matching nodes are reused and
// patched in place; unmatched markup is removed and missing nodes are
// created.
func (e *Engine) Merge(target *dom.Node, root *vdom.VNode) error {
	if err := e.checkTarget(target); err != nil {
		return err
	}
	err := e.run(func() {
		e.initial = true
		e.root = &rnode{host: target}
		c := newCursor(target)
		e.root.children = e.mergeList(e.root, normalize([]*vdom.VNode{root}), nil, c)
		e.prune(c)
		e.place(e.root)
		e.initial = false
	})
	if err != nil {
		e.root = nil
	}
	return err
}

func (e *Engine) mergeList(parent *rnode, list []*vdom.VNode, owner *Instance, c *cursor) []*rnode {
	out := make([]*rnode, 0, len(list))
	for _, v := range list {
		out = append(out, e.mergeNode(v, parent, owner, c))
	}
	return out
}

func (e *Engine) mergeNode(v *vdom.VNode, parent *rnode, owner *Instance, c *cursor) *rnode {
	switch v.Kind {
	case vdom.KindText:
		n := c.find((*dom.Node).IsText)
		if n == nil {
			break
		}
		if n.Data() != v.Text {
			n.SetData(v.Text)
		}
		return &rnode{v: v, node: n, parent: parent, owner: owner}
	case vdom.KindComponent:
		r := &rnode{v: v, parent: parent, owner: owner}
		e.createComponent(r, c)
		return r
	case vdom.KindElement:
		if v.Tag == vdom.TagBody || v.Tag == vdom.TagHead {
			break
		}
		n := c.find(func(n *dom.Node) bool {
			return n.IsElement() && strings.EqualFold(n.Tag(), v.Tag)
		})
		if n == nil {
			break
		}
		r := &rnode{v: v, node: n, parent: parent, owner: owner}
		e.adoptElement(r)
		return r
	}
	return e.create(v, parent, owner)
}

func (e *Engine) adoptElement(r *rnode) {
	v := r.v
	props := e.effectiveProps(r, v)
	if _, ok := props["innerHTML"]; !ok {
		c := newCursor(r.node)
		r.children = e.mergeList(r, normalize(v.Children), r.owner, c)
		e.prune(c)
		e.place(r)
	}
	e.applyProps(r, nil, props, v.DiffType(), modeMerge)
	e.applyEvents(r, props)
	r.props = props
	e.registerNode(r)
	e.queueDirectives(r, props)
}
