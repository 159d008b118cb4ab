package reconcile

import (
	"github.com/vango-dev/vdom/pkg/dom"
	"github.com/vango-dev/vdom/pkg/vdom"
)

// registerNode records r's DOM node under its key in the owning instance.
// Keys are scoped to the instance whose render produced the node.
func (e *Engine) registerNode(r *rnode) {
	in := r.owner
	if in == nil {
		return
	}
	key, ok := r.v.Key()
	if !ok {
		return
	}
	nk := normalizeKey(key)
	if in.nodes == nil {
		in.nodes = make(map[any]*dom.Node)
	}
	old, had := in.nodes[nk]
	if had && old == r.node {
		return
	}
	in.nodes[nk] = r.node
	typ := vdom.NodeAdded
	if had {
		typ = vdom.NodeUpdated
	}
	e.notify(in, vdom.NodeEvent{Type: typ, Key: key, Node: r.node})
}

// unregisterNode forgets r's key unless another node has taken it over in
// the same pass.
func (e *Engine) unregisterNode(r *rnode) {
	in := r.owner
	if in == nil || in.nodes == nil {
		return
	}
	key, ok := r.v.Key()
	if !ok {
		return
	}
	nk := normalizeKey(key)
	if in.nodes[nk] != r.node {
		return
	}
	delete(in.nodes, nk)
	if in.Live() {
		e.notify(in, vdom.NodeEvent{Type: vdom.NodeRemoved, Key: key, Node: r.node})
	}
}

// updateRoot notifies metas when the outermost DOM node of in changed.
func (e *Engine) updateRoot(in *Instance) {
	root := in.rn.firstDOM()
	if root == in.root {
		return
	}
	in.root = root
	e.notify(in, vdom.NodeEvent{Type: vdom.RootChanged, Node: root})
}

func (e *Engine) notify(in *Instance, ev vdom.NodeEvent) {
	if len(in.metas) == 0 {
		return
	}
	e.afterCommit(func() {
		for _, m := range in.metas {
			if m.OnNode != nil {
				m.OnNode(ev)
			}
		}
	})
}
