package reconcile

import (
	"github.com/vango-dev/vdom/internal/errors"
	"github.com/vango-dev/vdom/pkg/dom"
	"github.com/vango-dev/vdom/pkg/vdom"
)

// propMode says what applyProps compares the next properties against.
type propMode uint8

const (
	modeCreate propMode = iota // fresh node, nothing to compare
	modeUpdate                 // previous commit, per diffType
	modeMerge                  // adopted markup, live values, undeclared attributes removed
	modeAdopt                  // wrapped DOM node, live values
)

// reservedProps are consumed by the engine and never written to the DOM.
var reservedProps = map[string]bool{
	"key":             true,
	"diffType":        true,
	"classes":         true,
	"styles":          true,
	"focus":           true,
	"blur":            true,
	"click":           true,
	"scrollIntoView":  true,
	"enterAnimation":  true,
	"exitAnimation":   true,
	"updateAnimation": true,
}

// domProperties are written as live properties instead of attributes.
var domProperties = map[string]bool{
	"value":         true,
	"checked":       true,
	"selected":      true,
	"indeterminate": true,
	"textContent":   true,
	"innerHTML":     true,
}

func isReserved(k string) bool {
	return reservedProps[k] || vdom.IsEventKey(k)
}

// applyProps diffs attributes, properties, classes and styles of r's node.
// It reports whether anything was written.
func (e *Engine) applyProps(r *rnode, prev, next vdom.Props, dt vdom.DiffType, mode propMode) bool {
	n := r.node
	changed := false

	for k, nv := range next {
		if isReserved(k) {
			continue
		}
		pv, had := prev[k]
		var write bool
		switch {
		case mode == modeCreate:
			write = domProperties[k] || !isAbsent(nv)
		case mode == modeMerge, mode == modeAdopt:
			write = !liveMatches(n, k, nv)
		case dt == vdom.DiffNone:
			write = true
		case dt == vdom.DiffDOM:
			write = (!had || !sameValue(pv, nv)) && !liveMatches(n, k, nv)
		default:
			write = !had || !sameValue(pv, nv)
		}
		if write {
			e.writeProp(r, k, nv)
			changed = true
		}
	}

	for k := range prev {
		if isReserved(k) {
			continue
		}
		if _, ok := next[k]; ok {
			continue
		}
		if dt == vdom.DiffDOM && liveMatches(n, k, nil) {
			continue
		}
		clearProp(n, k)
		changed = true
	}

	if mode == modeMerge {
		for _, name := range n.AttrNames() {
			if name == "class" || name == "style" {
				continue
			}
			if _, ok := next[name]; ok {
				continue
			}
			n.RemoveAttr(name)
			changed = true
		}
	}

	if e.applyClasses(r, next["classes"], dt, mode) {
		changed = true
	}
	if e.applyStyles(r, prev["styles"], next["styles"], dt, mode) {
		changed = true
	}
	return changed
}

func isAbsent(v any) bool {
	if v == nil {
		return true
	}
	b, ok := v.(bool)
	return ok && !b
}

func truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case string:
		return t != ""
	}
	return true
}

// liveMatches reports whether the live DOM already reflects v for key k.
func liveMatches(n *dom.Node, k string, v any) bool {
	if domProperties[k] {
		live := n.Property(k)
		switch k {
		case "checked", "selected", "indeterminate":
			return truthy(live) == truthy(v)
		default:
			return stringify(live) == stringify(v)
		}
	}
	val, present := n.Attr(k)
	if isAbsent(v) {
		return !present
	}
	if b, ok := v.(bool); ok && b {
		return present
	}
	return present && val == stringify(v)
}

func (e *Engine) writeProp(r *rnode, k string, v any) {
	n := r.node
	if domProperties[k] {
		switch k {
		case "checked", "selected", "indeterminate":
			n.SetProperty(k, truthy(v))
		case "innerHTML":
			if err := n.SetInnerHTML(stringify(v)); err != nil {
				e.fail(errors.FromError(err, "E205").WithPath(r.path()))
			}
		default:
			n.SetProperty(k, stringify(v))
		}
		return
	}
	switch t := v.(type) {
	case nil:
		n.RemoveAttr(k)
	case bool:
		if t {
			n.SetAttr(k, "")
		} else {
			n.RemoveAttr(k)
		}
	default:
		n.SetAttr(k, stringify(v))
	}
}

func clearProp(n *dom.Node, k string) {
	if !domProperties[k] {
		n.RemoveAttr(k)
		return
	}
	switch k {
	case "checked", "selected", "indeterminate":
		n.SetProperty(k, false)
	case "innerHTML":
		n.ReplaceChildren()
	default:
		n.SetProperty(k, "")
	}
}

// applyClasses keeps the engine-controlled classes of r in sync. Classes
// the engine never applied are left alone.
func (e *Engine) applyClasses(r *rnode, v any, dt vdom.DiffType, mode propMode) bool {
	next := classSet(v)
	if len(next) == 0 && len(r.classes) == 0 {
		return false
	}
	if r.classes == nil {
		r.classes = make(map[string]bool, len(next))
	}
	n := r.node
	changed := false
	declared := make(map[string]bool, len(next))
	var add []string
	for _, c := range next {
		declared[c] = true
		if n.HasClass(c) {
			continue
		}
		if mode != modeUpdate || dt == vdom.DiffNone || !r.classes[c] {
			add = append(add, c)
		}
	}
	if len(add) > 0 {
		n.AddClass(add...)
		changed = true
	}
	var remove []string
	for c := range r.classes {
		if !declared[c] {
			delete(r.classes, c)
			if n.HasClass(c) {
				remove = append(remove, c)
			}
		}
	}
	if len(remove) > 0 {
		n.RemoveClass(remove...)
		changed = true
	}
	for c := range declared {
		r.classes[c] = true
	}
	return changed
}

func (e *Engine) applyStyles(r *rnode, prevV, nextV any, dt vdom.DiffType, mode propMode) bool {
	if prevV == nil && nextV == nil {
		return false
	}
	prev, _ := styleMap(prevV)
	next, ok := styleMap(nextV)
	if !ok {
		e.diag(DiagBadStyle, r.path(), "styles values must be strings")
	}
	n := r.node
	changed := false
	for name, val := range next {
		live, _ := n.Style(name)
		var write bool
		switch {
		case mode != modeUpdate, dt == vdom.DiffNone:
			write = live != val
		case dt == vdom.DiffDOM:
			write = prev[name] != val && live != val
		default:
			write = prev[name] != val
		}
		if write {
			n.SetStyle(name, val)
			changed = true
		}
	}
	for name := range prev {
		if _, ok := next[name]; ok {
			continue
		}
		if _, present := n.Style(name); present {
			n.RemoveStyle(name)
			changed = true
		}
	}
	return changed
}
