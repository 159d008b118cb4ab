package dom

import (
	"sort"
	"strconv"
	"strings"

	"golang.org/x/net/html"
)

// Attr returns the value of the named attribute and whether it is present.
func (n *Node) Attr(name string) (string, bool) {
	for _, a := range n.h.Attr {
		if a.Key == name {
			return a.Val, true
		}
	}
	return "", false
}

// HasAttr reports whether the attribute is present.
func (n *Node) HasAttr(name string) bool {
	_, ok := n.Attr(name)
	return ok
}

// SetAttr sets an attribute. Setting the current value is still recorded.
func (n *Node) SetAttr(name, value string) {
	n.setAttr(name, value)
	n.doc.record(Mutation{Op: OpSetAttr, Target: n, Name: name, Value: value})
}

func (n *Node) setAttr(name, value string) {
	for i := range n.h.Attr {
		if n.h.Attr[i].Key == name {
			n.h.Attr[i].Val = value
			return
		}
	}
	n.h.Attr = append(n.h.Attr, html.Attribute{Key: name, Val: value})
}

// RemoveAttr removes an attribute. Removing a missing attribute is a no-op.
func (n *Node) RemoveAttr(name string) {
	for i, a := range n.h.Attr {
		if a.Key == name {
			n.h.Attr = append(n.h.Attr[:i], n.h.Attr[i+1:]...)
			n.doc.record(Mutation{Op: OpRemoveAttr, Target: n, Name: name})
			return
		}
	}
}

// AttrNames returns the attribute names in document order.
func (n *Node) AttrNames() []string {
	names := make([]string, 0, len(n.h.Attr))
	for _, a := range n.h.Attr {
		names = append(names, a.Key)
	}
	return names
}

// Attrs returns a copy of all attributes.
func (n *Node) Attrs() map[string]string {
	out := make(map[string]string, len(n.h.Attr))
	for _, a := range n.h.Attr {
		out[a.Key] = a.Val
	}
	return out
}

// Property returns a live property. value, checked and selected fall back
// to their attributes until first written. textContent, innerHTML, id and
// className reflect the node itself.
func (n *Node) Property(name string) any {
	switch name {
	case "textContent":
		return n.TextContent()
	case "innerHTML":
		return n.InnerHTML()
	case "id":
		v, _ := n.Attr("id")
		return v
	case "className":
		v, _ := n.Attr("class")
		return v
	}
	if v, ok := n.props[name]; ok {
		return v
	}
	switch name {
	case "value":
		v, _ := n.Attr("value")
		return v
	case "checked", "selected", "disabled":
		return n.HasAttr(name)
	case "indeterminate":
		return false
	}
	return nil
}

// SetProperty writes a live property.
func (n *Node) SetProperty(name string, value any) {
	switch name {
	case "textContent":
		n.SetTextContent(stringify(value))
	case "innerHTML":
		if err := n.SetInnerHTML(stringify(value)); err != nil {
			panic(err)
		}
	case "id":
		n.setAttr("id", stringify(value))
	case "className":
		n.setAttr("class", stringify(value))
	default:
		if n.props == nil {
			n.props = make(map[string]any)
		}
		n.props[name] = value
	}
	n.doc.record(Mutation{Op: OpSetProp, Target: n, Name: name, Value: stringify(value)})
}

// SetValue simulates user input by writing the value property without
// recording a mutation.
func (n *Node) SetValue(value string) {
	if n.props == nil {
		n.props = make(map[string]any)
	}
	n.props["value"] = value
}

// Value returns the value property as a string.
func (n *Node) Value() string {
	return stringify(n.Property("value"))
}

// Checked returns the checked property.
func (n *Node) Checked() bool {
	b, _ := n.Property("checked").(bool)
	return b
}

func stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case bool:
		return strconv.FormatBool(t)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case interface{ String() string }:
		return t.String()
	default:
		return ""
	}
}

// Classes returns the class list.
func (n *Node) Classes() []string {
	v, _ := n.Attr("class")
	return strings.Fields(v)
}

// HasClass reports whether the class list contains name.
func (n *Node) HasClass(name string) bool {
	for _, c := range n.Classes() {
		if c == name {
			return true
		}
	}
	return false
}

// AddClass adds classes that are not yet present.
func (n *Node) AddClass(names ...string) {
	list := n.Classes()
	changed := false
	for _, name := range names {
		if name == "" || containsString(list, name) {
			continue
		}
		list = append(list, name)
		changed = true
	}
	if changed {
		n.SetAttr("class", strings.Join(list, " "))
	}
}

// RemoveClass removes classes from the class list.
func (n *Node) RemoveClass(names ...string) {
	list := n.Classes()
	out := list[:0]
	for _, c := range list {
		if !containsString(names, c) {
			out = append(out, c)
		}
	}
	if len(out) == len(n.Classes()) {
		return
	}
	if len(out) == 0 {
		n.RemoveAttr("class")
		return
	}
	n.SetAttr("class", strings.Join(out, " "))
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// Style returns an inline style property.
func (n *Node) Style(name string) (string, bool) {
	v, ok := parseStyle(n.styleAttr())[name]
	return v, ok
}

// Styles returns all inline style properties.
func (n *Node) Styles() map[string]string {
	return parseStyle(n.styleAttr())
}

// SetStyle sets an inline style property. An empty value removes it.
func (n *Node) SetStyle(name, value string) {
	styles := parseStyle(n.styleAttr())
	if value == "" {
		if _, ok := styles[name]; !ok {
			return
		}
		delete(styles, name)
	} else {
		if styles[name] == value {
			return
		}
		styles[name] = value
	}
	if len(styles) == 0 {
		n.RemoveAttr("style")
		return
	}
	n.SetAttr("style", formatStyle(styles))
}

// RemoveStyle removes an inline style property.
func (n *Node) RemoveStyle(name string) {
	n.SetStyle(name, "")
}

func (n *Node) styleAttr() string {
	v, _ := n.Attr("style")
	return v
}

func parseStyle(s string) map[string]string {
	out := make(map[string]string)
	for _, decl := range strings.Split(s, ";") {
		name, value, ok := strings.Cut(decl, ":")
		if !ok {
			continue
		}
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		out[name] = strings.TrimSpace(value)
	}
	return out
}

func formatStyle(styles map[string]string) string {
	names := make([]string, 0, len(styles))
	for k := range styles {
		names = append(names, k)
	}
	sort.Strings(names)
	var b strings.Builder
	for i, k := range names {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(k)
		b.WriteString(": ")
		b.WriteString(styles[k])
		b.WriteByte(';')
	}
	return b.String()
}
