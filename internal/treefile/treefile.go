// Package treefile reads tree description files.
//
// A tree file describes a virtual tree in YAML or JSON. A node is either a
// string (a text node), a list (a fragment), or a map:
//
//	tag: ul
//	key: menu
//	classes: [nav, dark]
//	styles: {color: red}
//	attrs: {id: main, hidden: true}
//	children:
//	  - {tag: li, key: 1, text: Home}
//	  - {tag: li, key: 2, text: About}
//	  - {component: footer, props: {year: 2024}}
//
// The relocation tags head, body and virtual are accepted, and fragment is
// an alias for virtual. Component nodes name a label resolved through the
// registry built by Components.
package treefile

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/vango-dev/vdom/internal/errors"
	"github.com/vango-dev/vdom/pkg/dom"
	"github.com/vango-dev/vdom/pkg/vdom"
)

// Format is the encoding of a tree file.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// FormatOf returns the format implied by a file extension. Unknown
// extensions are read as YAML, which also accepts JSON documents.
func FormatOf(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return FormatJSON
	}
	return FormatYAML
}

// Node is one node of a tree file.
type Node struct {
	Tag       string            `json:"tag,omitempty" yaml:"tag,omitempty"`
	Namespace string            `json:"ns,omitempty" yaml:"ns,omitempty"`
	Component string            `json:"component,omitempty" yaml:"component,omitempty"`
	Key       any               `json:"key,omitempty" yaml:"key,omitempty"`
	Text      *string           `json:"text,omitempty" yaml:"text,omitempty"`
	Attrs     map[string]any    `json:"attrs,omitempty" yaml:"attrs,omitempty"`
	Props     map[string]any    `json:"props,omitempty" yaml:"props,omitempty"`
	Classes   []string          `json:"classes,omitempty" yaml:"classes,omitempty"`
	Styles    map[string]string `json:"styles,omitempty" yaml:"styles,omitempty"`
	HTML      string            `json:"html,omitempty" yaml:"html,omitempty"`
	DiffType  string            `json:"diffType,omitempty" yaml:"diffType,omitempty"`
	Slot      bool              `json:"slot,omitempty" yaml:"slot,omitempty"`
	Children  []Node            `json:"children,omitempty" yaml:"children,omitempty"`
}

// plain has Node's fields without its decoding methods.
type plain Node

// TextNode returns a text node.
func TextNode(s string) Node {
	return Node{Text: &s}
}

// IsText reports whether n is a bare text node.
func (n Node) IsText() bool {
	return n.Text != nil && n.Tag == "" && n.Component == ""
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (n *Node) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		if value.Tag == "!!null" {
			*n = Node{Tag: vdom.TagVirtual}
			return nil
		}
		*n = TextNode(value.Value)
		return nil
	case yaml.SequenceNode:
		var children []Node
		if err := value.Decode(&children); err != nil {
			return err
		}
		*n = Node{Tag: vdom.TagVirtual, Children: children}
		return nil
	case yaml.MappingNode:
		var p plain
		if err := value.Decode(&p); err != nil {
			return err
		}
		*n = Node(p)
		return nil
	case yaml.AliasNode:
		return n.UnmarshalYAML(value.Alias)
	}
	return errors.New("E140").WithDetail("unexpected YAML node at line " + strconv.Itoa(value.Line))
}

// UnmarshalJSON implements json.Unmarshaler.
func (n *Node) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return errors.New("E140").WithDetail("empty node")
	}
	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*n = TextNode(s)
	case '[':
		var children []Node
		if err := json.Unmarshal(data, &children); err != nil {
			return err
		}
		*n = Node{Tag: vdom.TagVirtual, Children: children}
	case 'n':
		*n = Node{Tag: vdom.TagVirtual}
	default:
		var p plain
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.UseNumber()
		if err := dec.Decode(&p); err != nil {
			return err
		}
		*n = Node(p)
	}
	return nil
}

// Load reads and validates a tree file.
func Load(path string) (Node, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Node{}, errors.New("E140").WithPath(path).Wrap(err)
	}
	n, err := Parse(data, FormatOf(path))
	if err != nil {
		if e, ok := err.(*errors.Error); ok {
			return Node{}, e.WithPath(path)
		}
		return Node{}, err
	}
	return n, nil
}

// Parse decodes and validates a tree document.
func Parse(data []byte, format Format) (Node, error) {
	var n Node
	var err error
	switch format {
	case FormatJSON:
		err = json.Unmarshal(data, &n)
	default:
		err = yaml.Unmarshal(data, &n)
	}
	if err != nil {
		if errors.HasCode(err, "E140") {
			return Node{}, err
		}
		return Node{}, errors.New("E140").
			WithDetail("Failed to parse tree: " + err.Error()).
			Wrap(err)
	}
	if err := n.Validate(); err != nil {
		return Node{}, err
	}
	return n, nil
}

// Validate checks that every node is well formed.
func (n Node) Validate() error {
	return n.validate("")
}

func (n Node) validate(path string) error {
	here := path + "/" + n.label()
	switch {
	case n.Component != "" && n.Tag != "":
		return errors.New("E140").WithDetail(here + ": a node has either tag or component")
	case n.Tag == "" && n.Component == "" && n.Text == nil && !n.Slot:
		return errors.New("E140").WithDetail(here + ": a node needs tag, component or text")
	case n.Tag != "" && !validTag(n.Tag):
		return errors.New("E140").WithDetail(here + ": invalid tag " + n.Tag)
	case n.HTML != "" && len(n.Children) > 0:
		return errors.New("E140").WithDetail(here + ": html and children are exclusive")
	}
	switch vdom.DiffType(n.DiffType) {
	case "", vdom.DiffVDOM, vdom.DiffDOM, vdom.DiffNone:
	default:
		return errors.New("E140").WithDetail(here + ": diffType must be vdom, dom or none")
	}
	for _, c := range n.Children {
		if err := c.validate(here); err != nil {
			return err
		}
	}
	return nil
}

func (n Node) label() string {
	switch {
	case n.Component != "":
		return "@" + n.Component
	case n.Tag != "":
		return n.Tag
	case n.Slot:
		return "slot"
	default:
		return "#text"
	}
}

func validTag(tag string) bool {
	for i, r := range tag {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case i > 0 && (r >= '0' && r <= '9' || r == '-' || r == ':' || r == '_'):
		default:
			return false
		}
	}
	return tag != ""
}

// Build converts n into a virtual node.
func (n Node) Build() *vdom.VNode {
	return n.build(scope{})
}

// scope is the context a node is built in.
type scope struct {
	ns   string
	slot []*vdom.VNode  // replaces slot nodes
	vars map[string]any // replaces "$name" text
}

func (n Node) build(sc scope) *vdom.VNode {
	if n.Slot {
		return vdom.Fragment(sc.slot)
	}
	if n.IsText() {
		return vdom.Text(sc.text(*n.Text))
	}

	props := n.props()
	children := make([]any, 0, len(n.Children)+1)
	if n.Text != nil {
		children = append(children, vdom.Text(sc.text(*n.Text)))
	}

	if n.Component != "" {
		for _, c := range n.Children {
			children = append(children, c.build(sc))
		}
		return vdom.Lazy(n.Component, props, children...)
	}

	tag := n.Tag
	if tag == "fragment" {
		tag = vdom.TagVirtual
	}
	switch {
	case n.Namespace == "svg" || n.Namespace == dom.SVGNamespace || tag == "svg":
		sc.ns = dom.SVGNamespace
	case n.Namespace == "html":
		sc.ns = ""
	case n.Namespace != "":
		sc.ns = n.Namespace
	}
	inner := sc
	if tag == "foreignObject" {
		inner.ns = ""
	}
	for _, c := range n.Children {
		children = append(children, c.build(inner))
	}

	node := vdom.Element(tag, props, children...)
	if sc.ns != "" && tag != vdom.TagVirtual {
		node.Namespace = sc.ns
	}
	return node
}

func (sc scope) text(s string) string {
	if len(s) < 2 || s[0] != '$' || sc.vars == nil {
		return s
	}
	if v, ok := sc.vars[s[1:]]; ok {
		return fmt.Sprint(v)
	}
	return s
}

func (n Node) props() vdom.Props {
	props := vdom.Props{}
	for k, v := range n.Attrs {
		props[k] = normalizeValue(v)
	}
	for k, v := range n.Props {
		props[k] = normalizeValue(v)
	}
	if n.Key != nil {
		props["key"] = normalizeValue(n.Key)
	}
	if len(n.Classes) > 0 {
		props["classes"] = append([]string(nil), n.Classes...)
	}
	if len(n.Styles) > 0 {
		styles := make(map[string]string, len(n.Styles))
		for k, v := range n.Styles {
			styles[k] = v
		}
		props["styles"] = styles
	}
	if n.HTML != "" {
		props["innerHTML"] = n.HTML
	}
	if n.DiffType != "" {
		props["diffType"] = vdom.DiffType(n.DiffType)
	}
	return props
}

// normalizeValue turns decoded numbers into int or float64.
func normalizeValue(v any) any {
	switch x := v.(type) {
	case json.Number:
		if i, err := x.Int64(); err == nil {
			return int(i)
		}
		if f, err := x.Float64(); err == nil {
			return f
		}
		return x.String()
	case float64:
		if x == float64(int(x)) {
			return int(x)
		}
		return x
	}
	return v
}

// Labels returns the component labels used by n, sorted and deduplicated.
func (n Node) Labels() []string {
	seen := make(map[string]bool)
	var walk func(Node)
	walk = func(x Node) {
		if x.Component != "" {
			seen[x.Component] = true
		}
		for _, c := range x.Children {
			walk(c)
		}
	}
	walk(n)
	out := make([]string, 0, len(seen))
	for l := range seen {
		out = append(out, l)
	}
	sort.Strings(out)
	return out
}
