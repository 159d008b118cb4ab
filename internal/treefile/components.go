package treefile

import (
	"context"
	"os"
	"path/filepath"

	"github.com/vango-dev/vdom/internal/errors"
	"github.com/vango-dev/vdom/pkg/registry"
	"github.com/vango-dev/vdom/pkg/vdom"
)

// componentExts are tried in order when resolving a label to a file.
var componentExts = []string{".yaml", ".yml", ".json"}

// Components returns a registry that loads every component label used by
// root from a tree file in dir named after the label. Files are read
// asynchronously; labels used by loaded files are defined in turn. A label
// without a file settles as Failed and renders nothing.
//
// Inside a component file, a node with slot: true is replaced by the
// children given at the use site, and a text node "$name" by the prop of
// that name.
func Components(ctx context.Context, dir string, root Node, opts ...registry.Option) *registry.Registry {
	reg := registry.New(opts...)
	Define(ctx, reg, dir, root)
	return reg
}

// Define adds a loader to reg for every label used by n that reg does not
// define yet.
func Define(ctx context.Context, reg *registry.Registry, dir string, n Node) {
	for _, label := range n.Labels() {
		// Already defined labels keep their first loader.
		_ = reg.DefineAsync(ctx, label, func(ctx context.Context) (vdom.Factory, error) {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			tree, err := loadComponent(dir, label)
			if err != nil {
				return nil, err
			}
			Define(ctx, reg, dir, tree)
			return func() vdom.Component { return &fileComponent{tree: tree} }, nil
		})
	}
}

func loadComponent(dir, label string) (Node, error) {
	for _, ext := range componentExts {
		path := filepath.Join(dir, label+ext)
		if _, err := os.Stat(path); err == nil {
			return Load(path)
		}
	}
	return Node{}, errors.New("E140").
		WithPath(filepath.Join(dir, label+".yaml")).
		WithDetail("no tree file for component " + label)
}

// fileComponent renders a tree loaded from a component file.
type fileComponent struct {
	tree     Node
	props    vdom.Props
	children []*vdom.VNode
}

func (c *fileComponent) SetProperties(props vdom.Props, children []*vdom.VNode) {
	c.props = props
	c.children = children
}

func (c *fileComponent) Render() *vdom.VNode {
	return c.tree.build(scope{slot: c.children, vars: c.props})
}
