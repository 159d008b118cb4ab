package main

import (
	"context"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/vango-dev/vdom/internal/treefile"
	"github.com/vango-dev/vdom/pkg/dom"
	"github.com/vango-dev/vdom/pkg/instrument"
	"github.com/vango-dev/vdom/pkg/reconcile"
	"github.com/vango-dev/vdom/pkg/registry"
	"github.com/vango-dev/vdom/pkg/render"
)

// session is a tree file mounted into an in-memory document with its
// components resolved.
type session struct {
	ctx    context.Context
	doc    *dom.Document
	target *dom.Node
	reg    *registry.Registry
	handle *render.Handle
	totals *instrument.Totals
}

// mountTree loads the tree at path and renders it into target, or into a
// fresh div when target is nil. With merge set the existing markup of
// target is adopted. Component files are loaded before it returns.
func mountTree(ctx context.Context, path string, target *dom.Node, merge bool) (*session, error) {
	tree, err := treefile.Load(path)
	if err != nil {
		return nil, err
	}

	if target == nil {
		doc := dom.NewDocument()
		target = doc.CreateElement("div")
		doc.Body().AppendChild(target)
	}
	s := &session{
		ctx:    ctx,
		doc:    target.Document(),
		target: target,
		totals: instrument.NewTotals(),
	}
	s.reg = treefile.Components(ctx, filepath.Dir(path), tree)

	h, err := render.Mount(render.MountOptions{
		Target:   target,
		Registry: s.reg,
		Sync:     true,
		Merge:    merge,
		Observer: s.totals,
		Logger:   slog.Default(),
		OnDiagnostic: func(d reconcile.Diagnostic) {
			slog.Warn("diagnostic", "code", d.Code, "message", d.Message, "path", d.Path)
		},
	}, tree.Build())
	if err != nil {
		s.reg.Wait()
		return nil, err
	}
	s.handle = h
	s.reg.Wait()
	return s, nil
}

// update diffs the tree at path against the mounted one.
func (s *session) update(path string) error {
	tree, err := treefile.Load(path)
	if err != nil {
		return err
	}
	treefile.Define(s.ctx, s.reg, filepath.Dir(path), tree)
	err = s.handle.Update(tree.Build())
	s.reg.Wait()
	return err
}

// html serializes the children of the mount target.
func (s *session) html(cfg render.RendererConfig) (string, error) {
	var sb strings.Builder
	var err error
	s.handle.Do(func() {
		err = render.NewRenderer(cfg).WriteChildren(&sb, s.target)
	})
	return sb.String(), err
}

func (s *session) close() {
	_ = s.handle.Destroy()
	s.reg.Wait()
}
