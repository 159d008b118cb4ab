package vdom

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/vango-dev/vdom/pkg/dom"
)

func TestCreateElement(t *testing.T) {
	t.Run("basic element", func(t *testing.T) {
		node := Div()
		if node.Kind != KindElement {
			t.Errorf("Kind = %v, want KindElement", node.Kind)
		}
		if node.Tag != "div" {
			t.Errorf("Tag = %v, want div", node.Tag)
		}
	})

	t.Run("with attributes", func(t *testing.T) {
		node := Div(Class("card"), ID("main"), nil)
		if node.Props["class"] != "card" {
			t.Errorf("class = %v, want card", node.Props["class"])
		}
		if node.Props["id"] != "main" {
			t.Errorf("id = %v, want main", node.Props["id"])
		}
	})

	t.Run("with children", func(t *testing.T) {
		node := Div(H1("Title"), []*VNode{P(), nil, Span()}, "text", 42)
		var tags []string
		for _, c := range node.Children {
			if c.Kind == KindText {
				tags = append(tags, "#"+c.Text)
			} else {
				tags = append(tags, c.Tag)
			}
		}
		if diff := cmp.Diff([]string{"h1", "p", "span", "#text", "#42"}, tags); diff != "" {
			t.Errorf("children mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("with event handler", func(t *testing.T) {
		node := Button(OnClick(func() {}))
		if _, ok := node.Props["onclick"]; !ok {
			t.Error("onclick handler not set")
		}
	})

	t.Run("metadata elements", func(t *testing.T) {
		node := Head(Title("t"), MetaTag(Name("theme")), Link(Href("/icon.png")))
		var tags []string
		for _, c := range node.Children {
			tags = append(tags, c.Tag)
		}
		if diff := cmp.Diff([]string{"title", "meta", "link"}, tags); diff != "" {
			t.Errorf("children mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("with props map", func(t *testing.T) {
		node := Div(Props{"title": "t", "key": 3})
		if k, _ := node.Key(); k != 3 {
			t.Errorf("Key() = %v, want 3", k)
		}
	})
}

func TestClassesAccumulate(t *testing.T) {
	node := Div(ClassList("a"), ClassIf(true, "b"), ClassIf(false, "c"), Classes("d e", []string{"f"}))
	if diff := cmp.Diff([]string{"a", "b", "d", "e", "f"}, node.Props["classes"]); diff != "" {
		t.Errorf("classes mismatch (-want +got):\n%s", diff)
	}
}

func TestElementExplicitProps(t *testing.T) {
	node := Element("input", Props{"value": "a", "oninput": func() {}})
	if node.Tag != "input" {
		t.Errorf("Tag = %v, want input", node.Tag)
	}
	if node.Props["value"] != "a" {
		t.Errorf("value = %v, want a", node.Props["value"])
	}
}

func TestSVGNamespace(t *testing.T) {
	if got := Svg().Namespace; got != dom.SVGNamespace {
		t.Errorf("Svg().Namespace = %q", got)
	}
	if got := ElementNS(dom.SVGNamespace, "circle").Namespace; got != dom.SVGNamespace {
		t.Errorf("ElementNS().Namespace = %q", got)
	}
	if got := Div().Namespace; got != "" {
		t.Errorf("Div().Namespace = %q, want empty", got)
	}
}

func TestDeferred(t *testing.T) {
	calls := 0
	node := Deferred("div", func() Props { calls++; return Props{"title": "x"} }, ID("d"))
	if node.Deferred == nil {
		t.Fatal("Deferred func not set")
	}
	if calls != 0 {
		t.Errorf("Deferred() evaluated the callback at construction")
	}
	if node.Props["id"] != "d" {
		t.Errorf("id = %v, want d", node.Props["id"])
	}
}

func TestIsVoidElement(t *testing.T) {
	for _, tag := range []string{"br", "input", "img"} {
		if !IsVoidElement(tag) {
			t.Errorf("IsVoidElement(%q) = false", tag)
		}
	}
	if IsVoidElement("div") {
		t.Error("IsVoidElement(div) = true")
	}
}

func TestEventHandlers(t *testing.T) {
	handler := func() {}
	tests := []struct {
		handler EventHandler
		want    string
	}{
		{OnClick(handler), "onclick"},
		{OnInput(handler), "oninput"},
		{OnTouchStart(handler), "ontouchstart"},
		{OnTransitionEnd(handler), "ontransitionend"},
		{On("custom", handler), "oncustom"},
	}
	for _, tt := range tests {
		if tt.handler.Event != tt.want {
			t.Errorf("Event = %v, want %v", tt.handler.Event, tt.want)
		}
	}
}
