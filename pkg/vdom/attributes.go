package vdom

import "strings"

// attr creates an Attr with the given key and value.
func attr(key string, value any) Attr {
	return Attr{Key: key, Value: value}
}

// Identity attributes

// ID sets the id attribute.
func ID(id string) Attr { return attr("id", id) }

// Class sets the class attribute, joining multiple classes with spaces.
// The engine owns the whole attribute; use ClassList to share it with
// classes added outside the engine.
func Class(classes ...string) Attr { return attr("class", strings.Join(classes, " ")) }

// StyleAttr sets the style attribute (named to avoid conflict with Style element).
func StyleAttr(style string) Attr { return attr("style", style) }

// Data creates a data-* attribute.
// Example: Data("id", "123") → data-id="123"
func Data(key, value string) Attr { return attr("data-"+key, value) }

// Role sets the role attribute.
func Role(role string) Attr { return attr("role", role) }

// AriaLabel sets the aria-label attribute.
func AriaLabel(label string) Attr { return attr("aria-label", label) }

// AriaHidden sets the aria-hidden attribute.
func AriaHidden(hidden bool) Attr { return attr("aria-hidden", hidden) }

// TabIndex sets the tabindex attribute.
func TabIndex(index int) Attr { return attr("tabindex", index) }

// Hidden sets the hidden attribute.
func Hidden() Attr { return attr("hidden", true) }

// TitleAttr sets the title attribute.
func TitleAttr(title string) Attr { return attr("title", title) }

// Link and form attributes

func Href(url string) Attr         { return attr("href", url) }
func Target(target string) Attr    { return attr("target", target) }
func Name(name string) Attr        { return attr("name", name) }
func Type(t string) Attr           { return attr("type", t) }
func Placeholder(text string) Attr { return attr("placeholder", text) }
func For(id string) Attr           { return attr("for", id) }
func Src(url string) Attr          { return attr("src", url) }
func Alt(text string) Attr         { return attr("alt", text) }

// Boolean attributes. A false or nil value removes the attribute.

func Disabled() Attr { return attr("disabled", true) }
func Readonly() Attr { return attr("readonly", true) }
func Required() Attr { return attr("required", true) }
func Multiple() Attr { return attr("multiple", true) }
func Open() Attr     { return attr("open", true) }

// DisabledIf sets disabled when cond is true and removes it otherwise.
func DisabledIf(cond bool) Attr { return attr("disabled", cond) }

// DOM properties. These are written to the live node rather than to its
// attributes, so user edits show up as diverging live values.

// Value sets the value property.
func Value(value string) Attr { return attr("value", value) }

// Checked sets the checked property.
func Checked(checked bool) Attr { return attr("checked", checked) }

// Selected sets the selected property.
func Selected(selected bool) Attr { return attr("selected", selected) }

// Indeterminate sets the indeterminate property.
func Indeterminate(v bool) Attr { return attr("indeterminate", v) }

// TextContent sets the textContent property.
func TextContent(text string) Attr { return attr("textContent", text) }

// InnerHTML sets the element's markup. The engine does not manage the
// resulting children. Use with caution - can lead to XSS if content is
// user-provided.
func InnerHTML(markup string) Attr { return attr("innerHTML", markup) }

// Engine properties

// ClassList sets the classes property. Only classes applied by the engine
// are removed when they disappear from the list.
func ClassList(classes ...string) Attr { return attr("classes", classes) }

// Classes merges multiple class values into the classes property.
// Accepts string, []string, and map[string]bool.
func Classes(classes ...any) Attr {
	var result []string
	for _, c := range classes {
		switch v := c.(type) {
		case string:
			result = append(result, strings.Fields(v)...)
		case []string:
			for _, s := range v {
				result = append(result, strings.Fields(s)...)
			}
		case map[string]bool:
			for class, include := range v {
				if include && class != "" {
					result = append(result, class)
				}
			}
		}
	}
	return attr("classes", result)
}

// ClassIf adds a class to the classes property conditionally.
func ClassIf(condition bool, class string) Attr {
	if condition {
		return attr("classes", []string{class})
	}
	return Attr{} // Empty attr, will be ignored
}

// Styles sets the styles property. An empty value removes the style.
func Styles(styles map[string]string) Attr { return attr("styles", styles) }

// WithDiffType sets the node's diff policy.
func WithDiffType(dt DiffType) Attr { return attr("diffType", dt) }

// Directives. A bool fires on its false to true transition; a func() bool
// fires on every commit where it returns true.

func Focus(v any) Attr          { return attr("focus", v) }
func Blur(v any) Attr           { return attr("blur", v) }
func Click(v any) Attr          { return attr("click", v) }
func ScrollIntoView(v any) Attr { return attr("scrollIntoView", v) }

// Animations. Values are a transition name or an EnterAnimation,
// ExitAnimation or UpdateAnimation.

func AnimateEnter(v any) Attr  { return attr("enterAnimation", v) }
func AnimateExit(v any) Attr   { return attr("exitAnimation", v) }
func AnimateUpdate(v any) Attr { return attr("updateAnimation", v) }

// AttrIf adds any attribute conditionally.
func AttrIf(condition bool, a Attr) Attr {
	if condition {
		return a
	}
	return Attr{}
}
