package vdom

// event creates an EventHandler with the given name and handler.
// The name is prefixed with "on" (e.g., "click" becomes "onclick").
// Handlers are func(*dom.Event) or func().
func event(name string, handler any) EventHandler {
	return EventHandler{Event: "on" + name, Handler: handler}
}

// On handles events of an arbitrary type.
func On(name string, handler any) EventHandler { return event(name, handler) }

// Mouse events

func OnClick(handler any) EventHandler      { return event("click", handler) }
func OnDblClick(handler any) EventHandler   { return event("dblclick", handler) }
func OnMouseDown(handler any) EventHandler  { return event("mousedown", handler) }
func OnMouseUp(handler any) EventHandler    { return event("mouseup", handler) }
func OnMouseMove(handler any) EventHandler  { return event("mousemove", handler) }
func OnMouseEnter(handler any) EventHandler { return event("mouseenter", handler) }
func OnMouseLeave(handler any) EventHandler { return event("mouseleave", handler) }
func OnWheel(handler any) EventHandler      { return event("wheel", handler) }

// Keyboard events

func OnKeyDown(handler any) EventHandler { return event("keydown", handler) }
func OnKeyUp(handler any) EventHandler   { return event("keyup", handler) }

// Form events

func OnInput(handler any) EventHandler  { return event("input", handler) }
func OnChange(handler any) EventHandler { return event("change", handler) }
func OnSubmit(handler any) EventHandler { return event("submit", handler) }
func OnFocus(handler any) EventHandler  { return event("focus", handler) }
func OnBlur(handler any) EventHandler   { return event("blur", handler) }

// Touch and scroll events. These are registered as passive when the renderer
// lists them and the document supports it.

func OnTouchStart(handler any) EventHandler { return event("touchstart", handler) }
func OnTouchMove(handler any) EventHandler  { return event("touchmove", handler) }
func OnTouchEnd(handler any) EventHandler   { return event("touchend", handler) }
func OnScroll(handler any) EventHandler     { return event("scroll", handler) }

// Animation and transition events

func OnAnimationEnd(handler any) EventHandler  { return event("animationend", handler) }
func OnTransitionEnd(handler any) EventHandler { return event("transitionend", handler) }
