package errors

import "sort"

// Template defines a registered error type.
type Template struct {
	Category Category
	Message  string
	Detail   string
}

// registry maps error codes to their templates.
var registry = map[string]Template{
	// Render errors (E200-E219)
	"E201": {
		Category: CategoryRender,
		Message:  "Component render panicked",
		Detail:   "A component's Render method panicked during a render pass. The pass was stopped and the DOM may be partially updated; the engine does not attempt recovery.",
	},
	"E202": {
		Category: CategoryRender,
		Message:  "No transition strategy for named animation",
		Detail:   "An enterAnimation, exitAnimation or updateAnimation property was given as a string, which requires a TransitionStrategy on the renderer.",
	},
	"E203": {
		Category: CategoryRender,
		Message:  "Invalid mount target",
		Detail:   "The renderer needs an element node that belongs to a document.",
	},
	"E204": {
		Category: CategoryRender,
		Message:  "Renderer destroyed",
		Detail:   "The handle was destroyed; Update and Flush are no longer allowed.",
	},
	"E205": {
		Category: CategoryRender,
		Message:  "Invalid innerHTML",
		Detail:   "The innerHTML property could not be parsed as an HTML fragment.",
	},
	"E206": {
		Category: CategoryRender,
		Message:  "Invalid wrapped DOM node",
		Detail:   "vdom.DOM was given a RawDOM without a Node.",
	},

	// Registry errors (E220-E229)
	"E221": {
		Category: CategoryRegistry,
		Message:  "Component label already defined",
		Detail:   "A label can be defined once per registry.",
	},
	"E222": {
		Category: CategoryRegistry,
		Message:  "Component loader failed",
		Detail:   "The asynchronous loader for a component label returned an error; the label stays unresolved and renders nothing.",
	},

	// Config errors (E120-E129)
	"E120": {
		Category: CategoryConfig,
		Message:  "Invalid vdom.json",
		Detail:   "The configuration file could not be read or parsed.",
	},
	"E121": {
		Category: CategoryConfig,
		Message:  "Invalid frame interval",
		Detail:   "render.frameInterval must be a positive Go duration such as \"16ms\".",
	},
	"E122": {
		Category: CategoryConfig,
		Message:  "Invalid port",
		Detail:   "preview.port must be between 0 and 65535.",
	},
	"E123": {
		Category: CategoryConfig,
		Message:  "Invalid debounce",
		Detail:   "preview.debounce must be a positive Go duration such as \"100ms\".",
	},
	"E124": {
		Category: CategoryConfig,
		Message:  "Invalid glob pattern",
		Detail:   "preview.watch and preview.ignore entries must be valid doublestar patterns such as \"**/*.yaml\".",
	},
	"E125": {
		Category: CategoryConfig,
		Message:  "Invalid diagnostics level",
		Detail:   "render.diagnostics must be one of \"debug\", \"warn\" or \"off\".",
	},

	// CLI and file errors (E140-E149)
	"E140": {
		Category: CategoryCLI,
		Message:  "Invalid tree file",
		Detail:   "Tree files are JSON or YAML documents describing elements and text.",
	},
	"E141": {
		Category: CategoryCLI,
		Message:  "Configuration file not found",
		Detail:   "No vdom.json was found in the project directory.",
	},
	"E142": {
		Category: CategoryCLI,
		Message:  "Invalid HTML input",
		Detail:   "The markup could not be parsed.",
	},
	"E143": {
		Category: CategoryCLI,
		Message:  "Merge target not found",
		Detail:   "The XPath selector for the merge target matched no element.",
	},
}

// AllCodes returns every registered error code in sorted order.
func AllCodes() []string {
	codes := make([]string, 0, len(registry))
	for code := range registry {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// Lookup returns the template for an error code.
func Lookup(code string) (Template, bool) {
	t, ok := registry[code]
	return t, ok
}
