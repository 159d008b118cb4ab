package reconcile

import "fmt"

// Diagnostic codes. Diagnostics are warnings; the pass always continues.
const (
	DiagAmbiguousSiblings = "W101"
	DiagDuplicateKey      = "W102"
	DiagUnresolvedLabel   = "W103"
	DiagLabelFailed       = "W104"
	DiagBadHandler        = "W105"
	DiagBadStyle          = "W106"
)

// Diagnostic describes a recoverable problem found while reconciling.
type Diagnostic struct {
	Code    string
	Message string
	Path    string // Logical position, e.g. "div > ul > li"
}

// String formats the diagnostic for logs.
func (d Diagnostic) String() string {
	if d.Path == "" {
		return fmt.Sprintf("%s: %s", d.Code, d.Message)
	}
	return fmt.Sprintf("%s: %s (at %s)", d.Code, d.Message, d.Path)
}

func (e *Engine) diag(code, path, format string, args ...any) {
	d := Diagnostic{Code: code, Message: fmt.Sprintf(format, args...), Path: path}
	if e.opts.OnDiagnostic == nil {
		e.log.Warn(d.Message, "code", d.Code, "path", d.Path)
		return
	}
	e.opts.OnDiagnostic(d)
}
