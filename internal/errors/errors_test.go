package errors

import (
	"bytes"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		code    string
		wantMsg string
		wantCat Category
	}{
		{name: "render panic", code: "E201", wantMsg: "Component render panicked", wantCat: CategoryRender},
		{name: "missing strategy", code: "E202", wantMsg: "No transition strategy for named animation", wantCat: CategoryRender},
		{name: "config", code: "E120", wantMsg: "Invalid vdom.json", wantCat: CategoryConfig},
		{name: "unknown error code", code: "E999", wantMsg: "Unknown error", wantCat: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := New(tt.code)
			if err.Message != tt.wantMsg {
				t.Errorf("Message = %q, want %q", err.Message, tt.wantMsg)
			}
			if err.Category != tt.wantCat {
				t.Errorf("Category = %q, want %q", err.Category, tt.wantCat)
			}
			if err.Code != tt.code {
				t.Errorf("Code = %q, want %q", err.Code, tt.code)
			}
		})
	}
}

func TestError_Error(t *testing.T) {
	err := New("E202").WithPath("div > span")
	want := "E202: No transition strategy for named animation at div > span"
	if got := err.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}

	plain := &Error{Message: "test error"}
	if plain.Error() != "test error" {
		t.Errorf("Error() = %q, want %q", plain.Error(), "test error")
	}
}

func TestWrapAndUnwrap(t *testing.T) {
	cause := fmt.Errorf("boom")
	err := New("E201").Wrap(cause)
	if !stderrors.Is(err, cause) {
		t.Error("errors.Is should find the wrapped cause")
	}
	if !stderrors.Is(err, New("E201")) {
		t.Error("errors.Is should match on code")
	}
	if stderrors.Is(err, New("E202")) {
		t.Error("errors.Is should not match a different code")
	}
}

func TestFromError(t *testing.T) {
	if FromError(nil, "E120") != nil {
		t.Error("FromError(nil) should be nil")
	}

	existing := New("E141")
	if got := FromError(fmt.Errorf("wrapped: %w", existing), "E120"); got != existing {
		t.Errorf("FromError should return the inner *Error, got %v", got)
	}

	got := FromError(fmt.Errorf("plain"), "E120")
	if got.Code != "E120" || got.Wrapped == nil {
		t.Errorf("FromError = %+v, want E120 wrapping the cause", got)
	}
}

func TestFromPanic(t *testing.T) {
	cause := fmt.Errorf("inner")
	tests := []struct {
		name  string
		value any
		want  string
	}{
		{name: "string", value: "oops", want: "E201: Component render panicked: oops"},
		{name: "error", value: cause, want: "E201: Component render panicked: inner"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FromPanic(tt.value, "E201").Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}

	same := New("E202")
	if FromPanic(same, "E201") != same {
		t.Error("FromPanic should pass *Error through")
	}
}

func TestHasCode(t *testing.T) {
	err := fmt.Errorf("pass: %w", New("E201").Wrap(New("E202")))
	if !HasCode(err, "E201") {
		t.Error("HasCode(E201) = false, want true")
	}
	if !HasCode(err, "E202") {
		t.Error("HasCode(E202) = false, want true")
	}
	if HasCode(err, "E203") {
		t.Error("HasCode(E203) = true, want false")
	}
	if HasCode(fmt.Errorf("plain"), "E201") {
		t.Error("HasCode on plain error should be false")
	}
}

func TestFormat(t *testing.T) {
	DisableColors()
	defer EnableColors()

	err := New("E202").
		WithPath("div > li[key=3]").
		WithSuggestion("Pass a TransitionStrategy").
		Wrap(fmt.Errorf("fade-in"))

	out := err.Format()
	for _, want := range []string{"ERROR E202:", "div > li[key=3]", "Cause: fade-in", "Hint: Pass a TransitionStrategy"} {
		if !strings.Contains(out, want) {
			t.Errorf("Format() missing %q in:\n%s", want, out)
		}
	}
}

func TestFormatJSON(t *testing.T) {
	err := New("E120").WithDetail("bad json").Wrap(fmt.Errorf("eof"))

	var decoded map[string]string
	if jerr := json.Unmarshal([]byte(err.FormatJSON()), &decoded); jerr != nil {
		t.Fatalf("FormatJSON produced invalid JSON: %v", jerr)
	}
	if decoded["code"] != "E120" {
		t.Errorf("code = %q, want E120", decoded["code"])
	}
	if decoded["cause"] != "eof" {
		t.Errorf("cause = %q, want eof", decoded["cause"])
	}
}

func TestPrint(t *testing.T) {
	DisableColors()
	defer EnableColors()

	var buf bytes.Buffer
	Print(&buf, fmt.Errorf("plain failure"))
	if !strings.Contains(buf.String(), "ERROR: plain failure") {
		t.Errorf("Print = %q", buf.String())
	}
}

func TestAllCodesSorted(t *testing.T) {
	codes := AllCodes()
	if len(codes) == 0 {
		t.Fatal("expected registered codes")
	}
	for i := 1; i < len(codes); i++ {
		if codes[i-1] >= codes[i] {
			t.Errorf("codes not sorted: %q before %q", codes[i-1], codes[i])
		}
	}
	if _, ok := Lookup("E201"); !ok {
		t.Error("Lookup(E201) should succeed")
	}
}

func TestWrapText(t *testing.T) {
	lines := wrapText("one two three four five six", 9)
	want := []string{"one two", "three", "four five", "six"}
	if len(lines) != len(want) {
		t.Fatalf("wrapText = %q, want %q", lines, want)
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Errorf("line %d = %q, want %q", i, lines[i], want[i])
		}
	}
}
