package registry

import (
	"context"
	stderrors "errors"
	"testing"

	"go.uber.org/goleak"

	"github.com/vango-dev/vdom/internal/errors"
	"github.com/vango-dev/vdom/pkg/vdom"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func widget() vdom.Component { return vdom.Func(func() *vdom.VNode { return vdom.Div() }) }

func TestDefine(t *testing.T) {
	r := New()
	if err := r.Define("w", widget); err != nil {
		t.Fatalf("Define() error = %v", err)
	}
	e := r.Lookup("w")
	if e.State != Resolved || e.Factory == nil {
		t.Errorf("Lookup() = %+v", e)
	}

	err := r.Define("w", widget)
	if !errors.HasCode(err, "E221") {
		t.Errorf("duplicate Define() error = %v, want E221", err)
	}
}

func TestLookupMissing(t *testing.T) {
	r := New()
	if got := r.Lookup("nope").State; got != Missing {
		t.Errorf("State = %v, want Missing", got)
	}
	if r.Has("nope") {
		t.Error("Has() = true")
	}
}

func TestChildScope(t *testing.T) {
	parent := New()
	_ = parent.Define("a", widget)
	child := parent.Child()
	_ = child.Define("b", widget)

	if !child.Has("a") {
		t.Error("child cannot see parent label")
	}
	if parent.Has("b") {
		t.Error("parent sees child label")
	}
	if child.Parent() != parent {
		t.Error("Parent() mismatch")
	}
}

func TestDefineAsync(t *testing.T) {
	r := New()
	release := make(chan struct{})
	err := r.DefineAsync(context.Background(), "lazy", func(ctx context.Context) (vdom.Factory, error) {
		<-release
		return widget, nil
	})
	if err != nil {
		t.Fatalf("DefineAsync() error = %v", err)
	}
	if got := r.Lookup("lazy").State; got != Pending {
		t.Fatalf("State = %v, want Pending", got)
	}

	done := make(chan struct{})
	r.Subscribe("lazy", func() { close(done) })
	close(release)
	<-done
	r.Wait()

	if got := r.Lookup("lazy").State; got != Resolved {
		t.Errorf("State = %v, want Resolved", got)
	}
}

func TestDefineAsyncFailure(t *testing.T) {
	r := New()
	boom := stderrors.New("boom")
	_ = r.DefineAsync(context.Background(), "bad", func(context.Context) (vdom.Factory, error) {
		return nil, boom
	})
	r.Wait()

	e := r.Lookup("bad")
	if e.State != Failed {
		t.Fatalf("State = %v, want Failed", e.State)
	}
	if !errors.HasCode(e.Err, "E222") || !stderrors.Is(e.Err, boom) {
		t.Errorf("Err = %v", e.Err)
	}
}

func TestSubscribeFiresOnceAcrossScopes(t *testing.T) {
	parent := New()
	child := parent.Child()

	calls := 0
	child.Subscribe("x", func() { calls++ })
	_ = parent.Define("x", widget)
	_ = child.Define("x", widget)

	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestSubscribeCancel(t *testing.T) {
	r := New()
	calls := 0
	cancel := r.Subscribe("x", func() { calls++ })
	cancel()
	_ = r.Define("x", widget)
	if calls != 0 {
		t.Errorf("calls = %d, want 0", calls)
	}
}

func TestStateString(t *testing.T) {
	tests := []struct {
		s    State
		want string
	}{
		{Missing, "Missing"},
		{Pending, "Pending"},
		{Resolved, "Resolved"},
		{Failed, "Failed"},
		{State(99), "Unknown"},
	}
	for _, tt := range tests {
		if got := tt.s.String(); got != tt.want {
			t.Errorf("State.String() = %v, want %v", got, tt.want)
		}
	}
}
