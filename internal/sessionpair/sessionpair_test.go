package sessionpair

import (
	"testing"

	"github.com/ehayes2000/shepherd/internal/session"
)

func newTestSession(t *testing.T) *session.Session {
	t.Helper()
	s, err := session.New("cat", nil, "/tmp", nil, 24, 80, nil)
	if err != nil {
		t.Fatalf("session.New() error = %v", err)
	}
	t.Cleanup(s.Shutdown)
	return s
}

func TestDetachThenAttachRestoresFields(t *testing.T) {
	claude := newTestSession(t)

	active := New("feat-x", "/tmp/wt/repo/feat-x", claude, true)
	active.View = ViewShell
	active.ScrollOffset = 42
	active.Activity = ActivityStopped

	bg := active.Detach()
	if claude.IsAttached() {
		t.Error("claude.IsAttached() = true after Detach")
	}

	restored := bg.Attach()
	if !claude.IsAttached() {
		t.Error("claude.IsAttached() = false after Attach")
	}

	if restored.Name != active.Name || restored.Path != active.Path ||
		restored.View != active.View || restored.ScrollOffset != active.ScrollOffset ||
		restored.Activity != active.Activity || restored.Resumed != active.Resumed {
		t.Errorf("restored pair = %+v, want fields matching original %+v", restored, active)
	}
}
