package multiplexer

import (
	"testing"
	"time"

	"github.com/ehayes2000/shepherd/internal/session"
)

func newPane(t *testing.T) *session.Session {
	t.Helper()
	s, err := session.New("cat", nil, "/tmp", nil, 24, 80, nil)
	if err != nil {
		t.Fatalf("session.New() error = %v", err)
	}
	t.Cleanup(s.Shutdown)
	return s
}

func TestAddFocusesNewPane(t *testing.T) {
	m := New()
	a := newPane(t)
	b := newPane(t)

	m.Add(a)
	m.Add(b)

	if m.ActivePane() != b {
		t.Error("ActivePane() != most recently added pane")
	}
	if m.ActiveIndex() != 1 {
		t.Errorf("ActiveIndex() = %d, want 1", m.ActiveIndex())
	}
}

func TestCloseActiveLastPaneEmptiesMultiplexer(t *testing.T) {
	m := New()
	m.Add(newPane(t))

	closed := m.CloseActive()
	if closed == nil {
		t.Fatal("CloseActive() = nil, want the removed pane")
	}
	if !m.IsEmpty() {
		t.Error("IsEmpty() = false after closing the only pane")
	}
}

func TestFocusWrapsAround(t *testing.T) {
	m := New()
	m.Add(newPane(t))
	m.Add(newPane(t))
	m.Add(newPane(t))

	m.FocusLeft()
	if m.ActiveIndex() != 1 {
		t.Errorf("ActiveIndex() after FocusLeft from 2 = %d, want 1", m.ActiveIndex())
	}

	m.FocusLeft()
	m.FocusLeft()
	if m.ActiveIndex() != 2 {
		t.Errorf("ActiveIndex() after wrapping FocusLeft = %d, want 2", m.ActiveIndex())
	}

	m.FocusRight()
	if m.ActiveIndex() != 0 {
		t.Errorf("ActiveIndex() after wrapping FocusRight = %d, want 0", m.ActiveIndex())
	}
}

func TestRemoveDeadPanesPreservesInvariant(t *testing.T) {
	m := New()
	alive := newPane(t)
	m.Add(newPane(t)) // replaced below by a pane running "true", which exits immediately
	m.Add(alive)

	s, err := session.New("true", nil, "/tmp", nil, 24, 80, nil)
	if err != nil {
		t.Fatalf("session.New() error = %v", err)
	}
	m.panes[0] = s

	deadline := time.After(2 * time.Second)
	for !s.IsDead() {
		select {
		case <-deadline:
			t.Fatal("pane never became dead")
		case <-time.After(10 * time.Millisecond):
		}
	}

	removed := m.RemoveDeadPanes()
	if len(removed) != 1 {
		t.Fatalf("len(removed) = %d, want 1", len(removed))
	}
	if m.IsEmpty() {
		t.Fatal("multiplexer empty after removing only the dead pane")
	}
	if m.ActiveIndex() >= m.Len() {
		t.Errorf("ActiveIndex() = %d, Len() = %d: invariant violated", m.ActiveIndex(), m.Len())
	}
	if m.ActivePane() != alive {
		t.Error("ActivePane() != the surviving pane")
	}
}
