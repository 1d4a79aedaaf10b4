// Package multiplexer implements the per-session shell pane list: an
// ordered set of attached shell sessions with a focused pane, split/close/
// cycle operations, and dead-pane reaping.
package multiplexer

import "github.com/ehayes2000/shepherd/internal/session"

// Multiplexer is an ordered list of shell panes plus an active-pane index.
// The zero value is a valid empty Multiplexer.
type Multiplexer struct {
	panes      []*session.Session
	activePane int
}

// New returns an empty Multiplexer.
func New() *Multiplexer {
	return &Multiplexer{}
}

// Add appends a new pane and focuses it.
func (m *Multiplexer) Add(s *session.Session) {
	m.panes = append(m.panes, s)
	m.activePane = len(m.panes) - 1
}

// IsEmpty reports whether the multiplexer has no panes.
func (m *Multiplexer) IsEmpty() bool {
	return len(m.panes) == 0
}

// Len returns the number of panes.
func (m *Multiplexer) Len() int {
	return len(m.panes)
}

// Panes returns the panes in order. Callers must not mutate the slice.
func (m *Multiplexer) Panes() []*session.Session {
	return m.panes
}

// ActiveIndex returns the currently focused pane's index.
func (m *Multiplexer) ActiveIndex() int {
	return m.activePane
}

// CloseActive removes and returns the focused pane, clamping the active
// index to the new length. Returns nil if the multiplexer was already
// empty.
func (m *Multiplexer) CloseActive() *session.Session {
	if len(m.panes) == 0 {
		return nil
	}

	s := m.panes[m.activePane]
	m.panes = append(m.panes[:m.activePane], m.panes[m.activePane+1:]...)

	if m.activePane >= len(m.panes) && len(m.panes) > 0 {
		m.activePane = len(m.panes) - 1
	}
	return s
}

// FocusLeft moves the focus one pane left, wrapping around.
func (m *Multiplexer) FocusLeft() {
	if len(m.panes) == 0 {
		return
	}
	if m.activePane == 0 {
		m.activePane = len(m.panes) - 1
	} else {
		m.activePane--
	}
}

// FocusRight moves the focus one pane right, wrapping around.
func (m *Multiplexer) FocusRight() {
	if len(m.panes) == 0 {
		return
	}
	m.activePane = (m.activePane + 1) % len(m.panes)
}

// Cycle advances focus to the next pane, wrapping around.
func (m *Multiplexer) Cycle() {
	m.FocusRight()
}

// ActivePane returns the focused pane, or nil if empty.
func (m *Multiplexer) ActivePane() *session.Session {
	if len(m.panes) == 0 {
		return nil
	}
	return m.panes[m.activePane]
}

// RemoveDeadPanes removes every pane whose session reports IsDead, shuts
// each down, and adjusts the active index to preserve the invariant
// active < len whenever the multiplexer is non-empty. Returns the removed
// panes so the caller can finish any other cleanup.
func (m *Multiplexer) RemoveDeadPanes() []*session.Session {
	var dead []*session.Session

	i := 0
	for i < len(m.panes) {
		if m.panes[i].IsDead() {
			dead = append(dead, m.panes[i])
			m.panes = append(m.panes[:i], m.panes[i+1:]...)
			if m.activePane > 0 && m.activePane >= i {
				m.activePane--
			}
			continue
		}
		i++
	}

	for _, s := range dead {
		s.Shutdown()
	}
	return dead
}

// Shutdown tears down every pane. Used when the owning session pair is
// killed or the manager quits.
func (m *Multiplexer) Shutdown() {
	for _, s := range m.panes {
		s.Shutdown()
	}
	m.panes = nil
	m.activePane = 0
}
