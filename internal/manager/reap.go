package manager

import "github.com/ehayes2000/shepherd/internal/sessionpair"

// ReapDead runs every tick. A dead active claude is shut down and dropped
// along with its multiplexer; if it was a resumed session it is restarted
// fresh at the same name and path. Dead shell panes are removed, and an
// emptied multiplexer flips the view back to Claude.
func (m *Manager) ReapDead() {
	m.reapActiveClaude()
	m.reapActivePanes()
	m.reapBackground()
}

func (m *Manager) reapActiveClaude() {
	if m.active == nil || m.active.View != sessionpair.ViewClaude {
		return
	}
	if !m.active.Claude.IsDead() {
		return
	}

	if m.active.Resumed {
		name := m.active.Name
		if err := m.restartActive(); err != nil {
			m.Status.Error(err.Error())
			m.Logger.Warn("restart dead session", "name", name, "error", err)
			return
		}
		m.Status.Info("Session restarted")
		m.Logger.Info("restarted dead resumed session", "name", name)
		return
	}

	m.Logger.Info("reaping dead session", "name", m.active.Name)
	m.KillActive()
}

func (m *Manager) reapActivePanes() {
	if m.active == nil || m.active.View != sessionpair.ViewShell {
		return
	}

	mux := m.Multiplexer(m.active.Name)
	if dead := mux.RemoveDeadPanes(); len(dead) > 0 {
		m.Logger.Info("reaped dead shell panes", "session", m.active.Name, "count", len(dead))
	}
	if mux.IsEmpty() {
		m.active.View = sessionpair.ViewClaude
	}
}

// reapBackground drops background pairs whose claude died. Background
// sessions are not auto-restarted; restart-on-death is a property of the
// visible session only.
func (m *Manager) reapBackground() {
	remaining := m.background[:0]
	for _, bg := range m.background {
		if !bg.Claude.IsDead() {
			remaining = append(remaining, bg)
			continue
		}
		m.Logger.Info("reaping dead background session", "name", bg.Name)
		bg.Claude.Shutdown()
		if mux, ok := m.multiplexer[bg.Name]; ok {
			mux.Shutdown()
			delete(m.multiplexer, bg.Name)
		}
		delete(m.trackers, bg.Name)
	}
	m.background = remaining
}

// ScrollBy adjusts the active session's scroll offset by delta (positive
// is up into scrollback), clamped to [0, MaxScrollback].
func (m *Manager) ScrollBy(delta int) {
	if m.active == nil {
		return
	}

	offset := int(m.active.ScrollOffset) + delta
	if offset < 0 {
		offset = 0
	}
	if offset > MaxScrollback {
		offset = MaxScrollback
	}
	m.active.ScrollOffset = uint32(offset)
}

// ResetScroll snaps the active view back to the live bottom. Any
// non-scroll input does this before being forwarded.
func (m *Manager) ResetScroll() {
	if m.active != nil {
		m.active.ScrollOffset = 0
	}
}
