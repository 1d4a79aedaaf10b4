package tui

import (
	"github.com/gdamore/tcell/v2"

	"github.com/ehayes2000/shepherd/internal/session"
)

// handleKey routes one key event: global hotkeys first, then the mode's
// own handler. In Normal mode unclaimed keys become bytes for the child.
func (t *TUI) handleKey(ev *tcell.EventKey) {
	if t.dispatchHotkey(ev) {
		return
	}

	switch t.mode {
	case ModeNormal:
		t.handleNormalKey(ev)
	case ModeHelp:
		t.handleHelpKey(ev)
	case ModeSelector:
		t.handleSelectorKey(ev)
	case ModeNewSession:
		t.handleNewSessionKey(ev)
	case ModeKillConfirm:
		t.handleKillConfirmKey(ev)
	case ModeQuitConfirm:
		t.handleQuitConfirmKey(ev)
	case ModeWorktreeCleanup:
		t.handleCleanupKey(ev)
	case ModeDeleteConfirm:
		t.handleDeleteConfirmKey(ev)
	}
}

// handleNormalKey forwards input verbatim to the visible child. Any
// keyboard input snaps the view back to the live bottom first.
func (t *TUI) handleNormalKey(ev *tcell.EventKey) {
	if a := t.mgr.Active(); a != nil && a.ScrollOffset > 0 {
		t.mgr.ResetScroll()
		t.applyScroll()
	}
	if data := keyToBytes(ev); data != nil {
		t.forwardToChild(data)
	}
}

// forwardToChild writes bytes to the claude child or, in shell view, the
// focused pane. Write errors are tolerated; the reap path reports death.
func (t *TUI) forwardToChild(data []byte) {
	a := t.mgr.Active()
	if a == nil {
		return
	}

	var target *session.Session
	if t.inShellView() {
		target = t.mgr.Multiplexer(a.Name).ActivePane()
	} else {
		target = a.Claude
	}
	if target == nil {
		return
	}

	if err := target.WriteInput(data); err != nil {
		t.mgr.Logger.Debug("write to child", "session", target.Name, "error", err)
	}
}

// handleMouse intercepts wheel events to drive the scrollback and drops
// every other mouse event; nothing mouse-shaped ever reaches the child.
func (t *TUI) handleMouse(ev *tcell.EventMouse) {
	if t.mode != ModeNormal {
		return
	}

	switch {
	case ev.Buttons()&tcell.WheelUp != 0:
		t.mgr.ScrollBy(1)
		t.applyScroll()
	case ev.Buttons()&tcell.WheelDown != 0:
		t.mgr.ScrollBy(-1)
		t.applyScroll()
	}
}

// applyScroll pushes the pair's scroll offset into the visible emulator.
func (t *TUI) applyScroll() {
	a := t.mgr.Active()
	if a == nil {
		return
	}
	a.Claude.SetScrollback(int(a.ScrollOffset))
}

func (t *TUI) handleHelpKey(ev *tcell.EventKey) {
	// Any key closes the overlay.
	t.mode = ModeNormal
}

func (t *TUI) handleKillConfirmKey(ev *tcell.EventKey) {
	switch {
	case ev.Key() == tcell.KeyEscape:
		t.mode = ModeNormal
	case ev.Key() == tcell.KeyRune && ev.Rune() == 'y':
		t.mgr.KillActive()
		t.mode = ModeNormal
	case ev.Key() == tcell.KeyRune && ev.Rune() == 'n':
		t.mode = ModeNormal
	}
}

func (t *TUI) handleQuitConfirmKey(ev *tcell.EventKey) {
	switch {
	case ev.Key() == tcell.KeyEscape:
		t.mode = ModeNormal
	case ev.Key() == tcell.KeyRune && ev.Rune() == 'y':
		t.mgr.Quit()
	case ev.Key() == tcell.KeyRune && ev.Rune() == 'n':
		t.mode = ModeNormal
	}
}

func (t *TUI) handleNewSessionKey(ev *tcell.EventKey) {
	switch ev.Key() {
	case tcell.KeyEscape:
		t.mode = ModeNormal
		t.nameInput = ""
	case tcell.KeyEnter:
		t.submitNewSession()
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		if len(t.nameInput) > 0 {
			t.nameInput = t.nameInput[:len(t.nameInput)-1]
		}
	case tcell.KeyRune:
		t.nameInput += string(ev.Rune())
	}
}

// submitNewSession runs the worktree workflow for the typed name (or an
// auto-generated one). On failure the dialog stays open for a retry.
func (t *TUI) submitNewSession() {
	name := t.nameInput
	if name == "" {
		name = t.mgr.NextSessionName()
	}

	if err := t.mgr.NewSession(name); err != nil {
		t.mgr.Status.Error(err.Error())
		t.mgr.Logger.Warn("new session", "name", name, "error", err)
		return
	}

	t.mode = ModeNormal
	t.nameInput = ""
}

// keyToBytes translates a tcell key event into the bytes a terminal would
// send.
func keyToBytes(ev *tcell.EventKey) []byte {
	switch ev.Key() {
	case tcell.KeyEnter:
		return []byte{'\r'}
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		return []byte{0x7f}
	case tcell.KeyTab:
		return []byte{'\t'}
	case tcell.KeyBacktab:
		return []byte("\x1b[Z")
	case tcell.KeyEscape:
		return []byte{0x1b}
	case tcell.KeyUp:
		return []byte("\x1b[A")
	case tcell.KeyDown:
		return []byte("\x1b[B")
	case tcell.KeyRight:
		return []byte("\x1b[C")
	case tcell.KeyLeft:
		return []byte("\x1b[D")
	case tcell.KeyDelete:
		return []byte("\x1b[3~")
	case tcell.KeyInsert:
		return []byte("\x1b[2~")
	case tcell.KeyPgUp:
		return []byte("\x1b[5~")
	case tcell.KeyPgDn:
		return []byte("\x1b[6~")
	case tcell.KeyHome:
		return []byte("\x1b[H")
	case tcell.KeyEnd:
		return []byte("\x1b[F")
	case tcell.KeyCtrlC:
		return []byte{3}
	case tcell.KeyCtrlZ:
		return []byte{26}
	case tcell.KeyRune:
		return []byte(string(ev.Rune()))
	default:
		// Remaining control keys map directly to their byte value.
		if k := ev.Key(); k >= tcell.KeyCtrlA && k <= tcell.KeyCtrlZ {
			return []byte{byte(k)}
		}
		return nil
	}
}
