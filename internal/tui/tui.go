// Package tui renders shepherd's terminal interface using tcell for direct
// cell rendering: cells are copied from each session's VT100 emulator
// snapshot into the host screen, preserving exact colors and attributes.
//
// The package is an adapter between the Manager (session orchestration)
// and the local terminal; every state change flows through Manager
// methods from the single event-loop goroutine here.
package tui

import (
	"fmt"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/ehayes2000/shepherd/internal/manager"
	"github.com/ehayes2000/shepherd/internal/sessionpair"
)

// tickInterval is the frame/poll cadence.
const tickInterval = 16 * time.Millisecond

// TUI owns the host terminal and drives the UI state machine.
type TUI struct {
	screen tcell.Screen
	mgr    *manager.Manager

	mode Mode

	// NewSession dialog state.
	nameInput string

	// Selector state; non-nil while ModeSelector is open.
	selector *selectorState

	// WorktreeCleanup state; non-nil while open (DeleteConfirm keeps it).
	cleanup *cleanupState

	width, height int

	quit chan struct{}
}

// New initializes the host terminal (raw mode, alternate screen, mouse
// capture) and returns a TUI. Initialization failure is fatal for the
// process.
func New(mgr *manager.Manager) (*TUI, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, fmt.Errorf("create screen: %w", err)
	}
	if err := screen.Init(); err != nil {
		return nil, fmt.Errorf("init screen: %w", err)
	}

	screen.EnableMouse()
	screen.EnablePaste()
	screen.Clear()

	w, h := screen.Size()

	return &TUI{
		screen: screen,
		mgr:    mgr,
		mode:   ModeNormal,
		width:  w,
		height: h,
		quit:   make(chan struct{}),
	}, nil
}

// Fini restores the host terminal. Safe to call more than once.
func (t *TUI) Fini() {
	t.screen.Fini()
}

// innerDims returns the session area inside the border, always at least
// 1x1 so a degenerate host size is never propagated to the PTYs.
func (t *TUI) innerDims() (rows, cols uint16) {
	r := t.height - 3 // border top/bottom + status line
	c := t.width - 2  // border left/right
	if r < 1 {
		r = 1
	}
	if c < 1 {
		c = 1
	}
	return uint16(r), uint16(c)
}

// Run drives the event loop until quit. Each tick (input or 16ms timeout)
// reaps dead sessions, expires the status bar, draws a frame, and
// publishes the inner area back to the sessions.
func (t *TUI) Run() error {
	defer t.Fini()

	rows, cols := t.innerDims()
	t.mgr.SetTerminalDims(rows, cols)

	// Resume the repo's most recent session, else prompt for a new one.
	if t.mgr.ResumeOnStartup() {
		t.mgr.Status.Info(fmt.Sprintf("Resumed session %s", t.mgr.Active().Name))
	} else {
		t.openNewSession()
	}

	events := make(chan tcell.Event, 16)
	go t.screen.ChannelEvents(events, t.quit)

	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()

	for {
		select {
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			t.handleEvent(ev)
		case <-ticker.C:
		}

		t.tick()

		if t.mgr.ShouldQuit {
			close(t.quit)
			t.mgr.Shutdown()
			return nil
		}
	}
}

// tick runs the per-frame maintenance and draws.
func (t *TUI) tick() {
	t.mgr.ReapDead()

	// A reaped session may have left nothing active; fall back to the
	// most recent background session rather than a blank screen.
	if t.mgr.Active() == nil && len(t.mgr.Background()) > 0 {
		t.mgr.SwitchToSessionByName(t.mgr.Background()[len(t.mgr.Background())-1].Name)
	}

	t.mgr.UpdateActivity()
	t.mgr.Status.Expire()
	t.render()

	rows, cols := t.innerDims()
	t.mgr.SetTerminalDims(rows, cols)
}

// handleEvent dispatches one tcell event.
func (t *TUI) handleEvent(ev tcell.Event) {
	switch ev := ev.(type) {
	case *tcell.EventResize:
		t.width, t.height = ev.Size()
		rows, cols := t.innerDims()
		t.mgr.SetTerminalDims(rows, cols)
		t.screen.Sync()

	case *tcell.EventKey:
		t.handleKey(ev)

	case *tcell.EventMouse:
		t.handleMouse(ev)

	case *tcell.EventPaste:
		// Bracketed paste markers pass through to the child.
		if t.mode == ModeNormal {
			if ev.Start() {
				t.forwardToChild([]byte("\x1b[200~"))
			} else {
				t.forwardToChild([]byte("\x1b[201~"))
			}
		}
	}
}

// inShellView reports whether the active session is showing its shell
// panes.
func (t *TUI) inShellView() bool {
	a := t.mgr.Active()
	return a != nil && a.View == sessionpair.ViewShell
}

// Hotkey and mode-entry actions.

func (t *TUI) toggleHelp() {
	if t.mode == ModeHelp {
		t.mode = ModeNormal
	} else {
		t.mode = ModeHelp
	}
}

func (t *TUI) toggleShellView() {
	a := t.mgr.Active()
	if a == nil {
		return
	}
	if a.View == sessionpair.ViewShell {
		a.View = sessionpair.ViewClaude
		return
	}
	if t.mgr.Multiplexer(a.Name).IsEmpty() {
		if err := t.mgr.SpawnShellPane(); err != nil {
			t.mgr.Status.Error(err.Error())
			return
		}
	}
	a.View = sessionpair.ViewShell
}

func (t *TUI) openNewSession() {
	t.mode = ModeNewSession
	t.nameInput = ""
}

func (t *TUI) toggleSelector() {
	if t.mode == ModeSelector {
		t.closeSelector(false)
		return
	}
	t.openSelector()
}

func (t *TUI) openKillConfirm() {
	if t.mgr.Active() != nil {
		t.mode = ModeKillConfirm
	}
}

func (t *TUI) openQuitConfirm() {
	t.mode = ModeQuitConfirm
}

func (t *TUI) openWorktreeCleanup() {
	t.openCleanup()
}

func (t *TUI) splitPane() {
	if err := t.mgr.SpawnShellPane(); err != nil {
		t.mgr.Status.Error(err.Error())
	}
}

func (t *TUI) closePane() {
	a := t.mgr.Active()
	if a == nil {
		return
	}
	mux := t.mgr.Multiplexer(a.Name)
	if pane := mux.CloseActive(); pane != nil {
		pane.Shutdown()
	}
	if mux.IsEmpty() {
		a.View = sessionpair.ViewClaude
	}
}

func (t *TUI) cyclePane() {
	a := t.mgr.Active()
	if a == nil {
		return
	}
	t.mgr.Multiplexer(a.Name).Cycle()
}
