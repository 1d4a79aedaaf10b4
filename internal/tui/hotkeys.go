package tui

import "github.com/gdamore/tcell/v2"

// Hotkey is one global key binding. The same table drives both dispatch
// and the help overlay so the two can never drift apart.
type Hotkey struct {
	Key         tcell.Key
	Label       string
	Description string

	// ShellOnly restricts the binding to Shell view.
	ShellOnly bool

	action func(*TUI)
}

// hotkeys are handled before mode-specific input, in table order.
var hotkeys = []Hotkey{
	{Key: tcell.KeyCtrlH, Label: "Ctrl+H", Description: "Toggle help", action: (*TUI).toggleHelp},
	{Key: tcell.KeyCtrlT, Label: "Ctrl+T", Description: "Toggle shell view", action: (*TUI).toggleShellView},
	{Key: tcell.KeyCtrlN, Label: "Ctrl+N", Description: "New session", action: (*TUI).openNewSession},
	{Key: tcell.KeyCtrlL, Label: "Ctrl+L", Description: "Session selector", action: (*TUI).toggleSelector},
	{Key: tcell.KeyCtrlX, Label: "Ctrl+X", Description: "Kill active session", action: (*TUI).openKillConfirm},
	{Key: tcell.KeyCtrlD, Label: "Ctrl+D", Description: "Quit", action: (*TUI).openQuitConfirm},
	{Key: tcell.KeyCtrlK, Label: "Ctrl+K", Description: "Worktree cleanup", action: (*TUI).openWorktreeCleanup},
	{Key: tcell.KeyCtrlBackslash, Label: "Ctrl+\\", Description: "Split shell pane", ShellOnly: true, action: (*TUI).splitPane},
	{Key: tcell.KeyCtrlW, Label: "Ctrl+W", Description: "Close shell pane", ShellOnly: true, action: (*TUI).closePane},
	{Key: tcell.KeyCtrlY, Label: "Ctrl+Y", Description: "Cycle shell pane", ShellOnly: true, action: (*TUI).cyclePane},
}

// dispatchHotkey runs the matching global binding. Returns true if the key
// was consumed.
func (t *TUI) dispatchHotkey(ev *tcell.EventKey) bool {
	for i := range hotkeys {
		hk := &hotkeys[i]
		if ev.Key() != hk.Key {
			continue
		}
		if hk.ShellOnly && !t.inShellView() {
			return false
		}
		hk.action(t)
		return true
	}
	return false
}
