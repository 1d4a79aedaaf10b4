package tui

import (
	"fmt"
	"os"
	"strings"

	"github.com/gdamore/tcell/v2"

	"github.com/ehayes2000/shepherd/internal/manager"
	"github.com/ehayes2000/shepherd/internal/session"
	"github.com/ehayes2000/shepherd/internal/sessionpair"
	"github.com/ehayes2000/shepherd/internal/vt100"
)

// Styles - use terminal defaults where possible for native feel
var (
	borderStyle = tcell.StyleDefault.Foreground(tcell.ColorBlue)
	selectStyle = tcell.StyleDefault.Reverse(true).Bold(true)
	normalStyle = tcell.StyleDefault
	dimStyle    = tcell.StyleDefault.Dim(true)
	titleStyle  = tcell.StyleDefault.Bold(true)
	errorStyle  = tcell.StyleDefault.Foreground(tcell.ColorRed).Bold(true)
	headerStyle = tcell.StyleDefault.Dim(true).Bold(true)
)

// render draws one frame: the session view inside a border, the status
// line, and any modal overlay.
func (t *TUI) render() {
	t.screen.Clear()
	t.screen.HideCursor()

	contentHeight := t.height - 1 // status line

	t.renderSessionPanel(0, 0, t.width, contentHeight)
	t.renderStatusLine(0, t.height-1, t.width)

	if t.mode != ModeNormal {
		t.renderModal()
	}

	t.screen.Show()
}

// renderSessionPanel draws the active session's emulator inside a border.
func (t *TUI) renderSessionPanel(x, y, width, height int) {
	t.drawBox(x, y, width, height, borderStyle)

	a := t.mgr.Active()
	if a == nil {
		t.drawText(x+2, y+2, "No active session", normalStyle)
		t.drawText(x+2, y+3, "Ctrl+N: new session  Ctrl+H: help", dimStyle)
		return
	}

	viewIndicator := "[claude]"
	if a.View == sessionpair.ViewShell {
		viewIndicator = "[shell]"
	}
	scrollIndicator := ""
	if a.ScrollOffset > 0 {
		scrollIndicator = fmt.Sprintf(" [+%d]", a.ScrollOffset)
	}
	title := fmt.Sprintf(" %s %s%s ", a.Name, viewIndicator, scrollIndicator)
	t.drawText(x+1, y, title, titleStyle)

	innerX, innerY := x+1, y+1
	innerW, innerH := width-2, height-2

	if a.View == sessionpair.ViewShell {
		t.renderShellPanes(innerX, innerY, innerW, innerH)
		return
	}

	t.renderSessionScreen(a.Claude, innerX, innerY, innerW, innerH, false)

	// The cursor belongs to the live bottom; hide it while scrolled up.
	if a.ScrollOffset == 0 {
		screen := a.Claude.GetScreen()
		if cy, cx := screen.CursorY, screen.CursorX; cy < innerH && cx < innerW {
			t.screen.ShowCursor(innerX+cx, innerY+cy)
		}
	}
}

// renderShellPanes draws the multiplexer's panes side-by-side with equal
// widths and single-column dividers, dimming the unfocused ones.
func (t *TUI) renderShellPanes(x, y, width, height int) {
	mux := t.mgr.ActiveMultiplexer()
	if mux == nil || mux.IsEmpty() {
		t.drawText(x+1, y+1, "No shell panes (Ctrl+\\ to split)", dimStyle)
		return
	}

	panes := mux.Panes()
	n := len(panes)
	paneWidth := (width - (n - 1)) / n
	if paneWidth < 1 {
		paneWidth = 1
	}

	for i, pane := range panes {
		paneX := x + i*(paneWidth+1)
		isActive := i == mux.ActiveIndex()

		t.renderSessionScreen(pane, paneX, y, paneWidth, height, !isActive)

		if isActive {
			screen := pane.GetScreen()
			if cy, cx := screen.CursorY, screen.CursorX; cy < height && cx < paneWidth {
				t.screen.ShowCursor(paneX+cx, y+cy)
			}
		}

		if i < n-1 {
			for row := y; row < y+height; row++ {
				t.screen.SetContent(paneX+paneWidth, row, tcell.RuneVLine, nil, borderStyle)
			}
		}
	}
}

// renderSessionScreen copies cells from a session's emulator snapshot to
// the host screen. This is the key function - direct cell rendering.
func (t *TUI) renderSessionScreen(s *session.Session, x, y, width, height int, dim bool) {
	screen := s.GetScreen()
	if screen.Cells == nil {
		t.drawText(x, y, "Terminal initializing...", dimStyle)
		return
	}

	for row := 0; row < height && row < len(screen.Cells); row++ {
		for col := 0; col < width && col < len(screen.Cells[row]); col++ {
			cell := screen.Cells[row][col]

			ch := ' '
			if cell.Contents != "" {
				ch = []rune(cell.Contents)[0]
			}

			style := cellToStyle(cell)
			if dim {
				style = style.Dim(true)
			}
			t.screen.SetContent(x+col, y+row, ch, nil, style)
		}
	}
}

// cellToStyle converts a vt100 cell's attributes to a tcell style.
func cellToStyle(cell vt100.Cell) tcell.Style {
	style := tcell.StyleDefault

	if cell.FG != nil {
		if r, g, b, ok := rgb(cell.FG); ok {
			style = style.Foreground(tcell.NewRGBColor(r, g, b))
		}
	}
	if cell.BG != nil {
		if r, g, b, ok := rgb(cell.BG); ok {
			style = style.Background(tcell.NewRGBColor(r, g, b))
		}
	}

	if cell.Bold {
		style = style.Bold(true)
	}
	if cell.Dim {
		style = style.Dim(true)
	}
	if cell.Italic {
		style = style.Italic(true)
	}
	if cell.Underline {
		style = style.Underline(true)
	}
	if cell.Inverse {
		style = style.Reverse(true)
	}

	return style
}

func rgb(c interface{ RGBA() (r, g, b, a uint32) }) (int32, int32, int32, bool) {
	if c == nil {
		return 0, 0, 0, false
	}
	r, g, b, _ := c.RGBA()
	return int32(r >> 8), int32(g >> 8), int32(b >> 8), true
}

// renderStatusLine draws the bottom bar: the decaying status message in
// the center, key hints on the left, and the session's location on the
// right.
func (t *TUI) renderStatusLine(x, y, width int) {
	hints := "Ctrl+H:help  Ctrl+L:sessions  Ctrl+N:new"
	t.drawText(x, y, hints, dimStyle)

	if msg, level := t.mgr.Status.Current(); msg != "" {
		style := normalStyle
		if level == manager.LevelError {
			style = errorStyle
		}
		start := (width - len(msg)) / 2
		if start < len(hints)+2 {
			start = len(hints) + 2
		}
		t.drawText(start, y, msg, style)
	}

	if a := t.mgr.Active(); a != nil {
		loc := abbreviateHome(a.Path)
		if t.mgr.RepoName != "" {
			loc = fmt.Sprintf("%s  %s", t.mgr.RepoName, loc)
		}
		if len(loc) < width {
			t.drawText(x+width-len(loc)-1, y, loc, dimStyle)
		}
	}
}

// abbreviateHome shortens a path under $HOME to ~/...
func abbreviateHome(path string) string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return path
	}
	if strings.HasPrefix(path, home) {
		return "~" + strings.TrimPrefix(path, home)
	}
	return path
}

// renderModal dispatches to the overlay for the current mode.
func (t *TUI) renderModal() {
	switch t.mode {
	case ModeHelp:
		t.renderHelpModal()
	case ModeSelector:
		t.renderSelectorModal()
	case ModeNewSession:
		t.renderNewSessionModal()
	case ModeKillConfirm:
		name := ""
		if a := t.mgr.Active(); a != nil {
			name = a.Name
		}
		t.renderConfirmModal(" Kill Session ", fmt.Sprintf("Kill session %q?", name))
	case ModeQuitConfirm:
		t.renderConfirmModal(" Quit ", "Quit shepherd? Sessions will be terminated.")
	case ModeWorktreeCleanup:
		t.renderCleanupModal()
	case ModeDeleteConfirm:
		t.renderDeleteConfirmModal()
	}
}

// renderHelpModal lists every hotkey from the registry.
func (t *TUI) renderHelpModal() {
	modalWidth := 46
	modalHeight := len(hotkeys) + 4
	x := (t.width - modalWidth) / 2
	y := (t.height - modalHeight) / 2

	t.fillRect(x, y, modalWidth, modalHeight, normalStyle)
	t.drawBox(x, y, modalWidth, modalHeight, borderStyle)
	t.drawText(x+2, y, " Help ", titleStyle)

	for i, hk := range hotkeys {
		label := hk.Label
		if hk.ShellOnly {
			label += " (shell)"
		}
		line := fmt.Sprintf("  %-16s %s", label, hk.Description)
		t.drawText(x+1, y+2+i, pad(line, modalWidth-2), normalStyle)
	}
}

// renderSelectorModal draws the filterable session list.
func (t *TUI) renderSelectorModal() {
	st := t.selector
	if st == nil {
		return
	}
	rows := st.filtered()

	modalWidth := t.width * 2 / 3
	if modalWidth < 40 {
		modalWidth = 40
	}
	modalHeight := len(rows) + 5
	if modalHeight > t.height-4 {
		modalHeight = t.height - 4
	}
	x := (t.width - modalWidth) / 2
	y := (t.height - modalHeight) / 2

	t.fillRect(x, y, modalWidth, modalHeight, normalStyle)
	t.drawBox(x, y, modalWidth, modalHeight, borderStyle)
	t.drawText(x+2, y, " Sessions ", titleStyle)

	t.drawText(x+2, y+1, "> "+st.query+"_", normalStyle)

	if len(rows) == 0 {
		t.drawText(x+2, y+3, "No sessions", dimStyle)
		return
	}

	for i, e := range rows {
		if i >= modalHeight-5 {
			break
		}

		style := normalStyle
		if i == st.cursor {
			style = selectStyle
		}

		marker := " "
		switch e.Kind {
		case entryLive:
			marker = "*"
			if e.Activity == sessionpair.ActivityStopped {
				marker = "·"
			}
		case entryRecent:
			marker = "r"
		case entryWorktree:
			marker = "w"
		}

		line := fmt.Sprintf(" %s %-20s %s", marker, e.Name, abbreviateHome(e.Path))
		t.drawText(x+1, y+3+i, pad(truncate(line, modalWidth-2), modalWidth-2), style)
	}
}

func (t *TUI) renderNewSessionModal() {
	modalWidth := 50
	modalHeight := 6
	x := (t.width - modalWidth) / 2
	y := (t.height - modalHeight) / 2

	t.fillRect(x, y, modalWidth, modalHeight, normalStyle)
	t.drawBox(x, y, modalWidth, modalHeight, borderStyle)
	t.drawText(x+2, y, " New Session ", titleStyle)
	t.drawText(x+2, y+2, "Name (blank for auto):", normalStyle)

	input := t.nameInput + "_"
	if len(input) > modalWidth-4 {
		input = input[len(input)-(modalWidth-4):]
	}
	t.drawText(x+2, y+3, input, normalStyle)
}

func (t *TUI) renderConfirmModal(title, question string) {
	modalWidth := len(question) + 6
	if modalWidth < 40 {
		modalWidth = 40
	}
	if modalWidth > t.width-4 {
		modalWidth = t.width - 4
	}
	modalHeight := 6
	x := (t.width - modalWidth) / 2
	y := (t.height - modalHeight) / 2

	t.fillRect(x, y, modalWidth, modalHeight, normalStyle)
	t.drawBox(x, y, modalWidth, modalHeight, borderStyle)
	t.drawText(x+2, y, title, titleStyle)
	t.drawText(x+2, y+2, truncate(question, modalWidth-4), normalStyle)
	t.drawText(x+2, y+4, "[y] Yes  [n/Esc] Cancel", dimStyle)
}

// renderCleanupModal draws the worktree checkbox list with ACTIVE markers
// for paths that have live sessions.
func (t *TUI) renderCleanupModal() {
	st := t.cleanup
	if st == nil {
		return
	}
	rows := st.filtered()

	modalWidth := t.width * 2 / 3
	if modalWidth < 46 {
		modalWidth = 46
	}
	modalHeight := len(rows) + 6
	if modalHeight > t.height-4 {
		modalHeight = t.height - 4
	}
	x := (t.width - modalWidth) / 2
	y := (t.height - modalHeight) / 2

	t.fillRect(x, y, modalWidth, modalHeight, normalStyle)
	t.drawBox(x, y, modalWidth, modalHeight, borderStyle)
	t.drawText(x+2, y, " Worktree Cleanup ", titleStyle)

	t.drawText(x+2, y+1, "> "+st.query+"_", normalStyle)

	if len(rows) == 0 {
		t.drawText(x+2, y+3, "No worktrees", dimStyle)
	}

	for i, e := range rows {
		if i >= modalHeight-6 {
			break
		}

		style := normalStyle
		if i == st.cursor {
			style = selectStyle
		}

		box := "[ ]"
		if st.checked[e.Path] {
			box = "[x]"
		}
		active := ""
		if e.Live {
			active = " ACTIVE"
		}

		line := fmt.Sprintf(" %s %-20s%s", box, e.Name, active)
		t.drawText(x+1, y+3+i, pad(truncate(line, modalWidth-2), modalWidth-2), style)
	}

	t.drawText(x+2, y+modalHeight-2, "Enter:toggle  d:delete  Esc:close", headerStyle)
}

func (t *TUI) renderDeleteConfirmModal() {
	st := t.cleanup
	if st == nil {
		return
	}

	names := make([]string, 0, len(st.pending))
	for _, e := range st.pending {
		names = append(names, e.Name)
	}
	question := fmt.Sprintf("Delete %d worktree(s): %s?", len(st.pending), strings.Join(names, ", "))
	t.renderConfirmModal(" Delete Worktrees ", question)
}

// drawBox draws a box with single-line borders.
func (t *TUI) drawBox(x, y, width, height int, style tcell.Style) {
	t.screen.SetContent(x, y, tcell.RuneULCorner, nil, style)
	t.screen.SetContent(x+width-1, y, tcell.RuneURCorner, nil, style)
	t.screen.SetContent(x, y+height-1, tcell.RuneLLCorner, nil, style)
	t.screen.SetContent(x+width-1, y+height-1, tcell.RuneLRCorner, nil, style)

	for i := x + 1; i < x+width-1; i++ {
		t.screen.SetContent(i, y, tcell.RuneHLine, nil, style)
		t.screen.SetContent(i, y+height-1, tcell.RuneHLine, nil, style)
	}
	for i := y + 1; i < y+height-1; i++ {
		t.screen.SetContent(x, i, tcell.RuneVLine, nil, style)
		t.screen.SetContent(x+width-1, i, tcell.RuneVLine, nil, style)
	}
}

// drawText draws text at position.
func (t *TUI) drawText(x, y int, text string, style tcell.Style) {
	for i, r := range text {
		if x+i < t.width {
			t.screen.SetContent(x+i, y, r, nil, style)
		}
	}
}

// fillRect fills a rectangle with spaces.
func (t *TUI) fillRect(x, y, width, height int, style tcell.Style) {
	for row := y; row < y+height && row < t.height; row++ {
		for col := x; col < x+width && col < t.width; col++ {
			t.screen.SetContent(col, row, ' ', nil, style)
		}
	}
}

func pad(s string, width int) string {
	for len(s) < width {
		s += " "
	}
	return s
}

func truncate(s string, width int) string {
	if len(s) <= width {
		return s
	}
	if width <= 3 {
		return s[:width]
	}
	return s[:width-3] + "..."
}
