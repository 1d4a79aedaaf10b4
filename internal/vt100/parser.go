// Package vt100 wraps a VT100/ANSI terminal emulator for screen-state
// tracking.
//
// It wraps github.com/charmbracelet/x/vt, which handles the alternate
// screen buffer (CSI ?1049h/l), carriage-return in-place updates (spinners,
// progress bars), and full VT100/xterm-256color escape sequences. This
// package is the "VT100 emulator" external collaborator: Shepherd treats it
// as a black box behind the Screen contract and only adds the scrollback
// bookkeeping a session needs.
//
// The emulator itself retains no history, so the Parser captures
// ANSI-stripped lines into its own scrollback buffer as output flows
// through Process; SetScrollback slides the visible window up into that
// buffer.
package vt100

import (
	"image/color"
	"sync"

	uv "github.com/charmbracelet/ultraviolet"
	"github.com/charmbracelet/x/vt"
)

// MaxScrollback is the default scrollback buffer size.
const MaxScrollback = 20000

// Plain-line capture states, for stripping escape sequences out of the
// history buffer.
const (
	captureNormal = iota
	captureEsc
	captureCSI
	captureOSC
	captureOSCEsc
)

// Parser wraps the charmbracelet/x/vt terminal emulator and exposes the
// Screen contract a Session needs: size, per-cell attributes, cursor
// position, resize, and a scrollback window.
type Parser struct {
	mu sync.Mutex

	term vt.Terminal

	rows, cols int

	scrollback    []string
	maxScrollback int

	// scrollOffset is how many lines up from the bottom the view is
	// currently scrolled, set via SetScrollback.
	scrollOffset int

	// Plain-line capture state for the scrollback buffer.
	captureState int
	captureLine  []rune
}

// Cell holds the character and full formatting for a single screen cell.
type Cell struct {
	Contents  string
	Width     int
	FG        color.Color
	BG        color.Color
	Bold      bool
	Dim       bool
	Italic    bool
	Underline bool
	Inverse   bool
}

// New creates a new VT100 parser with the specified dimensions.
func New(rows, cols int) *Parser {
	return NewWithScrollback(rows, cols, MaxScrollback)
}

// NewWithScrollback creates a parser with a custom scrollback limit.
func NewWithScrollback(rows, cols, scrollback int) *Parser {
	term := vt.NewSafeEmulator(cols, rows)

	return &Parser{
		term:          term,
		rows:          rows,
		cols:          cols,
		scrollback:    make([]string, 0),
		maxScrollback: scrollback,
	}
}

// Process feeds bytes to the terminal emulator and captures completed
// lines into the scrollback buffer. Safe for concurrent use; the
// SafeEmulator handles its own internal locking and the capture state is
// mutex-guarded.
func (p *Parser) Process(data []byte) {
	p.term.Write(data)

	p.mu.Lock()
	p.captureLines(data)
	p.mu.Unlock()
}

// captureLines appends ANSI-stripped output lines to the scrollback
// buffer. Caller holds mu.
//
// Cursor-position (H, f) and erase-display (J) CSI finals discard the
// accumulated partial line so full-screen repaints don't corrupt history.
func (p *Parser) captureLines(data []byte) {
	for _, r := range string(data) {
		switch p.captureState {
		case captureEsc:
			switch r {
			case '[':
				p.captureState = captureCSI
			case ']':
				p.captureState = captureOSC
			default:
				p.captureState = captureNormal
			}
			continue

		case captureCSI:
			// CSI ends with a final byte in 0x40-0x7E.
			if r >= 0x40 && r <= 0x7E {
				if r == 'H' || r == 'f' || r == 'J' {
					p.captureLine = p.captureLine[:0]
				}
				p.captureState = captureNormal
			}
			continue

		case captureOSC:
			// OSC ends with BEL or ST (ESC \).
			if r == 0x07 {
				p.captureState = captureNormal
			} else if r == 0x1b {
				p.captureState = captureOSCEsc
			}
			continue

		case captureOSCEsc:
			switch r {
			case '\\':
				p.captureState = captureNormal
			case 0x1b:
				p.captureState = captureOSCEsc
			default:
				p.captureState = captureOSC
			}
			continue
		}

		switch r {
		case 0x1b:
			p.captureState = captureEsc
		case '\r':
			// Column 0; clearing here would turn CRLF into empty lines.
		case '\n':
			p.appendScrollback(string(p.captureLine))
			p.captureLine = p.captureLine[:0]
		case 0x08, 0x7f:
			if len(p.captureLine) > 0 {
				p.captureLine = p.captureLine[:len(p.captureLine)-1]
			}
		case '\t':
			p.captureLine = append(p.captureLine, ' ', ' ', ' ', ' ')
		default:
			if r >= 0x20 {
				p.captureLine = append(p.captureLine, r)
			}
		}
	}
}

// appendScrollback records one completed line, trimming to the cap.
// Caller holds mu.
func (p *Parser) appendScrollback(line string) {
	p.scrollback = append(p.scrollback, line)
	if len(p.scrollback) > p.maxScrollback {
		trim := len(p.scrollback) - p.maxScrollback
		p.scrollback = p.scrollback[trim:]
	}
}

// Size returns the current terminal dimensions.
func (p *Parser) Size() (rows, cols int) {
	return p.term.Height(), p.term.Width()
}

// SetSize resizes the terminal.
func (p *Parser) SetSize(rows, cols int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.rows = rows
	p.cols = cols
	p.term.Resize(cols, rows)
}

// CursorPosition returns the current cursor position (row, col), 0-indexed.
func (p *Parser) CursorPosition() (row, col int) {
	pos := p.term.CursorPosition()
	return pos.Y, pos.X
}

// Cell returns the cell at (row, col) of the visible window with full
// attributes. At offset 0 this is the live screen; scrolled up, the
// window is a slice of the captured transcript ending offset lines above
// its end, rendered with plain attributes.
func (p *Parser) Cell(row, col int) Cell {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cellLocked(row, col)
}

// cellLocked implements Cell. Caller holds mu.
func (p *Parser) cellLocked(row, col int) Cell {
	off := p.effectiveOffset()
	if off == 0 {
		return p.liveCell(row, col)
	}

	// The bottom row shows the transcript line off lines above the end;
	// rows above it walk back from there. Rows before the start of the
	// capture are blank.
	idx := len(p.scrollback) - off - (p.rows - 1 - row)
	if idx < 0 || idx >= len(p.scrollback) {
		return Cell{Contents: " ", Width: 1}
	}
	return scrollbackCell(p.scrollback[idx], col)
}

// liveCell reads the emulator's screen. Caller holds mu.
func (p *Parser) liveCell(row, col int) Cell {
	c := p.term.CellAt(col, row)
	if c == nil {
		return Cell{Contents: " ", Width: 1}
	}

	contents := c.Content
	if contents == "" {
		contents = " "
	}

	attrs := c.Style.Attrs
	return Cell{
		Contents:  contents,
		Width:     max(c.Width, 1),
		FG:        c.Style.Fg,
		BG:        c.Style.Bg,
		Bold:      attrs&uv.AttrBold != 0,
		Dim:       attrs&uv.AttrFaint != 0,
		Italic:    attrs&uv.AttrItalic != 0,
		Underline: c.Style.Underline != uv.UnderlineStyleNone,
		Inverse:   attrs&uv.AttrReverse != 0,
	}
}

// scrollbackCell renders one cell of a captured history line. History is
// stored as plain text, so the cells carry default attributes.
func scrollbackCell(line string, col int) Cell {
	runes := []rune(line)
	if col < len(runes) {
		return Cell{Contents: string(runes[col]), Width: 1}
	}
	return Cell{Contents: " ", Width: 1}
}

// effectiveOffset is the scroll offset clamped to the available history.
// Caller holds mu.
func (p *Parser) effectiveOffset() int {
	off := p.scrollOffset
	if off > len(p.scrollback) {
		off = len(p.scrollback)
	}
	return off
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// Cells returns every cell of the visible window, row-major, for
// cell-by-cell rendering.
func (p *Parser) Cells() [][]Cell {
	rows, cols := p.Size()

	p.mu.Lock()
	defer p.mu.Unlock()

	cells := make([][]Cell, rows)
	for y := 0; y < rows; y++ {
		cells[y] = make([]Cell, cols)
		for x := 0; x < cols; x++ {
			cells[y][x] = p.cellLocked(y, x)
		}
	}
	return cells
}

// SetScrollback sets how many lines up from the bottom the visible window
// should show, clamped to the captured history. 0 means the live bottom
// of the screen.
func (p *Parser) SetScrollback(linesUpFromBottom int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if linesUpFromBottom < 0 {
		linesUpFromBottom = 0
	}
	if linesUpFromBottom > len(p.scrollback) {
		linesUpFromBottom = len(p.scrollback)
	}
	p.scrollOffset = linesUpFromBottom
}

// ScrollOffset returns the current scrollback offset.
func (p *Parser) ScrollOffset() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.scrollOffset
}

// Clear resets the terminal to its initial state.
func (p *Parser) Clear() {
	p.term.Write([]byte("\x1b[0m\x1b[2J\x1b[3J\x1b[H"))
}

// ScrollbackCount returns the number of retained scrollback lines.
func (p *Parser) ScrollbackCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.scrollback)
}
