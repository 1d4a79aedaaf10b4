package vt100

import (
	"fmt"
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	p := New(24, 80)

	rows, cols := p.Size()
	if rows != 24 {
		t.Errorf("rows = %d, want 24", rows)
	}
	if cols != 80 {
		t.Errorf("cols = %d, want 80", cols)
	}
}

func TestProcessWritesCells(t *testing.T) {
	p := New(24, 80)

	p.Process([]byte("Hello"))

	c := p.Cell(0, 0)
	if c.Contents != "H" {
		t.Errorf("cell(0,0) = %q, want %q", c.Contents, "H")
	}
}

func TestSetSize(t *testing.T) {
	p := New(24, 80)

	p.SetSize(40, 120)

	rows, cols := p.Size()
	if rows != 40 || cols != 120 {
		t.Errorf("Size() = (%d, %d), want (40, 120)", rows, cols)
	}
}

func TestCellsDimensionsMatchSize(t *testing.T) {
	p := New(10, 20)

	cells := p.Cells()
	if len(cells) != 10 {
		t.Fatalf("len(cells) = %d, want 10", len(cells))
	}
	if len(cells[0]) != 20 {
		t.Errorf("len(cells[0]) = %d, want 20", len(cells[0]))
	}
}

// rowText flattens one row of the visible window into a trimmed string.
func rowText(p *Parser, row int) string {
	cells := p.Cells()
	var sb strings.Builder
	for _, c := range cells[row] {
		sb.WriteString(c.Contents)
	}
	return strings.TrimRight(sb.String(), " ")
}

// fillLines writes n numbered lines through the parser.
func fillLines(p *Parser, n int) {
	for i := 0; i < n; i++ {
		p.Process([]byte(fmt.Sprintf("line-%d\r\n", i)))
	}
}

func TestProcessCapturesScrollback(t *testing.T) {
	p := New(5, 20)

	fillLines(p, 10)

	if got := p.ScrollbackCount(); got != 10 {
		t.Fatalf("ScrollbackCount() = %d, want 10", got)
	}
}

func TestSetScrollbackRevealsOlderContent(t *testing.T) {
	p := New(5, 20)

	fillLines(p, 10)

	// Live view: the oldest lines have scrolled off the 5-row screen.
	p.SetScrollback(0)
	if got := rowText(p, 0); got == "line-0" {
		t.Fatalf("live top row = %q; line-0 should have scrolled away", got)
	}

	// Three lines up: the bottom row shows the third-newest captured
	// line, and the rows above walk back from there.
	p.SetScrollback(3)
	if got := rowText(p, 4); got != "line-7" {
		t.Errorf("scrolled bottom row = %q, want line-7", got)
	}
	if got := rowText(p, 0); got != "line-3" {
		t.Errorf("scrolled top row = %q, want line-3", got)
	}

	// Back to the bottom restores the live screen.
	p.SetScrollback(0)
	if got := rowText(p, 4); got == "line-7" {
		t.Errorf("live bottom row still shows scrolled content %q", got)
	}
}

func TestSetScrollbackPastCaptureShowsBlankTop(t *testing.T) {
	p := New(5, 20)

	fillLines(p, 3)

	// Clamped to the 3 captured lines; the bottom row shows line-0 and
	// the rows above the start of the capture are blank.
	p.SetScrollback(100)
	if got := p.ScrollOffset(); got != 3 {
		t.Fatalf("ScrollOffset() = %d, want clamped to 3", got)
	}
	if got := rowText(p, 4); got != "line-0" {
		t.Errorf("bottom row = %q, want line-0", got)
	}
	if got := rowText(p, 0); got != "" {
		t.Errorf("top row = %q, want blank above the capture start", got)
	}
}

func TestSetScrollbackClampsToAvailable(t *testing.T) {
	p := New(24, 80)

	p.SetScrollback(-5)
	if p.ScrollOffset() != 0 {
		t.Errorf("ScrollOffset() = %d, want 0 for negative input", p.ScrollOffset())
	}

	fillLines(p, 4)
	p.SetScrollback(1000)
	if p.ScrollOffset() != 4 {
		t.Errorf("ScrollOffset() = %d, want clamped to the 4 captured lines", p.ScrollOffset())
	}
}

func TestCaptureStripsEscapeSequences(t *testing.T) {
	p := New(5, 40)

	p.Process([]byte("\x1b[31mred text\x1b[0m\r\n"))
	p.Process([]byte("\x1b]9;notify\x07after osc\r\n"))

	if got := p.ScrollbackCount(); got != 2 {
		t.Fatalf("ScrollbackCount() = %d, want 2", got)
	}

	p.SetScrollback(1)
	if got := rowText(p, 4); got != "after osc" {
		t.Errorf("captured line = %q, want %q", got, "after osc")
	}
	if got := rowText(p, 3); got != "red text" {
		t.Errorf("captured line = %q, want %q", got, "red text")
	}
}

func TestCaptureDiscardsLineOnRepaint(t *testing.T) {
	p := New(5, 40)

	// A cursor-home repaint mid-line discards the partial text so TUI
	// redraws don't pollute the history.
	p.Process([]byte("garbage\x1b[Hclean\r\n"))

	p.SetScrollback(1)
	if got := rowText(p, 4); got != "clean" {
		t.Errorf("captured line = %q, want %q", got, "clean")
	}
}
