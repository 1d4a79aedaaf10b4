package mouseparse

import (
	"bytes"
	"testing"
)

func TestScrollUpSGR(t *testing.T) {
	res := Parse([]byte("\x1b[<64;1;1M"))

	if res.ScrollDelta != 1 {
		t.Errorf("ScrollDelta = %d, want 1", res.ScrollDelta)
	}
	if len(res.Remaining) != 0 {
		t.Errorf("Remaining = %q, want empty", res.Remaining)
	}
	if !res.HadMouseEvent {
		t.Error("HadMouseEvent should be true")
	}
}

func TestScrollDownSGR(t *testing.T) {
	res := Parse([]byte("\x1b[<65;10;20m"))

	if res.ScrollDelta != -1 {
		t.Errorf("ScrollDelta = %d, want -1", res.ScrollDelta)
	}
}

func TestScrollEventsWithModifierBits(t *testing.T) {
	// Shift (4), Alt (8), Ctrl (16) bits don't change scroll classification.
	for _, mod := range []int{4, 8, 16, 28} {
		data := []byte("\x1b[<" + itoa(64+mod) + ";1;1M")
		res := Parse(data)
		if res.ScrollDelta != 1 {
			t.Errorf("btn %d: ScrollDelta = %d, want 1", 64+mod, res.ScrollDelta)
		}
	}
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	var b []byte
	for n > 0 {
		b = append([]byte{byte('0' + n%10)}, b...)
		n /= 10
	}
	return string(b)
}

func TestLegacyScroll(t *testing.T) {
	// ESC [ M btn col row with btn=96 (scroll up), col/row at offset 32+1.
	up := Parse([]byte{0x1b, '[', 'M', 96, 33, 33})
	if up.ScrollDelta != 1 {
		t.Errorf("legacy up: ScrollDelta = %d, want 1", up.ScrollDelta)
	}

	down := Parse([]byte{0x1b, '[', 'M', 97, 33, 33})
	if down.ScrollDelta != -1 {
		t.Errorf("legacy down: ScrollDelta = %d, want -1", down.ScrollDelta)
	}
}

func TestInterleavedTextAndScroll(t *testing.T) {
	res := Parse([]byte("hello\x1b[<64;1;1Mworld"))

	if !bytes.Equal(res.Remaining, []byte("helloworld")) {
		t.Errorf("Remaining = %q, want helloworld", res.Remaining)
	}
	if res.ScrollDelta != 1 {
		t.Errorf("ScrollDelta = %d, want 1", res.ScrollDelta)
	}
}

func TestMultipleConcatenatedEvents(t *testing.T) {
	res := Parse([]byte("\x1b[<64;1;1M\x1b[<64;1;2M\x1b[<65;1;3M"))

	if res.ScrollDelta != 1 {
		t.Errorf("ScrollDelta = %d, want 1 (2 up - 1 down)", res.ScrollDelta)
	}
	if len(res.Remaining) != 0 {
		t.Errorf("Remaining = %q, want empty", res.Remaining)
	}
}

func TestNonScrollMouseEventDropped(t *testing.T) {
	// Left click press (btn 0) is a mouse event but not a scroll.
	res := Parse([]byte("\x1b[<0;5;5M"))

	if res.ScrollDelta != 0 {
		t.Errorf("ScrollDelta = %d, want 0", res.ScrollDelta)
	}
	if len(res.Remaining) != 0 {
		t.Errorf("click should be stripped, Remaining = %q", res.Remaining)
	}
	if !res.HadMouseEvent {
		t.Error("HadMouseEvent should be true for a click")
	}
}

func TestPlainTextPassesThrough(t *testing.T) {
	res := Parse([]byte("just typing"))

	if res.HadMouseEvent {
		t.Error("HadMouseEvent should be false")
	}
	if !bytes.Equal(res.Remaining, []byte("just typing")) {
		t.Errorf("Remaining = %q", res.Remaining)
	}
}

func TestMalformedSGRPassesThrough(t *testing.T) {
	// Missing terminator: not a recognized event, bytes flow to the child.
	in := []byte("\x1b[<64;1;1")
	res := Parse(in)

	if res.HadMouseEvent {
		t.Error("incomplete sequence should not count as a mouse event")
	}
	if !bytes.Equal(res.Remaining, in) {
		t.Errorf("Remaining = %q, want %q", res.Remaining, in)
	}
}

func TestOtherEscapeSequencesUntouched(t *testing.T) {
	// Arrow key: ESC [ A must reach the child unmodified.
	in := []byte{0x1b, '[', 'A'}
	res := Parse(in)

	if !bytes.Equal(res.Remaining, in) {
		t.Errorf("Remaining = %q, want %q", res.Remaining, in)
	}
}
