package vterm

import (
	"testing"

	"padterm/pad"
)

func newTestTerm(t *testing.T, rows, cols int) *Term {
	t.Helper()
	s, err := pad.NewScreen(24, 80)
	if err != nil {
		t.Fatalf("NewScreen() error = %v", err)
	}
	w, err := s.NewPad(rows, cols)
	if err != nil {
		t.Fatalf("NewPad() error = %v", err)
	}
	return New(w)
}

func line(t *testing.T, w *pad.Window, n int) string {
	t.Helper()
	cells := w.Line(n)
	out := make([]rune, 0, len(cells))
	for _, c := range cells {
		r := c.Char
		if r == 0 {
			continue
		}
		out = append(out, r)
	}
	return string(out)
}

func TestTermWrite(t *testing.T) {
	tr := newTestTerm(t, 24, 80)

	p := []byte("test simple string")

	got, err := tr.Write(p)
	if err != nil {
		t.Errorf("Term.Write() error = %v", err)
		return
	}

	if got != len(p) {
		t.Errorf("Term.Write() = %v, want %v", got, len(p))
	}

	if tr.cursorLine != 0 {
		t.Errorf("Term.cursorLine = %v, want %v", tr.cursorLine, 0)
	}

	if tr.cursorCol != len(p) {
		t.Errorf("Term.cursorCol = %v, want %v", tr.cursorCol, len(p))
	}

	if s := line(t, tr.Window(), 0)[:len(p)]; s != string(p) {
		t.Errorf("pad row 0 = %q, want %q", s, p)
	}
}

func TestTermMarksDirty(t *testing.T) {
	tr := newTestTerm(t, 24, 80)

	if _, err := tr.Write([]byte("abc")); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	d, ok := tr.Window().Dirty(0)
	if !ok {
		t.Fatal("pad row 0 not dirty after write")
	}
	if d.First != 0 || d.Last != 2 {
		t.Errorf("dirty span = %v, want [0,2]", d)
	}
	if _, ok := tr.Window().Dirty(1); ok {
		t.Error("pad row 1 dirty without writes")
	}
}

func TestTermCursorMovesWindowCursor(t *testing.T) {
	tr := newTestTerm(t, 24, 80)

	if _, err := tr.Write([]byte("\033[5;10H")); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	cy, cx := tr.Window().Cursor()
	if cy != 4 || cx != 9 {
		t.Errorf("window cursor = %d,%d, want 4,9", cy, cx)
	}
}

func TestTermSGR(t *testing.T) {
	tr := newTestTerm(t, 24, 80)

	if _, err := tr.Write([]byte("\033[1;31mX")); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	c, err := tr.Window().Cell(0, 0)
	if err != nil {
		t.Fatalf("Cell() error = %v", err)
	}
	if c.Flags&pad.FlagBold == 0 {
		t.Error("bold flag not applied")
	}
	if c.ColorType&0b11 != pad.Color16 || c.FG[0] != 31 {
		t.Errorf("fg color = %v/%v, want 16-color 31", c.ColorType, c.FG[0])
	}
}

func TestTermEraseInLine(t *testing.T) {
	tr := newTestTerm(t, 24, 80)

	if _, err := tr.Write([]byte("abcdef\r\033[2C\033[K")); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if s := line(t, tr.Window(), 0)[:6]; s != "ab    " {
		t.Errorf("row 0 = %q, want %q", s, "ab    ")
	}
}

func TestTermScrollOnNewline(t *testing.T) {
	tr := newTestTerm(t, 3, 10)

	if _, err := tr.Write([]byte("one\r\ntwo\r\nthree\r\nfour")); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if s := line(t, tr.Window(), 0)[:3]; s != "two" {
		t.Errorf("row 0 = %q, want %q", s, "two")
	}
	if s := line(t, tr.Window(), 2)[:4]; s != "four" {
		t.Errorf("row 2 = %q, want %q", s, "four")
	}
}

func TestTermWideRune(t *testing.T) {
	tr := newTestTerm(t, 24, 80)

	if _, err := tr.Write([]byte("世x")); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	c, _ := tr.Window().Cell(0, 0)
	if c.Char != '世' {
		t.Errorf("cell (0,0) = %q, want '世'", c.Char)
	}
	c, _ = tr.Window().Cell(0, 1)
	if c.Char != 0 {
		t.Errorf("continuation cell = %q, want rune 0", c.Char)
	}
	c, _ = tr.Window().Cell(0, 2)
	if c.Char != 'x' {
		t.Errorf("cell (0,2) = %q, want 'x'", c.Char)
	}
}

func TestTermTitle(t *testing.T) {
	tr := newTestTerm(t, 24, 80)

	if _, err := tr.Write([]byte("\033]0;hello\a")); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if tr.Title != "hello" {
		t.Errorf("Title = %q, want %q", tr.Title, "hello")
	}
}

func TestTermReset(t *testing.T) {
	tr := newTestTerm(t, 24, 80)

	if _, err := tr.Write([]byte("junk\033c")); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	c, _ := tr.Window().Cell(0, 0)
	if c.Char != ' ' {
		t.Errorf("cell (0,0) = %q after reset, want blank", c.Char)
	}
	if tr.cursorLine != 0 || tr.cursorCol != 0 {
		t.Errorf("cursor = %d,%d after reset, want 0,0",
			tr.cursorLine, tr.cursorCol)
	}
}

func TestTermWriteRecoversAfterEscapeError(t *testing.T) {
	tr := newTestTerm(t, 24, 80)

	// DCS-style sequence the interpreter does not know; Write must error
	// but leave the state machine back in the normal state, so resuming
	// at the returned offset loses nothing
	in := []byte("before\x1bPafter")

	total := 0
	errs := 0
	for total < len(in) {
		n, err := tr.Write(in[total:])
		if n == 0 && err != nil {
			t.Fatal("Term.Write() made no progress after escape error")
		}
		total += n
		if err == nil {
			break
		}
		errs++
	}

	if errs == 0 {
		t.Fatal("Term.Write() did not report the unknown escape sequence")
	}
	if total != len(in) {
		t.Fatalf("consumed %v of %v bytes", total, len(in))
	}

	want := "beforeafter"
	if s := line(t, tr.Window(), 0)[:len(want)]; s != want {
		t.Errorf("pad row 0 = %q, want %q", s, want)
	}
}
