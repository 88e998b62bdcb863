// Package term renders the virtual screen to a real terminal. It is the
// physical-flush collaborator of the compositing core: Render consumes the
// virtual screen's dirty spans and produces the minimal ANSI byte sequence
// that brings the terminal up to date.
package term

import (
	"bytes"
	"fmt"
	"io"

	"padterm/pad"
)

// Render consumes the dirty state of the virtual screen and returns the
// ANSI bytes that repaint it: cursor addressing per dirty span, SGR
// transitions only when the cell state changes, a full clear-and-repaint
// when the clear flag is pending, and a final cursor park at the virtual
// screen cursor. All touched rows are marked clean.
func Render(w *pad.Window) []byte {
	buf := bytes.NewBuffer(nil)

	full := w.TakeClear()
	if full {
		buf.WriteString("\033[2J")
	}

	painted := false
	for y := 0; y < w.Rows(); y++ {
		first, last := 0, w.Cols()-1
		if !full {
			d, ok := w.Dirty(y)
			if !ok {
				continue
			}
			first = clamp(d.First, 0, w.Cols()-1)
			last = clamp(d.Last, 0, w.Cols()-1)
		}
		renderSpan(buf, w, y, first, last)
		w.MarkClean(y)
		painted = true
	}

	if !painted && !full {
		return nil
	}

	buf.WriteString("\033[0m")

	// park the terminal cursor where the composite left it
	cy, cx := w.Cursor()
	fmt.Fprintf(buf, "\033[%d;%dH", cy+1, cx+1)

	return buf.Bytes()
}

// renderSpan paints columns [first, last] of one row
func renderSpan(buf *bytes.Buffer, w *pad.Window, y, first, last int) {
	line := w.Line(y)

	// a span may start on the continuation cell of a wide rune; back up to
	// the rune that owns it
	for first > 0 && line[first].Char == 0 {
		first--
	}

	fmt.Fprintf(buf, "\033[%d;%dH", y+1, first+1)

	lastState := pad.State{}
	stateSet := false
	for x := first; x <= last; x++ {
		c := line[x]
		if c.Char == 0 {
			// covered by the wide rune before it
			continue
		}
		if !stateSet || c.State != lastState {
			lastState = c.State
			stateSet = true
			writeState(buf, c.State)
		}
		buf.WriteRune(c.Char)
	}
}

// writeState emits the full SGR sequence for a cell state, resetting first
// so no previous attribute leaks through
func writeState(buf *bytes.Buffer, c pad.State) {
	buf.WriteString("\033[0")

	switch c.ColorType & 0b11 {
	case pad.Color16:
		fmt.Fprintf(buf, ";%d", c.FG[0])
	case pad.Color256:
		fmt.Fprintf(buf, ";38;5;%d", c.FG[0])
	case pad.Color16M:
		fmt.Fprintf(buf, ";38;2;%d;%d;%d", c.FG[0], c.FG[1], c.FG[2])
	}
	switch (c.ColorType >> 2) & 0b11 {
	case pad.Color16:
		fmt.Fprintf(buf, ";%d", c.BG[0])
	case pad.Color256:
		fmt.Fprintf(buf, ";48;5;%d", c.BG[0])
	case pad.Color16M:
		fmt.Fprintf(buf, ";48;2;%d;%d;%d", c.BG[0], c.BG[1], c.BG[2])
	}
	if c.Flags&pad.FlagUnderlineColor != 0 {
		fmt.Fprintf(buf, ";58;2;%d;%d;%d", c.UL[0], c.UL[1], c.UL[2])
	}
	if c.Flags&pad.FlagBold != 0 {
		buf.WriteString(";1")
	}
	if c.Flags&pad.FlagItalic != 0 {
		buf.WriteString(";3")
	}
	if c.Flags&pad.FlagUnderline != 0 {
		buf.WriteString(";4")
	}
	if c.Flags&pad.FlagBlink != 0 {
		buf.WriteString(";5")
	}
	if c.Flags&pad.FlagInverse != 0 {
		buf.WriteString(";7")
	}
	if c.Flags&pad.FlagInvisible != 0 {
		buf.WriteString(";8")
	}
	if c.Flags&pad.FlagStrike != 0 {
		buf.WriteString(";9")
	}
	buf.WriteString("m")
}

// Snapshot renders the entire virtual screen without consuming its dirty
// state or clear flag, to bring a newly attached viewer up to date while
// the regular flush cycle keeps running.
func Snapshot(w *pad.Window) []byte {
	buf := bytes.NewBuffer(nil)
	buf.WriteString("\033[2J")
	for y := 0; y < w.Rows(); y++ {
		renderSpan(buf, w, y, 0, w.Cols()-1)
	}
	buf.WriteString("\033[0m")
	cy, cx := w.Cursor()
	fmt.Fprintf(buf, "\033[%d;%dH", cy+1, cx+1)
	return buf.Bytes()
}

// Renderer is a single-sink pad.Flusher writing to one terminal.
type Renderer struct {
	Out io.Writer
}

func New(out io.Writer) *Renderer {
	return &Renderer{Out: out}
}

// Flush implements pad.Flusher.
func (r *Renderer) Flush(virt *pad.Window) error {
	b := Render(virt)
	if len(b) == 0 {
		return nil
	}
	_, err := r.Out.Write(b)
	return err
}

func clamp(v, s, b int) int {
	if v < s {
		return s
	}
	if v > b {
		return b
	}
	return v
}
