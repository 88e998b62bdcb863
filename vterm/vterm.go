// Package vterm interprets a terminal byte stream into a pad. It is the
// cell-append collaborator of the compositing core: pty output written here
// lands in pad cells with the right attributes and dirty spans, ready to be
// composited onto the virtual screen.
package vterm

import (
	"bytes"
	"fmt"
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"

	"github.com/mattn/go-runewidth"

	"padterm/pad"
)

type stateFn func(t *Term, r rune) (stateFn, error)

// Term drives one pad.Window from a terminal byte stream.
type Term struct {
	mux sync.Mutex
	w   *pad.Window

	state     pad.State
	stateProc stateFn

	// cursor is tracked here, not in the window, so the "pending wrap"
	// position one past the right edge survives; the window cursor is
	// mirrored after every operation for the compositor's benefit
	cursorLine int
	cursorCol  int

	Title   string
	TabSize int

	cellUpdate int

	saveCursor   [2]int
	scrollRegion [2]int // startRow, endRow (exclusive)
}

// New returns a terminal interpreter writing into the given pad.
func New(w *pad.Window) *Term {
	return &Term{
		w:            w,
		TabSize:      8,
		stateProc:    (*Term).normal,
		scrollRegion: [2]int{0, w.Rows()},
	}
}

// Window returns the pad this interpreter writes into.
func (t *Term) Window() *pad.Window {
	return t.w
}

type EscapeError struct {
	Err    error
	Offset int
}

func (e EscapeError) Error() string {
	return fmt.Sprintf("error parsing escape sequence at %d: %v", e.Offset, e.Err)
}

// Write implements io.Writer and feeds the given bytes to the interpreter.
func (t *Term) Write(p []byte) (int, error) {
	t.mux.Lock()
	defer t.mux.Unlock()

	for i := 0; i < len(p); {
		r, sz := utf8.DecodeRune(p[i:])
		i += sz
		if err := t.put(r); err != nil {
			return i, EscapeError{
				Err:    err,
				Offset: i,
			}
		}
	}
	return len(p), nil
}

// Put processes a single rune.
func (t *Term) Put(r rune) error {
	t.mux.Lock()
	defer t.mux.Unlock()

	return t.put(r)
}

// Updates returns a sequence number incremented every time pad cells change.
func (t *Term) Updates() int {
	t.mux.Lock()
	defer t.mux.Unlock()

	return t.cellUpdate
}

// CursorPos returns the interpreter cursor position.
func (t *Term) CursorPos() (line, col int) {
	t.mux.Lock()
	defer t.mux.Unlock()

	return t.cursorLine, t.cursorCol
}

func (t *Term) rows() int { return t.w.Rows() }
func (t *Term) cols() int { return t.w.Cols() }

// syncCursor mirrors the tracked cursor into the window, clamped, so a
// later composite translates it correctly
func (t *Term) syncCursor() {
	t.w.MoveTo(t.cursorLine, t.cursorCol)
}

func (t *Term) put(r rune) error {
	// vim occasionally sends this in any state, probably querying
	// something; ignore it
	if r == '\x01' {
		return nil
	}
	sfn := t.stateProc
	if sfn == nil {
		sfn = (*Term).normal
	}

	ns, err := sfn(t, r)
	if ns != nil {
		t.stateProc = ns
	}
	t.syncCursor()
	return err
}

func (t *Term) normal(r rune) (stateFn, error) {
	switch {
	case r == '\033':
		return (*Term).esc, nil
	case r == '\n':
		t.cursorCol = 0
		t.nextLine()
	case r == '\r':
		t.cursorCol = 0
	case r == '\b':
		t.cursorCol = max(0, t.cursorCol-1)
	case r == '\t':
		t.cursorCol = (t.cursorCol + t.TabSize) / t.TabSize * t.TabSize
		t.cursorCol = min(t.cursorCol, t.cols()-1)
	case r < 32: // least printable char, we ignore it

	default:
		width := max(runewidth.RuneWidth(r), 1)
		if t.cursorCol+width > t.cols() {
			t.cursorCol = 0
			t.nextLine()
		}
		cl := pad.Cell{
			Char:  r,
			State: t.state,
		}
		if t.cursorLine >= t.rows() || t.cursorCol >= t.cols() {
			// rare, but to be safe..
			return nil, fmt.Errorf("cursor out of bounds: %d,%d",
				t.cursorLine, t.cursorCol)
		}
		if err := t.w.SetCell(t.cursorLine, t.cursorCol, cl); err != nil {
			return nil, err
		}
		for i := 1; i < width && t.cursorCol+i < t.cols(); i++ {
			_ = t.w.SetCell(t.cursorLine, t.cursorCol+i,
				pad.Cell{State: t.state})
		}
		t.cursorCol += width
		t.cellUpdate++
	}
	return nil, nil
}

func (t *Term) esc(r rune) (stateFn, error) {
	switch r {
	case '[':
		return t.csi(), nil
	case ']':
		return t.osc(), nil
	case '>':
	case '=':
	case '(':
		// set G0 charset (ignore next rune and go to normal state)
		return t.ignore(1, (*Term).normal), nil
	case 'M': // reverse index
		if t.cursorLine == t.scrollRegion[0] {
			t.scrollDown(1)
		} else {
			t.cursorLine = max(0, t.cursorLine-1)
		}
	case 'c':
		t.reset()
	default:
		return (*Term).normal, fmt.Errorf("unknown escape sequence: %d %[1]c", r)
	}
	return (*Term).normal, nil
}

// reset erases the pad and restores the default interpreter state
func (t *Term) reset() {
	t.w.Erase()
	t.state = pad.State{}
	t.cursorLine = 0
	t.cursorCol = 0
	t.saveCursor = [2]int{0, 0}
	t.scrollRegion = [2]int{0, t.rows()}
	t.cellUpdate++
}

// State dummy state to accept any n runes
func (t *Term) ignore(n int, next stateFn) stateFn {
	return func(*Term, rune) (stateFn, error) {
		n--
		if n <= 0 {
			return next, nil
		}
		return nil, nil
	}
}

type customSeqFunc func(*Term, []rune, bool) (stateFn, error)

// State customSeq is a helper function to create a stateFn that will accept
// a sequence; once the sequence is complete it will call the provided
// function with bool as true, false otherwise
func (t *Term) customSeq(s []rune, fn customSeqFunc) stateFn {
	seq := make([]rune, 0, len(s))
	return func(t *Term, r rune) (stateFn, error) {
		seq = append(seq, r)
		if r != s[0] {
			return fn(t, seq, false)
		}
		s = s[1:]
		// finished, call the func and return next state
		if len(s) == 0 {
			return fn(t, seq, true)
		}
		return nil, nil
	}
}

// State Operating System Command
func (t *Term) osc() stateFn {
	attrbuf := bytes.NewBuffer(nil)
	title := &strings.Builder{}
	var fn stateFn
	fn = func(_ *Term, r rune) (stateFn, error) {
		if r == ';' || unicode.IsNumber(r) {
			attrbuf.WriteRune(r)
			return nil, nil
		}
		switch r {
		case '\a': // xterm
			t.Title = title.String()
			return (*Term).normal, nil
		// handle string terminator "\033\\"
		case '\033':
			return t.customSeq([]rune{'\\'}, func(t *Term, s []rune, ok bool) (stateFn, error) {
				if ok {
					t.Title = title.String()
					return (*Term).normal, nil
				}

				title.WriteRune('\033')
				sfn := fn
				for _, r := range s {
					// pass unaccepted runes through this state,
					// following the fns
					f, err := sfn(t, r)
					if err != nil {
						return nil, err
					}
					if f != nil {
						sfn = f
					}
				}
				return sfn, nil
			}), nil
		default:
			title.WriteRune(r)
		}
		return nil, nil
	}
	return fn
}

// to handle cases like "\033[>P;N..." (cursor keys to application mode)
func (t *Term) csiGT() stateFn {
	return func(_ *Term, r rune) (stateFn, error) {
		if r == ';' || unicode.IsNumber(r) {
			return nil, nil
		}
		switch r {
		case 'm', 'c', 'q':
			return (*Term).normal, nil
		default:
			return (*Term).normal, fmt.Errorf("unknown CSI>: %d %[1]c", r)
		}
	}
}

// State Control Sequence Introducer
func (t *Term) csi() stateFn {
	var p []int
	nextParam := true
	return func(t *Term, r rune) (stateFn, error) {
		switch {
		case r == ':' || r == ';':
			nextParam = true
			return nil, nil
		case unicode.IsNumber(r):
			if nextParam {
				nextParam = false
				p = append(p, 0)
			}
			last := len(p) - 1
			p[last] = p[last]*10 + int(r-'0')
			return nil, nil
		}

		switch r {
		// for sequences like ESC[?25l (hide cursor)
		case '?':
			return nil, nil
		case '>':
			return t.csiGT(), nil
		// cursor movement
		case 'A':
			n := 1
			getParams(p, &n)
			t.cursorLine = max(0, t.cursorLine-n)
		case 'B':
			n := 1
			getParams(p, &n)
			t.cursorLine = min(t.rows()-1, t.cursorLine+n)
		case 'C':
			n := 1
			getParams(p, &n)
			t.cursorCol = min(t.cols()-1, t.cursorCol+n)
		case 'D':
			n := 1
			getParams(p, &n)
			t.cursorCol = max(0, t.cursorCol-n)
		case 'E': // beginning of the line n lines down
			n := 1
			getParams(p, &n)
			t.cursorCol = 0
			t.cursorLine = min(t.rows()-1, t.cursorLine+n)
		case 'F': // beginning of the line n lines up
			n := 1
			getParams(p, &n)
			t.cursorCol = 0
			t.cursorLine = max(0, t.cursorLine-n)
		case 'G': // cursor horizontal absolute
			n := 1
			getParams(p, &n)
			t.cursorCol = clamp(n-1, 0, t.cols()-1)
		case 'H': // cursor position
			line, col := 1, 1
			getParams(p, &line, &col)
			t.cursorCol = clamp(col-1, 0, t.cols()-1)
			t.cursorLine = clamp(line-1, 0, t.rows()-1)
		case 'd':
			n := 0
			getParams(p, &n)
			t.cursorLine = clamp(n-1, 0, t.rows()-1)
		// display erase
		case 'J':
			n := 0
			getParams(p, &n)
			switch n {
			case 0: // clear from cursor to end
				t.eraseLineRange(t.cursorLine, t.cursorCol, t.cols()-1)
				for i := t.cursorLine + 1; i < t.rows(); i++ {
					t.eraseLineRange(i, 0, t.cols()-1)
				}
				t.cellUpdate++
			case 1: // clear from beginning to cursor
				for i := 0; i < t.cursorLine; i++ {
					t.eraseLineRange(i, 0, t.cols()-1)
				}
				t.eraseLineRange(t.cursorLine, 0, t.cursorCol)
				t.cellUpdate++
			case 2: // clear everything
				for i := 0; i < t.rows(); i++ {
					t.eraseLineRange(i, 0, t.cols()-1)
				}
				t.cellUpdate++
			}
		case 'K': // erase in line
			n := 0
			getParams(p, &n)
			switch n {
			case 0:
				t.eraseLineRange(t.cursorLine, t.cursorCol, t.cols()-1)
				t.cellUpdate++
			case 1:
				t.eraseLineRange(t.cursorLine, 0, t.cursorCol)
				t.cellUpdate++
			case 2:
				t.eraseLineRange(t.cursorLine, 0, t.cols()-1)
				t.cellUpdate++
			}
		case 'M': // delete lines, moving the rest up
			n := 1
			getParams(p, &n)
			t.deleteLines(t.cursorLine, n)
			t.cellUpdate++
		case 'L': // insert lines, pushing the rest down
			n := 1
			getParams(p, &n)
			t.insertLines(t.cursorLine, n)
			t.cellUpdate++
		case 'P': // delete chars, moving the rest of the line left
			n := 1
			getParams(p, &n)
			line := t.w.Line(t.cursorLine)
			if line != nil {
				copy(line[t.cursorCol:], line[min(t.cursorCol+n, len(line)):])
				t.eraseLineRange(t.cursorLine,
					max(t.cols()-n, t.cursorCol), t.cols()-1)
				t.w.TouchLine(t.cursorLine, 1)
				t.cellUpdate++
			}
		case 'X': // erase chars
			n := 0
			getParams(p, &n)
			if n > 0 {
				t.eraseLineRange(t.cursorLine, t.cursorCol,
					min(t.cursorCol+n-1, t.cols()-1))
				t.cellUpdate++
			}
		case '@': // insert blank chars
			n := 1
			getParams(p, &n)
			line := t.w.Line(t.cursorLine)
			if line != nil {
				copy(line[min(t.cursorCol+n, len(line)):], line[t.cursorCol:])
				t.eraseLineRange(t.cursorLine, t.cursorCol,
					min(t.cursorCol+n-1, t.cols()-1))
				t.w.TouchLine(t.cursorLine, 1)
				t.cellUpdate++
			}
		// SGR
		case 'm':
			err := t.state.Set(p...)
			return (*Term).normal, err
		case 'u':
			t.cursorLine = t.saveCursor[0]
			t.cursorCol = t.saveCursor[1]
		case 's':
			t.saveCursor = [2]int{t.cursorLine, t.cursorCol}
		case 'c': // send device attributes
		case 'h', 'l': // set/reset modes, nothing tracked yet
		case 't': // window manipulation
		case 'r': // scroll region
			top, bottom := 1, t.rows()
			getParams(p, &top, &bottom)
			t.scrollRegion[0] = clamp(top-1, 0, t.rows())
			t.scrollRegion[1] = clamp(bottom, 0, t.rows())
			t.cursorLine = 0
			t.cursorCol = 0
		case 'S': // scroll up
			n := 1
			getParams(p, &n)
			t.scrollUp(n)
			t.cellUpdate++
		case 'T': // scroll down
			n := 1
			getParams(p, &n)
			t.scrollDown(n)
			t.cellUpdate++
		default:
			return (*Term).normal, fmt.Errorf("unknown CSI: %d %[1]c", r)
		}
		return (*Term).normal, nil
	}
}

// eraseLineRange blanks columns [first, last] of a row with the current
// attributes
func (t *Term) eraseLineRange(lineNo, first, last int) {
	line := t.w.Line(lineNo)
	if line == nil {
		return
	}
	ec := pad.Cell{Char: ' ', State: t.state}
	first = clamp(first, 0, len(line)-1)
	last = clamp(last, 0, len(line)-1)
	for i := first; i <= last; i++ {
		line[i] = ec
	}
	t.w.TouchLine(lineNo, 1)
}

// copyLine copies one full row onto another
func (t *Term) copyLine(dst, src int) {
	copy(t.w.Line(dst), t.w.Line(src))
	t.w.TouchLine(dst, 1)
}

func (t *Term) scrollUp(n int) {
	start, end := t.scrollRegion[0], t.scrollRegion[1]
	for i := start; i+n < end; i++ {
		t.copyLine(i, i+n)
	}
	for i := max(end-n, start); i < end; i++ {
		t.eraseLineRange(i, 0, t.cols()-1)
	}
}

func (t *Term) scrollDown(n int) {
	start, end := t.scrollRegion[0], t.scrollRegion[1]
	for i := end - 1; i-n >= start; i-- {
		t.copyLine(i, i-n)
	}
	for i := start; i < min(start+n, end); i++ {
		t.eraseLineRange(i, 0, t.cols()-1)
	}
}

// deleteLines removes n lines at the given row within the scroll region,
// pulling the ones below up
func (t *Term) deleteLines(at, n int) {
	start, end := t.scrollRegion[0], t.scrollRegion[1]
	if at < start || at >= end {
		return
	}
	for i := at; i+n < end; i++ {
		t.copyLine(i, i+n)
	}
	for i := max(end-n, at); i < end; i++ {
		t.eraseLineRange(i, 0, t.cols()-1)
	}
}

// insertLines pushes n blank lines in at the given row within the scroll
// region, discarding the ones that fall off the bottom
func (t *Term) insertLines(at, n int) {
	start, end := t.scrollRegion[0], t.scrollRegion[1]
	if at < start || at >= end {
		return
	}
	for i := end - 1; i-n >= at; i-- {
		t.copyLine(i, i-n)
	}
	for i := at; i < min(at+n, end); i++ {
		t.eraseLineRange(i, 0, t.cols()-1)
	}
}

func (t *Term) nextLine() {
	t.cursorLine++
	if t.cursorLine < t.scrollRegion[1]-1 {
		return
	}
	if t.cursorLine == t.scrollRegion[1] {
		// move buffer up 1 line
		t.scrollUp(1)
		t.cursorLine--
		t.cellUpdate++
	}
	// replicate odd xterm behaviour of when the cursor is outside of the
	// region it will not print neither scroll
	if t.cursorLine == t.rows() {
		t.cursorLine--
	}
}

// getParams helper function to get params from a slice
// if the slice is smaller than the number of params, it will leave the rest
// as is
func getParams(param []int, out ...*int) {
	for i, p := range param {
		if i >= len(out) {
			break
		}
		*out[i] = p
	}
}

// clamp returns the value clamped between s and b
func clamp(v, s, b int) int {
	if v < s {
		return s
	}
	if v > b {
		return b
	}
	return v
}
