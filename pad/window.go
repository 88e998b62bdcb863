package pad

import (
	"fmt"

	"github.com/mattn/go-runewidth"
)

// Window kind flags. Pad and SubPad are mutually exclusive; both accept
// viewport based refresh instead of full window refresh.
type Flag uint8

const (
	Plain Flag = iota
	Pad
	SubPad
)

// Span is an inclusive dirty column range within one row.
type Span struct {
	First int
	Last  int
}

// Window is a rectangular character surface: a pad, a sub-pad aliasing a
// region of its parent pad, or the virtual screen itself.
//
// Storage is one []Cell slice per row. A sub-pad row is a subslice of the
// corresponding parent row, offset by the sub-pad's horizontal origin, so
// writes through either window are visible through both. A parent pad and
// its sub-pads must be treated as one unit of mutual exclusion by callers.
type Window struct {
	rows, cols int
	begy, begx int
	cury, curx int

	flags Flag
	state State // attributes applied by Put/PutRune

	leave  bool // leave cursor where it is on refresh
	scroll bool // scroll on write past the last row
	delay  bool
	keypad bool
	clear  bool // full repaint requested

	lines [][]Cell // row storage; sub-pad rows alias parent rows
	dirty []*Span  // nil entry = row clean

	parent *Window // sub-pads only, never used for storage
}

func newWindow(rows, cols, begy, begx int) (*Window, error) {
	if rows <= 0 || cols <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrBadDims, rows, cols)
	}
	return &Window{
		rows:  rows,
		cols:  cols,
		begy:  begy,
		begx:  begx,
		lines: make([][]Cell, rows),
		dirty: make([]*Span, rows),
	}, nil
}

// allocLines gives the window its own storage, erased to blanks
func (w *Window) allocLines() {
	for i := range w.lines {
		w.lines[i] = make([]Cell, w.cols)
		fill(w.lines[i], blank)
	}
}

func (w *Window) Rows() int { return w.rows }
func (w *Window) Cols() int { return w.cols }

// Origin returns the window's logical placement, meaningful for sub-pads
// and the virtual screen.
func (w *Window) Origin() (begy, begx int) {
	return w.begy, w.begx
}

func (w *Window) Kind() Flag      { return w.flags }
func (w *Window) Parent() *Window { return w.parent }

// IsPad reports whether the window accepts viewport based refresh.
func (w *Window) IsPad() bool {
	return w.flags == Pad || w.flags == SubPad
}

// Cursor returns the current write position.
func (w *Window) Cursor() (line, col int) {
	return w.cury, w.curx
}

// MoveTo repositions the cursor, clamped to the window rectangle.
func (w *Window) MoveTo(line, col int) {
	w.cury = clamp(line, 0, w.rows-1)
	w.curx = clamp(col, 0, w.cols-1)
}

// SetState replaces the attributes applied by subsequent writes.
func (w *Window) SetState(s State) { w.state = s }

// CurrentState returns the attributes applied by subsequent writes.
func (w *Window) CurrentState() State { return w.state }

// SetLeave controls whether refresh leaves the displayed cursor untouched.
func (w *Window) SetLeave(on bool)  { w.leave = on }
func (w *Window) SetScroll(on bool) { w.scroll = on }
func (w *Window) SetKeypad(on bool) { w.keypad = on }
func (w *Window) SetDelay(on bool)  { w.delay = on }

// SetClear requests a full repaint on the next refresh instead of an
// incremental dirty-span repaint. Consumed exactly once.
func (w *Window) SetClear() { w.clear = true }

// TakeClear consumes the pending full-repaint request.
func (w *Window) TakeClear() bool {
	c := w.clear
	w.clear = false
	return c
}

// Cell returns the cell at the given position.
func (w *Window) Cell(line, col int) (Cell, error) {
	if line < 0 || line >= w.rows || col < 0 || col >= w.cols {
		return Cell{}, fmt.Errorf("%w: cell %d,%d in %dx%d",
			ErrBounds, line, col, w.rows, w.cols)
	}
	return w.lines[line][col], nil
}

// Line returns the backing cells of one row. The slice aliases the window
// storage (and the parent's, for sub-pads).
func (w *Window) Line(line int) []Cell {
	if line < 0 || line >= w.rows {
		return nil
	}
	return w.lines[line]
}

// SetCell writes one cell at an absolute position without moving the cursor.
func (w *Window) SetCell(line, col int, c Cell) error {
	if line < 0 || line >= w.rows || col < 0 || col >= w.cols {
		return fmt.Errorf("%w: cell %d,%d in %dx%d",
			ErrBounds, line, col, w.rows, w.cols)
	}
	w.lines[line][col] = c
	w.touch(line, col, col)
	return nil
}

// Put appends one cell at the cursor and advances it, wrapping at the right
// edge. Wide runes take their display width; the continuation cells hold
// Char 0 so the renderer can skip them. Writing past the last row scrolls
// when the scroll flag is set and fails otherwise.
func (w *Window) Put(c Cell) error {
	width := max(runewidth.RuneWidth(c.Char), 1)
	if w.curx+width > w.cols {
		w.curx = 0
		if err := w.nextLine(); err != nil {
			return err
		}
	}
	w.lines[w.cury][w.curx] = c
	for i := 1; i < width && w.curx+i < w.cols; i++ {
		w.lines[w.cury][w.curx+i] = Cell{State: c.State}
	}
	w.touch(w.cury, w.curx, min(w.curx+width, w.cols)-1)
	w.curx += width
	return nil
}

// PutRune appends a rune with the window's current attributes.
func (w *Window) PutRune(r rune) error {
	return w.Put(Cell{Char: r, State: w.state})
}

func (w *Window) nextLine() error {
	if w.cury+1 < w.rows {
		w.cury++
		return nil
	}
	if !w.scroll {
		return fmt.Errorf("%w: write past last row of %dx%d",
			ErrBounds, w.rows, w.cols)
	}
	w.ScrollUp(1)
	return nil
}

// ScrollUp discards the top n rows and blanks the bottom ones. All rows
// change, so every row is marked fully dirty.
func (w *Window) ScrollUp(n int) {
	n = clamp(n, 0, w.rows)
	for i := 0; i+n < w.rows; i++ {
		copy(w.lines[i], w.lines[i+n])
	}
	for i := w.rows - n; i < w.rows; i++ {
		fill(w.lines[i], blank)
	}
	w.Touch()
}

// Erase blanks the whole window and homes the cursor.
func (w *Window) Erase() {
	for i := range w.lines {
		fill(w.lines[i], blank)
	}
	w.cury, w.curx = 0, 0
	w.Touch()
}

// Touch marks every row fully dirty, forcing the next refresh to copy the
// whole window. Needed after writing through a parent pad so a sub-pad
// refresh picks up the shared cells, and vice versa.
func (w *Window) Touch() {
	for i := range w.dirty {
		w.dirty[i] = &Span{First: 0, Last: w.cols - 1}
	}
}

// TouchLine marks rows [line, line+count) fully dirty.
func (w *Window) TouchLine(line, count int) {
	for i := line; i < line+count && i < w.rows; i++ {
		if i < 0 {
			continue
		}
		w.dirty[i] = &Span{First: 0, Last: w.cols - 1}
	}
}

// Dirty returns the dirty span of one row, if any.
func (w *Window) Dirty(line int) (Span, bool) {
	if line < 0 || line >= w.rows || w.dirty[line] == nil {
		return Span{}, false
	}
	return *w.dirty[line], true
}

// MarkClean clears the dirty span of one row, recording that the change has
// been captured downstream.
func (w *Window) MarkClean(line int) {
	if line >= 0 && line < w.rows {
		w.dirty[line] = nil
	}
}

// touch widens the dirty span of a row to include [first, last]
func (w *Window) touch(line, first, last int) {
	d := w.dirty[line]
	if d == nil {
		w.dirty[line] = &Span{First: first, Last: last}
		return
	}
	d.First = min(d.First, first)
	d.Last = max(d.Last, last)
}
