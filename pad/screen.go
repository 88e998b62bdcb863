package pad

import (
	"fmt"
)

// Viewport is the remembered pad/screen rectangle pair used by Echo when no
// explicit refresh coordinates are given: the top-left corner of the pad
// region shown and the inclusive screen rectangle that receives it.
type Viewport struct {
	PadY, PadX     int
	MinRow, MinCol int
	MaxRow, MaxCol int
}

// Flusher transfers the virtual screen's dirty regions to the output device
// and clears them.
type Flusher interface {
	Flush(virt *Window) error
}

// Screen owns the virtual screen buffer, the viewport remembered for Echo,
// and the physical flush collaborator. One Screen per display; all pads
// refreshed through it share the same virtual screen.
//
// Screen does no locking. Composite, Refresh and Echo are read-modify-write
// sequences over shared state; concurrent callers must serialize.
type Screen struct {
	rows, cols int
	virt       *Window
	saved      Viewport

	// Device receives the composited output on Refresh. A nil Device makes
	// Refresh equivalent to Composite.
	Device Flusher
}

// NewScreen creates the virtual screen sized to the physical display.
func NewScreen(rows, cols int) (*Screen, error) {
	virt, err := newWindow(rows, cols, 0, 0)
	if err != nil {
		return nil, err
	}
	virt.allocLines()
	return &Screen{
		rows: rows,
		cols: cols,
		virt: virt,
	}, nil
}

func (s *Screen) Rows() int { return s.rows }
func (s *Screen) Cols() int { return s.cols }

// Virtual returns the virtual screen window: the composited, not yet
// flushed display state. Mutated by Composite, consumed by the Device.
func (s *Screen) Virtual() *Window { return s.virt }

// Saved returns the viewport Echo will use.
func (s *Screen) Saved() Viewport { return s.saved }

// NewPad allocates a pad: a blank window of any size, not bounded by the
// physical screen, shown through Composite viewports. The saved viewport is
// reset to the pad's top-left corner at the screen's top-left corner.
func (s *Screen) NewPad(rows, cols int) (*Window, error) {
	w, err := newWindow(rows, cols, 0, 0)
	if err != nil {
		return nil, err
	}
	w.allocLines()
	w.flags = Pad
	s.resetSaved(rows, cols)
	return w, nil
}

// NewSubPad creates a sub-pad of a pad at (begy, begx) relative to the pad.
// The sub-pad owns no cells: each of its rows aliases the parent row offset
// by begx, so writes through either window are visible through both. Zero
// rows or cols extend the sub-pad to the parent's far edge minus one. The
// rectangle must be fully contained in the parent; this is checked once
// here, resizing is unsupported.
func (s *Screen) NewSubPad(parent *Window, rows, cols, begy, begx int) (*Window, error) {
	if parent == nil || parent.flags != Pad {
		return nil, ErrNotPad
	}

	// containment is checked before the zero-dimension expansion, as the
	// original does
	if begy < parent.begy || begx < parent.begx ||
		begy+rows > parent.begy+parent.rows ||
		begx+cols > parent.begx+parent.cols {
		return nil, fmt.Errorf("%w: sub-pad %dx%d at %d,%d in %dx%d pad",
			ErrBounds, rows, cols, begy, begx, parent.rows, parent.cols)
	}

	if rows == 0 {
		rows = parent.rows - 1 - begy
	}
	if cols == 0 {
		cols = parent.cols - 1 - begx
	}

	w, err := newWindow(rows, cols, begy, begx)
	if err != nil {
		return nil, err
	}

	w.state = parent.state
	w.leave = parent.leave
	w.scroll = parent.scroll
	w.delay = parent.delay
	w.keypad = parent.keypad
	w.parent = parent

	for i := 0; i < rows; i++ {
		w.lines[i] = parent.lines[begy+i][begx : begx+cols]
	}

	w.flags = SubPad
	s.resetSaved(rows, cols)
	return w, nil
}

// resetSaved seeds the Echo viewport with the full default view of a newly
// created pad
func (s *Screen) resetSaved(rows, cols int) {
	s.saved = Viewport{
		MaxRow: min(s.rows, rows) - 1,
		MaxCol: min(s.cols, cols) - 1,
	}
}

// Composite copies the pad viewport with top-left (py, px) into the screen
// rectangle (sy1, sx1)-(sy2, sx2) of the virtual screen, merging dirty
// spans and repositioning the displayed cursor. Negative origins are
// clamped to zero; all validation happens before any cell is written.
func (s *Screen) Composite(w *Window, py, px, sy1, sx1, sy2, sx2 int) error {
	if w == nil || !w.IsPad() {
		return ErrNotPad
	}

	// historical quirk kept on purpose: sy2 is validated against both the
	// row and the column limit of the screen, sx2 against neither
	if sy2 >= s.rows || sy2 >= s.cols {
		return fmt.Errorf("%w: sy2 %d on %dx%d screen",
			ErrBounds, sy2, s.rows, s.cols)
	}

	py = max(py, 0)
	px = max(px, 0)
	sy1 = max(sy1, 0)
	sx1 = max(sx1, 0)

	if sy2 < sy1 || sx2 < sx1 {
		return fmt.Errorf("%w: inverted rectangle %d,%d-%d,%d",
			ErrBounds, sy1, sx1, sy2, sx2)
	}

	numCols := min(sx2-sx1+1, w.cols-px)
	last := min(sx2, s.cols-1) // merged span stays inside the screen row

	for sline, pline := sy1, py; sline <= sy2; sline, pline = sline+1, pline+1 {
		// source rows past the pad's bottom edge are skipped, both
		// counters still advance
		if pline >= w.rows {
			continue
		}
		if numCols > 0 && sx1 < s.cols {
			copy(s.virt.lines[sline][sx1:], w.lines[pline][px:px+numCols])
		}
		if sx1 <= last {
			s.virt.touch(sline, sx1, last)
		}
		w.dirty[pline] = nil // captured downstream
	}

	// a pending full-repaint request moves downstream, consumed once
	if w.clear {
		w.clear = false
		s.virt.clear = true
	}

	// move the displayed cursor only if the pad cursor ends up visible
	if !w.leave && w.cury >= py && w.curx >= px &&
		w.cury <= py+(sy2-sy1) && w.curx <= px+(sx2-sx1) {
		s.virt.cury = w.cury - py + sy1
		s.virt.curx = w.curx - px + sx1
	}

	return nil
}

// Refresh composites the pad viewport and flushes the virtual screen to the
// device. On a composite error the device is not touched.
func (s *Screen) Refresh(w *Window, py, px, sy1, sx1, sy2, sx2 int) error {
	err := s.Composite(w, py, px, sy1, sx1, sy2, sx2)
	if err != nil {
		return err
	}
	if s.Device == nil {
		return nil
	}
	return s.Device.Flush(s.virt)
}

// Echo appends one cell at the pad cursor and refreshes using the viewport
// remembered from pad creation. Explicit Composite or Refresh calls do not
// update the remembered viewport, so a refresh with different coordinates
// does not change what Echo repaints.
func (s *Screen) Echo(w *Window, c Cell) error {
	if w == nil {
		return ErrNotPad
	}
	if err := w.Put(c); err != nil {
		return err
	}
	v := s.saved
	return s.Refresh(w, v.PadY, v.PadX, v.MinRow, v.MinCol, v.MaxRow, v.MaxCol)
}

// EchoRune appends a rune with the pad's current attributes, see Echo.
func (s *Screen) EchoRune(w *Window, r rune) error {
	if w == nil {
		return ErrNotPad
	}
	return s.Echo(w, Cell{Char: r, State: w.state})
}

// Resize reallocates the virtual screen after the physical display changed
// size, keeping the overlapping content and queueing a full repaint. Pads
// and their saved viewport are unaffected.
func (s *Screen) Resize(rows, cols int) error {
	if rows <= 0 || cols <= 0 {
		return fmt.Errorf("%w: %dx%d", ErrBadDims, rows, cols)
	}

	lines := make([][]Cell, rows)
	for i := range lines {
		lines[i] = make([]Cell, cols)
		fill(lines[i], blank)
		if i < s.rows {
			copy(lines[i], s.virt.lines[i])
		}
	}

	s.rows, s.cols = rows, cols

	v := s.virt
	v.rows, v.cols = rows, cols
	v.lines = lines
	v.dirty = make([]*Span, rows)
	v.cury = clamp(v.cury, 0, rows-1)
	v.curx = clamp(v.curx, 0, cols-1)
	v.Touch()
	v.clear = true
	return nil
}
