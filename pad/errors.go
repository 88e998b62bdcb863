package pad

import "errors"

var (
	// ErrNotPad is returned when an operation that needs a pad or sub-pad
	// receives a nil or plain window.
	ErrNotPad = errors.New("not a pad")

	// ErrBounds is returned for rectangles that fall outside a window, the
	// physical screen, or that are inverted.
	ErrBounds = errors.New("out of bounds")

	// ErrBadDims is returned for non-positive window dimensions.
	ErrBadDims = errors.New("bad dimensions")
)
