package pad

import "fmt"

const (
	Color16  = 1
	Color256 = 2
	Color16M = 3
)

const (
	FlagBold uint8 = 1 << iota
	FlagUnderline
	FlagBlink
	FlagInverse
	FlagInvisible
	FlagStrike
	FlagItalic
	FlagUnderlineColor
)

type Color [3]byte

// State is the display attribute payload of a cell. The compositor copies it
// around as opaque data; only the terminal renderer interprets it.
type State struct {
	FG        Color
	BG        Color
	UL        Color // underline color
	ColorType uint8
	Flags     uint8
}

// Set updates the state from SGR parameters
func (s *State) Set(p ...int) error {
	if len(p) == 0 {
		*s = State{}
	}
	for i := 0; i < len(p); i++ {
		c := p[i]
		sub := p[i:]
		switch {
		case c == 0:
			*s = State{}
		case c == 1:
			s.Flags |= FlagBold
		case c == 22:
			s.Flags &= ^FlagBold
		case c == 3:
			s.Flags |= FlagItalic
		case c == 23:
			s.Flags &= ^FlagItalic
		case c == 4:
			s.Flags |= FlagUnderline
		case c == 24:
			s.Flags &= ^FlagUnderline
		case c == 5:
			s.Flags |= FlagBlink
		case c == 25:
			s.Flags &= ^FlagBlink
		case c == 7:
			s.Flags |= FlagInverse
		case c == 27:
			s.Flags &= ^FlagInverse
		case c == 8:
			s.Flags |= FlagInvisible
		case c == 9:
			s.Flags |= FlagStrike
		case c >= 90 && c <= 97: // FG bright (not bold)
			s.ColorType = s.ColorType&0b1100 | Color16
			s.FG[0] = byte(c)
		case c >= 100 && c <= 107: // BG bright (not bold)
			s.ColorType = s.ColorType&0b0011 | (Color16 << 2)
			s.BG[0] = byte(c)
		case c >= 30 && c <= 37: // FG
			s.ColorType = s.ColorType&0b1100 | Color16
			s.FG[0] = byte(c)
		case c == 39: // default foreground
			s.ColorType &= 0b1100
		case c >= 40 && c <= 47: // BG 16 colors
			s.ColorType = s.ColorType&0b0011 | (Color16 << 2)
			s.BG[0] = byte(c)
		case c == 49: // default background
			s.ColorType &= 0b0011
		// FG 256 colors
		case c == 38 && len(sub) >= 3 && sub[1] == 5:
			s.ColorType = s.ColorType&0b1100 | Color256
			s.FG[0] = byte(sub[2])
			i += 2
		// BG 256 colors
		case c == 48 && len(sub) >= 3 && sub[1] == 5:
			s.ColorType = s.ColorType&0b0011 | (Color256 << 2)
			s.BG[0] = byte(sub[2])
			i += 2
		// FG 16M colors
		case c == 38 && len(sub) >= 5 && sub[1] == 2:
			s.ColorType = s.ColorType&0b1100 | Color16M
			s.FG = Color{byte(sub[2]), byte(sub[3]), byte(sub[4])}
			i += 4
		// BG 16M colors
		case c == 48 && len(sub) >= 5 && sub[1] == 2:
			s.ColorType = s.ColorType&0b0011 | (Color16M << 2)
			s.BG = Color{byte(sub[2]), byte(sub[3]), byte(sub[4])}
			i += 4
		// underline color, sample: \x1b[58:2::173:216:230m
		case c == 58 && len(sub) >= 5 && sub[1] == 2:
			s.Flags |= FlagUnderlineColor
			s.UL = Color{byte(sub[2]), byte(sub[3]), byte(sub[4])}
			i += 4
		default:
			return fmt.Errorf("unknown SGR: %v", c)
		}
	}
	return nil
}

// Cell is a single character cell in a pad or in the virtual screen.
// A wide rune occupies its display width; the trailing cells hold Char 0.
type Cell struct {
	Char rune
	State
}

// blank is what erased and freshly allocated cells hold
var blank = Cell{Char: ' '}
