package interp

// eof is returned by the cursor when the input is exhausted.
const eof = rune(-1)

// cursor is a bounded, peekable scanner over a run of characters. It is the
// primitive the expansion and brace scanners are built on.
type cursor struct {
	runes []rune
	pos   int
}

func newCursor(text string) *cursor {
	return &cursor{runes: []rune(text)}
}

// next consumes and returns the next character, or eof.
func (c *cursor) next() rune {
	if c.pos >= len(c.runes) {
		return eof
	}
	r := c.runes[c.pos]
	c.pos++
	return r
}

// peek returns the next character without consuming it, or eof.
func (c *cursor) peek() rune {
	if c.pos >= len(c.runes) {
		return eof
	}
	return c.runes[c.pos]
}
