package deck

// Cursor is a wrapping position within a deck of n cards.
// The zero value points at the first card.
type Cursor struct {
	pos int
}

// Pos returns the current index.
func (c Cursor) Pos() int { return c.pos }

// Next advances by one, wrapping to the start. n must be positive.
func (c *Cursor) Next(n int) {
	if n <= 0 {
		return
	}
	c.pos = (c.pos + 1) % n
}

// Previous moves back by one, wrapping to the end. n must be positive.
func (c *Cursor) Previous(n int) {
	if n <= 0 {
		return
	}
	c.pos = (c.pos - 1 + n) % n
}

// Reset returns to the first card.
func (c *Cursor) Reset() { c.pos = 0 }

// Clamp pulls the position back into [0, n). An empty deck resets it.
func (c *Cursor) Clamp(n int) {
	if n <= 0 || c.pos < 0 {
		c.pos = 0
		return
	}
	if c.pos >= n {
		c.pos = n - 1
	}
}
