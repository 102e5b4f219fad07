package strategy

import "time"

// BarClock remembers the open time of the last processed bar so entry rules
// run at most once per bar while management still runs on every tick.
type BarClock struct {
	last time.Time
	seen bool
}

// Advance records open and reports whether it starts a bar not seen before.
func (c *BarClock) Advance(open time.Time) bool {
	if c.seen && open.Equal(c.last) {
		return false
	}
	c.last, c.seen = open, true
	return true
}

// Last returns the open time of the last processed bar.
func (c *BarClock) Last() time.Time {
	return c.last
}
