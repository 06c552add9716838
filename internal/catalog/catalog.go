// Package catalog holds the browse-side view logic: cycling through a
// card's cover images and ranking entries against a search query.
package catalog

import "fmt"

// Placeholder is the cover reference shown when a manifest has none.
const Placeholder = "static/img/placeholder.svg"

// CoverCycler steps through a fixed list of cover references, wrapping in
// both directions. The list never changes after construction; a new card
// gets a new cycler.
type CoverCycler struct {
	covers []string
	index  int
}

// NewCoverCycler starts at the first cover.
func NewCoverCycler(covers []string) *CoverCycler {
	return &CoverCycler{covers: covers}
}

func (c *CoverCycler) Len() int   { return len(c.covers) }
func (c *CoverCycler) Index() int { return c.index }

// Current returns the cover under the cursor, or Placeholder for a card
// without covers.
func (c *CoverCycler) Current() string {
	if len(c.covers) == 0 {
		return Placeholder
	}
	return c.covers[c.index]
}

// Next advances one cover, wrapping past the end. No covers, no motion.
func (c *CoverCycler) Next() {
	if len(c.covers) == 0 {
		return
	}
	c.index = (c.index + 1) % len(c.covers)
}

// Prev steps back one cover, wrapping before the start.
func (c *CoverCycler) Prev() {
	if len(c.covers) == 0 {
		return
	}
	c.index = (c.index + len(c.covers) - 1) % len(c.covers)
}

// Position renders the "i/n" marker for the card, empty when the card has
// no covers.
func (c *CoverCycler) Position() string {
	if len(c.covers) == 0 {
		return ""
	}
	return fmt.Sprintf("%d/%d", c.index+1, len(c.covers))
}
