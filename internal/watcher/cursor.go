package watcher

// Cursor tracks the next unprocessed block height. It is only mutated from
// the pipeline's single pass loop.
type Cursor struct {
	started bool
	next    uint64
}

// NextRange computes the inclusive range to process for a new head height.
// The first head after startup anchors the cursor at that height; earlier
// history is never backfilled. A head below the cursor yields no range.
func (c *Cursor) NextRange(head uint64) (BlockRange, bool) {
	if !c.started {
		c.started = true
		c.next = head
	}
	if head < c.next {
		return BlockRange{}, false
	}
	return BlockRange{From: c.next, To: head}, true
}

// Advance marks every block up to and including processed as done. It never
// moves backward, so a failed pass leaves the same range to be retried.
func (c *Cursor) Advance(processed uint64) {
	if !c.started {
		return
	}
	if processed >= c.next {
		c.next = processed + 1
	}
}

// Next returns the first unprocessed block and whether the cursor has been
// anchored by a head notification yet.
func (c *Cursor) Next() (uint64, bool) {
	return c.next, c.started
}
