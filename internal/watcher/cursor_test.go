package watcher

import "testing"

func TestCursorFirstRange(t *testing.T) {
	var c Cursor

	rng, ok := c.NextRange(500)
	if !ok {
		t.Fatalf("expected a range for the first head")
	}
	if rng.From != 500 || rng.To != 500 {
		t.Fatalf("first range must be the head block only, got [%d,%d]", rng.From, rng.To)
	}
}

func TestCursorAdvances(t *testing.T) {
	var c Cursor

	c.NextRange(100)
	c.Advance(100)

	rng, ok := c.NextRange(103)
	if !ok {
		t.Fatalf("expected a range")
	}
	if rng.From != 101 || rng.To != 103 {
		t.Fatalf("expected [101,103], got [%d,%d]", rng.From, rng.To)
	}
}

func TestCursorSkipsStaleHead(t *testing.T) {
	var c Cursor

	c.NextRange(100)
	c.Advance(100)

	if _, ok := c.NextRange(99); ok {
		t.Fatalf("stale head must produce no range")
	}
	if _, ok := c.NextRange(100); ok {
		t.Fatalf("already processed head must produce no range")
	}
}

func TestCursorHoldsWithoutAdvance(t *testing.T) {
	var c Cursor

	c.NextRange(100)
	// No Advance: the failed range is retried, growing with the new head.
	rng, ok := c.NextRange(102)
	if !ok {
		t.Fatalf("expected a range")
	}
	if rng.From != 100 || rng.To != 102 {
		t.Fatalf("expected [100,102], got [%d,%d]", rng.From, rng.To)
	}
}

func TestCursorNeverMovesBackward(t *testing.T) {
	var c Cursor

	c.NextRange(100)
	c.Advance(100)
	c.Advance(50)

	next, started := c.Next()
	if !started || next != 101 {
		t.Fatalf("expected next=101, got %d (started=%v)", next, started)
	}
}
