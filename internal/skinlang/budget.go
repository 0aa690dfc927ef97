// budget.go — the cooperative-scheduling primitive: a Budget capability
// the validator checks between tag boundaries of one document's walk,
// yielding to a scheduler when exhausted.
//
// The original single-threaded event loop yielded by literally returning
// control to its caller; here a Budget is a wall-clock slice a chunked
// walk consults so it can hand the Analyzer's mutex back between slices
// instead of holding it for one large document's entire validation. Each
// document validation is a task that cooperatively yields roughly every
// 500 ms.
package skinlang

import "time"

// DefaultBudgetSlice is the ~500 ms wall-clock debounce cutoff.
const DefaultBudgetSlice = 500 * time.Millisecond

// Budget bounds one chunk of validation work. A nil *Budget never expires,
// which is what CheckDocument's plain synchronous callers (skinlint,
// skin-repl, tests) want: run the whole walk in one slice.
type Budget struct {
	clock    Clock
	slice    time.Duration
	deadline time.Time
}

// NewBudget starts a fresh slice of length dur, expiring dur after clock's
// current time. dur <= 0 falls back to DefaultBudgetSlice.
func NewBudget(clock Clock, dur time.Duration) *Budget {
	if clock == nil {
		clock = SystemClock
	}
	if dur <= 0 {
		dur = DefaultBudgetSlice
	}
	return &Budget{clock: clock, slice: dur, deadline: clock.Now().Add(dur)}
}

// Exhausted reports whether this slice's wall-clock allowance has passed.
// A nil Budget is never exhausted.
func (b *Budget) Exhausted() bool {
	if b == nil {
		return false
	}
	return !b.clock.Now().Before(b.deadline)
}
