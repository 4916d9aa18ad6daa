package feed

import "time"

// DefaultDebounce is the quiescence window for filter input.
const DefaultDebounce = 250 * time.Millisecond

// Debouncer collapses bursts of triggers into one run of the latest action
// once input has been quiet for the window. Each Schedule supersedes the
// previous one; only the DebounceMsg carrying the latest sequence fires.
type Debouncer struct {
	window  time.Duration
	seq     uint64
	pending func() Cmd
}

// NewDebouncer creates a Debouncer with the given window.
func NewDebouncer(window time.Duration) *Debouncer {
	if window <= 0 {
		window = DefaultDebounce
	}
	return &Debouncer{window: window}
}

// Schedule records action as the latest trigger and returns a Cmd that
// reports back after the window.
func (d *Debouncer) Schedule(action func() Cmd) Cmd {
	d.seq++
	d.pending = action
	seq, window := d.seq, d.window
	return func() Msg {
		time.Sleep(window)
		return DebounceMsg{Seq: seq}
	}
}

// Fire runs the pending action if msg belongs to the latest Schedule call.
// Superseded messages return nil.
func (d *Debouncer) Fire(msg DebounceMsg) Cmd {
	if msg.Seq != d.seq || d.pending == nil {
		return nil
	}
	action := d.pending
	d.pending = nil
	return action()
}

// Pending reports whether a scheduled action has not fired yet.
func (d *Debouncer) Pending() bool { return d.pending != nil }
