// Package reveal implements the typed-out animation for assistant
// answers: given a full text, it produces a time-ordered sequence of
// growing prefixes, one character per tick, as if the answer were being
// typed live.
//
// A single Revealer animates at most one text at a time. Each call to
// Set supersedes the previous reveal: the old timer is cancelled
// immediately, the visible text resets to empty, and ticking restarts
// against the new target. One reveal instance therefore moves through
// Idle → Revealing → Complete, and can only leave Revealing early by
// being superseded or by the owner tearing the Revealer down with Stop.
package reveal

import (
	"sync"
	"time"
)

// Frame is one observable step of a reveal: the text visible so far and
// whether the animation is still running.
type Frame struct {
	VisibleText string
	Revealing   bool
}

// Revealer owns the timer behind the animation. The zero value is not
// usable; create one with New. Safe for concurrent use.
type Revealer struct {
	mu        sync.Mutex
	full      []rune
	visible   int
	revealing bool
	// cancel belongs to the currently ticking goroutine. Closing it (or
	// replacing it) guarantees the old goroutine emits no further frames.
	cancel chan struct{}
}

func New() *Revealer {
	return &Revealer{}
}

// Set starts revealing fullText, superseding any reveal in progress. It
// returns a channel of frames for this target: one frame per tick, each
// extending the visible text by one character, closed once the text is
// fully revealed or the reveal is superseded or stopped.
//
// If enabled is false the whole text is visible immediately and the
// returned channel carries a single final frame. An empty fullText
// likewise completes at once. The channel is buffered for the full
// animation, so the ticker never blocks on a slow consumer.
func (r *Revealer) Set(fullText string, step time.Duration, enabled bool) <-chan Frame {
	r.mu.Lock()
	defer r.mu.Unlock()

	// Supersession: the prior timer must see no more ticks.
	if r.cancel != nil {
		close(r.cancel)
		r.cancel = nil
	}

	r.full = []rune(fullText)
	r.visible = 0

	frames := make(chan Frame, len(r.full)+1)

	switch {
	case !enabled:
		r.visible = len(r.full)
		r.revealing = false
		frames <- Frame{VisibleText: fullText, Revealing: false}
		close(frames)
	case len(r.full) == 0:
		r.revealing = false
		frames <- Frame{VisibleText: "", Revealing: false}
		close(frames)
	default:
		r.revealing = true
		cancel := make(chan struct{})
		r.cancel = cancel
		go r.run(cancel, frames, step)
	}

	return frames
}

// run ticks the animation forward until completion or cancellation. It is
// the only writer to its frames channel and always closes it on exit, so
// consumers can range over the channel on every outcome.
func (r *Revealer) run(cancel chan struct{}, frames chan<- Frame, step time.Duration) {
	defer close(frames)

	ticker := time.NewTicker(step)
	defer ticker.Stop()

	for {
		select {
		case <-cancel:
			return
		case <-ticker.C:
			r.mu.Lock()
			if r.cancel != cancel {
				// Superseded between the tick firing and acquiring the
				// lock. The new target owns the state now.
				r.mu.Unlock()
				return
			}
			r.visible++
			done := r.visible >= len(r.full)
			if done {
				r.visible = len(r.full)
				r.revealing = false
				r.cancel = nil
			}
			frame := Frame{VisibleText: string(r.full[:r.visible]), Revealing: r.revealing}
			r.mu.Unlock()

			frames <- frame
			if done {
				return
			}
		}
	}
}

// Snapshot reports the current visible text and whether the animation is
// still running.
func (r *Revealer) Snapshot() Frame {
	r.mu.Lock()
	defer r.mu.Unlock()
	return Frame{VisibleText: string(r.full[:r.visible]), Revealing: r.revealing}
}

// Stop cancels any reveal in progress. It is the owner-teardown release:
// callers must invoke it when the surface displaying the reveal goes away
// (for example, the SSE client disconnects) so no timer outlives its
// target. The underlying text is never modified; only the animation halts.
func (r *Revealer) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cancel != nil {
		close(r.cancel)
		r.cancel = nil
	}
	r.revealing = false
}
