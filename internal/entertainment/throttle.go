package entertainment

import (
	"time"

	"github.com/yveskaufmann/huebridge/internal/backend"
)

// throttleRate is how fast queued frames drain onto the backend bus,
// independent of how fast the DTLS session reads them off the wire
// (spec.md §4.H step 5).
const throttleRate = 30

// throttleCapacity bounds how many not-yet-admitted frames a session may
// hold; once full, newly read frames are dropped rather than queued.
const throttleCapacity = 2

// throttleQueue is the sole rate limiter in the real-time path: a bounded
// buffer drained at a fixed tick rate. Frames that arrive faster than the
// buffer drains are silently lost, never delayed.
type throttleQueue struct {
	ch chan backend.EntertainmentFrameRequest
}

func newThrottleQueue() *throttleQueue {
	return &throttleQueue{ch: make(chan backend.EntertainmentFrameRequest, throttleCapacity)}
}

// tryEnqueue reports whether the frame was accepted into the queue.
func (q *throttleQueue) tryEnqueue(f backend.EntertainmentFrameRequest) bool {
	select {
	case q.ch <- f:
		return true
	default:
		return false
	}
}

// drain runs until stop closes, admitting at most one queued frame per
// tick and publishing it to the bus. It logs the admitted count once per
// second regardless of whether any frame was admitted.
func (s *session) drain(stop <-chan struct{}) {
	ticker := time.NewTicker(time.Second / throttleRate)
	defer ticker.Stop()
	logTicker := time.NewTicker(time.Second)
	defer logTicker.Stop()

	admitted := 0
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			select {
			case f := <-s.queue.ch:
				s.server.bus.Publish(backend.Request{Kind: backend.KindEntertainmentFrame, EntertainmentFrame: &f})
				admitted++
			default:
			}
		case <-logTicker.C:
			s.server.log.WithField("area", s.area).WithField("frames", admitted).Debug("entertainment: admitted frames/s")
			admitted = 0
		}
	}
}
