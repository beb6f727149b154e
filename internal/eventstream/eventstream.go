// Package eventstream implements the bridge's SSE-facing event pipeline: a
// monotonic "ts:idx" id scheme, a bounded replay ring buffer, and a
// multi-producer multi-consumer broadcast for the live tail.
package eventstream

import (
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yveskaufmann/huebridge/internal/hue"
)

// BufferSize is the default ring-buffer capacity for replay.
const BufferSize = 128

// Record pairs an Event with the monotonic id assigned when it was
// buffered.
type Record struct {
	Timestamp int64
	Index     int
	Event     hue.Event
}

// ID renders the record's identifier in the "{unix_ts}:{index}" form a
// client sends back as Last-Event-ID.
func (r Record) ID() string {
	return fmt.Sprintf("%d:%d", r.Timestamp, r.Index)
}

// Stream is the event pipeline: every mutation of the store funnels through
// Publish, which assigns the next id, appends to the ring buffer, and fans
// out to live subscribers.
type Stream struct {
	mu        sync.Mutex
	timestamp int64
	index     int
	buffer    []Record
	capacity  int
	subs      map[chan Record]struct{}
	log       *logrus.Entry
	now       func() time.Time
}

// New creates a Stream with the default ring-buffer capacity.
func New(log *logrus.Entry) *Stream {
	return &Stream{
		capacity: BufferSize,
		subs:     make(map[chan Record]struct{}),
		log:      log,
		now:      time.Now,
	}
}

// Publish assigns the next monotonic id to ev, appends it to the ring
// buffer, and best-effort broadcasts it to every live subscriber. It must
// be called from inside the store's mutation critical section, before the
// store's lock is released.
func (s *Stream) Publish(ev hue.Event) Record {
	s.mu.Lock()
	defer s.mu.Unlock()

	ts := s.now().Unix()
	if ts == s.timestamp {
		s.index++
	} else {
		s.timestamp = ts
		s.index = 0
	}

	rec := Record{Timestamp: s.timestamp, Index: s.index, Event: ev}
	s.addToBuffer(rec)

	for ch := range s.subs {
		select {
		case ch <- rec:
		default:
			s.log.Warn("eventstream: subscriber overflow, dropping event")
		}
	}

	return rec
}

func (s *Stream) addToBuffer(rec Record) {
	if len(s.buffer) >= s.capacity {
		s.buffer = s.buffer[1:]
	}
	s.buffer = append(s.buffer, rec)
}

// Subscribe registers a new live listener; the caller must call the
// returned cancel function when done to avoid leaking the channel.
func (s *Stream) Subscribe() (<-chan Record, func()) {
	ch := make(chan Record, 32)
	s.mu.Lock()
	s.subs[ch] = struct{}{}
	s.mu.Unlock()

	cancel := func() {
		s.mu.Lock()
		delete(s.subs, ch)
		s.mu.Unlock()
		close(ch)
	}
	return ch, cancel
}

// EventsSentAfterID replays the buffered records strictly after lastID, or
// the entire buffer if lastID is not found (spec.md §8 property 7).
func (s *Stream) EventsSentAfterID(lastID string) []Record {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, rec := range s.buffer {
		if rec.ID() == lastID {
			out := make([]Record, len(s.buffer)-i-1)
			copy(out, s.buffer[i+1:])
			return out
		}
	}

	out := make([]Record, len(s.buffer))
	copy(out, s.buffer)
	return out
}
