package eventstream

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yveskaufmann/huebridge/internal/hue"
)

func newTestStream(t *testing.T) *Stream {
	t.Helper()
	log := logrus.NewEntry(logrus.New())
	s := New(log)
	return s
}

func TestMonotonicIDsWithinSameSecond(t *testing.T) {
	s := newTestStream(t)
	fixed := time.Unix(1000, 0)
	s.now = func() time.Time { return fixed }

	r1 := s.Publish(hue.NewDeleteEvent(uuid.New(), "", hue.RTypeLight))
	r2 := s.Publish(hue.NewDeleteEvent(uuid.New(), "", hue.RTypeLight))

	assert.Equal(t, "1000:0", r1.ID())
	assert.Equal(t, "1000:1", r2.ID())
}

func TestIndexResetsOnSecondRollover(t *testing.T) {
	s := newTestStream(t)
	sec := int64(1000)
	s.now = func() time.Time { return time.Unix(sec, 0) }

	r1 := s.Publish(hue.NewDeleteEvent(uuid.New(), "", hue.RTypeLight))
	sec = 1001
	r2 := s.Publish(hue.NewDeleteEvent(uuid.New(), "", hue.RTypeLight))

	assert.Equal(t, "1000:0", r1.ID())
	assert.Equal(t, "1001:0", r2.ID())
}

func TestReplayAfterLastEventID(t *testing.T) {
	s := newTestStream(t)
	sec := int64(1)
	s.now = func() time.Time { return time.Unix(sec, 0) }

	e1 := s.Publish(hue.NewDeleteEvent(uuid.New(), "", hue.RTypeLight))
	e2 := s.Publish(hue.NewDeleteEvent(uuid.New(), "", hue.RTypeLight))
	sec = 2
	e3 := s.Publish(hue.NewDeleteEvent(uuid.New(), "", hue.RTypeLight))

	got := s.EventsSentAfterID(e1.ID())
	require.Len(t, got, 2)
	assert.Equal(t, e2.ID(), got[0].ID())
	assert.Equal(t, e3.ID(), got[1].ID())
}

func TestReplayUnknownIDReturnsFullBuffer(t *testing.T) {
	s := newTestStream(t)
	s.Publish(hue.NewDeleteEvent(uuid.New(), "", hue.RTypeLight))
	s.Publish(hue.NewDeleteEvent(uuid.New(), "", hue.RTypeLight))

	got := s.EventsSentAfterID("9999999:0")
	assert.Len(t, got, 2)
}

func TestRingBufferBounded(t *testing.T) {
	s := newTestStream(t)
	for i := 0; i < BufferSize+10; i++ {
		s.Publish(hue.NewDeleteEvent(uuid.New(), "", hue.RTypeLight))
	}
	assert.Len(t, s.buffer, BufferSize)
}

func TestSubscribeReceivesLiveEvents(t *testing.T) {
	s := newTestStream(t)
	ch, cancel := s.Subscribe()
	defer cancel()

	s.Publish(hue.NewDeleteEvent(uuid.New(), "", hue.RTypeLight))

	select {
	case rec := <-ch:
		assert.Equal(t, 0, rec.Index)
	case <-time.After(time.Second):
		t.Fatal("expected a live event")
	}
}
