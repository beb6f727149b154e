package sunset

import (
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yveskaufmann/huebridge/internal/eventstream"
	"github.com/yveskaufmann/huebridge/internal/hue"
	"github.com/yveskaufmann/huebridge/internal/store"
)

func newTestResources(t *testing.T) (*store.Resources, hue.ResourceLink) {
	t.Helper()
	log := logrus.NewEntry(logrus.New())
	resources := store.New(store.NewState(), eventstream.New(log), log)
	link := hue.RTypeGeolocation.LinkTo(hue.RTypeGeolocation.DeterministicString("geo"))
	require.NoError(t, resources.Add(link, &hue.Geolocation{ID: link.RID}))
	return resources, link
}

func TestScheduler_UnconfiguredLocationLeavesGeolocationFalse(t *testing.T) {
	resources, link := newTestResources(t)
	log := logrus.NewEntry(logrus.New())
	s := NewScheduler(resources, link.RID, 0, 0, log)

	stop := make(chan struct{})
	done := make(chan struct{})
	go func() { s.Run(stop); close(done) }()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("scheduler did not return for an unconfigured location")
	}

	geo, err := store.Get[*hue.Geolocation](resources, link)
	require.NoError(t, err)
	assert.False(t, geo.IsConfigured)
}

func TestScheduler_ConfiguredLocationMarksGeolocationTrue(t *testing.T) {
	resources, link := newTestResources(t)
	log := logrus.NewEntry(logrus.New())
	s := NewScheduler(resources, link.RID, 52.52, 13.405, log)

	stop := make(chan struct{})
	done := make(chan struct{})
	go func() { s.Run(stop); close(done) }()

	require.Eventually(t, func() bool {
		geo, err := store.Get[*hue.Geolocation](resources, link)
		return err == nil && geo.IsConfigured
	}, time.Second, 10*time.Millisecond)

	close(stop)
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("scheduler did not stop")
	}
}
