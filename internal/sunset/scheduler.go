package sunset

import (
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/yveskaufmann/huebridge/internal/hue"
	"github.com/yveskaufmann/huebridge/internal/store"
)

// Scheduler recomputes sunrise/sunset for the bridge's configured location
// and logs the result; on the Geolocation resource it sets only
// is_configured. The bridge stores no
// behavior engine itself; BehaviorInstance wake-up scripts are a declared
// out-of-core collaborator that would read these sun times the same way
// this scheduler computes them.
type Scheduler struct {
	logger    *logrus.Entry
	resources *store.Resources
	geoID     uuid.UUID
	latitude  float64
	longitude float64

	ticker *time.Ticker
}

func NewScheduler(resources *store.Resources, geoID uuid.UUID, latitude, longitude float64, logger *logrus.Entry) *Scheduler {
	return &Scheduler{
		logger:    logger.WithField("component", "sunset_scheduler"),
		resources: resources,
		geoID:     geoID,
		latitude:  latitude,
		longitude: longitude,
	}
}

// Run first sets the Geolocation resource's is_configured. For a configured
// location it then recomputes sun times once immediately and every hour
// until stop closes; with no location configured it returns at once.
func (s *Scheduler) Run(stop <-chan struct{}) {
	configured := s.latitude != 0 || s.longitude != 0
	if err := store.Update[*hue.Geolocation](s.resources, s.geoID, func(g *hue.Geolocation) {
		g.IsConfigured = configured
	}); err != nil {
		s.logger.WithError(err).Warn("sunset: failed to update geolocation resource")
	}
	if !configured {
		s.logger.Info("sunset: no bridge location configured, scheduler idle")
		return
	}

	s.ticker = time.NewTicker(time.Hour)
	defer s.ticker.Stop()

	s.tick()
	for {
		select {
		case <-s.ticker.C:
			s.tick()
		case <-stop:
			return
		}
	}
}

func (s *Scheduler) tick() {
	sunriseTime, sunsetTime := CalculateSunriseSunset(s.latitude, s.longitude)
	s.logger.WithField("sunrise", sunriseTime).WithField("sunset", sunsetTime).Info("sunset: recomputed sun times")
}
