package z2m

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/yveskaufmann/huebridge/internal/backend"
	"github.com/yveskaufmann/huebridge/internal/config"
	"github.com/yveskaufmann/huebridge/internal/store"
)

// ReconnectBackoff is the fixed delay between a lost z2m connection and the
// next dial attempt (spec.md §4.G step 2).
const ReconnectBackoff = 2 * time.Second

// sweepInterval bounds how long an abandoned scene-learning window can
// survive without a log warning when no further light update arrives.
const sweepInterval = time.Second

// Adapter is one configured z2m server's long-lived backend task: connect,
// ingest devices/groups, translate BackendRequests into z2m writes, and
// learn scenes from observed post-recall state.
type Adapter struct {
	Name string

	cfg   config.Z2MServer
	rooms map[string]config.RoomOverride
	seed  string

	resources *store.Resources
	bus       *backend.Bus
	log       *logrus.Entry

	dialer *websocket.Dialer
	conn   *websocket.Conn

	mu     sync.Mutex
	ignore map[string]struct{}

	capsMu sync.Mutex
	caps   map[uuid.UUID]capabilities

	ent     *entertainmentState
	learner *sceneLearner
}

// NewAdapter wires one configured z2m server into the shared store/event/
// bus trio. bridgeSeed anchors the deterministic UUIDs this adapter mints
// so the same physical device always maps to the same UUID across restarts.
func NewAdapter(name string, cfg config.Z2MServer, rooms map[string]config.RoomOverride, bridgeSeed string, resources *store.Resources, bus *backend.Bus, log *logrus.Entry) *Adapter {
	a := &Adapter{
		Name:      name,
		cfg:       cfg,
		rooms:     rooms,
		seed:      bridgeSeed + "|" + name,
		resources: resources,
		bus:       bus,
		log:       log.WithField("component", "z2m").WithField("server", name),
		dialer:    websocket.DefaultDialer,
		ignore:    make(map[string]struct{}),
		caps:      make(map[uuid.UUID]capabilities),
		ent:       newEntertainmentState(),
	}
	a.learner = newSceneLearner(a)
	return a
}

func (a *Adapter) lightSeed(ieeeAddress string) string {
	return a.seed + "|device|" + ieeeAddress
}

func (a *Adapter) groupSeed(topic string) string {
	return a.seed + "|group|" + topic
}

func (a *Adapter) markIgnored(name string) {
	a.mu.Lock()
	a.ignore[name] = struct{}{}
	a.mu.Unlock()
}

func (a *Adapter) isIgnored(name string) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	_, ok := a.ignore[name]
	return ok
}

// Run is the outer reconnect loop: dial, run the connection until it dies,
// log, back off, repeat until stop closes.
func (a *Adapter) Run(stop <-chan struct{}) {
	sweepStop := make(chan struct{})
	go a.sweepLoop(sweepStop)
	defer close(sweepStop)

	for {
		select {
		case <-stop:
			return
		default:
		}

		if err := a.runConnection(stop); err != nil {
			a.log.WithError(err).Warn("z2m: connection lost")
		}

		select {
		case <-stop:
			return
		case <-time.After(ReconnectBackoff):
		}
	}
}

func (a *Adapter) sweepLoop(stop <-chan struct{}) {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			a.learner.sweepExpired()
		}
	}
}

func (a *Adapter) runConnection(stop <-chan struct{}) error {
	u, err := a.cfg.GetURL()
	if err != nil {
		return err
	}
	sanitized, _ := a.cfg.GetSanitizedURL()
	a.log.WithField("url", sanitized).Info("z2m: connecting")

	conn, _, err := a.dialer.Dial(u.String(), nil)
	if err != nil {
		return fmt.Errorf("z2m: dial: %w", err)
	}
	defer conn.Close()

	readErrs := make(chan error, 1)
	go a.readLoop(conn, readErrs)

	busCh, cancel := a.bus.Subscribe(32)
	defer cancel()

	var lastSend time.Time

	for {
		select {
		case <-stop:
			return nil
		case err := <-readErrs:
			return err
		case req := <-busCh:
			if d := OutboundThrottle - time.Since(lastSend); d > 0 {
				time.Sleep(d)
			}
			a.handleOutbound(conn, req)
			lastSend = time.Now()
		}
	}
}

func (a *Adapter) readLoop(conn *websocket.Conn, errs chan<- error) {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			errs <- err
			return
		}

		var raw RawMessage
		if err := json.Unmarshal(data, &raw); err != nil {
			a.log.WithError(err).Warn("z2m: malformed frame")
			continue
		}

		if err := a.handleInbound(raw); err != nil {
			a.log.WithError(err).Error("z2m: critical topic processing failed")
			errs <- err
			return
		}
	}
}
