package z2m

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/yveskaufmann/huebridge/internal/hue"
	"github.com/yveskaufmann/huebridge/internal/store"
)

// SceneLearnWindow is how long a freshly recalled, action-less scene waits
// for every light in its room to report a post-recall state before its
// capture is discarded (spec.md §4.G "Scene learning").
const SceneLearnWindow = 5 * time.Second

type learnWindow struct {
	sceneLink hue.ResourceLink
	deadline  time.Time
	missing   map[uuid.UUID]struct{}
	known     []hue.SceneActionElement
}

// sceneLearner tracks in-flight scene-learning windows. At most one window
// is open per scene at a time; observe() is called from the inbound device
// state handler after every successful Light update.
type sceneLearner struct {
	a *Adapter

	mu      sync.Mutex
	windows []*learnWindow
}

func newSceneLearner(a *Adapter) *sceneLearner {
	return &sceneLearner{a: a}
}

// startWindow opens a learning window for sceneLink, covering every Light
// reachable from roomLink's current children, and replaces any window
// already open for the same scene.
func (l *sceneLearner) startWindow(sceneLink, roomLink hue.ResourceLink) {
	room, err := store.Get[*hue.Room](l.a.resources, roomLink)
	if err != nil {
		l.a.log.WithError(err).Warn("z2m: scene learn: room lookup")
		return
	}

	missing := make(map[uuid.UUID]struct{})
	for _, child := range room.Children {
		device, err := store.Get[*hue.Device](l.a.resources, child)
		if err != nil {
			continue
		}
		if lightLink, ok := device.LightService(); ok {
			missing[lightLink.RID] = struct{}{}
		}
	}

	if len(missing) == 0 {
		return
	}

	l.mu.Lock()
	live := l.windows[:0]
	for _, w := range l.windows {
		if w.sceneLink != sceneLink {
			live = append(live, w)
		}
	}
	l.windows = append(live, &learnWindow{
		sceneLink: sceneLink,
		deadline:  time.Now().Add(SceneLearnWindow),
		missing:   missing,
	})
	l.mu.Unlock()
}

// observe feeds a Light's freshly applied post-state into any window
// waiting on it, sweeping out expired windows as it goes.
func (l *sceneLearner) observe(lightID uuid.UUID) {
	light, err := store.Get[*hue.Light](l.a.resources, hue.RTypeLight.LinkTo(lightID))
	if err != nil {
		return
	}

	l.mu.Lock()
	now := time.Now()
	live := l.windows[:0]
	var finishing []*learnWindow

	for _, w := range l.windows {
		if now.After(w.deadline) {
			l.a.log.WithField("scene", w.sceneLink.RID).Warn("z2m: scene learn window expired, discarding")
			continue
		}
		if _, ok := w.missing[lightID]; ok {
			delete(w.missing, lightID)
			w.known = append(w.known, hue.SceneActionElement{
				Target: hue.RTypeLight.LinkTo(lightID),
				Action: captureAction(light),
			})
		}
		if len(w.missing) == 0 {
			finishing = append(finishing, w)
			continue
		}
		live = append(live, w)
	}
	l.windows = live
	l.mu.Unlock()

	for _, w := range finishing {
		l.persist(w)
	}
}

// sweepExpired discards windows past their deadline even when no further
// Light update arrives to trigger observe's own sweep.
func (l *sceneLearner) sweepExpired() {
	l.mu.Lock()
	now := time.Now()
	live := l.windows[:0]
	for _, w := range l.windows {
		if now.After(w.deadline) {
			l.a.log.WithField("scene", w.sceneLink.RID).Warn("z2m: scene learn window expired, discarding")
			continue
		}
		live = append(live, w)
	}
	l.windows = live
	l.mu.Unlock()
}

func (l *sceneLearner) persist(w *learnWindow) {
	actions := w.known
	if err := store.Update[*hue.Scene](l.a.resources, w.sceneLink.RID, func(s *hue.Scene) {
		s.Actions = actions
	}); err != nil {
		l.a.log.WithError(err).Warn("z2m: scene learn: persist actions")
	}
}

// captureAction snapshots the fields a scene replay actually restores:
// on/off, brightness, and color (xy or mirek) — never gradient or effects.
func captureAction(light *hue.Light) hue.SceneAction {
	action := hue.SceneAction{}
	on := light.On
	action.On = &on

	if light.Dimming != nil {
		action.Dimming = &hue.Dimming{Brightness: light.Dimming.Brightness}
	}
	if light.ColorTemperature != nil && light.ColorTemperature.MirekValid && light.ColorTemperature.Mirek != nil {
		action.ColorTemperature = &hue.ColorTemperatureUpdate{Mirek: *light.ColorTemperature.Mirek}
	} else if light.Color != nil {
		action.Color = &hue.ColorUpdate{XY: light.Color.XY}
	}

	return action
}
