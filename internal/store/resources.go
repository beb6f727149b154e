package store

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/yveskaufmann/huebridge/internal/eventstream"
	"github.com/yveskaufmann/huebridge/internal/hue"
)

// MaxSceneID bounds the per-room scene id space z2m scene_store indices
// are drawn from.
const MaxSceneID = 100

// NotFoundError is returned for lookups against an id the store doesn't
// hold.
type NotFoundError struct{ ID uuid.UUID }

func (e *NotFoundError) Error() string { return fmt.Sprintf("store: resource not found: %s", e.ID) }

// V1NotFoundError is returned for legacy id lookups.
type V1NotFoundError struct{ ID uint32 }

func (e *V1NotFoundError) Error() string { return fmt.Sprintf("store: legacy id not found: %d", e.ID) }

// FullError is returned when a bounded id space (scene ids in a room) is
// exhausted.
type FullError struct{ RType hue.RType }

func (e *FullError) Error() string { return fmt.Sprintf("store: %s id space exhausted", e.RType) }

// Resources is the synchronous kernel: one mutex guarding the State, wired
// to an event pipeline for SSE fanout. All mutations are brief,
// non-suspending critical sections per spec.md §5 — no channel send or I/O
// happens while the lock is held, other than the non-blocking event
// publish/backend broadcast.
type Resources struct {
	mu     sync.Mutex
	state  State
	events *eventstream.Stream
	log    *logrus.Entry
}

// New creates a Resources kernel around an already-loaded or freshly
// initialized State.
func New(state State, events *eventstream.Stream, log *logrus.Entry) *Resources {
	return &Resources{state: state, events: events, log: log}
}

// Snapshot returns a shallow copy of the current state for the config
// writer to serialize; callers must not mutate the returned maps.
func (r *Resources) Snapshot() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Add is idempotent insertion: repeated identical inserts are a no-op,
// insertion of a link whose UUID is new emits Event.Add.
func (r *Resources) Add(link hue.ResourceLink, res hue.Resource) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if link.RType != res.RType() {
		return &hue.WrongTypeError{Want: link.RType, Got: res.RType()}
	}

	if _, exists := r.state.Resources[link.RID]; exists {
		return nil
	}

	r.state.Resources[link.RID] = res

	idv1 := r.state.assignIDV1(link.RType)
	aux := AuxData{IDV1Index: &idv1}
	r.state.Aux[link.RID] = aux
	r.state.IDV1Reverse[idv1] = link.RID

	r.publish(hue.NewAddEvent(link.RID, r.idV1Path(link.RID, res), res))
	return nil
}

// Delete removes a resource and its aux sidecar, emitting Event.Delete.
// Cascading to dependent resources is the caller's responsibility.
func (r *Resources) Delete(link hue.ResourceLink) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	res, ok := r.state.Resources[link.RID]
	if !ok {
		return &NotFoundError{ID: link.RID}
	}

	idv1Path := r.idV1Path(link.RID, res)

	if aux, ok := r.state.Aux[link.RID]; ok && aux.IDV1Index != nil {
		delete(r.state.IDV1Reverse, *aux.IDV1Index)
	}
	delete(r.state.Aux, link.RID)
	delete(r.state.Resources, link.RID)

	r.publish(hue.NewDeleteEvent(link.RID, idv1Path, link.RType))
	return nil
}

// Get performs a typed read, narrowing to T or returning WrongTypeError.
func Get[T hue.Resource](r *Resources, link hue.ResourceLink) (T, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	res, ok := r.state.Resources[link.RID]
	if !ok {
		var zero T
		return zero, &NotFoundError{ID: link.RID}
	}
	return hue.As[T](res)
}

// GetResource returns the untyped resource for a link.
func (r *Resources) GetResource(id uuid.UUID) (hue.Resource, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	res, ok := r.state.Resources[id]
	if !ok {
		return nil, &NotFoundError{ID: id}
	}
	return res, nil
}

// GetResourcesByType returns every live resource of the given rtype.
func (r *Resources) GetResourcesByType(rtype hue.RType) map[uuid.UUID]hue.Resource {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make(map[uuid.UUID]hue.Resource)
	for id, res := range r.state.Resources {
		if res.RType() == rtype {
			out[id] = res
		}
	}
	return out
}

// Update[T] loads the resource, narrows it to T, lets fn mutate it in
// place, derives the post-image delta, and publishes Event.Update. The
// delta reflects the post-mutation state, not a diff.
func Update[T hue.Resource](r *Resources, id uuid.UUID, fn func(T)) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	res, ok := r.state.Resources[id]
	if !ok {
		return &NotFoundError{ID: id}
	}

	typed, err := hue.As[T](res)
	if err != nil {
		return err
	}

	fn(typed)

	upd, err := hue.GenerateUpdate(res)
	if err != nil {
		return err
	}

	r.publish(hue.NewUpdateEvent(id, r.idV1Path(id, res), upd))
	return nil
}

// GetNextSceneID returns the lowest integer in [0, MaxSceneID) not already
// bound (via aux.topic-adjacent index) to an existing scene in roomLink.
func (r *Resources) GetNextSceneID(roomLink hue.ResourceLink) (uint32, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	used := make(map[uint32]bool)
	for id, res := range r.state.Resources {
		scene, ok := res.(*hue.Scene)
		if !ok || scene.Group != roomLink {
			continue
		}
		if aux, ok := r.state.Aux[id]; ok && aux.IDV1Index != nil {
			used[*aux.IDV1Index] = true
		}
	}

	for i := uint32(0); i < MaxSceneID; i++ {
		if !used[i] {
			return i, nil
		}
	}
	return 0, &FullError{RType: hue.RTypeScene}
}

// SetTopic binds a z2m friendly_name topic to a UUID, enforcing the
// uniqueness invariant by clearing any prior owner of the same topic.
func (r *Resources) SetTopic(id uuid.UUID, topic string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for other, aux := range r.state.Aux {
		if aux.Topic != nil && *aux.Topic == topic && other != id {
			aux.Topic = nil
			r.state.Aux[other] = aux
		}
	}

	aux := r.state.Aux[id]
	t := topic
	aux.Topic = &t
	r.state.Aux[id] = aux
}

// SetSceneIndex binds a z2m-side scene_store index to a scene's aux entry,
// the id future recalls and deletes address that scene by. Scene indices
// are decided by the caller (GetNextSceneID for locally-created scenes, or
// the index z2m itself reports for discovered ones); the call overwrites
// the auto-increment legacy id that Add assigned to the scene.
func (r *Resources) SetSceneIndex(id uuid.UUID, index uint32) {
	r.mu.Lock()
	defer r.mu.Unlock()

	aux := r.state.Aux[id]
	aux.IDV1Index = &index
	r.state.Aux[id] = aux
}

// SceneIndex returns the z2m-side scene_store index bound to id, if any.
func (r *Resources) SceneIndex(id uuid.UUID) (uint32, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	aux, ok := r.state.Aux[id]
	if !ok || aux.IDV1Index == nil {
		return 0, false
	}
	return *aux.IDV1Index, true
}

// TopicOf returns the z2m topic bound to id, if any.
func (r *Resources) TopicOf(id uuid.UUID) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	aux, ok := r.state.Aux[id]
	if !ok || aux.Topic == nil {
		return "", false
	}
	return *aux.Topic, true
}

// UUIDForTopic reverse-looks-up a z2m topic to its bound UUID.
func (r *Resources) UUIDForTopic(topic string) (uuid.UUID, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, aux := range r.state.Aux {
		if aux.Topic != nil && *aux.Topic == topic {
			return id, true
		}
	}
	return uuid.Nil, false
}

// IDV1Path exposes the per-rtype v1 scoping rules from spec.md §4.C to
// callers outside the package, e.g. the REST handlers building a GET
// response's id_v1 field.
func (r *Resources) IDV1Path(id uuid.UUID) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	res, ok := r.state.Resources[id]
	if !ok {
		return ""
	}
	return r.idV1Path(id, res)
}

// ResolveV1 finds the resource whose v1 projection matches bucket+idv1,
// e.g. ResolveV1("lights", 3) for a v1 client's GET /api/{user}/lights/3.
// IDV1Reverse only tracks the per-rtype auto-increment counter a single
// rtype assigned, which collides across types that share a v1 bucket
// (Room/GroupedLight/EntertainmentConfiguration all under "/groups"), so
// this scans and re-derives the path the same way idV1Path does internally.
func (r *Resources) ResolveV1(bucket string, idv1 uint32) (uuid.UUID, hue.Resource, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	want := fmt.Sprintf("/%s/%d", bucket, idv1)
	for id, res := range r.state.Resources {
		if r.idV1Path(id, res) == want {
			return id, res, nil
		}
	}
	return uuid.Nil, nil, &V1NotFoundError{ID: idv1}
}

// idV1Path implements the per-rtype v1 scoping rules from spec.md §4.C.
// Must be called with r.mu held.
func (r *Resources) idV1Path(id uuid.UUID, res hue.Resource) string {
	aux, ok := r.state.Aux[id]

	switch v := res.(type) {
	case *hue.Light:
		if ok && aux.IDV1Index != nil {
			p, _ := hue.IDV1Scope(hue.RTypeLight, *aux.IDV1Index)
			return p
		}
	case *hue.GroupedLight:
		if ok && aux.IDV1Index != nil {
			p, _ := hue.IDV1Scope(hue.RTypeGroupedLight, *aux.IDV1Index)
			return p
		}
	case *hue.Scene:
		if ok && aux.IDV1Index != nil {
			p, _ := hue.IDV1Scope(hue.RTypeScene, *aux.IDV1Index)
			return p
		}
	case *hue.Room:
		if gl, has := v.GroupedLightService(); has {
			if glAux, ok := r.state.Aux[gl.RID]; ok && glAux.IDV1Index != nil {
				p, _ := hue.IDV1Scope(hue.RTypeGroupedLight, *glAux.IDV1Index)
				return p
			}
		}
	case *hue.Device:
		if l, has := v.LightService(); has {
			if lAux, ok := r.state.Aux[l.RID]; ok && lAux.IDV1Index != nil {
				p, _ := hue.IDV1Scope(hue.RTypeLight, *lAux.IDV1Index)
				return p
			}
		}
	case *hue.BridgeHome:
		return "/groups/0"
	}
	return ""
}

// publish wraps the event stream call; split out so Add/Delete/Update share
// one ordering point. Must be called with r.mu held, matching spec.md §5's
// ordering guarantee that the event is enqueued before the lock releases.
func (r *Resources) publish(ev hue.Event) {
	r.events.Publish(ev)
}
