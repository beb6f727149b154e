package hue

import (
	"encoding/json"

	"github.com/google/uuid"
)

// EventType tags the three kinds of change record an SSE consumer sees,
// plus an Error kind for malformed-request feedback.
type EventType string

const (
	EventAdd    EventType = "add"
	EventUpdate EventType = "update"
	EventDelete EventType = "delete"
	EventError  EventType = "error"
)

// EventRecord is one resource's worth of change inside an event block. For
// Update records Body carries only the computed delta; for Add it carries
// the full resource; for Delete it carries just the id/id_v1/type triple.
type EventRecord struct {
	ID    uuid.UUID `json:"id"`
	IDV1  string    `json:"id_v1,omitempty"`
	RType RType     `json:"type"`
	Body  any       `json:"-"`
}

// MarshalJSON flattens Body's own fields alongside id/id_v1/type into one
// object, matching the wire shape CLIP v2 clients expect: a Light update's
// "on"/"dimming"/etc. sit next to its id, not nested under a "body" key.
func (r EventRecord) MarshalJSON() ([]byte, error) {
	out, err := FlattenResource(r.ID, r.IDV1, r.RType, r.Body)
	if err != nil {
		return nil, err
	}
	return json.Marshal(out)
}

// FlattenResource merges a resource's (or delta's) own JSON fields with the
// envelope fields every CLIP v2 record carries. EventRecord's SSE encoding
// uses it; the REST handlers render resources through ToValue instead.
func FlattenResource(id uuid.UUID, idv1 string, rtype RType, body any) (map[string]any, error) {
	out := map[string]any{"id": id, "type": rtype}
	if idv1 != "" {
		out["id_v1"] = idv1
	}

	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		var fields map[string]any
		if err := json.Unmarshal(raw, &fields); err != nil {
			return nil, err
		}
		for k, v := range fields {
			out[k] = v
		}
	}

	return out, nil
}

// Event is the tagged block emitted on the SSE channel: its change kind and
// the records batched under it. The timestamp and monotonic id are assigned
// by the ring buffer and live on eventstream.Record, not on Event.
type Event struct {
	Type    EventType     `json:"type"`
	Records []EventRecord `json:"data"`
}

// NewAddEvent wraps a single newly created resource.
func NewAddEvent(id uuid.UUID, idv1 string, r Resource) Event {
	return Event{Type: EventAdd, Records: []EventRecord{{ID: id, IDV1: idv1, RType: r.RType(), Body: r}}}
}

// NewUpdateEvent wraps a single delta.
func NewUpdateEvent(id uuid.UUID, idv1 string, u Update) Event {
	return Event{Type: EventUpdate, Records: []EventRecord{{ID: id, IDV1: idv1, RType: u.RType, Body: u}}}
}

// NewDeleteEvent wraps a deletion notice; the body carries no payload, only
// the envelope fields the client needs to drop the resource locally.
func NewDeleteEvent(id uuid.UUID, idv1 string, rtype RType) Event {
	return Event{Type: EventDelete, Records: []EventRecord{{ID: id, IDV1: idv1, RType: rtype}}}
}
