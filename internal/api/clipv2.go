// Package api implements the bridge's HTTP surfaces: the CLIP v2 resource
// API, its legacy v1 projection, the auth stub, and error mapping, per
// spec.md §6.
package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/yveskaufmann/huebridge/internal/backend"
	"github.com/yveskaufmann/huebridge/internal/hue"
	"github.com/yveskaufmann/huebridge/internal/store"
)

// deletable is the set of resource types a DELETE request may remove
// directly, per spec.md §6's Lifecycle list.
var deletable = map[hue.RType]bool{
	hue.RTypeScene:                       true,
	hue.RTypeEntertainmentConfiguration:  true,
	hue.RTypeBehaviorInstance:            true,
}

// creatable mirrors deletable for POST, per spec.md §6's Lifecycle list.
var creatable = deletable

// ResourceHandler serves /clip/v2/resource and its {type}/{id} children.
type ResourceHandler struct {
	resources *store.Resources
	bus       *backend.Bus
	log       *logrus.Entry
}

func NewResourceHandler(resources *store.Resources, bus *backend.Bus, log *logrus.Entry) *ResourceHandler {
	return &ResourceHandler{resources: resources, bus: bus, log: log.WithField("component", "api")}
}

func (h *ResourceHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/clip/v2/resource")
	rest = strings.Trim(rest, "/")
	var segs []string
	if rest != "" {
		segs = strings.Split(rest, "/")
	}

	switch {
	case len(segs) == 0:
		h.handleList(w, r, nil)
	case len(segs) == 1:
		rtype, ok := parseRType(segs[0])
		if !ok {
			writeError(h.log, w, &hue.UnknownRTypeError{Name: segs[0]})
			return
		}
		if r.Method == http.MethodPost {
			h.handleCreate(w, r, rtype)
			return
		}
		h.handleList(w, r, &rtype)
	case len(segs) == 2:
		rtype, ok := parseRType(segs[0])
		if !ok {
			writeError(h.log, w, &hue.UnknownRTypeError{Name: segs[0]})
			return
		}
		id, err := uuid.Parse(segs[1])
		if err != nil {
			writeError(h.log, w, &store.NotFoundError{})
			return
		}
		h.handleItem(w, r, rtype, id)
	default:
		http.NotFound(w, r)
	}
}

func parseRType(s string) (hue.RType, bool) {
	var rt hue.RType
	if err := rt.UnmarshalText([]byte(s)); err != nil {
		return 0, false
	}
	return rt, true
}

func (h *ResourceHandler) handleList(w http.ResponseWriter, r *http.Request, rtype *hue.RType) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var out []any
	if rtype != nil {
		for id, res := range h.resources.GetResourcesByType(*rtype) {
			out = append(out, h.render(id, res))
		}
	} else {
		state := h.resources.Snapshot()
		for id, res := range state.Resources {
			out = append(out, h.render(id, res))
		}
	}
	if out == nil {
		out = []any{}
	}
	writeEnvelope(w, http.StatusOK, out)
}

func (h *ResourceHandler) render(id uuid.UUID, res hue.Resource) map[string]any {
	m, err := hue.ToValue(id, res)
	if err != nil {
		return map[string]any{"id": id, "type": res.RType()}
	}
	if idv1 := h.resources.IDV1Path(id); idv1 != "" {
		m["id_v1"] = idv1
	}
	return m
}

func (h *ResourceHandler) handleItem(w http.ResponseWriter, r *http.Request, rtype hue.RType, id uuid.UUID) {
	switch r.Method {
	case http.MethodGet:
		res, err := h.resources.GetResource(id)
		if err != nil {
			writeError(h.log, w, err)
			return
		}
		if res.RType() != rtype {
			writeError(h.log, w, &hue.WrongTypeError{Want: rtype, Got: res.RType()})
			return
		}
		writeEnvelope(w, http.StatusOK, []any{h.render(id, res)})
	case http.MethodPut:
		h.handleUpdate(w, r, rtype, id)
	case http.MethodDelete:
		h.handleDelete(w, r, rtype, id)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func decodeBody(r *http.Request, v any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v)
}

// handleUpdate dispatches to one of the six variants the store can diff
// (spec.md §4.E); anything else reaches GenerateUpdate only to surface
// UpdateUnsupported, so it is rejected here instead.
func (h *ResourceHandler) handleUpdate(w http.ResponseWriter, r *http.Request, rtype hue.RType, id uuid.UUID) {
	link := rtype.LinkTo(id)

	switch rtype {
	case hue.RTypeLight:
		var upd hue.LightUpdate
		if err := decodeBody(r, &upd); err != nil {
			writeError(h.log, w, err)
			return
		}
		if err := store.Update[*hue.Light](h.resources, id, func(l *hue.Light) { l.Apply(upd) }); err != nil {
			writeError(h.log, w, err)
			return
		}
		h.bus.Publish(backend.Request{Kind: backend.KindLightUpdate, Light: &backend.LightUpdateRequest{Link: link, Update: upd}})

	case hue.RTypeGroupedLight:
		var upd hue.GroupedLightUpdate
		if err := decodeBody(r, &upd); err != nil {
			writeError(h.log, w, err)
			return
		}
		if err := store.Update[*hue.GroupedLight](h.resources, id, func(g *hue.GroupedLight) { g.Apply(upd) }); err != nil {
			writeError(h.log, w, err)
			return
		}
		h.bus.Publish(backend.Request{Kind: backend.KindGroupedLightUpdate, GroupedLight: &backend.GroupedLightUpdateRequest{Link: link, Update: upd}})

	case hue.RTypeScene:
		var upd hue.SceneUpdate
		if err := decodeBody(r, &upd); err != nil {
			writeError(h.log, w, err)
			return
		}
		if err := store.Update[*hue.Scene](h.resources, id, func(s *hue.Scene) { s.Apply(upd) }); err != nil {
			writeError(h.log, w, err)
			return
		}
		h.bus.Publish(backend.Request{Kind: backend.KindSceneUpdate, SceneUpdate: &backend.SceneUpdateRequest{Link: link, Update: upd}})

	case hue.RTypeDevice:
		var upd hue.DeviceUpdate
		if err := decodeBody(r, &upd); err != nil {
			writeError(h.log, w, err)
			return
		}
		if err := store.Update[*hue.Device](h.resources, id, func(d *hue.Device) { d.Apply(upd) }); err != nil {
			writeError(h.log, w, err)
			return
		}

	case hue.RTypeRoom:
		var upd hue.RoomUpdate
		if err := decodeBody(r, &upd); err != nil {
			writeError(h.log, w, err)
			return
		}
		if err := store.Update[*hue.Room](h.resources, id, func(room *hue.Room) { room.Apply(upd) }); err != nil {
			writeError(h.log, w, err)
			return
		}

	case hue.RTypeEntertainmentConfiguration:
		var upd hue.EntertainmentConfigurationUpdate
		if err := decodeBody(r, &upd); err != nil {
			writeError(h.log, w, err)
			return
		}
		if err := store.Update[*hue.EntertainmentConfiguration](h.resources, id, func(e *hue.EntertainmentConfiguration) { e.Apply(upd) }); err != nil {
			writeError(h.log, w, err)
			return
		}

	default:
		writeError(h.log, w, &hue.UpdateUnsupportedError{RType: rtype})
		return
	}

	writeEnvelope(w, http.StatusOK, []any{map[string]any{"rid": id, "rtype": rtype}})
}

// handleCreate supports exactly the types the Lifecycle section allows the
// API to originate: Scene and EntertainmentConfiguration. BehaviorInstance
// is listed there too but this bridge models no behavior engine, so it has
// nothing for a POST to create (DESIGN.md).
func (h *ResourceHandler) handleCreate(w http.ResponseWriter, r *http.Request, rtype hue.RType) {
	if !creatable[rtype] {
		writeError(h.log, w, &DeleteDeniedError{RType: rtype})
		return
	}

	switch rtype {
	case hue.RTypeScene:
		h.createScene(w, r)
	case hue.RTypeEntertainmentConfiguration:
		h.createEntertainmentConfiguration(w, r)
	default:
		writeError(h.log, w, &hue.UpdateUnsupportedError{RType: rtype})
	}
}

type sceneCreateBody struct {
	Metadata hue.Metadata       `json:"metadata"`
	Group    hue.ResourceLink   `json:"group"`
	Actions  []hue.SceneActionElement `json:"actions,omitempty"`
}

func (h *ResourceHandler) createScene(w http.ResponseWriter, r *http.Request) {
	var body sceneCreateBody
	if err := decodeBody(r, &body); err != nil {
		writeError(h.log, w, err)
		return
	}

	sceneID := uuid.New()
	link := hue.RTypeScene.LinkTo(sceneID)
	scene := &hue.Scene{
		Group:    body.Group,
		Metadata: body.Metadata,
		Actions:  body.Actions,
		Status:   hue.SceneStatus{Active: hue.SceneStatusInactive},
	}

	if err := h.resources.Add(link, scene); err != nil {
		writeError(h.log, w, err)
		return
	}

	idx, err := h.resources.GetNextSceneID(body.Group)
	if err != nil {
		writeError(h.log, w, err)
		return
	}

	h.bus.Publish(backend.Request{Kind: backend.KindSceneCreate, SceneCreate: &backend.SceneCreateRequest{Link: link, ID: idx, Scene: *scene}})
	writeEnvelope(w, http.StatusOK, []any{map[string]any{"rid": sceneID, "rtype": hue.RTypeScene}})
}

type entConfCreateBody struct {
	Metadata hue.Metadata                          `json:"metadata"`
	Type     hue.EntertainmentConfigurationType     `json:"configuration_type"`
	Channels []hue.EntertainmentConfigurationChannels `json:"channels,omitempty"`
}

// createEntertainmentConfiguration stores the configuration only; the
// bridge has no app-assisted layout step, so a client must submit a
// complete channel list up front.
func (h *ResourceHandler) createEntertainmentConfiguration(w http.ResponseWriter, r *http.Request) {
	var body entConfCreateBody
	if err := decodeBody(r, &body); err != nil {
		writeError(h.log, w, err)
		return
	}

	id := uuid.New()
	link := hue.RTypeEntertainmentConfiguration.LinkTo(id)
	cfg := &hue.EntertainmentConfiguration{
		Metadata: body.Metadata,
		Status:   hue.EntConfStatusInactive,
		Type:     body.Type,
		Channels: body.Channels,
	}
	if err := h.resources.Add(link, cfg); err != nil {
		writeError(h.log, w, err)
		return
	}
	writeEnvelope(w, http.StatusOK, []any{map[string]any{"rid": id, "rtype": hue.RTypeEntertainmentConfiguration}})
}

// handleDelete captures the aux sidecar before removing the resource, so
// the backend request that follows still carries the topic/index a z2m
// adapter needs (store.Resources.Delete wipes aux as part of the removal).
func (h *ResourceHandler) handleDelete(w http.ResponseWriter, r *http.Request, rtype hue.RType, id uuid.UUID) {
	if !deletable[rtype] {
		writeError(h.log, w, &DeleteDeniedError{RType: rtype})
		return
	}

	link := rtype.LinkTo(id)
	del := &backend.DeleteRequest{Link: link}
	if topic, ok := h.resources.TopicOf(id); ok {
		del.Topic = topic
	}
	if idx, ok := h.resources.SceneIndex(id); ok {
		del.SceneIndex = &idx
	}

	if err := h.resources.Delete(link); err != nil {
		writeError(h.log, w, err)
		return
	}

	h.bus.Publish(backend.Request{Kind: backend.KindDelete, Delete: del})
	writeEnvelope(w, http.StatusOK, []any{map[string]any{"rid": id, "rtype": rtype}})
}
