package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/yveskaufmann/huebridge/internal/backend"
	"github.com/yveskaufmann/huebridge/internal/hue"
	"github.com/yveskaufmann/huebridge/internal/store"
)

// V1Handler projects the v2 store onto the legacy /api/{user}/... surface
// (spec.md §6): lights, groups (including the synthetic all-lights group
// 0), and scenes, read-through from the same Resources kernel the v2
// handler uses. Writes are translated into the same v2 Update types and
// published on the same backend bus, so both surfaces drive one pipeline.
type V1Handler struct {
	resources *store.Resources
	bus       *backend.Bus
	log       *logrus.Entry
}

func NewV1Handler(resources *store.Resources, bus *backend.Bus, log *logrus.Entry) *V1Handler {
	return &V1Handler{resources: resources, bus: bus, log: log.WithField("component", "api_v1")}
}

func (h *V1Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/")
	segs := strings.Split(strings.Trim(rest, "/"), "/")
	if len(segs) < 2 {
		http.NotFound(w, r)
		return
	}
	// segs[0] is the application username; the bridge has no pairing flow
	// to validate it against (spec.md Non-goals), so it is accepted as-is.
	resource := segs[1]
	tail := segs[2:]

	switch resource {
	case "lights":
		h.serveLights(w, r, tail)
	case "groups":
		h.serveGroups(w, r, tail)
	case "scenes":
		h.serveScenes(w, r, tail)
	default:
		http.NotFound(w, r)
	}
}

func writeV1JSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func writeV1Success(w http.ResponseWriter, path string, value any) {
	writeV1JSON(w, []map[string]any{{"success": map[string]any{path: value}}})
}

func v1LightView(light *hue.Light) map[string]any {
	state := map[string]any{"on": light.On.On, "reachable": true}
	if light.Dimming != nil {
		state["bri"] = briFromPercent(light.Dimming.Brightness)
	}
	if light.ColorTemperature != nil && light.ColorTemperature.MirekValid && light.ColorTemperature.Mirek != nil {
		state["ct"] = *light.ColorTemperature.Mirek
	}
	if light.Color != nil {
		state["xy"] = [2]float64{light.Color.XY.X, light.Color.XY.Y}
	}

	name := light.Metadata.Name
	modelID := ""
	if light.ProductData != nil {
		modelID = light.ProductData.ModelID
	}
	return map[string]any{
		"state":        state,
		"type":         "Extended color light",
		"name":         name,
		"modelid":      modelID,
		"manufacturername": "Signify Netherlands B.V.",
	}
}

func briFromPercent(pct float64) uint8 {
	v := pct / 100 * 254
	if v < 0 {
		v = 0
	}
	if v > 254 {
		v = 254
	}
	return uint8(v)
}

func briToPercent(bri float64) float64 {
	pct := bri / 254 * 100
	if pct < 0 {
		pct = 0
	}
	if pct > 100 {
		pct = 100
	}
	return pct
}

func (h *V1Handler) serveLights(w http.ResponseWriter, r *http.Request, tail []string) {
	switch len(tail) {
	case 0:
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		out := map[string]any{}
		for id, res := range h.resources.GetResourcesByType(hue.RTypeLight) {
			light, err := hue.As[*hue.Light](res)
			if err != nil {
				continue
			}
			idv1 := h.resources.IDV1Path(id)
			out[trimBucket("lights", idv1)] = v1LightView(light)
		}
		writeV1JSON(w, out)

	case 1:
		idv1, err := strconv.ParseUint(tail[0], 10, 32)
		if err != nil {
			http.NotFound(w, r)
			return
		}
		_, res, err := h.resources.ResolveV1("lights", uint32(idv1))
		if err != nil {
			writeError(h.log, w, err)
			return
		}
		light, err := hue.As[*hue.Light](res)
		if err != nil {
			writeError(h.log, w, err)
			return
		}
		if r.Method == http.MethodGet {
			writeV1JSON(w, v1LightView(light))
			return
		}
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)

	case 2:
		if tail[1] != "state" || r.Method != http.MethodPut {
			http.NotFound(w, r)
			return
		}
		idv1, err := strconv.ParseUint(tail[0], 10, 32)
		if err != nil {
			http.NotFound(w, r)
			return
		}
		id, _, err := h.resources.ResolveV1("lights", uint32(idv1))
		if err != nil {
			writeError(h.log, w, err)
			return
		}
		h.putLightState(w, r, id)

	default:
		http.NotFound(w, r)
	}
}

type v1StateBody struct {
	On  *bool       `json:"on,omitempty"`
	Bri *float64    `json:"bri,omitempty"`
	CT  *uint16     `json:"ct,omitempty"`
	XY  *[2]float64 `json:"xy,omitempty"`
}

func (b v1StateBody) toLightUpdate() hue.LightUpdate {
	var upd hue.LightUpdate
	if b.On != nil {
		upd.On = &hue.On{On: *b.On}
	}
	if b.Bri != nil {
		upd.Dimming = &hue.DimmingUpdate{Brightness: briToPercent(*b.Bri)}
	}
	if b.CT != nil {
		upd.ColorTemperature = &hue.ColorTemperatureUpdate{Mirek: *b.CT}
	}
	if b.XY != nil {
		upd.Color = &hue.ColorUpdate{XY: hue.XYJSON{X: b.XY[0], Y: b.XY[1]}}
	}
	return upd
}

func (h *V1Handler) putLightState(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	var body v1StateBody
	if err := decodeBody(r, &body); err != nil {
		writeError(h.log, w, err)
		return
	}
	upd := body.toLightUpdate()
	link := hue.RTypeLight.LinkTo(id)
	if err := store.Update[*hue.Light](h.resources, id, func(l *hue.Light) { l.Apply(upd) }); err != nil {
		writeError(h.log, w, err)
		return
	}
	h.bus.Publish(backend.Request{Kind: backend.KindLightUpdate, Light: &backend.LightUpdateRequest{Link: link, Update: upd}})
	writeV1Success(w, "/lights/state", true)
}

func trimBucket(bucket, path string) string {
	prefix := "/" + bucket + "/"
	return strings.TrimPrefix(path, prefix)
}

// allLightsGroupView synthesizes v1 group 0, the reference bridge's
// always-present "all lights" group with no backing v2 resource.
func (h *V1Handler) allLightsGroupView() map[string]any {
	lights := h.resources.GetResourcesByType(hue.RTypeLight)
	ids := make([]string, 0, len(lights))
	allOn, anyOn := true, false
	for id, res := range lights {
		light, err := hue.As[*hue.Light](res)
		if err != nil {
			continue
		}
		ids = append(ids, trimBucket("lights", h.resources.IDV1Path(id)))
		if light.On.On {
			anyOn = true
		} else {
			allOn = false
		}
	}
	if len(lights) == 0 {
		allOn = false
	}
	return map[string]any{
		"name":   "All Lights",
		"lights": ids,
		"type":   "LightGroup",
		"state":  map[string]any{"all_on": allOn, "any_on": anyOn},
		"action": map[string]any{},
	}
}

func (h *V1Handler) roomGroupView(roomID uuid.UUID, room *hue.Room) map[string]any {
	lights := make([]string, 0, len(room.Children))
	for _, child := range room.Children {
		dev, err := store.Get[*hue.Device](h.resources, child)
		if err != nil {
			continue
		}
		svc, ok := dev.LightService()
		if !ok {
			continue
		}
		lights = append(lights, trimBucket("lights", h.resources.IDV1Path(svc.RID)))
	}

	action := map[string]any{}
	allOn, anyOn := true, false
	if gl, ok := room.GroupedLightService(); ok {
		if grouped, err := store.Get[*hue.GroupedLight](h.resources, gl); err == nil {
			allOn = grouped.On.On
			anyOn = grouped.On.On
			action["on"] = grouped.On.On
			if grouped.Dimming != nil {
				action["bri"] = briFromPercent(grouped.Dimming.Brightness)
			}
		}
	}

	return map[string]any{
		"name":   room.Metadata.Name,
		"lights": lights,
		"type":   "Room",
		"class":  room.Metadata.Archetype,
		"state":  map[string]any{"all_on": allOn, "any_on": anyOn},
		"action": action,
	}
}

func (h *V1Handler) serveGroups(w http.ResponseWriter, r *http.Request, tail []string) {
	switch len(tail) {
	case 0:
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		out := map[string]any{"0": h.allLightsGroupView()}
		for id, res := range h.resources.GetResourcesByType(hue.RTypeRoom) {
			room, err := hue.As[*hue.Room](res)
			if err != nil {
				continue
			}
			idv1 := trimBucket("groups", h.resources.IDV1Path(id))
			out[idv1] = h.roomGroupView(id, room)
		}
		writeV1JSON(w, out)

	case 1:
		idv1, err := strconv.ParseUint(tail[0], 10, 32)
		if err != nil {
			http.NotFound(w, r)
			return
		}
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		if idv1 == 0 {
			writeV1JSON(w, h.allLightsGroupView())
			return
		}
		id, res, err := h.resources.ResolveV1("groups", uint32(idv1))
		if err != nil {
			writeError(h.log, w, err)
			return
		}
		room, err := hue.As[*hue.Room](res)
		if err != nil {
			writeError(h.log, w, err)
			return
		}
		writeV1JSON(w, h.roomGroupView(id, room))

	case 2:
		if tail[1] != "action" || r.Method != http.MethodPut {
			http.NotFound(w, r)
			return
		}
		idv1, err := strconv.ParseUint(tail[0], 10, 32)
		if err != nil {
			http.NotFound(w, r)
			return
		}
		h.putGroupAction(w, r, uint32(idv1))

	default:
		http.NotFound(w, r)
	}
}

func (b v1StateBody) toGroupedLightUpdate() hue.GroupedLightUpdate {
	var upd hue.GroupedLightUpdate
	if b.On != nil {
		upd.On = &hue.On{On: *b.On}
	}
	if b.Bri != nil {
		upd.Dimming = &hue.DimmingUpdate{Brightness: briToPercent(*b.Bri)}
	}
	return upd
}

// putGroupAction fans a v1 group action out to every light the group
// contains. Group 0 (all lights) has no GroupedLight resource to target,
// so it updates each Light directly; a real room's action goes through its
// single GroupedLight service the same way the v2 handler does.
func (h *V1Handler) putGroupAction(w http.ResponseWriter, r *http.Request, idv1 uint32) {
	var body v1StateBody
	if err := decodeBody(r, &body); err != nil {
		writeError(h.log, w, err)
		return
	}

	if idv1 == 0 {
		lightUpd := body.toLightUpdate()
		for id := range h.resources.GetResourcesByType(hue.RTypeLight) {
			link := hue.RTypeLight.LinkTo(id)
			if err := store.Update[*hue.Light](h.resources, id, func(l *hue.Light) { l.Apply(lightUpd) }); err != nil {
				continue
			}
			h.bus.Publish(backend.Request{Kind: backend.KindLightUpdate, Light: &backend.LightUpdateRequest{Link: link, Update: lightUpd}})
		}
		writeV1Success(w, "/groups/0/action", true)
		return
	}

	_, res, err := h.resources.ResolveV1("groups", idv1)
	if err != nil {
		writeError(h.log, w, err)
		return
	}
	room, err := hue.As[*hue.Room](res)
	if err != nil {
		writeError(h.log, w, err)
		return
	}
	gl, ok := room.GroupedLightService()
	if !ok {
		writeError(h.log, w, &store.V1NotFoundError{ID: idv1})
		return
	}

	upd := body.toGroupedLightUpdate()
	if err := store.Update[*hue.GroupedLight](h.resources, gl.RID, func(g *hue.GroupedLight) { g.Apply(upd) }); err != nil {
		writeError(h.log, w, err)
		return
	}
	h.bus.Publish(backend.Request{Kind: backend.KindGroupedLightUpdate, GroupedLight: &backend.GroupedLightUpdateRequest{Link: gl, Update: upd}})
	writeV1Success(w, "/groups/"+strconv.FormatUint(uint64(idv1), 10)+"/action", true)
}

func v1SceneView(scene *hue.Scene) map[string]any {
	lights := make([]string, 0, len(scene.Actions))
	for _, a := range scene.Actions {
		lights = append(lights, a.Target.RID.String())
	}
	return map[string]any{
		"name":   scene.Metadata.Name,
		"lights": lights,
		"owner":  "bridge",
		"recycle": false,
	}
}

func (h *V1Handler) serveScenes(w http.ResponseWriter, r *http.Request, tail []string) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	switch len(tail) {
	case 0:
		out := map[string]any{}
		for id, res := range h.resources.GetResourcesByType(hue.RTypeScene) {
			scene, err := hue.As[*hue.Scene](res)
			if err != nil {
				continue
			}
			idv1 := trimBucket("scenes", h.resources.IDV1Path(id))
			out[idv1] = v1SceneView(scene)
		}
		writeV1JSON(w, out)

	case 1:
		idv1, err := strconv.ParseUint(tail[0], 10, 32)
		if err != nil {
			http.NotFound(w, r)
			return
		}
		_, res, err := h.resources.ResolveV1("scenes", uint32(idv1))
		if err != nil {
			writeError(h.log, w, err)
			return
		}
		scene, err := hue.As[*hue.Scene](res)
		if err != nil {
			writeError(h.log, w, err)
			return
		}
		writeV1JSON(w, v1SceneView(scene))

	default:
		http.NotFound(w, r)
	}
}
