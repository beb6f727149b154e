package z2m

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/yveskaufmann/huebridge/internal/colorspace"
	"github.com/yveskaufmann/huebridge/internal/hue"
	"github.com/yveskaufmann/huebridge/internal/store"
)

// handleInbound dispatches one decoded {topic,payload} frame. A non-nil
// error is only returned for the two critical bridge topics (devices,
// groups); per spec.md §7 those propagate and tear down the connection,
// everything else is logged and swallowed.
func (a *Adapter) handleInbound(raw RawMessage) error {
	switch {
	case raw.Topic == "bridge/devices":
		if err := a.handleBridgeDevices(raw.Payload); err != nil {
			return fmt.Errorf("z2m: bridge/devices: %w", err)
		}
		return nil
	case raw.Topic == "bridge/groups":
		if err := a.handleBridgeGroups(raw.Payload); err != nil {
			return fmt.Errorf("z2m: bridge/groups: %w", err)
		}
		return nil
	case raw.Topic == "bridge/device_remove":
		a.handleDeviceRemove(raw.Payload)
		return nil
	case raw.Topic == "bridge/group_members_add":
		a.handleGroupMembersChange(raw.Payload, true)
		return nil
	case raw.Topic == "bridge/group_members_remove":
		a.handleGroupMembersChange(raw.Payload, false)
		return nil
	case strings.HasSuffix(raw.Topic, "/availability"), strings.HasSuffix(raw.Topic, "/action"):
		return nil
	case strings.HasSuffix(raw.Topic, "/set"):
		return nil
	}

	if id, ok := a.resources.UUIDForTopic(raw.Topic); ok {
		a.handleDeviceState(id, raw.Payload)
		return nil
	}

	if a.isIgnored(raw.Topic) {
		return nil
	}

	a.log.WithField("topic", raw.Topic).Warn("z2m: unknown topic")
	return nil
}

func (a *Adapter) handleBridgeDevices(payload json.RawMessage) error {
	var devices []Device
	if err := json.Unmarshal(payload, &devices); err != nil {
		return err
	}
	for _, d := range devices {
		caps := extractCapabilities(d.Definition)
		if !caps.isLight {
			a.markIgnored(d.FriendlyName)
			continue
		}
		a.ingestLight(d, caps)
	}
	return nil
}

func (a *Adapter) ingestLight(d Device, caps capabilities) {
	seed := a.lightSeed(d.IEEEAddress)
	deviceID := hue.RTypeDevice.DeterministicString(seed)
	lightID := hue.RTypeLight.DeterministicString(seed)

	deviceLink := hue.RTypeDevice.LinkTo(deviceID)
	lightLink := hue.RTypeLight.LinkTo(lightID)

	device := &hue.Device{
		ID:       deviceID,
		Metadata: hue.Metadata{Name: d.FriendlyName},
		ProductData: hue.DeviceProductData{
			ModelID:          modelOf(d.Definition),
			ManufacturerName: vendorOf(d.Definition),
			ProductName:      d.FriendlyName,
		},
	}
	device.AddService(lightLink)
	if err := a.resources.Add(deviceLink, device); err != nil {
		a.log.WithError(err).Warn("z2m: add device")
		return
	}

	light := &hue.Light{
		ID:        lightID,
		OwnerLink: deviceLink,
		Metadata:  hue.Metadata{Name: d.FriendlyName},
		Mode:      "normal",
	}
	if caps.dimming {
		light.Dimming = &hue.Dimming{Brightness: 100}
	}
	if caps.colorTemp {
		light.ColorTemperature = &hue.ColorTemperature{
			MirekSchema: &hue.MirekSchema{MirekMinimum: caps.mirekMin, MirekMaximum: caps.mirekMax},
		}
	}
	if caps.colorXY {
		light.Color = &hue.LightColor{XY: hue.XYJSON{X: colorspace.D65.X, Y: colorspace.D65.Y}}
	}
	if caps.gradientCap > 0 {
		light.Gradient = &hue.LightGradient{PointsCap: caps.gradientCap, Mode: hue.GradientModeInterpolatedPalette}
	}
	if caps.hueEffects {
		light.Effects = &hue.LightEffectsV2{Status: hue.EffectNoEffect, StatusVals: signifyEffectTypes(caps.effectValues)}
	}

	if err := a.resources.Add(lightLink, light); err != nil {
		a.log.WithError(err).Warn("z2m: add light")
		return
	}

	a.resources.SetTopic(deviceID, d.FriendlyName)

	a.capsMu.Lock()
	a.caps[lightID] = caps
	a.capsMu.Unlock()
}

func signifyEffectTypes(names []string) []hue.LightEffectType {
	out := []hue.LightEffectType{hue.EffectNoEffect}
	for _, n := range names {
		out = append(out, hue.LightEffectType(n))
	}
	return out
}

func modelOf(def *Definition) string {
	if def == nil {
		return ""
	}
	return def.Model
}

func vendorOf(def *Definition) string {
	if def == nil {
		return ""
	}
	return def.Vendor
}

func (a *Adapter) handleBridgeGroups(payload json.RawMessage) error {
	var groups []Group
	if err := json.Unmarshal(payload, &groups); err != nil {
		return err
	}
	for _, g := range groups {
		topic := g.FriendlyName
		if prefix := a.cfg.GroupPrefix; prefix != "" {
			if !strings.HasPrefix(topic, prefix) {
				continue
			}
			topic = strings.TrimPrefix(topic, prefix)
		}
		a.ingestGroup(g, topic)
	}
	return nil
}

func (a *Adapter) ingestGroup(g Group, topic string) {
	seed := a.groupSeed(topic)
	roomID := hue.RTypeRoom.DeterministicString(seed)
	glID := hue.RTypeGroupedLight.DeterministicString(seed)
	roomLink := hue.RTypeRoom.LinkTo(roomID)
	glLink := hue.RTypeGroupedLight.LinkTo(glID)

	name := topic
	if override, ok := a.rooms[topic]; ok && override.Name != nil {
		name = *override.Name
	}

	room := &hue.Room{ID: roomID, Metadata: hue.Metadata{Name: name}, Services: []hue.ResourceLink{glLink}}
	if err := a.resources.Add(roomLink, room); err != nil {
		a.log.WithError(err).Warn("z2m: add room")
		return
	}

	gl := &hue.GroupedLight{ID: glID, OwnerLink: roomLink}
	if err := a.resources.Add(glLink, gl); err != nil {
		a.log.WithError(err).Warn("z2m: add grouped_light")
		return
	}

	a.resources.SetTopic(roomID, topic)

	children := make([]hue.ResourceLink, 0, len(g.Members))
	for _, m := range g.Members {
		devID := hue.RTypeDevice.DeterministicString(a.lightSeed(m.IEEEAddress))
		children = append(children, hue.RTypeDevice.LinkTo(devID))
	}
	if len(children) > 0 {
		_ = store.Update[*hue.Room](a.resources, roomID, func(r *hue.Room) {
			r.Children = children
		})
	}

	a.syncScenes(roomLink, topic, g.Scenes)
}

// syncScenes creates/updates scenes listed in a group payload and deletes
// scenes this room previously held that are no longer listed.
func (a *Adapter) syncScenes(roomLink hue.ResourceLink, topic string, scenes []GroupScene) {
	present := make(map[uuid.UUID]bool, len(scenes))

	for _, s := range scenes {
		seed := fmt.Sprintf("%s|scene|%d", a.groupSeed(topic), s.ID)
		sceneID := hue.RTypeScene.DeterministicString(seed)
		sceneLink := hue.RTypeScene.LinkTo(sceneID)
		present[sceneID] = true

		scene := &hue.Scene{
			ID:       sceneID,
			Group:    roomLink,
			Metadata: hue.Metadata{Name: s.Name},
			Status:   hue.SceneStatus{Active: hue.SceneStatusInactive},
		}
		if err := a.resources.Add(sceneLink, scene); err != nil {
			a.log.WithError(err).Warn("z2m: add scene")
			continue
		}
		a.resources.SetSceneIndex(sceneID, uint32(s.ID))
		a.resources.SetTopic(sceneID, topic)
	}

	for id, res := range a.resources.GetResourcesByType(hue.RTypeScene) {
		scene, ok := res.(*hue.Scene)
		if !ok || scene.Group != roomLink || present[id] {
			continue
		}
		sceneTopic, _ := a.resources.TopicOf(id)
		if sceneTopic != topic {
			continue
		}
		if err := a.resources.Delete(hue.RTypeScene.LinkTo(id)); err != nil {
			a.log.WithError(err).Warn("z2m: delete orphaned scene")
		}
	}
}

func (a *Adapter) handleDeviceRemove(payload json.RawMessage) {
	var rm DeviceRemove
	if err := json.Unmarshal(payload, &rm); err != nil {
		a.log.WithError(err).Warn("z2m: decode bridge/device_remove")
		return
	}
	if rm.Status != "ok" {
		return
	}

	deviceID, ok := a.resources.UUIDForTopic(rm.ID)
	if !ok {
		return
	}

	device, err := store.Get[*hue.Device](a.resources, hue.RTypeDevice.LinkTo(deviceID))
	if err != nil {
		a.log.WithError(err).Warn("z2m: device_remove: lookup device")
		return
	}

	if lightLink, has := device.LightService(); has {
		if err := a.resources.Delete(lightLink); err != nil {
			a.log.WithError(err).Warn("z2m: device_remove: delete light")
		}
		a.capsMu.Lock()
		delete(a.caps, lightLink.RID)
		a.capsMu.Unlock()
	}

	if err := a.resources.Delete(hue.RTypeDevice.LinkTo(deviceID)); err != nil {
		a.log.WithError(err).Warn("z2m: device_remove: delete device")
	}
}

func (a *Adapter) handleGroupMembersChange(payload json.RawMessage, add bool) {
	var change GroupMembersChange
	if err := json.Unmarshal(payload, &change); err != nil {
		a.log.WithError(err).Warn("z2m: decode group_members change")
		return
	}

	roomID, ok := a.resources.UUIDForTopic(change.Group)
	if !ok {
		a.log.WithField("group", change.Group).Warn("z2m: group_members change for unknown room")
		return
	}
	deviceID := hue.RTypeDevice.DeterministicString(a.lightSeed(change.Device))
	deviceLink := hue.RTypeDevice.LinkTo(deviceID)

	err := store.Update[*hue.Room](a.resources, roomID, func(r *hue.Room) {
		if add {
			for _, c := range r.Children {
				if c == deviceLink {
					return
				}
			}
			r.Children = append(r.Children, deviceLink)
			return
		}
		out := r.Children[:0]
		for _, c := range r.Children {
			if c != deviceLink {
				out = append(out, c)
			}
		}
		r.Children = out
	})
	if err != nil {
		a.log.WithError(err).Warn("z2m: group_members change")
	}
}

func (a *Adapter) handleDeviceState(id uuid.UUID, payload json.RawMessage) {
	var upd DeviceUpdate
	if err := json.Unmarshal(payload, &upd); err != nil {
		a.log.WithError(err).Warn("z2m: decode device state")
		return
	}

	res, err := a.resources.GetResource(id)
	if err != nil {
		return
	}

	switch res.(type) {
	case *hue.Light:
		lu := a.toLightUpdate(id, upd)
		if err := store.Update[*hue.Light](a.resources, id, func(l *hue.Light) { l.Apply(lu) }); err != nil {
			a.log.WithError(err).Warn("z2m: apply light update")
			return
		}
		a.learner.observe(id)
	case *hue.GroupedLight:
		gu := hue.GroupedLightUpdate{}
		if on, ok := upd.On(); ok {
			gu.On = &hue.On{On: on}
		}
		if upd.Brightness != nil {
			gu.Dimming = &hue.DimmingUpdate{Brightness: rescaleToPercent(*upd.Brightness)}
		}
		if err := store.Update[*hue.GroupedLight](a.resources, id, func(g *hue.GroupedLight) { g.Apply(gu) }); err != nil {
			a.log.WithError(err).Warn("z2m: apply grouped_light update")
		}
	}
}

// toLightUpdate converts a loose z2m DeviceUpdate into a typed Hue delta,
// preserving the light's existing gradient mode since z2m only ever echoes
// gradient points, never the mode the bridge assigned on the way out.
func (a *Adapter) toLightUpdate(id uuid.UUID, upd DeviceUpdate) hue.LightUpdate {
	lu := hue.LightUpdate{}
	if on, ok := upd.On(); ok {
		lu.On = &hue.On{On: on}
	}
	if upd.Brightness != nil {
		lu.Dimming = &hue.DimmingUpdate{Brightness: rescaleToPercent(*upd.Brightness)}
	}
	if upd.ColorTemp != nil {
		lu.ColorTemperature = &hue.ColorTemperatureUpdate{Mirek: uint16(*upd.ColorTemp)}
	}
	if upd.Color != nil && upd.Color.X != nil && upd.Color.Y != nil {
		lu.Color = &hue.ColorUpdate{XY: hue.XYJSON{X: *upd.Color.X, Y: *upd.Color.Y}}
	}
	if len(upd.Gradient) > 0 {
		light, err := store.Get[*hue.Light](a.resources, hue.RTypeLight.LinkTo(id))
		mode := hue.GradientModeInterpolatedPalette
		if err == nil && light.Gradient != nil {
			mode = light.Gradient.Mode
		}
		points := make([]hue.LightGradientPoint, 0, len(upd.Gradient))
		for _, hex := range upd.Gradient {
			points = append(points, hue.LightGradientPoint{Color: hue.LightColor{XY: hexToXY(hex)}})
		}
		lu.Gradient = &hue.LightGradientUpdate{Points: points, Mode: mode}
	}
	return lu
}

// rescaleToPercent maps z2m's 1-254 brightness range onto Hue's 0-100
// percentage, the inverse of the outbound 0-100 -> 1-254 rescale.
func rescaleToPercent(v int) float64 {
	if v <= 0 {
		return 0
	}
	pct := (float64(v) - 1) / 253 * 100
	if pct < 0 {
		pct = 0
	}
	if pct > 100 {
		pct = 100
	}
	return pct
}

func hexToXY(hex string) hue.XYJSON {
	hex = strings.TrimPrefix(hex, "#")
	if len(hex) != 6 {
		return hue.XYJSON{X: colorspace.D65.X, Y: colorspace.D65.Y}
	}
	r := hexByte(hex[0:2])
	g := hexByte(hex[2:4])
	b := hexByte(hex[4:6])
	xy, _ := colorspace.SRGB.RGBToXYY(colorspace.UnitFromU8(r), colorspace.UnitFromU8(g), colorspace.UnitFromU8(b))
	return hue.XYJSON{X: xy.X, Y: xy.Y}
}

func hexByte(s string) uint8 {
	var v uint8
	for _, c := range s {
		v <<= 4
		switch {
		case c >= '0' && c <= '9':
			v |= uint8(c - '0')
		case c >= 'a' && c <= 'f':
			v |= uint8(c-'a') + 10
		case c >= 'A' && c <= 'F':
			v |= uint8(c-'A') + 10
		}
	}
	return v
}
