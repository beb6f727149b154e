package z2m

import (
	"fmt"
	"math"
	"time"

	"github.com/gorilla/websocket"

	"github.com/yveskaufmann/huebridge/internal/backend"
	"github.com/yveskaufmann/huebridge/internal/codec"
	"github.com/yveskaufmann/huebridge/internal/colorspace"
	"github.com/yveskaufmann/huebridge/internal/hue"
	"github.com/yveskaufmann/huebridge/internal/store"
)

// OutboundThrottle is the minimum spacing between z2m writes (spec.md
// §4.G step 3 / §5's 100ms pacing suspension point).
const OutboundThrottle = 100 * time.Millisecond

// handleOutbound routes one BackendRequest to its z2m wire representation.
// conn is the live websocket connection the caller already holds.
func (a *Adapter) handleOutbound(conn *websocket.Conn, req backend.Request) {
	a.conn = conn
	defer func() { a.conn = nil }()

	switch req.Kind {
	case backend.KindLightUpdate:
		a.sendLightUpdate(req.Light)
	case backend.KindGroupedLightUpdate:
		a.sendGroupedLightUpdate(req.GroupedLight)
	case backend.KindSceneCreate:
		a.sendSceneCreate(req.SceneCreate)
	case backend.KindSceneUpdate:
		a.sendSceneUpdate(req.SceneUpdate)
	case backend.KindDelete:
		a.sendDelete(req.Delete)
	case backend.KindEntertainmentStart:
		if req.EntertainmentStart != nil {
			a.handleEntertainmentStart(*req.EntertainmentStart)
		}
	case backend.KindEntertainmentFrame:
		a.handleEntertainmentFrame(req.EntertainmentFrame)
	case backend.KindEntertainmentStop:
		a.handleEntertainmentStop()
	}
}

func (a *Adapter) sendOutgoing(msg Outgoing) {
	if a.conn == nil {
		return
	}
	if err := a.conn.WriteJSON(msg); err != nil {
		a.log.WithError(err).Warn("z2m: write failed")
	}
}

func (a *Adapter) sendRawCommand(ieee string, cluster, endpoint int, payloadHex string) {
	a.sendOutgoing(Outgoing{
		Topic: "bridge/request/device/raw_command",
		Payload: RawCommandRequest{
			IEEEAddress: ieee,
			Cluster:     cluster,
			Endpoint:    endpoint,
			Payload:     payloadHex,
		},
	})
}

func (a *Adapter) sendLightUpdate(req *backend.LightUpdateRequest) {
	if req == nil {
		return
	}

	light, err := store.Get[*hue.Light](a.resources, req.Link)
	if err != nil {
		a.log.WithError(err).Warn("z2m: light update: lookup")
		return
	}

	topic, ok := a.resources.TopicOf(light.OwnerLink.RID)
	if !ok {
		a.log.WithField("light", req.Link.RID).Warn("z2m: light update: no topic bound")
		return
	}

	a.capsMu.Lock()
	caps := a.caps[req.Link.RID]
	a.capsMu.Unlock()

	if caps.hueEffects {
		a.sendHueZCLUpdate(topic, light, req.Update)
		return
	}

	a.sendPlainDeviceUpdate(topic, req.Update)
}

// sendHueZCLUpdate builds the composite Hue ZCL command for lights whose
// capabilities included a Signify "effect" expose. It encodes on/off,
// brightness, mirek, xy and effect type; a gradient in upd is not encoded.
func (a *Adapter) sendHueZCLUpdate(topic string, light *hue.Light, upd hue.LightUpdate) {
	hu := &codec.HueZigbeeUpdate{}
	if upd.On != nil {
		hu.WithOnOff(upd.On.On)
	}
	if upd.Dimming != nil {
		hu.WithBrightness(colorspace.ClampU8Light(upd.Dimming.Brightness / 100))
	}
	if upd.ColorTemperature != nil {
		hu.WithColorMirek(upd.ColorTemperature.Mirek)
	}
	if upd.Color != nil {
		x16 := uint16(math.Round(upd.Color.XY.X * 0xFFFF))
		y16 := uint16(math.Round(upd.Color.XY.Y * 0xFFFF))
		hu.WithColorXY(x16, y16)
	}
	if upd.Effects != nil {
		hu.WithEffectType(effectTypeFromV2(upd.Effects.Action))
	}

	buf := codec.EncodeHueZCL(hu)
	a.sendRawCommandHex(topic, buf)
}

func (a *Adapter) sendRawCommandHex(topic string, buf []byte) {
	a.sendOutgoing(Outgoing{
		Topic: fmt.Sprintf("%s/set", topic),
		Payload: RawCommandRequest{
			Cluster:  HueZCLCluster,
			Endpoint: HueZCLEndpoint,
			Payload:  hexEncode(buf),
		},
	})
}

func hexEncode(b []byte) string {
	const hexdigits = "0123456789abcdef"
	out := make([]byte, len(b)*2)
	for i, c := range b {
		out[i*2] = hexdigits[c>>4]
		out[i*2+1] = hexdigits[c&0x0F]
	}
	return string(out)
}

func effectTypeFromV2(e hue.LightEffectType) codec.EffectType {
	switch e {
	case hue.EffectCandle:
		return codec.EffectTypeCandle
	case hue.EffectFireplace:
		return codec.EffectTypeFireplace
	case hue.EffectPrism:
		return codec.EffectTypePrism
	case hue.EffectSunrise:
		return codec.EffectTypeSunrise
	case hue.EffectSparkle:
		return codec.EffectTypeSparkle
	case hue.EffectOpal:
		return codec.EffectTypeOpal
	case hue.EffectGlisten:
		return codec.EffectTypeGlisten
	case hue.EffectUnderwater:
		return codec.EffectTypeUnderwater
	case hue.EffectCosmos:
		return codec.EffectTypeCosmos
	case hue.EffectSunbeam:
		return codec.EffectTypeSunbeam
	case hue.EffectEnchant:
		return codec.EffectTypeEnchant
	default:
		return codec.EffectTypeNoEffect
	}
}

func (a *Adapter) sendPlainDeviceUpdate(topic string, upd hue.LightUpdate) {
	du := DeviceUpdate{}
	if upd.On != nil {
		s := onOffString(upd.On.On)
		du.State = &s
	}
	if upd.Dimming != nil {
		v := int(colorspace.ClampU8Light(upd.Dimming.Brightness / 100))
		du.Brightness = &v
	}
	if upd.ColorTemperature != nil {
		v := int(upd.ColorTemperature.Mirek)
		du.ColorTemp = &v
	}
	if upd.Color != nil {
		du.Color = &DeviceColor{X: &upd.Color.XY.X, Y: &upd.Color.XY.Y}
	}
	if upd.Gradient != nil {
		colors := make([]string, 0, len(upd.Gradient.Points))
		for _, p := range upd.Gradient.Points {
			colors = append(colors, xyToHex(p.Color.XY))
		}
		du.Gradient = colors
	}

	a.sendOutgoing(Outgoing{Topic: fmt.Sprintf("%s/set", topic), Payload: du})
}

func onOffString(on bool) string {
	if on {
		return "ON"
	}
	return "OFF"
}

func xyToHex(xy hue.XYJSON) string {
	r, g, b := colorspace.SRGB.XYToRGB(colorspace.XY{X: xy.X, Y: xy.Y}, 1)
	return fmt.Sprintf("#%02x%02x%02x", colorspace.ClampU8(r), colorspace.ClampU8(g), colorspace.ClampU8(b))
}

func (a *Adapter) sendGroupedLightUpdate(req *backend.GroupedLightUpdateRequest) {
	if req == nil {
		return
	}
	gl, err := store.Get[*hue.GroupedLight](a.resources, req.Link)
	if err != nil {
		a.log.WithError(err).Warn("z2m: grouped_light update: lookup")
		return
	}
	topic, ok := a.resources.TopicOf(gl.OwnerLink.RID)
	if !ok {
		a.log.WithField("grouped_light", req.Link.RID).Warn("z2m: grouped_light update: no room topic")
		return
	}

	du := DeviceUpdate{}
	if req.Update.On != nil {
		s := onOffString(req.Update.On.On)
		du.State = &s
	}
	if req.Update.Dimming != nil {
		v := int(colorspace.ClampU8Light(req.Update.Dimming.Brightness / 100))
		du.Brightness = &v
	}
	a.sendOutgoing(Outgoing{Topic: fmt.Sprintf("%s/set", topic), Payload: du})
}

func (a *Adapter) sendSceneCreate(req *backend.SceneCreateRequest) {
	if req == nil {
		return
	}
	topic, ok := a.resources.TopicOf(req.Scene.Group.RID)
	if !ok {
		a.log.WithField("room", req.Scene.Group.RID).Warn("z2m: scene create: no room topic")
		return
	}
	a.resources.SetSceneIndex(req.Link.RID, req.ID)
	a.resources.SetTopic(req.Link.RID, topic)
	a.sendOutgoing(Outgoing{
		Topic:   fmt.Sprintf("%s/set", topic),
		Payload: map[string]SceneStoreRequest{"scene_store": {Name: req.Scene.Metadata.Name, ID: req.ID}},
	})
}

func (a *Adapter) sendSceneUpdate(req *backend.SceneUpdateRequest) {
	if req == nil || req.Update.Recall == nil || req.Update.Recall.Action != hue.SceneStatusStatic {
		return
	}

	scene, err := store.Get[*hue.Scene](a.resources, req.Link)
	if err != nil {
		a.log.WithError(err).Warn("z2m: scene recall: lookup")
		return
	}
	roomLink := scene.Group

	for id, res := range a.resources.GetResourcesByType(hue.RTypeScene) {
		sibling, ok := res.(*hue.Scene)
		if !ok || sibling.Group != roomLink {
			continue
		}
		active := hue.SceneStatusInactive
		if id == req.Link.RID {
			active = hue.SceneStatusStatic
		}
		_ = store.Update[*hue.Scene](a.resources, id, func(s *hue.Scene) {
			s.Status.Active = active
		})
	}

	topic, ok := a.resources.TopicOf(roomLink.RID)
	if !ok {
		a.log.WithField("room", roomLink.RID).Warn("z2m: scene recall: no room topic")
		return
	}
	index, ok := a.resources.SceneIndex(req.Link.RID)
	if !ok {
		a.log.WithField("scene", req.Link.RID).Warn("z2m: scene recall: no z2m index bound")
		return
	}

	a.sendOutgoing(Outgoing{
		Topic:   fmt.Sprintf("%s/set", topic),
		Payload: map[string]SceneRecallRequest{"scene_recall": {ID: index}},
	})

	if len(scene.Actions) == 0 {
		a.learner.startWindow(req.Link, roomLink)
	}
}

func (a *Adapter) sendDelete(req *backend.DeleteRequest) {
	if req == nil {
		return
	}
	if req.Link.RType != hue.RTypeScene {
		return
	}
	if req.Topic == "" || req.SceneIndex == nil {
		a.log.WithField("scene", req.Link.RID).Warn("z2m: scene delete: missing topic or index")
		return
	}
	a.sendOutgoing(Outgoing{
		Topic:   fmt.Sprintf("%s/set", req.Topic),
		Payload: map[string]SceneRemoveRequest{"scene_remove": {ID: *req.SceneIndex}},
	})
}
