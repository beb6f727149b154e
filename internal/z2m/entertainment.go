package z2m

import (
	"encoding/hex"
	"sync"

	"github.com/google/uuid"

	"github.com/yveskaufmann/huebridge/internal/backend"
	"github.com/yveskaufmann/huebridge/internal/codec"
	"github.com/yveskaufmann/huebridge/internal/colorspace"
	"github.com/yveskaufmann/huebridge/internal/hue"
	"github.com/yveskaufmann/huebridge/internal/store"
)

// entertainmentRoute is what the z2m adapter needs to translate one
// streamed channel into a Zigbee light record: a synthetic short address
// (this bridge tracks no real Zigbee network addresses, so it is taken from
// the last two bytes of the member's service id) and
// whether the member is a whole device or one gradient segment.
type entertainmentRoute struct {
	addr uint16
	mode codec.LightRecordMode
}

// entertainmentState is the adapter's bookkeeping for the single active
// Entertainment area it forwards; the backend bus carries no area tag on
// Frame/Stop messages, so only one concurrently streaming area can be
// tracked per adapter (consistent with the single DTLS listener design).
type entertainmentState struct {
	mu      sync.Mutex
	active  bool
	area    uuid.UUID
	counter uint32
	routes  map[uint8]entertainmentRoute
}

func newEntertainmentState() *entertainmentState {
	return &entertainmentState{routes: make(map[uint8]entertainmentRoute)}
}

func (a *Adapter) handleEntertainmentStart(area uuid.UUID) {
	cfg, err := store.Get[*hue.EntertainmentConfiguration](a.resources, hue.RTypeEntertainmentConfiguration.LinkTo(area))
	if err != nil {
		a.log.WithError(err).Warn("z2m: entertainment start: unknown area")
		return
	}

	routes := make(map[uint8]entertainmentRoute, len(cfg.Channels))
	for _, ch := range cfg.Channels {
		mode := codec.LightRecordModeDevice
		if len(ch.Members) > 1 {
			mode = codec.LightRecordModeSegment
		}
		if len(ch.Members) == 0 {
			continue
		}
		routes[ch.ChannelID] = entertainmentRoute{
			addr: syntheticShortAddress(ch.Members[0].Service.RID),
			mode: mode,
		}
	}

	a.ent.mu.Lock()
	a.ent.active = true
	a.ent.area = area
	a.ent.counter = 0
	a.ent.routes = routes
	a.ent.mu.Unlock()
}

func (a *Adapter) handleEntertainmentStop() {
	a.ent.mu.Lock()
	a.ent.active = false
	a.ent.routes = nil
	a.ent.mu.Unlock()
}

// handleEntertainmentFrame translates a decoded HueStream frame into a
// Zigbee entertainment frame with one record per routed channel and sends
// it as a single raw command addressed to entertainmentIEEEPlaceholder.
func (a *Adapter) handleEntertainmentFrame(f *backend.EntertainmentFrameRequest) {
	if f == nil {
		return
	}
	a.ent.mu.Lock()
	if !a.ent.active {
		a.ent.mu.Unlock()
		return
	}
	routes := a.ent.routes
	a.ent.counter++
	counter := a.ent.counter
	a.ent.mu.Unlock()

	records := make([]codec.ZigbeeEntLightRecord, 0, len(routes))
	for ch, route := range routes {
		var xy colorspace.XY
		var bri uint16

		switch f.ColorMode {
		case "xy":
			for _, l := range f.XY {
				if l.Channel != ch {
					continue
				}
				xy = colorspace.XY{
					X: float64(l.X) / 0xFFFF * colorspace.WideGamutMaxX,
					Y: float64(l.Y) / 0xFFFF * colorspace.WideGamutMaxY,
				}
				bri = l.Bri
			}
		default:
			for _, l := range f.RGB {
				if l.Channel != ch {
					continue
				}
				var brightness float64
				xy, brightness = colorspace.Wide.RGBToXYY(
					float64(l.R)/0xFFFF, float64(l.G)/0xFFFF, float64(l.B)/0xFFFF,
				)
				bri = uint16(brightness * 0x7FF)
			}
		}

		raw := xy.ToQuant()
		records = append(records, codec.NewZigbeeEntLightRecord(route.addr, bri&0x7FF, route.mode, raw))
	}

	if len(records) == 0 {
		return
	}

	frame := codec.EncodeZigbeeEntFrame(codec.ZigbeeEntHeader{Counter: counter, Smoothing: codec.DefaultSmoothing}, records)
	a.sendRawCommand(entertainmentIEEEPlaceholder, HueZCLCluster, HueZCLEndpoint, hex.EncodeToString(frame))
}

// entertainmentIEEEPlaceholder stands in for the (untracked) coordinator
// broadcast address; see entertainmentRoute's doc comment.
const entertainmentIEEEPlaceholder = "0x0000000000000000"

func syntheticShortAddress(id uuid.UUID) uint16 {
	b := id[:]
	return uint16(b[len(b)-2])<<8 | uint16(b[len(b)-1])
}
