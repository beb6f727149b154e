package hue

import "github.com/google/uuid"

const (
	BridgeModelID        = "BSB002"
	BridgeDefaultSwVer   = 1970084010
	BridgeDefaultAPIVer  = "1.70.0"
)

// Bridge is the singleton resource identifying this emulated bridge.
type Bridge struct {
	ID         uuid.UUID    `json:"-"`
	OwnerLink  ResourceLink `json:"owner"`
	BridgeID   string       `json:"bridge_id"`
	TimeZone   string       `json:"time_zone"`
}

func (b *Bridge) RType() RType        { return RTypeBridge }
func (b *Bridge) Owner() ResourceLink { return b.OwnerLink }

// BridgeHome is the root grouping resource ("all lights" bucket).
type BridgeHome struct {
	ID       uuid.UUID      `json:"-"`
	Children []ResourceLink `json:"children"`
	Services []ResourceLink `json:"services"`
}

func (h *BridgeHome) RType() RType { return RTypeBridgeHome }

// ZigbeeConnectivity reports the bridge's own radio status.
type ZigbeeConnectivity struct {
	ID        uuid.UUID                 `json:"-"`
	OwnerLink ResourceLink              `json:"owner"`
	MACAddress string                   `json:"mac_address"`
	Status    ZigbeeConnectivityStatus `json:"status"`
}

func (z *ZigbeeConnectivity) RType() RType        { return RTypeZigbeeConnectivity }
func (z *ZigbeeConnectivity) Owner() ResourceLink { return z.OwnerLink }

type ZigbeeConnectivityStatus string

const (
	ZigbeeStatusConnected    ZigbeeConnectivityStatus = "connected"
	ZigbeeStatusDisconnected ZigbeeConnectivityStatus = "disconnected"
)

// ZigbeeDeviceDiscovery models pairing-mode status; this bridge never
// actually scans (native Zigbee pairing is a declared non-goal), so the
// resource exists purely to satisfy client polling.
type ZigbeeDeviceDiscovery struct {
	ID        uuid.UUID                    `json:"-"`
	OwnerLink ResourceLink                 `json:"owner"`
	Status    ZigbeeDeviceDiscoveryStatus `json:"status"`
}

func (z *ZigbeeDeviceDiscovery) RType() RType        { return RTypeZigbeeDeviceDiscovery }
func (z *ZigbeeDeviceDiscovery) Owner() ResourceLink { return z.OwnerLink }

type ZigbeeDeviceDiscoveryStatus string

const (
	ZDDStatusActive ZigbeeDeviceDiscoveryStatus = "active"
	ZDDStatusReady  ZigbeeDeviceDiscoveryStatus = "ready"
)

// BridgeIDRaw expands a 6-byte MAC into the 8-byte EUI-64 bridge id the
// reference bridge derives its identity from.
func BridgeIDRaw(mac [6]byte) [8]byte {
	return [8]byte{mac[0], mac[1], mac[2], 0xFF, 0xFE, mac[3], mac[4], mac[5]}
}

// BridgeIDString hex-encodes BridgeIDRaw, the canonical bridge_id string
// used to seed every deterministic UUID in the bridge's own resource tree.
func BridgeIDString(mac [6]byte) string {
	raw := BridgeIDRaw(mac)
	const hexDigits = "0123456789abcdef"
	out := make([]byte, 0, 16)
	for _, b := range raw {
		out = append(out, hexDigits[b>>4], hexDigits[b&0xF])
	}
	return string(out)
}
