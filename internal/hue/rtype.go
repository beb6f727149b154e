// Package hue holds the Hue CLIP v2 resource model: the closed sum of
// resource variants, their typed links, and the deterministic UUID scheme
// that lets a redeployed bridge recompute the same identifiers for the
// same seed data.
package hue

import (
	"encoding/binary"
	"hash/fnv"

	"github.com/google/uuid"
)

// RType tags the variant a ResourceLink points at. The wire form is
// snake_case; the int value backing each constant is the pinned index fed
// into the deterministic UUID hash and must never be renumbered or reused.
type RType int

const (
	RTypeAuthV1 RType = iota
	RTypeBehaviorInstance
	RTypeBehaviorScript
	RTypeBridge
	RTypeBridgeHome
	RTypeButton
	RTypeDevice
	RTypeDevicePower
	RTypeDeviceSoftwareUpdate
	RTypeEntertainment
	RTypeEntertainmentConfiguration
	RTypeGeofenceClient
	RTypeGeolocation
	RTypeGroupedLight
	RTypeGroupedLightLevel
	RTypeGroupedMotion
	RTypeHomekit
	RTypeLight
	RTypeLightLevel
	RTypeMatter
	RTypeMotion
	RTypePrivateGroup
	RTypePublicImage
	RTypeRelativeRotary
	RTypeRoom
	RTypeScene
	RTypeSmartScene
	RTypeTaurus
	RTypeTemperature
	RTypeZigbeeConnectivity
	RTypeZigbeeDeviceDiscovery
	RTypeZone
	RTypeCameraMotion
	RTypeContact
	RTypeMatterFabric
	RTypeServiceGroup
	RTypeTamper
	RTypeZgpConnectivity
)

// names is the snake_case wire form per variant, including the one pinned
// rename (taurus -> taurus_7455).
var names = map[RType]string{
	RTypeAuthV1:                     "auth_v1",
	RTypeBehaviorInstance:           "behavior_instance",
	RTypeBehaviorScript:             "behavior_script",
	RTypeBridge:                     "bridge",
	RTypeBridgeHome:                 "bridge_home",
	RTypeButton:                     "button",
	RTypeDevice:                     "device",
	RTypeDevicePower:                "device_power",
	RTypeDeviceSoftwareUpdate:       "device_software_update",
	RTypeEntertainment:              "entertainment",
	RTypeEntertainmentConfiguration: "entertainment_configuration",
	RTypeGeofenceClient:             "geofence_client",
	RTypeGeolocation:                "geolocation",
	RTypeGroupedLight:               "grouped_light",
	RTypeGroupedLightLevel:          "grouped_light_level",
	RTypeGroupedMotion:              "grouped_motion",
	RTypeHomekit:                    "homekit",
	RTypeLight:                      "light",
	RTypeLightLevel:                 "light_level",
	RTypeMatter:                     "matter",
	RTypeMotion:                     "motion",
	RTypePrivateGroup:               "private_group",
	RTypePublicImage:                "public_image",
	RTypeRelativeRotary:             "relative_rotary",
	RTypeRoom:                       "room",
	RTypeScene:                      "scene",
	RTypeSmartScene:                 "smart_scene",
	RTypeTaurus:                     "taurus_7455",
	RTypeTemperature:                "temperature",
	RTypeZigbeeConnectivity:         "zigbee_connectivity",
	RTypeZigbeeDeviceDiscovery:      "zigbee_device_discovery",
	RTypeZone:                       "zone",
	RTypeCameraMotion:               "camera_motion",
	RTypeContact:                    "contact",
	RTypeMatterFabric:               "matter_fabric",
	RTypeServiceGroup:               "service_group",
	RTypeTamper:                     "tamper",
	RTypeZgpConnectivity:            "zgp_connectivity",
}

var byName = func() map[string]RType {
	m := make(map[string]RType, len(names))
	for k, v := range names {
		m[v] = k
	}
	return m
}()

func (t RType) String() string {
	if s, ok := names[t]; ok {
		return s
	}
	return "unknown"
}

// MarshalYAML and MarshalJSON both serialize through the same snake_case
// table; the state-file snapshot and the CLIP v2 responses must agree.
func (t RType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

func (t *RType) UnmarshalText(b []byte) error {
	if rt, ok := byName[string(b)]; ok {
		*t = rt
		return nil
	}
	return &UnknownRTypeError{Name: string(b)}
}

// UnknownRTypeError is returned for a wire rtype string with no pinned
// index; callers should keep the payload as opaque JSON rather than fail.
type UnknownRTypeError struct{ Name string }

func (e *UnknownRTypeError) Error() string { return "hue: unknown rtype " + e.Name }

// namespaceOID mirrors the RFC 4122 OID namespace UUID.
var namespaceOID = uuid.MustParse("6ba7b812-9dad-11d1-80b4-00c04fd430c8")

func hash64(data []byte) uint64 {
	h := fnv.New64a()
	_, _ = h.Write(data)
	return h.Sum64()
}

// Deterministic derives a UUIDv5 from this rtype's pinned index and an
// arbitrary seed, so that the same (rtype, seed) pair always yields the
// same resource id across restarts and redeployments.
func (t RType) Deterministic(seed []byte) uuid.UUID {
	h1 := hash64([]byte{byte(t)})
	h2 := hash64(seed)

	buf := make([]byte, 16)
	binary.LittleEndian.PutUint64(buf[:8], h1)
	binary.LittleEndian.PutUint64(buf[8:], h2)

	return uuid.NewSHA1(namespaceOID, buf)
}

// DeterministicString is a convenience wrapper for string seeds, the common
// case (ieee addresses, bridge ids, composite name keys).
func (t RType) DeterministicString(seed string) uuid.UUID {
	return t.Deterministic([]byte(seed))
}

// LinkTo builds a ResourceLink of this type for an already-known id,
// without deriving it (used once a resource's id is already on hand, e.g.
// reading back a z2m echo).
func (t RType) LinkTo(id uuid.UUID) ResourceLink {
	return ResourceLink{RID: id, RType: t}
}
