// Package z2m implements the bridge's Zigbee2MQTT backend adapter
// (spec.md §4.G): a websocket client that discovers z2m devices/groups,
// builds Hue resources from their expose schemas, translates Hue update
// requests into z2m writes (including the Hue-specific ZCL composite
// command), and learns scene actions by observing post-recall state.
package z2m

import "encoding/json"

// RawMessage is z2m's own websocket envelope: every frame is a JSON object
// with a "topic" and an arbitrary "payload".
type RawMessage struct {
	Topic   string          `json:"topic"`
	Payload json.RawMessage `json:"payload"`
}

// Outgoing is the z2m request envelope used both for MQTT-style "set"
// writes and bridge API calls; z2m's websocket bridge multiplexes both
// shapes over the same {topic,payload} frame.
type Outgoing struct {
	Topic   string `json:"topic"`
	Payload any    `json:"payload"`
}

// Device is one entry of a bridge/devices payload.
type Device struct {
	IEEEAddress  string   `json:"ieee_address"`
	FriendlyName string   `json:"friendly_name"`
	Definition   *Definition `json:"definition"`
	Supported    bool     `json:"supported"`
}

// Definition carries the device's model metadata and its capability
// exposes.
type Definition struct {
	Model        string   `json:"model"`
	Vendor       string   `json:"vendor"`
	Description  string   `json:"description"`
	Exposes      []Expose `json:"exposes"`
}

// Expose is one node of z2m's capability-description tree. Only the
// fields the bridge actually interprets are modeled; everything else
// round-trips through json.RawMessage untouched where it's stored at all.
type Expose struct {
	Type     string   `json:"type"`
	Name     string   `json:"name,omitempty"`
	Property string   `json:"property,omitempty"`
	Features []Expose `json:"features,omitempty"`
	ValueMin *float64 `json:"value_min,omitempty"`
	ValueMax *float64 `json:"value_max,omitempty"`
	Length   *int     `json:"length_max,omitempty"`
}

// Group is one entry of a bridge/groups payload.
type Group struct {
	ID           int           `json:"id"`
	FriendlyName string        `json:"friendly_name"`
	Members      []GroupMember `json:"members"`
	Scenes       []GroupScene  `json:"scenes"`
}

type GroupMember struct {
	IEEEAddress string `json:"ieee_address"`
	Endpoint    int    `json:"endpoint"`
}

type GroupScene struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// GroupMembersChange is the payload of bridge/group_members_add and
// bridge/group_members_remove.
type GroupMembersChange struct {
	Group  string `json:"group"`
	Device string `json:"device"`
}

// DeviceRemove is the payload of bridge/device_remove.
type DeviceRemove struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

// DeviceUpdate is the loose, all-fields-optional state payload z2m
// publishes on `<friendly_name>` and accepts on `<friendly_name>/set`.
type DeviceUpdate struct {
	State      *string      `json:"state,omitempty"`
	Brightness *int         `json:"brightness,omitempty"`
	ColorTemp  *int         `json:"color_temp,omitempty"`
	Color      *DeviceColor `json:"color,omitempty"`
	Gradient   []string     `json:"gradient,omitempty"`
}

type DeviceColor struct {
	X *float64 `json:"x,omitempty"`
	Y *float64 `json:"y,omitempty"`
}

// On reports whether the update's state, if present, is "ON".
func (u DeviceUpdate) On() (bool, bool) {
	if u.State == nil {
		return false, false
	}
	return *u.State == "ON", true
}

// SceneStoreRequest is the payload of a `<topic>/scene_store` write.
type SceneStoreRequest struct {
	Name string `json:"name"`
	ID   uint32 `json:"ID"`
}

// SceneRecallRequest is the payload of a `<topic>/scene_recall` write.
type SceneRecallRequest struct {
	ID uint32 `json:"ID"`
}

// SceneRemoveRequest is the payload of a `<topic>/scene_remove` write.
type SceneRemoveRequest struct {
	ID uint32 `json:"ID"`
}

// RawCommandRequest addresses a raw ZCL frame at a cluster/endpoint pair,
// the envelope the Hue composite light-update command travels in.
type RawCommandRequest struct {
	IEEEAddress string `json:"ieee_address"`
	Cluster     int    `json:"cluster"`
	Endpoint    int    `json:"endpoint"`
	Payload     string `json:"payload"` // hex-encoded
}

// HueZCLCluster and HueZCLEndpoint are the fixed addressing the reference
// bridge uses for the Signify manufacturer-specific light command.
const (
	HueZCLCluster  = 0xFC03
	HueZCLEndpoint = 11
)
