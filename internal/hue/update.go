package hue

import (
	"encoding/json"
	"fmt"
)

// Update is the delta payload carried by an Event.Update record. Only the
// six variants the store can diff carry a populated field; GenerateUpdate
// returns UpdateUnsupportedError for everything else.
type Update struct {
	RType        RType
	Light        *LightUpdate
	GroupedLight *GroupedLightUpdate
	Scene        *SceneUpdate
	Device       *DeviceUpdate
	Room         *RoomUpdate
	EntConf      *EntertainmentConfigurationUpdate
}

// MarshalJSON renders whichever single variant is populated directly,
// rather than nesting it under its field name, so an Event.Update record
// flattens to the same shape a GET of the resource would show for those
// fields.
func (u Update) MarshalJSON() ([]byte, error) {
	switch {
	case u.Light != nil:
		return json.Marshal(u.Light)
	case u.GroupedLight != nil:
		return json.Marshal(u.GroupedLight)
	case u.Scene != nil:
		return json.Marshal(u.Scene)
	case u.Device != nil:
		return json.Marshal(u.Device)
	case u.Room != nil:
		return json.Marshal(u.Room)
	case u.EntConf != nil:
		return json.Marshal(u.EntConf)
	default:
		return []byte("{}"), nil
	}
}

// UpdateUnsupportedError is returned when a variant has no delta
// projection; the store's update loop surfaces it as a 500.
type UpdateUnsupportedError struct{ RType RType }

func (e *UpdateUnsupportedError) Error() string {
	return fmt.Sprintf("hue: update generation unsupported for %s", e.RType)
}

// GenerateUpdate builds the delta to publish for the resource's current
// (post-mutation) state. It always reflects the post-image rather than a
// diff against the prior value, matching the reference bridge: a client
// that applies the same update twice observes the same event content both
// times.
func GenerateUpdate(r Resource) (Update, error) {
	switch v := r.(type) {
	case *Light:
		on := v.On
		u := LightUpdate{On: &on}
		if v.Dimming != nil {
			u.Dimming = &DimmingUpdate{Brightness: v.Dimming.Brightness}
		}
		if v.ColorTemperature != nil && v.ColorTemperature.MirekValid && v.ColorTemperature.Mirek != nil {
			u.ColorTemperature = &ColorTemperatureUpdate{Mirek: *v.ColorTemperature.Mirek}
		}
		if v.Color != nil {
			u.Color = &ColorUpdate{XY: v.Color.XY}
		}
		if v.Gradient != nil {
			u.Gradient = &LightGradientUpdate{Points: v.Gradient.Points, Mode: v.Gradient.Mode}
		}
		return Update{RType: RTypeLight, Light: &u}, nil

	case *GroupedLight:
		on := v.On
		u := GroupedLightUpdate{On: &on}
		if v.Dimming != nil {
			u.Dimming = &DimmingUpdate{Brightness: v.Dimming.Brightness}
		}
		return Update{RType: RTypeGroupedLight, GroupedLight: &u}, nil

	case *Scene:
		u := SceneUpdate{Metadata: &v.Metadata, Recall: &SceneRecall{Action: v.Status.Active}}
		return Update{RType: RTypeScene, Scene: &u}, nil

	case *Device:
		u := DeviceUpdate{Metadata: &v.Metadata}
		return Update{RType: RTypeDevice, Device: &u}, nil

	case *Room:
		children := v.Children
		u := RoomUpdate{Children: &children, Metadata: &v.Metadata}
		return Update{RType: RTypeRoom, Room: &u}, nil

	case *EntertainmentConfiguration:
		var action EntertainmentConfigurationAction
		if v.Status == EntConfStatusActive {
			action = EntConfActionStart
		} else {
			action = EntConfActionStop
		}
		u := EntertainmentConfigurationUpdate{Action: &action}
		return Update{RType: RTypeEntertainmentConfiguration, EntConf: &u}, nil

	default:
		return Update{}, &UpdateUnsupportedError{RType: r.RType()}
	}
}

// IDV1Scope maps an id_v1 target resource to the v1 path segment it is
// surfaced under, per spec.md §4.C. Room/GroupedLight/EntertainmentConfig
// share the "/groups/{id}" bucket; callers pass the id already resolved
// for the relevant scope.
func IDV1Scope(rtype RType, id uint32) (string, bool) {
	switch rtype {
	case RTypeLight:
		return fmt.Sprintf("/lights/%d", id), true
	case RTypeRoom, RTypeGroupedLight, RTypeEntertainmentConfiguration:
		return fmt.Sprintf("/groups/%d", id), true
	case RTypeScene, RTypeSmartScene:
		return fmt.Sprintf("/scenes/%d", id), true
	case RTypeDevice:
		return fmt.Sprintf("/lights/%d", id), true
	default:
		return "", false
	}
}
