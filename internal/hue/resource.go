package hue

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// Resource is the closed sum of Hue v2 resource variants. Concrete types
// implement it directly; there is no inheritance, only a projection back to
// the variant's RType and an optional Owner back-reference.
type Resource interface {
	RType() RType
}

// Owned is implemented by every variant that carries an owner back-link to
// its parent Device, Room, or BridgeHome.
type Owned interface {
	Resource
	Owner() ResourceLink
}

// Passthrough wraps a resource variant this bridge does not model natively
// (CameraMotion, Contact, MatterFabric, ServiceGroup, Tamper,
// ZgpConnectivity): it round-trips the raw JSON untouched.
type Passthrough struct {
	Type json.RawMessage `json:"-"`
	Kind RType           `json:"-"`
	Raw  map[string]any  `json:"-"`
}

func (p *Passthrough) RType() RType { return p.Kind }

// FromValue reconstructs a concrete Resource from its rtype tag and a
// generic JSON value, the mirror of ToValue, used by the state-file loader.
func FromValue(rtype RType, data []byte) (Resource, error) {
	switch rtype {
	case RTypeLight:
		var v Light
		if err := json.Unmarshal(data, &v); err != nil {
			return nil, err
		}
		return &v, nil
	case RTypeRoom:
		var v Room
		if err := json.Unmarshal(data, &v); err != nil {
			return nil, err
		}
		return &v, nil
	case RTypeZone:
		var v Zone
		if err := json.Unmarshal(data, &v); err != nil {
			return nil, err
		}
		return &v, nil
	case RTypeScene:
		var v Scene
		if err := json.Unmarshal(data, &v); err != nil {
			return nil, err
		}
		return &v, nil
	case RTypeGroupedLight:
		var v GroupedLight
		if err := json.Unmarshal(data, &v); err != nil {
			return nil, err
		}
		return &v, nil
	case RTypeDevice:
		var v Device
		if err := json.Unmarshal(data, &v); err != nil {
			return nil, err
		}
		return &v, nil
	case RTypeBridge:
		var v Bridge
		if err := json.Unmarshal(data, &v); err != nil {
			return nil, err
		}
		return &v, nil
	case RTypeBridgeHome:
		var v BridgeHome
		if err := json.Unmarshal(data, &v); err != nil {
			return nil, err
		}
		return &v, nil
	case RTypeEntertainment:
		var v Entertainment
		if err := json.Unmarshal(data, &v); err != nil {
			return nil, err
		}
		return &v, nil
	case RTypeEntertainmentConfiguration:
		var v EntertainmentConfiguration
		if err := json.Unmarshal(data, &v); err != nil {
			return nil, err
		}
		return &v, nil
	case RTypeZigbeeConnectivity:
		var v ZigbeeConnectivity
		if err := json.Unmarshal(data, &v); err != nil {
			return nil, err
		}
		return &v, nil
	case RTypeZigbeeDeviceDiscovery:
		var v ZigbeeDeviceDiscovery
		if err := json.Unmarshal(data, &v); err != nil {
			return nil, err
		}
		return &v, nil
	case RTypeButton:
		var v Button
		if err := json.Unmarshal(data, &v); err != nil {
			return nil, err
		}
		return &v, nil
	case RTypeGeolocation:
		var v Geolocation
		if err := json.Unmarshal(data, &v); err != nil {
			return nil, err
		}
		return &v, nil
	case RTypeBehaviorInstance:
		var v BehaviorInstance
		if err := json.Unmarshal(data, &v); err != nil {
			return nil, err
		}
		return &v, nil
	default:
		var raw map[string]any
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, err
		}
		return &Passthrough{Kind: rtype, Raw: raw}, nil
	}
}

// ToValue serializes a resource including its "type" and "id" envelope
// fields, the shape every CLIP v2 list/get response item carries.
func ToValue(id uuid.UUID, r Resource) (map[string]any, error) {
	body, err := json.Marshal(r)
	if err != nil {
		return nil, err
	}

	var m map[string]any
	if pt, ok := r.(*Passthrough); ok {
		m = make(map[string]any, len(pt.Raw)+2)
		for k, v := range pt.Raw {
			m[k] = v
		}
	} else if err := json.Unmarshal(body, &m); err != nil {
		return nil, err
	}

	m["id"] = id.String()
	m["type"] = r.RType().String()
	return m, nil
}

// WrongTypeError is returned when a typed store lookup narrows a Resource
// to a variant it is not.
type WrongTypeError struct {
	Want RType
	Got  RType
}

func (e *WrongTypeError) Error() string {
	return fmt.Sprintf("hue: wrong type: want %s, got %s", e.Want, e.Got)
}

// As narrows a Resource to a concrete pointer type, returning WrongTypeError
// on mismatch. T must be a pointer-to-struct Resource implementation.
func As[T Resource](r Resource) (T, error) {
	v, ok := r.(T)
	if !ok {
		var zero T
		return zero, &WrongTypeError{Want: zero.RType(), Got: r.RType()}
	}
	return v, nil
}
