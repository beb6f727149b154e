package hue

import "github.com/google/uuid"

// Room groups a set of Devices and exposes at most one GroupedLight
// service, per the store's invariant 4.
type Room struct {
	ID       uuid.UUID      `json:"-"`
	Metadata Metadata       `json:"metadata"`
	Children []ResourceLink `json:"children"`
	Services []ResourceLink `json:"services"`
}

func (r *Room) RType() RType { return RTypeRoom }

// GroupedLightService returns the Room's single GroupedLight service link,
// if any.
func (r *Room) GroupedLightService() (ResourceLink, bool) {
	for _, s := range r.Services {
		if s.RType == RTypeGroupedLight {
			return s, true
		}
	}
	return ResourceLink{}, false
}

type RoomUpdate struct {
	Children *[]ResourceLink `json:"children,omitempty"`
	Metadata *Metadata       `json:"metadata,omitempty"`
}

func (r *Room) Apply(u RoomUpdate) {
	if u.Children != nil {
		r.Children = *u.Children
	}
	if u.Metadata != nil {
		r.Metadata = *u.Metadata
	}
}

// Zone is Room's sibling for non-physical groupings (no Device children,
// only service references); kept distinct because the CLIP v2 API does.
type Zone struct {
	ID       uuid.UUID      `json:"-"`
	Metadata Metadata       `json:"metadata"`
	Children []ResourceLink `json:"children"`
	Services []ResourceLink `json:"services"`
}

func (z *Zone) RType() RType { return RTypeZone }
