package hue

import "github.com/google/uuid"

// GroupedLight is a Room/Zone's aggregate control surface: writes fan out
// to every child Light via the backend adapter. Reads return the on/dimming
// snapshot stored on the resource, the last value written to it; the union
// of the child lights' states is not computed.
type GroupedLight struct {
	ID        uuid.UUID    `json:"-"`
	OwnerLink ResourceLink `json:"owner"`
	On        On           `json:"on"`
	Dimming   *Dimming     `json:"dimming,omitempty"`
}

func (g *GroupedLight) RType() RType        { return RTypeGroupedLight }
func (g *GroupedLight) Owner() ResourceLink { return g.OwnerLink }

type GroupedLightUpdate struct {
	On      *On            `json:"on,omitempty"`
	Dimming *DimmingUpdate `json:"dimming,omitempty"`
}

type GroupedLightDynamicsUpdate struct {
	Duration uint32 `json:"duration"`
}

func (g *GroupedLight) Apply(u GroupedLightUpdate) {
	if u.On != nil {
		g.On = *u.On
	}
	if u.Dimming != nil {
		g.Dimming = &Dimming{Brightness: u.Dimming.Brightness}
	}
}
