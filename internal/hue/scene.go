package hue

import (
	"encoding/json"

	"github.com/google/uuid"
)

// SceneAction is the captured per-light state a scene replays on recall;
// mirrors the fields the scene learner (§4.G) actually observes.
type SceneAction struct {
	On               *On                     `json:"on,omitempty"`
	Dimming          *Dimming                `json:"dimming,omitempty"`
	Color            *ColorUpdate            `json:"color,omitempty"`
	ColorTemperature *ColorTemperatureUpdate `json:"color_temperature,omitempty"`
	Gradient         *LightGradientUpdate    `json:"gradient,omitempty"`
	Effects          json.RawMessage         `json:"effects,omitempty"`
}

// SceneActionElement pairs a captured action with the light it targets.
type SceneActionElement struct {
	Target ResourceLink `json:"target"`
	Action SceneAction  `json:"action"`
}

type SceneStatusEnum string

const (
	SceneStatusInactive SceneStatusEnum = "inactive"
	SceneStatusStatic   SceneStatusEnum = "static"
	SceneStatusDynamic  SceneStatusEnum = "dynamic_palette"
)

type SceneStatus struct {
	Active SceneStatusEnum `json:"active"`
}

// Scene is owned by a Room (spec calls this field "group" for historical
// reasons) and carries one captured action per targeted light.
type Scene struct {
	ID       uuid.UUID             `json:"-"`
	Group    ResourceLink          `json:"group"`
	Metadata Metadata              `json:"metadata"`
	Actions  []SceneActionElement  `json:"actions"`
	Status   SceneStatus           `json:"status"`
}

func (s *Scene) RType() RType { return RTypeScene }

type SceneRecall struct {
	Action SceneStatusEnum `json:"action,omitempty"`
}

type SceneUpdate struct {
	Recall   *SceneRecall `json:"recall,omitempty"`
	Metadata *Metadata    `json:"metadata,omitempty"`
}

func (s *Scene) Apply(u SceneUpdate) {
	if u.Recall != nil && u.Recall.Action != "" {
		s.Status.Active = u.Recall.Action
	}
	if u.Metadata != nil {
		s.Metadata = *u.Metadata
	}
}
