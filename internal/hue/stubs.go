package hue

import "github.com/google/uuid"

// Button reports a switch's last press.
type Button struct {
	ID        uuid.UUID    `json:"-"`
	OwnerLink ResourceLink `json:"owner"`
	Metadata  ButtonMetadata `json:"metadata"`
}

func (b *Button) RType() RType        { return RTypeButton }
func (b *Button) Owner() ResourceLink { return b.OwnerLink }

type ButtonMetadata struct {
	ControlID int `json:"control_id"`
}

// Geolocation anchors the sunrise/sunset computation the wake-up scheduler
// (an out-of-core consumer per spec.md §1) reads.
type Geolocation struct {
	ID        uuid.UUID `json:"-"`
	IsConfigured bool   `json:"is_configured"`
}

func (g *Geolocation) RType() RType { return RTypeGeolocation }

// BehaviorInstance is a configured automation (wake-up, etc); the core
// only stores it, the scheduler that interprets it is a declared
// out-of-core collaborator.
type BehaviorInstance struct {
	ID            uuid.UUID      `json:"-"`
	ScriptID      string         `json:"script_id"`
	Enabled       bool           `json:"enabled"`
	Configuration map[string]any `json:"configuration"`
	Metadata      BehaviorInstanceMetadata `json:"metadata"`
}

func (b *BehaviorInstance) RType() RType { return RTypeBehaviorInstance }

type BehaviorInstanceMetadata struct {
	Name string `json:"name"`
}
