package hue

import "github.com/google/uuid"

// Entertainment is the per-device capability resource advertising that a
// Device can participate in an Entertainment stream.
type Entertainment struct {
	ID        uuid.UUID    `json:"-"`
	OwnerLink ResourceLink `json:"owner"`
	Renderer  bool         `json:"renderer"`
	MaxStreams int         `json:"max_streams"`
}

func (e *Entertainment) RType() RType        { return RTypeEntertainment }
func (e *Entertainment) Owner() ResourceLink { return e.OwnerLink }

type EntertainmentConfigurationType string

const (
	EntConfTypeScreen EntertainmentConfigurationType = "screen"
	EntConfTypeOther  EntertainmentConfigurationType = "other"
)

type EntertainmentConfigurationStatus string

const (
	EntConfStatusActive EntertainmentConfigurationStatus = "active"
	EntConfStatusInactive EntertainmentConfigurationStatus = "inactive"
)

// EntertainmentConfigurationChannels is one streaming channel: the wire
// index a HueStream packet record refers to, plus the physical positions
// of the members it drives.
type EntertainmentConfigurationChannels struct {
	ChannelID uint8                              `json:"channel_id"`
	Members   []EntertainmentConfigurationStreamMembers `json:"members"`
}

type EntertainmentConfigurationStreamMembers struct {
	Service ResourceLink `json:"service"`
	Index   int          `json:"index"`
}

// EntertainmentConfiguration ties an ordered channel list to the set of
// Entertainment services it streams to; its UUID is the `area` a HueStream
// client addresses in the packet header.
type EntertainmentConfiguration struct {
	ID       uuid.UUID                              `json:"-"`
	Metadata Metadata                                `json:"metadata"`
	Status   EntertainmentConfigurationStatus        `json:"status"`
	Type     EntertainmentConfigurationType           `json:"configuration_type"`
	Channels []EntertainmentConfigurationChannels    `json:"channels"`
}

func (e *EntertainmentConfiguration) RType() RType { return RTypeEntertainmentConfiguration }

type EntertainmentConfigurationUpdate struct {
	Action *EntertainmentConfigurationAction `json:"action,omitempty"`
}

type EntertainmentConfigurationAction string

const (
	EntConfActionStart EntertainmentConfigurationAction = "start"
	EntConfActionStop  EntertainmentConfigurationAction = "stop"
)

func (e *EntertainmentConfiguration) Apply(u EntertainmentConfigurationUpdate) {
	if u.Action != nil {
		switch *u.Action {
		case EntConfActionStart:
			e.Status = EntConfStatusActive
		case EntConfActionStop:
			e.Status = EntConfStatusInactive
		}
	}
}
