// Package backend carries intent-level commands from the store/API layer
// out to whichever backend adapters (z2m, Entertainment) know how to
// realize them against real devices.
package backend

import (
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/yveskaufmann/huebridge/internal/hue"
)

// Request is the closed sum of commands a backend adapter can receive.
// Exactly one field is populated, selected by Kind.
type Request struct {
	Kind Kind

	Light        *LightUpdateRequest
	SceneCreate  *SceneCreateRequest
	SceneUpdate  *SceneUpdateRequest
	GroupedLight *GroupedLightUpdateRequest
	Room         *RoomUpdateRequest
	Delete       *DeleteRequest

	EntertainmentStart *uuid.UUID
	EntertainmentFrame *EntertainmentFrameRequest
	EntertainmentStop  bool
}

type Kind int

const (
	KindLightUpdate Kind = iota
	KindSceneCreate
	KindSceneUpdate
	KindGroupedLightUpdate
	KindRoomUpdate
	KindDelete
	KindEntertainmentStart
	KindEntertainmentFrame
	KindEntertainmentStop
)

type LightUpdateRequest struct {
	Link   hue.ResourceLink
	Update hue.LightUpdate
}

type SceneCreateRequest struct {
	Link  hue.ResourceLink
	ID    uint32
	Scene hue.Scene
}

type SceneUpdateRequest struct {
	Link   hue.ResourceLink
	Update hue.SceneUpdate
}

type GroupedLightUpdateRequest struct {
	Link   hue.ResourceLink
	Update hue.GroupedLightUpdate
}

type RoomUpdateRequest struct {
	Link   hue.ResourceLink
	Update hue.RoomUpdate
}

// DeleteRequest carries the z2m addressing a backend needs to tear a
// resource down, captured by the caller before the store removes the
// resource's aux sidecar (topic/scene-index lookups would otherwise race
// the delete and come back empty by the time a backend dequeues this).
type DeleteRequest struct {
	Link       hue.ResourceLink
	Topic      string
	SceneIndex *uint32
}

// EntertainmentFrameRequest carries one decoded HueStream frame's worth of
// per-channel color records, already typed by color mode.
type EntertainmentFrameRequest struct {
	ColorMode string // "rgb" or "xy"
	RGB       []RGBLight
	XY        []XYLight
}

type RGBLight struct {
	Channel uint8
	R, G, B uint16
}

type XYLight struct {
	Channel    uint8
	X, Y, Bri uint16
}

// Bus is a typed broadcast channel: multiple backends subscribe, each one
// filters by the UUIDs it has mapped, and slow subscribers drop events
// rather than blocking the publisher.
type Bus struct {
	log  *logrus.Entry
	subs map[chan Request]struct{}
	mu   sync.Mutex
}

func NewBus(log *logrus.Entry) *Bus {
	return &Bus{log: log, subs: make(map[chan Request]struct{})}
}

func (b *Bus) Subscribe(buffer int) (<-chan Request, func()) {
	ch := make(chan Request, buffer)
	b.mu.Lock()
	b.subs[ch] = struct{}{}
	b.mu.Unlock()

	cancel := func() {
		b.mu.Lock()
		delete(b.subs, ch)
		b.mu.Unlock()
		close(ch)
	}
	return ch, cancel
}

// Publish fans a request out to every subscriber; a full subscriber buffer
// drops the message and logs rather than blocking the caller.
func (b *Bus) Publish(req Request) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for ch := range b.subs {
		select {
		case ch <- req:
		default:
			b.log.Warn("backend: subscriber overflow, dropping request")
		}
	}
}
