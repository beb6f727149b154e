// Package store implements the resource graph: a UUID-keyed map of typed
// Hue resources plus a z2m/legacy-id sidecar index, guarded by a single
// mutex, with mutation entry points that emit events on the way out.
package store

import (
	"github.com/google/uuid"

	"github.com/yveskaufmann/huebridge/internal/hue"
)

// StateVersion is the on-disk state-file format version this build writes
// and the minimum version it will load without migration.
const StateVersion = 1

// AuxData is sidecar metadata per resource, never serialized into CLIP v2
// responses: a legacy v1 integer handle and a z2m topic binding.
type AuxData struct {
	IDV1Index *uint32
	Topic     *string
}

// State is the in-memory resource graph: every live resource keyed by its
// UUID, the z2m/legacy sidecar per UUID, and the reverse legacy-id index
// used to serve /api/{user}/... paths.
type State struct {
	Version     int
	Resources   map[uuid.UUID]hue.Resource
	Aux         map[uuid.UUID]AuxData
	IDV1Reverse map[uint32]uuid.UUID
	nextIDV1    map[hue.RType]uint32
}

// NewState returns an empty, ready-to-seed State.
func NewState() State {
	return State{
		Version:     StateVersion,
		Resources:   make(map[uuid.UUID]hue.Resource),
		Aux:         make(map[uuid.UUID]AuxData),
		IDV1Reverse: make(map[uint32]uuid.UUID),
		nextIDV1:    make(map[hue.RType]uint32),
	}
}

// assignIDV1 allocates the next monotonic legacy id for rtype, scoped per
// type the way the reference bridge's lights/groups/scenes counters are
// independent of one another.
func (s *State) assignIDV1(rtype hue.RType) uint32 {
	if s.nextIDV1 == nil {
		s.nextIDV1 = make(map[hue.RType]uint32)
	}
	id := s.nextIDV1[rtype]
	s.nextIDV1[rtype] = id + 1
	return id
}
