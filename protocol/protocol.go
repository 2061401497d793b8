// Package protocol implements the Protocol extension point: given
// fetched bytes, decode them into payload components and, for compound
// assets, declare further dependencies.
/*
 * Copyright (c) 2018-2020, NVIDIA CORPORATION. All rights reserved.
 */
package protocol

import (
	"github.com/keket-go/keket/handle"
	"github.com/keket-go/keket/storage"
)

// Protocol is the one required contract. ProcessBytes is called with
// BytesReadyToProcess already stripped from the entity; on failure the
// coordinator dispatches BytesProcessingFailed to any per-asset
// bindings. On success the protocol has free rein to attach payload
// components and spawn or share dependency entities.
type Protocol interface {
	Name() string
	ProcessBytes(h handle.Handle, s *storage.Store, data []byte) error
}

// Producer is the optional write-direction half: encodes the entity's
// current state back into bytes for a Store adapter.
type Producer interface {
	ProduceBytes(h handle.Handle, s *storage.Store) ([]byte, error)
}

// Maintainer is the optional background-progress half, used by
// Future-protocol.
type Maintainer interface {
	Maintain(s *storage.Store)
}

type registryEntry struct {
	name     string
	protocol Protocol
}

// Registry is an ordered list of registered protocols. When multiple
// protocols share a name, the first registered wins; Lookup implements
// this by scanning in registration order and returning the first
// match.
type Registry struct {
	entries []registryEntry
}

func NewRegistry() *Registry { return &Registry{} }

// Register adds p under its own Name().
func (r *Registry) Register(p Protocol) {
	r.entries = append(r.entries, registryEntry{name: p.Name(), protocol: p})
}

// Lookup returns the first-registered protocol whose name matches.
func (r *Registry) Lookup(name string) (Protocol, bool) {
	for _, e := range r.entries {
		if e.name == name {
			return e.protocol, true
		}
	}
	return nil, false
}

// MaintainAll calls Maintain on every registered protocol that
// implements Maintainer, in registration order.
func (r *Registry) MaintainAll(s *storage.Store) {
	for _, e := range r.entries {
		if m, ok := e.protocol.(Maintainer); ok {
			m.Maintain(s)
		}
	}
}

// All returns every registered protocol in registration order, for
// callers (database.maintain step 6) that must process each protocol's
// pending entities in turn rather than just look one up by name.
func (r *Registry) All() []Protocol {
	out := make([]Protocol, len(r.entries))
	for i, e := range r.entries {
		out[i] = e.protocol
	}
	return out
}
