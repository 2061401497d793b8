// Package reference implements Reference and SmartReference: a path
// paired with a lazily-resolved handle, the latter additionally
// participating in reference counting.
//
// Both types carry a path now and resolve it through a lookup call
// later, rather than holding a live handle across a serialization
// boundary.
/*
 * Copyright (c) 2018-2020, NVIDIA CORPORATION. All rights reserved.
 */
package reference

import (
	"reflect"

	"github.com/keket-go/keket/assetpath"
	"github.com/keket-go/keket/components"
	"github.com/keket-go/keket/handle"
)

// Resolver is the subset of database.Database a Reference needs to
// bind lazily. Kept minimal and interface-typed here so this package
// never imports database (which itself depends on fetch/protocol/store
// — importing it back would cycle).
type Resolver interface {
	Ensure(assetpath.AssetPath) (handle.Handle, error)
}

// Reference pairs a path with a handle resolved on demand. It
// serializes as its canonical path string alone: the handle field is
// intentionally left unresolved across a marshal/unmarshal round trip
// and is rebuilt on the first Resolve.
type Reference struct {
	path   assetpath.AssetPath
	handle *handle.Handle
}

func New(path assetpath.AssetPath) *Reference {
	return &Reference{path: path}
}

func (r *Reference) Path() assetpath.AssetPath { return r.path }

// Handle returns the cached handle, if Resolve has already run.
func (r *Reference) Handle() (handle.Handle, bool) {
	if r.handle == nil {
		return handle.Handle{}, false
	}
	return *r.handle, true
}

// Resolve binds the handle on first call (via db.Ensure) and returns
// the cached handle on every subsequent call.
func (r *Reference) Resolve(db Resolver) (handle.Handle, error) {
	if r.handle != nil {
		return *r.handle, nil
	}
	h, err := db.Ensure(r.path)
	if err != nil {
		return handle.Handle{}, err
	}
	r.handle = &h
	return h, nil
}

// MarshalText serializes the reference as its canonical path string.
func (r *Reference) MarshalText() ([]byte, error) { return r.path.MarshalText() }

// UnmarshalText resets the reference to path-only, unresolved state.
func (r *Reference) UnmarshalText(b []byte) error {
	var p assetpath.AssetPath
	if err := p.UnmarshalText(b); err != nil {
		return err
	}
	r.path = p
	r.handle = nil
	return nil
}

// SmartReference is a Reference that participates in reference
// counting: creating it with NewSmart or Clone increments the target
// entity's components.ReferenceCounter, and Release decrements it. database's
// maintain loop despawns the entity (and its dependency closure) once
// the counter reaches zero.
type SmartReference struct {
	Reference
}

// NewSmart resolves path eagerly (via db.Ensure) and increments its
// reference counter, so constructing three independent SmartReferences
// to the same path leaves its counter at 3.
func NewSmart(db Resolver, path assetpath.AssetPath) (*SmartReference, error) {
	sr := &SmartReference{Reference: Reference{path: path}}
	h, err := sr.Reference.Resolve(db)
	if err != nil {
		return nil, err
	}
	incRefCount(h)
	return sr, nil
}

// Clone resolves (if necessary) and increments the shared counter
// again, producing an independent SmartReference to the same asset.
func (sr *SmartReference) Clone(db Resolver) (*SmartReference, error) {
	h, err := sr.Reference.Resolve(db)
	if err != nil {
		return nil, err
	}
	incRefCount(h)
	return &SmartReference{Reference: Reference{path: sr.path, handle: &h}}, nil
}

// Release decrements the reference counter. The actual despawn, if the
// counter reaches zero, happens on the next maintain tick, not
// synchronously here.
func (sr *SmartReference) Release() {
	h, ok := sr.Reference.Handle()
	if !ok {
		return
	}
	rcType := reflect.TypeOf(components.ReferenceCounter{})
	v, ok := h.Store().Get(h.Entity, rcType)
	if !ok {
		return
	}
	rc := v.(components.ReferenceCounter)
	rc.Dec()
	h.Store().Attach(h.Entity, rc)
}

func incRefCount(h handle.Handle) {
	rcType := reflect.TypeOf(components.ReferenceCounter{})
	v, ok := h.Store().Get(h.Entity, rcType)
	var rc components.ReferenceCounter
	if ok {
		rc = v.(components.ReferenceCounter)
	}
	rc.Inc()
	h.Store().Attach(h.Entity, rc)
}

// RefCount reads the current reference count for the resolved handle,
// or 0 if unresolved or uncounted.
func (sr *SmartReference) RefCount() uint32 {
	h, ok := sr.Reference.Handle()
	if !ok {
		return 0
	}
	v, ok := h.Store().Get(h.Entity, reflect.TypeOf(components.ReferenceCounter{}))
	if !ok {
		return 0
	}
	return v.(components.ReferenceCounter).Count
}
