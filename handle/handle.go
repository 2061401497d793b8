// Package handle implements Handle, the opaque identifier consumers
// use to interact with a loaded (or loading) asset.
/*
 * Copyright (c) 2018-2020, NVIDIA CORPORATION. All rights reserved.
 */
package handle

import (
	"reflect"

	"github.com/keket-go/keket/components"
	"github.com/keket-go/keket/keketerr"
	"github.com/keket-go/keket/storage"
)

// Handle wraps a storage.Entity with the *storage.Store it lives in,
// so predicates and accessors don't need the store threaded through
// every call site.
type Handle struct {
	Entity storage.Entity
	store  *storage.Store
}

// New wraps an existing entity. The database and loading packages call
// this directly; other callers receive a Handle already built.
func New(e storage.Entity, s *storage.Store) Handle {
	return Handle{Entity: e, store: s}
}

func (h Handle) Store() *storage.Store { return h.store }

// Exists reports whether the underlying entity is still alive.
func (h Handle) Exists() bool { return h.store.Exists(h.Entity) }

func (h Handle) AwaitsResolution() bool {
	return h.store.Has(h.Entity, reflect.TypeOf(components.AwaitsResolution{}))
}

func (h Handle) BytesAreReadyToProcess() bool {
	return h.store.Has(h.Entity, reflect.TypeOf(components.BytesReadyToProcess{}))
}

func (h Handle) AwaitsAsyncFetch() bool {
	return h.store.Has(h.Entity, reflect.TypeOf(components.AwaitsAsyncFetch{}))
}

func (h Handle) AwaitsStoring() bool {
	return h.store.Has(h.Entity, reflect.TypeOf(components.AwaitsStoring{}))
}

func (h Handle) BytesAreReadyToStore() bool {
	return h.store.Has(h.Entity, reflect.TypeOf(components.BytesReadyToStore{}))
}

func (h Handle) AwaitsAsyncStore() bool {
	return h.store.Has(h.Entity, reflect.TypeOf(components.AwaitsAsyncStore{}))
}

var inProgressTypes = []reflect.Type{
	reflect.TypeOf(components.AwaitsResolution{}),
	reflect.TypeOf(components.BytesReadyToProcess{}),
	reflect.TypeOf(components.AwaitsAsyncFetch{}),
	reflect.TypeOf(components.AwaitsDeferredJob{}),
	reflect.TypeOf(components.AwaitsExtractionFromStorage{}),
}

func isInProgress(s *storage.Store, e storage.Entity) bool {
	for _, t := range inProgressTypes {
		if s.Has(e, t) {
			return true
		}
	}
	return false
}

// IsReadyToUse asserts the in-progress-marker-free predicate across
// the outgoing dependency closure.
func (h Handle) IsReadyToUse() bool {
	for _, e := range h.store.TransitiveClosure(h.Entity) {
		if !h.store.Exists(e) {
			return false
		}
		if isInProgress(h.store, e) {
			return false
		}
	}
	return true
}

// Refresh re-attaches AwaitsResolution, scheduling a re-fetch on the
// next maintain tick without changing the entity's identity.
func (h Handle) Refresh() {
	h.store.Attach(h.Entity, components.AwaitsResolution{})
}

// RequestStore attaches AwaitsStoring.
func (h Handle) RequestStore() {
	h.store.Attach(h.Entity, components.AwaitsStoring{})
}

// Delete despawns the outward dependency closure including self.
func (h Handle) Delete() {
	h.store.DespawnClosure(h.Entity)
}

// Give attaches each of bundle's components to the entity.
func (h Handle) Give(bundle ...interface{}) {
	for _, c := range bundle {
		h.store.Attach(h.Entity, c)
	}
}

// Take detaches and returns the component of type T, taking ownership
// of it away from the entity.
func Take[T any](h Handle) (T, bool) {
	var zero T
	v, ok := h.store.Detach(h.Entity, reflect.TypeOf(zero))
	if !ok {
		return zero, false
	}
	return v.(T), true
}

// Ensure returns the existing component of type T, or attaches and
// returns a newly zero-valued one if absent.
func Ensure[T any](h Handle) T {
	var zero T
	t := reflect.TypeOf(zero)
	if v, ok := h.store.Get(h.Entity, t); ok {
		return v.(T)
	}
	h.store.Attach(h.Entity, zero)
	return zero
}

// Access returns the component of type T, or the zero value and false
// if the entity carries none.
func Access[T any](h Handle) (T, bool) {
	var zero T
	v, ok := h.store.Get(h.Entity, reflect.TypeOf(zero))
	if !ok {
		return zero, false
	}
	return v.(T), true
}

// AccessChecked is Access but surfaces a keketerr.ErrLookupFailure
// instead of a boolean, for call sites that want to propagate the
// error rather than branch on it. The unchecked accessors (Access,
// Take, typed predicates) fail loudly only in the sense of returning
// an explicit "absent" signal — they never panic, matching Go's
// idiomatic error return over panic-for-control-flow.
func AccessChecked[T any](h Handle) (T, error) {
	v, ok := Access[T](h)
	if !ok {
		var zero T
		return zero, keketerr.Wrapf(keketerr.ErrLookupFailure, "component %T not present on entity %d", zero, h.Entity)
	}
	return v, nil
}

// Dependencies returns handles for the entities this asset directly
// depends on.
func (h Handle) Dependencies() []Handle {
	ids := h.store.RelatedTo(h.Entity)
	out := make([]Handle, len(ids))
	for i, e := range ids {
		out[i] = New(e, h.store)
	}
	return out
}

// Dependent returns handles for the entities that directly depend on
// this asset.
func (h Handle) Dependent() []Handle {
	ids := h.store.RelatedFrom(h.Entity)
	out := make([]Handle, len(ids))
	for i, e := range ids {
		out[i] = New(e, h.store)
	}
	return out
}

// TraverseDependencies returns handles for every entity transitively
// reachable from this asset, excluding the asset itself.
func (h Handle) TraverseDependencies() []Handle {
	closure := h.store.TransitiveClosure(h.Entity)
	out := make([]Handle, 0, len(closure))
	for _, e := range closure {
		if e == h.Entity {
			continue
		}
		out = append(out, New(e, h.store))
	}
	return out
}

// Path returns the asset's canonical path, if the entity still carries
// the Path component (it is removed only on despawn).
func (h Handle) Path() (components.Path, bool) {
	return Access[components.Path](h)
}
