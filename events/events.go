// Package events implements the lifecycle event stream: AssetEventKind,
// AssetEvent, and per-database/per-asset listener bindings.
//
// Bindings is a mutex-guarded struct holding listener state, scoped to
// a single process — there is only one coordinator, so no cluster-wide
// ownership or acknowledgement bookkeeping is needed (see DESIGN.md).
/*
 * Copyright (c) 2018-2020, NVIDIA CORPORATION. All rights reserved.
 */
package events

import (
	"sync"

	"github.com/golang/glog"
	"github.com/teris-io/shortid"

	"github.com/keket-go/keket/assetpath"
	"github.com/keket-go/keket/handle"
)

// Kind enumerates the lifecycle transitions an AssetEvent can carry.
type Kind string

const (
	KindAwaitsResolution   Kind = "awaits_resolution"
	KindAwaitsAsyncFetch   Kind = "awaits_async_fetch"
	KindBytesReadyToProc   Kind = "bytes_ready_to_process"
	KindBytesProcessed     Kind = "bytes_processed"
	KindUnloaded           Kind = "unloaded"
	KindBytesFetchFailed   Kind = "bytes_fetching_failed"
	KindBytesProcessFailed Kind = "bytes_processing_failed"
	KindAwaitsStoring      Kind = "awaits_storing"
	KindAwaitsAsyncStore   Kind = "awaits_async_store"
	KindBytesReadyToStore  Kind = "bytes_ready_to_store"
	KindBytesStored        Kind = "bytes_stored"
	KindBytesStoringFailed Kind = "bytes_storing_failed"
)

// Event bundles a handle, its transition kind, and its path.
type Event struct {
	Handle handle.Handle
	Kind   Kind
	Path   assetpath.AssetPath
}

// Listener receives dispatched events. A send error from a
// ChanListener (or any other failure a listener reports) surfaces as a
// dispatch error but never aborts dispatch to the remaining listeners.
type Listener interface {
	Notify(Event) error
}

// ListenerFunc adapts a plain function to Listener.
type ListenerFunc func(Event) error

func (f ListenerFunc) Notify(e Event) error { return f(e) }

// ChanListener adapts a channel send to Listener: a message-channel
// sender is a valid listener. A full buffered channel (or closed
// channel) surfaces as a dispatch error rather than blocking the
// coordinator.
type ChanListener chan<- Event

func (c ChanListener) Notify(e Event) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errSendOnClosedChannel
		}
	}()
	select {
	case c <- e:
		return nil
	default:
		return errChannelFull
	}
}

var (
	errChannelFull         = chanSendError("events: listener channel is full")
	errSendOnClosedChannel = chanSendError("events: listener channel is closed")
)

type chanSendError string

func (e chanSendError) Error() string { return string(e) }

// BindingID addresses one registered listener; returned by Bind/BindOnce
// and consumed by Unbind.
type BindingID string

func newBindingID() BindingID {
	id, err := shortid.Generate()
	if err != nil {
		// shortid.Generate only fails if its internal worker/seed
		// configuration is invalid, which New never touches; treat it
		// as unreachable rather than threading an error return through
		// every Bind call site.
		glog.Fatalf("events: shortid.Generate: %v", err)
	}
	return BindingID(id)
}

type binding struct {
	id       BindingID
	listener Listener
	once     bool
}

// Bindings is a list of listeners addressed by opaque ids. It is used
// both as the database-wide registry and, attached as a component, as
// the per-asset AssetEventBindings store.
type Bindings struct {
	mu    sync.Mutex
	items []binding
}

func NewBindings() *Bindings { return &Bindings{} }

// Bind registers l and returns an id usable with Unbind.
func (b *Bindings) Bind(l Listener) BindingID {
	b.mu.Lock()
	defer b.mu.Unlock()
	id := newBindingID()
	b.items = append(b.items, binding{id: id, listener: l})
	return id
}

// BindOnce registers l for exactly one dispatch; it is removed
// immediately after.
func (b *Bindings) BindOnce(l Listener) BindingID {
	b.mu.Lock()
	defer b.mu.Unlock()
	id := newBindingID()
	b.items = append(b.items, binding{id: id, listener: l, once: true})
	return id
}

// Unbind removes the listener registered under id, if any.
func (b *Bindings) Unbind(id BindingID) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, item := range b.items {
		if item.id == id {
			b.items = append(b.items[:i], b.items[i+1:]...)
			return
		}
	}
}

// Dispatch notifies every bound listener in registration order,
// removing bind_once listeners after their single dispatch, and
// returns any per-listener errors (e.g. from a full ChanListener).
func (b *Bindings) Dispatch(ev Event) []error {
	b.mu.Lock()
	snapshot := make([]binding, len(b.items))
	copy(snapshot, b.items)
	if hasOnce(snapshot) {
		kept := b.items[:0]
		for _, item := range b.items {
			if !item.once {
				kept = append(kept, item)
			}
		}
		b.items = kept
	}
	b.mu.Unlock()

	var errs []error
	for _, item := range snapshot {
		if err := item.listener.Notify(ev); err != nil {
			errs = append(errs, err)
		}
	}
	return errs
}

// AssetBindings is the per-asset event-bindings component: attached to
// an asset entity, it scopes Bind/BindOnce/Unbind to that one asset
// instead of the whole database. Embedding a pointer keeps Attach/Get
// round-trips cheap and lets database.Database mutate the same
// Bindings value in place.
type AssetBindings struct {
	Bindings *Bindings
}

func hasOnce(items []binding) bool {
	for _, it := range items {
		if it.once {
			return true
		}
	}
	return false
}
