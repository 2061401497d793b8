package database

import (
	"reflect"

	"github.com/keket-go/keket/assetpath"
	"github.com/keket-go/keket/components"
	"github.com/keket-go/keket/events"
	"github.com/keket-go/keket/handle"
	"github.com/keket-go/keket/keketerr"
	"github.com/keket-go/keket/protocol"
	"github.com/keket-go/keket/storage"
)

var (
	pathType                = reflect.TypeOf(components.Path{})
	awaitsResolutionType    = reflect.TypeOf(components.AwaitsResolution{})
	awaitsAsyncFetchType    = reflect.TypeOf(components.AwaitsAsyncFetch{})
	bytesReadyToProcessType = reflect.TypeOf(components.BytesReadyToProcess{})
	awaitsStoringType       = reflect.TypeOf(components.AwaitsStoring{})
	awaitsAsyncStoreType    = reflect.TypeOf(components.AwaitsAsyncStore{})
	bytesReadyToStoreType   = reflect.TypeOf(components.BytesReadyToStore{})
	refCounterType          = reflect.TypeOf(components.ReferenceCounter{})
	assetBindingsType       = reflect.TypeOf(events.AssetBindings{})
)

// Find looks up the live entity addressed by path, if any.
func (db *Database) Find(path assetpath.AssetPath) (handle.Handle, bool) {
	e, ok := components.FindByPath(db.store, path)
	if !ok {
		return handle.Handle{}, false
	}
	return handle.New(e, db.store), true
}

// Schedule spawns path with AwaitsResolution and returns immediately;
// loading happens on the next Maintain tick.
func (db *Database) Schedule(path assetpath.AssetPath) handle.Handle {
	e, _ := components.EnsureEntityForPath(db.store, path)
	return handle.New(e, db.store)
}

// Spawn creates an already-resolved entity carrying path and every
// component in bundle, for runtime-generated assets that never go
// through Fetch/Protocol.
func (db *Database) Spawn(path assetpath.AssetPath, bundle ...interface{}) handle.Handle {
	e := db.store.Spawn()
	db.store.Attach(e, components.Path{Path: path})
	for _, c := range bundle {
		db.store.Attach(e, c)
	}
	return handle.New(e, db.store)
}

// Ensure returns the existing handle for path, or spawns it, runs the
// top fetch synchronously, and — if bytes arrive synchronously — runs
// the matching protocol immediately. A missing protocol despawns the
// entity and fails; the synchronous path always dispatches
// BytesFetchingFailed before surfacing a fetch error and
// BytesProcessingFailed before surfacing a protocol error.
func (db *Database) Ensure(path assetpath.AssetPath) (handle.Handle, error) {
	if e, ok := components.FindByPath(db.store, path); ok {
		return handle.New(e, db.store), nil
	}

	top, ok := db.fetches.Top()
	if !ok {
		return handle.Handle{}, keketerr.Wrap(keketerr.ErrNoFetchOnStack, "ensure")
	}

	e := db.store.Spawn()
	db.store.Attach(e, components.Path{Path: path})
	h := handle.New(e, db.store)

	bundle, err := top.LoadBytes(path)
	if err != nil {
		db.dispatchBoth(events.Event{Handle: h, Kind: events.KindBytesFetchFailed, Path: path})
		db.store.Despawn(e)
		return handle.Handle{}, keketerr.Wrapf(keketerr.ErrFetchFailure, "ensure %q: %v", path, err)
	}
	for _, c := range bundle {
		db.store.Attach(e, c)
	}

	if !db.store.Has(e, bytesReadyToProcessType) {
		// Fetch returned a progress marker (async/deferred/etc.);
		// processing is deferred to a subsequent Maintain tick.
		return h, nil
	}

	proto, ok := db.protocols.Lookup(path.Protocol())
	if !ok {
		db.store.Despawn(e)
		return handle.Handle{}, keketerr.Wrapf(keketerr.ErrMissingProtocol, "ensure %q: no protocol for scheme %q", path, path.Protocol())
	}
	if err := db.processAssetBytes(h, path, proto); err != nil {
		return handle.Handle{}, keketerr.Wrapf(keketerr.ErrProcessingFailure, "ensure %q: %v", path, err)
	}
	return h, nil
}

// processAssetBytes strips BytesReadyToProcess, reads the bytes, and
// invokes proto.ProcessBytes. On failure it dispatches
// BytesProcessingFailed to any bindings before returning the error.
func (db *Database) processAssetBytes(h handle.Handle, path assetpath.AssetPath, proto protocol.Protocol) error {
	v, ok := db.store.Detach(h.Entity, bytesReadyToProcessType)
	if !ok {
		return nil
	}
	data := v.(components.BytesReadyToProcess).Bytes
	if err := proto.ProcessBytes(h, db.store, data); err != nil {
		db.dispatchBoth(events.Event{Handle: h, Kind: events.KindBytesProcessFailed, Path: path})
		return err
	}
	return nil
}

// produceAssetBytes invokes proto.ProduceBytes (if proto implements
// protocol.Producer) and, on success, strips AwaitsStoring and attaches
// BytesReadyToStore. A protocol without a Producer half simply drops
// AwaitsStoring without producing bytes.
func (db *Database) produceAssetBytes(h handle.Handle, path assetpath.AssetPath, proto protocol.Protocol) error {
	producer, ok := proto.(protocol.Producer)
	if !ok {
		db.store.Detach(h.Entity, awaitsStoringType)
		return nil
	}
	data, err := producer.ProduceBytes(h, db.store)
	if err != nil {
		db.dispatchBoth(events.Event{Handle: h, Kind: events.KindBytesStoringFailed, Path: path})
		return err
	}
	db.store.Detach(h.Entity, awaitsStoringType)
	db.store.Attach(h.Entity, components.BytesReadyToStore{Bytes: data})
	return nil
}

// Unload despawns the entity addressed by path, and its outward
// dependency closure.
func (db *Database) Unload(path assetpath.AssetPath) {
	e, ok := components.FindByPath(db.store, path)
	if !ok {
		return
	}
	db.store.DespawnClosure(e)
}

// DereferenceOrUnload decrements the entity's reference counter,
// despawning it (and its dependency closure) iff the counter reaches
// zero.
func (db *Database) DereferenceOrUnload(path assetpath.AssetPath) {
	e, ok := components.FindByPath(db.store, path)
	if !ok {
		return
	}
	v, ok := db.store.Get(e, refCounterType)
	if !ok {
		return
	}
	rc := v.(components.ReferenceCounter)
	rc.Dec()
	db.store.Attach(e, rc)
	if rc.Count == 0 {
		db.store.DespawnClosure(e)
	}
}

// Reload unloads then re-ensures path.
func (db *Database) Reload(path assetpath.AssetPath) (handle.Handle, error) {
	db.Unload(path)
	return db.Ensure(path)
}

// StoreAsset attaches AwaitsStoring to the entity addressed by path,
// scheduling a produce+save pass on the next Maintain tick. Named
// StoreAsset rather than Store to avoid colliding with the Database's
// own Store() accessor.
func (db *Database) StoreAsset(path assetpath.AssetPath) (handle.Handle, error) {
	e, ok := components.FindByPath(db.store, path)
	if !ok {
		return handle.Handle{}, keketerr.Wrapf(keketerr.ErrLookupFailure, "store %q: no such asset", path)
	}
	db.store.Attach(e, components.AwaitsStoring{})
	return handle.New(e, db.store), nil
}

var inProgressAnywhereTypes = []reflect.Type{
	awaitsResolutionType,
	awaitsAsyncFetchType,
	bytesReadyToProcessType,
	awaitsStoringType,
	awaitsAsyncStoreType,
	bytesReadyToStoreType,
}

// IsBusy reports whether any of the six in-progress markers is present
// anywhere in the store.
func (db *Database) IsBusy() bool {
	for _, t := range inProgressAnywhereTypes {
		if len(db.store.Query(t)) > 0 {
			return true
		}
	}
	return false
}

// BindAsset registers a listener scoped to path alone, spawning path's
// entity (with AwaitsResolution) first if it does not exist yet — the
// same entity-creation shortcut Schedule uses, so binding before
// Ensure is a valid call order.
func (db *Database) BindAsset(path assetpath.AssetPath, l events.Listener) events.BindingID {
	e, _ := components.EnsureEntityForPath(db.store, path)
	b := db.assetBindings(e)
	return b.Bind(l)
}

// BindAssetOnce is BindAsset for a single dispatch.
func (db *Database) BindAssetOnce(path assetpath.AssetPath, l events.Listener) events.BindingID {
	e, _ := components.EnsureEntityForPath(db.store, path)
	b := db.assetBindings(e)
	return b.BindOnce(l)
}

// UnbindAsset removes a per-asset listener by id.
func (db *Database) UnbindAsset(path assetpath.AssetPath, id events.BindingID) {
	e, ok := components.FindByPath(db.store, path)
	if !ok {
		return
	}
	if v, ok := db.store.Get(e, assetBindingsType); ok {
		v.(events.AssetBindings).Bindings.Unbind(id)
	}
}

func (db *Database) assetBindings(e storage.Entity) *events.Bindings {
	if v, ok := db.store.Get(e, assetBindingsType); ok {
		return v.(events.AssetBindings).Bindings
	}
	b := events.NewBindings()
	db.store.Attach(e, events.AssetBindings{Bindings: b})
	return b
}

// dispatchBoth notifies the database-wide bindings and, if the entity
// still carries a per-asset AssetBindings component, those too.
func (db *Database) dispatchBoth(ev events.Event) {
	db.bindings.Dispatch(ev)
	if v, ok := db.store.Get(ev.Handle.Entity, assetBindingsType); ok {
		v.(events.AssetBindings).Bindings.Dispatch(ev)
	}
}
