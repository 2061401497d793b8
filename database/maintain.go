package database

import (
	"reflect"

	"github.com/keket-go/keket/assetpath"
	"github.com/keket-go/keket/components"
	"github.com/keket-go/keket/events"
	"github.com/keket-go/keket/fetch"
	"github.com/keket-go/keket/handle"
	"github.com/keket-go/keket/keketerr"
	"github.com/keket-go/keket/protocol"
	"github.com/keket-go/keket/storage"
	"github.com/keket-go/keket/store"
)

var (
	failedFetchType = reflect.TypeOf(fetch.FailedFetch{})
	failedStoreType = reflect.TypeOf(store.Failed{})
)

// Maintain runs one coordinator tick: drain queued commands, sweep
// reference counts, dispatch change events, let fetches/stores/
// protocols make progress on background work, then resolve any
// entities awaiting a synchronous fetch or store. Error policy: when
// AllowAssetProgressionFailures is false (the default), the first
// per-asset error aborts the tick; when true, each error is converted
// into a failure event and the loop proceeds.
func (db *Database) Maintain() error {
	db.applyCommands()

	cs := db.store.DrainChanges()
	db.sweepRefCounts(cs)
	db.dispatchChangeEvents(cs)

	db.fetches.MaintainAll(db.store)
	if err := db.reapFailedFetches(); err != nil {
		return err
	}

	db.stores.MaintainAll(db.store)
	if err := db.reapFailedStores(); err != nil {
		return err
	}

	if err := db.maintainProtocols(); err != nil {
		return err
	}

	if err := db.resolveAwaitsResolution(); err != nil {
		return err
	}

	if err := db.resolveBytesReadyToStore(); err != nil {
		return err
	}

	return nil
}

// applyCommands drains the command queue and applies each mutator to
// storage.
func (db *Database) applyCommands() {
	for _, cmd := range db.commands.drain() {
		cmd(db.store)
	}
}

// reapFailedFetches converts every fetch.FailedFetch marker (attached by
// Deferred/Future/Throttled/Extract when their background job errors)
// into a BytesFetchingFailed event.
func (db *Database) reapFailedFetches() error {
	for _, e := range db.store.Query(failedFetchType) {
		v, _ := db.store.Detach(e, failedFetchType)
		failed := v.(fetch.FailedFetch)
		path, _ := pathOf(db.store, e)
		db.dispatchBoth(events.Event{Handle: handle.New(e, db.store), Kind: events.KindBytesFetchFailed, Path: path})
		if !db.AllowAssetProgressionFailures {
			return keketerr.Wrapf(keketerr.ErrFetchFailure, "async fetch %q: %v", path, failed.Err)
		}
	}
	return nil
}

// reapFailedStores is the store-side mirror of reapFailedFetches.
func (db *Database) reapFailedStores() error {
	for _, e := range db.store.Query(failedStoreType) {
		v, _ := db.store.Detach(e, failedStoreType)
		failed := v.(store.Failed)
		path, _ := pathOf(db.store, e)
		db.dispatchBoth(events.Event{Handle: handle.New(e, db.store), Kind: events.KindBytesStoringFailed, Path: path})
		if !db.AllowAssetProgressionFailures {
			return keketerr.Wrapf(keketerr.ErrStoreFailure, "async store %q: %v", path, failed.Err)
		}
	}
	return nil
}

// maintainProtocols runs, for each protocol in registration order, its
// Maintain, then processes every pending BytesReadyToProcess entity of
// its scheme, then produces bytes for every pending AwaitsStoring
// entity of its scheme.
func (db *Database) maintainProtocols() error {
	for _, proto := range db.protocols.All() {
		if m, ok := proto.(protocol.Maintainer); ok {
			m.Maintain(db.store)
		}

		for _, e := range db.entitiesForProtocol(proto.Name(), bytesReadyToProcessType) {
			path, _ := pathOf(db.store, e)
			h := handle.New(e, db.store)
			if err := db.processAssetBytes(h, path, proto); err != nil {
				if !db.AllowAssetProgressionFailures {
					return keketerr.Wrapf(keketerr.ErrProcessingFailure, "process %q: %v", path, err)
				}
			}
		}

		for _, e := range db.entitiesForProtocol(proto.Name(), awaitsStoringType) {
			path, _ := pathOf(db.store, e)
			h := handle.New(e, db.store)
			if err := db.produceAssetBytes(h, path, proto); err != nil {
				if !db.AllowAssetProgressionFailures {
					return keketerr.Wrapf(keketerr.ErrProduceFailure, "produce %q: %v", path, err)
				}
			}
		}
	}
	return nil
}

// entitiesForProtocol returns every live entity carrying marker that
// also carries a Path whose scheme equals name.
func (db *Database) entitiesForProtocol(name string, marker reflect.Type) []storage.Entity {
	var out []storage.Entity
	for _, e := range db.store.Query(pathType, marker) {
		path, ok := pathOf(db.store, e)
		if ok && path.Protocol() == name {
			out = append(out, e)
		}
	}
	return out
}

// resolveAwaitsResolution gets bytes for every entity awaiting
// resolution from the top fetch, synchronously.
func (db *Database) resolveAwaitsResolution() error {
	pending := db.store.Query(awaitsResolutionType)
	if len(pending) == 0 {
		return nil
	}
	top, ok := db.fetches.Top()
	if !ok {
		return keketerr.Wrap(keketerr.ErrNoFetchOnStack, "maintain: awaits-resolution entities pending")
	}
	for _, e := range pending {
		path, ok := pathOf(db.store, e)
		if !ok {
			db.store.Detach(e, awaitsResolutionType)
			continue
		}
		db.store.Detach(e, awaitsResolutionType)
		bundle, err := top.LoadBytes(path)
		if err != nil {
			db.dispatchBoth(events.Event{Handle: handle.New(e, db.store), Kind: events.KindBytesFetchFailed, Path: path})
			if !db.AllowAssetProgressionFailures {
				return keketerr.Wrapf(keketerr.ErrFetchFailure, "maintain fetch %q: %v", path, err)
			}
			continue
		}
		for _, c := range bundle {
			db.store.Attach(e, c)
		}
	}
	return nil
}

// resolveBytesReadyToStore persists every entity's produced bytes
// through the top store.
func (db *Database) resolveBytesReadyToStore() error {
	pending := db.store.Query(bytesReadyToStoreType)
	if len(pending) == 0 {
		return nil
	}
	top, ok := db.stores.Top()
	if !ok {
		return keketerr.Wrap(keketerr.ErrNoStoreOnStack, "maintain: bytes-ready-to-store entities pending")
	}
	for _, e := range pending {
		path, ok := pathOf(db.store, e)
		if !ok {
			db.store.Detach(e, bytesReadyToStoreType)
			continue
		}
		v, _ := db.store.Detach(e, bytesReadyToStoreType)
		data := v.(components.BytesReadyToStore).Bytes
		bundle, err := top.SaveBytes(path, data)
		if err != nil {
			db.dispatchBoth(events.Event{Handle: handle.New(e, db.store), Kind: events.KindBytesStoringFailed, Path: path})
			if !db.AllowAssetProgressionFailures {
				return keketerr.Wrapf(keketerr.ErrStoreFailure, "maintain store %q: %v", path, err)
			}
			continue
		}
		for _, c := range bundle {
			db.store.Attach(e, c)
		}
	}
	return nil
}

func pathOf(s *storage.Store, e storage.Entity) (assetpath.AssetPath, bool) {
	v, ok := s.Get(e, pathType)
	if !ok {
		return assetpath.AssetPath{}, false
	}
	return v.(components.Path).Path, true
}
