package database

import (
	"reflect"

	"github.com/keket-go/keket/assetpath"
	"github.com/keket-go/keket/components"
	"github.com/keket-go/keket/events"
	"github.com/keket-go/keket/handle"
	"github.com/keket-go/keket/storage"
)

// addedKinds maps a phase marker's reflect.Type to the event Kind its
// addition fires: one in-progress or awaiting-storing marker at a time.
var addedKinds = map[reflect.Type]events.Kind{
	awaitsResolutionType:    events.KindAwaitsResolution,
	awaitsAsyncFetchType:    events.KindAwaitsAsyncFetch,
	bytesReadyToProcessType: events.KindBytesReadyToProc,
	awaitsStoringType:       events.KindAwaitsStoring,
	awaitsAsyncStoreType:    events.KindAwaitsAsyncStore,
	bytesReadyToStoreType:   events.KindBytesReadyToStore,
}

// dispatchChangeEvents turns the change set drained at the start of
// this tick into lifecycle events, in change order, notifying both
// database-wide and per-asset bindings for each.
func (db *Database) dispatchChangeEvents(cs storage.ChangeSet) {
	for _, c := range cs.Changes {
		switch c.Kind {
		case storage.Added:
			if kind, ok := addedKinds[c.Type]; ok {
				db.emitForEntity(c.Entity, kind)
			}
		case storage.Removed:
			switch c.Type {
			case bytesReadyToProcessType:
				h := handle.New(c.Entity, db.store)
				if h.Exists() && h.IsReadyToUse() {
					db.emitForEntity(c.Entity, events.KindBytesProcessed)
				}
			case pathType:
				path := c.Value.(components.Path).Path
				db.dispatchBoth(events.Event{Handle: handle.New(c.Entity, db.store), Kind: events.KindUnloaded, Path: path})
			case bytesReadyToStoreType:
				db.emitForEntity(c.Entity, events.KindBytesStored)
			}
		}
	}
}

// emitForEntity looks up the entity's current path (falling back to
// the zero AssetPath if it has already been despawned) and dispatches
// kind to both database-wide and per-asset bindings.
func (db *Database) emitForEntity(e storage.Entity, kind events.Kind) {
	h := handle.New(e, db.store)
	var path assetpath.AssetPath
	if p, ok := h.Path(); ok {
		path = p.Path
	}
	db.dispatchBoth(events.Event{Handle: h, Kind: kind, Path: path})
}
