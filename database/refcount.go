package database

import (
	"github.com/keket-go/keket/components"
	"github.com/keket-go/keket/storage"
)

// sweepRefCounts despawns, in this same tick, the entity and its
// dependency closure for any AssetReferenceCounter that changed (Added
// or Updated) and now reads zero.
func (db *Database) sweepRefCounts(cs storage.ChangeSet) {
	changed := make(map[storage.Entity]struct{})
	for _, c := range cs.Changes {
		if c.Type != refCounterType {
			continue
		}
		if c.Kind != storage.Added && c.Kind != storage.Updated {
			continue
		}
		changed[c.Entity] = struct{}{}
	}
	for e := range changed {
		if !db.store.Exists(e) {
			continue
		}
		v, ok := db.store.Get(e, refCounterType)
		if !ok {
			continue
		}
		if v.(components.ReferenceCounter).Count == 0 {
			db.store.DespawnClosure(e)
		}
	}
}
