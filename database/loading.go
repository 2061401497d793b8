package database

import (
	"context"

	"github.com/keket-go/keket/loading"
	"github.com/keket-go/keket/storage"
)

// ReportLoadingStatus buckets every live asset by its current phase.
func (db *Database) ReportLoadingStatus() loading.Status {
	return loading.Report(db.store)
}

// Traverse starts a loading.Cursor walking the dependency closure of
// the root entity, for callers that want to stream a
// large compound asset's graph instead of materializing it with
// handle.Handle.TraverseDependencies.
func (db *Database) Traverse(ctx context.Context, root storage.Entity) *loading.Cursor {
	return loading.NewCursor(ctx, db.store, root)
}
