package database

import (
	"container/heap"
	"reflect"
	"time"

	"github.com/keket-go/keket/assetpath"
	"github.com/keket-go/keket/components"
	"github.com/keket-go/keket/handle"
)

// AccessTime is an optional diagnostic component callers may attach
// (directly or via Touch) to mark when an asset was last used;
// EvictIdle only reads it, and assets without it are treated as oldest
// and evicted first.
type AccessTime struct {
	At time.Time
}

var accessTimeType = reflect.TypeOf(AccessTime{})

// Touch stamps the entity addressed by path with the current access
// time. Callers that want EvictIdle to respect real usage recency call
// this on every Ensure/access; it is not invoked automatically since
// Unload/DereferenceOrUnload must behave identically whether or not
// eviction is ever used.
func (db *Database) Touch(path assetpath.AssetPath, now time.Time) {
	e, ok := components.FindByPath(db.store, path)
	if !ok {
		return
	}
	db.store.Attach(e, AccessTime{At: now})
}

// evictCandidate is one zero-refcount, ready-to-use asset eligible for
// EvictIdle, ordered oldest-access-first — grounded on lru/lru.go's
// minHeap keyed by LOM.Atime() via container/heap, generalized here
// from on-disk object size to an arbitrary caller-supplied byte cost.
type evictCandidate struct {
	path assetpath.AssetPath
	h    handle.Handle
	at   time.Time
	cost int64
}

type evictHeap []evictCandidate

func (h evictHeap) Len() int            { return len(h) }
func (h evictHeap) Less(i, j int) bool  { return h[i].at.Before(h[j].at) }
func (h evictHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *evictHeap) Push(x interface{}) { *h = append(*h, x.(evictCandidate)) }
func (h *evictHeap) Pop() interface{} {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

// CostFunc reports the byte cost of an asset, used by EvictIdle to
// decide how much to reclaim. A nil CostFunc treats every asset as
// cost 1 (eviction then just bounds the live asset count).
type CostFunc func(h handle.Handle) int64

// EvictIdle despawns zero-refcount, ready-to-use assets oldest-access
// first until the total cost reported by costFn is at or under budget,
// or no eligible candidates remain. This is a best-effort helper; the
// Unload/DereferenceOrUnload operations behave exactly the same
// regardless of whether EvictIdle is ever called (see DESIGN.md for
// the tradeoff).
func (db *Database) EvictIdle(budget int64, costFn CostFunc) []assetpath.AssetPath {
	if costFn == nil {
		costFn = func(handle.Handle) int64 { return 1 }
	}

	var total int64
	h := &evictHeap{}
	heap.Init(h)

	for _, e := range db.store.Query(pathType) {
		hd := handle.New(e, db.store)
		if !hd.IsReadyToUse() {
			continue
		}
		if v, ok := db.store.Get(e, refCounterType); ok && v.(components.ReferenceCounter).Count > 0 {
			continue
		}
		path, _ := pathOf(db.store, e)
		cost := costFn(hd)
		total += cost

		at := time.Time{}
		if v, ok := db.store.Get(e, accessTimeType); ok {
			at = v.(AccessTime).At
		}
		heap.Push(h, evictCandidate{path: path, h: hd, at: at, cost: cost})
	}

	var evicted []assetpath.AssetPath
	for total > budget && h.Len() > 0 {
		c := heap.Pop(h).(evictCandidate)
		db.Unload(c.path)
		total -= c.cost
		evicted = append(evicted, c.path)
	}
	return evicted
}
