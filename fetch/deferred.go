package fetch

import (
	"reflect"
	"sync"

	"github.com/keket-go/keket/assetpath"
	"github.com/keket-go/keket/components"
	"github.com/keket-go/keket/internal/xsync"
	"github.com/keket-go/keket/storage"
)

// deferredResult is one completed background job, keyed by path since
// LoadBytes receives only the path, not the entity it is loading for.
type deferredResult struct {
	path   assetpath.AssetPath
	bundle Bundle
	err    error
}

// Deferred wraps another Fetch, running it on a bounded pool of worker
// goroutines. LoadBytes enqueues the job and returns AwaitsAsyncFetch
// immediately; Maintain polls completed jobs and attaches their bundle
// to the matching entity, looked up by path. The worker-count bound is
// enforced by internal/xsync.DynSemaphore.
type Deferred struct {
	Inner Fetch

	sema    *xsync.DynSemaphore
	mu      sync.Mutex
	results []deferredResult
}

// NewDeferred builds a Deferred adapter with workers concurrent
// in-flight jobs.
func NewDeferred(inner Fetch, workers int) *Deferred {
	if workers < 1 {
		workers = 1
	}
	return &Deferred{Inner: inner, sema: xsync.NewDynSemaphore(workers)}
}

// LoadBytes starts the real fetch on a worker goroutine and returns an
// AwaitsAsyncFetch marker immediately.
func (d *Deferred) LoadBytes(path assetpath.AssetPath) (Bundle, error) {
	go func() {
		d.sema.Acquire()
		defer d.sema.Release()
		bundle, err := d.Inner.LoadBytes(path)
		d.mu.Lock()
		d.results = append(d.results, deferredResult{path: path, bundle: bundle, err: err})
		d.mu.Unlock()
	}()
	return Bundle{components.AwaitsAsyncFetch{}}, nil
}

var awaitsAsyncFetchType = reflect.TypeOf(components.AwaitsAsyncFetch{})

// Maintain drains completed jobs, replacing AwaitsAsyncFetch on the
// matching entity with the job's bundle. A job whose entity was
// unloaded mid-flight (or whose path no longer resolves) is silently
// dropped rather than surfaced as a failure.
func (d *Deferred) Maintain(s *storage.Store) {
	d.mu.Lock()
	done := d.results
	d.results = nil
	d.mu.Unlock()

	for _, r := range done {
		e, ok := components.FindByPath(s, r.path)
		if !ok || !s.Has(e, awaitsAsyncFetchType) {
			continue
		}
		s.Detach(e, awaitsAsyncFetchType)
		if r.err != nil {
			s.Attach(e, FailedFetch{Err: r.err})
			continue
		}
		for _, c := range r.bundle {
			s.Attach(e, c)
		}
	}
}

// FailedFetch is attached by async adapters (Deferred, Future) when the
// background job errors, so database.maintain can turn it into a
// BytesFetchingFailed event and apply the allow_asset_progression_failures
// policy.
type FailedFetch struct {
	Err error
}
