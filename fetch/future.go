package fetch

import (
	"sync"

	"github.com/keket-go/keket/assetpath"
	"github.com/keket-go/keket/components"
	"github.com/keket-go/keket/storage"
)

// FuturePoller is polled once per Maintain tick without blocking. It
// reports ready=false until the job completes, mirroring a no-op waker
// future: progress is driven entirely by repeated polling rather than a
// callback, since progress here is pull-based.
type FuturePoller interface {
	Poll() (bundle Bundle, ready bool, err error)
}

// FuturePollerFunc adapts a plain function to FuturePoller.
type FuturePollerFunc func() (Bundle, bool, error)

func (f FuturePollerFunc) Poll() (Bundle, bool, error) { return f() }

// FutureFetch builds a FuturePoller for a given path each time
// Future.LoadBytes is called for it.
type FutureFetch interface {
	StartFuture(path assetpath.AssetPath) FuturePoller
}

type pendingFuture struct {
	path   assetpath.AssetPath
	poller FuturePoller
}

// Future wraps a FutureFetch, polling each in-flight future once per
// Maintain tick from the single coordinator goroutine — no worker
// goroutines are spawned, unlike Deferred.
type Future struct {
	Source FutureFetch

	mu      sync.Mutex
	pending []pendingFuture
}

func NewFuture(source FutureFetch) *Future {
	return &Future{Source: source}
}

func (f *Future) LoadBytes(path assetpath.AssetPath) (Bundle, error) {
	poller := f.Source.StartFuture(path)
	f.mu.Lock()
	f.pending = append(f.pending, pendingFuture{path: path, poller: poller})
	f.mu.Unlock()
	return Bundle{components.AwaitsAsyncFetch{}}, nil
}

// Maintain polls every pending future once. Ready futures are removed
// from the pending set and their result attached to the matching
// entity, looked up by path.
func (f *Future) Maintain(s *storage.Store) {
	f.mu.Lock()
	pending := f.pending
	f.pending = nil
	f.mu.Unlock()

	var stillPending []pendingFuture
	for _, p := range pending {
		bundle, ready, err := p.poller.Poll()
		if !ready {
			stillPending = append(stillPending, p)
			continue
		}
		e, ok := components.FindByPath(s, p.path)
		if !ok || !s.Has(e, awaitsAsyncFetchType) {
			continue
		}
		s.Detach(e, awaitsAsyncFetchType)
		if err != nil {
			s.Attach(e, FailedFetch{Err: err})
			continue
		}
		for _, c := range bundle {
			s.Attach(e, c)
		}
	}

	f.mu.Lock()
	f.pending = append(f.pending, stillPending...)
	f.mu.Unlock()
}
