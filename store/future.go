package store

import (
	"reflect"
	"sync"

	"github.com/keket-go/keket/assetpath"
	"github.com/keket-go/keket/components"
	"github.com/keket-go/keket/storage"
)

// FuturePoller is polled once per Maintain tick, the store-side mirror
// of fetch.FuturePoller: ready=false means try again next tick, no
// blocking.
type FuturePoller interface {
	Poll() (bundle Bundle, ready bool, err error)
}

// FuturePollerFunc adapts a plain function to FuturePoller.
type FuturePollerFunc func() (Bundle, bool, error)

func (f FuturePollerFunc) Poll() (Bundle, bool, error) { return f() }

// FutureStore builds a FuturePoller for a given path each time
// Future.SaveBytes is called for it.
type FutureStore interface {
	StartFuture(path assetpath.AssetPath, data []byte) FuturePoller
}

type pendingFuture struct {
	path   assetpath.AssetPath
	poller FuturePoller
}

// Future wraps a FutureStore, polling each in-flight future once per
// Maintain tick from the single coordinator goroutine.
type Future struct {
	Source FutureStore

	mu      sync.Mutex
	pending []pendingFuture
}

func NewFuture(source FutureStore) *Future {
	return &Future{Source: source}
}

func (f *Future) SaveBytes(path assetpath.AssetPath, data []byte) (Bundle, error) {
	poller := f.Source.StartFuture(path, data)
	f.mu.Lock()
	f.pending = append(f.pending, pendingFuture{path: path, poller: poller})
	f.mu.Unlock()
	return Bundle{components.AwaitsAsyncStore{}}, nil
}

var awaitsAsyncStoreType = reflect.TypeOf(components.AwaitsAsyncStore{})

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
		if !ok {
			continue
		}
		if !s.Has(e, awaitsAsyncStoreType) {
			continue
		}
		s.Detach(e, awaitsAsyncStoreType)
		if err != nil {
			s.Attach(e, Failed{Err: err})
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
