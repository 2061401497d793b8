package protocol

import (
	"sync"

	"github.com/keket-go/keket/handle"
	"github.com/keket-go/keket/storage"
)

// FuturePoller is polled once per Maintain tick, matching fetch.Future's
// no-op-waker shape: ready=false means try again next tick.
type FuturePoller interface {
	Poll(s *storage.Store) (ready bool, err error)
}

// FuturePollerFunc adapts a plain function to FuturePoller.
type FuturePollerFunc func(s *storage.Store) (bool, error)

func (f FuturePollerFunc) Poll(s *storage.Store) (bool, error) { return f(s) }

type pendingJob struct {
	handle handle.Handle
	poller FuturePoller
}

// Future is the async protocol adapter: ProcessBytes hands the
// already-stripped bytes to StartProcessing, which returns a
// FuturePoller granted a storage-access handle so it may mutate the
// entity once ready — a shared storage-access handle grants the
// future mutation rights through a single-threaded poll.
type Future struct {
	ProtocolName   string
	StartProcessing func(h handle.Handle, data []byte) FuturePoller

	mu      sync.Mutex
	pending []pendingJob
}

func NewFuture(name string, start func(h handle.Handle, data []byte) FuturePoller) *Future {
	return &Future{ProtocolName: name, StartProcessing: start}
}

func (f *Future) Name() string { return f.ProtocolName }

func (f *Future) ProcessBytes(h handle.Handle, s *storage.Store, data []byte) error {
	poller := f.StartProcessing(h, data)
	f.mu.Lock()
	f.pending = append(f.pending, pendingJob{handle: h, poller: poller})
	f.mu.Unlock()
	return nil
}

// Maintain polls every in-flight job once, from the single coordinator
// goroutine; completed jobs are dropped from the pending set.
func (f *Future) Maintain(s *storage.Store) {
	f.mu.Lock()
	pending := f.pending
	f.pending = nil
	f.mu.Unlock()

	var stillPending []pendingJob
	for _, p := range pending {
		if !s.Exists(p.handle.Entity) {
			continue
		}
		ready, err := p.poller.Poll(s)
		if !ready {
			stillPending = append(stillPending, p)
			continue
		}
		_ = err // the poller is responsible for attaching its own failure marker, if any
	}

	f.mu.Lock()
	f.pending = append(f.pending, stillPending...)
	f.mu.Unlock()
}
