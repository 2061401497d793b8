package fetch

import (
	"sync"

	"golang.org/x/time/rate"

	"github.com/keket-go/keket/assetpath"
	"github.com/keket-go/keket/components"
	"github.com/keket-go/keket/storage"
)

// Throttled wraps Inner behind a token-bucket rate limiter
// (golang.org/x/time/rate): LoadBytes enqueues the request and returns
// AwaitsAsyncFetch; Maintain drains the queue up to the per-tick budget
// the limiter currently allows, yielding (leaving work in progress) once
// exhausted rather than blocking the coordinator goroutine.
type Throttled struct {
	Inner   Fetch
	limiter *rate.Limiter

	mu    sync.Mutex
	queue []assetpath.AssetPath
}

// NewThrottled allows up to burst immediate requests and refills at
// ratePerSecond thereafter.
func NewThrottled(inner Fetch, ratePerSecond float64, burst int) *Throttled {
	return &Throttled{
		Inner:   inner,
		limiter: rate.NewLimiter(rate.Limit(ratePerSecond), burst),
	}
}

func (t *Throttled) LoadBytes(path assetpath.AssetPath) (Bundle, error) {
	t.mu.Lock()
	t.queue = append(t.queue, path)
	t.mu.Unlock()
	return Bundle{components.AwaitsAsyncFetch{}}, nil
}

func (t *Throttled) Maintain(s *storage.Store) {
	t.mu.Lock()
	queue := t.queue
	t.queue = nil
	t.mu.Unlock()

	var remaining []assetpath.AssetPath
	for i, path := range queue {
		if !t.limiter.Allow() {
			remaining = append(remaining, queue[i:]...)
			break
		}
		e, ok := components.FindByPath(s, path)
		if !ok || !s.Has(e, awaitsAsyncFetchType) {
			continue
		}
		bundle, err := t.Inner.LoadBytes(path)
		s.Detach(e, awaitsAsyncFetchType)
		if err != nil {
			s.Attach(e, FailedFetch{Err: err})
			continue
		}
		for _, c := range bundle {
			s.Attach(e, c)
		}
	}

	if len(remaining) > 0 {
		t.mu.Lock()
		t.queue = append(remaining, t.queue...)
		t.mu.Unlock()
	}
}
