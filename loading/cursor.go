package loading

import (
	"context"
	"time"

	"github.com/keket-go/keket/handle"
	"github.com/keket-go/keket/storage"
)

// cursorTTL bounds how long a Cursor waits for a consumer to drain one
// result before giving up and stopping, guarding against an abandoned
// traversal.
const cursorTTL = 10 * time.Minute

// Result is one step of a Cursor's traversal.
type Result struct {
	Handle handle.Handle
	Err    error
}

// Cursor iterates an asset's dependency graph over a channel instead of a materialized slice, so a caller can cancel a
// traversal over a very large compound asset mid-flight. Results
// stream one at a time through resultCh, bounded by a
// context-cancel-or-idle-timeout guard.
type Cursor struct {
	resultCh chan Result
	cancel   context.CancelFunc
	timer    *time.Timer
}

// NewCursor starts a goroutine walking root's transitive dependency
// closure (root included) and returns a Cursor streaming one Result
// per visited entity, in no particular order. The caller must either drain Results() to
// completion or call Stop() to release the underlying goroutine.
func NewCursor(ctx context.Context, s *storage.Store, root storage.Entity) *Cursor {
	ctx, cancel := context.WithCancel(ctx)
	c := &Cursor{
		resultCh: make(chan Result),
		cancel:   cancel,
		timer:    time.NewTimer(cursorTTL),
	}
	go c.run(ctx, s, root)
	return c
}

func (c *Cursor) run(ctx context.Context, s *storage.Store, root storage.Entity) {
	defer close(c.resultCh)
	defer c.timer.Stop()

	for _, e := range s.TransitiveClosure(root) {
		if !s.Exists(e) {
			continue
		}
		res := Result{Handle: handle.New(e, s)}
		select {
		case c.resultCh <- res:
			if !c.timer.Stop() {
				<-c.timer.C
			}
			c.timer.Reset(cursorTTL)
		case <-ctx.Done():
			return
		case <-c.timer.C:
			return
		}
	}
}

// Results returns the channel Cursor traversal results arrive on. It
// is closed once the traversal completes, is cancelled, or times out.
func (c *Cursor) Results() <-chan Result { return c.resultCh }

// Stop cancels the traversal and releases its goroutine. Safe to call
// more than once, and safe to call after the traversal has already
// finished on its own.
func (c *Cursor) Stop() { c.cancel() }
