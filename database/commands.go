package database

import (
	"sync"

	"github.com/keket-go/keket/storage"
)

// Command is a one-shot storage mutator enqueued by external code and
// applied at the start of the next Maintain tick.
type Command func(s *storage.Store)

// CommandQueue is a mutex-guarded slice of pending Commands. A
// buffered-channel variant would work equally well; this shape was
// picked because the queue has no natural bound and a slice needs no
// capacity decision up front (see DESIGN.md).
type CommandQueue struct {
	mu    sync.Mutex
	items []Command
}

func newCommandQueue() *CommandQueue { return &CommandQueue{} }

// Send enqueues cmd. Safe for concurrent use from any goroutine.
func (q *CommandQueue) Send(cmd Command) {
	q.mu.Lock()
	q.items = append(q.items, cmd)
	q.mu.Unlock()
}

// drain removes and returns every pending command, in enqueue order.
func (q *CommandQueue) drain() []Command {
	q.mu.Lock()
	items := q.items
	q.items = nil
	q.mu.Unlock()
	return items
}
