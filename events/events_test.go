package events

import (
	"errors"
	"testing"

	"github.com/keket-go/keket/assetpath"
)

func TestBindDispatchOrder(t *testing.T) {
	b := NewBindings()
	var order []string
	b.Bind(ListenerFunc(func(e Event) error { order = append(order, "first:"+string(e.Kind)); return nil }))
	b.Bind(ListenerFunc(func(e Event) error { order = append(order, "second:"+string(e.Kind)); return nil }))

	b.Dispatch(Event{Kind: KindBytesProcessed, Path: assetpath.New("text://a.txt")})

	if len(order) != 2 || order[0] != "first:bytes_processed" || order[1] != "second:bytes_processed" {
		t.Fatalf("got %v", order)
	}
}

func TestBindOnceRemovedAfterDispatch(t *testing.T) {
	b := NewBindings()
	count := 0
	b.BindOnce(ListenerFunc(func(Event) error { count++; return nil }))

	b.Dispatch(Event{Kind: KindUnloaded})
	b.Dispatch(Event{Kind: KindUnloaded})

	if count != 1 {
		t.Fatalf("expected bind_once to fire exactly once, got %d", count)
	}
}

func TestUnbind(t *testing.T) {
	b := NewBindings()
	count := 0
	id := b.Bind(ListenerFunc(func(Event) error { count++; return nil }))
	b.Unbind(id)
	b.Dispatch(Event{Kind: KindUnloaded})
	if count != 0 {
		t.Fatalf("expected unbound listener to not fire, got count=%d", count)
	}
}

func TestDispatchCollectsErrorsWithoutAborting(t *testing.T) {
	b := NewBindings()
	var secondCalled bool
	b.Bind(ListenerFunc(func(Event) error { return errors.New("boom") }))
	b.Bind(ListenerFunc(func(Event) error { secondCalled = true; return nil }))

	errs := b.Dispatch(Event{Kind: KindUnloaded})
	if len(errs) != 1 {
		t.Fatalf("expected 1 error, got %v", errs)
	}
	if !secondCalled {
		t.Fatal("expected dispatch to continue past a failing listener")
	}
}

func TestChanListenerFullChannelSurfacesError(t *testing.T) {
	ch := make(chan Event, 1)
	l := ChanListener(ch)
	if err := l.Notify(Event{Kind: KindUnloaded}); err != nil {
		t.Fatalf("expected first send to succeed, got %v", err)
	}
	if err := l.Notify(Event{Kind: KindUnloaded}); err == nil {
		t.Fatal("expected second send on a full channel to error")
	}
}
