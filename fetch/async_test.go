package fetch

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/keket-go/keket/assetpath"
	"github.com/keket-go/keket/components"
	"github.com/keket-go/keket/storage"
)

type literalFetch struct {
	bundle Bundle
	err    error
}

func (l literalFetch) LoadBytes(assetpath.AssetPath) (Bundle, error) { return l.bundle, l.err }

func TestDeferredCompletesAcrossMaintainTicks(t *testing.T) {
	s := storage.New()
	path := assetpath.New("text://a.txt")
	e := s.Spawn()
	s.Attach(e, components.Path{Path: path})

	d := NewDeferred(literalFetch{bundle: Bundle{components.BytesReadyToProcess{Bytes: []byte("hi")}}}, 2)
	bundle, err := d.LoadBytes(path)
	if err != nil {
		t.Fatal(err)
	}
	for _, c := range bundle {
		s.Attach(e, c)
	}
	if !s.Has(e, awaitsAsyncFetchType) {
		t.Fatal("expected AwaitsAsyncFetch marker immediately")
	}

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		d.Maintain(s)
		if !s.Has(e, awaitsAsyncFetchType) {
			break
		}
		time.Sleep(time.Millisecond)
	}
	if s.Has(e, awaitsAsyncFetchType) {
		t.Fatal("expected marker cleared after background job completes")
	}
	v, ok := s.Get(e, bytesReadyToProcessType)
	if !ok {
		t.Fatal("expected bytes attached")
	}
	if string(v.(components.BytesReadyToProcess).Bytes) != "hi" {
		t.Fatalf("unexpected bytes: %v", v)
	}
}

func TestDeferredPropagatesFailure(t *testing.T) {
	s := storage.New()
	path := assetpath.New("text://bad.txt")
	e := s.Spawn()
	s.Attach(e, components.Path{Path: path})

	d := NewDeferred(literalFetch{err: errors.New("boom")}, 1)
	bundle, _ := d.LoadBytes(path)
	for _, c := range bundle {
		s.Attach(e, c)
	}

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		d.Maintain(s)
		if !s.Has(e, awaitsAsyncFetchType) {
			break
		}
		time.Sleep(time.Millisecond)
	}
	v, ok := s.Get(e, reflect.TypeOf(FailedFetch{}))
	if !ok {
		t.Fatal("expected FailedFetch component")
	}
	if v.(FailedFetch).Err == nil {
		t.Fatal("expected wrapped error")
	}
}

func TestFuturePollsUntilReady(t *testing.T) {
	s := storage.New()
	path := assetpath.New("text://future.txt")
	e := s.Spawn()
	s.Attach(e, components.Path{Path: path})

	calls := 0
	source := futureSourceFunc(func(assetpath.AssetPath) FuturePoller {
		return FuturePollerFunc(func() (Bundle, bool, error) {
			calls++
			if calls < 3 {
				return nil, false, nil
			}
			return Bundle{components.BytesReadyToProcess{Bytes: []byte("ready")}}, true, nil
		})
	})

	f := NewFuture(source)
	bundle, err := f.LoadBytes(path)
	if err != nil {
		t.Fatal(err)
	}
	for _, c := range bundle {
		s.Attach(e, c)
	}

	f.Maintain(s)
	f.Maintain(s)
	if !s.Has(e, awaitsAsyncFetchType) {
		t.Fatal("expected still pending after two polls")
	}
	f.Maintain(s)
	if s.Has(e, awaitsAsyncFetchType) {
		t.Fatal("expected marker cleared on third poll")
	}
	v, ok := s.Get(e, bytesReadyToProcessType)
	if !ok || string(v.(components.BytesReadyToProcess).Bytes) != "ready" {
		t.Fatalf("unexpected result: %v %v", v, ok)
	}
}

type futureSourceFunc func(assetpath.AssetPath) FuturePoller

func (f futureSourceFunc) StartFuture(path assetpath.AssetPath) FuturePoller { return f(path) }
