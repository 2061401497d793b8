package fetch

import (
	"testing"
	"time"

	"github.com/keket-go/keket/assetpath"
	"github.com/keket-go/keket/components"
	"github.com/keket-go/keket/storage"
)

func TestThrottledRespectsBurstThenRefills(t *testing.T) {
	s := storage.New()
	paths := []assetpath.AssetPath{
		assetpath.New("text://a.txt"),
		assetpath.New("text://b.txt"),
		assetpath.New("text://c.txt"),
	}
	entities := make([]storage.Entity, len(paths))
	for i, p := range paths {
		entities[i] = s.Spawn()
		s.Attach(entities[i], components.Path{Path: p})
	}

	th := NewThrottled(literalFetch{bundle: Bundle{components.BytesReadyToProcess{Bytes: []byte("x")}}}, 1000, 2)
	for i, p := range paths {
		bundle, err := th.LoadBytes(p)
		if err != nil {
			t.Fatal(err)
		}
		for _, c := range bundle {
			s.Attach(entities[i], c)
		}
	}

	th.Maintain(s)
	ready := 0
	for _, e := range entities {
		if !s.Has(e, awaitsAsyncFetchType) {
			ready++
		}
	}
	if ready < 2 {
		t.Fatalf("expected burst of at least 2 to clear immediately, got %d", ready)
	}

	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		allDone := true
		for _, e := range entities {
			if s.Has(e, awaitsAsyncFetchType) {
				allDone = false
			}
		}
		if allDone {
			return
		}
		th.Maintain(s)
		time.Sleep(time.Millisecond)
	}
	t.Fatal("expected all entities to eventually clear their AwaitsAsyncFetch marker")
}
