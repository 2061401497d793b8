package fetch

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/keket-go/keket/assetpath"
	"github.com/keket-go/keket/components"
	"github.com/keket-go/keket/storage"
)

var awaitsResolutionType = reflect.TypeOf(components.AwaitsResolution{})

func TestHotReloadReattachesAwaitsResolutionOnWrite(t *testing.T) {
	dir := t.TempDir()
	full := filepath.Join(dir, "x.txt")
	if err := os.WriteFile(full, []byte("v1"), 0o644); err != nil {
		t.Fatal(err)
	}

	hr, err := NewHotReload(dir)
	if err != nil {
		t.Fatal(err)
	}
	defer hr.Close()

	s := storage.New()
	path := assetpath.New("text://x.txt")
	e := s.Spawn()
	s.Attach(e, components.Path{Path: path})
	bundle, err := hr.LoadBytes(path)
	if err != nil {
		t.Fatal(err)
	}
	for _, c := range bundle {
		s.Attach(e, c)
	}
	s.Detach(e, awaitsAsyncFetchType)
	if s.Has(e, awaitsResolutionType) {
		t.Fatal("entity should not await resolution yet")
	}

	if err := os.WriteFile(full, []byte("v2"), 0o644); err != nil {
		t.Fatal(err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		hr.Maintain(s)
		if s.Has(e, awaitsResolutionType) {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("expected AwaitsResolution re-attached after file write")
}
