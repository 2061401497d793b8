package database

import (
	"testing"
	"time"

	"github.com/keket-go/keket/assetpath"
	"github.com/keket-go/keket/fetch"
	"github.com/keket-go/keket/handle"
	"github.com/keket-go/keket/protocol"
)

// TestHotReloadRoundTrip asserts that an asset backed by HotReload is
// re-fetched in place, preserving its entity identity, once its
// backing file changes on disk.
func TestHotReloadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "live.txt", "version one")

	hr, err := fetch.NewHotReload(dir)
	if err != nil {
		t.Fatal(err)
	}
	defer hr.Close()

	db := New()
	db.PushFetch(hr)
	db.RegisterProtocol(protocol.Text{})

	path := assetpath.New("text://live.txt")
	h, err := db.Ensure(path)
	if err != nil {
		t.Fatal(err)
	}
	str, ok := handle.Access[protocol.String](h)
	if !ok || str.Value != "version one" {
		t.Fatalf("expected initial content, got %q (ok=%v)", str.Value, ok)
	}
	entity := h.Entity

	writeFile(t, dir, "live.txt", "version two")

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if err := db.Maintain(); err != nil {
			t.Fatal(err)
		}
		if h.Entity == entity && h.IsReadyToUse() {
			if str, ok := handle.Access[protocol.String](h); ok && str.Value == "version two" {
				return
			}
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("expected hot-reload to pick up the file change within the deadline")
}
