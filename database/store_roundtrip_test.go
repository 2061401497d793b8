package database

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/keket-go/keket/assetpath"
	"github.com/keket-go/keket/fetch"
	"github.com/keket-go/keket/handle"
	"github.com/keket-go/keket/protocol"
	"github.com/keket-go/keket/store"
)

// TestStoreRoundTrip spawns a runtime asset, stores it, maintains to
// flush the write, deletes it, then re-Ensures the same path from the
// persisted file.
func TestStoreRoundTrip(t *testing.T) {
	db := New()
	dir := t.TempDir()

	db.PushFetch(&fetch.File{Root: dir})
	db.PushStore(&store.File{Root: dir})
	db.RegisterProtocol(protocol.Text{})

	path := assetpath.New("text://generated.txt")
	h := db.Spawn(path, protocol.String{Value: "generated content"})

	if _, err := db.StoreAsset(path); err != nil {
		t.Fatal(err)
	}
	// ProduceBytes runs against AwaitsStoring during maintain step 6;
	// attach BytesReadyToStore directly isn't needed since protocol.Text
	// implements Producer and reads the String component itself.
	if err := db.Maintain(); err != nil {
		t.Fatal(err)
	}

	full := filepath.Join(dir, "generated.txt")
	data, err := os.ReadFile(full)
	if err != nil {
		t.Fatalf("expected file to be written: %v", err)
	}
	if string(data) != "generated content" {
		t.Fatalf("expected persisted content %q, got %q", "generated content", string(data))
	}

	h.Delete()
	if h.Exists() {
		t.Fatal("expected entity to be despawned")
	}

	reloaded, err := db.Ensure(path)
	if err != nil {
		t.Fatal(err)
	}
	if !reloaded.IsReadyToUse() {
		t.Fatal("expected re-ensured asset to be ready to use")
	}
	str, ok := handle.Access[protocol.String](reloaded)
	if !ok || str.Value != "generated content" {
		t.Fatalf("expected reloaded content %q, got %q (ok=%v)", "generated content", str.Value, ok)
	}
}
