package database

import (
	"testing"

	"github.com/keket-go/keket/assetpath"
	"github.com/keket-go/keket/fetch"
	"github.com/keket-go/keket/protocol"
	"github.com/keket-go/keket/reference"
)

// TestReferenceCountingDespawn constructs three SmartReference values
// against the same path, asserts the reference counter reads 3, then
// releases all three and asserts
// maintain despawns the entity in the same tick the count reaches
// zero.
func TestReferenceCountingDespawn(t *testing.T) {
	db := New()
	dir := t.TempDir()
	writeFile(t, dir, "a.txt", "alpha")

	db.PushFetch(&fetch.File{Root: dir})
	db.RegisterProtocol(protocol.Text{})

	path := assetpath.New("text://a.txt")

	a, err := reference.NewSmart(db, path)
	if err != nil {
		t.Fatal(err)
	}
	b, err := a.Clone(db)
	if err != nil {
		t.Fatal(err)
	}
	c, err := a.Clone(db)
	if err != nil {
		t.Fatal(err)
	}
	if a.RefCount() != 3 {
		t.Fatalf("expected reference count 3, got %d", a.RefCount())
	}

	h, ok := db.Find(path)
	if !ok {
		t.Fatal("expected entity to exist while referenced")
	}

	a.Release()
	b.Release()
	if err := db.Maintain(); err != nil {
		t.Fatal(err)
	}
	if !h.Exists() {
		t.Fatal("expected entity to survive with a remaining reference")
	}

	c.Release()
	if err := db.Maintain(); err != nil {
		t.Fatal(err)
	}
	if h.Exists() {
		t.Fatal("expected entity to be despawned once the counter reaches zero")
	}
}
