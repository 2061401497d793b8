package reference

import (
	"testing"

	"github.com/keket-go/keket/assetpath"
	"github.com/keket-go/keket/components"
	"github.com/keket-go/keket/handle"
	"github.com/keket-go/keket/storage"
)

// fakeResolver spawns (or reuses) one entity per path, mimicking
// database.Database.Ensure's path-uniqueness invariant without pulling
// in the full coordinator.
type fakeResolver struct {
	store  *storage.Store
	byPath map[string]storage.Entity
}

func newFakeResolver() *fakeResolver {
	return &fakeResolver{store: storage.New(), byPath: map[string]storage.Entity{}}
}

func (f *fakeResolver) Ensure(p assetpath.AssetPath) (handle.Handle, error) {
	if e, ok := f.byPath[p.String()]; ok {
		return handle.New(e, f.store), nil
	}
	e := f.store.Spawn()
	f.store.Attach(e, components.Path{Path: p})
	f.byPath[p.String()] = e
	return handle.New(e, f.store), nil
}

func TestReferenceResolveCaches(t *testing.T) {
	r := newFakeResolver()
	ref := New(assetpath.New("text://a.txt"))
	h1, err := ref.Resolve(r)
	if err != nil {
		t.Fatal(err)
	}
	h2, err := ref.Resolve(r)
	if err != nil {
		t.Fatal(err)
	}
	if h1.Entity != h2.Entity {
		t.Fatalf("expected resolve to cache the same entity, got %v vs %v", h1.Entity, h2.Entity)
	}
}

func TestReferenceMarshalUnmarshalLeavesUnresolved(t *testing.T) {
	r := newFakeResolver()
	ref := New(assetpath.New("text://a.txt"))
	if _, err := ref.Resolve(r); err != nil {
		t.Fatal(err)
	}
	b, err := ref.MarshalText()
	if err != nil {
		t.Fatal(err)
	}

	var ref2 Reference
	if err := ref2.UnmarshalText(b); err != nil {
		t.Fatal(err)
	}
	if _, ok := ref2.Handle(); ok {
		t.Fatal("expected unresolved handle after unmarshal")
	}
	if ref2.Path().String() != ref.Path().String() {
		t.Fatalf("path mismatch: %q vs %q", ref2.Path(), ref.Path())
	}
}

func TestSmartReferenceCounting(t *testing.T) {
	r := newFakeResolver()
	path := assetpath.New("text://a.txt")

	sr1, err := NewSmart(r, path)
	if err != nil {
		t.Fatal(err)
	}
	sr2, err := sr1.Clone(r)
	if err != nil {
		t.Fatal(err)
	}
	sr3, err := sr1.Clone(r)
	if err != nil {
		t.Fatal(err)
	}

	if got := sr1.RefCount(); got != 3 {
		t.Fatalf("expected refcount 3, got %d", got)
	}
	if len(r.store.Query()) == 0 {
		t.Fatal("expected at least one entity")
	}

	sr2.Release()
	if got := sr1.RefCount(); got != 2 {
		t.Fatalf("expected refcount 2 after one release, got %d", got)
	}

	sr3.Release()
	sr1.Release()
	if got := sr1.RefCount(); got != 0 {
		t.Fatalf("expected refcount 0, got %d", got)
	}
}
