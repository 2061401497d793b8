package database

import (
	"path/filepath"
	"testing"

	"github.com/keket-go/keket/assetpath"
	"github.com/keket-go/keket/components"
	"github.com/keket-go/keket/fetch"
	"github.com/keket-go/keket/handle"
	"github.com/keket-go/keket/protocol"
)

// TestRouterFallbackDispatch routes "text" paths to a Fallback chain
// over AbsoluteFile; the requested path is missing so resolution falls
// through to the fallback candidate, which exists.
func TestRouterFallbackDispatch(t *testing.T) {
	db := New()
	dir := t.TempDir()
	real := writeFile(t, dir, "real.txt", "found via fallback")

	missing := assetpath.New("text://" + filepath.Join(dir, "missing.txt"))
	fallbackCandidate := assetpath.New("text://" + real)

	fb := fetch.NewFallback(fetch.AbsoluteFile{}, fetch.StaticFallbacks(fallbackCandidate))

	var router fetch.Router
	router.Push(10, fetch.ProtocolRule("text"), fb)
	db.PushFetch(&router)
	db.RegisterProtocol(protocol.Text{})

	h, err := db.Ensure(missing)
	if err != nil {
		t.Fatal(err)
	}
	if !h.IsReadyToUse() {
		t.Fatal("expected asset to be ready to use")
	}
	str, ok := handle.Access[protocol.String](h)
	if !ok || str.Value != "found via fallback" {
		t.Fatalf("expected fallback-resolved content, got %q (ok=%v)", str.Value, ok)
	}
}

// TestRouterEqualPriorityPicksFirstRegistered asserts that a Router
// with equal priorities picks the first registered rule on a tie.
func TestRouterEqualPriorityPicksFirstRegistered(t *testing.T) {
	var router fetch.Router
	first := literalFetch{tag: "first"}
	second := literalFetch{tag: "second"}
	alwaysTrue := func(assetpath.AssetPath) bool { return true }

	router.Push(5, alwaysTrue, first)
	router.Push(5, alwaysTrue, second)

	bundle, err := router.LoadBytes(assetpath.New("text://anything"))
	if err != nil {
		t.Fatal(err)
	}
	got := string(bundle[0].(components.BytesReadyToProcess).Bytes)
	if got != "first" {
		t.Fatalf("expected first-registered rule to win a priority tie, got %q", got)
	}
}

type literalFetch struct {
	tag string
}

func (l literalFetch) LoadBytes(assetpath.AssetPath) (fetch.Bundle, error) {
	return fetch.Bundle{components.BytesReadyToProcess{Bytes: []byte(l.tag)}}, nil
}
