package fetch

import (
	"errors"
	"testing"

	"github.com/keket-go/keket/assetpath"
	"github.com/keket-go/keket/components"
	"github.com/keket-go/keket/storage"
)

func TestRouterPicksHighestPriorityMatch(t *testing.T) {
	var r Router
	r.Push(0, ProtocolRule("bytes"), literalFetch{bundle: Bundle{components.BytesReadyToProcess{Bytes: []byte("low")}}})
	r.Push(10, PathPrefixRule("memory/"), literalFetch{bundle: Bundle{components.BytesReadyToProcess{Bytes: []byte("high")}}})

	bundle, err := r.LoadBytes(assetpath.New("bytes://memory/trash.bin"))
	if err != nil {
		t.Fatal(err)
	}
	got := bundle[0].(components.BytesReadyToProcess).Bytes
	if string(got) != "high" {
		t.Fatalf("expected the higher-priority rule to win, got %q", got)
	}
}

func TestRouterEqualPriorityKeepsRegistrationOrder(t *testing.T) {
	var r Router
	r.Push(5, ProtocolRule("text"), literalFetch{bundle: Bundle{components.BytesReadyToProcess{Bytes: []byte("first")}}})
	r.Push(5, ProtocolRule("text"), literalFetch{bundle: Bundle{components.BytesReadyToProcess{Bytes: []byte("second")}}})

	bundle, err := r.LoadBytes(assetpath.New("text://a.txt"))
	if err != nil {
		t.Fatal(err)
	}
	if string(bundle[0].(components.BytesReadyToProcess).Bytes) != "first" {
		t.Fatal("expected the first-registered rule to win on a priority tie")
	}
}

func TestRouterNoMatch(t *testing.T) {
	var r Router
	r.Push(0, ProtocolRule("text"), literalFetch{})
	if _, err := r.LoadBytes(assetpath.New("bytes://x.bin")); err == nil {
		t.Fatal("expected error when no rule matches")
	}
}

func TestRewriteAppliesFuncBeforeDelegating(t *testing.T) {
	var seen assetpath.AssetPath
	inner := fetchFunc(func(p assetpath.AssetPath) (Bundle, error) {
		seen = p
		return Bundle{components.BytesReadyToProcess{Bytes: []byte(p.Path())}}, nil
	})
	rw := NewRewrite(inner, func(p assetpath.AssetPath) assetpath.AssetPath {
		return assetpath.FromParts(p.Protocol(), p.PathWithoutExtension()+".v2"+"."+p.Extension(), p.Meta())
	})

	if _, err := rw.LoadBytes(assetpath.New("text://asset.png")); err != nil {
		t.Fatal(err)
	}
	if seen.Path() != "asset.v2.png" {
		t.Fatalf("expected rewritten path, got %q", seen.Path())
	}
}

func TestFallbackTriesNextOnError(t *testing.T) {
	attempts := []string{}
	inner := fetchFunc(func(p assetpath.AssetPath) (Bundle, error) {
		attempts = append(attempts, p.Path())
		if p.Path() == "c.txt" {
			return Bundle{components.BytesReadyToProcess{Bytes: []byte("ok")}}, nil
		}
		return nil, errors.New("missing")
	})
	fb := NewFallback(inner, StaticFallbacks(
		assetpath.New("text://b.txt"),
		assetpath.New("text://c.txt"),
	))

	bundle, err := fb.LoadBytes(assetpath.New("text://a.txt"))
	if err != nil {
		t.Fatal(err)
	}
	if string(bundle[0].(components.BytesReadyToProcess).Bytes) != "ok" {
		t.Fatal("expected successful fallback result")
	}
	if len(attempts) != 3 {
		t.Fatalf("expected 3 attempts, got %v", attempts)
	}
}

func TestFallbackExhausted(t *testing.T) {
	inner := fetchFunc(func(assetpath.AssetPath) (Bundle, error) { return nil, errors.New("nope") })
	fb := NewFallback(inner, StaticFallbacks())
	if _, err := fb.LoadBytes(assetpath.New("text://a.txt")); err == nil {
		t.Fatal("expected exhausted error")
	}
}

func TestExtractWaitsForSourceReadiness(t *testing.T) {
	s := storage.New()
	srcPath := assetpath.New("bundle://pack.bin")
	srcEntity := s.Spawn()
	s.Attach(srcEntity, components.Path{Path: srcPath})
	s.Attach(srcEntity, components.AwaitsResolution{})

	ready := false
	x := NewExtract(srcPath, func(st *storage.Store, source storage.Entity) (Bundle, bool, error) {
		if !ready {
			return nil, false, nil
		}
		return Bundle{components.BytesReadyToProcess{Bytes: []byte("mined")}}, true, nil
	})

	targetPath := assetpath.New("text://mined.txt")
	target := s.Spawn()
	s.Attach(target, components.Path{Path: targetPath})
	bundle, _ := x.LoadBytes(targetPath)
	for _, c := range bundle {
		s.Attach(target, c)
	}

	x.Maintain(s)
	if !s.Has(target, awaitsExtractionType) {
		t.Fatal("expected still waiting while source not ready")
	}

	ready = true
	x.Maintain(s)
	if s.Has(target, awaitsExtractionType) {
		t.Fatal("expected extraction marker cleared once source ready")
	}
	v, ok := s.Get(target, bytesReadyToProcessType)
	if !ok || string(v.(components.BytesReadyToProcess).Bytes) != "mined" {
		t.Fatalf("unexpected mined result: %v %v", v, ok)
	}
}

type fetchFunc func(assetpath.AssetPath) (Bundle, error)

func (f fetchFunc) LoadBytes(p assetpath.AssetPath) (Bundle, error) { return f(p) }
