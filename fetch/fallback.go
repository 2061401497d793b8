package fetch

import (
	"github.com/keket-go/keket/assetpath"
	"github.com/keket-go/keket/keketerr"
	"github.com/keket-go/keket/storage"
)

// FallbackPath maps a requested path to the next same-protocol path to
// try when the previous one fails.
type FallbackPath func(requested assetpath.AssetPath, attempt int) (assetpath.AssetPath, bool)

// Fallback delegates to Inner; on error, retries with successive paths
// produced by Next in declaration order until one succeeds or Next
// reports no more candidates.
type Fallback struct {
	Inner Fetch
	Next  FallbackPath
}

func NewFallback(inner Fetch, next FallbackPath) *Fallback {
	return &Fallback{Inner: inner, Next: next}
}

func (f *Fallback) LoadBytes(path assetpath.AssetPath) (Bundle, error) {
	bundle, err := f.Inner.LoadBytes(path)
	if err == nil {
		return bundle, nil
	}
	for attempt := 0; ; attempt++ {
		candidate, ok := f.Next(path, attempt)
		if !ok {
			return nil, keketerr.Wrapf(keketerr.ErrFetchFailure, "fallback exhausted for %q: %v", path, err)
		}
		bundle, fallbackErr := f.Inner.LoadBytes(candidate)
		if fallbackErr == nil {
			return bundle, nil
		}
		err = fallbackErr
	}
}

func (f *Fallback) Maintain(s *storage.Store) {
	if m, ok := f.Inner.(Maintainer); ok {
		m.Maintain(s)
	}
}

// StaticFallbacks builds a FallbackPath that tries paths in order,
// ignoring the originally requested one.
func StaticFallbacks(paths ...assetpath.AssetPath) FallbackPath {
	return func(_ assetpath.AssetPath, attempt int) (assetpath.AssetPath, bool) {
		if attempt >= len(paths) {
			return assetpath.AssetPath{}, false
		}
		return paths[attempt], true
	}
}
