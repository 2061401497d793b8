package components

import (
	"reflect"

	"github.com/keket-go/keket/assetpath"
	"github.com/keket-go/keket/storage"
)

var pathType = reflect.TypeOf(Path{})

// FindByPath looks up the single live entity whose Path component
// equals p; at most one entity exists per canonical AssetPath. Used by
// database.Find/Ensure and by fetch/store adapters whose background
// completion is keyed by path rather than entity (fetch.Deferred,
// fetch.Future, fetch.Throttled, fetch.Extract, store.Future).
func FindByPath(s *storage.Store, p assetpath.AssetPath) (storage.Entity, bool) {
	for _, e := range s.Query(pathType) {
		v, ok := s.Get(e, pathType)
		if !ok {
			continue
		}
		if v.(Path).Path.Equal(p) {
			return e, true
		}
	}
	return 0, false
}

// EnsureEntityForPath finds the live entity addressed by p, or spawns
// one with Path and AwaitsResolution attached if none exists yet,
// preserving the one-entity-per-path invariant. Shared by
// database.Schedule/BindAsset and by protocol adapters that declare
// dependencies (Bundle, Group, Manifest) and must not duplicate an
// already-live asset.
func EnsureEntityForPath(s *storage.Store, p assetpath.AssetPath) (e storage.Entity, created bool) {
	if existing, ok := FindByPath(s, p); ok {
		return existing, false
	}
	e = s.Spawn()
	s.Attach(e, Path{Path: p})
	s.Attach(e, AwaitsResolution{})
	return e, true
}
