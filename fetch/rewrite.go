package fetch

import (
	"github.com/keket-go/keket/assetpath"
	"github.com/keket-go/keket/storage"
)

// RewriteFunc maps an incoming path to the one actually fetched, used
// for versioning ("asset.png" -> "asset.v3.png") or localization
// ("strings.json" -> "strings.fr.json").
type RewriteFunc func(path assetpath.AssetPath) assetpath.AssetPath

// Rewrite applies Func to the requested path before delegating to Inner.
type Rewrite struct {
	Inner Fetch
	Func  RewriteFunc
}

func NewRewrite(inner Fetch, fn RewriteFunc) *Rewrite {
	return &Rewrite{Inner: inner, Func: fn}
}

func (r *Rewrite) LoadBytes(path assetpath.AssetPath) (Bundle, error) {
	return r.Inner.LoadBytes(r.Func(path))
}

func (r *Rewrite) Maintain(s *storage.Store) {
	if m, ok := r.Inner.(Maintainer); ok {
		m.Maintain(s)
	}
}
