package fetch

import (
	"sort"

	"github.com/keket-go/keket/assetpath"
	"github.com/keket-go/keket/keketerr"
	"github.com/keket-go/keket/storage"
)

// Rule predicates which paths a Router entry accepts.
type Rule func(path assetpath.AssetPath) bool

type routerEntry struct {
	priority int
	rule     Rule
	inner    Fetch
}

// Router holds an ordered-by-priority list of (rule, inner fetch)
// pairs, dispatching to the first matching rule in descending priority
// order. Equal priorities keep registration order, since
// sort.SliceStable preserves Push order on ties.
type Router struct {
	entries []routerEntry
}

// Push registers inner under rule at priority. Higher priority wins;
// ties resolve to whichever was pushed first.
func (r *Router) Push(priority int, rule Rule, inner Fetch) {
	r.entries = append(r.entries, routerEntry{priority: priority, rule: rule, inner: inner})
	sort.SliceStable(r.entries, func(i, j int) bool {
		return r.entries[i].priority > r.entries[j].priority
	})
}

func (r *Router) LoadBytes(path assetpath.AssetPath) (Bundle, error) {
	for _, e := range r.entries {
		if e.rule(path) {
			return e.inner.LoadBytes(path)
		}
	}
	return nil, keketerr.Wrapf(keketerr.ErrNoFetchOnStack, "router: no rule matches %q", path)
}

// Maintain forwards to every registered inner fetch that implements
// Maintainer, in the same descending-priority order LoadBytes tries them.
func (r *Router) Maintain(s *storage.Store) {
	for _, e := range r.entries {
		if m, ok := e.inner.(Maintainer); ok {
			m.Maintain(s)
		}
	}
}

// ProtocolRule matches paths whose AssetPath.Protocol() equals name.
func ProtocolRule(name string) Rule {
	return func(path assetpath.AssetPath) bool { return path.Protocol() == name }
}

// PathPrefixRule matches paths whose AssetPath.Path() starts with prefix.
func PathPrefixRule(prefix string) Rule {
	return func(path assetpath.AssetPath) bool {
		p := path.Path()
		return len(p) >= len(prefix) && p[:len(prefix)] == prefix
	}
}

// MetaKeyRule matches paths whose meta carries key (with any value).
func MetaKeyRule(key string) Rule {
	return func(path assetpath.AssetPath) bool { return path.HasKey(key) }
}

// MetaKeyValueRule matches paths whose meta carries key=value exactly.
func MetaKeyValueRule(key, value string) Rule {
	return func(path assetpath.AssetPath) bool { return path.HasKeyValue(key, value) }
}
