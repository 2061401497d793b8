// Package assetpath implements AssetPath, the canonical URI identifying
// an asset: protocol://path?meta.
/*
 * Copyright (c) 2018-2020, NVIDIA CORPORATION. All rights reserved.
 */
package assetpath

import "strings"

const (
	schemeSepa = "://"
	metaSepa   = "?"
	itemSepa   = "&"
	kvSepa     = "="
)

// AssetPath is the immutable, cheaply-clonable identity of an asset.
// Equality and hashing are defined over its canonical string form.
type AssetPath struct {
	protocol string
	path     string
	meta     string
}

// New parses s into an AssetPath. It never fails on well-formed UTF-8:
// a missing "://" yields an empty protocol and treats everything up to
// the first "?" as path; a missing "?" yields an empty meta.
func New(s string) AssetPath {
	protocol, rest := "", s
	if idx := strings.Index(s, schemeSepa); idx >= 0 {
		protocol, rest = s[:idx], s[idx+len(schemeSepa):]
	}
	path, meta := rest, ""
	if idx := strings.Index(rest, metaSepa); idx >= 0 {
		path, meta = rest[:idx], rest[idx+len(metaSepa):]
	}
	return AssetPath{protocol: protocol, path: path, meta: meta}
}

// FromParts builds an AssetPath from its three components directly,
// without re-parsing a canonical string.
func FromParts(protocol, path, meta string) AssetPath {
	return AssetPath{protocol: protocol, path: path, meta: meta}
}

func (p AssetPath) Protocol() string { return p.protocol }
func (p AssetPath) Path() string     { return p.path }
func (p AssetPath) Meta() string     { return p.meta }

// String returns the canonical form, inserting separators only where
// the corresponding part is non-empty.
func (p AssetPath) String() string {
	var b strings.Builder
	if p.protocol != "" {
		b.WriteString(p.protocol)
		b.WriteString(schemeSepa)
	}
	b.WriteString(p.path)
	if p.meta != "" {
		b.WriteString(metaSepa)
		b.WriteString(p.meta)
	}
	return b.String()
}

// MarshalText/UnmarshalText make AssetPath serialize as its canonical
// string, e.g. when embedded in a Reference or a JSON payload.
func (p AssetPath) MarshalText() ([]byte, error) { return []byte(p.String()), nil }

func (p *AssetPath) UnmarshalText(b []byte) error {
	*p = New(string(b))
	return nil
}

// Equal compares canonical strings verbatim.
func (p AssetPath) Equal(other AssetPath) bool { return p.String() == other.String() }

// Parts splits Path on '/' or '\', matching either separator so the
// same AssetPath round-trips across POSIX and Windows back-ends.
func (p AssetPath) Parts() []string {
	return strings.FieldsFunc(p.path, func(r rune) bool { return r == '/' || r == '\\' })
}

// Extension returns the substring of Path after its last '.', or "" if
// Path has no extension.
func (p AssetPath) Extension() string {
	idx := strings.LastIndex(p.path, ".")
	if idx < 0 {
		return ""
	}
	return p.path[idx+1:]
}

// PathWithoutExtension returns Path with its trailing ".ext" removed,
// if any.
func (p AssetPath) PathWithoutExtension() string {
	idx := strings.LastIndex(p.path, ".")
	if idx < 0 {
		return p.path
	}
	return p.path[:idx]
}

// PathWithMeta returns "path?meta" (or just "path" if meta is empty),
// omitting the protocol.
func (p AssetPath) PathWithMeta() string {
	if p.meta == "" {
		return p.path
	}
	return p.path + metaSepa + p.meta
}

// MetaItem is a single key[=value] entry of the meta query string.
type MetaItem struct {
	Key   string
	Value string
}

// MetaItems splits Meta on '&', then each segment at its first '='.
// A segment without '=' yields Value == "". Empty segments (adjacent
// or leading/trailing '&') are skipped. Each side is whitespace-trimmed.
func (p AssetPath) MetaItems() []MetaItem {
	if p.meta == "" {
		return nil
	}
	segments := strings.Split(p.meta, itemSepa)
	items := make([]MetaItem, 0, len(segments))
	for _, seg := range segments {
		seg = strings.TrimSpace(seg)
		if seg == "" {
			continue
		}
		if idx := strings.Index(seg, kvSepa); idx >= 0 {
			items = append(items, MetaItem{
				Key:   strings.TrimSpace(seg[:idx]),
				Value: strings.TrimSpace(seg[idx+1:]),
			})
		} else {
			items = append(items, MetaItem{Key: seg})
		}
	}
	return items
}

// HasKey reports whether meta contains an item with the given key,
// regardless of its value.
func (p AssetPath) HasKey(key string) bool {
	for _, it := range p.MetaItems() {
		if it.Key == key {
			return true
		}
	}
	return false
}

// HasKeyValue reports whether meta contains an item matching both key
// and value exactly.
func (p AssetPath) HasKeyValue(key, value string) bool {
	for _, it := range p.MetaItems() {
		if it.Key == key && it.Value == value {
			return true
		}
	}
	return false
}
