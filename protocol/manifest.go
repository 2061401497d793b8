package protocol

import (
	"github.com/tidwall/gjson"

	"github.com/keket-go/keket/assetpath"
	"github.com/keket-go/keket/components"
	"github.com/keket-go/keket/handle"
	"github.com/keket-go/keket/storage"
)

// ManifestDoc is the raw-bytes payload component Manifest attaches,
// queried on demand with gjson rather than decoded into a fixed struct
// — a gjson field pull is cheaper than a full jsoniter/encoding/json
// unmarshal when only a handful of fields matter.
type ManifestDoc struct {
	Raw []byte
}

// Get runs a gjson path query against the manifest's raw bytes.
func (m ManifestDoc) Get(path string) gjson.Result {
	return gjson.GetBytes(m.Raw, path)
}

// Manifest is a compound-asset protocol like Group, except members are
// declared by a gjson path query into a JSON document instead of a
// newline-delimited text format.
type Manifest struct {
	ProtocolName string
	// MembersQuery is a gjson path yielding an array of canonical
	// AssetPath strings, e.g. "assets" or "bundle.members.#.path".
	MembersQuery string
}

func NewManifest(name, membersQuery string) *Manifest {
	return &Manifest{ProtocolName: name, MembersQuery: membersQuery}
}

func (m *Manifest) Name() string { return m.ProtocolName }

func (m *Manifest) ProcessBytes(h handle.Handle, s *storage.Store, data []byte) error {
	s.Attach(h.Entity, ManifestDoc{Raw: data})

	for _, member := range gjson.GetBytes(data, m.MembersQuery).Array() {
		path := assetpath.New(member.String())
		depEntity, _ := components.EnsureEntityForPath(s, path)
		s.Relate(h.Entity, depEntity)
	}
	return nil
}
