package protocol

import (
	"github.com/keket-go/keket/assetpath"
	"github.com/keket-go/keket/components"
	"github.com/keket-go/keket/handle"
	"github.com/keket-go/keket/storage"
)

// BundleResult is what a BundleProcessor returns: the components to
// attach to the processed entity plus the paths of any assets it
// depends on.
type BundleResult struct {
	Components []interface{}
	Depends    []assetpath.AssetPath
}

// BundleProcessor decodes raw bytes into a BundleResult.
type BundleProcessor func(data []byte) (BundleResult, error)

// Bundle is the compound-asset protocol adapter: Processor decodes the
// bytes, the coordinator-facing ProcessBytes then attaches the
// returned components and, for each declared dependency path, either
// relates to an already-live entity or spawns a new one with
// AwaitsResolution.
type Bundle struct {
	ProtocolName string
	Processor    BundleProcessor
}

func NewBundle(name string, processor BundleProcessor) *Bundle {
	return &Bundle{ProtocolName: name, Processor: processor}
}

func (b *Bundle) Name() string { return b.ProtocolName }

func (b *Bundle) ProcessBytes(h handle.Handle, s *storage.Store, data []byte) error {
	result, err := b.Processor(data)
	if err != nil {
		return err
	}
	for _, c := range result.Components {
		s.Attach(h.Entity, c)
	}
	for _, dep := range result.Depends {
		depEntity, _ := components.EnsureEntityForPath(s, dep)
		s.Relate(h.Entity, depEntity)
	}
	return nil
}
