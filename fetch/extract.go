package fetch

import (
	"reflect"
	"sync"

	"github.com/keket-go/keket/assetpath"
	"github.com/keket-go/keket/components"
	"github.com/keket-go/keket/storage"
)

// ExtractSource records which already-registered source path an
// AwaitsExtractionFromStorage entity will be mined from once that
// source finishes loading.
type ExtractSource struct {
	Path assetpath.AssetPath
}

// Extractor mines bytes (or a full bundle) out of a loaded source
// entity. ready=false means the source has not finished loading yet;
// Extract polls again next tick rather than blocking.
type Extractor func(s *storage.Store, source storage.Entity) (bundle Bundle, ready bool, err error)

var extractSourceType = reflect.TypeOf(ExtractSource{})
var awaitsExtractionType = reflect.TypeOf(components.AwaitsExtractionFromStorage{})

// Extract implements the extraction fetch: LoadBytes records the
// source path and attaches AwaitsExtractionFromStorage; Maintain runs
// Mine once per tick against every entity still waiting, for each
// re-resolving the source entity by path since it may not have existed
// when LoadBytes ran.
type Extract struct {
	Source assetpath.AssetPath
	Mine   Extractor

	mu sync.Mutex
}

func NewExtract(source assetpath.AssetPath, mine Extractor) *Extract {
	return &Extract{Source: source, Mine: mine}
}

func (x *Extract) LoadBytes(_ assetpath.AssetPath) (Bundle, error) {
	return Bundle{
		components.AwaitsExtractionFromStorage{},
		ExtractSource{Path: x.Source},
	}, nil
}

func (x *Extract) Maintain(s *storage.Store) {
	pending := s.Query(awaitsExtractionType, extractSourceType)
	for _, e := range pending {
		v, ok := s.Get(e, extractSourceType)
		if !ok {
			continue
		}
		srcPath := v.(ExtractSource).Path
		srcEntity, ok := components.FindByPath(s, srcPath)
		if !ok {
			continue
		}
		bundle, ready, err := x.Mine(s, srcEntity)
		if !ready {
			continue
		}
		s.Detach(e, awaitsExtractionType)
		s.Detach(e, extractSourceType)
		if err != nil {
			s.Attach(e, FailedFetch{Err: err})
			continue
		}
		for _, c := range bundle {
			s.Attach(e, c)
		}
	}
}
