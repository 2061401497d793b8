package fetch

import (
	"archive/zip"
	"io"
	"sync"

	"github.com/keket-go/keket/assetpath"
	"github.com/keket-go/keket/components"
	"github.com/keket-go/keket/keketerr"
)

// FromContainer marks an entity as having been fetched out of a
// container (e.g. a zip archive or an embedded key-value database).
type FromContainer struct{}

// PartialFetch maps a path to bytes inside some container format. A
// single PartialFetch implementation is rarely safe for concurrent
// use (e.g. a zip.Reader shares internal cursors), which is exactly
// why Container exists: it confines the lock discipline so callers
// never need their own.
type PartialFetch interface {
	Part(path string) ([]byte, error)
}

// Container wraps a PartialFetch behind a mutex so callers backed by
// a zip archive, embedded database, or similar single-handle source
// can be shared safely across concurrent LoadBytes calls.
type Container struct {
	mu      sync.Mutex
	partial PartialFetch
}

func NewContainer(partial PartialFetch) *Container {
	return &Container{partial: partial}
}

func (c *Container) LoadBytes(path assetpath.AssetPath) (Bundle, error) {
	c.mu.Lock()
	data, err := c.partial.Part(path.Path())
	c.mu.Unlock()
	if err != nil {
		return nil, keketerr.Wrapf(keketerr.ErrFetchFailure, "container fetch %q: %v", path, err)
	}
	return Bundle{
		components.BytesReadyToProcess{Bytes: data},
		FromContainer{},
	}, nil
}

// ZipPartialFetch is a PartialFetch backed by a zip archive opened
// from a local file. It is intentionally minimal: a production zip
// back-end would add caching and streaming reads, but the
// Container+PartialFetch contract only needs one concrete example.
type ZipPartialFetch struct {
	reader *zip.ReadCloser
	index  map[string]*zip.File
}

func NewZipPartialFetch(archivePath string) (*ZipPartialFetch, error) {
	r, err := zip.OpenReader(archivePath)
	if err != nil {
		return nil, keketerr.Wrapf(keketerr.ErrFetchFailure, "open zip %q: %v", archivePath, err)
	}
	index := make(map[string]*zip.File, len(r.File))
	for _, f := range r.File {
		index[f.Name] = f
	}
	return &ZipPartialFetch{reader: r, index: index}, nil
}

func (z *ZipPartialFetch) Part(path string) ([]byte, error) {
	f, ok := z.index[path]
	if !ok {
		return nil, keketerr.Wrapf(keketerr.ErrFetchFailure, "zip entry %q not found", path)
	}
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

func (z *ZipPartialFetch) Close() error { return z.reader.Close() }
