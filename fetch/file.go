package fetch

import (
	"os"
	"path/filepath"

	"github.com/karrick/godirwalk"
	"github.com/pkg/errors"

	"github.com/keket-go/keket/assetpath"
	"github.com/keket-go/keket/components"
	"github.com/keket-go/keket/keketerr"
)

// FileInfo is a diagnostic component File/AbsoluteFile attach alongside
// the bytes, carrying the resolved file-system path and size next to
// the loaded content.
type FileInfo struct {
	FullPath string
	Size     int64
}

// FromFile marks an entity as having been fetched by File/AbsoluteFile.
type FromFile struct{}

// File reads path.Path() relative to Root synchronously. Root is
// joined with filepath.Join, so a Root of "" behaves like AbsoluteFile.
type File struct {
	Root string
}

func (f *File) resolve(path assetpath.AssetPath) string {
	if f.Root == "" {
		return path.Path()
	}
	return filepath.Join(f.Root, path.Path())
}

func (f *File) LoadBytes(path assetpath.AssetPath) (Bundle, error) {
	full := f.resolve(path)
	info, err := os.Stat(full)
	if err != nil {
		return nil, keketerr.Wrapf(keketerr.ErrFetchFailure, "file fetch %q: %v", full, err)
	}
	data, err := os.ReadFile(full)
	if err != nil {
		return nil, keketerr.Wrapf(keketerr.ErrFetchFailure, "file fetch %q: %v", full, err)
	}
	return Bundle{
		components.BytesReadyToProcess{Bytes: data},
		FromFile{},
		FileInfo{FullPath: full, Size: info.Size()},
	}, nil
}

// AbsoluteFile reads path.Path() as an absolute (or cwd-relative) file
// system path, ignoring any configured root. It is File with an empty
// Root, kept as a distinct type so callers' stack configuration reads
// as two separate standard adapters.
type AbsoluteFile struct{}

func (AbsoluteFile) LoadBytes(path assetpath.AssetPath) (Bundle, error) {
	f := File{}
	return f.LoadBytes(path)
}

// WalkManifest lists every regular file under root using godirwalk for
// fast recursive scans. It is used by HotReload to seed its initial
// watch set and by callers that want to pre-register a Group asset's
// member paths instead of hand-authoring one.
func WalkManifest(root string) ([]string, error) {
	var files []string
	err := godirwalk.Walk(root, &godirwalk.Options{
		Callback: func(path string, de *godirwalk.Dirent) error {
			if de.IsDir() {
				return nil
			}
			files = append(files, path)
			return nil
		},
		Unsorted: true,
	})
	if err != nil {
		return nil, errors.Wrapf(err, "walk manifest %q", root)
	}
	return files, nil
}
