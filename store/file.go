package store

import (
	"os"
	"path/filepath"

	"github.com/keket-go/keket/assetpath"
	"github.com/keket-go/keket/keketerr"
)

// Into is a diagnostic component File/AbsoluteFile attach alongside a
// successful write, the store-side mirror of fetch.FileInfo.
type Into struct {
	FullPath string
}

// File writes path.Path() relative to Root synchronously, creating
// parent directories as needed.
type File struct {
	Root string
}

func (f *File) resolve(path assetpath.AssetPath) string {
	if f.Root == "" {
		return path.Path()
	}
	return filepath.Join(f.Root, path.Path())
}

func (f *File) SaveBytes(path assetpath.AssetPath, data []byte) (Bundle, error) {
	full := f.resolve(path)
	if dir := filepath.Dir(full); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, keketerr.Wrapf(keketerr.ErrStoreFailure, "file store %q: mkdir: %v", full, err)
		}
	}
	if err := os.WriteFile(full, data, 0o644); err != nil {
		return nil, keketerr.Wrapf(keketerr.ErrStoreFailure, "file store %q: %v", full, err)
	}
	return Bundle{Into{FullPath: full}}, nil
}

// AbsoluteFile writes path.Path() as an absolute (or cwd-relative)
// file system path, ignoring any configured root — File with an empty
// Root, kept as a distinct type so stack configuration reads clearly.
type AbsoluteFile struct{}

func (AbsoluteFile) SaveBytes(path assetpath.AssetPath, data []byte) (Bundle, error) {
	f := File{}
	return f.SaveBytes(path, data)
}
