package fetch

import (
	"reflect"

	"github.com/fsnotify/fsnotify"

	"github.com/keket-go/keket/assetpath"
	"github.com/keket-go/keket/components"
	"github.com/keket-go/keket/keketerr"
	"github.com/keket-go/keket/storage"
)

// HotReload wraps File, watching Root with fsnotify. Maintain drains
// the watcher's event channel without blocking, identifies the
// affected entity by its stored FileInfo.FullPath, strips every
// component except Path and re-attaches AwaitsResolution — forcing a
// full re-fetch while preserving the entity's identity.
type HotReload struct {
	File    *File
	watcher *fsnotify.Watcher
}

// NewHotReload walks root with WalkManifest to seed the initial watch set.
func NewHotReload(root string) (*HotReload, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, keketerr.Wrapf(keketerr.ErrFetchFailure, "hot-reload watcher init: %v", err)
	}
	dirs := map[string]struct{}{root: {}}
	files, err := WalkManifest(root)
	if err == nil {
		for _, f := range files {
			dirs[parentDir(f)] = struct{}{}
		}
	}
	for dir := range dirs {
		_ = watcher.Add(dir)
	}
	return &HotReload{File: &File{Root: root}, watcher: watcher}, nil
}

func parentDir(path string) string {
	for i := len(path) - 1; i >= 0; i-- {
		if path[i] == '/' || path[i] == '\\' {
			return path[:i]
		}
	}
	return "."
}

func (h *HotReload) LoadBytes(path assetpath.AssetPath) (Bundle, error) {
	return h.File.LoadBytes(path)
}

var (
	fileInfoType            = reflect.TypeOf(FileInfo{})
	bytesReadyToProcessType = reflect.TypeOf(components.BytesReadyToProcess{})
	pathType                = reflect.TypeOf(components.Path{})
)

func (h *HotReload) Maintain(s *storage.Store) {
	for {
		select {
		case ev, ok := <-h.watcher.Events:
			if !ok {
				return
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			h.reload(s, ev.Name)
		default:
			return
		}
	}
}

func (h *HotReload) reload(s *storage.Store, fullPath string) {
	for _, e := range s.Query(fileInfoType) {
		v, ok := s.Get(e, fileInfoType)
		if !ok {
			continue
		}
		if v.(FileInfo).FullPath != fullPath {
			continue
		}
		for _, t := range s.Types(e) {
			if t == pathType {
				continue
			}
			s.Detach(e, t)
		}
		s.Attach(e, components.AwaitsResolution{})
	}
}

// Close stops the underlying fsnotify watcher.
func (h *HotReload) Close() error { return h.watcher.Close() }
