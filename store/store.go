// Package store implements the Store extension point: the
// write-direction mirror of fetch — given a path and bytes, persist
// them. Shape is deliberately symmetric with package fetch
// (Bundle/Stack/Maintainer), down to the bottom-to-top Maintain order
// and top-only SaveBytes dispatch.
/*
 * Copyright (c) 2018-2020, NVIDIA CORPORATION. All rights reserved.
 */
package store

import (
	"github.com/keket-go/keket/assetpath"
	"github.com/keket-go/keket/storage"
)

// Bundle is the set of components a Store attaches to an asset entity
// after SaveBytes runs; it may carry components.AwaitsAsyncStore
// instead of completing synchronously.
type Bundle []interface{}

// Store is the one required method of the extension point.
type Store interface {
	SaveBytes(path assetpath.AssetPath, data []byte) (Bundle, error)
}

// Maintainer is the optional half for adapters with background work
// (future-backed stores).
type Maintainer interface {
	Maintain(s *storage.Store)
}

// Stack is an ordered list of Store adapters; the top is the active
// one the coordinator calls into for SaveBytes, while Maintain runs
// bottom to top over every layer.
type Stack struct {
	layers []Store
}

func (s *Stack) Push(st Store) { s.layers = append(s.layers, st) }

// Top returns the active store, or false if the stack is empty.
func (s *Stack) Top() (Store, bool) {
	if len(s.layers) == 0 {
		return nil, false
	}
	return s.layers[len(s.layers)-1], true
}

func (s *Stack) Len() int { return len(s.layers) }

// MaintainAll calls Maintain on every Maintainer layer, bottom to top.
func (s *Stack) MaintainAll(store *storage.Store) {
	for _, st := range s.layers {
		if m, ok := st.(Maintainer); ok {
			m.Maintain(store)
		}
	}
}

// Failed is attached by async store adapters when the background job
// errors, mirroring fetch.FailedFetch; database.maintain turns it into
// a BytesStoringFailed event under the allow_asset_progression_failures
// policy.
type Failed struct {
	Err error
}
