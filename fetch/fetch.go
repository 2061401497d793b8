// Package fetch implements the Fetch extension point: given a path,
// produce a bundle of components to attach to the asset entity. A
// fetch may be synchronous, deferred, async, throttled, routed,
// rewriting, fallback, hot-reloading or extracting.
/*
 * Copyright (c) 2018-2020, NVIDIA CORPORATION. All rights reserved.
 */
package fetch

import (
	"github.com/keket-go/keket/assetpath"
	"github.com/keket-go/keket/storage"
)

// Bundle is the set of components a Fetch attaches to an asset entity.
// It must contain either components.BytesReadyToProcess (immediate) or
// a progress marker the same Fetch later replaces from Maintain.
type Bundle []interface{}

// Fetch is the one required method of the extension point.
type Fetch interface {
	LoadBytes(path assetpath.AssetPath) (Bundle, error)
}

// Maintainer is the optional half of the contract: adapters with
// background work (deferred jobs, futures, throttling, hot-reload
// watches) implement it so database.maintain can let them make
// progress once per tick without blocking.
type Maintainer interface {
	Maintain(s *storage.Store)
}

// Stack is an ordered list of Fetch adapters; the top (last-pushed) is
// the active one the coordinator calls into for LoadBytes, while
// Maintain runs bottom to top over every layer.
type Stack struct {
	layers []Fetch
}

func (s *Stack) Push(f Fetch) { s.layers = append(s.layers, f) }

// Top returns the active fetch, or false if the stack is empty.
func (s *Stack) Top() (Fetch, bool) {
	if len(s.layers) == 0 {
		return nil, false
	}
	return s.layers[len(s.layers)-1], true
}

// Len reports how many layers are on the stack.
func (s *Stack) Len() int { return len(s.layers) }

// MaintainAll calls Maintain on every Maintainer layer, bottom to top.
func (s *Stack) MaintainAll(store *storage.Store) {
	for _, f := range s.layers {
		if m, ok := f.(Maintainer); ok {
			m.Maintain(store)
		}
	}
}
