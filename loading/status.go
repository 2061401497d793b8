// Package loading buckets assets by loading phase and provides Cursor,
// a channel-based dependency-graph iterator.
/*
 * Copyright (c) 2018-2020, NVIDIA CORPORATION. All rights reserved.
 */
package loading

import (
	"reflect"

	"github.com/keket-go/keket/assetpath"
	"github.com/keket-go/keket/components"
	"github.com/keket-go/keket/handle"
	"github.com/keket-go/keket/storage"
)

// Status buckets every live asset path into the category its current
// markers place it in. An asset appears in at most one bucket: one
// with no phase marker of its own lands in ReadyToUse only if its whole
// dependency closure is ready, and in no bucket otherwise.
type Status struct {
	AwaitingResolution  []assetpath.AssetPath
	BytesReadyToProcess []assetpath.AssetPath
	AwaitingAsyncFetch  []assetpath.AssetPath
	AwaitingDeferredJob []assetpath.AssetPath
	AwaitingExtraction  []assetpath.AssetPath
	AwaitingStoring     []assetpath.AssetPath
	AwaitingAsyncStore  []assetpath.AssetPath
	BytesReadyToStore   []assetpath.AssetPath
	ReadyToUse          []assetpath.AssetPath
}

var (
	pathType                = reflect.TypeOf(components.Path{})
	awaitsResolutionType    = reflect.TypeOf(components.AwaitsResolution{})
	bytesReadyToProcessType = reflect.TypeOf(components.BytesReadyToProcess{})
	awaitsAsyncFetchType    = reflect.TypeOf(components.AwaitsAsyncFetch{})
	awaitsDeferredJobType   = reflect.TypeOf(components.AwaitsDeferredJob{})
	awaitsExtractionType    = reflect.TypeOf(components.AwaitsExtractionFromStorage{})
	awaitsStoringType       = reflect.TypeOf(components.AwaitsStoring{})
	awaitsAsyncStoreType    = reflect.TypeOf(components.AwaitsAsyncStore{})
	bytesReadyToStoreType   = reflect.TypeOf(components.BytesReadyToStore{})
)

// Report walks every live entity carrying a Path and classifies it.
// Markers are checked in a fixed order so an asset carrying more than
// one (e.g. AwaitsStoring alongside BytesReadyToProcess, mid-transition)
// lands in the earliest bucket.
func Report(s *storage.Store) Status {
	var out Status
	for _, e := range s.Query(pathType) {
		v, ok := s.Get(e, pathType)
		if !ok {
			continue
		}
		path := v.(components.Path).Path

		switch {
		case s.Has(e, awaitsResolutionType):
			out.AwaitingResolution = append(out.AwaitingResolution, path)
		case s.Has(e, bytesReadyToProcessType):
			out.BytesReadyToProcess = append(out.BytesReadyToProcess, path)
		case s.Has(e, awaitsDeferredJobType):
			out.AwaitingDeferredJob = append(out.AwaitingDeferredJob, path)
		case s.Has(e, awaitsExtractionType):
			out.AwaitingExtraction = append(out.AwaitingExtraction, path)
		case s.Has(e, awaitsAsyncFetchType):
			out.AwaitingAsyncFetch = append(out.AwaitingAsyncFetch, path)
		case s.Has(e, awaitsAsyncStoreType):
			out.AwaitingAsyncStore = append(out.AwaitingAsyncStore, path)
		case s.Has(e, awaitsStoringType):
			out.AwaitingStoring = append(out.AwaitingStoring, path)
		case s.Has(e, bytesReadyToStoreType):
			out.BytesReadyToStore = append(out.BytesReadyToStore, path)
		default:
			if handle.New(e, s).IsReadyToUse() {
				out.ReadyToUse = append(out.ReadyToUse, path)
			}
		}
	}
	return out
}
