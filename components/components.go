// Package components defines the phase-marker and well-known payload
// component types every asset entity is built from. Markers are
// zero-sized structs; their presence on an entity in the storage.Store
// is the state machine position.
/*
 * Copyright (c) 2018-2020, NVIDIA CORPORATION. All rights reserved.
 */
package components

import "github.com/keket-go/keket/assetpath"

// Path is attached once, at spawn time, and never removed while the
// entity is alive; its removal (observed as a storage.Removed change)
// is what the database reports as the Unloaded event.
type Path struct {
	Path assetpath.AssetPath
}

// Phase markers. Each is a distinct zero-sized type so storage.Query
// can select entities by marker combination.
type (
	// AwaitsResolution marks an entity whose fetch has not yet run.
	AwaitsResolution struct{}

	// AwaitsAsyncFetch marks an entity whose fetch is in flight in the
	// background; a fetch adapter's Maintain will replace it.
	AwaitsAsyncFetch struct{}

	// AwaitsDeferredJob marks an entity whose fetch runs as a deferred
	// job. No adapter in this module attaches it (fetch.Deferred marks
	// its in-flight jobs with AwaitsAsyncFetch); it is still counted as
	// in progress by handle.IsReadyToUse and loading.Report.
	AwaitsDeferredJob struct{}

	// AwaitsExtractionFromStorage marks an entity whose bytes will be
	// mined out of another, already-loaded asset by fetch.Extract.
	AwaitsExtractionFromStorage struct{}

	// AwaitsStoring marks an entity whose payload should be encoded
	// and persisted on the next maintain tick.
	AwaitsStoring struct{}

	// AwaitsAsyncStore marks an entity whose store is in flight in the
	// background.
	AwaitsAsyncStore struct{}
)

// BytesReadyToProcess carries fetched bytes awaiting a protocol's
// process_bytes call.
type BytesReadyToProcess struct {
	Bytes []byte
}

// BytesReadyToStore carries protocol-produced bytes awaiting a store's
// save_bytes call.
type BytesReadyToStore struct {
	Bytes []byte
}

// ReferenceCounter is a saturating non-negative integer; when maintain
// observes it drop to zero the entity and its dependency closure are
// despawned.
type ReferenceCounter struct {
	Count uint32
}

// Inc saturates at the uint32 maximum instead of wrapping.
func (rc *ReferenceCounter) Inc() {
	if rc.Count != ^uint32(0) {
		rc.Count++
	}
}

// Dec saturates at zero instead of wrapping.
func (rc *ReferenceCounter) Dec() {
	if rc.Count != 0 {
		rc.Count--
	}
}

// Note on in-progress markers: an asset is ready-to-use iff it and
// every transitive dependency carries none of AwaitsResolution,
// BytesReadyToProcess, AwaitsAsyncFetch. The remaining markers
// (AwaitsDeferredJob, AwaitsExtractionFromStorage) are Fetch-adapter-
// private refinements of AwaitsAsyncFetch and are included in the same
// "in progress" set by handle.IsReadyToUse.
