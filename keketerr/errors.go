// Package keketerr defines the error taxonomy shared by fetch, protocol,
// store and database: sentinel kinds callers compare with errors.Is,
// wrapped with call-site context via github.com/pkg/errors.
/*
 * Copyright (c) 2018-2020, NVIDIA CORPORATION. All rights reserved.
 */
package keketerr

import "github.com/pkg/errors"

// Sentinel kinds. Adapters and the coordinator wrap these with
// errors.Wrap to attach a path or entity for diagnostics; callers
// recover the kind with errors.Is.
var (
	// ErrPathParse is reserved for adapters parsing back-end-specific
	// path syntax; the core's AssetPath parser never fails.
	ErrPathParse = errors.New("keket: path parse error")

	// ErrNoFetchOnStack means maintain/ensure needs a fetch but the
	// database's fetch stack is empty.
	ErrNoFetchOnStack = errors.New("keket: no fetch on stack")

	// ErrNoStoreOnStack is the store-side equivalent of ErrNoFetchOnStack.
	ErrNoStoreOnStack = errors.New("keket: no store on stack")

	// ErrMissingProtocol means no registered protocol matches a path's
	// scheme; the entity is despawned and the call fails.
	ErrMissingProtocol = errors.New("keket: no protocol registered for scheme")

	// ErrFetchFailure wraps a back-end fetch error; fires BytesFetchingFailed.
	ErrFetchFailure = errors.New("keket: fetch failed")

	// ErrProcessingFailure wraps a protocol decode error; fires BytesProcessingFailed.
	ErrProcessingFailure = errors.New("keket: processing failed")

	// ErrStoreFailure wraps a back-end store error; fires BytesStoringFailed.
	ErrStoreFailure = errors.New("keket: store failed")

	// ErrProduceFailure wraps a protocol encode error; fires BytesStoringFailed.
	ErrProduceFailure = errors.New("keket: produce bytes failed")

	// ErrLookupFailure means a typed component accessor found no such
	// combination; handle.AccessChecked returns it as an error, and
	// handle.Access collapses it into a plain false rather than panicking.
	ErrLookupFailure = errors.New("keket: component lookup failed")

	// ErrConcurrencyFailure surfaces an adapter's poisoned internal lock.
	ErrConcurrencyFailure = errors.New("keket: concurrency failure")
)

// Wrap attaches a path or other context to a sentinel kind while
// keeping it comparable with errors.Is(err, kind).
func Wrap(kind error, context string) error {
	return errors.Wrap(kind, context)
}

// Wrapf is the formatted variant of Wrap.
func Wrapf(kind error, format string, args ...interface{}) error {
	return errors.Wrapf(kind, format, args...)
}
