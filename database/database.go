// Package database implements Database, the coordinator that owns the
// storage.Store, holds the fetch/store stacks and protocol registry,
// dispatches lifecycle events, and runs the maintain loop that drives
// assets through their phases.
//
// Database is a single owner with thread-safe external mutation: one
// goroutine drives Maintain while others enqueue changes through
// CommandsSender. Fetches, stores and protocols are each held in their
// own stack/registry rather than a single combined adapter registry.
/*
 * Copyright (c) 2018-2020, NVIDIA CORPORATION. All rights reserved.
 */
package database

import (
	"github.com/keket-go/keket/events"
	"github.com/keket-go/keket/fetch"
	"github.com/keket-go/keket/protocol"
	"github.com/keket-go/keket/storage"
	"github.com/keket-go/keket/store"
)

// Database is the coordinator. It is not expected to be shared across
// goroutines during a Maintain call; external code mutates it safely
// only through CommandsSender.
type Database struct {
	store *storage.Store

	fetches   fetch.Stack
	stores    store.Stack
	protocols protocol.Registry

	bindings *events.Bindings
	commands *CommandQueue

	// AllowAssetProgressionFailures controls whether a per-asset error
	// aborts a Maintain tick (false, the default) or is converted into
	// a failure event while the loop proceeds (true).
	AllowAssetProgressionFailures bool
}

// New builds an empty Database: no fetches, no stores, no protocols
// registered. Callers push/register adapters before the first Ensure/
// Maintain call.
func New() *Database {
	return &Database{
		store:    storage.New(),
		bindings: events.NewBindings(),
		commands: newCommandQueue(),
	}
}

// Store exposes the underlying storage.Store for packages (handle,
// reference, loading) that need direct access. The database itself
// remains the sole writer outside of CommandsSender-enqueued commands.
func (db *Database) Store() *storage.Store { return db.store }

// PushFetch adds f to the top of the fetch stack.
func (db *Database) PushFetch(f fetch.Fetch) { db.fetches.Push(f) }

// PushStore adds s to the top of the store stack.
func (db *Database) PushStore(s store.Store) { db.stores.Push(s) }

// RegisterProtocol adds p to the protocol registry under its own
// Name(). When multiple protocols share a name, the first registered
// wins.
func (db *Database) RegisterProtocol(p protocol.Protocol) { db.protocols.Register(p) }

// Bind registers a database-wide listener, notified of every asset's
// lifecycle events regardless of binding on the asset itself.
func (db *Database) Bind(l events.Listener) events.BindingID { return db.bindings.Bind(l) }

// BindOnce registers a database-wide listener for exactly one dispatch.
func (db *Database) BindOnce(l events.Listener) events.BindingID { return db.bindings.BindOnce(l) }

// Unbind removes a database-wide listener.
func (db *Database) Unbind(id events.BindingID) { db.bindings.Unbind(id) }

// CommandsSender returns the thread-safe handle external goroutines use
// to enqueue storage mutations, applied at the start of the next
// Maintain tick.
func (db *Database) CommandsSender() *CommandQueue { return db.commands }
