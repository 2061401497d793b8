// Package config defines Config, the engine's ambient configuration: a
// root struct of typed, JSON-tagged nested sections, each with its own
// Validate() error.
/*
 * Copyright (c) 2018-2020, NVIDIA CORPORATION. All rights reserved.
 */
package config

import (
	"fmt"

	"github.com/pkg/errors"
)

// Config is the root configuration object. Dotted-path reflection-based
// field access (e.g. for a runtime config reload endpoint keyed by a
// "section.field" string) has no consumer in this engine and is
// dropped; see DESIGN.md.
type Config struct {
	Fetch FetchConf `json:"fetch"`
	Store StoreConf `json:"store"`
	Event EventConf `json:"event"`
	LRU   LRUConf   `json:"lru"`
}

// FetchConf configures the standard Fetch adapters a host might wire
// up from config rather than composing by hand.
type FetchConf struct {
	// FileRoot is the root directory fetch.File/fetch.HotReload
	// resolve relative paths against.
	FileRoot string `json:"file_root"`
	// DeferredWorkers bounds fetch.Deferred's worker pool size.
	DeferredWorkers int `json:"deferred_workers"`
	// ThrottleRPS caps fetch.Throttled's sustained requests per second;
	// zero disables throttling.
	ThrottleRPS float64 `json:"throttle_rps"`
	// ThrottleBurst is the token bucket burst fetch.Throttled allows.
	ThrottleBurst int `json:"throttle_burst"`
}

func (c *FetchConf) Validate() error {
	if c.DeferredWorkers < 0 {
		return fmt.Errorf("invalid fetch.deferred_workers: %d (expected >=0)", c.DeferredWorkers)
	}
	if c.ThrottleRPS < 0 {
		return fmt.Errorf("invalid fetch.throttle_rps: %v (expected >=0)", c.ThrottleRPS)
	}
	if c.ThrottleBurst < 0 {
		return fmt.Errorf("invalid fetch.throttle_burst: %d (expected >=0)", c.ThrottleBurst)
	}
	return nil
}

// StoreConf configures the standard Store adapters.
type StoreConf struct {
	// FileRoot is the root directory store.File resolves relative
	// paths against.
	FileRoot string `json:"file_root"`
	// BuntDBPath is the on-disk path store.BuntDB opens, or ":memory:"
	// for an in-memory database.
	BuntDBPath string `json:"buntdb_path"`
}

func (c *StoreConf) Validate() error {
	if c.BuntDBPath == "" {
		return errors.New("invalid store.buntdb_path (must be non-empty; use \":memory:\" for in-memory)")
	}
	return nil
}

// EventConf configures the database-wide event bindings' behavior.
type EventConf struct {
	// ChannelBufferSize is the suggested buffer size hosts should use
	// for events.ChanListener channels, balancing the risk of a full
	// channel surfacing as a dispatch error against memory use.
	ChannelBufferSize int `json:"channel_buffer_size"`
}

func (c *EventConf) Validate() error {
	if c.ChannelBufferSize < 0 {
		return fmt.Errorf("invalid event.channel_buffer_size: %d (expected >=0)", c.ChannelBufferSize)
	}
	return nil
}

// LRUConf configures database.EvictIdle.
type LRUConf struct {
	// BudgetBytes is the total byte budget EvictIdle enforces.
	BudgetBytes int64 `json:"budget_bytes"`
}

func (c *LRUConf) Validate() error {
	if c.BudgetBytes < 0 {
		return fmt.Errorf("invalid lru.budget_bytes: %d (expected >=0)", c.BudgetBytes)
	}
	return nil
}

// Default returns a Config with the engine's zero-friction defaults:
// no fetch throttling, an in-memory BuntDB store, and no eviction
// budget (EvictIdle is opt-in).
func Default() *Config {
	return &Config{
		Fetch: FetchConf{DeferredWorkers: 4},
		Store: StoreConf{BuntDBPath: ":memory:"},
		Event: EventConf{ChannelBufferSize: 16},
		LRU:   LRUConf{BudgetBytes: 0},
	}
}

// Validate runs every section's Validate in turn, returning the first
// error.
func (c *Config) Validate() error {
	if err := c.Fetch.Validate(); err != nil {
		return err
	}
	if err := c.Store.Validate(); err != nil {
		return err
	}
	if err := c.Event.Validate(); err != nil {
		return err
	}
	if err := c.LRU.Validate(); err != nil {
		return err
	}
	return nil
}
