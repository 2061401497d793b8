// Package xsync provides small concurrency primitives; fetch.Deferred
// is its user.
/*
 * Copyright (c) 2018-2020, NVIDIA CORPORATION. All rights reserved.
 */
package xsync

import (
	"sync"
)

type (
	// StopCh is a specialized channel for stopping things. Close is
	// idempotent: multiple callers may invoke it without panicking.
	StopCh struct {
		once sync.Once
		ch   chan struct{}
	}

	// DynSemaphore implements a semaphore whose size can change during
	// usage. Used by the deferred fetch adapter to bound its concurrent
	// worker goroutines.
	DynSemaphore struct {
		size int
		cur  int
		c    *sync.Cond
		mu   sync.Mutex
	}
)

func NewStopCh() *StopCh {
	return &StopCh{ch: make(chan struct{})}
}

func (sc *StopCh) Listen() <-chan struct{} { return sc.ch }

func (sc *StopCh) Close() {
	sc.once.Do(func() { close(sc.ch) })
}

func NewDynSemaphore(n int) *DynSemaphore {
	sema := &DynSemaphore{size: n}
	sema.c = sync.NewCond(&sema.mu)
	return sema
}

func (s *DynSemaphore) Size() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.size
}

func (s *DynSemaphore) SetSize(n int) {
	if n < 1 {
		panic("xsync: semaphore size must be >= 1")
	}
	s.mu.Lock()
	s.size = n
	s.mu.Unlock()
	s.c.Broadcast()
}

// Acquire blocks until a slot is available.
func (s *DynSemaphore) Acquire() {
	s.mu.Lock()
	for s.cur+1 > s.size {
		s.c.Wait()
	}
	s.cur++
	s.mu.Unlock()
}

// TryAcquire is the non-blocking variant of Acquire: it reports false
// instead of waiting when no slot is free.
func (s *DynSemaphore) TryAcquire() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cur+1 > s.size {
		return false
	}
	s.cur++
	return true
}

func (s *DynSemaphore) Release() {
	s.mu.Lock()
	if s.cur == 0 {
		s.mu.Unlock()
		panic("xsync: semaphore released more times than acquired")
	}
	s.cur--
	s.mu.Unlock()
	s.c.Signal()
}
