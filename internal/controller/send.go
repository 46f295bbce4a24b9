// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package controller

import (
	"context"
	"sync"
)

// =============================================================================
// SEND HANDLE
// =============================================================================

// Send is the handle for one in-flight chat round trip. It pins the
// conversation and registry generation it was issued under so the completion
// can be validated against the state that exists when the reply arrives.
type Send struct {
	// ConversationID is the conversation (and remote session) the send
	// belongs to.
	ConversationID string

	// UserID identifies the sender to the backend.
	UserID int64

	// Query is the trimmed message text.
	Query string

	generation uint64
	ctx        context.Context
	cancel     context.CancelFunc
}

// Context returns the timeout context for the gateway call. It is cancelled
// on logout and on completion.
func (s *Send) Context() context.Context {
	return s.ctx
}

// Cancel aborts the round trip. The gateway call returns a cancellation
// error, which flows back through CompleteSend like any other failure.
func (s *Send) Cancel() {
	s.cancel()
}

// =============================================================================
// CANCEL FUNCTION MANAGEMENT (THREAD-SAFE)
// =============================================================================

// cancelManager guards the in-flight cancel function. Logout runs on the
// update loop while the send goroutine may still hold its context, so access
// is mutex-protected. Must be held as a pointer to avoid copying the mutex.
type cancelManager struct {
	mu         sync.Mutex
	cancelFunc context.CancelFunc
}

// newCancelManager creates a new cancelManager pointer.
func newCancelManager() *cancelManager {
	return &cancelManager{}
}

// set stores a new cancel function.
func (cm *cancelManager) set(fn context.CancelFunc) {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	cm.cancelFunc = fn
}

// clear cancels the stored context (if present) and removes the cancel
// function. Safe to call multiple times or with nothing stored.
func (cm *cancelManager) clear() {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	if cm.cancelFunc != nil {
		cm.cancelFunc()
		cm.cancelFunc = nil
	}
}

// forget drops the stored cancel function without invoking it. Used when a
// completion has already cancelled its own context.
func (cm *cancelManager) forget() {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	cm.cancelFunc = nil
}
