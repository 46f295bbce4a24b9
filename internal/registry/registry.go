// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package registry maintains the ordered conversation list and the active
// conversation pointer.
//
// The registry is the single owner of conversation state: it is mutated only
// by the interaction controller's completion handlers, which run one at a
// time on the Bubble Tea update loop. The mutex exists because gateway
// commands execute in goroutines and may read state concurrently.
package registry

import (
	"sync"

	"github.com/terminaloftrade/tradeterm/internal/model"
)

// =============================================================================
// ERRORS
// =============================================================================

// ErrConversationNotFound is returned when an operation references a
// conversation id that does not exist in the registry.
// Use errors.Is(err, ErrConversationNotFound) to check for this error.
var ErrConversationNotFound = &RegistryError{Message: "conversation not found"}

// RegistryError represents a registry-related error.
type RegistryError struct {
	Message string
}

// Error implements the error interface.
func (e *RegistryError) Error() string {
	return e.Message
}

// Is implements errors.Is support for comparing registry errors.
func (e *RegistryError) Is(target error) bool {
	t, ok := target.(*RegistryError)
	if !ok {
		return false
	}
	return e.Message == t.Message
}

// =============================================================================
// REGISTRY
// =============================================================================

// Registry holds the ordered conversations (most recent first) and the
// active conversation pointer.
//
// Invariant: if an active id is set, a conversation with that id exists.
type Registry struct {
	mu            sync.Mutex
	conversations []*model.Conversation
	activeID      string

	// generation increments on every Reset. In-flight gateway completions
	// are tagged with the generation they were issued under so that results
	// arriving after a logout are discarded instead of misapplied.
	generation uint64
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{
		conversations: make([]*model.Conversation, 0),
	}
}

// =============================================================================
// MUTATION
// =============================================================================

// Add inserts a new empty conversation at the front of the list and makes it
// active. The id is the session identifier issued by the remote gateway;
// uniqueness is the gateway's guarantee and is not re-validated here.
func (r *Registry) Add(id, title string) *model.Conversation {
	r.mu.Lock()
	defer r.mu.Unlock()

	conv := model.NewConversation(id, title)
	r.conversations = append([]*model.Conversation{conv}, r.conversations...)
	r.activeID = id
	return conv
}

// Append adds a message to the named conversation.
// Returns ErrConversationNotFound if the conversation does not exist.
func (r *Registry) Append(conversationID string, msg *model.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	conv := r.find(conversationID)
	if conv == nil {
		return ErrConversationNotFound
	}
	conv.Append(msg)
	return nil
}

// SetActive moves the active pointer to the named conversation.
// Returns ErrConversationNotFound if the id does not exist; the previous
// active pointer is left untouched in that case.
func (r *Registry) SetActive(conversationID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.find(conversationID) == nil {
		return ErrConversationNotFound
	}
	r.activeID = conversationID
	return nil
}

// Reset clears all conversations and the active pointer, and bumps the
// generation so stale in-flight completions can be detected. Used on logout.
func (r *Registry) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.conversations = make([]*model.Conversation, 0)
	r.activeID = ""
	r.generation++
}

// =============================================================================
// QUERIES
// =============================================================================

// Active returns the active conversation, or (nil, false) if none is set.
func (r *Registry) Active() (*model.Conversation, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.activeID == "" {
		return nil, false
	}
	conv := r.find(r.activeID)
	return conv, conv != nil
}

// ActiveID returns the active conversation id, or "" if none is set.
func (r *Registry) ActiveID() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.activeID
}

// Get returns the conversation with the given id, or (nil, false).
func (r *Registry) Get(id string) (*model.Conversation, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	conv := r.find(id)
	return conv, conv != nil
}

// Contains reports whether a conversation with the given id exists.
func (r *Registry) Contains(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.find(id) != nil
}

// List returns the conversations, most recent first.
// The returned slice is a copy; the conversations themselves are shared.
func (r *Registry) List() []*model.Conversation {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]*model.Conversation, len(r.conversations))
	copy(out, r.conversations)
	return out
}

// Len returns the number of conversations.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.conversations)
}

// Generation returns the current reset generation.
func (r *Registry) Generation() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.generation
}

// find returns the conversation with the given id, or nil.
// Caller must hold r.mu.
func (r *Registry) find(id string) *model.Conversation {
	for _, conv := range r.conversations {
		if conv.ID == id {
			return conv
		}
	}
	return nil
}
