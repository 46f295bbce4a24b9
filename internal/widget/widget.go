// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package widget manages login widget callback slots.
//
// The Telegram login widget delivers exactly one credential through a named
// callback entry point. Each mounted login surface acquires a slot keyed by a
// generated id; tearing the surface down releases the slot. Dispatching to a
// released slot is a no-op, so a late credential can never reach a view that
// no longer exists.
package widget

import (
	"encoding/json"
	"errors"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/terminaloftrade/tradeterm/internal/model"
)

// ErrInvalidPayload indicates a pasted widget payload could not be parsed.
var ErrInvalidPayload = errors.New("invalid login payload")

// ParseCredential parses the JSON payload the Telegram widget hands to its
// callback. The hash is carried through untouched; verification happens on
// the backend.
func ParseCredential(payload string) (model.TelegramCredential, error) {
	var cred model.TelegramCredential
	if err := json.Unmarshal([]byte(strings.TrimSpace(payload)), &cred); err != nil {
		return model.TelegramCredential{}, ErrInvalidPayload
	}
	if cred.ID == 0 || cred.Hash == "" {
		return model.TelegramCredential{}, ErrInvalidPayload
	}
	return cred, nil
}

// =============================================================================
// WIDGET CONFIGURATION
// =============================================================================

// Button size options for the login widget.
const (
	SizeLarge  = "large"
	SizeMedium = "medium"
	SizeSmall  = "small"
)

// Config holds the presentation options for the login widget.
type Config struct {
	// BotName is the Telegram bot the widget authenticates against.
	BotName string

	// ButtonSize is one of SizeLarge, SizeMedium, SizeSmall.
	ButtonSize string

	// CornerRadius is the button corner radius in pixels.
	CornerRadius int

	// ShowAvatar controls whether the user's photo is requested.
	ShowAvatar bool
}

// DefaultConfig returns the standard widget presentation.
func DefaultConfig(botName string) Config {
	return Config{
		BotName:      botName,
		ButtonSize:   SizeLarge,
		CornerRadius: 8,
		ShowAvatar:   false,
	}
}

// =============================================================================
// CALLBACK SLOTS
// =============================================================================

// Slot is one registered callback. It is returned by Acquire and must be
// released when the login surface unmounts.
type Slot struct {
	id       string
	registry *Registry

	mu       sync.Mutex
	released bool
}

// Name returns the stable callback entry-point name exposed to the widget.
func (s *Slot) Name() string {
	return "onTelegramAuth_" + s.id
}

// ID returns the slot's registration id.
func (s *Slot) ID() string {
	return s.id
}

// Release deregisters the slot. Idempotent; safe on every exit path.
func (s *Slot) Release() {
	s.mu.Lock()
	if s.released {
		s.mu.Unlock()
		return
	}
	s.released = true
	s.mu.Unlock()

	s.registry.remove(s.id)
}

// Registry holds the live callback slots.
type Registry struct {
	mu    sync.Mutex
	slots map[string]func(model.TelegramCredential)
}

// NewRegistry creates an empty slot registry.
func NewRegistry() *Registry {
	return &Registry{
		slots: make(map[string]func(model.TelegramCredential)),
	}
}

// Acquire registers a callback and returns its slot.
func (r *Registry) Acquire(fn func(model.TelegramCredential)) *Slot {
	id := uuid.NewString()

	r.mu.Lock()
	r.slots[id] = fn
	r.mu.Unlock()

	return &Slot{id: id, registry: r}
}

// Dispatch invokes the callback registered under id with the credential.
// Dispatch to an unknown or released slot is a no-op.
func (r *Registry) Dispatch(id string, cred model.TelegramCredential) {
	r.mu.Lock()
	fn := r.slots[id]
	r.mu.Unlock()

	if fn != nil {
		fn(cred)
	}
}

// Len returns the number of live slots.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.slots)
}

// remove deletes a slot registration.
func (r *Registry) remove(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.slots, id)
}
