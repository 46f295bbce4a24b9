// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package registry

import (
	"errors"
	"fmt"
	"testing"

	"github.com/terminaloftrade/tradeterm/internal/model"
)

// =============================================================================
// ADD / ACTIVE POINTER TESTS
// =============================================================================

func TestRegistry_AddMakesActive(t *testing.T) {
	r := New()

	r.Add("s1", "New Analysis")
	if r.ActiveID() != "s1" {
		t.Errorf("ActiveID() = %q, want %q", r.ActiveID(), "s1")
	}

	r.Add("s2", "New Analysis")
	if r.ActiveID() != "s2" {
		t.Errorf("ActiveID() = %q, want %q", r.ActiveID(), "s2")
	}

	// Most recent first
	list := r.List()
	if len(list) != 2 {
		t.Fatalf("Len = %d, want 2", len(list))
	}
	if list[0].ID != "s2" || list[1].ID != "s1" {
		t.Errorf("order = [%s, %s], want [s2, s1]", list[0].ID, list[1].ID)
	}
}

func TestRegistry_ActivePointerAlwaysTracksMostRecentAdd(t *testing.T) {
	r := New()

	for i := 0; i < 10; i++ {
		id := fmt.Sprintf("s%d", i)
		r.Add(id, "New Analysis")
		if r.ActiveID() != id {
			t.Fatalf("after Add(%q), ActiveID() = %q", id, r.ActiveID())
		}
	}
}

func TestRegistry_SetActive(t *testing.T) {
	r := New()
	r.Add("s1", "New Analysis")
	r.Add("s2", "New Analysis")

	if err := r.SetActive("s1"); err != nil {
		t.Fatalf("SetActive(s1) failed: %v", err)
	}
	if r.ActiveID() != "s1" {
		t.Errorf("ActiveID() = %q, want s1", r.ActiveID())
	}

	// Unknown id fails and leaves the pointer untouched
	if err := r.SetActive("nope"); !errors.Is(err, ErrConversationNotFound) {
		t.Errorf("SetActive(nope) = %v, want ErrConversationNotFound", err)
	}
	if r.ActiveID() != "s1" {
		t.Error("failed SetActive must not move the active pointer")
	}
}

// =============================================================================
// APPEND TESTS
// =============================================================================

func TestRegistry_AppendIsAppendOnly(t *testing.T) {
	r := New()
	r.Add("s1", "New Analysis")

	if err := r.Append("s1", model.NewUserMessage("hello")); err != nil {
		t.Fatalf("Append failed: %v", err)
	}
	if err := r.Append("s1", model.NewAssistantMessage("hi there")); err != nil {
		t.Fatalf("Append failed: %v", err)
	}

	conv, ok := r.Get("s1")
	if !ok {
		t.Fatal("conversation s1 missing")
	}
	if conv.MessageCount() != 2 {
		t.Fatalf("MessageCount = %d, want 2", conv.MessageCount())
	}
	if conv.Messages[0].Content != "hello" || conv.Messages[0].Role != model.RoleUser {
		t.Error("first message was altered")
	}
}

func TestRegistry_AppendUnknownConversation(t *testing.T) {
	r := New()
	r.Add("s1", "New Analysis")

	err := r.Append("gone", model.NewUserMessage("hello"))
	if !errors.Is(err, ErrConversationNotFound) {
		t.Errorf("Append to unknown id = %v, want ErrConversationNotFound", err)
	}

	// No conversation was touched
	conv, _ := r.Get("s1")
	if conv.MessageCount() != 0 {
		t.Error("failed append must not mutate any conversation")
	}
}

// =============================================================================
// RESET TESTS
// =============================================================================

func TestRegistry_Reset(t *testing.T) {
	r := New()
	r.Add("s1", "New Analysis")
	r.Append("s1", model.NewUserMessage("hello"))
	gen := r.Generation()

	r.Reset()

	if r.Len() != 0 {
		t.Errorf("Len after Reset = %d, want 0", r.Len())
	}
	if r.ActiveID() != "" {
		t.Errorf("ActiveID after Reset = %q, want empty", r.ActiveID())
	}
	if _, ok := r.Active(); ok {
		t.Error("Active() should report no active conversation after Reset")
	}
	if r.Generation() != gen+1 {
		t.Errorf("Generation = %d, want %d", r.Generation(), gen+1)
	}
}

func TestRegistry_EmptyQueries(t *testing.T) {
	r := New()

	if _, ok := r.Active(); ok {
		t.Error("empty registry should have no active conversation")
	}
	if r.Contains("s1") {
		t.Error("empty registry should not contain s1")
	}
	if len(r.List()) != 0 {
		t.Error("empty registry List() should be empty")
	}
}
