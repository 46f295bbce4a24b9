// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"strings"
	"testing"
)

// =============================================================================
// IDENTITY TESTS
// =============================================================================

func TestIdentity_DisplayName(t *testing.T) {
	tests := []struct {
		name     string
		identity Identity
		want     string
	}{
		{
			name:     "full name",
			identity: Identity{FirstName: "Ada", LastName: "Lovelace", Username: "ada"},
			want:     "Ada Lovelace",
		},
		{
			name:     "first name only",
			identity: Identity{FirstName: "Ada", Username: "ada"},
			want:     "Ada",
		},
		{
			name:     "username fallback",
			identity: Identity{Username: "ada"},
			want:     "@ada",
		},
		{
			name:     "empty identity",
			identity: Identity{},
			want:     "Trader",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.identity.DisplayName(); got != tc.want {
				t.Errorf("DisplayName() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestIdentity_WithTokens(t *testing.T) {
	orig := &Identity{UserID: 1, Username: "ada", TokensLeft: 10}

	updated := orig.WithTokens(3)

	if updated.TokensLeft != 3 {
		t.Errorf("updated TokensLeft = %d, want 3", updated.TokensLeft)
	}
	if orig.TokensLeft != 10 {
		t.Error("WithTokens must not mutate the original identity")
	}
	if updated.UserID != orig.UserID || updated.Username != orig.Username {
		t.Error("WithTokens should preserve all other fields")
	}
}

func TestIdentity_HasTokens(t *testing.T) {
	if (&Identity{TokensLeft: 0}).HasTokens() {
		t.Error("zero balance should report no tokens")
	}
	if !(&Identity{TokensLeft: 1}).HasTokens() {
		t.Error("positive balance should report tokens")
	}
}

// =============================================================================
// MESSAGE TESTS
// =============================================================================

func TestRole_DisplayName(t *testing.T) {
	if RoleUser.DisplayName() != "You" {
		t.Errorf("RoleUser.DisplayName() = %q", RoleUser.DisplayName())
	}
	if RoleAssistant.DisplayName() != "Terminal" {
		t.Errorf("RoleAssistant.DisplayName() = %q", RoleAssistant.DisplayName())
	}
}

func TestNewMessage(t *testing.T) {
	msg := NewUserMessage("hello")

	if msg.Role != RoleUser {
		t.Errorf("Role = %q, want %q", msg.Role, RoleUser)
	}
	if msg.Content != "hello" {
		t.Errorf("Content = %q, want %q", msg.Content, "hello")
	}
	if msg.Timestamp.IsZero() {
		t.Error("Timestamp should be set")
	}
}

// =============================================================================
// CONVERSATION TESTS
// =============================================================================

func TestConversation_AppendOnly(t *testing.T) {
	conv := NewConversation("s1", "New Analysis")

	if !conv.IsEmpty() {
		t.Error("new conversation should be empty")
	}

	conv.Append(NewUserMessage("hello"))
	conv.Append(NewAssistantMessage("hi there"))

	if conv.MessageCount() != 2 {
		t.Fatalf("MessageCount() = %d, want 2", conv.MessageCount())
	}
	if conv.Messages[0].Content != "hello" {
		t.Error("prior entries must never be altered by append")
	}
	if last := conv.LastMessage(); last == nil || last.Role != RoleAssistant {
		t.Error("LastMessage() should return the assistant reply")
	}
}

func TestConversation_Preview(t *testing.T) {
	conv := NewConversation("s1", "New Analysis")
	conv.Append(NewSystemMessage("notice"))
	conv.Append(NewUserMessage("Analyze BTC\nprice action"))

	preview := conv.Preview(50)
	if strings.Contains(preview, "\n") {
		t.Errorf("Preview should be single-line, got %q", preview)
	}
	if !strings.HasPrefix(preview, "Analyze BTC") {
		t.Errorf("Preview should come from first user message, got %q", preview)
	}

	long := NewConversation("s2", "")
	long.Append(NewUserMessage(strings.Repeat("x", 100)))
	if got := long.Preview(20); len([]rune(got)) != 20 {
		t.Errorf("truncated preview length = %d, want 20", len([]rune(got)))
	}
}

func TestConversation_GetTitle(t *testing.T) {
	if got := NewConversation("s1", "").GetTitle(); got != "New Analysis" {
		t.Errorf("default title = %q, want %q", got, "New Analysis")
	}
	if got := NewConversation("s1", "BTC").GetTitle(); got != "BTC" {
		t.Errorf("title = %q, want %q", got, "BTC")
	}
}
