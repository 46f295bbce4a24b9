// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the chat view component for the TUI.
//
// This file defines the Bubble Tea message types used by the chat interface:
//   - Login: widget credential delivery and authentication results
//   - Sessions: session creation results
//   - Chat: reply delivery
//   - Tokens: balance refresh results
//
// All message types follow Bubble Tea conventions and are immutable.
package chat

import (
	"github.com/terminaloftrade/tradeterm/internal/controller"
	"github.com/terminaloftrade/tradeterm/internal/model"
)

// =============================================================================
// LOGIN MESSAGES
// =============================================================================

// WidgetCredentialMsg delivers a credential from the login widget slot.
type WidgetCredentialMsg struct {
	Credential model.TelegramCredential
}

// AuthResultMsg reports the outcome of a login attempt.
type AuthResultMsg struct {
	Identity *model.Identity
	Err      error
}

// =============================================================================
// SESSION MESSAGES
// =============================================================================

// SessionCreatedMsg reports the outcome of a new-analysis request. Prompt,
// when non-empty, is the message to send into the fresh conversation (the
// starter-prompt flow).
type SessionCreatedMsg struct {
	Conversation *model.Conversation
	Prompt       string
	Err          error
}

// =============================================================================
// CHAT MESSAGES
// =============================================================================

// ReplyMsg delivers the outcome of a chat round trip.
type ReplyMsg struct {
	Send  *controller.Send
	Reply string
	Err   error
}

// =============================================================================
// TOKEN MESSAGES
// =============================================================================

// TokensMsg reports the outcome of a token balance refresh.
type TokensMsg struct {
	TokensLeft int
	Err        error
}
